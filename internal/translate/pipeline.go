package translate

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"pandaskit/internal/charset"
	"pandaskit/internal/logging"
)

// Kind selects the controller a job uses.
type Kind string

const (
	KindLine     Kind = "line"
	KindFulltext Kind = "fulltext"
	KindYaml     Kind = "yaml"
)

// Params configures the controller of a job. Fields that do not apply to
// the job's Kind are ignored.
type Params struct {
	Table        string
	Pattern      string
	Flags        string
	IDGroup      int
	ReplaceGroup int
	Template     string
	Escape       bool
	Decorate     string // key of Decorators
	IDField      string
	TargetField  string
	TargetPos    int
	SaveEncoding charset.Kind
	Big5Escape   bool
}

// Job applies one controller to a set of workspace files. Files and Globs
// are slash-separated and relative to the workspace root, or to the
// configuration directory when Conf is set; a glob match is dropped when
// its root-relative path contains any of Excludes.
type Job struct {
	Kind     Kind
	Params   Params
	Conf     bool
	Files    []string
	Globs    []string
	Excludes []string
}

// FileResult records one processed file.
type FileResult struct {
	Path     string // relative, slash-separated
	Encoding charset.Kind
}

// Pipeline runs jobs against a workspace in order.
type Pipeline struct {
	Root     string
	TableDir string // relative to Root unless absolute
	ConfDir  string // relative to Root; "conf" when empty
	Lang     string
	Jobs     []Job

	// OnFile is called before each existing file is processed.
	OnFile func(FileResult)
	// OnIssue is called for every table character outside the code page.
	OnIssue func(EncodingIssue)

	// Docs, when set, also converts the documentation of a zh-tw run.
	Docs Converter

	tables map[string]*Table
}

// NewPipeline creates a pipeline running DefaultJobs.
func NewPipeline(root, tableDir, lang string) *Pipeline {
	return &Pipeline{Root: root, TableDir: tableDir, ConfDir: "conf", Lang: lang, Jobs: DefaultJobs()}
}

// Run processes every job. The first error stops the run; files already
// written stay written.
func (p *Pipeline) Run(ctx context.Context) ([]FileResult, error) {
	timer := logging.StartTimer(logging.CategoryTranslate, "pipeline "+p.Lang)
	defer timer.Stop()

	if _, err := Codepage(p.Lang); err != nil {
		return nil, err
	}

	var done []FileResult
	for i, job := range p.Jobs {
		ctrl, err := p.controller(job)
		if err != nil {
			return done, fmt.Errorf("job %d (%s): %w", i+1, job.Params.Table, err)
		}
		paths, err := p.expand(job)
		if err != nil {
			return done, fmt.Errorf("job %d (%s): %w", i+1, job.Params.Table, err)
		}

		for _, rel := range paths {
			if err := ctx.Err(); err != nil {
				return done, err
			}
			full := filepath.Join(p.Root, filepath.FromSlash(rel))
			if !isFile(full) {
				logging.TranslateDebug("skip missing %s", rel)
				continue
			}

			res := FileResult{Path: rel, Encoding: saveEncoding(job.Params)}
			if p.OnFile != nil {
				p.OnFile(res)
			}
			if _, err := ctrl.Execute(full); err != nil {
				logging.TranslateError("%s: %v", rel, err)
				return done, fmt.Errorf("%s: %w", rel, err)
			}
			done = append(done, res)
		}
	}

	logging.Translate("%s: %d files translated", p.Lang, len(done))

	if p.Docs != nil && p.Lang == LangTraditional {
		d := &DocConverter{Root: p.Root, ConfDir: p.ConfDir, Conv: p.Docs}
		d.OnFile = func(rel string) {
			if p.OnFile != nil {
				p.OnFile(FileResult{Path: rel, Encoding: charset.UTF8BOM})
			}
		}
		docs, err := d.Run(ctx)
		for _, rel := range docs {
			done = append(done, FileResult{Path: rel, Encoding: charset.UTF8BOM})
		}
		if err != nil {
			return done, err
		}
	}
	return done, nil
}

func (p *Pipeline) table(name string) (*Table, error) {
	if t, ok := p.tables[name]; ok {
		return t, nil
	}
	dir := p.TableDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(p.Root, dir)
	}
	t, err := LoadTable(dir, p.Lang, name)
	if err != nil {
		return nil, err
	}
	for _, issue := range t.Issues {
		logging.TranslateWarn("%s", issue)
		if p.OnIssue != nil {
			p.OnIssue(issue)
		}
	}
	if p.tables == nil {
		p.tables = make(map[string]*Table)
	}
	p.tables[name] = t
	return t, nil
}

func (p *Pipeline) controller(job Job) (Controller, error) {
	t, err := p.table(job.Params.Table)
	if err != nil {
		return nil, err
	}

	var decorate Decorator
	if name := job.Params.Decorate; name != "" {
		d, ok := Decorators[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDecorator, name)
		}
		decorate = d
	}

	out := Output{SaveEncoding: saveEncoding(job.Params), Big5Escape: job.Params.Big5Escape}
	pr := job.Params
	switch job.Kind {
	case KindLine:
		return &LineController{
			Pattern: pr.Pattern, IDGroup: pr.IDGroup, ReplaceGroup: pr.ReplaceGroup,
			Escape: pr.Escape, Decorate: decorate, Table: t, Output: out,
		}, nil
	case KindFulltext:
		return &FulltextController{
			Pattern: pr.Pattern, Flags: pr.Flags, IDGroup: pr.IDGroup, ReplaceGroup: pr.ReplaceGroup,
			Template: pr.Template, Escape: pr.Escape, Decorate: decorate, Table: t, Output: out,
		}, nil
	case KindYaml:
		return &YamlController{
			IDField: pr.IDField, TargetField: pr.TargetField, TargetPos: pr.TargetPos,
			Escape: pr.Escape, Table: t, Output: out,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, job.Kind)
}

// expand lists the job's files, then its sorted glob matches.
func (p *Pipeline) expand(job Job) ([]string, error) {
	base := ""
	if job.Conf {
		base = p.confDir()
	}
	paths := make([]string, 0, len(job.Files))
	for _, f := range job.Files {
		paths = append(paths, path.Join(base, f))
	}

	fsys := os.DirFS(p.Root)
	for _, pattern := range job.Globs {
		matches, err := doublestar.Glob(fsys, path.Join(base, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if excluded(m, job.Excludes) {
				logging.TranslateDebug("exclude %s", m)
				continue
			}
			paths = append(paths, m)
		}
	}
	return paths, nil
}

func (p *Pipeline) confDir() string {
	if p.ConfDir == "" {
		return "conf"
	}
	return filepath.ToSlash(p.ConfDir)
}

func excluded(rel string, excludes []string) bool {
	for _, e := range excludes {
		if strings.Contains(rel, e) {
			return true
		}
	}
	return false
}

func saveEncoding(pr Params) charset.Kind {
	if pr.SaveEncoding == charset.Unknown {
		return charset.UTF8BOM
	}
	return pr.SaveEncoding
}

func isFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.Mode().IsRegular()
}
