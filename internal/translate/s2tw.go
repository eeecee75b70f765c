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
	"github.com/longbridgeapp/opencc"

	"pandaskit/internal/charset"
	"pandaskit/internal/logging"
)

// Converter rewrites Chinese text between scripts.
type Converter interface {
	Convert(in string) (string, error)
}

// NewS2TWP returns the Simplified to Taiwan Traditional converter with
// Taiwanese phrasing.
func NewS2TWP() (Converter, error) {
	cc, err := opencc.New("s2twp")
	if err != nil {
		return nil, fmt.Errorf("opencc s2twp: %w", err)
	}
	return cc, nil
}

// Documentation converted to Traditional Chinese. Patterns match a single
// directory level; confDocs are relative to the configuration directory.
var (
	confDocs = []string{"*", "battle/*"}
	rootDocs = []string{
		"doc/*",
		"db/*.yml", "db/*.txt",
		"db/import-tmpl/*.yml", "db/import-tmpl/*.txt",
		"db/pandas/*",
		"db/re/*.yml", "db/re/*.txt",
		"db/pre-re/*.yml", "db/pre-re/*.txt",
		"sql-files/composer/*/*/*",
		"tools/python/dist/*/*",
	}
)

// DocConverter converts the configuration, documentation and database
// comments of a workspace. Everything it writes is UTF-8-SIG.
type DocConverter struct {
	Root    string
	ConfDir string // relative to Root; "conf" when empty
	Conv    Converter

	// OnFile is called before each file is converted.
	OnFile func(rel string)
}

// Run converts every matching file and returns their slash-separated
// relative paths.
func (d *DocConverter) Run(ctx context.Context) ([]string, error) {
	timer := logging.StartTimer(logging.CategoryTranslate, "s2twp")
	defer timer.Stop()

	paths, err := d.files()
	if err != nil {
		return nil, err
	}

	var done []string
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		full := filepath.Join(d.Root, filepath.FromSlash(rel))
		src, ok, err := load(full)
		if err != nil {
			return done, err
		}
		if !ok {
			continue
		}
		if d.OnFile != nil {
			d.OnFile(rel)
		}

		text, err := ConvertDocText(rel, src.text, d.Conv)
		if err != nil {
			return done, fmt.Errorf("%s: %w", rel, err)
		}
		data, err := charset.Encode(text, charset.UTF8BOM)
		if err != nil {
			return done, fmt.Errorf("%s: %w", rel, err)
		}
		if err := os.WriteFile(full, data, src.perm); err != nil {
			return done, fmt.Errorf("write %s: %w", rel, err)
		}
		done = append(done, rel)
	}
	logging.Translate("converted %d document(s) to Traditional Chinese", len(done))
	return done, nil
}

func (d *DocConverter) files() ([]string, error) {
	conf := d.ConfDir
	if conf == "" {
		conf = "conf"
	}
	conf = filepath.ToSlash(conf)

	patterns := make([]string, 0, len(confDocs)+len(rootDocs))
	for _, p := range confDocs {
		patterns = append(patterns, path.Join(conf, p))
	}
	patterns = append(patterns, rootDocs...)

	fsys := os.DirFS(d.Root)
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// ConvertDocText converts text line by line. The .yml and .txt databases
// under db/ only have their comment lines converted.
func ConvertDocText(rel, text string, conv Converter) (string, error) {
	ext := strings.ToLower(path.Ext(rel))
	commentOnly := strings.HasPrefix(rel, "db/") && (ext == ".yml" || ext == ".txt")

	lines := strings.SplitAfter(text, "\n")
	for i, line := range lines {
		if commentOnly && !isDocComment(line, ext) {
			continue
		}
		s, err := conv.Convert(line)
		if err != nil {
			return "", err
		}
		lines[i] = s
	}
	return strings.Join(lines, ""), nil
}

func isDocComment(line, ext string) bool {
	line = strings.TrimSpace(line)
	if ext == ".yml" {
		return strings.HasPrefix(line, "#")
	}
	return strings.HasPrefix(line, "//")
}
