package inject

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pandaskit/internal/charset"
	"pandaskit/internal/diff"
)

// Preview is a dry-run Writer. It applies insertions to in-memory copies
// and renders the result as unified diffs; the tree is never touched.
type Preview struct {
	reg    *Registry
	base   string
	engine *diff.Engine
	files  map[string]*previewFile
}

type previewFile struct {
	original string
	current  string
}

// NewPreview works on a clone of reg, so the caller's registry stays valid
// for a real run afterwards. Paths in diffs are shown relative to base when
// possible.
func NewPreview(reg *Registry, base string) *Preview {
	return &Preview{
		reg:    reg.Clone(),
		base:   base,
		engine: diff.NewEngine(),
		files:  make(map[string]*previewFile),
	}
}

// Insert implements Writer.
func (pv *Preview) Insert(id int, lines []string) error {
	p, ok := pv.reg.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPoint, id)
	}
	if len(lines) == 0 {
		return nil
	}

	key := filepath.Clean(p.FilePath)
	f, ok := pv.files[key]
	if !ok {
		data, err := os.ReadFile(p.FilePath)
		if err != nil {
			return fmt.Errorf("read %s: %w", p.FilePath, err)
		}
		kind := charset.Detect(data)
		if kind == charset.Unknown {
			return fmt.Errorf("%w: %s", ErrUnsupportedEncoding, p.FilePath)
		}
		text, err := charset.Decode(data, kind)
		if err != nil {
			return fmt.Errorf("decode %s: %w", p.FilePath, err)
		}
		f = &previewFile{original: text, current: text}
		pv.files[key] = f
	}

	updated, err := spliceBefore(f.current, p.Line, lines)
	if err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	f.current = updated
	pv.reg.shift(p.FilePath, p.Line, len(lines))
	return nil
}

// Diffs returns one diff per touched file, ordered by path.
func (pv *Preview) Diffs() []*diff.FileDiff {
	paths := make([]string, 0, len(pv.files))
	for path := range pv.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	out := make([]*diff.FileDiff, 0, len(paths))
	for _, path := range paths {
		f := pv.files[path]
		name := pv.display(path)
		out = append(out, pv.engine.ComputeDiff(name, name, f.original, f.current))
	}
	return out
}

// Render concatenates the unified diffs of every touched file.
func (pv *Preview) Render() string {
	var b strings.Builder
	for _, fd := range pv.Diffs() {
		b.WriteString(diff.Unified(fd))
	}
	return b.String()
}

func (pv *Preview) display(path string) string {
	if pv.base == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(pv.base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
