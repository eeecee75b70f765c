// Package generators holds the interactive wizards that scaffold new
// emulator features. Each Generator names the marker family it writes to
// and the points it needs; its Guide collects answers and returns a Draft
// whose Apply emits the code through an inject.Writer.
//
// Flow:
//
//	Scan → Guide → Summary → git check → Confirm → Draft.Apply(Writer)
package generators

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"pandaskit/internal/inject"
	"pandaskit/internal/logging"
	"pandaskit/internal/prompt"
)

// Layout names the source and configuration trees of a workspace, relative
// to its root. Empty fields mean "src" and "conf".
type Layout struct {
	SourceDir string
	ConfDir   string
}

func (l Layout) source() string {
	if l.SourceDir == "" {
		return "src"
	}
	return filepath.ToSlash(l.SourceDir)
}

func (l Layout) conf() string {
	if l.ConfDir == "" {
		return "conf"
	}
	return filepath.ToSlash(l.ConfDir)
}

// Options carries run-wide settings into a guide.
type Options struct {
	// Maintainer is the nickname written into generated comments.
	Maintainer string
}

// Nick returns the maintainer nickname, or a placeholder when unset.
func (o Options) Nick() string {
	if o.Maintainer == "" {
		return "Maintainer"
	}
	return o.Maintainer
}

// Tag returns the "[nickname]" suffix used in generated comments.
func (o Options) Tag() string {
	return "[" + o.Nick() + "]"
}

// Field is one line of the summary shown before confirmation.
type Field struct {
	Label string
	Value string
}

// Draft is the outcome of a completed guide. Nothing is written until Apply
// is called.
type Draft struct {
	Summary []Field
	Apply   func(w inject.Writer) error
}

// GuideFunc asks the questions for one generator.
type GuideFunc func(ctx context.Context, p *prompt.Prompter, opts Options) (*Draft, error)

// Generator describes one wizard and the markers it relies on.
type Generator struct {
	// Name is the identifier used on the command line.
	Name string

	// Title is shown in the welcome and farewell banners.
	Title string

	Description string

	Marker inject.MarkerFormat

	// SourceDirs and ConfDirs are scanned relative to the layout's source
	// and configuration directories.
	SourceDirs []string
	ConfDirs   []string
	Extensions []string

	Points []inject.PointSpec
	Guide  GuideFunc
}

// Validate checks if the generator definition is usable.
func (g *Generator) Validate() error {
	switch {
	case g.Name == "":
		return ErrGeneratorNameEmpty
	case g.Guide == nil:
		return ErrGuideNil
	case len(g.Points) == 0:
		return fmt.Errorf("%w: %s", ErrNoPoints, g.Name)
	}
	return nil
}

// Dirs returns the slash-separated directories the generator touches,
// relative to the workspace root.
func (g *Generator) Dirs(l Layout) []string {
	dirs := make([]string, 0, len(g.SourceDirs)+len(g.ConfDirs))
	for _, dir := range g.SourceDirs {
		dirs = append(dirs, path.Join(l.source(), dir))
	}
	for _, dir := range g.ConfDirs {
		dirs = append(dirs, path.Join(l.conf(), dir))
	}
	return dirs
}

// Scanner returns a marker scanner for this generator rooted at root.
func (g *Generator) Scanner(root string, l Layout, mode inject.Mode) *inject.Scanner {
	dirs := g.Dirs(l)
	roots := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		roots = append(roots, filepath.Join(root, filepath.FromSlash(dir)))
	}
	return &inject.Scanner{
		Roots:      roots,
		Extensions: g.Extensions,
		Format:     g.Marker,
		Specs:      g.Points,
		Mode:       mode,
	}
}

// insertAll applies blocks in order, stopping at the first failure.
func insertAll(w inject.Writer, blocks ...block) error {
	for _, b := range blocks {
		logging.InjectDebug("point %d: %d line(s)", b.id, len(b.lines))
		if err := w.Insert(b.id, b.lines); err != nil {
			return fmt.Errorf("point %d: %w", b.id, err)
		}
	}
	return nil
}

type block struct {
	id    int
	lines []string
}
