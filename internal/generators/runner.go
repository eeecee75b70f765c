package generators

import (
	"context"
	"fmt"
	"io"

	"pandaskit/internal/charset"
	"pandaskit/internal/console"
	"pandaskit/internal/inject"
	"pandaskit/internal/logging"
	"pandaskit/internal/prompt"
	"pandaskit/internal/vcs"
)

// Runner drives one generator end to end against a workspace.
type Runner struct {
	Registry *Registry
	Prompter *prompt.Prompter
	Options  Options

	Root   string
	Layout Layout
	Mode   inject.Mode

	// DryRun renders a diff to DiffOut instead of writing files.
	DryRun  bool
	DiffOut io.Writer

	// CheckGit warns about a dirty or missing work tree before writing.
	CheckGit bool
}

func (r *Runner) printer() *console.Printer {
	return r.Prompter.Printer()
}

// Locate scans the workspace for the markers of a generator.
func (r *Runner) Locate(ctx context.Context, name string) (*Generator, *inject.Registry, error) {
	gen := r.Registry.Get(name)
	if gen == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrGeneratorNotFound, name)
	}

	scanner := gen.Scanner(r.Root, r.Layout, r.Mode)
	scanner.OnSkip = func(path string, kind charset.Kind) {
		r.printer().Warning("No UTF-8-SIG (%s), markers in this file are ignored: %s", kind, path)
	}
	points, err := scanner.Scan(ctx)
	if err != nil {
		return gen, nil, err
	}
	return gen, points, nil
}

// Run executes the named generator. A declined confirmation returns
// prompt.ErrAborted and leaves every file untouched.
func (r *Runner) Run(ctx context.Context, name string) error {
	timer := logging.StartTimer(logging.CategoryGuide, "generator "+name)
	defer timer.Stop()

	out := r.printer()
	gen, points, err := r.Locate(ctx, name)
	if gen != nil {
		out.Welcome(gen.Title)
	}
	if err != nil {
		out.Error("%v", err)
		return err
	}
	logging.Guide("%s: %d injection points resolved (%s mode)", name, points.Len(), r.Mode)

	draft, err := gen.Guide(ctx, r.Prompter, r.Options)
	if err != nil {
		return err
	}

	r.showSummary(draft)

	if r.CheckGit && !r.DryRun {
		if err := r.checkWorkTree(ctx, gen); err != nil {
			return err
		}
	}

	if err := r.Prompter.Confirm("Please review the information above. Start writing?"); err != nil {
		return err
	}

	if r.DryRun {
		pv := inject.NewPreview(points, r.Root)
		if err := draft.Apply(pv); err != nil {
			out.Error("%v", err)
			return err
		}
		w := r.DiffOut
		if w == nil {
			w = out.Writer()
		}
		fmt.Fprint(w, pv.Render())
		out.Status("Dry run finished, no file was modified.")
		out.Farewell(gen.Title)
		return nil
	}

	out.Status("Writing generated code into the source tree...")
	if err := draft.Apply(inject.NewInserter(points)); err != nil {
		logging.InjectError("%s: %v", name, err)
		out.Error("%v", err)
		return err
	}
	out.Status("Done. Please review the changes and complete the TODO comments.")
	out.Farewell(gen.Title)
	return nil
}

func (r *Runner) showSummary(d *Draft) {
	out := r.printer()
	out.Separator("-")
	out.Info("Please confirm the details below; the code is modified after confirmation.")
	out.Separator("-")
	for _, f := range d.Summary {
		if f.Label == "" {
			out.Blank()
			continue
		}
		out.Info("%s : %s", f.Label, f.Value)
	}
	out.Separator("-")
	out.Blank()
}

func (r *Runner) checkWorkTree(ctx context.Context, gen *Generator) error {
	out := r.printer()
	git := vcs.Git{Dir: r.Root}
	if !git.IsWorkTree(ctx) {
		logging.VCSWarn("%s is not a git work tree", r.Root)
		out.Warning("The workspace is not a git work tree; a bad run cannot be reverted with git.")
		return nil
	}

	dirs := gen.Dirs(r.Layout)
	dirty, err := git.Dirty(ctx, dirs...)
	if err != nil {
		logging.VCSWarn("git status failed: %v", err)
		out.Warning("Could not read the git status: %v", err)
		return nil
	}
	logging.VCS("%v dirty=%t", dirs, dirty)
	if !dirty {
		return nil
	}

	out.Warning("There are uncommitted changes under %v.", dirs)
	out.Warning("Keep the tree clean so a bad run can be undone with git reset.")
	return r.Prompter.Confirm("Continue with a dirty working tree?")
}
