package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pandaskit/internal/generators"
)

var dryRun bool

var createCmd = &cobra.Command{
	Use:   "create <kind>",
	Short: "Scaffold a new feature at the injection markers",
	Long: `Runs the wizard for one kind of feature. The wizard asks its questions,
shows a summary and, once confirmed, writes the generated code in front of
each injection marker.

Kinds:
` + kindList(),
	Args:      cobra.ExactArgs(1),
	ValidArgs: generators.DefaultRegistry().Names(),
	RunE:      runCreate,
}

var markersCmd = &cobra.Command{
	Use:   "markers <kind>",
	Short: "List where the injection markers of a kind are",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarkers,
}

func kindList() string {
	var b strings.Builder
	for _, g := range generators.DefaultRegistry().All() {
		fmt.Fprintf(&b, "  %-10s %s\n", g.Name, g.Description)
	}
	return b.String()
}

func newRunner(s *session) *generators.Runner {
	return &generators.Runner{
		Registry: generators.DefaultRegistry(),
		Prompter: s.prompter,
		Options:  generators.Options{Maintainer: settings.Maintainer},
		Root:     root,
		Layout:   generators.Layout{SourceDir: settings.SourceDir, ConfDir: settings.ConfDir},
		Mode:     s.ws.Mode(),
		DryRun:   dryRun,
		DiffOut:  stdout,
		CheckGit: settings.CheckGit,
	}
}

func runCreate(cmd *cobra.Command, args []string) error {
	s := newSession()
	r := newRunner(s)
	logger.Debug("create", zap.String("kind", args[0]), zap.Bool("dry_run", dryRun), zap.String("mode", r.Mode.String()))

	// Run shows every failure on the console itself.
	return reported(r.Run(commandContext(cmd), args[0]))
}

func runMarkers(cmd *cobra.Command, args []string) error {
	s := newSession()
	gen, points, err := newRunner(s).Locate(commandContext(cmd), args[0])
	if err != nil {
		return err
	}

	descriptions := make(map[int]string, len(gen.Points))
	for _, spec := range gen.Points {
		descriptions[spec.ID] = spec.Description
	}

	s.out.Info("%s markers (%s edition):", gen.Name, points.Mode())
	for _, p := range points.Points() {
		s.out.Menu("%2d <Section %d> %s:%d  %s", p.ID, p.Section, relPath(p.FilePath), p.Line, descriptions[p.ID])
	}
	return nil
}

func relPath(path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
