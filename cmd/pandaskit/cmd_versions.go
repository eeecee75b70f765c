package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pandaskit/internal/inject"
	"pandaskit/internal/prompt"
	"pandaskit/internal/vcs"
	"pandaskit/internal/versions"
)

const versionsTitle = "Version bump helper"

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Rewrite the version defines and resource scripts to a new version",
	Args:  cobra.NoArgs,
	RunE:  runVersions,
}

func runVersions(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	s := newSession()
	s.out.Welcome(versionsTitle)
	s.out.Blank()

	mode := s.ws.Mode()
	community, err := s.ws.CommunityVersion(true)
	if err != nil {
		s.out.Error("Could not read the community version: %v", err)
		return reported(err)
	}

	if mode == inject.Commercial {
		commercial, err := s.ws.CommercialVersion(true)
		if err != nil {
			s.out.Error("Could not read the commercial version: %v", err)
			return reported(err)
		}
		display, err := s.ws.DisplayVersion("v")
		if err != nil {
			return reported(err)
		}
		s.out.Info("Community version: %s | Commercial version: %s", community, commercial)
		s.out.Info("Displayed version: %s", display)
	} else {
		short, err := s.ws.CommunityVersion(false)
		if err != nil {
			return reported(err)
		}
		s.out.Info("Community version: %s (v%s)", community, short)
	}

	if branch, err := (vcs.Git{Dir: root}).Branch(ctx); err == nil && branch != "" {
		s.out.Info("Current branch: %s", branch)
	}

	rule := "format: 1.0.0.1, a fourth field of 1 marks a development build"
	if mode == inject.Commercial {
		rule = "format: YYYY.MM.DD.REV, the fourth field is the revision starting at 0"
	}
	version, err := s.prompter.Text(prompt.TextOptions{Tips: fmt.Sprintf("New version (%s)", rule)})
	if err != nil {
		return reported(err)
	}
	if !versions.Valid(version) {
		s.out.Error("The version %s does not have four numeric fields, please try again.", version)
		return reported(fmt.Errorf("%w: %q", versions.ErrInvalidVersion, version))
	}

	u := versions.NewUpdater()
	u.OnFile = func(path string) {
		s.out.Info("Processing: %s", relPath(path))
	}
	updates, err := u.UpdateDirectory(filepath.Join(root, settings.SourceDir), version, mode)
	if err != nil {
		s.out.Error("%v", err)
		return reported(err)
	}
	logger.Debug("versions updated", zap.String("version", version), zap.Int("files", len(updates)))

	s.out.Status("Updated %d file(s) to %s.", len(updates), version)
	s.out.Farewell(versionsTitle)
	return nil
}
