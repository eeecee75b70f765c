package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pandaskit/internal/charset"
	"pandaskit/internal/prompt"
)

const src2utf8Title = "Source encoding converter"

var src2utf8Cmd = &cobra.Command{
	Use:   "src2utf8",
	Short: "Convert every C/C++ source file to UTF-8 with a byte-order mark",
	Args:  cobra.NoArgs,
	RunE:  runSrc2utf8,
}

func runSrc2utf8(cmd *cobra.Command, args []string) error {
	s := newSession()
	s.out.Welcome(src2utf8Title)
	s.out.Blank()

	ok, err := s.prompter.Bool(prompt.BoolOptions{Tips: "Convert the source file encodings now?"})
	if err != nil {
		return reported(err)
	}
	if !ok {
		s.out.Info("Cancelled, nothing was converted.")
		return nil
	}

	converted, skipped, err := charset.NewSourceConverter().ConvertTree(filepath.Join(root, settings.SourceDir), charset.UTF8BOM)
	for _, c := range converted {
		s.out.Info("Converted %s from %s to %s", relPath(c.Path), c.From, c.To)
	}
	for _, path := range skipped {
		s.out.Warning("Could not detect the encoding of %s, left untouched", relPath(path))
	}
	if err != nil {
		s.out.Error("%v", err)
		return reported(err)
	}
	logger.Debug("src2utf8", zap.Int("converted", len(converted)), zap.Int("skipped", len(skipped)))

	if len(converted) == 0 {
		s.out.Info("All source files are already UTF-8-SIG.")
	}
	s.out.Farewell(src2utf8Title)
	return nil
}
