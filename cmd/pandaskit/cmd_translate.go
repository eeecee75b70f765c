package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pandaskit/internal/prompt"
	"pandaskit/internal/translate"
)

const (
	translateTitle = "Game text translation helper"
	fmtargsTitle   = "Message format argument checker"
	extractTitle   = "Console translation table extractor"
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Overlay translated item, mob, skill and quest names onto the data files",
	Long: `Replaces names in the db, sql-files and conf data with the entries of the
translation tables (<table_dir>/<language>/<name>.txt). Entries missing from
a table are left as they are.

For Traditional Chinese it can also convert the configuration, documentation
and database comments with OpenCC (s2twp).`,
	Args: cobra.NoArgs,
	RunE: runTranslate,
}

var fmtargsCmd = &cobra.Command{
	Use:   "fmtargs",
	Short: "Compare the printf arguments of the translated message files with the originals",
	Args:  cobra.NoArgs,
	RunE:  runFmtargs,
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Build or update the console message translation tables from the sources",
	Args:  cobra.NoArgs,
	RunE:  runExtract,
}

var languages = []struct {
	code   string
	choice prompt.Choice
}{
	{translate.LangSimplified, prompt.Choice{Name: "Simplified Chinese", Desc: "translate into Simplified Chinese"}},
	{translate.LangTraditional, prompt.Choice{Name: "Traditional Chinese", Desc: "translate into Traditional Chinese"}},
}

func runTranslate(cmd *cobra.Command, args []string) error {
	s := newSession()
	s.out.Welcome(translateTitle)

	lang := settings.Language
	if lang == "" {
		choices := make([]prompt.Choice, len(languages))
		for i, l := range languages {
			choices[i] = l.choice
		}
		idx, err := s.prompter.Select(prompt.SelectOptions{Name: "target language", Choices: choices})
		if err != nil {
			return reported(err)
		}
		lang = languages[idx].code
	}
	logger.Debug("translate", zap.String("language", lang), zap.String("tables", settings.TableDir))

	p := translate.NewPipeline(root, settings.TableDir, lang)
	if settings.ConfDir != "" {
		p.ConfDir = settings.ConfDir
	}

	if lang == translate.LangTraditional {
		withDoc, err := s.prompter.Bool(prompt.BoolOptions{Tips: "Also convert the documents (conf, doc, db comments) to Traditional Chinese?"})
		if err != nil {
			return reported(err)
		}
		if withDoc {
			conv, err := translate.NewS2TWP()
			if err != nil {
				s.out.Error("%v", err)
				return reported(err)
			}
			p.Docs = conv
		}
	}

	p.OnFile = func(r translate.FileResult) {
		s.out.Info("Processing: %s (%s)", r.Path, r.Encoding)
	}
	p.OnIssue = func(issue translate.EncodingIssue) {
		s.out.Error("%s; this must be fixed", issue)
	}

	s.out.Status("Replacing item, mob, skill and quest names from the translation tables...")
	done, err := p.Run(commandContext(cmd))
	if err != nil {
		s.out.Error("%v", err)
		return reported(err)
	}
	s.out.Status("Finished translating %d file(s).", len(done))
	s.out.Farewell(translateTitle)
	return nil
}

func runFmtargs(cmd *cobra.Command, args []string) error {
	s := newSession()
	s.out.Welcome(fmtargsTitle)
	s.out.Blank()

	c := translate.NewFormatChecker(root, settings.ConfDir)
	c.OnFile = func(entry, file string) {
		s.out.Info("Checking %s against %s", file, entry)
	}
	mismatches, err := c.Check()
	if err != nil {
		s.out.Error("%v", err)
		return reported(err)
	}

	for _, m := range mismatches {
		s.out.Warning("Message %d of %s does not take the same format arguments:", m.ID, m.File)
		s.out.Info("%s: %s", m.Entry, m.Want.Text)
		s.out.Info("%s: %s", m.File, m.Got.Text)
		s.out.Blank()
	}
	if len(mismatches) == 0 {
		s.out.Status("All translated messages take the same format arguments.")
	}
	logger.Debug("fmtargs", zap.Int("mismatches", len(mismatches)))
	s.out.Farewell(fmtargsTitle)
	return nil
}

var extractActions = []prompt.Choice{
	{Name: "create", Desc: "create a new translation table"},
	{Name: "update", Desc: "update the existing translation tables"},
	{Name: "traditional", Desc: "derive the Traditional Chinese table from the Simplified one"},
}

func runExtract(cmd *cobra.Command, args []string) error {
	s := newSession()
	s.out.Welcome(extractTitle)

	action, err := s.prompter.Select(prompt.SelectOptions{Name: "the task to run", Choices: extractActions})
	if err != nil {
		return reported(err)
	}

	msgDir := filepath.Join(root, settings.ConfDir, "msg_conf")
	ex := translate.NewExtractor()
	build := func() (*translate.ConsoleTable, error) {
		s.out.Status("Scanning the sources for translatable console messages...")
		tbl, err := ex.Build(filepath.Join(root, settings.SourceDir))
		if err != nil {
			return nil, err
		}
		s.out.Info("Found %d translatable message(s).", len(tbl.Body))
		return tbl, nil
	}

	switch extractActions[action].Name {
	case "create":
		tbl, err := build()
		if err != nil {
			s.out.Error("%v", err)
			return reported(err)
		}
		path := filepath.Join(msgDir, "translation.yml")
		if err := tbl.Save(path, false); err != nil {
			s.out.Error("%v", err)
			return reported(err)
		}
		s.out.Info("Saved to %s", relPath(path))

	case "update":
		bump, err := s.prompter.Bool(prompt.BoolOptions{Tips: "Bump the table versions after updating?"})
		if err != nil {
			return reported(err)
		}
		tbl, err := build()
		if err != nil {
			s.out.Error("%v", err)
			return reported(err)
		}
		if !bump {
			s.out.Warning("The table versions will be kept as they are.")
		}
		_, err = translate.UpdateConsoleTables(msgDir, tbl, bump, func(path string) {
			s.out.Info("Updating: %s", relPath(path))
		})
		if err != nil {
			s.out.Error("%v", err)
			return reported(err)
		}

	case "traditional":
		from := filepath.Join(msgDir, "translation_cn.yml")
		s.out.Info("Loading %s", relPath(from))
		tbl, err := translate.LoadConsoleTable(from)
		if err != nil {
			s.out.Error("%v", err)
			return reported(err)
		}
		conv, err := translate.NewS2TWP()
		if err != nil {
			s.out.Error("%v", err)
			return reported(err)
		}
		if err := tbl.ToTraditional(conv); err != nil {
			s.out.Error("%v", err)
			return reported(err)
		}
		to := filepath.Join(msgDir, "translation_tw.yml")
		if err := tbl.Save(to, true); err != nil {
			s.out.Error("%v", err)
			return reported(err)
		}
		s.out.Info("Saved to %s", relPath(to))
	}

	s.out.Farewell(extractTitle)
	return nil
}
