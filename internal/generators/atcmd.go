package generators

import (
	"context"
	"fmt"

	"pandaskit/internal/inject"
	"pandaskit/internal/prompt"
)

// At-command injection points.
const (
	atcmdSwitchDefine = 1 // pandas.hpp: feature switch
	atcmdFunc         = 2 // atcommand.cpp: ACMD_FUNC body
	atcmdDef          = 3 // atcommand.cpp: ACMD_DEF export
)

// AtCommand scaffolds a new GM @command.
func AtCommand() *Generator {
	return &Generator{
		Name:        "atcmd",
		Title:       "GM command wizard",
		Description: "Add a new @command with its switch, handler and export",
		Marker:      inject.MarkerFormat{Kind: "ATCMD"},
		SourceDirs:  []string{"."},
		Extensions:  []string{".hpp", ".cpp"},
		Points: []inject.PointSpec{
			{ID: atcmdSwitchDefine, Description: "pandas.hpp @ switch define", ProOffset: 10},
			{ID: atcmdFunc, Description: "atcommand.cpp @ ACMD_FUNC implementation"},
			{ID: atcmdDef, Description: "atcommand.cpp @ ACMD_DEF export"},
		},
		Guide: atcmdGuide,
	}
}

type atcmdAnswers struct {
	define   string
	funcName string
	cmdName  string
}

func atcmdGuide(_ context.Context, p *prompt.Prompter, opts Options) (*Draft, error) {
	define, err := p.Text(prompt.TextOptions{
		Tips:   "Switch define for the command (the part after Pandas_AtCommand_)",
		Prefix: "Pandas_AtCommand_",
	})
	if err != nil {
		return nil, err
	}

	funcName, err := p.Text(prompt.TextOptions{
		Tips:  "Handler function name (the ACMD_FUNC name)",
		Lower: true,
	})
	if err != nil {
		return nil, err
	}

	same, err := p.Bool(prompt.BoolOptions{
		Tips:    fmt.Sprintf("Is the command name the same as the handler (%s)?", funcName),
		Default: true,
	})
	if err != nil {
		return nil, err
	}

	cmdName := funcName
	if !same {
		cmdName, err = p.Text(prompt.TextOptions{
			Tips:  "Command name (used by ACMD_DEF2)",
			Lower: true,
		})
		if err != nil {
			return nil, err
		}
	}

	a := atcmdAnswers{define: define, funcName: funcName, cmdName: cmdName}
	return &Draft{
		Summary: []Field{
			{"Switch define", a.define},
			{"Handler function", a.funcName},
			{"Command name", a.cmdName},
		},
		Apply: func(w inject.Writer) error { return atcmdInsert(w, a, opts) },
	}, nil
}

func atcmdInsert(w inject.Writer, a atcmdAnswers, opts Options) error {
	def := fmt.Sprintf("\t\tACMD_DEF(%s),\t\t\t// TODO: describe this command %s", a.funcName, opts.Tag())
	if a.funcName != a.cmdName {
		def = fmt.Sprintf("\t\tACMD_DEF2(\"%s\", %s),\t\t\t// TODO: describe this command %s", a.cmdName, a.funcName, opts.Tag())
	}

	return insertAll(w,
		block{atcmdSwitchDefine, []string{
			"",
			fmt.Sprintf("\t// Enable the %s GM command %s", a.cmdName, opts.Tag()),
			"\t// TODO: describe what this GM command does",
			"\t#define " + a.define,
		}},
		block{atcmdFunc, []string{
			"#ifdef " + a.define,
			"/* ===========================================================",
			" * Command: " + a.cmdName,
			" * Description: TODO",
			" * Usage: @" + a.cmdName,
			" * Author: " + opts.Nick(),
			" * -----------------------------------------------------------*/",
			fmt.Sprintf("ACMD_FUNC(%s) {", a.funcName),
			"\t// TODO: implement the GM command",
			"\treturn 0;",
			"}",
			"#endif // " + a.define,
			"",
		}},
		block{atcmdDef, []string{
			"#ifdef " + a.define,
			def,
			"#endif // " + a.define,
		}},
	)
}
