package generators

import (
	"context"
	"fmt"

	"pandaskit/internal/inject"
	"pandaskit/internal/prompt"
)

// Script command injection points.
const (
	scriptSwitchDefine = 1 // pandas.hpp: feature switch
	scriptBuiltinFunc  = 2 // script.cpp: BUILDIN_FUNC body
	scriptBuiltinDef   = 3 // script.cpp: BUILDIN_DEF export
)

// ScriptCommand scaffolds a new NPC script command.
func ScriptCommand() *Generator {
	return &Generator{
		Name:        "scriptcmd",
		Title:       "Script command wizard",
		Description: "Add a new script command with its switch, builtin and export",
		Marker:      inject.MarkerFormat{Kind: "SCRIPTCMD"},
		SourceDirs:  []string{"."},
		Extensions:  []string{".hpp", ".cpp"},
		Points: []inject.PointSpec{
			{ID: scriptSwitchDefine, Description: "pandas.hpp @ switch define", ProOffset: 10},
			{ID: scriptBuiltinFunc, Description: "script.cpp @ BUILDIN_FUNC implementation"},
			{ID: scriptBuiltinDef, Description: "script.cpp @ BUILDIN_DEF export"},
		},
		Guide: scriptcmdGuide,
	}
}

type scriptcmdAnswers struct {
	define   string
	funcName string
	cmdName  string
	args     string
}

func scriptcmdGuide(_ context.Context, p *prompt.Prompter, opts Options) (*Draft, error) {
	define, err := p.Text(prompt.TextOptions{
		Tips:   "Switch define for the script command (the part after Pandas_ScriptCommand_)",
		Prefix: "Pandas_ScriptCommand_",
	})
	if err != nil {
		return nil, err
	}

	funcName, err := p.Text(prompt.TextOptions{
		Tips:  "Handler function name (the BUILDIN_FUNC name)",
		Lower: true,
	})
	if err != nil {
		return nil, err
	}

	same, err := p.Bool(prompt.BoolOptions{
		Tips:    fmt.Sprintf("Is the script command name the same as the handler (%s)?", funcName),
		Default: true,
	})
	if err != nil {
		return nil, err
	}

	cmdName := funcName
	if !same {
		cmdName, err = p.Text(prompt.TextOptions{
			Tips:  "Script command name (used by BUILDIN_DEF2)",
			Lower: true,
		})
		if err != nil {
			return nil, err
		}
	}

	args, err := p.Text(prompt.TextOptions{
		Tips:       `Argument mode, e.g. one or more of i\s\? (press Enter for none)`,
		Lower:      true,
		AllowEmpty: true,
	})
	if err != nil {
		return nil, err
	}

	a := scriptcmdAnswers{define: define, funcName: funcName, cmdName: cmdName, args: args}
	return &Draft{
		Summary: []Field{
			{"Switch define", a.define},
			{"Handler function", a.funcName},
			{"Script command", a.cmdName},
			{"Argument mode", a.args},
		},
		Apply: func(w inject.Writer) error { return scriptcmdInsert(w, a, opts) },
	}, nil
}

func scriptcmdInsert(w inject.Writer, a scriptcmdAnswers, opts Options) error {
	usage := fmt.Sprintf(" * Usage: %s;", a.cmdName)
	if a.args != "" {
		usage = fmt.Sprintf(" * Usage: %s <TODO: document the arguments>;", a.cmdName)
	}

	def := fmt.Sprintf("\tBUILDIN_DEF(%s,\"%s\"),\t\t\t\t\t\t// TODO: describe this script command %s", a.funcName, a.args, opts.Tag())
	if a.funcName != a.cmdName {
		def = fmt.Sprintf("\tBUILDIN_DEF2(%s,\"%s\",\"%s\"),\t\t\t\t\t\t// TODO: describe this script command %s", a.funcName, a.cmdName, a.args, opts.Tag())
	}

	return insertAll(w,
		block{scriptSwitchDefine, []string{
			"",
			fmt.Sprintf("\t// Enable the %s script command %s", a.cmdName, opts.Tag()),
			"\t// TODO: describe what this script command does",
			"\t#define " + a.define,
		}},
		block{scriptBuiltinFunc, []string{
			"#ifdef " + a.define,
			"/* ===========================================================",
			" * Command: " + a.cmdName,
			" * Description: TODO",
			usage,
			" * Returns: TODO",
			" * Author: " + opts.Nick(),
			" * -----------------------------------------------------------*/",
			fmt.Sprintf("BUILDIN_FUNC(%s) {", a.funcName),
			"\t// TODO: implement the script command",
			"\treturn SCRIPT_CMD_SUCCESS;",
			"}",
			"#endif // " + a.define,
			"",
		}},
		block{scriptBuiltinDef, []string{
			"#ifdef " + a.define,
			def,
			"#endif // " + a.define,
		}},
	)
}
