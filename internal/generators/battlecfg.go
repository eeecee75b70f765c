package generators

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"pandaskit/internal/inject"
	"pandaskit/internal/prompt"
)

// Battle configuration injection points.
const (
	battleSwitchDefine  = 1 // pandas.hpp
	battleVarDefine     = 2 // battle.hpp: Battle_Config member
	battleDefaultDefine = 3 // battle.cpp: option table entry
	battleConfInsert    = 4 // conf/battle/pandas.conf
)

// BattleConfig scaffolds a new battle_athena option.
func BattleConfig() *Generator {
	return &Generator{
		Name:        "battlecfg",
		Title:       "Battle config wizard",
		Description: "Add a new battle configuration option with its default and range",
		Marker:      inject.MarkerFormat{Kind: "BATTLECONFIG"},
		SourceDirs:  []string{"."},
		ConfDirs:    []string{"battle"},
		Extensions:  []string{".hpp", ".cpp", ".conf"},
		Points: []inject.PointSpec{
			{ID: battleSwitchDefine, Description: "pandas.hpp @ switch define", ProOffset: 10},
			{ID: battleVarDefine, Description: "battle.hpp @ option variable"},
			{ID: battleDefaultDefine, Description: "battle.cpp @ option binding and default"},
			{ID: battleConfInsert, Description: "pandas.conf @ option default entry", ProOffset: 10},
		},
		Guide: battlecfgGuide,
	}
}

type battlecfgAnswers struct {
	define  string
	option  string
	varName string
	def     string
	min     string
	max     string
}

// formatMax renders the upper bound, spelling out INT_MAX.
func formatMax(v int) string {
	if v == math.MaxInt32 {
		return "INT_MAX"
	}
	return strconv.Itoa(v)
}

func battlecfgGuide(_ context.Context, p *prompt.Prompter, opts Options) (*Draft, error) {
	define, err := p.Text(prompt.TextOptions{
		Tips:   "Switch define for the option (the part after Pandas_BattleConfig_)",
		Prefix: "Pandas_BattleConfig_",
	})
	if err != nil {
		return nil, err
	}

	option, err := p.Text(prompt.TextOptions{Tips: "Option name"})
	if err != nil {
		return nil, err
	}

	varName, err := p.Text(prompt.TextOptions{
		Tips:    "Variable name (press Enter to derive it from the option name)",
		Default: strings.ReplaceAll(option, ".", "_"),
	})
	if err != nil {
		return nil, err
	}

	def, err := p.Int(prompt.IntOptions{Tips: "Default value (empty means 0)", AllowEmpty: true})
	if err != nil {
		return nil, err
	}
	minVal, err := p.Int(prompt.IntOptions{Tips: "Minimum value (empty means 0)", AllowEmpty: true})
	if err != nil {
		return nil, err
	}
	maxVal, err := p.Int(prompt.IntOptions{Tips: "Maximum value (empty means INT_MAX)", AllowEmpty: true})
	if err != nil {
		return nil, err
	}

	if maxVal == 0 {
		maxVal = math.MaxInt32
	}
	if maxVal <= minVal {
		p.Printer().Error("The maximum (%d) must be greater than the minimum (%d).", maxVal, minVal)
		return nil, fmt.Errorf("%w: max %d <= min %d", ErrInvalidAnswer, maxVal, minVal)
	}

	a := battlecfgAnswers{
		define:  define,
		option:  option,
		varName: varName,
		def:     strconv.Itoa(def),
		min:     strconv.Itoa(minVal),
		max:     formatMax(maxVal),
	}
	return &Draft{
		Summary: []Field{
			{"Switch define", a.define},
			{"Option name", a.option},
			{"Variable name", a.varName},
			{},
			{"Default value", a.def},
			{"Minimum value", a.min},
			{"Maximum value", a.max},
		},
		Apply: func(w inject.Writer) error { return battlecfgInsert(w, a, opts) },
	}, nil
}

func battlecfgInsert(w inject.Writer, a battlecfgAnswers, opts Options) error {
	return insertAll(w,
		block{battleSwitchDefine, []string{
			"",
			fmt.Sprintf("\t// Enable the %s option and its behaviour %s", a.option, opts.Tag()),
			"\t// TODO: describe what this battle option does",
			"\t#define " + a.define,
		}},
		block{battleVarDefine, []string{
			"#ifdef " + a.define,
			fmt.Sprintf("\tint %s;", a.varName),
			"#endif // " + a.define,
		}},
		block{battleDefaultDefine, []string{
			"#ifdef " + a.define,
			fmt.Sprintf("\t{ \"%s\",    &battle_config.%s,    %s,    %s,    %s,    },", a.option, a.varName, a.def, a.min, a.max),
			"#endif // " + a.define,
		}},
		block{battleConfInsert, []string{
			"// TODO: describe this battle option",
			fmt.Sprintf("%s: %s", a.option, a.def),
			"",
		}},
	)
}
