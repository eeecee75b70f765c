package generators

import (
	"context"
	"fmt"
	"strings"

	"pandaskit/internal/inject"
	"pandaskit/internal/prompt"
)

// Map flag injection points. The two script points must exist in the tree
// but nothing is written there yet.
const (
	mapflagSwitchDefine    = 1  // pandas.hpp
	mapflagConstDefine     = 2  // map.hpp: MF_ enum entry
	mapflagConstExport     = 3  // script_constants.hpp
	mapflagAtcmdBlock      = 4  // atcommand.cpp: @mapflag refuses parameterised flags
	mapflagGetSub          = 5  // map.cpp: map_getmapflag_sub
	mapflagSetSub          = 6  // map.cpp: map_setmapflag_sub
	mapflagNpcParse        = 7  // npc.cpp: npc_parse_mapflag
	mapflagAtcmdMapinfo    = 8  // atcommand.cpp: @mapinfo output
	mapflagScriptSetParams = 9  // script.cpp: setmapflag
	mapflagScriptGetParams = 10 // script.cpp: getmapflag
)

const (
	mapflagSwitch = iota
	mapflagOneParam
)

var mapflagKinds = []prompt.Choice{
	{Name: "switch map flag", Desc: "plain on/off map flag"},
	{Name: "map flag with one integer parameter", Desc: "map flag carrying one integer value (like bexp)"},
}

// MapFlag scaffolds a new map flag.
func MapFlag() *Generator {
	return &Generator{
		Name:        "mapflag",
		Title:       "Map flag wizard",
		Description: "Add a new map flag, optionally carrying one integer parameter",
		Marker:      inject.MarkerFormat{Kind: "MAPFLAG"},
		SourceDirs:  []string{"."},
		Extensions:  []string{".hpp", ".cpp"},
		Points: []inject.PointSpec{
			{ID: mapflagSwitchDefine, Description: "pandas.hpp @ switch define", ProOffset: 10},
			{ID: mapflagConstDefine, Description: "map.hpp @ MF_XXX constant"},
			{ID: mapflagConstExport, Description: "script_constants.hpp @ MF_XXX export"},
			{ID: mapflagAtcmdBlock, Description: "atcommand.cpp @ @mapflag assignment block"},
			{ID: mapflagGetSub, Description: "map.cpp @ map_getmapflag_sub"},
			{ID: mapflagSetSub, Description: "map.cpp @ map_setmapflag_sub"},
			{ID: mapflagNpcParse, Description: "npc.cpp @ npc_parse_mapflag"},
			{ID: mapflagAtcmdMapinfo, Description: "atcommand.cpp @ ACMD_FUNC(mapinfo) output"},
			{ID: mapflagScriptSetParams, Description: "script.cpp @ setmapflag parameters"},
			{ID: mapflagScriptGetParams, Description: "script.cpp @ getmapflag parameters"},
		},
		Guide: mapflagGuide,
	}
}

type mapflagAnswers struct {
	kind           int
	define         string
	constant       string
	defaultVal     int
	defaultDisable bool
}

func (a mapflagAnswers) shortName() string {
	return strings.TrimPrefix(a.define, "Pandas_MapFlag_")
}

func mapflagGuide(_ context.Context, p *prompt.Prompter, opts Options) (*Draft, error) {
	define, err := p.Text(prompt.TextOptions{
		Tips:   "Switch define for the map flag (the part after Pandas_MapFlag_)",
		Prefix: "Pandas_MapFlag_",
	})
	if err != nil {
		return nil, err
	}

	constant, err := p.Text(prompt.TextOptions{
		Tips:   "MF constant name (upper-cased, the part after MF_)",
		Prefix: "MF_",
		Upper:  true,
	})
	if err != nil {
		return nil, err
	}

	kind, err := p.Select(prompt.SelectOptions{Name: "map flag type", Choices: mapflagKinds})
	if err != nil {
		return nil, err
	}

	a := mapflagAnswers{kind: kind, define: define, constant: constant}
	if kind == mapflagOneParam {
		a.defaultVal, err = p.Int(prompt.IntOptions{
			Tips:       "Default value of the first parameter (empty means 0)",
			AllowEmpty: true,
		})
		if err != nil {
			return nil, err
		}
		a.defaultDisable, err = p.Bool(prompt.BoolOptions{
			Tips: fmt.Sprintf("Does a first parameter of %d remove the map flag?", a.defaultVal),
		})
		if err != nil {
			return nil, err
		}
	}

	return &Draft{
		Summary: []Field{
			{"Switch define", a.define},
			{"Constant", a.constant},
			{"Flag type", mapflagKinds[kind].Name},
			{},
			{"Default of the first parameter", fmt.Sprint(a.defaultVal)},
			{fmt.Sprintf("Value %d disables the flag", a.defaultVal), fmt.Sprint(a.defaultDisable)},
		},
		Apply: func(w inject.Writer) error { return mapflagInsert(w, a, opts) },
	}, nil
}

func mapflagInsert(w inject.Writer, a mapflagAnswers, opts Options) error {
	if err := insertAll(w, mapflagCommon(a, opts)...); err != nil {
		return err
	}
	if a.kind != mapflagOneParam {
		return nil
	}
	return insertAll(w, mapflagParam(a)...)
}

func mapflagCommon(a mapflagAnswers, opts Options) []block {
	d := a.define
	name := strings.Replace(strings.ToLower(a.constant), "mf_", "", 1)

	mapinfo := []string{
		"#ifdef " + d,
		fmt.Sprintf("\tif (map_getmapflag(m_id, %s))", a.constant),
		fmt.Sprintf("\t\tstrcat(atcmd_output, \" %s |\");", a.shortName()),
		"#endif // " + d,
	}
	if a.kind == mapflagOneParam {
		mapinfo = []string{
			"#ifdef " + d,
			fmt.Sprintf("\tif (map_getmapflag(m_id, %s)) {", a.constant),
			"\t\tchar mes[256] = { 0 };",
			fmt.Sprintf("\t\tsnprintf(mes, sizeof(mes), \" %s: %%d |\", map_getmapflag_param(m_id, %s, %d));", a.shortName(), a.constant, a.defaultVal),
			"\t\tstrcat(atcmd_output, mes);",
			"\t}",
			"#endif // " + d,
		}
	}

	return []block{
		{mapflagSwitchDefine, []string{
			"",
			fmt.Sprintf("\t// Enable the %s map flag %s", name, opts.Tag()),
			"\t// TODO: describe what this map flag does",
			"\t#define " + d,
		}},
		{mapflagConstDefine, []string{
			"#ifdef " + d,
			fmt.Sprintf("\t%s,", a.constant),
			"#endif // " + d,
		}},
		{mapflagConstExport, []string{
			"#ifdef " + d,
			fmt.Sprintf("\texport_constant(%s);", a.constant),
			"#endif // " + d,
			"",
		}},
		{mapflagAtcmdMapinfo, mapinfo},
	}
}

func mapflagParam(a mapflagAnswers) []block {
	d, c, v := a.define, a.constant, a.defaultVal

	setSub := []string{
		"#ifdef " + d,
		fmt.Sprintf("\t\tcase %s:", c),
		"\t\t\tif (!status)",
		fmt.Sprintf("\t\t\t\tmap_setmapflag_param(m, mapflag, %d);", v),
		"\t\t\telse {",
		"\t\t\t\tnullpo_retr(false, args);",
		"\t\t\t\tif (args)",
		"\t\t\t\t\tmap_setmapflag_param(m, mapflag, args->flag_val);",
		"\t\t\t}",
		"\t\t\tmapdata->flag[mapflag] = status;",
		"\t\t\tbreak;",
		"#endif // " + d,
	}
	npcParse := []string{
		"#ifdef " + d,
		fmt.Sprintf("\t\tcase %s: {", c),
		"\t\t\t// An invalid first parameter in a script mapflag line falls back to",
		fmt.Sprintf("\t\t\t// %d without blocking the flag from being switched on or off", v),
		"\t\t\tunion u_mapflag_args args = {};",
		"",
		"\t\t\tif (sscanf(w4, \"%11d\", &args.flag_val) < 1)",
		fmt.Sprintf("\t\t\t\targs.flag_val = %d;", v),
		"",
		"\t\t\tmap_setmapflag_sub(m, mapflag, state, &args);",
		"\t\t\tbreak;",
		"\t\t}",
		"#endif // " + d,
		"",
	}

	if a.defaultDisable {
		setSub = []string{
			"#ifdef " + d,
			fmt.Sprintf("\t\tcase %s:", c),
			"\t\t\tif (!status)",
			fmt.Sprintf("\t\t\t\tmap_setmapflag_param(m, mapflag, %d);", v),
			"\t\t\telse {",
			"\t\t\t\tnullpo_retr(false, args);",
			"\t\t\t\tif (args) {",
			"\t\t\t\t\tmap_setmapflag_param(m, mapflag, args->flag_val);",
			fmt.Sprintf("\t\t\t\t\tstatus = !(args->flag_val == %d);", v),
			"\t\t\t\t}",
			"\t\t\t}",
			"\t\t\tmapdata->flag[mapflag] = status;",
			"\t\t\tbreak;",
			"#endif // " + d,
		}
		npcParse = []string{
			"#ifdef " + d,
			fmt.Sprintf("\t\tcase %s: {", c),
			fmt.Sprintf("\t\t\t// An invalid value or the default %d in a script mapflag line switches the flag off", v),
			"\t\t\tunion u_mapflag_args args = {};",
			"",
			fmt.Sprintf("\t\t\tif (sscanf(w4, \"%%11d\", &args.flag_val) < 1 || args.flag_val == %d || !state)", v),
			"\t\t\t\tmap_setmapflag(m, mapflag, false);",
			"\t\t\telse",
			"\t\t\t\tmap_setmapflag_sub(m, mapflag, true, &args);",
			"\t\t\tbreak;",
			"\t\t}",
			"#endif // " + d,
			"",
		}
	}

	return []block{
		// @mapflag can only toggle plain switch flags.
		{mapflagAtcmdBlock, []string{
			"#ifdef " + d,
			fmt.Sprintf("\t\t\tdisabled_mf.insert(disabled_mf.begin(), %s);", c),
			"#endif // " + d,
			"",
		}},
		{mapflagGetSub, []string{
			"#ifdef " + d,
			fmt.Sprintf("\t\tcase %s:", c),
			"\t\t\treturn map_getmapflag_param(m, mapflag, args, 0);",
			"#endif // " + d,
			"",
		}},
		{mapflagSetSub, setSub},
		{mapflagNpcParse, npcParse},
	}
}
