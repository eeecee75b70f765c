package generators

import (
	"context"
	"fmt"
	"strings"

	"pandaskit/internal/inject"
	"pandaskit/internal/prompt"
)

const (
	npcEventKind = iota
	npcFilterKind
	npcExpressKind
)

// npcEventFamily holds the naming rules and point ids of one event type.
type npcEventFamily struct {
	label       string // Event, Filter or Express
	choice      prompt.Choice
	constPrefix string
	definePre   string
	varSuffix   string
	indent      string // indentation of the pandas.hpp block

	switchDefine, constDefine, getEvent, varDefine, nameDefine, constExport int

	// setting is 0 when the type has no setting point.
	setting int
}

var npcEventFamilies = []npcEventFamily{
	npcEventKind: {
		label:        "Event",
		choice:       prompt.Choice{Name: "standard Event", Desc: "Event   - queued, cannot be interrupted by processhalt"},
		constPrefix:  "NPCE_",
		definePre:    "Pandas_NpcEvent_",
		varSuffix:    "_event_name",
		indent:       "\t",
		switchDefine: 7, constDefine: 8, getEvent: 9, varDefine: 10, nameDefine: 11, constExport: 12,
	},
	npcFilterKind: {
		label:        "Filter",
		choice:       prompt.Choice{Name: "Filter", Desc: "Filter  - runs immediately, can be interrupted by processhalt"},
		constPrefix:  "NPCF_",
		definePre:    "Pandas_NpcFilter_",
		varSuffix:    "_filter_name",
		indent:       "\t\t",
		switchDefine: 1, constDefine: 2, getEvent: 3, varDefine: 4, nameDefine: 5, constExport: 6,
		setting: 20,
	},
	npcExpressKind: {
		label:        "Express",
		choice:       prompt.Choice{Name: "Express", Desc: "Express - runs immediately, cannot be interrupted by processhalt"},
		constPrefix:  "NPCX_",
		definePre:    "Pandas_NpcExpress_",
		varSuffix:    "_express_name",
		indent:       "\t\t",
		switchDefine: 13, constDefine: 14, getEvent: 15, varDefine: 16, nameDefine: 17, constExport: 18,
		setting: 19,
	},
}

func npcEventPoints() []inject.PointSpec {
	var specs []inject.PointSpec
	for _, f := range npcEventFamilies {
		specs = append(specs,
			inject.PointSpec{ID: f.switchDefine, Description: fmt.Sprintf("pandas.hpp @ %s switch define", f.label), ProOffset: 40},
			inject.PointSpec{ID: f.constDefine, Description: fmt.Sprintf("npc.hpp @ npce_event %s constant", f.constPrefix+"XXX")},
			inject.PointSpec{ID: f.getEvent, Description: fmt.Sprintf("npc.cpp @ npc_get_script_event_name %s mapping", f.label)},
			inject.PointSpec{ID: f.varDefine, Description: fmt.Sprintf("script.hpp @ Script_Config xxx%s variable", f.varSuffix)},
			inject.PointSpec{ID: f.nameDefine, Description: fmt.Sprintf("script.cpp @ Script_Config %s name", f.label)},
			inject.PointSpec{ID: f.constExport, Description: fmt.Sprintf("script_constants.hpp @ %s export", f.constPrefix+"XXX")},
		)
		if f.setting != 0 {
			specs = append(specs, inject.PointSpec{ID: f.setting, Description: fmt.Sprintf("npc.cpp @ %s setting", f.constPrefix+"XXX")})
		}
	}
	return specs
}

// NpcEvent scaffolds a new NPC script event, filter or express event.
func NpcEvent() *Generator {
	return &Generator{
		Name:        "npcevent",
		Title:       "NPC event wizard",
		Description: "Add a new NPC event of type Event, Filter or Express",
		Marker:      inject.MarkerFormat{Kind: "NPCEVENT"},
		SourceDirs:  []string{"."},
		Extensions:  []string{".hpp", ".cpp"},
		Points:      npcEventPoints(),
		Guide:       npceventGuide,
	}
}

type npceventAnswers struct {
	family   npcEventFamily
	define   string
	constant string
	name     string
	varName  string
	desc     string
}

// deriveNpcEventNames computes the define and variable names for a constant.
// Every occurrence of the family prefix is dropped, not just the leading one.
func deriveNpcEventNames(f npcEventFamily, constant string) (define, varName string) {
	suffix := strings.ReplaceAll(constant, f.constPrefix, "")
	return f.definePre + suffix, strings.ToLower(suffix) + f.varSuffix
}

// validNpcEventName enforces the On...Event / On...Filter / On...Express
// naming rule. Both checks are case-sensitive.
func validNpcEventName(f npcEventFamily, name string) error {
	if !strings.HasPrefix(name, "On") {
		return fmt.Errorf("%w: event name %q must start with On", ErrInvalidAnswer, name)
	}
	if !strings.HasSuffix(name, f.label) {
		return fmt.Errorf("%w: %s event name %q must end with %s", ErrInvalidAnswer, f.label, name, f.label)
	}
	return nil
}

func npceventGuide(_ context.Context, p *prompt.Prompter, opts Options) (*Draft, error) {
	choices := make([]prompt.Choice, len(npcEventFamilies))
	for i, f := range npcEventFamilies {
		choices[i] = f.choice
	}
	kind, err := p.Select(prompt.SelectOptions{Name: "event type", Choices: choices})
	if err != nil {
		return nil, err
	}
	f := npcEventFamilies[kind]

	constant, err := p.Text(prompt.TextOptions{
		Tips:   fmt.Sprintf("%s constant name (upper-cased, the part after %s)", f.constPrefix, f.constPrefix),
		Prefix: f.constPrefix,
		Upper:  true,
	})
	if err != nil {
		return nil, err
	}
	define, varName := deriveNpcEventNames(f, constant)

	name, err := p.Text(prompt.TextOptions{
		Tips: "Event name (starts with On, ends with Event | Filter | Express)",
	})
	if err != nil {
		return nil, err
	}
	if err := validNpcEventName(f, name); err != nil {
		p.Printer().Error("%v", err)
		return nil, err
	}

	desc, err := p.Text(prompt.TextOptions{
		Tips: "Short description (e.g. triggered when a player kills an MVP)",
	})
	if err != nil {
		return nil, err
	}

	a := npceventAnswers{family: f, define: define, constant: constant, name: name, varName: varName, desc: desc}
	return &Draft{
		Summary: []Field{
			{"Event type", f.choice.Name},
			{"Constant", a.constant},
			{"Event name", a.name},
			{"Description", a.desc},
			{},
			{"Switch define", a.define},
			{"Variable name", a.varName},
		},
		Apply: func(w inject.Writer) error { return npceventInsert(w, a, opts) },
	}, nil
}

func npceventInsert(w inject.Writer, a npceventAnswers, opts Options) error {
	f := a.family
	guarded := func(line string) []string {
		return []string{"", "#ifdef " + a.define, line, "#endif // " + a.define}
	}

	blocks := []block{
		{f.switchDefine, []string{
			"",
			fmt.Sprintf("%s// %s %s", f.indent, a.desc, opts.Tag()),
			fmt.Sprintf("%s// Event type: %s / Event name: %s", f.indent, f.label, a.name),
			fmt.Sprintf("%s// Constant: %s / Variable: %s", f.indent, a.constant, a.varName),
			fmt.Sprintf("%s#define %s", f.indent, a.define),
		}},
		{f.constDefine, guarded(fmt.Sprintf("\t%s,\t// %s\t// %s\t\t// %s", a.constant, a.varName, a.name, a.desc))},
		{f.getEvent, []string{
			"",
			"#ifdef " + a.define,
			fmt.Sprintf("\tcase %s:", a.constant),
			fmt.Sprintf("\t\treturn script_config.%s;\t// %s\t\t// %s", a.varName, a.name, a.desc),
			"#endif // " + a.define,
		}},
		{f.varDefine, guarded(fmt.Sprintf("\tconst char* %s;\t// %s\t// %s\t// %s", a.varName, a.constant, a.name, a.desc))},
		{f.nameDefine, guarded(fmt.Sprintf("\t\"%s\",\t// %s\t\t// %s\t// %s", a.name, a.constant, a.varName, a.desc))},
		{f.constExport, guarded(fmt.Sprintf("\texport_constant(%s);\t// %s\t// %s\t\t// %s", a.constant, a.varName, a.name, a.desc))},
	}
	if f.setting != 0 {
		blocks = append(blocks, block{f.setting, guarded(fmt.Sprintf("\t\t%s,\t// %s\t// %s\t\t// %s", a.constant, a.varName, a.name, a.desc))})
	}
	return insertAll(w, blocks...)
}
