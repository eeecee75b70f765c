package generators

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pandaskit/internal/console"
	"pandaskit/internal/inject"
	"pandaskit/internal/prompt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const bom = "\xEF\xBB\xBF"

func joinLines(l ...string) string {
	return strings.Join(l, "\n") + "\n"
}

// atcmdTree writes a workspace whose atcommand.cpp carries the three
// at-command markers, with the switch marker at section first.
func atcmdTree(t *testing.T, first int) (root, path string) {
	t.Helper()
	root = t.TempDir()
	path = filepath.Join(root, "src", "map", "atcommand.cpp")
	m := AtCommand().Marker
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(bom+joinLines(
		"// header",
		m.Render(first),
		m.Render(2),
		m.Render(3),
	)), 0o644))
	return root, path
}

func newRunner(root, input string, out *bytes.Buffer) *Runner {
	return &Runner{
		Registry: DefaultRegistry(),
		Prompter: prompt.New(strings.NewReader(input), console.New(out)),
		Options:  testOpts,
		Root:     root,
		Mode:     inject.Community,
	}
}

func writeBOM(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(bom+content), 0o644))
}

func readString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// =============================================================================
// RUNNER TESTS
// =============================================================================

func TestRunner_WritesAtCommand(t *testing.T) {
	t.Parallel()

	root, path := atcmdTree(t, 1)
	var out bytes.Buffer
	r := newRunner(root, "Example\nexample\n\ny\n", &out)

	require.NoError(t, r.Run(context.Background(), "atcmd"))

	m := AtCommand().Marker
	want := bom + joinLines(
		"// header",
		"",
		"\t// Enable the example GM command [dev]",
		"\t// TODO: describe what this GM command does",
		"\t#define Pandas_AtCommand_Example",
		m.Render(1),
		"#ifdef Pandas_AtCommand_Example",
		"/* ===========================================================",
		" * Command: example",
		" * Description: TODO",
		" * Usage: @example",
		" * Author: dev",
		" * -----------------------------------------------------------*/",
		"ACMD_FUNC(example) {",
		"\t// TODO: implement the GM command",
		"\treturn 0;",
		"}",
		"#endif // Pandas_AtCommand_Example",
		"",
		m.Render(2),
		"#ifdef Pandas_AtCommand_Example",
		"\t\tACMD_DEF(example),\t\t\t// TODO: describe this command [dev]",
		"#endif // Pandas_AtCommand_Example",
		m.Render(3),
	)
	assert.Equal(t, want, readString(t, path))
	assert.Contains(t, out.String(), "Switch define : Pandas_AtCommand_Example")
}

func TestRunner_CommercialUsesOffsetSections(t *testing.T) {
	t.Parallel()

	root, path := atcmdTree(t, 11)
	var out bytes.Buffer
	r := newRunner(root, "Example\nexample\n\ny\n", &out)
	r.Mode = inject.Commercial

	require.NoError(t, r.Run(context.Background(), "atcmd"))
	assert.Contains(t, readString(t, path), "\t#define Pandas_AtCommand_Example\n"+AtCommand().Marker.Render(11))
}

func TestRunner_DeclineLeavesFilesUntouched(t *testing.T) {
	t.Parallel()

	root, path := atcmdTree(t, 1)
	before := readString(t, path)
	var out bytes.Buffer
	r := newRunner(root, "Example\nexample\n\nn\n", &out)

	err := r.Run(context.Background(), "atcmd")
	assert.ErrorIs(t, err, prompt.ErrAborted)
	assert.Equal(t, before, readString(t, path))
}

func TestRunner_DryRunRendersDiff(t *testing.T) {
	t.Parallel()

	root, path := atcmdTree(t, 1)
	before := readString(t, path)
	var out, diffOut bytes.Buffer
	r := newRunner(root, "Example\nexample\n\ny\n", &out)
	r.DryRun = true
	r.DiffOut = &diffOut

	require.NoError(t, r.Run(context.Background(), "atcmd"))

	assert.Equal(t, before, readString(t, path))
	rendered := diffOut.String()
	assert.Contains(t, rendered, "--- a/src/map/atcommand.cpp")
	assert.Contains(t, rendered, "+ACMD_FUNC(example) {")
	assert.Contains(t, rendered, "+\t#define Pandas_AtCommand_Example")
}

func TestRunner_MissingMarkersStopBeforeGuide(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "src", "map", "atcommand.cpp")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(bom+joinLines(AtCommand().Marker.Render(2))), 0o644))

	var out bytes.Buffer
	// No input: reaching the guide would fail with an empty-input error.
	r := newRunner(root, "", &out)

	err := r.Run(context.Background(), "atcmd")
	require.ErrorIs(t, err, inject.ErrMissingPoints)

	var missing *inject.MissingPointsError
	require.ErrorAs(t, err, &missing)
	ids := make([]int, 0, len(missing.Missing))
	for _, s := range missing.Missing {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []int{1, 3}, ids)
}

func TestRunner_UnknownGenerator(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	r := newRunner(t.TempDir(), "", &out)
	assert.ErrorIs(t, r.Run(context.Background(), "nope"), ErrGeneratorNotFound)
}

func TestRunner_LocateWarnsAboutFilesWithoutBOM(t *testing.T) {
	t.Parallel()

	root, _ := atcmdTree(t, 1)
	plain := filepath.Join(root, "src", "plain.cpp")
	require.NoError(t, os.WriteFile(plain, []byte(AtCommand().Marker.Render(4)+"\n"), 0o644))

	var out bytes.Buffer
	r := newRunner(root, "", &out)
	gen, points, err := r.Locate(context.Background(), "atcmd")
	require.NoError(t, err)
	assert.Equal(t, "atcmd", gen.Name)
	assert.Equal(t, 3, points.Len())
	assert.Contains(t, out.String(), "No UTF-8-SIG")
	assert.Contains(t, out.String(), "plain.cpp")
}

func TestRunner_BattleConfigSpansConfDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	m := BattleConfig().Marker
	hpp := filepath.Join(root, "src", "config", "pandas.hpp")
	conf := filepath.Join(root, "conf", "battle", "pandas.conf")
	writeBOM(t, hpp, joinLines(m.Render(1)))
	writeBOM(t, filepath.Join(root, "src", "map", "battle.hpp"), joinLines(m.Render(2)))
	writeBOM(t, filepath.Join(root, "src", "map", "battle.cpp"), joinLines(m.Render(3)))
	writeBOM(t, conf, joinLines(m.Render(4)))

	var out bytes.Buffer
	r := newRunner(root, "Rate\nitem_rate\n\n5\n\n\ny\n", &out)
	require.NoError(t, r.Run(context.Background(), "battlecfg"))

	assert.Equal(t, bom+joinLines(
		"// TODO: describe this battle option",
		"item_rate: 5",
		"",
		m.Render(4),
	), readString(t, conf))
}

func TestGenerator_DirsFollowLayout(t *testing.T) {
	t.Parallel()

	g := BattleConfig()
	assert.Equal(t, []string{"src", "conf/battle"}, g.Dirs(Layout{}))
	assert.Equal(t, []string{"engine", "etc/battle"}, g.Dirs(Layout{SourceDir: "engine", ConfDir: "etc"}))
	assert.Equal(t, []string{"engine/core"}, AtCommand().Dirs(Layout{SourceDir: filepath.Join("engine", "core")}))
}

func TestRunner_LocateUsesLayout(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	m := BattleConfig().Marker
	writeBOM(t, filepath.Join(root, "engine", "config", "pandas.hpp"), joinLines(m.Render(1)))
	writeBOM(t, filepath.Join(root, "engine", "map", "battle.hpp"), joinLines(m.Render(2)))
	writeBOM(t, filepath.Join(root, "engine", "map", "battle.cpp"), joinLines(m.Render(3)))
	writeBOM(t, filepath.Join(root, "etc", "battle", "pandas.conf"), joinLines(m.Render(4)))

	var out bytes.Buffer
	r := newRunner(root, "", &out)

	_, _, err := r.Locate(context.Background(), "battlecfg")
	require.ErrorIs(t, err, inject.ErrMissingPoints, "default layout looks under src and conf")

	r.Layout = Layout{SourceDir: "engine", ConfDir: "etc"}
	_, points, err := r.Locate(context.Background(), "battlecfg")
	require.NoError(t, err)
	p, ok := points.Lookup(4)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "etc", "battle", "pandas.conf"), p.FilePath)
}
