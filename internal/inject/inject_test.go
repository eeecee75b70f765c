package inject

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pandaskit/internal/charset"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const bom = "\xEF\xBB\xBF"

var atcmd = MarkerFormat{Kind: "ATCMD"}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func marker(section int) string {
	return atcmd.Render(section)
}

func lines(l ...string) string {
	return strings.Join(l, "\n") + "\n"
}

// =============================================================================
// MARKER TESTS
// =============================================================================

func TestMarkerFormat_Regexp(t *testing.T) {
	t.Parallel()

	re := atcmd.Regexp()
	tests := []struct {
		name    string
		line    string
		section string
	}{
		{"plain", "// PYHELP - ATCMD - INSERT POINT - <Section 2>", "2"},
		{"indented", "\t\t// PYHELP - ATCMD - INSERT POINT - <Section 13>", "13"},
		{"trailing text", "// PYHELP - ATCMD - INSERT POINT - <Section 1> keep", "1"},
		{"crlf", "// PYHELP - ATCMD - INSERT POINT - <Section 3>\r", "3"},
		{"other kind", "// PYHELP - MAPFLAG - INSERT POINT - <Section 2>", ""},
		{"code before", "int a; // PYHELP - ATCMD - INSERT POINT - <Section 2>", ""},
		{"three digits", "// PYHELP - ATCMD - INSERT POINT - <Section 123>", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			m := re.FindStringSubmatch(tt.line)
			if tt.section == "" {
				assert.Nil(t, m)
				return
			}
			require.NotNil(t, m)
			assert.Equal(t, tt.section, m[1])
		})
	}
}

func TestPointSpec_Section(t *testing.T) {
	t.Parallel()

	s := PointSpec{ID: 1, ProOffset: 10}
	assert.Equal(t, 1, s.Section(Community))
	assert.Equal(t, 11, s.Section(Commercial))
	assert.Equal(t, 2, PointSpec{ID: 2}.Section(Commercial))
}

// =============================================================================
// SCANNER TESTS
// =============================================================================

func newScanner(root string, specs ...PointSpec) *Scanner {
	return &Scanner{
		Roots:      []string{root},
		Extensions: []string{".hpp", ".cpp"},
		Format:     atcmd,
		Specs:      specs,
	}
}

func TestScan_ResolvesPoints(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	a := filepath.Join(root, "map", "atcommand.cpp")
	b := filepath.Join(root, "config", "pandas.HPP")
	writeFile(t, a, bom+lines("int x;", marker(2), "", "  "+marker(3)))
	writeFile(t, b, bom+lines(marker(1)))
	writeFile(t, filepath.Join(root, "notes.txt"), bom+lines(marker(4)))

	reg, err := newScanner(root, PointSpec{ID: 1}, PointSpec{ID: 2}, PointSpec{ID: 3}).Scan(context.Background())
	require.NoError(t, err)

	want := []Point{
		{ID: 1, Section: 1, FilePath: b, Line: 1},
		{ID: 2, Section: 2, FilePath: a, Line: 2},
		{ID: 3, Section: 3, FilePath: a, Line: 4},
	}
	if d := cmp.Diff(want, reg.Points()); d != "" {
		t.Errorf("points mismatch (-want +got):\n%s", d)
	}
	assert.Equal(t, 3, reg.Len())
}

func TestScan_CommercialOffset(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pandas.hpp"), bom+lines(marker(1), marker(11)))
	writeFile(t, filepath.Join(root, "atcommand.cpp"), bom+lines(marker(2)))

	s := newScanner(root, PointSpec{ID: 1, ProOffset: 10}, PointSpec{ID: 2})
	s.Mode = Commercial
	reg, err := s.Scan(context.Background())
	require.NoError(t, err)

	p, ok := reg.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, 11, p.Section)
	assert.Equal(t, 2, p.Line)
	assert.Equal(t, Commercial, reg.Mode())
}

func TestScan_MissingPoints(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.cpp"), bom+lines(marker(1)))

	s := newScanner(root,
		PointSpec{ID: 1, ProOffset: 10, Description: "define"},
		PointSpec{ID: 2, Description: "function"},
	)
	s.Mode = Commercial
	_, err := s.Scan(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingPoints)

	var missing *MissingPointsError
	require.True(t, errors.As(err, &missing))
	require.Len(t, missing.Missing, 2)
	assert.Contains(t, err.Error(), "<Section 11> define")
	assert.Contains(t, err.Error(), "<Section 2> function")
}

func TestScan_DuplicateMarker(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.cpp"), bom+lines(marker(1)))
	writeFile(t, filepath.Join(root, "b.cpp"), bom+lines("", marker(1)))

	_, err := newScanner(root, PointSpec{ID: 1}).Scan(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateMarker)

	var dup *DuplicateMarkerError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, 1, dup.Section)
	assert.Equal(t, 2, dup.Second.Line)
}

func TestScan_DuplicateOfUnconfiguredSection(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.cpp"), bom+lines(marker(1), marker(9), marker(9)))

	_, err := newScanner(root, PointSpec{ID: 1}).Scan(context.Background())
	assert.ErrorIs(t, err, ErrDuplicateMarker)
}

func TestScan_SkipsFilesWithoutBOM(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	plain := filepath.Join(root, "plain.cpp")
	writeFile(t, plain, lines(marker(1)))

	var skipped []string
	s := newScanner(root, PointSpec{ID: 1})
	s.OnSkip = func(path string, kind charset.Kind) {
		skipped = append(skipped, path)
		assert.Equal(t, charset.UTF8, kind)
	}
	_, err := s.Scan(context.Background())
	assert.ErrorIs(t, err, ErrMissingPoints)
	assert.Equal(t, []string{plain}, skipped)
}

func TestScan_MissingRootIsSkipped(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.cpp"), bom+lines(marker(1)))

	s := newScanner(root, PointSpec{ID: 1})
	s.Roots = []string{filepath.Join(root, "nope"), root}
	reg, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
}

func TestScan_LeavesFilesUntouched(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	path := filepath.Join(root, "a.cpp")
	content := bom + "int a;\r\n" + marker(1) + "\r\n"
	writeFile(t, path, content)

	_, err := newScanner(root, PointSpec{ID: 1}).Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, content, readFile(t, path))
}

func TestScan_Cancelled(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.cpp"), bom+lines(marker(1)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newScanner(root, PointSpec{ID: 1}).Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// INSERTER TESTS
// =============================================================================

func TestInserter_ShiftsLaterPoints(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	path := filepath.Join(root, "atcommand.cpp")
	writeFile(t, path, bom+lines("int a;", marker(1), "int b;", marker(2)))

	reg, err := newScanner(root, PointSpec{ID: 1}, PointSpec{ID: 2}).Scan(context.Background())
	require.NoError(t, err)
	ins := NewInserter(reg)

	require.NoError(t, ins.Insert(1, []string{"x", "y"}))
	p2, _ := reg.Lookup(2)
	assert.Equal(t, 6, p2.Line)

	require.NoError(t, ins.Insert(2, []string{"z"}))
	require.NoError(t, ins.Insert(1, []string{"w"}))

	assert.Equal(t, bom+lines("int a;", "x", "y", "w", marker(1), "int b;", "z", marker(2)), readFile(t, path))

	rescanned, err := newScanner(root, PointSpec{ID: 1}, PointSpec{ID: 2}).Scan(context.Background())
	require.NoError(t, err)
	if d := cmp.Diff(rescanned.Points(), reg.Points()); d != "" {
		t.Errorf("tracked registry drifted from file (-rescan +tracked):\n%s", d)
	}
}

func TestInserter_OtherFilesUnaffected(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	a := filepath.Join(root, "a.cpp")
	b := filepath.Join(root, "b.cpp")
	writeFile(t, a, bom+lines("", "", marker(1)))
	writeFile(t, b, bom+lines("", "", "", "", marker(2)))

	reg, err := newScanner(root, PointSpec{ID: 1}, PointSpec{ID: 2}).Scan(context.Background())
	require.NoError(t, err)

	require.NoError(t, NewInserter(reg).Insert(1, []string{"one", "two", "three"}))

	p2, _ := reg.Lookup(2)
	assert.Equal(t, 5, p2.Line)
	assert.Equal(t, bom+lines("", "", "", "", marker(2)), readFile(t, b))
}

func TestInserter_PreservesCRLFAndBOM(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	path := filepath.Join(root, "a.cpp")
	writeFile(t, path, bom+"int a;\r\n"+marker(1)+"\r\n")

	reg, err := newScanner(root, PointSpec{ID: 1}).Scan(context.Background())
	require.NoError(t, err)
	require.NoError(t, NewInserter(reg).Insert(1, []string{"#ifdef X", "#endif"}))

	assert.Equal(t, bom+"int a;\r\n#ifdef X\r\n#endif\r\n"+marker(1)+"\r\n", readFile(t, path))
}

func TestInserter_PreservesLegacyEncoding(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	path := filepath.Join(root, "a.cpp")
	original, err := charset.Encode(lines("// 地图标记", marker(1)), charset.GBK)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, original, 0o644))

	reg := NewRegistry(Community, []Point{{ID: 1, Section: 1, FilePath: path, Line: 2}})
	require.NoError(t, NewInserter(reg).Insert(1, []string{"// 新增"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text, err := charset.Decode(data, charset.GBK)
	require.NoError(t, err)
	assert.Equal(t, lines("// 地图标记", "// 新增", marker(1)), text)
}

func TestInserter_Errors(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	path := filepath.Join(root, "broken.cpp")
	require.NoError(t, os.WriteFile(path, []byte{'a', 0xFF, '\n'}, 0o644))

	reg := NewRegistry(Community, []Point{{ID: 1, FilePath: path, Line: 1}})
	ins := NewInserter(reg)

	assert.ErrorIs(t, ins.Insert(7, []string{"x"}), ErrUnknownPoint)
	assert.ErrorIs(t, ins.Insert(1, []string{"x"}), ErrUnsupportedEncoding)
	assert.Equal(t, []byte{'a', 0xFF, '\n'}, []byte(readFile(t, path)))
}

func TestInserter_EmptyBlockIsNoOp(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	path := filepath.Join(root, "npc.cpp")
	content := bom + lines("one", marker(1))
	writeFile(t, path, content)

	reg := NewRegistry(Community, []Point{{ID: 1, FilePath: path, Line: 2}})
	require.NoError(t, NewInserter(reg).Insert(1, nil))

	assert.Equal(t, content, readFile(t, path))
	p, ok := reg.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, 2, p.Line)
}

func TestSpliceBefore(t *testing.T) {
	t.Parallel()

	got, err := spliceBefore("a\nb\n", 3, []string{"c"})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", got)

	_, err = spliceBefore("a\nb\n", 5, []string{"c"})
	assert.ErrorIs(t, err, ErrLineOutOfRange)

	_, err = spliceBefore("a\n", 0, []string{"c"})
	assert.ErrorIs(t, err, ErrLineOutOfRange)
}

// =============================================================================
// PREVIEW TESTS
// =============================================================================

func TestPreview_DoesNotWrite(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	path := filepath.Join(root, "src", "npc.cpp")
	content := bom + lines("one", marker(1), "two", marker(2))
	writeFile(t, path, content)

	reg, err := newScanner(root, PointSpec{ID: 1}, PointSpec{ID: 2}).Scan(context.Background())
	require.NoError(t, err)
	before := reg.Points()

	pv := NewPreview(reg, root)
	require.NoError(t, pv.Insert(1, []string{"added-a"}))
	require.NoError(t, pv.Insert(2, []string{"added-b"}))

	assert.Equal(t, content, readFile(t, path))
	if d := cmp.Diff(before, reg.Points()); d != "" {
		t.Errorf("preview mutated the caller's registry:\n%s", d)
	}

	diffs := pv.Diffs()
	require.Len(t, diffs, 1)
	added, removed := diffs[0].Stats()
	assert.Equal(t, 2, added)
	assert.Equal(t, 0, removed)

	out := pv.Render()
	assert.Contains(t, out, "--- a/src/npc.cpp")
	assert.Contains(t, out, "+added-a\n")
	assert.Contains(t, out, "+added-b\n")
	assert.Less(t, strings.Index(out, "+added-a"), strings.Index(out, "+added-b"))
}
