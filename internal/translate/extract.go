package translate

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"pandaskit/internal/charset"
	"pandaskit/internal/logging"
)

// ConsoleTableType is the header type of a console translation table.
const ConsoleTableType = "CONSOLE_TRANSLATE_DB"

var consoleCall = regexp.MustCompile(`\s*(//|)\s*(` + strings.Join([]string{
	"SqlStmt_ShowDebug", "Sql_ShowDebug", "_vShowMessage",
	"ShowConfigWarning",
	"ShowError", "ShowDebug", "ShowFatalError", "ShowWarning", "ShowNotice",
	"ShowInfo", "ShowSQL", "ShowStatus", "ShowMessage",
	"strcat",
}, "|") + `)\s*\(\s*(.*)\);`)

const consoleConstant = `(CL_[A-Z_]+|PRI[A-Za-z0-9]+|PRtf|EXPAND_AND_QUOTE\((.*)\))`

// Colour and printf-width macros become [{NAME}] inside the literal. The
// quoted form is folded again after each one-sided rule.
var constantRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`("\s*` + consoleConstant + `\s*")`), `[{${2}}]`},
	{regexp.MustCompile(`(\s*` + consoleConstant + `\s*")`), `"[{${2}}]`},
	{regexp.MustCompile(`("\s*` + consoleConstant + `\s*")`), `[{${2}}]`},
	{regexp.MustCompile(`("\s*` + consoleConstant + `\s*)`), `[{${2}}]"`},
	{regexp.MustCompile(`("\s*` + consoleConstant + `\s*")`), `[{${2}}]`},
}

// Calls whose message is the second argument.
var secondArgCalls = map[string]bool{"ShowConfigWarning": true, "strcat": true}

// Extractor collects the console message literals of the C++ sources.
type Extractor struct {
	Exts []string

	// OnFile is called for every scanned source file.
	OnFile func(path string)
}

// NewExtractor scans .cpp and .hpp files.
func NewExtractor() *Extractor {
	return &Extractor{Exts: []string{".cpp", ".hpp"}}
}

// Build returns a fresh table holding every distinct message under dir,
// sorted, with empty translations.
func (e *Extractor) Build(dir string) (*ConsoleTable, error) {
	timer := logging.StartTimer(logging.CategoryTranslate, "extract")
	defer timer.Stop()

	seen := make(map[string]bool)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !e.wants(path) {
			return nil
		}
		src, ok, err := load(path)
		if err != nil || !ok {
			return err
		}
		if e.OnFile != nil {
			e.OnFile(path)
		}
		for _, msg := range ExtractMessages(src.text) {
			seen[msg] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", dir, err)
	}

	originals := make([]string, 0, len(seen))
	for msg := range seen {
		originals = append(originals, msg)
	}
	sort.Strings(originals)
	logging.Translate("extracted %d console message(s) from %s", len(originals), dir)
	return NewConsoleTable(originals), nil
}

func (e *Extractor) wants(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range e.Exts {
		if ext == want {
			return true
		}
	}
	return false
}

// ExtractMessages returns the message literal of every console call in
// text, in order and unescaped. Commented-out calls and calls that pass no
// literal are skipped.
func ExtractMessages(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		m := consoleCall.FindStringSubmatch(line)
		if m == nil || m[1] == "//" {
			continue
		}
		fn, args := m[2], strings.TrimSpace(m[3])

		for _, rule := range constantRules {
			args = rule.re.ReplaceAllString(args, rule.repl)
		}

		quotes := strings.Count(args, `"`)
		if quotes == 0 && !strings.HasPrefix(args, "[{") {
			continue
		}
		if quotes == 1 && strings.HasPrefix(args, "[{") {
			args = `"` + args
		}

		if secondArgCalls[fn] {
			if field, ok := csvField(args, 1); ok {
				args = `"` + field + `"`
			}
		}
		if field, ok := csvField(args, 0); ok {
			args = field
		}
		out = append(out, unescapeC(args))
	}
	return out
}

// csvField splits an argument list the way a CSV reader would, keeping
// backslash-escaped quotes inside the literal.
func csvField(args string, n int) (string, bool) {
	r := csv.NewReader(strings.NewReader(strings.ReplaceAll(args, `\"`, `\""`)))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	row, err := r.Read()
	if err != nil || len(row) <= n {
		return "", false
	}
	return row[n], true
}

// unescapeC resolves C escape sequences. Unknown escapes are kept as
// written.
func unescapeC(s string) string {
	var b strings.Builder
	for len(s) > 0 {
		if s[0] == '\\' && len(s) > 1 && (s[1] == '"' || s[1] == '\'') {
			b.WriteByte(s[1])
			s = s[2:]
			continue
		}
		r, multibyte, tail, err := strconv.UnquoteChar(s, 0)
		if err != nil {
			b.WriteByte(s[0])
			s = s[1:]
			continue
		}
		if multibyte {
			b.WriteRune(r)
		} else {
			b.WriteByte(byte(r))
		}
		s = tail
	}
	return b.String()
}

// ConsoleEntry maps one console message to its translation.
type ConsoleEntry struct {
	Original    string `yaml:"Original"`
	Translation string `yaml:"Translation"`
}

// ConsoleTable is a conf/msg_conf/translation_*.yml document.
type ConsoleTable struct {
	Type    string
	Version int
	Body    []ConsoleEntry
}

type consoleDocument struct {
	Header struct {
		Type    string `yaml:"Type"`
		Version int    `yaml:"Version"`
	} `yaml:"Header"`
	Body []ConsoleEntry `yaml:"Body"`
}

// NewConsoleTable returns a version 1 table of untranslated originals.
func NewConsoleTable(originals []string) *ConsoleTable {
	t := &ConsoleTable{Type: ConsoleTableType, Version: 1, Body: make([]ConsoleEntry, len(originals))}
	for i, o := range originals {
		t.Body[i].Original = o
	}
	return t
}

// LoadConsoleTable reads a table. Files written with Big5 escapes are not
// valid YAML; they are read again with the escapes removed.
func LoadConsoleTable(path string) (*ConsoleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	text := string(bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF")))

	var doc consoleDocument
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		logging.TranslateDebug("%s: %v, retrying without Big5 escapes", path, err)
		doc = consoleDocument{}
		if err := yaml.Unmarshal([]byte(charset.Big5Unescape(text)), &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	logging.TranslateDebug("%s: %d entries, version %d", path, len(doc.Body), doc.Header.Version)
	return &ConsoleTable{Type: doc.Header.Type, Version: doc.Header.Version, Body: doc.Body}, nil
}

// Merge returns t with the non-empty translations of from applied. Entries
// only from knows are appended. The header comes from from, its version
// bumped when bump is set.
func (t *ConsoleTable) Merge(from *ConsoleTable, bump bool) *ConsoleTable {
	out := &ConsoleTable{Type: from.Type, Version: from.Version}
	if bump {
		out.Version++
	}
	index := make(map[string]int, len(t.Body))
	for _, e := range t.Body {
		if _, ok := index[e.Original]; ok {
			continue
		}
		index[e.Original] = len(out.Body)
		out.Body = append(out.Body, e)
	}
	for _, e := range from.Body {
		if e.Translation == "" {
			continue
		}
		if i, ok := index[e.Original]; ok {
			out.Body[i].Translation = e.Translation
			continue
		}
		index[e.Original] = len(out.Body)
		out.Body = append(out.Body, e)
	}
	return out
}

// ToTraditional converts every translation with conv.
func (t *ConsoleTable) ToTraditional(conv Converter) error {
	for i := range t.Body {
		s, err := conv.Convert(t.Body[i].Translation)
		if err != nil {
			return fmt.Errorf("convert %q: %w", t.Body[i].Original, err)
		}
		t.Body[i].Translation = s
	}
	return nil
}

// big5Mark survives YAML quoting and becomes a raw backslash afterwards.
const big5Mark = `[[[\]]]`

// Save writes t as UTF-8-SIG with double-quoted strings. big5Escape adds
// the raw Big5 backslash escape to the translations.
func (t *ConsoleTable) Save(path string, big5Escape bool) error {
	str := func(s string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	}
	quoted := func(s string) *yaml.Node {
		n := str(s)
		n.Style = yaml.DoubleQuotedStyle
		return n
	}

	body := &yaml.Node{Kind: yaml.SequenceNode}
	for _, e := range t.Body {
		trans := e.Translation
		if big5Escape {
			trans = charset.Big5EscapeWith(trans, big5Mark)
		}
		body.Content = append(body.Content, &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
			str("Original"), quoted(e.Original),
			str("Translation"), quoted(trans),
		}})
	}
	header := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		str("Type"), str(t.Type),
		str("Version"), {Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(t.Version)},
	}}
	doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		str("Header"), header,
		str("Body"), body,
	}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	text := strings.ReplaceAll(buf.String(), `[[[\\]]]`, `\`)

	data, err := charset.Encode(text, charset.UTF8BOM)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logging.Translate("saved %d console entries to %s", len(t.Body), path)
	return nil
}

// ErrNoConsoleTables is returned when a directory has no
// translation_*.yml files to update.
var ErrNoConsoleTables = errors.New("no console translation tables")

// UpdateConsoleTables merges the existing translations of every
// translation_*.yml in dir into built and writes the result back. The _tw
// tables keep their Big5 escapes. It returns the updated paths.
func UpdateConsoleTables(dir string, built *ConsoleTable, bump bool, onFile func(path string)) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "translation_*.yml"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoConsoleTables, dir)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if onFile != nil {
			onFile(path)
		}
		existing, err := LoadConsoleTable(path)
		if err != nil {
			return nil, err
		}
		merged := built.Merge(existing, bump)
		if err := merged.Save(path, strings.HasSuffix(path, "_tw.yml")); err != nil {
			return nil, err
		}
	}
	return paths, nil
}
