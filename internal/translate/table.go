package translate

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pandaskit/internal/charset"
	"pandaskit/internal/logging"
)

// Supported target languages.
const (
	LangSimplified  = "zh-cn"
	LangTraditional = "zh-tw"
)

var (
	ErrTableNotFound       = errors.New("translation table not found")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrUnknownDecorator    = errors.New("unknown decorator")
	ErrUnknownKind         = errors.New("unknown controller kind")
)

// Codepage returns the legacy code page every translated string of lang
// must fit in.
func Codepage(lang string) (string, error) {
	switch lang {
	case LangSimplified:
		return "gbk", nil
	case LangTraditional:
		return "big5", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
}

// EncodingIssue is a character of a table that the game client cannot show.
type EncodingIssue struct {
	Path     string
	Line     int
	Char     rune
	Codepage string
}

func (e EncodingIssue) String() string {
	return fmt.Sprintf("%s line %d: %q is not in the %s code page", e.Path, e.Line, e.Char, e.Codepage)
}

// Table is a flat id → translated text lookup loaded from
// <dir>/<lang>/<name>.txt.
type Table struct {
	Name string
	Lang string
	Path string

	// Issues lists characters outside the language's code page. They are
	// reported, not fatal.
	Issues []EncodingIssue

	entries map[string]string
}

// LoadTable reads the named table for lang from dir.
func LoadTable(dir, lang, name string) (*Table, error) {
	codepage, err := Codepage(lang)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, lang, name+".txt")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}

	t := &Table{Name: name, Lang: lang, Path: path, entries: make(map[string]string)}
	text := string(bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF")))

	for i, raw := range strings.Split(text, "\n") {
		bad, err := charset.Unencodable(raw, codepage)
		if err != nil {
			return nil, err
		}
		for _, r := range bad {
			t.Issues = append(t.Issues, EncodingIssue{Path: path, Line: i + 1, Char: r, Codepage: codepage})
		}

		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "//") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
			continue
		}
		// Later rows win.
		t.entries[fields[0]] = fields[1]
	}

	logging.TranslateDebug("table %s/%s: %d entries, %d encoding issues", lang, name, len(t.entries), len(t.Issues))
	return t, nil
}

// NewTable builds an in-memory table.
func NewTable(name, lang string, entries map[string]string) *Table {
	t := &Table{Name: name, Lang: lang, entries: make(map[string]string, len(entries))}
	for k, v := range entries {
		t.entries[k] = v
	}
	return t
}

// Lookup returns the translation of id.
func (t *Table) Lookup(id string) (string, bool) {
	v, ok := t.entries[id]
	return v, ok
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }
