package translate

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"pandaskit/internal/logging"
)

// ErrMessageFileNotFound is returned when a message file or one of its
// imports is missing.
var ErrMessageFileNotFound = errors.New("message file not found")

var formatSpecifier = regexp.MustCompile(`%([+\-#0]|)(\d+|\*|)(\.\d+|\.\*|)[diuoxXfFeEgGaAcspn%]?`)

// FormatSpecifiers returns the printf conversions of s in order.
func FormatSpecifiers(s string) []string {
	return formatSpecifier.FindAllString(s, -1)
}

// Message is one numbered entry of a message file.
type Message struct {
	Text   string
	Format []string
}

// MessageFile is a parsed msg_conf file. Imports are the root-relative paths
// named by its import, import_cht and import_chs lines.
type MessageFile struct {
	Path     string
	Messages map[int]Message
	Imports  []string
}

// ParseMessages reads "<id>: <text>" lines. Comment lines and lines without
// a colon are skipped, as are entries whose key is not a number and not an
// import directive.
func ParseMessages(name, text string) *MessageFile {
	mf := &MessageFile{Path: name, Messages: make(map[int]Message)}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "//") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		switch strings.ToLower(key) {
		case "import", "import_cht", "import_chs":
			mf.Imports = append(mf.Imports, filepath.ToSlash(value))
			continue
		}
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		mf.Messages[id] = Message{Text: value, Format: FormatSpecifiers(value)}
	}
	return mf
}

// FormatMismatch is a translated message whose format specifiers differ
// from the entry file's.
type FormatMismatch struct {
	ID    int
	Entry string
	File  string
	Want  Message
	Got   Message
}

func (m FormatMismatch) String() string {
	return fmt.Sprintf("%s: message %d has %v, %s has %v", m.File, m.ID, m.Got.Format, m.Entry, m.Want.Format)
}

// FormatChecker compares the printf arguments of every imported message
// file against the entry file that imports it.
type FormatChecker struct {
	Root    string
	Entries []string // root-relative, slash-separated

	// OnFile is called for every file compared against an entry.
	OnFile func(entry, file string)
}

// NewFormatChecker checks the login, char and map message files under
// confDir.
func NewFormatChecker(root, confDir string) *FormatChecker {
	if confDir == "" {
		confDir = "conf"
	}
	confDir = filepath.ToSlash(confDir)
	return &FormatChecker{
		Root: root,
		Entries: []string{
			path.Join(confDir, "msg_conf", "login_msg.conf"),
			path.Join(confDir, "msg_conf", "char_msg.conf"),
			path.Join(confDir, "msg_conf", "map_msg.conf"),
		},
	}
}

// Check returns every mismatch grouped by file in import order. A missing
// entry file is skipped; a missing import is an error.
func (c *FormatChecker) Check() ([]FormatMismatch, error) {
	timer := logging.StartTimer(logging.CategoryTranslate, "fmtargs")
	defer timer.Stop()

	var out []FormatMismatch
	for _, entry := range c.Entries {
		master, ok, err := c.read(entry)
		if err != nil {
			return nil, err
		}
		if !ok {
			logging.TranslateWarn("message file %s not found, skipped", entry)
			continue
		}

		imports, err := c.imports(master)
		if err != nil {
			return nil, err
		}
		for _, mf := range imports {
			if c.OnFile != nil {
				c.OnFile(entry, mf.Path)
			}
			out = append(out, compareMessages(master, mf)...)
		}
	}
	return out, nil
}

// imports follows the import lines of mf depth-first, visiting each file
// once.
func (c *FormatChecker) imports(mf *MessageFile) ([]*MessageFile, error) {
	seen := map[string]bool{mf.Path: true}
	var files []*MessageFile
	var walk func(*MessageFile) error
	walk = func(parent *MessageFile) error {
		for _, name := range parent.Imports {
			if seen[name] {
				continue
			}
			seen[name] = true
			child, ok, err := c.read(name)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s (imported by %s)", ErrMessageFileNotFound, name, parent.Path)
			}
			files = append(files, child)
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(mf); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *FormatChecker) read(name string) (*MessageFile, bool, error) {
	src, ok, err := load(filepath.Join(c.Root, filepath.FromSlash(name)))
	if err != nil || !ok {
		return nil, ok, err
	}
	return ParseMessages(name, src.text), true, nil
}

func compareMessages(master, mf *MessageFile) []FormatMismatch {
	var out []FormatMismatch
	for id, got := range mf.Messages {
		want, ok := master.Messages[id]
		if !ok || slices.Equal(want.Format, got.Format) {
			continue
		}
		out = append(out, FormatMismatch{ID: id, Entry: master.Path, File: mf.Path, Want: want, Got: got})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
