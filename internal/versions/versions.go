// Package versions rewrites the four-field version number across resource
// scripts and the edition headers of a source tree.
package versions

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"pandaskit/internal/charset"
	"pandaskit/internal/inject"
	"pandaskit/internal/logging"
)

var ErrInvalidVersion = errors.New("version must have four numeric fields")

// Valid reports whether v is four dot-separated runs of digits.
func Valid(v string) bool {
	fields := strings.Split(v, ".")
	if len(fields) != 4 {
		return false
	}
	for _, f := range fields {
		if f == "" {
			return false
		}
		for _, r := range f {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// Format renders a dotted or comma separated version as "." (dotted), ","
// (comma separated) or "fmt" (v1.2.3, with -dev when the fourth field is 1).
func Format(v, mode string) (string, error) {
	var fields []string
	switch {
	case strings.Contains(v, "."):
		fields = strings.Split(v, ".")
	case strings.Contains(v, ","):
		fields = strings.Split(v, ",")
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}

	switch mode {
	case ".":
		return strings.Join(fields, "."), nil
	case ",":
		return strings.Join(fields, ","), nil
	case "fmt":
		if len(fields) != 4 {
			return "", fmt.Errorf("%w: %q", ErrInvalidVersion, v)
		}
		out := fmt.Sprintf("v%s.%s.%s", fields[0], fields[1], fields[2])
		if fields[3] == "1" {
			out += "-dev"
		}
		return out, nil
	}
	return "", fmt.Errorf("unknown version format %q", mode)
}

// Rule rewrites one define in matching files.
type Rule struct {
	Pattern *regexp.Regexp
	Replace string       // fmt template receiving the formatted version
	Mode    string       // see Format
	Edition *inject.Mode // nil applies to both editions
}

// RuleSet groups rules by the base-name pattern of the files they apply to.
type RuleSet struct {
	Files *regexp.Regexp
	Rules []Rule
}

func edition(m inject.Mode) *inject.Mode { return &m }

// DefaultRuleSets covers Windows resource scripts and the edition header.
func DefaultRuleSets() []RuleSet {
	return []RuleSet{
		{
			Files: regexp.MustCompile(`.*\.rc$`),
			Rules: []Rule{
				{Pattern: regexp.MustCompile(`FILEVERSION (\d+,\d+,\d+,\d+)`), Replace: "FILEVERSION %s", Mode: ","},
				{Pattern: regexp.MustCompile(`PRODUCTVERSION (\d+,\d+,\d+,\d+)`), Replace: "PRODUCTVERSION %s", Mode: ","},
				{Pattern: regexp.MustCompile(`VALUE "FileVersion", "(.*)"`), Replace: `VALUE "FileVersion", "%s"`, Mode: "."},
				{Pattern: regexp.MustCompile(`VALUE "ProductVersion", "(.*)"`), Replace: `VALUE "ProductVersion", "%s"`, Mode: "."},
			},
		},
		{
			Files: regexp.MustCompile(`^pandas\.hpp$`),
			Rules: []Rule{
				{Pattern: regexp.MustCompile(`#define Pandas_Version "(.*)"`), Replace: `#define Pandas_Version "%s"`, Mode: ".", Edition: edition(inject.Community)},
				{Pattern: regexp.MustCompile(`#define Pandas_Commercial_Version "(.*)"`), Replace: `#define Pandas_Commercial_Version "%s"`, Mode: ".", Edition: edition(inject.Commercial)},
			},
		},
	}
}

// Update records one rewritten file.
type Update struct {
	Path         string
	Replacements int
}

// Updater applies rule sets to a directory tree.
type Updater struct {
	Sets []RuleSet

	// OnFile is called before each matching file is processed.
	OnFile func(path string)
}

// NewUpdater returns an Updater using DefaultRuleSets.
func NewUpdater() *Updater {
	return &Updater{Sets: DefaultRuleSets()}
}

// UpdateDirectory rewrites every matching file under dir to version, keeping
// each file's encoding. Files whose content does not change are not written.
func (u *Updater) UpdateDirectory(dir, version string, ed inject.Mode) ([]Update, error) {
	if !Valid(version) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}

	var updates []Update
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		for _, set := range u.Sets {
			if !set.Files.MatchString(d.Name()) {
				continue
			}
			if u.OnFile != nil {
				u.OnFile(path)
			}
			n, err := u.processFile(path, set.Rules, version, ed)
			if err != nil {
				return err
			}
			if n > 0 {
				updates = append(updates, Update{Path: path, Replacements: n})
			}
		}
		return nil
	})
	if err != nil {
		return updates, err
	}
	logging.Versions("updated %d file(s) under %s to %s (%s)", len(updates), dir, version, ed)
	return updates, nil
}

func (u *Updater) processFile(path string, rules []Rule, version string, ed inject.Mode) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	kind := charset.Detect(data)
	if kind == charset.Unknown {
		return 0, fmt.Errorf("%s: %w", path, charset.ErrUnsupported)
	}
	text, err := charset.Decode(data, kind)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	updated := text
	count := 0
	for _, rule := range rules {
		if rule.Edition != nil && *rule.Edition != ed {
			continue
		}
		v, err := Format(version, rule.Mode)
		if err != nil {
			return 0, err
		}
		repl := fmt.Sprintf(rule.Replace, v)
		count += len(rule.Pattern.FindAllStringIndex(updated, -1))
		updated = rule.Pattern.ReplaceAllLiteralString(updated, repl)
	}
	if updated == text {
		logging.VersionsDebug("%s already at %s", path, version)
		return 0, nil
	}

	out, err := charset.Encode(updated, kind)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return 0, err
	}
	logging.VersionsDebug("%s: %d replacement(s)", path, count)
	return count, nil
}
