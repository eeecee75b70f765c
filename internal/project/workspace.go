// Package project reads edition and version facts from an emulator source
// tree.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"pandaskit/internal/charset"
	"pandaskit/internal/inject"
)

var (
	communityPattern  = regexp.MustCompile(`#define Pandas_Version "(.*)"`)
	commercialPattern = regexp.MustCompile(`#define Pandas_Commercial_Version "(.*)"`)
)

// ErrVersionNotFound is returned when the header exists but holds no
// version define.
var ErrVersionNotFound = errors.New("version define not found")

// Workspace is an emulator checkout rooted at Root.
type Workspace struct {
	Root string
}

// CommunityHeader is the file defining Pandas_Version.
func (w Workspace) CommunityHeader() string {
	return filepath.Join(w.Root, "src", "config", "pandas.hpp")
}

// CommercialHeader is the file defining Pandas_Commercial_Version.
func (w Workspace) CommercialHeader() string {
	return filepath.Join(w.Root, "src", "config", "professional.hpp")
}

// IsCommercial reports whether the commercial edition header carries a
// version define.
func (w Workspace) IsCommercial() bool {
	v, err := firstMatch(w.CommercialHeader(), commercialPattern)
	return err == nil && v != ""
}

// Mode maps the edition onto injection point numbering.
func (w Workspace) Mode() inject.Mode {
	if w.IsCommercial() {
		return inject.Commercial
	}
	return inject.Community
}

// CommunityVersion returns Pandas_Version. Unless origin is set, a
// four-field version is shortened to three fields with "-dev" appended when
// the fourth field is 1.
func (w Workspace) CommunityVersion(origin bool) (string, error) {
	v, err := firstMatch(w.CommunityHeader(), communityPattern)
	if err != nil || origin {
		return v, err
	}
	f := strings.Split(v, ".")
	if len(f) != 4 {
		return v, nil
	}
	v = strings.Join(f[:3], ".")
	if f[3] == "1" {
		v += "-dev"
	}
	return v, nil
}

// CommercialVersion returns Pandas_Commercial_Version. Unless origin is
// set, the fourth field becomes a " Rev.N" suffix when it is non-zero.
func (w Workspace) CommercialVersion(origin bool) (string, error) {
	v, err := firstMatch(w.CommercialHeader(), commercialPattern)
	if err != nil || origin {
		return v, err
	}
	f := strings.Split(v, ".")
	if len(f) != 4 {
		return v, nil
	}
	v = strings.Join(f[:3], ".")
	if f[3] != "0" {
		v += " Rev." + f[3]
	}
	return v, nil
}

// DisplayVersion is the version shown to users: commercial when that
// edition is active, community otherwise.
func (w Workspace) DisplayVersion(prefix string) (string, error) {
	var (
		v   string
		err error
	)
	if w.IsCommercial() {
		v, err = w.CommercialVersion(false)
	} else {
		v, err = w.CommunityVersion(false)
	}
	if err != nil {
		return "", err
	}
	return prefix + v, nil
}

func firstMatch(path string, re *regexp.Regexp) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	kind := charset.Detect(data)
	if kind == charset.Unknown {
		return "", fmt.Errorf("%s: %w", path, charset.ErrUnsupported)
	}
	text, err := charset.Decode(data, kind)
	if err != nil {
		return "", err
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", fmt.Errorf("%w in %s", ErrVersionNotFound, path)
	}
	return m[1], nil
}
