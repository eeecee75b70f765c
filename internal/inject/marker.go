// Package inject locates marker comments in a source tree and inserts
// generated code immediately before them.
//
// A marker is a single-line comment of the form
//
//	// PYHELP - MAPFLAG - INSERT POINT - <Section 3>
//
// The section number names one injection point. Scanning builds a Registry
// mapping each configured point to its file and line; inserting through the
// registry keeps later points in the same file aligned as lines are added.
package inject

import (
	"fmt"
	"regexp"
)

// DefaultTool is the tool token used by every marker in the tree.
const DefaultTool = "PYHELP"

// Mode selects which edition's section numbers are in effect.
type Mode int

const (
	Community Mode = iota
	Commercial
)

func (m Mode) String() string {
	if m == Commercial {
		return "commercial"
	}
	return "community"
}

// MarkerFormat renders and recognises one family of markers.
type MarkerFormat struct {
	Tool string // defaults to DefaultTool
	Kind string // ATCMD, SCRIPTCMD, MAPFLAG, ...
}

func (f MarkerFormat) tool() string {
	if f.Tool == "" {
		return DefaultTool
	}
	return f.Tool
}

// Regexp returns the pattern matching a marker line. Group 1 is the section
// number.
func (f MarkerFormat) Regexp() *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^\s*// %s - %s - INSERT POINT - <Section (\d{1,2})>`,
		regexp.QuoteMeta(f.tool()), regexp.QuoteMeta(f.Kind)))
}

// Render returns the marker comment for a section.
func (f MarkerFormat) Render(section int) string {
	return fmt.Sprintf("// %s - %s - INSERT POINT - <Section %d>", f.tool(), f.Kind, section)
}

// PointSpec is one required injection point.
type PointSpec struct {
	ID          int
	Description string
	ProOffset   int // added to ID in Commercial mode
}

// Section returns the marker section number for the mode.
func (s PointSpec) Section(mode Mode) int {
	if mode == Commercial {
		return s.ID + s.ProOffset
	}
	return s.ID
}

// Point is a located marker. Line is 1-based and moves as content is
// inserted above it.
type Point struct {
	ID       int // logical id from the PointSpec
	Section  int // number written in the marker
	FilePath string
	Line     int
}

func (p Point) String() string {
	return fmt.Sprintf("%s:%d", p.FilePath, p.Line)
}
