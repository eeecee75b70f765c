// Package diff computes line diffs with sergi/go-diff and renders them in
// unified format. It backs the dry-run preview of planned insertions.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType represents the type of diff line
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

// Line represents a single line in the diff
type Line struct {
	LineNum int
	Content string
	Type    LineType
}

// Hunk represents a group of changes
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// FileDiff represents changes to a single file
type FileDiff struct {
	OldPath string
	NewPath string
	Hunks   []Hunk
}

// Stats returns the number of added and removed lines.
func (fd *FileDiff) Stats() (added, removed int) {
	for _, h := range fd.Hunks {
		for _, l := range h.Lines {
			switch l.Type {
			case LineAdded:
				added++
			case LineRemoved:
				removed++
			}
		}
	}
	return added, removed
}

// Engine wraps a configured diffmatchpatch instance.
type Engine struct {
	dmp     *diffmatchpatch.DiffMatchPatch
	Context int
}

// NewEngine creates a diff engine with three lines of context.
func NewEngine() *Engine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return &Engine{dmp: dmp, Context: 3}
}

// ComputeDiff creates a FileDiff from old and new content strings.
func (e *Engine) ComputeDiff(oldPath, newPath, oldContent, newContent string) *FileDiff {
	fd := &FileDiff{OldPath: oldPath, NewPath: newPath}
	if oldContent == newContent {
		return fd
	}

	// Line-level reduction keeps hunks aligned to whole lines.
	a, b, lineArray := e.dmp.DiffLinesToChars(oldContent, newContent)
	diffs := e.dmp.DiffMain(a, b, false)
	diffs = e.dmp.DiffCharsToLines(diffs, lineArray)

	fd.Hunks = e.group(toOperations(diffs))
	return fd
}

type operation struct {
	typ     LineType
	oldIdx  int // old lines consumed before this op
	newIdx  int // new lines consumed before this op
	content string
}

func toOperations(diffs []diffmatchpatch.Diff) []operation {
	var ops []operation
	oldIdx, newIdx := 0, 0

	for _, d := range diffs {
		lines := strings.Split(d.Text, "\n")
		if strings.HasSuffix(d.Text, "\n") {
			lines = lines[:len(lines)-1]
		}
		for _, line := range lines {
			line = strings.TrimSuffix(line, "\r")
			op := operation{oldIdx: oldIdx, newIdx: newIdx, content: line}
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				op.typ = LineContext
				oldIdx++
				newIdx++
			case diffmatchpatch.DiffDelete:
				op.typ = LineRemoved
				oldIdx++
			case diffmatchpatch.DiffInsert:
				op.typ = LineAdded
				newIdx++
			}
			ops = append(ops, op)
		}
	}
	return ops
}

// group folds operations into hunks, merging change runs whose separating
// context is no longer than twice the context size.
func (e *Engine) group(ops []operation) []Hunk {
	var hunks []Hunk
	ctx := e.Context

	i := 0
	for i < len(ops) {
		if ops[i].typ == LineContext {
			i++
			continue
		}

		start := max(0, i-ctx)
		last := i
		j := i
		for j < len(ops) {
			if ops[j].typ != LineContext {
				last = j
				j++
				continue
			}
			k := j
			for k < len(ops) && ops[k].typ == LineContext {
				k++
			}
			if k < len(ops) && k-j <= 2*ctx {
				j = k
				continue
			}
			break
		}
		stop := min(len(ops), last+1+ctx)

		hunks = append(hunks, buildHunk(ops[start:stop]))
		i = stop
	}
	return hunks
}

func buildHunk(ops []operation) Hunk {
	h := Hunk{
		OldStart: ops[0].oldIdx + 1,
		NewStart: ops[0].newIdx + 1,
		Lines:    make([]Line, 0, len(ops)),
	}
	for _, op := range ops {
		num := op.oldIdx + 1
		switch op.typ {
		case LineContext:
			h.OldCount++
			h.NewCount++
		case LineRemoved:
			h.OldCount++
		case LineAdded:
			h.NewCount++
			num = op.newIdx + 1
		}
		h.Lines = append(h.Lines, Line{LineNum: num, Content: op.content, Type: op.typ})
	}
	return h
}

// Unified renders fd in unified diff format.
func Unified(fd *FileDiff) string {
	if len(fd.Hunks) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", fd.OldPath, fd.NewPath)
	for _, h := range fd.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, l := range h.Lines {
			switch l.Type {
			case LineAdded:
				b.WriteByte('+')
			case LineRemoved:
				b.WriteByte('-')
			default:
				b.WriteByte(' ')
			}
			b.WriteString(l.Content)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
