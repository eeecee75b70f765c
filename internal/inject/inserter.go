package inject

import (
	"fmt"
	"os"
	"strings"

	"pandaskit/internal/charset"
	"pandaskit/internal/logging"
)

// Writer accepts generated lines for a logical injection point.
type Writer interface {
	Insert(id int, lines []string) error
}

var (
	_ Writer = (*Inserter)(nil)
	_ Writer = (*Preview)(nil)
)

// Inserter writes generated lines into the source tree.
type Inserter struct {
	reg *Registry
}

// NewInserter returns an Inserter that resolves ids through reg and keeps
// it aligned as files grow.
func NewInserter(reg *Registry) *Inserter {
	return &Inserter{reg: reg}
}

// Insert splices lines immediately before the marker for id, rewriting the
// file in its original encoding and newline style.
func (ins *Inserter) Insert(id int, lines []string) error {
	p, ok := ins.reg.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPoint, id)
	}
	if len(lines) == 0 {
		return nil
	}

	data, err := os.ReadFile(p.FilePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", p.FilePath, err)
	}
	kind := charset.Detect(data)
	if kind == charset.Unknown {
		return fmt.Errorf("%w: %s", ErrUnsupportedEncoding, p.FilePath)
	}
	text, err := charset.Decode(data, kind)
	if err != nil {
		return fmt.Errorf("decode %s: %w", p.FilePath, err)
	}

	updated, err := spliceBefore(text, p.Line, lines)
	if err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	out, err := charset.Encode(updated, kind)
	if err != nil {
		return fmt.Errorf("encode %s: %w", p.FilePath, err)
	}

	info, err := os.Stat(p.FilePath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p.FilePath, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", p.FilePath, err)
	}

	ins.reg.shift(p.FilePath, p.Line, len(lines))
	logging.Inject("inserted %d lines at %s (point %d, %s)", len(lines), p, id, kind)
	return nil
}

// spliceBefore inserts lines before the 1-based line of text. The block is
// joined and terminated with the newline style text already uses.
func spliceBefore(text string, line int, lines []string) (string, error) {
	if line < 1 {
		return "", fmt.Errorf("%w: line %d", ErrLineOutOfRange, line)
	}
	offset := 0
	for i := 1; i < line; i++ {
		j := strings.IndexByte(text[offset:], '\n')
		if j < 0 {
			return "", fmt.Errorf("%w: line %d", ErrLineOutOfRange, line)
		}
		offset += j + 1
	}

	nl := charset.NewlineOf(text)
	block := strings.Join(lines, nl) + nl
	return text[:offset] + block + text[offset:], nil
}
