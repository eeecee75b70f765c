// Package prompt implements the typed console questions the guides ask:
// free text, integers, yes/no and single choice. Input is read line by line
// from any reader so a guide can be scripted through a pipe.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pandaskit/internal/console"
	"pandaskit/internal/logging"
)

var (
	ErrEmptyInput    = errors.New("at least one character is required")
	ErrNotNumber     = errors.New("input is not a number")
	ErrOutOfRange    = errors.New("number is out of range")
	ErrInvalidChoice = errors.New("invalid choice")
	ErrAborted       = errors.New("aborted by user")
)

// Prompter asks questions on a console and reads the answers from in.
type Prompter struct {
	in  *bufio.Reader
	out *console.Printer
}

// New creates a Prompter.
func New(in io.Reader, out *console.Printer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Printer returns the console the prompter writes to.
func (p *Prompter) Printer() *console.Printer { return p.out }

// readLine returns one line without its terminator. EOF with no data reads
// as an empty answer.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *Prompter) open() {
	p.out.Separator("-")
}

func (p *Prompter) close() {
	p.out.Separator("-")
	p.out.Blank()
}

func (p *Prompter) fail(err error, format string, args ...interface{}) error {
	p.out.Error(format, args...)
	p.out.Separator("-")
	return err
}

// TextOptions configures Text.
type TextOptions struct {
	Tips       string
	Prefix     string // prepended to the answer
	Default    string // used when the answer is empty
	Upper      bool
	Lower      bool
	AllowEmpty bool
}

// Text asks for a line of free text.
func (p *Prompter) Text(opts TextOptions) (string, error) {
	p.open()
	p.out.Select("%s:\n", opts.Tips)
	fmt.Fprint(p.out.Writer(), opts.Prefix)

	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)

	var result string
	switch {
	case answer != "":
		result = opts.Prefix + answer
	case opts.Default != "":
		result = opts.Default
	case opts.AllowEmpty:
		result = ""
	default:
		return "", p.fail(ErrEmptyInput, "Please enter at least one character.")
	}

	if opts.Upper {
		result = strings.ToUpper(result)
	}
	if opts.Lower {
		result = strings.ToLower(result)
	}

	p.out.Info("You entered: %s", result)
	p.close()
	logging.GuideDebug("text %q -> %q", opts.Tips, result)
	return result, nil
}

// IntOptions configures Int. Min and Max are checked only when Bounded.
type IntOptions struct {
	Tips       string
	AllowEmpty bool
	Default    int
	Bounded    bool
	Min, Max   int
}

// Int asks for a decimal integer.
func (p *Prompter) Int(opts IntOptions) (int, error) {
	p.open()
	p.out.Select("%s: ", opts.Tips)

	answer, err := p.readLine()
	if err != nil {
		return 0, err
	}
	answer = strings.TrimSpace(answer)

	result := opts.Default
	if answer == "" {
		if !opts.AllowEmpty {
			return 0, p.fail(ErrEmptyInput, "Please enter a number.")
		}
	} else {
		result, err = strconv.Atoi(answer)
		if err != nil {
			return 0, p.fail(ErrNotNumber, "%q is not a valid number.", answer)
		}
	}

	if opts.Bounded && (result < opts.Min || result > opts.Max) {
		return 0, p.fail(ErrOutOfRange, "%d is outside [%d, %d].", result, opts.Min, opts.Max)
	}

	p.out.Info("You entered: %d", result)
	p.close()
	logging.GuideDebug("int %q -> %d", opts.Tips, result)
	return result, nil
}

// BoolOptions configures Bool.
type BoolOptions struct {
	Tips    string
	Default bool
}

// Bool asks a yes/no question. Anything other than y/yes/n/no picks the
// default.
func (p *Prompter) Bool(opts BoolOptions) (bool, error) {
	p.open()
	p.out.Select("%s [Y/N]: ", opts.Tips)

	answer, err := p.readLine()
	if err != nil {
		return false, err
	}

	result := opts.Default
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		result = true
	case "n", "no":
		result = false
	}

	if result {
		p.out.Info("You entered: Yes")
	} else {
		p.out.Info("You entered: No")
	}
	p.close()
	return result, nil
}

// Choice is one entry of a Select menu.
type Choice struct {
	Name string // echoed after selection
	Desc string // shown in the menu
}

// SelectOptions configures Select.
type SelectOptions struct {
	Name    string
	Choices []Choice
}

// Select shows a numbered menu and returns the chosen index.
func (p *Prompter) Select(opts SelectOptions) (int, error) {
	last := len(opts.Choices) - 1
	p.open()
	p.out.Select("Choose %s, valid values are [0~%d]:\n", opts.Name, last)
	p.out.Blank()
	for i, c := range opts.Choices {
		p.out.Menu("%d - %s", i, c.Desc)
	}
	p.out.Blank()
	p.out.Select("Choose %s [0~%d]: ", opts.Name, last)

	answer, err := p.readLine()
	if err != nil {
		return 0, err
	}
	answer = strings.TrimSpace(answer)

	idx, err := strconv.Atoi(answer)
	if err != nil || idx < 0 || idx > last || strings.HasPrefix(answer, "+") {
		return 0, p.fail(ErrInvalidChoice, "%q is not a valid %s.", answer, opts.Name)
	}

	p.out.Blank()
	p.out.Info("You chose: %s", opts.Choices[idx].Name)
	p.close()
	logging.GuideDebug("select %q -> %d", opts.Name, idx)
	return idx, nil
}

// Confirm asks the final go-ahead question. A "no" (the default) returns
// ErrAborted.
func (p *Prompter) Confirm(tips string) error {
	ok, err := p.Bool(BoolOptions{Tips: tips, Default: false})
	if err != nil {
		return err
	}
	if !ok {
		p.out.Status("Write cancelled, nothing was changed.")
		return ErrAborted
	}
	return nil
}
