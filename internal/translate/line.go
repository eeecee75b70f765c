package translate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"pandaskit/internal/logging"
)

// LineController translates a file one line at a time. Pattern must match
// at the start of a line; IDGroup holds the numeric id and ReplaceGroup the
// text that is swapped for the translation.
type LineController struct {
	Pattern      string
	IDGroup      int
	ReplaceGroup int
	Escape       bool
	Decorate     Decorator
	Table        *Table
	Output

	re *regexp.Regexp
}

func (c *LineController) compile() (*regexp.Regexp, error) {
	if c.re != nil {
		return c.re, nil
	}
	re, err := regexp.Compile(`^(?:` + c.Pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", c.Pattern, err)
	}
	if c.IDGroup < 1 || c.IDGroup > re.NumSubexp() || c.ReplaceGroup < 1 || c.ReplaceGroup > re.NumSubexp() {
		return nil, fmt.Errorf("pattern %q has %d groups, id group %d, replace group %d",
			c.Pattern, re.NumSubexp(), c.IDGroup, c.ReplaceGroup)
	}
	c.re = re
	return re, nil
}

// Execute translates path in place.
func (c *LineController) Execute(path string) (bool, error) {
	re, err := c.compile()
	if err != nil {
		return false, err
	}
	src, ok, err := load(path)
	if err != nil || !ok {
		return false, err
	}

	var (
		b        strings.Builder
		replaced int
	)
	b.Grow(len(src.text))
	for _, line := range strings.SplitAfter(src.text, "\n") {
		body := strings.TrimRight(line, "\r\n")
		out, ok := c.translateLine(re, body)
		if ok {
			replaced++
		}
		b.WriteString(out)
		b.WriteString(line[len(body):])
	}

	logging.TranslateDebug("%s: %d lines translated with %s", path, replaced, c.Table.Name)
	return true, c.save(path, b.String(), src, c.Table)
}

// TranslateLine returns line with its name field translated, or line
// unchanged when it does not match or its id has no translation.
func (c *LineController) TranslateLine(line string) (string, error) {
	re, err := c.compile()
	if err != nil {
		return "", err
	}
	out, _ := c.translateLine(re, line)
	return out, nil
}

func (c *LineController) translateLine(re *regexp.Regexp, body string) (string, bool) {
	m := re.FindStringSubmatchIndex(body)
	if m == nil {
		return body, false
	}
	idStart, idEnd := m[2*c.IDGroup], m[2*c.IDGroup+1]
	repStart, repEnd := m[2*c.ReplaceGroup], m[2*c.ReplaceGroup+1]
	if idStart < 0 || repStart < 0 {
		return body, false
	}

	id := body[idStart:idEnd]
	if !isDigits(id) {
		return body, false
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return body, false
	}

	trans, ok := lookupTrans(c.Table, strconv.Itoa(n), c.Escape, c.Decorate, body[repStart:repEnd])
	if !ok {
		return body, false
	}
	return body[:repStart] + trans + body[repEnd:], true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
