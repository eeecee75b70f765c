package translate

import (
	"fmt"
	"regexp"
	"strings"

	"pandaskit/internal/logging"
)

// transPlaceholder marks where the translation goes in a Template.
const transPlaceholder = "{trans}"

// FulltextController translates every match of Pattern across the whole
// file. Template rebuilds the match from ${n} group references and the
// {trans} placeholder. IDGroup is looked up verbatim, so ids need not be
// numeric.
type FulltextController struct {
	Pattern string
	// Flags are regexp flags such as "sm", applied to the whole pattern.
	Flags        string
	IDGroup      int
	ReplaceGroup int // optional; the origin passed to Decorate
	Template     string
	Escape       bool
	Decorate     Decorator
	Table        *Table
	Output

	re *regexp.Regexp
}

func (c *FulltextController) compile() (*regexp.Regexp, error) {
	if c.re != nil {
		return c.re, nil
	}
	expr := c.Pattern
	if c.Flags != "" {
		expr = "(?" + c.Flags + ")" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, err)
	}
	if c.IDGroup < 1 || c.IDGroup > re.NumSubexp() || c.ReplaceGroup > re.NumSubexp() {
		return nil, fmt.Errorf("pattern %q has %d groups, id group %d", c.Pattern, re.NumSubexp(), c.IDGroup)
	}
	c.re = re
	return re, nil
}

// Execute translates path in place.
func (c *FulltextController) Execute(path string) (bool, error) {
	re, err := c.compile()
	if err != nil {
		return false, err
	}
	src, ok, err := load(path)
	if err != nil || !ok {
		return false, err
	}

	out, replaced := c.replace(re, src.text)
	logging.TranslateDebug("%s: %d matches translated with %s", path, replaced, c.Table.Name)
	return true, c.save(path, out, src, c.Table)
}

// Replace translates every match in text.
func (c *FulltextController) Replace(text string) (string, error) {
	re, err := c.compile()
	if err != nil {
		return "", err
	}
	out, _ := c.replace(re, text)
	return out, nil
}

func (c *FulltextController) replace(re *regexp.Regexp, text string) (string, int) {
	var (
		b        strings.Builder
		last     int
		replaced int
	)
	parts := strings.Split(c.Template, transPlaceholder)

	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(text[last:m[0]])
		last = m[1]

		match := text[m[0]:m[1]]
		if m[2*c.IDGroup] < 0 {
			b.WriteString(match)
			continue
		}
		id := text[m[2*c.IDGroup]:m[2*c.IDGroup+1]]
		if id == "" {
			b.WriteString(match)
			continue
		}

		origin := ""
		if c.ReplaceGroup > 0 && m[2*c.ReplaceGroup] >= 0 {
			origin = text[m[2*c.ReplaceGroup]:m[2*c.ReplaceGroup+1]]
		}
		trans, ok := lookupTrans(c.Table, id, c.Escape, c.Decorate, origin)
		if !ok {
			b.WriteString(match)
			continue
		}

		var dst []byte
		for i, part := range parts {
			dst = re.ExpandString(dst, part, text, m)
			if i < len(parts)-1 {
				dst = append(dst, trans...)
			}
		}
		b.Write(dst)
		replaced++
	}
	b.WriteString(text[last:])
	return b.String(), replaced
}
