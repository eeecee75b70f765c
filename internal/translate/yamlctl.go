package translate

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"pandaskit/internal/logging"
)

// YamlController translates the entries of a YAML database's top-level Body
// sequence. Each entry's IDField is looked up and TargetField receives the
// translation. With TargetPos > 0 the field is moved to that key position.
type YamlController struct {
	IDField     string
	TargetField string
	TargetPos   int
	Escape      bool
	Table       *Table
	Output
}

// Execute translates path in place. Comments survive the round trip;
// indentation is normalised to two spaces.
func (c *YamlController) Execute(path string) (bool, error) {
	src, ok, err := load(path)
	if err != nil || !ok {
		return false, err
	}

	out, err := c.Translate([]byte(src.text))
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	return true, c.save(path, string(out), src, c.Table)
}

// Translate returns data with every mapped entry translated.
func (c *YamlController) Translate(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	replaced := 0
	if body := bodySequence(&doc); body != nil {
		for _, item := range body.Content {
			if item.Kind == yaml.MappingNode && c.translateItem(item) {
				replaced++
			}
		}
	}
	logging.TranslateDebug("yaml: %d entries translated with %s", replaced, c.Table.Name)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *YamlController) translateItem(item *yaml.Node) bool {
	_, idNode := mappingEntry(item, c.IDField)
	if idNode == nil {
		return false
	}
	id, err := strconv.Atoi(strings.TrimSpace(idNode.Value))
	if err != nil {
		return false
	}
	trans, ok := lookupTrans(c.Table, strconv.Itoa(id), c.Escape, nil, "")
	if !ok {
		return false
	}

	value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: trans}
	if strings.ContainsAny(trans, "[]") {
		value.Style = yaml.DoubleQuotedStyle
	}

	if c.TargetPos > 0 {
		removeEntry(item, c.TargetField)
		insertEntry(item, c.TargetPos, c.TargetField, value)
		return true
	}
	if i, old := mappingEntry(item, c.TargetField); old != nil {
		value.LineComment = old.LineComment
		item.Content[i+1] = value
		return true
	}
	insertEntry(item, len(item.Content)/2, c.TargetField, value)
	return true
}

// bodySequence returns the Body sequence of a database document.
func bodySequence(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	_, body := mappingEntry(doc.Content[0], "Body")
	if body == nil || body.Kind != yaml.SequenceNode {
		return nil
	}
	return body
}

// mappingEntry returns the key index and value node of key in a mapping.
func mappingEntry(m *yaml.Node, key string) (int, *yaml.Node) {
	if m.Kind != yaml.MappingNode {
		return -1, nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return i, m.Content[i+1]
		}
	}
	return -1, nil
}

func removeEntry(m *yaml.Node, key string) {
	if i, _ := mappingEntry(m, key); i >= 0 {
		m.Content = append(m.Content[:i], m.Content[i+2:]...)
	}
}

// insertEntry places key at entry position pos, appending past the end.
func insertEntry(m *yaml.Node, pos int, key string, value *yaml.Node) {
	at := 2 * pos
	if at > len(m.Content) {
		at = len(m.Content)
	}
	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	m.Content = append(m.Content[:at], append([]*yaml.Node{k, value}, m.Content[at:]...)...)
}
