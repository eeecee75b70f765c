// Package charset detects and round-trips the text encodings found in the
// server source tree: BOM-marked UTF-8, plain UTF-8, UTF-16 and GBK.
package charset

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// Kind identifies a detected file encoding.
type Kind int

const (
	Unknown Kind = iota
	UTF8BOM
	UTF8
	UTF16LE
	UTF16BE
	GBK
)

var kindNames = map[Kind]string{
	Unknown: "unknown",
	UTF8BOM: "UTF-8-SIG",
	UTF8:    "UTF-8",
	UTF16LE: "UTF-16LE",
	UTF16BE: "UTF-16BE",
	GBK:     "GBK",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a configuration name such as "UTF-8-SIG" to a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "UTF-8-SIG", "UTF8-SIG", "UTF-8-BOM":
		return UTF8BOM, nil
	case "UTF-8", "UTF8":
		return UTF8, nil
	case "UTF-16LE", "UTF-16":
		return UTF16LE, nil
	case "UTF-16BE":
		return UTF16BE, nil
	case "GBK", "GB2312", "CP936":
		return GBK, nil
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnsupported, name)
}

var (
	// ErrUnsupported is returned when text cannot be mapped to or from a Kind.
	ErrUnsupported = errors.New("unsupported encoding")

	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Detect inspects raw file content. Byte-order marks win, then strict UTF-8
// validity, then strict GBK decodability. Nothing is guessed beyond that.
func Detect(data []byte) Kind {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return UTF8BOM
	case bytes.HasPrefix(data, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		return UTF16BE
	case utf8.Valid(data):
		return UTF8
	}
	if decodesCleanly(simplifiedchinese.GBK, data) {
		return GBK
	}
	return Unknown
}

// HasBOM reports whether data starts with a UTF-8 byte-order mark.
func HasBOM(data []byte) bool {
	return bytes.HasPrefix(data, bomUTF8)
}

func decodesCleanly(enc encoding.Encoding, data []byte) bool {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return false
	}
	return !bytes.ContainsRune(out, utf8.RuneError)
}

// Decode converts data in the given encoding into a Go string. Any byte-order
// mark is consumed.
func Decode(data []byte, kind Kind) (string, error) {
	switch kind {
	case UTF8BOM:
		return string(bytes.TrimPrefix(data, bomUTF8)), nil
	case UTF8:
		return string(data), nil
	case UTF16LE:
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), data)
	case UTF16BE:
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.UseBOM), data)
	case GBK:
		return decodeWith(simplifiedchinese.GBK, data)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, kind)
}

// DecodeLatin1 maps every byte to one rune. It never fails and is the
// fallback for data files whose encoding cannot be detected.
func DecodeLatin1(data []byte) string {
	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
	return string(out)
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	return string(out), nil
}

// Encode converts text into the given encoding, writing a byte-order mark for
// the BOM-carrying kinds.
func Encode(text string, kind Kind) ([]byte, error) {
	switch kind {
	case UTF8BOM:
		out := make([]byte, 0, len(bomUTF8)+len(text))
		out = append(out, bomUTF8...)
		return append(out, text...), nil
	case UTF8:
		return []byte(text), nil
	case UTF16LE:
		return encodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), text)
	case UTF16BE:
		return encodeWith(unicode.UTF16(unicode.BigEndian, unicode.UseBOM), text)
	case GBK:
		return encodeWith(simplifiedchinese.GBK, text)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind)
}

func encodeWith(enc encoding.Encoding, text string) ([]byte, error) {
	out, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return out, nil
}

// Unencodable returns every rune of text that the legacy code page named by
// codepage ("gbk" or "big5") cannot represent, in order of appearance.
func Unencodable(text, codepage string) ([]rune, error) {
	enc, err := legacy(codepage)
	if err != nil {
		return nil, err
	}
	var bad []rune
	e := enc.NewEncoder()
	for _, r := range text {
		if r == '\r' || r == '\n' {
			continue
		}
		if _, err := e.String(string(r)); err != nil {
			bad = append(bad, r)
		}
	}
	return bad, nil
}

func legacy(codepage string) (encoding.Encoding, error) {
	switch strings.ToLower(codepage) {
	case "gbk":
		return simplifiedchinese.GBK, nil
	case "big5":
		return traditionalchinese.Big5, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, codepage)
}

// Big5Escape appends a backslash after every character whose Big5 trail byte
// is 0x5C, so the legacy client does not read it as an escape.
func Big5Escape(text string) string {
	return Big5EscapeWith(text, `\`)
}

// Big5EscapeWith is Big5Escape with a caller-chosen escape sequence.
func Big5EscapeWith(text, esc string) string {
	e := traditionalchinese.Big5.NewEncoder()
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		b.WriteRune(r)
		if big5Trail5C(e, r) {
			b.WriteString(esc)
		}
	}
	return b.String()
}

// Big5Unescape drops the backslash Big5Escape added after a character.
func Big5Unescape(text string) string {
	e := traditionalchinese.Big5.NewEncoder()
	var b strings.Builder
	b.Grow(len(text))
	skip := false
	for _, r := range text {
		if skip && r == '\\' {
			skip = false
			continue
		}
		b.WriteRune(r)
		skip = big5Trail5C(e, r)
	}
	return b.String()
}

func big5Trail5C(e *encoding.Encoder, r rune) bool {
	if r < utf8.RuneSelf {
		return false
	}
	cb, err := e.String(string(r))
	return err == nil && len(cb) == 2 && cb[1] == 0x5C
}

// NewlineOf returns "\r\n" when text uses Windows line endings, else "\n".
func NewlineOf(text string) string {
	if i := strings.IndexByte(text, '\n'); i > 0 && text[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
