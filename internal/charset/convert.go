package charset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pandaskit/internal/logging"
)

// Conversion records one rewritten file.
type Conversion struct {
	Path string
	From Kind
	To   Kind
}

// Converter rewrites every matching file in a tree into one target encoding.
type Converter struct {
	Extensions  []string // lower-case, with leading dot
	IgnoreFiles []string // base names, compared case-insensitively
}

// NewSourceConverter returns the converter used for the C/C++ source tree.
func NewSourceConverter() *Converter {
	return &Converter{
		Extensions:  []string{".hpp", ".cpp", ".h", ".c"},
		IgnoreFiles: []string{"Makefile", "Makefile.in", "CMakeLists.txt"},
	}
}

// ConvertTree converts every file under dir whose detected encoding differs
// from to. Files whose encoding cannot be detected are returned in skipped
// and left untouched.
func (c *Converter) ConvertTree(dir string, to Kind) (converted []Conversion, skipped []string, err error) {
	timer := logging.StartTimer(logging.CategoryCharset, "ConvertTree "+dir)
	defer timer.Stop()

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !c.matches(d.Name()) {
			return nil
		}

		conv, ok, err := c.ConvertFile(path, to)
		if err != nil {
			return err
		}
		if !ok {
			if conv.From == Unknown {
				skipped = append(skipped, path)
			}
			return nil
		}
		converted = append(converted, conv)
		return nil
	})
	if err != nil {
		return converted, skipped, fmt.Errorf("convert %s: %w", dir, err)
	}
	logging.Charset("converted %d files under %s to %s (%d skipped)", len(converted), dir, to, len(skipped))
	return converted, skipped, nil
}

// ConvertFile rewrites one file into the target encoding. It reports false
// when the file already matches or its encoding is unknown.
func (c *Converter) ConvertFile(path string, to Kind) (Conversion, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Conversion{Path: path}, false, err
	}

	from := Detect(data)
	conv := Conversion{Path: path, From: from, To: to}
	if from == Unknown || from == to {
		return conv, false, nil
	}

	text, err := Decode(data, from)
	if err != nil {
		return conv, false, fmt.Errorf("%s: %w", path, err)
	}
	out, err := Encode(text, to)
	if err != nil {
		return conv, false, fmt.Errorf("%s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return conv, false, err
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return conv, false, err
	}
	logging.CharsetDebug("%s: %s -> %s", path, from, to)
	return conv, true, nil
}

func (c *Converter) matches(name string) bool {
	for _, ignore := range c.IgnoreFiles {
		if strings.EqualFold(ignore, name) {
			return false
		}
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range c.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}
