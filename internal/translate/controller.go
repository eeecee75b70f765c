// Package translate overlays translated names onto the emulator's data
// files. A controller finds numeric ids in one file, looks them up in a
// Table and substitutes the translated text; anything it does not recognise
// is left as it was.
package translate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"pandaskit/internal/charset"
	"pandaskit/internal/logging"
)

// Controller rewrites one file. Execute reports false when path does not
// exist or is not a regular file.
type Controller interface {
	Execute(path string) (bool, error)
}

// Output is how a controller writes its result back.
type Output struct {
	// SaveEncoding is UTF8BOM or UTF8.
	SaveEncoding charset.Kind

	// Big5Escape doubles the 0x5C trail byte of Big5 characters. It only
	// applies to zh-tw tables.
	Big5Escape bool
}

// source is a loaded data file.
type source struct {
	text string
	kind charset.Kind
	perm fs.FileMode
}

// load reads path, falling back to Latin-1 when its encoding cannot be
// detected. ok is false for missing paths and directories.
func load(path string) (src source, ok bool, err error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return source{}, false, nil
	}
	if err != nil {
		return source{}, false, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return source{}, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return source{}, false, fmt.Errorf("read %s: %w", path, err)
	}

	src = source{kind: charset.Detect(data), perm: info.Mode().Perm()}
	if src.kind != charset.Unknown {
		src.text, err = charset.Decode(data, src.kind)
	}
	if src.kind == charset.Unknown || err != nil {
		logging.TranslateWarn("%s: encoding not detected, reading as Latin-1", path)
		src.text = charset.DecodeLatin1(data)
	}
	return src, true, nil
}

func (o Output) save(path, text string, src source, t *Table) error {
	if o.Big5Escape && t != nil && t.Lang == LangTraditional {
		text = charset.Big5Escape(text)
	}
	enc := o.SaveEncoding
	if enc == charset.Unknown {
		enc = charset.UTF8BOM
	}
	data, err := charset.Encode(text, enc)
	if err != nil {
		return fmt.Errorf("encode %s as %s: %w", path, enc, err)
	}
	if err := os.WriteFile(path, data, src.perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logging.TranslateDebug("saved %s (%s -> %s)", path, src.kind, enc)
	return nil
}

// lookupTrans applies escape and decorate to the translation of id.
func lookupTrans(t *Table, id string, escape bool, decorate Decorator, origin string) (string, bool) {
	trans, ok := t.Lookup(id)
	if !ok || trans == "" {
		return "", false
	}
	if escape {
		trans = Escape(trans)
	}
	if decorate != nil {
		trans = decorate(origin, trans)
	}
	return trans, true
}
