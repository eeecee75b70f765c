package inject

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateMarker     = errors.New("duplicate injection marker")
	ErrMissingPoints       = errors.New("injection points not found")
	ErrUnknownPoint        = errors.New("unknown injection point")
	ErrUnsupportedEncoding = errors.New("cannot detect file encoding")
	ErrLineOutOfRange      = errors.New("marker line is past the end of the file")
)

// DuplicateMarkerError reports a section number seen twice.
type DuplicateMarkerError struct {
	Section int
	First   Point
	Second  Point
}

func (e *DuplicateMarkerError) Error() string {
	return fmt.Sprintf("duplicate injection marker <Section %d> at %s and %s", e.Section, e.First, e.Second)
}

func (e *DuplicateMarkerError) Unwrap() error { return ErrDuplicateMarker }

// MissingPointsError lists every configured point the scan could not find.
type MissingPointsError struct {
	Mode    Mode
	Missing []PointSpec
}

func (e *MissingPointsError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, s := range e.Missing {
		parts = append(parts, fmt.Sprintf("<Section %d> %s", s.Section(e.Mode), s.Description))
	}
	return fmt.Sprintf("%d injection point(s) not found (%s mode): %s", len(e.Missing), e.Mode, strings.Join(parts, "; "))
}

func (e *MissingPointsError) Unwrap() error { return ErrMissingPoints }
