package inject

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"pandaskit/internal/charset"
	"pandaskit/internal/logging"
)

// Scanner walks source roots looking for markers of one kind.
type Scanner struct {
	Roots      []string
	Extensions []string // lower-case, with the leading dot
	Format     MarkerFormat
	Specs      []PointSpec
	Mode       Mode

	// OnSkip is called for every candidate file that is not UTF-8 with a
	// byte-order mark. Markers in such files are never read.
	OnSkip func(path string, kind charset.Kind)
}

// Discover returns every marker of the scanner's kind in walk order,
// regardless of whether a PointSpec asks for it. A section seen twice fails
// with a *DuplicateMarkerError.
func (s *Scanner) Discover(ctx context.Context) ([]Point, error) {
	timer := logging.StartTimer(logging.CategoryScan, "discover "+s.Format.Kind)
	defer timer.Stop()

	re := s.Format.Regexp()
	sectionToID := make(map[int]int, len(s.Specs))
	for _, spec := range s.Specs {
		sectionToID[spec.Section(s.Mode)] = spec.ID
	}

	var found []Point
	seen := make(map[int]Point)

	for _, root := range s.Roots {
		if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
			logging.ScanWarn("scan root %s does not exist, skipping", root)
			continue
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() || !s.wants(path) {
				return nil
			}

			points, err := s.scanFile(path, re)
			if err != nil {
				return err
			}
			for _, p := range points {
				if first, dup := seen[p.Section]; dup {
					return &DuplicateMarkerError{Section: p.Section, First: first, Second: p}
				}
				seen[p.Section] = p
				if id, ok := sectionToID[p.Section]; ok {
					p.ID = id
				}
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	logging.Scan("found %d %s markers under %s", len(found), s.Format.Kind, strings.Join(s.Roots, ", "))
	return found, nil
}

// Scan discovers markers and resolves every configured PointSpec. If any is
// missing the result is a *MissingPointsError naming all of them.
func (s *Scanner) Scan(ctx context.Context) (*Registry, error) {
	found, err := s.Discover(ctx)
	if err != nil {
		return nil, err
	}

	bySection := make(map[int]Point, len(found))
	for _, p := range found {
		bySection[p.Section] = p
	}

	var (
		resolved []Point
		missing  []PointSpec
	)
	for _, spec := range s.Specs {
		p, ok := bySection[spec.Section(s.Mode)]
		if !ok {
			missing = append(missing, spec)
			continue
		}
		p.ID = spec.ID
		resolved = append(resolved, p)
		logging.ScanDebug("point %d (<Section %d>) at %s", spec.ID, p.Section, p)
	}
	if len(missing) > 0 {
		return nil, &MissingPointsError{Mode: s.Mode, Missing: missing}
	}
	return NewRegistry(s.Mode, resolved), nil
}

func (s *Scanner) wants(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range s.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

func (s *Scanner) scanFile(path string, re *regexp.Regexp) ([]Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !bytes.Contains(data, []byte("//")) {
		return nil, nil
	}
	if kind := charset.Detect(data); kind != charset.UTF8BOM {
		logging.ScanDebug("%s is %s, not scanned", path, kind)
		if s.OnSkip != nil {
			s.OnSkip(path, kind)
		}
		return nil, nil
	}

	var points []Point
	sc := bufio.NewScanner(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if !strings.Contains(text, "//") {
			continue
		}
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		section, _ := strconv.Atoi(m[1])
		points = append(points, Point{Section: section, FilePath: path, Line: line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return points, nil
}
