package inject

import (
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Registry maps logical point ids to their current location. It is built
// once per run by Scanner.Scan and owned by whoever performs insertions.
type Registry struct {
	mode   Mode
	points map[int]*Point
}

// NewRegistry builds a registry from resolved points.
func NewRegistry(mode Mode, points []Point) *Registry {
	r := &Registry{mode: mode, points: make(map[int]*Point, len(points))}
	for _, p := range points {
		p := p
		r.points[p.ID] = &p
	}
	return r
}

// Mode returns the edition the section numbers were resolved for.
func (r *Registry) Mode() Mode { return r.mode }

// Len returns the number of points.
func (r *Registry) Len() int { return len(r.points) }

// Lookup returns a copy of the point with the given logical id.
func (r *Registry) Lookup(id int) (Point, bool) {
	p, ok := r.points[id]
	if !ok {
		return Point{}, false
	}
	return *p, true
}

// Points returns a snapshot of every point ordered by id.
func (r *Registry) Points() []Point {
	out := make([]Point, 0, len(r.points))
	for _, p := range r.points {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	return NewRegistry(r.mode, r.Points())
}

// shift moves every point in path at or below line down by delta lines,
// including the marker the block was inserted above. Points in other files
// keep their numbering.
func (r *Registry) shift(path string, line, delta int) {
	for _, p := range r.points {
		if p.Line >= line && samePath(p.FilePath, path) {
			p.Line += delta
		}
	}
}

func samePath(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
