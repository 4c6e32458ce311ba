// Package overlay turns a detected quadrilateral into display geometry and
// draws it over a preview frame.
package overlay

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/soocke/quadscan/domain/geometry"
)

// QuadSize is the only point count that produces geometry.
const QuadSize = 4

// Path is a closed polygon in surface coordinates: move to Points[0], line
// through the rest, close back to Points[0].
type Path struct {
	Points []r2.Vec
}

// Closed returns the vertices with the first one repeated at the end.
func (p Path) Closed() []r2.Vec {
	if len(p.Points) == 0 {
		return nil
	}
	out := make([]r2.Vec, 0, len(p.Points)+1)
	out = append(out, p.Points...)
	return append(out, p.Points[0])
}

// Build maps frame-space points through fit. Any count other than four, or a
// non-finite result, yields no geometry.
func Build(points []r2.Vec, fit geometry.FitTransform) (Path, bool) {
	if len(points) != QuadSize || !fit.Valid() {
		return Path{}, false
	}
	out := make([]r2.Vec, QuadSize)
	for i, p := range points {
		q := fit.Apply(p)
		if !finite(q) {
			return Path{}, false
		}
		out[i] = q
	}
	return Path{Points: out}, true
}

// Zoom scales p about pivot.
func Zoom(p r2.Vec, factor float64, pivot r2.Vec) r2.Vec {
	return r2.Add(pivot, r2.Scale(factor, r2.Sub(p, pivot)))
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
