package detect

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// convexHull computes the hull with the monotone chain algorithm. Collinear
// points are dropped; the first point is not repeated.
func convexHull(pts []r2.Vec) []r2.Vec {
	if len(pts) <= 2 {
		return append([]r2.Vec(nil), pts...)
	}
	p := append([]r2.Vec(nil), pts...)
	sort.Slice(p, func(i, j int) bool {
		if p[i].X != p[j].X {
			return p[i].X < p[j].X
		}
		return p[i].Y < p[j].Y
	})
	hull := make([]r2.Vec, 0, 2*len(p))
	for _, pt := range p {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	lower := len(hull) + 1
	for i := len(p) - 2; i >= 0; i-- {
		pt := p[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	return hull[:len(hull)-1]
}

func cross(o, a, b r2.Vec) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// perimeter of a closed polygon.
func perimeter(pts []r2.Vec) float64 {
	var l float64
	for i := range pts {
		l += r2.Norm(r2.Sub(pts[(i+1)%len(pts)], pts[i]))
	}
	return l
}

// polygonArea is the absolute shoelace area.
func polygonArea(pts []r2.Vec) float64 {
	var s float64
	for i := range pts {
		j := (i + 1) % len(pts)
		s += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(s) / 2
}

// simplify reduces a polyline with Douglas-Peucker; endpoints are kept.
func simplify(pts []r2.Vec, eps float64) []r2.Vec {
	if len(pts) <= 3 || eps <= 0 {
		return append([]r2.Vec(nil), pts...)
	}
	keep := make([]bool, len(pts))
	keep[0], keep[len(pts)-1] = true, true
	dpSimplify(pts, 0, len(pts)-1, eps, keep)
	out := make([]r2.Vec, 0, len(pts))
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

func dpSimplify(pts []r2.Vec, start, end int, eps float64, keep []bool) {
	if end <= start+1 {
		return
	}
	maxDist, index := -1.0, -1
	for i := start + 1; i < end; i++ {
		if d := lineDistance(pts[i], pts[start], pts[end]); d > maxDist {
			maxDist, index = d, i
		}
	}
	if maxDist > eps {
		keep[index] = true
		dpSimplify(pts, start, index, eps, keep)
		dpSimplify(pts, index, end, eps, keep)
	}
}

func lineDistance(p, a, b r2.Vec) float64 {
	v := r2.Sub(b, a)
	if v.X == 0 && v.Y == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	return math.Abs((p.X-a.X)*v.Y-(p.Y-a.Y)*v.X) / r2.Norm(v)
}

// simplifyClosed runs Douglas-Peucker on a closed polygon by splitting it at
// the vertex farthest from the first one.
func simplifyClosed(pts []r2.Vec, eps float64) []r2.Vec {
	if len(pts) <= 4 {
		return append([]r2.Vec(nil), pts...)
	}
	far, best := 0, -1.0
	for i, p := range pts {
		if d := r2.Norm(r2.Sub(p, pts[0])); d > best {
			far, best = i, d
		}
	}
	first := simplify(pts[:far+1], eps)
	second := simplify(append(append([]r2.Vec(nil), pts[far:]...), pts[0]), eps)
	out := append(first[:len(first)-1], second[:len(second)-1]...)
	return out
}

// orderCorners picks the extreme hull points: top-left minimizes x+y,
// top-right maximizes x-y, bottom-right maximizes x+y and bottom-left
// maximizes y-x. It returns nil when two corners coincide.
func orderCorners(hull []r2.Vec) []r2.Vec {
	if len(hull) < 4 {
		return nil
	}
	tl, tr, br, bl := hull[0], hull[0], hull[0], hull[0]
	for _, p := range hull[1:] {
		if p.X+p.Y < tl.X+tl.Y {
			tl = p
		}
		if p.X-p.Y > tr.X-tr.Y {
			tr = p
		}
		if p.X+p.Y > br.X+br.Y {
			br = p
		}
		if p.Y-p.X > bl.Y-bl.X {
			bl = p
		}
	}
	corners := []r2.Vec{tl, tr, br, bl}
	for i := range corners {
		for j := i + 1; j < len(corners); j++ {
			if corners[i] == corners[j] {
				return nil
			}
		}
	}
	return corners
}

// acceptQuad validates a candidate contour hull and returns ordered corners
// or nil. imgArea is the detection image area in pixels.
func acceptQuad(hull []r2.Vec, imgArea float64, opts Options) []r2.Vec {
	if len(hull) < 4 || imgArea <= 0 {
		return nil
	}
	approx := simplifyClosed(hull, opts.ApproxEpsilon*perimeter(hull))
	if len(approx) < 4 || len(approx) > 6 {
		return nil
	}
	corners := orderCorners(hull)
	if corners == nil {
		return nil
	}
	if polygonArea(corners) < imgArea*opts.MinAreaRatio {
		return nil
	}
	return corners
}
