package sphere

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrAntipodal is returned when the endpoints of a great-circle path are
// antipodal: every meridian through them is a great circle, so the path is
// not unique.
var ErrAntipodal = errors.New("antipodal endpoints: great circle is not unique")

// antipodalTol is the margin (radians) inside which two points are treated
// as exactly antipodal. identicalTol absorbs the rounding of acos near a
// dot product of 1; on an Earth-sized sphere it is under a centimetre.
const (
	antipodalTol = 1e-9
	identicalTol = 1e-7
)

// Path is a great-circle path between two geographic points.
type Path struct {
	// Points are (lon, lat) pairs in degrees. Longitudes are unwrapped so
	// a path crossing the antimeridian has no 360-degree jumps; values may
	// therefore leave [-180, 180).
	Points []Vec2

	// AngleDeg is the total angular separation of the endpoints in degrees.
	AngleDeg float64
}

// GreatCirclePath fills the great circle between the geographic points g0
// and g1 (lon, lat in degrees) at the requested angular resolution in
// degrees per sample. Identical endpoints yield a single-point path with
// zero separation; antipodal endpoints return ErrAntipodal.
func GreatCirclePath(g0, g1 Vec2, resDeg float64) (*Path, error) {
	if resDeg <= 0 {
		return nil, fmt.Errorf("resolution must be positive, got %v", resDeg)
	}

	// Attach unit radii so the dot product of the cartesian forms is the
	// cosine of the separation directly.
	c0 := cartUnit(g0)
	c1 := cartUnit(g1)

	dot := r3.Dot(c0, c1)
	// Guard rounding before Acos.
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}
	angle := math.Acos(dot)

	if angle < identicalTol {
		return &Path{Points: []Vec2{g0}, AngleDeg: 0}, nil
	}
	if math.Pi-angle < antipodalTol {
		return nil, ErrAntipodal
	}

	angleDeg := rad2deg(angle)
	n := int(math.Ceil(angleDeg / resDeg))
	if n < 2 {
		// Always keep both endpoints for distinct points, even when the
		// resolution is coarser than the separation.
		n = 2
	}

	ts := make([]float64, n)
	floats.Span(ts, 0, 1)

	sinAngle := math.Sin(angle)
	points := make([]Vec2, n)
	for i, t := range ts {
		var p r3.Vec
		if sinAngle < 1e-12 {
			// Nearly parallel unit vectors: fall back to linear
			// interpolation, which is indistinguishable at this scale.
			p = r3.Add(r3.Scale(1-t, c0), r3.Scale(t, c1))
			p = r3.Scale(1/r3.Norm(p), p)
		} else {
			w0 := math.Sin((1-t)*angle) / sinAngle
			w1 := math.Sin(t*angle) / sinAngle
			p = r3.Add(r3.Scale(w0, c0), r3.Scale(w1, c1))
		}
		s := Cart2Sph(Vec3{p.X, p.Y, p.Z}, false)
		points[i] = Sph2GeoLL(Vec2{s[1], s[2]}, false)
	}

	unwrapLon(points)
	return &Path{Points: points, AngleDeg: angleDeg}, nil
}

// cartUnit converts a (lon, lat) pair in degrees to a cartesian unit
// vector.
func cartUnit(g Vec2) r3.Vec {
	s := Geo2Sph(Vec3{1, g[0], g[1]}, false)
	c := Sph2Cart(s, false)
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}
}

// unwrapLon removes artificial 360-degree jumps from the longitude
// sequence of a path, so a profile crossing the antimeridian stays
// continuous.
func unwrapLon(points []Vec2) {
	for i := 1; i < len(points); i++ {
		d := points[i][0] - points[i-1][0]
		points[i][0] -= 360 * math.Round(d/360)
	}
}
