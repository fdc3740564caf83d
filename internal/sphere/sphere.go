// Package sphere provides pure coordinate transforms between cartesian,
// spherical and geographic coordinates on a sphere, plus great-circle
// distance and path generation. All functions are stateless and never
// mutate their inputs; batch variants preserve length and order.
//
// Conventions: spherical points are (r, azimuth, polar) where azimuth is
// measured counter-clockwise from +x in the xy-plane and the polar angle
// is measured down from +z (0 at the north pole, pi at the south pole).
// Geographic points are ([radius,] lon, lat) with bipolar longitude in
// [-180, 180) and latitude measured from the equator. Angles are radians
// unless the degrees flag is set; the flag never touches the radial
// component.
package sphere

import (
	"errors"
	"fmt"
	"math"
)

// Vec2 is a planar point: (x, y) in cartesian form, (r, azimuth) in polar
// form, or (lon, lat) in geographic form.
type Vec2 [2]float64

// Vec3 is a point in 3-space: (x, y, z), (r, azimuth, polar) or
// (radius, lon, lat) depending on the coordinate system.
type Vec3 [3]float64

// CoordSystem selects the coordinate system of the inputs to
// GreatCircleDistance.
type CoordSystem string

const (
	Spherical CoordSystem = "spherical"
	Cartesian CoordSystem = "cartesian"
)

// ErrCoordSystem is returned when a CoordSystem is neither Spherical nor
// Cartesian.
var ErrCoordSystem = errors.New("unknown coordinate system")

// ErrShape is returned when two batch inputs have incompatible lengths.
var ErrShape = errors.New("incompatible input lengths")

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }

// Cart2Sph converts a cartesian point (x, y, z) to spherical form
// (r, azimuth, polar). At the origin the polar angle is undefined and
// comes back as NaN; callers must check for it.
func Cart2Sph(v Vec3, degrees bool) Vec3 {
	r := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	azimuth := math.Atan2(v[1], v[0])
	polar := math.Acos(v[2] / r)
	if degrees {
		azimuth = rad2deg(azimuth)
		polar = rad2deg(polar)
	}
	return Vec3{r, azimuth, polar}
}

// Cart2SphN converts a batch of cartesian points. The result has the same
// length and order as the input.
func Cart2SphN(vs []Vec3, degrees bool) []Vec3 {
	out := make([]Vec3, len(vs))
	for i, v := range vs {
		out[i] = Cart2Sph(v, degrees)
	}
	return out
}

// Sph2Cart converts a spherical point (r, azimuth, polar) to cartesian
// form (x, y, z).
func Sph2Cart(v Vec3, degrees bool) Vec3 {
	r, azimuth, polar := v[0], v[1], v[2]
	if degrees {
		azimuth = deg2rad(azimuth)
		polar = deg2rad(polar)
	}
	sinPolar := math.Sin(polar)
	return Vec3{
		r * math.Cos(azimuth) * sinPolar,
		r * math.Sin(azimuth) * sinPolar,
		r * math.Cos(polar),
	}
}

// Sph2CartN converts a batch of spherical points.
func Sph2CartN(vs []Vec3, degrees bool) []Vec3 {
	out := make([]Vec3, len(vs))
	for i, v := range vs {
		out[i] = Sph2Cart(v, degrees)
	}
	return out
}

// Geo2Sph converts a geographic point (radius, lon, lat), with lon and lat
// in degrees, to spherical form (radius, azimuth, polar). The degrees flag
// selects the angular unit of the output: radians by default.
func Geo2Sph(g Vec3, degrees bool) Vec3 {
	azimuth, polar := g[1], 90-g[2]
	if !degrees {
		azimuth = deg2rad(azimuth)
		polar = deg2rad(polar)
	}
	return Vec3{g[0], azimuth, polar}
}

// Geo2SphN converts a batch of geographic points.
func Geo2SphN(gs []Vec3, degrees bool) []Vec3 {
	out := make([]Vec3, len(gs))
	for i, g := range gs {
		out[i] = Geo2Sph(g, degrees)
	}
	return out
}

// Geo2SphLL is the radius-free form of Geo2Sph for (lon, lat) pairs.
func Geo2SphLL(g Vec2, degrees bool) Vec2 {
	azimuth, polar := g[0], 90-g[1]
	if !degrees {
		azimuth = deg2rad(azimuth)
		polar = deg2rad(polar)
	}
	return Vec2{azimuth, polar}
}

// Sph2Geo converts a spherical point (radius, azimuth, polar) to
// geographic form (radius, lon, lat) in degrees. The degrees flag states
// the angular unit of the input: radians by default. Exact inverse of
// Geo2Sph for matching flags.
func Sph2Geo(s Vec3, degrees bool) Vec3 {
	azimuth, polar := s[1], s[2]
	if !degrees {
		azimuth = rad2deg(azimuth)
		polar = rad2deg(polar)
	}
	return Vec3{s[0], azimuth, 90 - polar}
}

// Sph2GeoN converts a batch of spherical points to geographic form.
func Sph2GeoN(ss []Vec3, degrees bool) []Vec3 {
	out := make([]Vec3, len(ss))
	for i, s := range ss {
		out[i] = Sph2Geo(s, degrees)
	}
	return out
}

// Sph2GeoLL is the radius-free form of Sph2Geo for (azimuth, polar) pairs.
func Sph2GeoLL(s Vec2, degrees bool) Vec2 {
	azimuth, polar := s[0], s[1]
	if !degrees {
		azimuth = rad2deg(azimuth)
		polar = rad2deg(polar)
	}
	return Vec2{azimuth, 90 - polar}
}

// Cart2Polar converts a planar cartesian point (x, y) to polar form
// (r, azimuth).
func Cart2Polar(v Vec2, degrees bool) Vec2 {
	r := math.Hypot(v[0], v[1])
	azimuth := math.Atan2(v[1], v[0])
	if degrees {
		azimuth = rad2deg(azimuth)
	}
	return Vec2{r, azimuth}
}

// Cart2PolarN converts a batch of planar points.
func Cart2PolarN(vs []Vec2, degrees bool) []Vec2 {
	out := make([]Vec2, len(vs))
	for i, v := range vs {
		out[i] = Cart2Polar(v, degrees)
	}
	return out
}

// GreatCircleDistance returns the haversine distance between two points on
// a sphere. The points are spherical (r, azimuth, polar) in radians, or
// cartesian when system is Cartesian. A radius of 0 means "use the radial
// component of a"; both points are assumed to lie on the same shell, but
// an explicit radius may override that for non-physical use.
func GreatCircleDistance(a, b Vec3, system CoordSystem, radius float64) (float64, error) {
	var rs []float64
	if radius != 0 {
		rs = []float64{radius}
	}
	ds, err := GreatCircleDistanceN([]Vec3{a}, []Vec3{b}, system, rs)
	if err != nil {
		return 0, err
	}
	return ds[0], nil
}

// GreatCircleDistanceN is the batch form of GreatCircleDistance. Inputs of
// length one broadcast against the other input; otherwise the lengths must
// match. radius may be nil (taken per point from a's radial component), a
// single value, or one value per output point.
func GreatCircleDistanceN(a, b []Vec3, system CoordSystem, radius []float64) ([]float64, error) {
	switch system {
	case Spherical:
	case Cartesian:
		a = Cart2SphN(a, false)
		b = Cart2SphN(b, false)
	default:
		return nil, fmt.Errorf("%w: %q", ErrCoordSystem, system)
	}

	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	if (len(a) != n && len(a) != 1) || (len(b) != n && len(b) != 1) {
		return nil, fmt.Errorf("%w: %d and %d points", ErrShape, len(a), len(b))
	}
	if radius != nil && len(radius) != 1 && len(radius) != n {
		return nil, fmt.Errorf("%w: %d radii for %d points", ErrShape, len(radius), n)
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		p1 := a[i%len(a)]
		p2 := b[i%len(b)]

		r := p1[0]
		if radius != nil {
			r = radius[i%len(radius)]
		}

		dAzimuth := p2[1] - p1[1]
		dPolar := p2[2] - p1[2]
		h := (1-math.Cos(dPolar))/2 +
			math.Sin(p1[2])*math.Sin(p2[2])*(1-math.Cos(dAzimuth))/2
		out[i] = 2 * r * math.Asin(math.Sqrt(h))
	}
	return out, nil
}
