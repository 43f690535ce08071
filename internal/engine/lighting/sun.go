// Package lighting derives directional light parameters from the sun orientation.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/midgard-daynight/pkg/math"
)

// Twilight elevations in degrees. Below CivilTwilight the sun contributes no
// diffuse light.
const (
	CivilTwilight = -6.0
	fullDaylight  = 15.0
)

// SunLight is the directional light produced by the sun node.
type SunLight struct {
	Direction  math.Vec3 // unit vector pointing towards the sun
	Elevation  float64   // degrees above the horizon
	Brightness float64   // 0 at night, 1 in full daylight

	DiffuseColor [3]float64
	AmbientColor [3]float64
}

// Direction returns the unit vector pointing from the ground towards the sun.
// The sun node emits light along its local +X axis.
func Direction(sun math.Quat) math.Vec3 {
	return sun.Rotate(math.UnitX).Scale(-1).Normalize()
}

// Elevation returns the angle of dir above the horizon plane in degrees.
func Elevation(dir math.Vec3) float64 {
	z := gomath.Max(-1, gomath.Min(1, dir.Normalize().Z))
	return math.Degrees(gomath.Asin(z))
}

// IsDay reports whether the sun is above the horizon.
func IsDay(sun math.Quat) bool {
	return Elevation(Direction(sun)) > 0
}

// Sun computes the light parameters for a sun orientation.
func Sun(sun math.Quat) SunLight {
	dir := Direction(sun)
	elev := Elevation(dir)
	b := brightness(elev)

	// warm near the horizon, white at noon
	warmth := 1 - smoothstep(0, 30, elev)
	diffuse := [3]float64{1, 1 - 0.25*warmth, 1 - 0.55*warmth}

	// night keeps a faint blue ambient
	night := [3]float64{0.05, 0.06, 0.12}
	day := [3]float64{0.35, 0.38, 0.45}

	var l SunLight
	l.Direction = dir
	l.Elevation = elev
	l.Brightness = b
	for i := 0; i < 3; i++ {
		l.DiffuseColor[i] = diffuse[i] * b
		l.AmbientColor[i] = night[i] + (day[i]-night[i])*b
	}
	return l
}

func brightness(elev float64) float64 {
	return smoothstep(CivilTwilight, fullDaylight, elev)
}

func smoothstep(edge0, edge1, x float64) float64 {
	t := gomath.Max(0, gomath.Min(1, (x-edge0)/(edge1-edge0)))
	return t * t * (3 - 2*t)
}
