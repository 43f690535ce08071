package daynight

import (
	gomath "math"

	"github.com/Faultbox/midgard-daynight/pkg/math"
)

// Reference directions. North starts on the horizon at referenceDown and is
// raised towards +Z by the latitude.
var (
	referenceRight = math.Vec3{X: 1, Y: 0, Z: 0}
	referenceDown  = math.Vec3{X: 0, Y: -1, Z: 0}
)

// Orientation is one solved sky state.
type Orientation struct {
	// Axis is the frame the sun and stars revolve in. Its Z axis is North.
	Axis math.Quat
	// Sun is Axis pitched by SunTilt about its local Y (east) axis. A positive
	// tilt raises the local X (light) axis, which lowers the sun.
	Sun math.Quat
	// StarField is the star dome orientation.
	StarField math.Quat
	// SunTilt is the seasonal tilt in degrees.
	SunTilt float64
}

// North returns the celestial pole direction for a latitude in degrees.
func North(latitude float64) math.Vec3 {
	return referenceDown.RotateAngleAxis(-latitude, referenceRight)
}

// seasonPhase is the position in the season cycle; it advances by 1 every
// solstice-to-solstice half orbit (2 seasons).
func seasonPhase(timeOfDay, seasonLength float64) float64 {
	return (timeOfDay - 12) / (HoursPerDay * seasonLength * 2)
}

// SunTilt returns the seasonal wobble of the sun in degrees. The clock starts
// on the northern winter solstice, so hour 12 of day 0 gives +axialTilt.
func SunTilt(axialTilt, timeOfDay, seasonLength float64) float64 {
	return axialTilt * gomath.Cos(seasonPhase(timeOfDay, seasonLength)*gomath.Pi)
}

// StarAngle returns the rotation of the star field about North in degrees:
// 15 degrees per hour plus a 180 degree sawtooth drift per two seasons.
func StarAngle(timeOfDay, seasonLength float64) float64 {
	drift := gomath.Mod(seasonPhase(timeOfDay, seasonLength), 2) * 180
	return timeOfDay*15 + drift - 90
}

// SolveAxis returns the rotation axis frame at latitude and timeOfDay.
func SolveAxis(latitude, timeOfDay float64) math.Quat {
	north := North(latitude)
	east := referenceRight.RotateAngleAxis(timeOfDay*15+180, north)
	return math.QuatFromZY(north, east)
}

// SolveSun returns the sun orientation and the tilt used.
func SolveSun(latitude, axialTilt, timeOfDay, seasonLength float64) (axis, sun math.Quat, tilt float64) {
	axis = SolveAxis(latitude, timeOfDay)
	tilt = SunTilt(axialTilt, timeOfDay, seasonLength)
	sun = axis.Mul(Pitch(tilt))
	return axis, sun, tilt
}

// Pitch returns the rotation that raises local X towards local Z by deg degrees.
func Pitch(deg float64) math.Quat {
	return math.QuatFromAxisAngle(math.UnitY, -math.Radians(deg))
}

// SolveStars returns the star field orientation.
func SolveStars(latitude, timeOfDay, seasonLength float64) math.Quat {
	north := North(latitude)
	east := referenceRight.RotateAngleAxis(StarAngle(timeOfDay, seasonLength), north)
	return math.QuatFromZY(north, east)
}

// Solve computes every orientation for one parameter snapshot. It has no side
// effects. seasonLength must be positive; see Sanitize.
func Solve(latitude, axialTilt, timeOfDay, seasonLength float64) Orientation {
	axis, sun, tilt := SolveSun(latitude, axialTilt, timeOfDay, seasonLength)
	return Orientation{
		Axis:      axis,
		Sun:       sun,
		StarField: SolveStars(latitude, timeOfDay, seasonLength),
		SunTilt:   tilt,
	}
}
