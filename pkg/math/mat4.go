package math

import "math"

// Mat4 is a 4x4 matrix in column-major order.
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float64

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// FromAxes builds a rotation matrix whose columns are the given basis axes.
func FromAxes(x, y, z Vec3) Mat4 {
	return Mat4{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		0, 0, 0, 1,
	}
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// TransformDirection transforms a direction vector (ignores translation).
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// Quat extracts the rotation of the upper-left 3x3 part as a quaternion.
// The matrix must be orthonormal.
func (m Mat4) Quat() Quat {
	r00, r10, r20 := m[0], m[1], m[2]
	r01, r11, r21 := m[4], m[5], m[6]
	r02, r12, r22 := m[8], m[9], m[10]

	var q Quat
	trace := r00 + r11 + r22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = Quat{
			W: 0.25 / s,
			X: (r21 - r12) * s,
			Y: (r02 - r20) * s,
			Z: (r10 - r01) * s,
		}
	case r00 > r11 && r00 > r22:
		s := 2 * math.Sqrt(1+r00-r11-r22)
		q = Quat{
			W: (r21 - r12) / s,
			X: 0.25 * s,
			Y: (r01 + r10) / s,
			Z: (r02 + r20) / s,
		}
	case r11 > r22:
		s := 2 * math.Sqrt(1+r11-r00-r22)
		q = Quat{
			W: (r02 - r20) / s,
			X: (r01 + r10) / s,
			Y: 0.25 * s,
			Z: (r12 + r21) / s,
		}
	default:
		s := 2 * math.Sqrt(1+r22-r00-r11)
		q = Quat{
			W: (r10 - r01) / s,
			X: (r02 + r20) / s,
			Y: (r12 + r21) / s,
			Z: 0.25 * s,
		}
	}
	return q.Normalize()
}
