package pose

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// LerpVec linearly interpolates between a and b.
func LerpVec(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Normalize returns q scaled to unit length, or Identity for a zero quaternion.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 || math.IsNaN(n) {
		return Identity
	}
	return quat.Scale(1/n, q)
}

func dot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

// Slerp spherically interpolates between unit quaternions a and b along the
// shortest arc.
func Slerp(a, b quat.Number, t float64) quat.Number {
	a = Normalize(a)
	b = Normalize(b)
	d := dot(a, b)
	if d < 0 {
		b = quat.Scale(-1, b)
		d = -d
	}
	// nearly parallel: fall back to nlerp
	if d > 0.9995 {
		return Normalize(quat.Add(a, quat.Scale(t, quat.Sub(b, a))))
	}
	theta0 := math.Acos(d)
	theta := theta0 * t
	sin0 := math.Sin(theta0)
	s0 := math.Cos(theta) - d*math.Sin(theta)/sin0
	s1 := math.Sin(theta) / sin0
	return quat.Add(quat.Scale(s0, a), quat.Scale(s1, b))
}

// AxisAngle builds a unit quaternion rotating by angle radians around axis.
func AxisAngle(axis r3.Vec, angle float64) quat.Number {
	n := r3.Norm(axis)
	if n == 0 {
		return Identity
	}
	axis = r3.Scale(1/n, axis)
	s := math.Sin(angle / 2)
	return quat.Number{Real: math.Cos(angle / 2), Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}
