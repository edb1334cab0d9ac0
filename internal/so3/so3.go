// Package so3 implements the error kinematics on the rotation group
// SO(3) used by the attitude controller: hat/vee, the Lee et al.
// geometric attitude and rate errors, the commanded body angular
// acceleration, and rotation-matrix validation.
//
// All operations are pure and allocation-free, operating on stack
// arrays (Vec3, Mat3) rather than the slice-backed matrices the rest
// of the corpus reaches for when dimensions aren't fixed at 3.
package so3

import "math"

// Vec3 is a 3-vector, body or earth frame depending on context.
type Vec3 [3]float32

// Mat3 is a 3x3 matrix, row-major: m[row][col].
type Mat3 [3][3]float32

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Hat returns the skew-symmetric matrix of v under the (ω×) convention:
// row 0 = (0,−v_z,v_y), row 1 = (v_z,0,−v_x), row 2 = (−v_y,v_x,0).
func Hat(v Vec3) Mat3 {
	return Mat3{
		{0, -v[2], v[1]},
		{v[2], 0, -v[0]},
		{-v[1], v[0], 0},
	}
}

// Vee is the inverse of Hat for a skew-symmetric M: (M[2,1], M[0,2], M[1,0]).
// For a general matrix, callers must pass SkewPart(M) first.
func Vee(m Mat3) Vec3 {
	return Vec3{m[2][1], m[0][2], m[1][0]}
}

// SkewPart returns (M - M^T)/2, the skew-symmetric part of M.
func SkewPart(m Mat3) Mat3 {
	t := Transpose(m)
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = (m[i][j] - t[i][j]) / 2
		}
	}
	return out
}

// Transpose returns the transpose of m.
func Transpose(m Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

// MatMul returns a*b.
func MatMul(a, b Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float32
			for k := 0; k < 3; k++ {
				s += a[i][k] * b[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

// MatVec returns a*v.
func MatVec(a Mat3, v Vec3) Vec3 {
	var out Vec3
	for i := 0; i < 3; i++ {
		out[i] = a[i][0]*v[0] + a[i][1]*v[1] + a[i][2]*v[2]
	}
	return out
}

// Sub returns a-b componentwise.
func Sub(a, b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Add returns a+b componentwise.
func Add(a, b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Scale returns k*v.
func Scale(k float32, v Vec3) Vec3 {
	return Vec3{k * v[0], k * v[1], k * v[2]}
}

// Trace returns the trace of m.
func Trace(m Mat3) float32 {
	return m[0][0] + m[1][1] + m[2][2]
}

// Det3 returns the determinant of a 3x3 matrix via cofactor expansion.
func Det3(a Mat3) float32 {
	return a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
		a[0][1]*(a[1][0]*a[2][2]-a[1][2]*a[2][0]) +
		a[0][2]*(a[1][0]*a[2][1]-a[1][1]*a[2][0])
}

// FrobeniusNorm returns the Frobenius norm of m.
func FrobeniusNorm(m Mat3) float32 {
	var s float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s += float64(m[i][j]) * float64(m[i][j])
		}
	}
	return float32(math.Sqrt(s))
}

// AttitudeError computes e_R = 1/2 * vee(Rd^T*R - R^T*Rd), the standard
// geometric SO(3) tracking error (Lee et al.): zero iff R = Rd, and
// almost globally defined.
func AttitudeError(r, rd Mat3) Vec3 {
	e := MatMul(Transpose(rd), r)
	// vee(E - E^T) = vee(2*SkewPart(E)) = 2*Vee(SkewPart(E)), so the
	// leading 1/2 in the spec cancels against that factor of 2.
	return Vee(SkewPart(e))
}

// AngularVelocityError computes e_Ω = Ω − (R^T*Rd)·Ω_d.
func AngularVelocityError(omega Vec3, r, rd Mat3, omegaD Vec3) Vec3 {
	rtRd := MatMul(Transpose(r), rd)
	return Sub(omega, MatVec(rtRd, omegaD))
}

// CommandedAngularAccel computes the body-frame acceleration the
// vehicle would need in order to track the reference perfectly:
// α = (R^T*Rd)·α_d − hat(Ω)·(R^T*Rd)·Ω_d.
func CommandedAngularAccel(r, rd Mat3, omega, omegaD, alphaD Vec3) Vec3 {
	rtRd := MatMul(Transpose(r), rd)
	term1 := MatVec(rtRd, alphaD)
	term2 := MatVec(Hat(omega), MatVec(rtRd, omegaD))
	return Sub(term1, term2)
}

// TraceAttitudeError returns the Lyapunov surrogate Ψ = (3 − tr(R^T*Rd))/2.
// Not used in the control law; exposed for diagnostics and tests.
func TraceAttitudeError(r, rd Mat3) float32 {
	return (3 - Trace(MatMul(Transpose(r), rd))) / 2
}

// IsValidRotation reports whether R is orthogonal with determinant 1
// within tol: ‖R^T*R − I‖_F < tol and |det(R) − 1| < tol.
func IsValidRotation(r Mat3, tol float32) bool {
	rtr := MatMul(Transpose(r), r)
	var diff Mat3
	id := Identity3()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			diff[i][j] = rtr[i][j] - id[i][j]
		}
	}
	if FrobeniusNorm(diff) >= tol {
		return false
	}
	d := Det3(r)
	return float32(math.Abs(float64(d-1))) < tol
}

// RotationFromQuaternion builds a rotation matrix from a unit
// quaternion q = (w,x,y,z).
func RotationFromQuaternion(q [4]float32) Mat3 {
	w, x, y, z := q[0], q[1], q[2], q[3]
	return Mat3{
		{w*w + x*x - y*y - z*z, 2 * (x*y - w*z), 2 * (x*z + w*y)},
		{2 * (x*y + w*z), w*w - x*x + y*y - z*z, 2 * (y*z - w*x)},
		{2 * (x*z - w*y), 2 * (y*z + w*x), w*w - x*x - y*y + z*z},
	}
}

// IsFiniteVec3 reports whether every component of v is finite.
func IsFiniteVec3(v Vec3) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// IsFiniteMat3 reports whether every entry of m is finite.
func IsFiniteMat3(m Mat3) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			f := float64(m[i][j])
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return false
			}
		}
	}
	return true
}
