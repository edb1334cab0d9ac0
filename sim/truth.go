package sim

import (
	"github.com/skywardcontrols/aic-attitude/internal/regressor"
	"github.com/skywardcontrols/aic-attitude/internal/so3"
)

// RigidBody is the truth-model rigid-body dynamics the simulation
// harness integrates forward: dOmega/dt = J^-1(tau - Omega x J*Omega),
// dR/dt = R*hat(Omega). Integration is simple forward Euler with
// attitude renormalization each step; this is a test harness, not a
// flight computer, so a higher-order scheme isn't warranted.
type RigidBody struct {
	JTrue    [3][3]float64 // true inertia, kg*m^2, symmetric
	jInvTrue [3][3]float64

	R     so3.Mat3
	Omega so3.Vec3
}

// NewRigidBody constructs a truth model at attitude r0 and rate
// omega0, with true inertia jTrue.
func NewRigidBody(jTrue [3][3]float64, r0 so3.Mat3, omega0 so3.Vec3) *RigidBody {
	rb := &RigidBody{JTrue: jTrue, R: r0, Omega: omega0}
	rb.jInvTrue = invert3x3(jTrue)
	return rb
}

// Step integrates the truth model by dt seconds under applied torque
// tau.
func (rb *RigidBody) Step(tau so3.Vec3, dt float32) {
	omega64 := [3]float64{float64(rb.Omega[0]), float64(rb.Omega[1]), float64(rb.Omega[2])}
	tau64 := [3]float64{float64(tau[0]), float64(tau[1]), float64(tau[2])}

	jOmega := matVec3(rb.JTrue, omega64)
	cross := crossProduct(omega64, jOmega)
	var rhs [3]float64
	for i := 0; i < 3; i++ {
		rhs[i] = tau64[i] - cross[i]
	}
	alpha := matVec3(rb.jInvTrue, rhs)

	for i := 0; i < 3; i++ {
		rb.Omega[i] += float32(alpha[i]) * dt
	}

	rDot := so3.MatMul(rb.R, so3.Hat(rb.Omega))
	var rNext so3.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rNext[i][j] = rb.R[i][j] + rDot[i][j]*dt
		}
	}
	rb.R = orthonormalize(rNext)
}

// Theta returns the regressor parameter vector for the true inertia,
// used by the harness to report convergence of an adapter's theta_hat
// against theta(J_true).
func (rb *RigidBody) Theta(diag bool) []float64 {
	if diag {
		t := regressor.ThetaFromInertiaDiagonal(rb.JTrue)
		return []float64{t[0], t[1], t[2]}
	}
	t := regressor.ThetaFromInertiaFull(rb.JTrue)
	return []float64{t[0], t[1], t[2], t[3], t[4], t[5]}
}

func crossProduct(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func matVec3(m [3][3]float64, v [3]float64) [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return out
}

// invert3x3 inverts a symmetric 3x3 matrix by cofactor expansion.
func invert3x3(m [3][3]float64) [3][3]float64 {
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	if det == 0 {
		return [3][3]float64{}
	}
	invDet := 1 / det
	var out [3][3]float64
	out[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) * invDet
	out[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * invDet
	out[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * invDet
	out[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) * invDet
	out[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * invDet
	out[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * invDet
	out[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) * invDet
	out[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * invDet
	out[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * invDet
	return out
}

// orthonormalize re-orthogonalizes a near-rotation matrix via one step
// of R <- R*(1.5*I - 0.5*R^T*R), a cheap first-order correction
// adequate for the small per-step drift of forward-Euler integration.
func orthonormalize(r so3.Mat3) so3.Mat3 {
	rtr := so3.MatMul(so3.Transpose(r), r)
	id := so3.Identity3()
	var correction so3.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			correction[i][j] = 1.5*id[i][j] - 0.5*rtr[i][j]
		}
	}
	return so3.MatMul(r, correction)
}
