// Package sim synthesizes reference trajectories and a rigid-body
// truth model, and drives a controller.Controller tick by tick to
// report tracking and convergence behaviour. Used both by
// scenario-level tests and by the aictl tuning CLI.
package sim

import (
	"math"

	"github.com/westphae/quaternion"

	"github.com/skywardcontrols/aic-attitude/internal/so3"
)

// Trajectory is a reference attitude/rate/accel profile evaluated at
// any time t (s). Implementations must be deterministic functions of
// t so a scenario can be replayed exactly from Reset.
type Trajectory interface {
	Eval(t float64) (r so3.Mat3, omega, alpha so3.Vec3)
}

// Hold is the trivial trajectory: attitude fixed at R, zero rate and
// acceleration, as in a hover hold.
type Hold struct {
	R so3.Mat3
}

// Eval implements Trajectory.
func (h Hold) Eval(t float64) (so3.Mat3, so3.Vec3, so3.Vec3) {
	return h.R, so3.Vec3{}, so3.Vec3{}
}

// Step is a trajectory that jumps from Before to After at time
// SwitchAt and holds thereafter, used for the step-response scenario.
type Step struct {
	Before, After so3.Mat3
	SwitchAt      float64
}

// Eval implements Trajectory.
func (s Step) Eval(t float64) (so3.Mat3, so3.Vec3, so3.Vec3) {
	if t < s.SwitchAt {
		return s.Before, so3.Vec3{}, so3.Vec3{}
	}
	return s.After, so3.Vec3{}, so3.Vec3{}
}

// Sinusoid synthesizes a reference attitude that oscillates each Euler
// axis independently with amplitude Amplitude[axis] rad and angular
// frequency Omega[axis] rad/s. Rate and acceleration are the analytic
// derivatives of the same roll/pitch/yaw profile, converted to a
// rotation matrix through a quaternion built from the Euler angles.
type Sinusoid struct {
	Amplitude [3]float64 // rad, [roll, pitch, yaw]
	Omega     [3]float64 // rad/s
}

// Eval implements Trajectory.
func (s Sinusoid) Eval(t float64) (so3.Mat3, so3.Vec3, so3.Vec3) {
	phi := s.Amplitude[0] * math.Sin(s.Omega[0]*t)
	theta := s.Amplitude[1] * math.Sin(s.Omega[1]*t)
	psi := s.Amplitude[2] * math.Sin(s.Omega[2]*t)

	dphi := s.Amplitude[0] * s.Omega[0] * math.Cos(s.Omega[0]*t)
	dtheta := s.Amplitude[1] * s.Omega[1] * math.Cos(s.Omega[1]*t)
	dpsi := s.Amplitude[2] * s.Omega[2] * math.Cos(s.Omega[2]*t)

	ddphi := -s.Amplitude[0] * s.Omega[0] * s.Omega[0] * math.Sin(s.Omega[0]*t)
	ddtheta := -s.Amplitude[1] * s.Omega[1] * s.Omega[1] * math.Sin(s.Omega[1]*t)
	ddpsi := -s.Amplitude[2] * s.Omega[2] * s.Omega[2] * math.Sin(s.Omega[2]*t)

	r := eulerToRotation(phi, theta, psi)

	// Body-rate from Euler-rate via the standard kinematic relation
	// (ZYX convention, small-angle-free exact form).
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)

	p := dphi - sinTheta*dpsi
	q := cosPhi*dtheta + sinPhi*cosTheta*dpsi
	w := -sinPhi*dtheta + cosPhi*cosTheta*dpsi
	omega := so3.Vec3{float32(p), float32(q), float32(w)}

	dp := ddphi - cosTheta*dtheta*dpsi - sinTheta*ddpsi
	dq := -sinPhi*dphi*dtheta + cosPhi*ddtheta + cosPhi*cosTheta*dphi*dpsi -
		sinPhi*sinTheta*dtheta*dpsi + sinPhi*cosTheta*ddpsi
	dw := -cosPhi*dphi*dtheta - sinPhi*ddtheta - sinPhi*cosTheta*dphi*dpsi -
		cosPhi*sinTheta*dtheta*dpsi + cosPhi*cosTheta*ddpsi
	alpha := so3.Vec3{float32(dp), float32(dq), float32(dw)}

	return r, omega, alpha
}

// eulerToRotation builds R from roll/pitch/yaw via a unit quaternion,
// composing the axis rotations with github.com/westphae/quaternion's
// product algebra.
func eulerToRotation(phi, theta, psi float64) so3.Mat3 {
	qz := quaternion.Quaternion{W: math.Cos(psi / 2), Z: math.Sin(psi / 2)}
	qy := quaternion.Quaternion{W: math.Cos(theta / 2), Y: math.Sin(theta / 2)}
	qx := quaternion.Quaternion{W: math.Cos(phi / 2), X: math.Sin(phi / 2)}
	q := quaternion.Prod(qz, qy, qx)
	n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	var qArr [4]float32
	qArr[0] = float32(q.W / n)
	qArr[1] = float32(q.X / n)
	qArr[2] = float32(q.Y / n)
	qArr[3] = float32(q.Z / n)
	return so3.RotationFromQuaternion(qArr)
}
