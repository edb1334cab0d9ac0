package sim

import (
	"math"

	"github.com/skywardcontrols/aic-attitude/internal/controller"
	"github.com/skywardcontrols/aic-attitude/internal/so3"
)

// Harness drives a controller.Controller against a Trajectory and a
// RigidBody truth model for a fixed tick rate: each step evaluates the
// reference, computes the controller's torque, and feeds that torque
// back into the truth model.
type Harness struct {
	Controller *controller.Controller
	Truth      *RigidBody
	Ref        Trajectory

	Dt float32
	t  float64
}

// NewHarness constructs a harness. Dt is the fixed simulation step, s.
func NewHarness(ctl *controller.Controller, truth *RigidBody, ref Trajectory, dt float32) *Harness {
	return &Harness{Controller: ctl, Truth: truth, Ref: ref, Dt: dt}
}

// Tick advances the simulation by one Dt: evaluates the reference
// trajectory at the current time, computes the controller's torque
// from the truth model's current state, applies that torque to the
// truth model, and advances time.
func (h *Harness) Tick() (tau so3.Vec3) {
	rd, omegaD, alphaD := h.Ref.Eval(h.t)
	tau = h.Controller.ComputeTorque(h.Truth.R, rd, h.Truth.Omega, omegaD, alphaD, h.Dt)
	h.Truth.Step(tau, h.Dt)
	h.t += float64(h.Dt)
	return tau
}

// Run advances the simulation for n ticks and returns the final
// torque.
func (h *Harness) Run(n int) so3.Vec3 {
	var tau so3.Vec3
	for i := 0; i < n; i++ {
		tau = h.Tick()
	}
	return tau
}

// ThetaError returns the Euclidean distance between the controller's
// current parameter estimate and the truth model's true theta,
// a measure of adaptation convergence.
func (h *Harness) ThetaError(diag bool) float64 {
	est := h.Controller.ThetaEstimate()
	truth := h.Truth.Theta(diag)
	var sumSq float64
	for i := range truth {
		d := est[i] - truth[i]
		sumSq += d * d
	}
	return math.Sqrt(sumSq)
}
