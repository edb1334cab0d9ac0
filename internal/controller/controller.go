// Package controller composes the geometric PD term, the adaptive
// feed-forward term and a robust damping term into a composite
// attitude control law, driving an internal IWG adapter (package iwg)
// each tick and saturating the resulting torque.
package controller

import (
	"log"

	"github.com/skywardcontrols/aic-attitude/internal/iwg"
	"github.com/skywardcontrols/aic-attitude/internal/regressor"
	"github.com/skywardcontrols/aic-attitude/internal/so3"
)

// Status reports the diagnostic counters and flags read by the host
// adapter after every tick.
type Status struct {
	Torque      so3.Vec3
	SatActive   [3]bool
	InvalidInput uint64
	RotationWarn uint64
	IWGRetry     uint64
	IWGSkip      uint64
	InformationDeterminant float64
	PersistentlyExcited    bool
}

// Controller is the composite AIC attitude controller. It owns an IWG
// adapter via pointer, since the adapter is not copyable cheaply, and
// does not share that reference with callers.
type Controller struct {
	cfg     Config
	adapter *iwg.Adapter

	sTilde     so3.Vec3
	lastTorque so3.Vec3
	status     Status

	rotationTol float32
}

// New constructs a controller from cfg. Panics if cfg fails Validate:
// callers are expected to check configuration before constructing a
// controller from it.
func New(cfg Config) *Controller {
	if err := cfg.Validate(); err != nil {
		log.Panicf("controller: invalid config: %v", err)
	}
	ctl := &Controller{cfg: cfg, rotationTol: 1e-4}
	ctl.adapter = iwg.New(mode(cfg.UseDiagonalInertia), cfg.JInit, adapterConfig(cfg))
	return ctl
}

func mode(diag bool) iwg.Mode {
	if diag {
		return iwg.Diagonal
	}
	return iwg.Full
}

func adapterConfig(c Config) iwg.Config {
	return iwg.Config{
		UseIWG:  c.UseIWG,
		Gamma:   c.Gamma,
		Sigma:   c.Sigma,
		Beta:    c.Beta,
		GammaEE: c.GammaEE,
		Lambda:  c.Lambda,
		JMin:    c.JMin,
		JMax:    c.JMax,
	}
}

// Reset reinitialises θ̂, P and s̃ from jInit without destroying the
// controller.
func (ctl *Controller) Reset(jInit [3][3]float64) {
	ctl.cfg.JInit = jInit
	ctl.adapter.Reset(jInit)
	ctl.sTilde = so3.Vec3{}
	ctl.lastTorque = so3.Vec3{}
	ctl.status = Status{}
}

// SetControlGains updates the PD and robust-damping gains and the
// composite-error mixing weight c.
func (ctl *Controller) SetControlGains(kR, kOmega, k [3]float32, c float32) {
	ctl.cfg.KR, ctl.cfg.KOmega, ctl.cfg.K, ctl.cfg.C = kR, kOmega, k, c
}

// SetAdaptationParams forwards new adaptation tunables to the IWG
// adapter.
func (ctl *Controller) SetAdaptationParams(gamma, sigma, beta, gammaEE float64) {
	ctl.cfg.Gamma, ctl.cfg.Sigma, ctl.cfg.Beta, ctl.cfg.GammaEE = gamma, sigma, beta, gammaEE
	ctl.adapter.SetTunables(adapterConfig(ctl.cfg))
}

// SetSaturationLimit updates τ_max, enforced to be at least 0.01.
func (ctl *Controller) SetSaturationLimit(tauMax float32) {
	if tauMax < 0.01 {
		tauMax = 0.01
	}
	ctl.cfg.TauMax = tauMax
}

// SetFilterBandwidth updates α_filter, clamped to [0,1].
func (ctl *Controller) SetFilterBandwidth(alpha float32) {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	ctl.cfg.AlphaFilter = alpha
}

// Status returns the most recent diagnostic snapshot.
func (ctl *Controller) Status() Status {
	return ctl.status
}

// SaturationLimit returns the current τ_max, needed by the host
// adapter to normalise torque to [-1,1].
func (ctl *Controller) SaturationLimit() float32 {
	return ctl.cfg.TauMax
}

// ThetaEstimate returns a copy of the adapter's current parameter
// vector θ̂ (length 3 in diagonal mode, 6 in full mode), used by the
// simulation harness to report convergence against θ(J_true).
func (ctl *Controller) ThetaEstimate() []float64 {
	return ctl.adapter.Theta()
}

// InertiaEstimate reconstructs the symmetric 3x3 inertia matrix from
// the adapter's current θ̂.
func (ctl *Controller) InertiaEstimate() [3][3]float64 {
	return ctl.adapter.InertiaEstimate()
}

// ComputeTorque runs one tick of the composite control law and
// returns the saturated three-axis torque.
func (ctl *Controller) ComputeTorque(r, rd so3.Mat3, omega, omegaD, alphaD so3.Vec3, dt float32) so3.Vec3 {
	if dt <= 0 || !finiteInputs(r, rd, omega, omegaD, alphaD) {
		ctl.status.InvalidInput++
		ctl.status.Torque = ctl.lastTorque
		return ctl.lastTorque
	}

	if !so3.IsValidRotation(r, ctl.rotationTol) || !so3.IsValidRotation(rd, ctl.rotationTol) {
		ctl.status.RotationWarn++
	}

	eR := so3.AttitudeError(r, rd)
	eOmega := so3.AngularVelocityError(omega, r, rd, omegaD)

	s := so3.Add(eOmega, so3.Scale(ctl.cfg.C, eR))
	ctl.sTilde = so3.Add(so3.Scale(ctl.cfg.AlphaFilter, s), so3.Scale(1-ctl.cfg.AlphaFilter, ctl.sTilde))

	alphaCmd := so3.CommandedAngularAccel(r, rd, omega, omegaD, alphaD)

	omega64 := toFloat64Vec(omega)
	alpha64 := toFloat64Vec(alphaCmd)
	sTilde64 := toFloat64Vec(ctl.sTilde)

	retriesBefore, skipsBefore := ctl.adapter.RetryCount, ctl.adapter.SkipCount

	var tauFF64 [3]float64
	if ctl.cfg.UseDiagonalInertia {
		y := regressor.Diagonal(omega64, alpha64)
		theta := ctl.adapter.Update([3][]float64{y[0][:], y[1][:], y[2][:]}, sTilde64, float64(dt))
		tauFF64 = regressor.ApplyDiagonal(y, regressor.DiagonalTheta{theta[0], theta[1], theta[2]})
	} else {
		y := regressor.Full(omega64, alpha64)
		theta := ctl.adapter.Update([3][]float64{y[0][:], y[1][:], y[2][:]}, sTilde64, float64(dt))
		tauFF64 = regressor.ApplyFull(y, regressor.FullTheta{theta[0], theta[1], theta[2], theta[3], theta[4], theta[5]})
	}

	ctl.status.IWGRetry += uint64(ctl.adapter.RetryCount - retriesBefore)
	ctl.status.IWGSkip += uint64(ctl.adapter.SkipCount - skipsBefore)

	var tau so3.Vec3
	var sat [3]bool
	for i := 0; i < 3; i++ {
		tauPD := -ctl.cfg.KR[i]*eR[i] - ctl.cfg.KOmega[i]*eOmega[i]
		tauRob := -ctl.cfg.K[i] * ctl.sTilde[i]
		total := tauPD + float32(tauFF64[i]) + tauRob
		tau[i], sat[i] = saturate(total, ctl.cfg.TauMax)
	}

	ctl.lastTorque = tau
	ctl.status.Torque = tau
	ctl.status.SatActive = sat
	ctl.status.InformationDeterminant = ctl.adapter.InformationDeterminant()
	ctl.status.PersistentlyExcited = ctl.adapter.IsPersistentlyExcited()

	return tau
}

func saturate(v, limit float32) (float32, bool) {
	if v > limit {
		return limit, true
	}
	if v < -limit {
		return -limit, true
	}
	return v, false
}

func finiteInputs(r, rd so3.Mat3, omega, omegaD, alphaD so3.Vec3) bool {
	return so3.IsFiniteMat3(r) && so3.IsFiniteMat3(rd) &&
		so3.IsFiniteVec3(omega) && so3.IsFiniteVec3(omegaD) && so3.IsFiniteVec3(alphaD)
}

func toFloat64Vec(v so3.Vec3) [3]float64 {
	return [3]float64{float64(v[0]), float64(v[1]), float64(v[2])}
}
