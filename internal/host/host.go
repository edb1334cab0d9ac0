// Package host implements the per-tick driver that sits between an
// external tick source (a real-time task host reading pose/rate
// samples, outside this package's scope) and the core controller: it
// computes dt from a monotonic clock, clamps it to the host's
// scheduling bounds, invokes the controller, and normalises the
// resulting torque to [-1,1] per axis for the downstream mixer.
package host

import (
	"log"

	"github.com/skywardcontrols/aic-attitude/internal/controller"
	"github.com/skywardcontrols/aic-attitude/internal/so3"
)

const (
	minDt = 0.002 // s, 500 Hz
	maxDt = 0.1   // s, 5 Hz

	statusQueueDepth = 8
)

// Host drives a Controller tick by tick.
type Host struct {
	ctl *controller.Controller

	haveClock   bool
	lastTickUs  int64
	statusCh    chan controller.Status
}

// New wraps ctl in a host-facing per-tick driver.
func New(ctl *controller.Controller) *Host {
	return &Host{
		ctl:      ctl,
		statusCh: make(chan controller.Status, statusQueueDepth),
	}
}

// StatusChannel returns the channel onto which the host publishes a
// Status snapshot after every emitting tick. Reads are non-blocking
// from the host's perspective: a full channel simply drops the oldest
// pending status rather than stalling the tick (see publish).
func (h *Host) StatusChannel() <-chan controller.Status {
	return h.statusCh
}

// Tick runs one iteration given a monotonic microsecond timestamp and
// the current pose/rate samples and setpoints. The first call only
// initialises the clock and reports emit=false.
func (h *Host) Tick(nowUs int64, r, rd so3.Mat3, omega, omegaD, alphaD so3.Vec3) (torqueNormalized so3.Vec3, emit bool) {
	if !h.haveClock {
		h.haveClock = true
		h.lastTickUs = nowUs
		return so3.Vec3{}, false
	}

	dtUs := nowUs - h.lastTickUs
	h.lastTickUs = nowUs
	dt := float32(dtUs) / 1e6
	if dt < minDt {
		dt = minDt
	}
	if dt > maxDt {
		dt = maxDt
	}

	tau := h.ctl.ComputeTorque(r, rd, omega, omegaD, alphaD, dt)
	status := h.ctl.Status()
	h.publish(status)

	return normalize(tau, h.tauMax()), true
}

// Reconfigure propagates new tunables to the controller. Safe only
// between ticks: a host wrapping cooperative cancellation must ensure
// no tick is in flight before calling this.
func (h *Host) Reconfigure(kR, kOmega, k so3.Vec3, c float32, gamma, sigma, beta, gammaEE float64, tauMax, alphaFilter float32) {
	h.ctl.SetControlGains(kR, kOmega, k, c)
	h.ctl.SetAdaptationParams(gamma, sigma, beta, gammaEE)
	h.ctl.SetSaturationLimit(tauMax)
	h.ctl.SetFilterBandwidth(alphaFilter)
	log.Printf("host: reconfigured control gains and adaptation tunables")
}

func (h *Host) tauMax() float32 {
	return h.ctl.SaturationLimit()
}

// LastStatus returns the controller's most recent diagnostic snapshot
// synchronously, for callers that need the torque a tick just produced
// without reading StatusChannel (e.g. a simulated tick source that
// must feed that torque back into its own truth model).
func (h *Host) LastStatus() controller.Status {
	return h.ctl.Status()
}

func (h *Host) publish(s controller.Status) {
	select {
	case h.statusCh <- s:
	default:
		// Drop the oldest pending snapshot to make room: a slow
		// consumer never blocks the tick.
		select {
		case <-h.statusCh:
		default:
		}
		select {
		case h.statusCh <- s:
		default:
		}
	}
}

func normalize(tau so3.Vec3, tauMax float32) so3.Vec3 {
	if tauMax <= 0 {
		return so3.Vec3{}
	}
	var out so3.Vec3
	for i := 0; i < 3; i++ {
		v := tau[i] / tauMax
		if v > 1 {
			v = 1
		}
		if v < -1 {
			v = -1
		}
		out[i] = v
	}
	return out
}
