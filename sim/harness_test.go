package sim

import (
	"testing"

	"github.com/skywardcontrols/aic-attitude/internal/controller"
	"github.com/skywardcontrols/aic-attitude/internal/so3"
)

func jTrueDiagonal() [3][3]float64 {
	return [3][3]float64{
		{0.055, 0, 0},
		{0, 0.048, 0},
		{0, 0, 0.03},
	}
}

func TestSinusoidalTrackingConvergesWithin30Seconds(t *testing.T) {
	cfg := controller.DefaultConfig()
	ctl := controller.New(cfg)
	truth := NewRigidBody(jTrueDiagonal(), so3.Identity3(), so3.Vec3{})
	ref := Sinusoid{Amplitude: [3]float64{0.2, 0.15, 0.1}, Omega: [3]float64{0.5, 0.4, 0.3}}

	h := NewHarness(ctl, truth, ref, 0.01)
	h.Run(3000) // 30s @ 100Hz

	if err := h.ThetaError(true); err >= 0.01 {
		t.Fatalf("theta error after 30s = %v, want < 0.01", err)
	}
}

func TestResetRecoveryAfterPerturbedRun(t *testing.T) {
	cfg := controller.DefaultConfig()
	jInit := cfg.JInit

	fresh := controller.New(cfg)
	perturbed := controller.New(cfg)

	truthFresh := NewRigidBody(jTrueDiagonal(), so3.Identity3(), so3.Vec3{})
	truthPerturbed := NewRigidBody(jTrueDiagonal(), so3.Identity3(), so3.Vec3{0.2, -0.1, 0.05})
	ref := Sinusoid{Amplitude: [3]float64{0.2, 0.15, 0.1}, Omega: [3]float64{0.5, 0.4, 0.3}}

	hPerturbed := NewHarness(perturbed, truthPerturbed, ref, 0.01)
	hPerturbed.Run(500)
	perturbed.Reset(jInit)
	truthPerturbed.Omega = so3.Vec3{}
	truthPerturbed.R = so3.Identity3()

	hFresh := NewHarness(fresh, truthFresh, ref, 0.01)
	hFresh.t = hPerturbed.t
	a := hFresh.Tick()
	b := hPerturbed.Tick()
	if a != b {
		t.Fatalf("post-reset torque diverged from a fresh controller: %v vs %v", a, b)
	}
}

func TestStepResponseStaysWithinSaturation(t *testing.T) {
	cfg := controller.DefaultConfig()
	ctl := controller.New(cfg)
	truth := NewRigidBody(jTrueDiagonal(), so3.Identity3(), so3.Vec3{})

	rd := eulerToRotation(0.4, 0, 0)
	ref := Step{Before: so3.Identity3(), After: rd, SwitchAt: 0}

	h := NewHarness(ctl, truth, ref, 0.01)
	for i := 0; i < 1000; i++ {
		tau := h.Tick()
		for axis, v := range tau {
			if v > cfg.TauMax+1e-6 || v < -cfg.TauMax-1e-6 {
				t.Fatalf("tick %d axis %d: |tau|=%v exceeds TauMax=%v", i, axis, v, cfg.TauMax)
			}
		}
	}
}
