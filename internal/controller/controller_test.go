package controller

import (
	"math"
	"testing"

	"github.com/skywardcontrols/aic-attitude/internal/so3"
)

func rotX(theta float32) so3.Mat3 {
	c, s := float32(math.Cos(float64(theta))), float32(math.Sin(float64(theta)))
	return so3.Mat3{
		{1, 0, 0},
		{0, c, -s},
		{0, s, c},
	}
}

func TestHoverHoldProducesZeroTorque(t *testing.T) {
	cfg := DefaultConfig()
	ctl := New(cfg)

	id := so3.Identity3()
	zero := so3.Vec3{}
	for i := 0; i < 1000; i++ {
		tau := ctl.ComputeTorque(id, id, zero, zero, zero, 0.01)
		if tau != (so3.Vec3{}) {
			t.Fatalf("tick %d: expected zero torque at hover, got %v", i, tau)
		}
	}
	if ctl.Status().PersistentlyExcited {
		t.Fatalf("expected not persistently excited at hover")
	}
}

func TestStepInRollFirstTick(t *testing.T) {
	cfg := DefaultConfig()
	ctl := New(cfg)

	id := so3.Identity3()
	rd := rotX(0.2)
	zero := so3.Vec3{}

	tau := ctl.ComputeTorque(id, rd, zero, zero, zero, 0.01)

	// e_R = 1/2*vee(Rd^T*R - R^T*Rd) with R=I evaluates to (-sin(0.2),0,0)
	// under this package's hat/vee convention; tau_pd,x = -KR.x*e_R.x
	// = -5*(-0.1987) ~= +0.994, saturated to +TauMax = 0.05.
	if math.Abs(float64(tau[0])-0.05) > 1e-6 {
		t.Fatalf("tau.x = %v, want saturated +0.05", tau[0])
	}
	if tau[1] != 0 || tau[2] != 0 {
		t.Fatalf("tau = %v, want y=z=0 on the first tick of a pure roll step", tau)
	}
	if !ctl.Status().SatActive[0] {
		t.Fatalf("expected sat_active[0] after saturating roll torque")
	}
}

func TestSaturationClampHoldsUnderExtremeError(t *testing.T) {
	cfg := DefaultConfig()
	ctl := New(cfg)

	id := so3.Identity3()
	rd := rotX(float32(math.Pi))
	zero := so3.Vec3{}

	for i := 0; i < 200; i++ {
		tau := ctl.ComputeTorque(id, rd, zero, zero, zero, 0.01)
		for axis, v := range tau {
			if math.Abs(float64(v)) > float64(cfg.TauMax)+1e-6 {
				t.Fatalf("tick %d axis %d: |tau|=%v exceeds TauMax=%v", i, axis, v, cfg.TauMax)
			}
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				t.Fatalf("tick %d axis %d: non-finite torque %v", i, axis, v)
			}
		}
	}
}

func TestInvalidInputSkipsAdaptationAndReemitsLastTorque(t *testing.T) {
	cfg := DefaultConfig()
	ctl := New(cfg)

	id := so3.Identity3()
	rd := rotX(0.2)
	zero := so3.Vec3{}

	first := ctl.ComputeTorque(id, rd, zero, zero, zero, 0.01)

	nan := so3.Vec3{float32(math.NaN()), 0, 0}
	second := ctl.ComputeTorque(id, rd, nan, zero, zero, 0.01)
	if second != first {
		t.Fatalf("expected re-emitted torque %v on invalid input, got %v", first, second)
	}
	if ctl.Status().InvalidInput != 1 {
		t.Fatalf("expected InvalidInput counter to be 1, got %d", ctl.Status().InvalidInput)
	}

	third := ctl.ComputeTorque(id, rd, zero, zero, zero, -0.01)
	if third != first {
		t.Fatalf("expected re-emitted torque on dt<=0, got %v", third)
	}
	if ctl.Status().InvalidInput != 2 {
		t.Fatalf("expected InvalidInput counter to be 2, got %d", ctl.Status().InvalidInput)
	}
}

func TestResetRecoveryMatchesFreshController(t *testing.T) {
	jInit := DefaultConfig().JInit
	fresh := New(DefaultConfig())

	perturbed := New(DefaultConfig())
	rd := rotX(0.3)
	id := so3.Identity3()
	for i := 0; i < 50; i++ {
		perturbed.ComputeTorque(id, rd, so3.Vec3{0.05, -0.02, 0.01}, so3.Vec3{}, so3.Vec3{0.1, 0, 0}, 0.01)
	}
	perturbed.Reset(jInit)

	a := fresh.ComputeTorque(id, rd, zeroVec(), zeroVec(), zeroVec(), 0.01)
	b := perturbed.ComputeTorque(id, rd, zeroVec(), zeroVec(), zeroVec(), 0.01)
	if a != b {
		t.Fatalf("post-reset behavior diverged from fresh controller: %v vs %v", a, b)
	}
}

func zeroVec() so3.Vec3 { return so3.Vec3{} }
