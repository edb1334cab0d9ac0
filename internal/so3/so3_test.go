package so3

import (
	"math"
	"math/rand"
	"testing"
)

func approxEqual(a, b, tol float32) bool {
	return float32(math.Abs(float64(a-b))) < tol
}

func vecApproxEqual(a, b Vec3, tol float32) bool {
	for i := 0; i < 3; i++ {
		if !approxEqual(a[i], b[i], tol) {
			return false
		}
	}
	return true
}

func rotX(theta float32) Mat3 {
	c, s := float32(math.Cos(float64(theta))), float32(math.Sin(float64(theta)))
	return Mat3{
		{1, 0, 0},
		{0, c, -s},
		{0, s, c},
	}
}

func randomRotation(rng *rand.Rand) Mat3 {
	// Random rotation via a random axis and angle (Rodrigues formula),
	// enough for statistical coverage of is_valid_rotation.
	axis := Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
	n := float32(math.Sqrt(float64(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])))
	if n < 1e-6 {
		return Identity3()
	}
	axis = Scale(1/n, axis)
	theta := rng.Float32() * 2 * math.Pi
	k := Hat(axis)
	kk := MatMul(k, k)
	id := Identity3()
	var r Mat3
	st, ct := float32(math.Sin(float64(theta))), float32(math.Cos(float64(theta)))
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = id[i][j] + st*k[i][j] + (1-ct)*kk[i][j]
		}
	}
	return r
}

func TestHatVeeInverse(t *testing.T) {
	v := Vec3{1, -2, 3}
	if got := Vee(Hat(v)); !vecApproxEqual(got, v, 1e-6) {
		t.Fatalf("Vee(Hat(v)) = %v, want %v", got, v)
	}
}

func TestAttitudeErrorZeroWhenEqual(t *testing.T) {
	r := rotX(0.37)
	if got := AttitudeError(r, r); !vecApproxEqual(got, Vec3{}, 1e-6) {
		t.Fatalf("AttitudeError(R,R) = %v, want zero", got)
	}
}

func TestAttitudeErrorKnownRoll(t *testing.T) {
	r := Identity3()
	rd := rotX(0.2)
	e := AttitudeError(r, rd)
	// Expected ~ (-sin(0.2), 0, 0) for a pure roll of the desired frame
	// under this package's hat/vee sign convention.
	want := -float32(math.Sin(0.2))
	if !approxEqual(e[0], want, 1e-3) {
		t.Fatalf("e_R.x = %v, want ~%v", e[0], want)
	}
	if !approxEqual(e[1], 0, 1e-6) || !approxEqual(e[2], 0, 1e-6) {
		t.Fatalf("e_R = %v, want y=z=0", e)
	}
}

func TestAngularVelocityErrorZeroWhenMatched(t *testing.T) {
	r := rotX(0.5)
	omega := Vec3{0.1, 0.2, 0.3}
	if got := AngularVelocityError(omega, r, r, omega); !vecApproxEqual(got, Vec3{}, 1e-6) {
		t.Fatalf("e_Omega = %v, want zero", got)
	}
}

func TestCommandedAngularAccelZero(t *testing.T) {
	r := rotX(0.2)
	got := CommandedAngularAccel(r, r, Vec3{}, Vec3{}, Vec3{})
	if !vecApproxEqual(got, Vec3{}, 1e-6) {
		t.Fatalf("alpha = %v, want zero", got)
	}
}

func TestIsValidRotationRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		r := randomRotation(rng)
		if !IsValidRotation(r, 1e-4) {
			t.Fatalf("random rotation %v rejected as invalid", r)
		}
	}
}

func TestIsValidRotationRejectsNonOrthogonal(t *testing.T) {
	m := Mat3{{1, 0.5, 0}, {0, 1, 0}, {0, 0, 1}}
	if IsValidRotation(m, 1e-4) {
		t.Fatalf("non-orthogonal matrix accepted as valid rotation")
	}
}

func TestTraceAttitudeErrorRange(t *testing.T) {
	r := Identity3()
	rd := rotX(math.Pi)
	psi := TraceAttitudeError(r, rd)
	if psi < 1.9 || psi > 2.1 {
		t.Fatalf("Psi at opposite rotation = %v, want ~2", psi)
	}
}
