package regressor

import (
	"math"
	"math/rand"
	"testing"
)

func vecNorm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func TestDiagonalRegressorMatchesRigidBodyTorque(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		jDiag := DiagonalTheta{0.01 + rng.Float64()*0.99, 0.01 + rng.Float64()*0.99, 0.01 + rng.Float64()*0.99}
		j := InertiaFromDiagonal(jDiag)
		omega := [3]float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		alpha := [3]float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}

		y := Diagonal(omega, alpha)
		got := ApplyDiagonal(y, jDiag)
		want := RigidBodyTorque(j, omega, alpha)

		diff := [3]float64{got[0] - want[0], got[1] - want[1], got[2] - want[2]}
		if vecNorm(diff) > 1e-9 {
			t.Fatalf("diagonal regressor mismatch: got %v want %v (J=%v, omega=%v, alpha=%v)", got, want, jDiag, omega, alpha)
		}
	}
}

func TestFullRegressorMatchesRigidBodyTorqueForSymmetricJ(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		theta := FullTheta{
			0.01 + rng.Float64()*0.99,
			0.01 + rng.Float64()*0.99,
			0.01 + rng.Float64()*0.99,
			(rng.Float64() - 0.5) * 0.1,
			(rng.Float64() - 0.5) * 0.1,
			(rng.Float64() - 0.5) * 0.1,
		}
		j := InertiaFromFull(theta)
		omega := [3]float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		alpha := [3]float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}

		y := Full(omega, alpha)
		got := ApplyFull(y, theta)
		want := RigidBodyTorque(j, omega, alpha)

		diff := [3]float64{got[0] - want[0], got[1] - want[1], got[2] - want[2]}
		if vecNorm(diff) > 1e-9 {
			t.Fatalf("full regressor mismatch: got %v want %v (theta=%v, omega=%v, alpha=%v)", got, want, theta, omega, alpha)
		}
	}
}

func TestRegressorLinearity(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	omega := [3]float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
	alpha := [3]float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
	y := Full(omega, alpha)

	a := FullTheta{0.05, 0.04, 0.03, 0.001, -0.002, 0.0005}
	b := FullTheta{0.02, -0.01, 0.015, 0.0003, 0.0001, -0.0004}
	var sum FullTheta
	for i := range sum {
		sum[i] = a[i] + b[i]
	}

	lhs := ApplyFull(y, sum)
	ra := ApplyFull(y, a)
	rb := ApplyFull(y, b)
	rhs := [3]float64{ra[0] + rb[0], ra[1] + rb[1], ra[2] + rb[2]}

	diff := [3]float64{lhs[0] - rhs[0], lhs[1] - rhs[1], lhs[2] - rhs[2]}
	if vecNorm(diff) > 1e-12 {
		t.Fatalf("regressor not linear: Y(a+b)=%v, Ya+Yb=%v", lhs, rhs)
	}
}

func TestThetaInertiaRoundTrip(t *testing.T) {
	j := [3][3]float64{
		{0.05, 0.001, -0.002},
		{0.001, 0.04, 0.0005},
		{-0.002, 0.0005, 0.03},
	}
	theta := ThetaFromInertiaFull(j)
	back := InertiaFromFull(theta)
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			if math.Abs(j[i][k]-back[i][k]) > 1e-12 {
				t.Fatalf("round trip mismatch at (%d,%d): %v vs %v", i, k, j, back)
			}
		}
	}
}
