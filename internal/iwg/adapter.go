// Package iwg implements the Information-Weighted Gradient parameter
// adapter: it accumulates the regressor information matrix P(t) and
// produces an information-weighted, leaky, regularised update of the
// inertia parameter vector θ̂, with an excitation-enhancing term for
// near-rank-deficient information and an SPD projection back into the
// physically valid inertia cone.
//
// The (I + λP) solve builds the SPD matrix to invert, calls Inverse(),
// and checks the returned error before trusting the result, retrying
// once with a small diagonal jitter on failure.
package iwg

import (
	"log"
	"math"

	"github.com/skelterjohn/go.matrix"
)

// Mode selects the inertia parameterisation.
type Mode int

const (
	// Diagonal is the 3-parameter model (Jxx, Jyy, Jzz).
	Diagonal Mode = iota
	// Full is the 6-parameter symmetric model (Jxx,Jyy,Jzz,Jxy,Jxz,Jyz).
	Full
)

// Config holds the adapter's tunables. Zero-valued fields are used as
// given; start from DefaultConfig for the usual values.
type Config struct {
	UseIWG  bool    // false selects plain gradient descent (no P weighting)
	Gamma   float64 // learning rate
	Sigma   float64 // leakage
	Beta    float64 // regularisation
	GammaEE float64 // excitation enhancement gain
	Lambda  float64 // information weight, [0,1]
	JMin    float64
	JMax    float64
}

// DefaultConfig returns the spec's default tunables.
func DefaultConfig() Config {
	return Config{
		UseIWG:  true,
		Gamma:   1.0,
		Sigma:   0.001,
		Beta:    0.001,
		GammaEE: 0,
		Lambda:  0.04,
		JMin:    0.01,
		JMax:    1.0,
	}
}

const (
	excitationDetThreshold = 1e-6
	persistentDetThreshold = 1e-4
	jitterEpsilon          = 1e-6
	offDiagBoundFraction   = 0.3
)

// Adapter owns θ̂ and P and performs the per-tick IWG update.
type Adapter struct {
	mode  Mode
	n     int
	theta []float64
	p     *matrix.DenseMatrix
	cfg   Config

	// Diagnostics, reset alongside theta/P.
	RetryCount int
	SkipCount  int
}

// New creates an adapter in the given mode, initialised from jInit (a
// symmetric 3x3 inertia matrix; only the diagonal is used in Diagonal
// mode).
func New(mode Mode, jInit [3][3]float64, cfg Config) *Adapter {
	a := &Adapter{mode: mode, cfg: cfg}
	a.n = 3
	if mode == Full {
		a.n = 6
	}
	a.Reset(jInit)
	return a
}

// Reset reinitialises θ̂ and P from jInit in place, without discarding
// tunables.
func (a *Adapter) Reset(jInit [3][3]float64) {
	a.theta = thetaFromInertia(a.mode, jInit)
	a.p = matrix.Zeros(a.n, a.n)
	a.RetryCount = 0
	a.SkipCount = 0
}

// SetTunables replaces the adapter's Config (gains, leakage,
// regularisation, excitation, information weight, SPD bounds) without
// touching θ̂ or P.
func (a *Adapter) SetTunables(cfg Config) {
	a.cfg = cfg
}

// Theta returns a copy of the current parameter estimate.
func (a *Adapter) Theta() []float64 {
	out := make([]float64, a.n)
	copy(out, a.theta)
	return out
}

// InertiaEstimate reconstructs the symmetric 3x3 inertia matrix from θ̂.
func (a *Adapter) InertiaEstimate() [3][3]float64 {
	return inertiaFromTheta(a.mode, a.theta)
}

// InformationDeterminant returns det(P).
func (a *Adapter) InformationDeterminant() float64 {
	return determinant(denseToSlice(a.p, a.n))
}

// IsPersistentlyExcited reports whether |det P| exceeds the
// persistent-excitation threshold.
func (a *Adapter) IsPersistentlyExcited() bool {
	return math.Abs(a.InformationDeterminant()) > persistentDetThreshold
}

// Update performs one IWG step given the regressor rows Y (3 x n),
// the filtered composite error sTilde, and the timestep dt. It
// returns the updated θ̂.
func (a *Adapter) Update(y [3][]float64, sTilde [3]float64, dt float64) []float64 {
	yMat := matrix.MakeDenseMatrixStacked([][]float64{y[0], y[1], y[2]})
	yT := yMat.Transpose()

	if a.cfg.UseIWG {
		yTy := matrix.Product(yT, yMat)
		a.p = matrix.Sum(a.p, matrix.Scaled(yTy, dt))
		a.p = symmetrize(a.p, a.n)
	}

	sVec := matrix.MakeDenseMatrix([]float64{sTilde[0], sTilde[1], sTilde[2]}, 3, 1)
	yTs := matrix.Product(yT, sVec)

	var g []float64
	skip := false
	if a.cfg.UseIWG {
		var ok bool
		g, ok = a.solveWeightedGradient(yTs)
		if !ok {
			a.SkipCount++
			skip = true
		}
	} else {
		g = make([]float64, a.n)
		for i := 0; i < a.n; i++ {
			g[i] = yTs.Get(i, 0)
		}
	}

	if skip {
		return a.Theta()
	}

	excitation := a.excitationTerm(yTs)

	next := make([]float64, a.n)
	for i := 0; i < a.n; i++ {
		leak := a.cfg.Sigma * a.theta[i]
		reg := 0.0
		if a.cfg.Gamma != 0 {
			reg = (a.cfg.Beta / a.cfg.Gamma) * a.theta[i]
		}
		next[i] = a.theta[i] + dt*(-a.cfg.Gamma*g[i]-leak-reg+excitation[i])
	}

	if !allFinite(next) {
		a.SkipCount++
		return a.Theta()
	}

	a.theta = project(a.mode, next, a.cfg.JMin, a.cfg.JMax)
	return a.Theta()
}

// solveWeightedGradient solves (I + λP)·g = Yᵀs̃, retrying once with
// ε·I jitter on numerical failure.
func (a *Adapter) solveWeightedGradient(yTs *matrix.DenseMatrix) ([]float64, bool) {
	a2 := matrix.Sum(matrix.Eye(a.n), matrix.Scaled(a.p, a.cfg.Lambda))
	if g, ok := trySolve(a2, yTs, a.n); ok {
		return g, true
	}

	a.RetryCount++
	jittered := matrix.Sum(a2, matrix.Scaled(matrix.Eye(a.n), jitterEpsilon))
	if g, ok := trySolve(jittered, yTs, a.n); ok {
		return g, true
	}

	log.Printf("iwg: (I+lambda*P) solve failed twice, skipping theta update this tick")
	return nil, false
}

func trySolve(a *matrix.DenseMatrix, b *matrix.DenseMatrix, n int) ([]float64, bool) {
	inv, err := a.Inverse()
	if err != nil {
		return nil, false
	}
	g := matrix.Product(inv, b)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v := g.Get(i, 0)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// excitationTerm computes the excitation-enhancing correction applied
// when the information matrix is near rank-deficient.
func (a *Adapter) excitationTerm(yTs *matrix.DenseMatrix) []float64 {
	out := make([]float64, a.n)
	if a.cfg.GammaEE <= 0 {
		return out
	}
	if math.Abs(a.InformationDeterminant()) >= excitationDetThreshold {
		return out
	}
	raw := make([]float64, a.n)
	var norm float64
	for i := 0; i < a.n; i++ {
		raw[i] = yTs.Get(i, 0)
		norm += raw[i] * raw[i]
	}
	norm = math.Sqrt(norm)
	if norm < 1e-12 {
		return out
	}
	for i := 0; i < a.n; i++ {
		out[i] = a.cfg.GammaEE * raw[i] / norm
	}
	return out
}

func symmetrize(m *matrix.DenseMatrix, n int) *matrix.DenseMatrix {
	out := matrix.Zeros(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, (m.Get(i, j)+m.Get(j, i))/2)
		}
	}
	return out
}

func denseToSlice(m *matrix.DenseMatrix, n int) [][]float64 {
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			out[i][j] = m.Get(i, j)
		}
	}
	return out
}

// determinant computes det(m) via LU decomposition with partial
// pivoting; n is at most 6 on the control path so this stays cheap.
func determinant(m [][]float64) float64 {
	n := len(m)
	a := make([][]float64, n)
	for i := range m {
		a[i] = append([]float64(nil), m[i]...)
	}
	det := 1.0
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-15 {
			return 0
		}
		if pivot != col {
			a[pivot], a[col] = a[col], a[pivot]
			det = -det
		}
		det *= a[col][col]
		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
		}
	}
	return det
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func thetaFromInertia(mode Mode, j [3][3]float64) []float64 {
	if mode == Diagonal {
		return []float64{j[0][0], j[1][1], j[2][2]}
	}
	return []float64{j[0][0], j[1][1], j[2][2], j[0][1], j[0][2], j[1][2]}
}

func inertiaFromTheta(mode Mode, theta []float64) [3][3]float64 {
	if mode == Diagonal {
		return [3][3]float64{
			{theta[0], 0, 0},
			{0, theta[1], 0},
			{0, 0, theta[2]},
		}
	}
	return [3][3]float64{
		{theta[0], theta[3], theta[4]},
		{theta[3], theta[1], theta[5]},
		{theta[4], theta[5], theta[2]},
	}
}

// project clips θ̂ back into the SPD cone: diagonal entries into
// [jMin,jMax] in both modes, and in Full mode each off-diagonal
// bounded by a fraction of the smaller adjacent diagonal and by half
// the headroom of its two diagonals to jMin and jMax, so every
// Gershgorin disc, and hence every eigenvalue, lies in [jMin,jMax].
func project(mode Mode, theta []float64, jMin, jMax float64) []float64 {
	out := append([]float64(nil), theta...)
	if mode == Diagonal {
		for i := 0; i < 3; i++ {
			out[i] = clip(out[i], jMin, jMax)
		}
		return out
	}
	for i := 0; i < 3; i++ {
		out[i] = clip(out[i], jMin, jMax)
	}
	pairs := [3][2]int{{0, 1}, {0, 2}, {1, 2}} // (Jxx,Jyy)->Jxy, (Jxx,Jzz)->Jxz, (Jyy,Jzz)->Jyz
	for k, pair := range pairs {
		lo := math.Min(out[pair[0]], out[pair[1]])
		hi := math.Max(out[pair[0]], out[pair[1]])
		bound := offDiagBoundFraction * lo
		// Each row carries two off-diagonals, so each may use half the room.
		bound = math.Min(bound, math.Min(lo-jMin, jMax-hi)/2)
		out[3+k] = clip(out[3+k], -bound, bound)
	}
	return out
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
