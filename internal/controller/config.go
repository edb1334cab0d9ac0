package controller

import "fmt"

// Config bundles the controller's gains, limits and mode flags. All
// fields are immutable once passed to New except through the
// controller's validated setters.
type Config struct {
	UseDiagonalInertia bool // true: 3-parameter model, false: 6-parameter
	UseIWG             bool // true: information-weighted gradient, false: plain gradient

	JInit [3][3]float64 // initial inertia guess, symmetric, eigenvalues in [JMin,JMax]

	KR, KOmega, K [3]float32 // PD and robust-damping gains, positive diagonals
	C             float32    // composite-error mixing weight
	TauMax        float32    // saturation limit, N*m, enforced >= 0.01
	AlphaFilter   float32    // s-tilde low-pass bandwidth, clamped to [0,1]

	Gamma, Sigma, Beta, GammaEE float64 // adaptation rate, leakage, regularisation, excitation
	Lambda                     float64 // information weight, [0,1]
	JMin, JMax                 float64 // SPD projection bounds, kg*m^2
}

// DefaultConfig returns a reasonable set of gains and adaptation
// tunables for a small multirotor, used as the default starting point
// before any tuning.
func DefaultConfig() Config {
	return Config{
		UseDiagonalInertia: true,
		UseIWG:             true,
		JInit: [3][3]float64{
			{0.04, 0, 0},
			{0, 0.04, 0},
			{0, 0, 0.025},
		},
		KR:          [3]float32{5, 5, 3},
		KOmega:      [3]float32{0.3, 0.3, 0.2},
		K:           [3]float32{0.1, 0.1, 0.1},
		C:           2,
		TauMax:      0.05,
		AlphaFilter: 0.5,
		Gamma:       1.0,
		Sigma:       0.001,
		Beta:        0.001,
		GammaEE:     0,
		Lambda:      0.04,
		JMin:        0.01,
		JMax:        1.0,
	}
}

// Validate enforces the range constraints every gain and limit in
// Config must satisfy before a Controller can be built from it.
func (c Config) Validate() error {
	if c.TauMax < 0.01 {
		return fmt.Errorf("controller: TauMax must be >= 0.01, got %v", c.TauMax)
	}
	if c.AlphaFilter < 0 || c.AlphaFilter > 1 {
		return fmt.Errorf("controller: AlphaFilter must be in [0,1], got %v", c.AlphaFilter)
	}
	if c.Lambda < 0 || c.Lambda > 1 {
		return fmt.Errorf("controller: Lambda must be in [0,1], got %v", c.Lambda)
	}
	if c.JMin <= 0 || c.JMax <= c.JMin {
		return fmt.Errorf("controller: require 0 < JMin < JMax, got JMin=%v JMax=%v", c.JMin, c.JMax)
	}
	for i, v := range c.KR {
		if v <= 0 {
			return fmt.Errorf("controller: KR[%d] must be positive, got %v", i, v)
		}
	}
	for i, v := range c.KOmega {
		if v <= 0 {
			return fmt.Errorf("controller: KOmega[%d] must be positive, got %v", i, v)
		}
	}
	for i, v := range c.K {
		if v <= 0 {
			return fmt.Errorf("controller: K[%d] must be positive, got %v", i, v)
		}
	}
	return nil
}
