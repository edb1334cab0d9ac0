package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/skywardcontrols/aic-attitude/internal/controller"
)

// loadConfig reads a flat key=value file into a controller.Config
// seeded with controller.DefaultConfig.
//
// Recognised keys: tau_max, alpha_filter, c, gamma, sigma, beta,
// gamma_ee, lambda, j_min, j_max, kr (comma-separated x,y,z),
// komega, k, use_diagonal_inertia, use_iwg.
func loadConfig(path string) (controller.Config, error) {
	cfg := controller.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("aictl: opening config %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return cfg, fmt.Errorf("aictl: malformed config line %q", line)
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		if err := applyConfigField(&cfg, key, val); err != nil {
			return cfg, err
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("aictl: reading config %s: %w", path, err)
	}
	return cfg, nil
}

func applyConfigField(cfg *controller.Config, key, val string) error {
	switch key {
	case "tau_max":
		return setFloat32(&cfg.TauMax, val)
	case "alpha_filter":
		return setFloat32(&cfg.AlphaFilter, val)
	case "c":
		return setFloat32(&cfg.C, val)
	case "gamma":
		return setFloat64(&cfg.Gamma, val)
	case "sigma":
		return setFloat64(&cfg.Sigma, val)
	case "beta":
		return setFloat64(&cfg.Beta, val)
	case "gamma_ee":
		return setFloat64(&cfg.GammaEE, val)
	case "lambda":
		return setFloat64(&cfg.Lambda, val)
	case "j_min":
		return setFloat64(&cfg.JMin, val)
	case "j_max":
		return setFloat64(&cfg.JMax, val)
	case "kr":
		return setVec3(&cfg.KR, val)
	case "komega":
		return setVec3(&cfg.KOmega, val)
	case "k":
		return setVec3(&cfg.K, val)
	case "use_diagonal_inertia":
		return setBool(&cfg.UseDiagonalInertia, val)
	case "use_iwg":
		return setBool(&cfg.UseIWG, val)
	default:
		return fmt.Errorf("aictl: unknown config key %q", key)
	}
}

func setFloat32(dst *float32, val string) error {
	f, err := strconv.ParseFloat(val, 32)
	if err != nil {
		return fmt.Errorf("aictl: parsing float %q: %w", val, err)
	}
	*dst = float32(f)
	return nil
}

func setFloat64(dst *float64, val string) error {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fmt.Errorf("aictl: parsing float %q: %w", val, err)
	}
	*dst = f
	return nil
}

func setBool(dst *bool, val string) error {
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fmt.Errorf("aictl: parsing bool %q: %w", val, err)
	}
	*dst = b
	return nil
}

func setVec3(dst *[3]float32, val string) error {
	var a [3]float64
	for i, s := range strings.Split(val, ",") {
		if i >= 3 {
			return fmt.Errorf("aictl: vector %q has more than 3 components", val)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("aictl: parsing vector component %q: %w", s, err)
		}
		a[i] = f
	}
	dst[0], dst[1], dst[2] = float32(a[0]), float32(a[1]), float32(a[2])
	return nil
}
