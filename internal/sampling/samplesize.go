package sampling

import "math"

// CalculateSampleSize computes the required sample size for attribute
// sampling at the given confidence, tolerable error rate, and expected error
// rate, with finite-population correction for a population of size n.
//
// The base size is z²·p·(1−p)/E² where p is the expected error rate and E is
// the precision (tolerable − expected); the correction then shrinks it toward
// the population: ceil(N·n0 / (N + n0 − 1)), clamped to [1, N].
func CalculateSampleSize(populationSize int, confidence, tolerableRate, expectedRate float64) (int, error) {
	if populationSize < 1 {
		return 0, errValidation("Population size must be at least 1, got %d", populationSize)
	}
	if confidence <= 0 || confidence >= 1 {
		return 0, errValidation("Confidence must be between 0 and 1 (exclusive), got %v", confidence)
	}
	if tolerableRate <= 0 || tolerableRate >= 1 {
		return 0, errValidation("Tolerable error rate must be between 0 and 1 (exclusive), got %v", tolerableRate)
	}
	if expectedRate < 0 || expectedRate >= 1 {
		return 0, errValidation("Expected error rate must be between 0 (inclusive) and 1 (exclusive), got %v", expectedRate)
	}
	if tolerableRate <= expectedRate {
		return 0, errValidation("Tolerable error rate must exceed expected error rate")
	}

	z, err := ZScore(confidence)
	if err != nil {
		return 0, err
	}

	p := expectedRate
	precision := tolerableRate - expectedRate
	n0 := z * z * p * (1 - p) / (precision * precision)

	fpop := float64(populationSize)
	n := int(math.Ceil(fpop * n0 / (fpop + n0 - 1)))

	if n < 1 {
		n = 1
	}
	if n > populationSize {
		n = populationSize
	}
	return n, nil
}

// ResolveSampleSize resolves the final target size for a config against an
// effective population size, before allocation. An explicit sample-size
// override always wins (clamped to the population); otherwise the method
// decides. The result is floored and clamped to [0, populationSize].
func ResolveSampleSize(cfg Config, populationSize int) (int, error) {
	if !cfg.Method.IsValid() {
		return 0, errValidation("Unsupported sampling method: %q", string(cfg.Method))
	}

	if cfg.SampleSize != nil {
		return clampSize(*cfg.SampleSize, populationSize), nil
	}

	switch cfg.Method {
	case MethodStatistical, MethodSystematic:
		n, err := CalculateSampleSize(populationSize, cfg.Confidence, cfg.TolerableErrorRate, cfg.ExpectedErrorRate)
		if err != nil {
			return 0, err
		}
		return clampSize(n, populationSize), nil

	case MethodPercentage:
		if cfg.SamplePercentage == nil {
			return 0, errValidation("Provide samplePercentage for percentage sampling")
		}
		n := int(math.Ceil(float64(populationSize) * *cfg.SamplePercentage / 100))
		return clampSize(n, populationSize), nil

	case MethodSimpleRandom:
		if cfg.SamplePercentage != nil {
			n := int(math.Ceil(float64(populationSize) * *cfg.SamplePercentage / 100))
			return clampSize(n, populationSize), nil
		}
		return 0, errValidation("Provide sampleSize or samplePercentage for simple_random")
	}

	// Unreachable: IsValid covers the method set.
	return 0, errValidation("Unsupported sampling method: %q", string(cfg.Method))
}

func clampSize(n, populationSize int) int {
	if n < 0 {
		return 0
	}
	if n > populationSize {
		return populationSize
	}
	return n
}
