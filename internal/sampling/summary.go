package sampling

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// BuildSummary assembles the audit-facing summary for a completed execution.
// It is a pure function of the population, the drawn sample, the config, and
// the realized plan; callers may attach provenance (SourceFile, SourceSheet)
// to the returned value before persisting it.
func BuildSummary(rows []Row, sample []Row, cfg Config, plan *Plan) Summary {
	s := Summary{
		Method:         cfg.Method,
		Seed:           cfg.Seed,
		Confidence:     cfg.Confidence,
		TolerableError: cfg.TolerableErrorRate,
		ExpectedError:  cfg.ExpectedErrorRate,
		StratifyFields: cfg.StratifyFields,
		PopulationSize: plan.PopulationSize,
		DesiredSize:    plan.DesiredSize,
		PlannedSize:    plan.PlannedSize,
		SampledSize:    len(sample),
	}
	if cfg.Method == MethodStatistical || cfg.Method == MethodSystematic {
		if z, err := ZScore(cfg.Confidence); err == nil {
			s.ZScore = z
		}
	}

	shares := make([]float64, 0, len(plan.Allocations))
	for _, a := range plan.Allocations {
		s.Distribution = append(s.Distribution, StratumDistribution{
			Key:                  a.Key,
			Stratum:              a.Stratum,
			PopulationCount:      a.PopulationCount,
			PlannedCount:         a.SampleCount,
			RealizedCount:        a.RealizedCount,
			AllocationDifference: a.RealizedCount - a.SampleCount,
			ShareOfPopulation:    a.ShareOfPopulation,
			ShareOfSample:        a.ShareOfSample,
		})
		shares = append(shares, a.ShareOfPopulation)
	}
	if len(shares) > 0 {
		s.ShareMean = stat.Mean(shares, nil)
	}
	if len(shares) > 1 {
		if sd := stat.StdDev(shares, nil); !math.IsNaN(sd) {
			s.ShareStdDev = sd
		}
	}

	if cfg.IDField != "" {
		s.SelectedIDs = make([]string, len(sample))
		for i, row := range sample {
			s.SelectedIDs[i] = NormalizeValue(row[cfg.IDField])
		}
	}

	s.Overrides = buildOverridesSection(rows, cfg, plan)
	return s
}

// buildOverridesSection consolidates all override disclosures.
//
// The per-method exemptions are deliberate and must not be "simplified" into
// a general rule: an input a method requires is not an override and must not
// trigger a justification prompt. simple_random requires either size or
// percentage, so neither ever flags; percentage requires its percentage
// (exempt) but an explicit size on top of it still flags.
func buildOverridesSection(rows []Row, cfg Config, plan *Plan) OverridesSection {
	o := OverridesSection{
		Coverage:      plan.CoverageOverrides,
		Justification: cfg.OverrideJustification,
	}

	if cfg.PopulationSize != nil {
		o.PopulationSize = ParameterOverride{
			Applied:  true,
			Original: float64(len(rows)),
			Value:    float64(*cfg.PopulationSize),
		}
	}

	if cfg.SampleSize != nil && cfg.Method != MethodSimpleRandom {
		o.SampleSize = ParameterOverride{
			Applied:  true,
			Original: float64(unoverriddenSize(cfg, plan)),
			Value:    float64(*cfg.SampleSize),
		}
	}

	if cfg.SamplePercentage != nil && cfg.Method != MethodPercentage && cfg.Method != MethodSimpleRandom {
		o.SamplePercentage = ParameterOverride{
			Applied: true,
			Value:   *cfg.SamplePercentage,
		}
	}

	if cfg.SystematicStep != nil && cfg.Method == MethodSystematic {
		o.SystematicStep = ParameterOverride{
			Applied:  true,
			Original: computedInterval(plan.PopulationSize, plan.DesiredSize),
			Value:    float64(*cfg.SystematicStep),
		}
	}

	for _, a := range plan.Allocations {
		if d := a.RealizedCount - a.SampleCount; d != 0 {
			o.AllocationAdjustments = append(o.AllocationAdjustments, AllocationAdjustment{
				Key:        a.Key,
				Planned:    a.SampleCount,
				Realized:   a.RealizedCount,
				Difference: d,
			})
		}
	}

	o.HasOverrides = o.PopulationSize.Applied ||
		o.SampleSize.Applied ||
		o.SamplePercentage.Applied ||
		o.SystematicStep.Applied ||
		len(o.Coverage) > 0 ||
		len(o.AllocationAdjustments) > 0
	return o
}

// unoverriddenSize computes the size the config's method would have produced
// without the explicit override, for the original-vs-applied disclosure.
// Zero when the method cannot resolve without the override.
func unoverriddenSize(cfg Config, plan *Plan) int {
	base := cfg
	base.SampleSize = nil
	n, err := ResolveSampleSize(base, plan.PopulationSize)
	if err != nil {
		return 0
	}
	return n
}

// computedInterval is the systematic interval the engine would use absent an
// explicit step.
func computedInterval(populationSize, desiredSize int) float64 {
	if desiredSize <= 0 {
		return 0
	}
	return math.Ceil(float64(populationSize) / float64(desiredSize))
}
