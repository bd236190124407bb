package sampling

// SampleData applies a plan to the population rows and returns the drawn
// sample together with the realized plan and the audit summary. When plan is
// nil a fresh one is built from cfg.
//
// A new generator is seeded from cfg.Seed at the start of every execution —
// generator state is never reused across calls, so re-running with the same
// rows, config, and seed reproduces the selection exactly.
func SampleData(rows []Row, cfg Config, plan *Plan) (*Result, error) {
	if !cfg.Method.IsValid() {
		return nil, errValidation("Unsupported sampling method: %q", string(cfg.Method))
	}
	if plan == nil {
		p, err := BuildPlan(rows, cfg)
		if err != nil {
			return nil, err
		}
		plan = p
	}

	rng := NewMulberry32(cfg.Seed)
	groups := groupRows(rows, cfg.StratifyFields)
	byKey := make(map[string][]int, len(groups))
	for _, g := range groups {
		byKey[g.key] = g.indices
	}

	step := 0
	if cfg.SystematicStep != nil {
		step = *cfg.SystematicStep
	}

	sample := make([]Row, 0, plan.PlannedSize)
	for i := range plan.Allocations {
		a := &plan.Allocations[i]
		indices := byKey[a.Key]
		var picks []int
		if cfg.Method == MethodSystematic {
			picks = SystematicIndices(rng, len(indices), a.SampleCount, cfg.RandomStart, step)
		} else {
			picks = SimpleRandomIndices(rng, len(indices), a.SampleCount)
		}
		for _, p := range picks {
			sample = append(sample, rows[indices[p]])
		}
		a.RealizedCount = len(picks)
	}

	// Realized shares. ShareOfSample is denominated over the actual drawn
	// total, not the nominal target: capping can leave the draw short.
	drawn := len(sample)
	for i := range plan.Allocations {
		a := &plan.Allocations[i]
		if plan.PopulationSize > 0 {
			a.ShareOfPopulation = float64(a.PopulationCount) / float64(plan.PopulationSize)
		}
		if drawn > 0 {
			a.ShareOfSample = float64(a.RealizedCount) / float64(drawn)
		}
	}

	summary := BuildSummary(rows, sample, cfg, plan)
	return &Result{Sample: sample, Summary: summary, Plan: plan}, nil
}
