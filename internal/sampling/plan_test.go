package sampling

import (
	"math"
	"strings"
	"testing"
)

func statConfig() Config {
	return Config{
		Method:             MethodStatistical,
		Confidence:         0.95,
		TolerableErrorRate: 0.05,
		ExpectedErrorRate:  0.01,
		Seed:               42,
	}
}

func TestNormalizeValue_MissingCollapses(t *testing.T) {
	values := []any{nil, "", "   ", math.NaN(), float32(math.NaN())}
	for _, v := range values {
		if got := NormalizeValue(v); got != MissingValue {
			t.Errorf("NormalizeValue(%v) = %q, want %q", v, got, MissingValue)
		}
	}
}

func TestNormalizeValue_Scalars(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"High ", "High"},
		{42, "42"},
		{int64(7), "7"},
		{1.5, "1.5"},
		{true, "true"},
	}
	for _, tc := range cases {
		if got := NormalizeValue(tc.in); got != tc.want {
			t.Errorf("NormalizeValue(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildPlan_Unstratified(t *testing.T) {
	rows := make([]Row, 100)
	for i := range rows {
		rows[i] = Row{"id": i}
	}
	cfg := statConfig()
	plan, err := BuildPlan(rows, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Allocations) != 1 {
		t.Fatalf("got %d allocations, want 1", len(plan.Allocations))
	}
	a := plan.Allocations[0]
	if a.Key != AllStrataKey {
		t.Errorf("key = %q, want %q", a.Key, AllStrataKey)
	}
	if a.PopulationCount != 100 {
		t.Errorf("population = %d, want 100", a.PopulationCount)
	}
	if a.SampleCount != 20 { // CalculateSampleSize(100, 0.95, 0.05, 0.01)
		t.Errorf("sample count = %d, want 20", a.SampleCount)
	}
	if plan.PlannedSize != 20 || plan.DesiredSize != 20 {
		t.Errorf("planned/desired = %d/%d, want 20/20", plan.PlannedSize, plan.DesiredSize)
	}
	if plan.ID == "" || plan.Signature == "" {
		t.Error("plan is missing its ID or config signature")
	}
}

func TestBuildPlan_MissingValuesShareOneStratum(t *testing.T) {
	rows := []Row{
		{"region": nil},
		{"region": ""},
		{"region": "  "},
		{"region": math.NaN()},
		{"region": "West"},
	}
	cfg := statConfig()
	cfg.StratifyFields = []string{"region"}
	cfg.SampleSize = intPtr(5)
	plan, err := BuildPlan(rows, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Allocations) != 2 {
		t.Fatalf("got %d strata, want 2 (missing-sentinel plus West)", len(plan.Allocations))
	}
	if plan.Allocations[0].Stratum["region"] != MissingValue {
		t.Errorf("first stratum = %v, want missing sentinel", plan.Allocations[0].Stratum)
	}
	if plan.Allocations[0].PopulationCount != 4 {
		t.Errorf("missing stratum population = %d, want 4", plan.Allocations[0].PopulationCount)
	}
}

func TestBuildPlan_MultiFieldKeys(t *testing.T) {
	rows := []Row{
		{"region": "East", "risk": "High"},
		{"region": "East", "risk": "Low"},
		{"region": "East", "risk": "High"},
	}
	cfg := statConfig()
	cfg.StratifyFields = []string{"region", "risk"}
	cfg.SampleSize = intPtr(3)
	plan, err := BuildPlan(rows, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Allocations) != 2 {
		t.Fatalf("got %d strata, want 2", len(plan.Allocations))
	}
	if got := plan.Allocations[0].Key; got != "region=East|risk=High" {
		t.Errorf("key = %q", got)
	}
}

func TestBuildPlan_ZeroSizeError(t *testing.T) {
	rows := []Row{{"id": 1}, {"id": 2}}
	cfg := Config{Method: MethodPercentage, SamplePercentage: floatPtr(0), Seed: 1}
	_, err := BuildPlan(rows, cfg)
	if err == nil {
		t.Fatal("expected error for resolved size 0")
	}
	if got := err.Error(); got != "Calculated sample size is 0. Adjust parameters." {
		t.Errorf("unexpected message %q", got)
	}
	if !IsValidation(err) {
		t.Errorf("error is not a ValidationError: %v", err)
	}
}

func TestBuildPlan_PopulationOverrideSizesOnly(t *testing.T) {
	rows := make([]Row, 50)
	for i := range rows {
		rows[i] = Row{"id": i}
	}
	cfg := statConfig()
	cfg.Method = MethodPercentage
	cfg.SamplePercentage = floatPtr(10)
	cfg.PopulationSize = intPtr(500)

	plan, err := BuildPlan(rows, cfg)
	if err != nil {
		t.Fatal(err)
	}
	// Target resolved against the override (10% of 500 = 50), but grouping
	// and capacity against the 50 real rows.
	if plan.DesiredSize != 50 {
		t.Errorf("desired = %d, want 50", plan.DesiredSize)
	}
	if plan.PopulationSize != 50 {
		t.Errorf("population = %d, want the 50 real rows", plan.PopulationSize)
	}
	if plan.PlannedSize != 50 {
		t.Errorf("planned = %d, want 50", plan.PlannedSize)
	}
}

func TestBuildPlan_SignatureTracksConfig(t *testing.T) {
	rows := []Row{{"id": 1}, {"id": 2}, {"id": 3}}
	cfg := statConfig()
	cfg.SampleSize = intPtr(2)
	a, err := BuildPlan(rows, cfg)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Seed = 43
	b, err := BuildPlan(rows, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if a.Signature == b.Signature {
		t.Error("different configs produced the same signature")
	}
	if len(a.Signature) != 64 || strings.ToLower(a.Signature) != a.Signature {
		t.Errorf("signature %q is not lowercase sha256 hex", a.Signature)
	}
}

func TestApplyCoverageOverrides(t *testing.T) {
	rows := []Row{}
	for i := 0; i < 1000; i++ {
		rows = append(rows, Row{"bucket": "big"})
	}
	rows = append(rows, Row{"bucket": "tiny"})

	cfg := statConfig()
	cfg.StratifyFields = []string{"bucket"}
	cfg.SampleSize = intPtr(10)
	plan, err := BuildPlan(rows, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Allocations[1].SampleCount != 0 {
		t.Fatalf("tiny stratum allocated %d, want 0 before override", plan.Allocations[1].SampleCount)
	}

	ApplyCoverageOverrides(plan)

	if got := plan.Allocations[1].SampleCount; got != 1 {
		t.Errorf("tiny stratum = %d after override, want 1", got)
	}
	if got := plan.Allocations[1].PreOverrideCount; got != 0 {
		t.Errorf("pre-override count = %d, want 0", got)
	}
	if len(plan.CoverageOverrides) != 1 {
		t.Fatalf("got %d coverage overrides, want 1", len(plan.CoverageOverrides))
	}
	ov := plan.CoverageOverrides[0]
	if ov.Justification != CoverageJustification {
		t.Errorf("justification = %q", ov.Justification)
	}
	if plan.PlannedSize != 11 {
		t.Errorf("planned size = %d, want 11", plan.PlannedSize)
	}

	// Idempotent: a second pass finds nothing to bump.
	ApplyCoverageOverrides(plan)
	if len(plan.CoverageOverrides) != 1 || plan.PlannedSize != 11 {
		t.Errorf("second pass mutated the plan: %d overrides, planned %d", len(plan.CoverageOverrides), plan.PlannedSize)
	}
}
