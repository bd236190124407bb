package sampling

// Row is a single population record. The schema is caller-defined and opaque
// to the engine beyond the configured stratification and ID fields.
type Row map[string]any

// Method selects how the sample is drawn.
type Method string

// Supported sampling methods.
const (
	MethodStatistical  Method = "statistical"
	MethodSimpleRandom Method = "simple_random"
	MethodSystematic   Method = "systematic"
	MethodPercentage   Method = "percentage"
)

// ValidMethods lists all supported method values.
var ValidMethods = []Method{MethodStatistical, MethodSimpleRandom, MethodSystematic, MethodPercentage}

// IsValid checks if the method is one of the supported values.
func (m Method) IsValid() bool {
	for _, v := range ValidMethods {
		if m == v {
			return true
		}
	}
	return false
}

// AllStrataKey is the allocation key used when no stratification fields are
// configured and the whole population forms a single stratum.
const AllStrataKey = "__all__"

// MissingValue is the sentinel a nil, NaN, or blank stratification value
// normalizes to, so all null-like values land in the same stratum regardless
// of how the source data spelled them.
const MissingValue = "(missing)"

// CoverageJustification is the fixed audit justification recorded for every
// coverage override. The wording is part of the audit record; do not edit it.
const CoverageJustification = "Override made to allow for sampling coverage across all observed strata in the population."

// Config describes one sampling request. It is supplied by the caller per
// request and never mutated by the engine. Optional parameters follow the
// pointer-field convention: nil means "not provided".
type Config struct {
	Method             Method  `json:"method"`
	Confidence         float64 `json:"confidence"`           // in (0,1)
	TolerableErrorRate float64 `json:"tolerable_error_rate"` // in (0,1); must exceed ExpectedErrorRate
	ExpectedErrorRate  float64 `json:"expected_error_rate"`  // in [0,1)

	SampleSize       *int     `json:"sample_size,omitempty"`       // explicit size override; always wins
	SamplePercentage *float64 `json:"sample_percentage,omitempty"` // percent of population, 0–100
	SystematicStep   *int     `json:"systematic_step,omitempty"`   // explicit systematic interval
	RandomStart      bool     `json:"random_start"`                // randomize the systematic offset

	Seed           uint32   `json:"seed"`
	StratifyFields []string `json:"stratify_fields,omitempty"`
	IDField        string   `json:"id_field,omitempty"`

	OverrideJustification string `json:"override_justification,omitempty"`
	PopulationSize        *int   `json:"population_size,omitempty"` // substitutes for the true row count when sizing
}

// Stratum maps a stratification field name to its normalized value.
type Stratum map[string]string

// StratumAllocation is the planned and (after sampling) realized allocation
// for one stratum.
type StratumAllocation struct {
	Key              string  `json:"key"`
	Stratum          Stratum `json:"stratum"`
	PopulationCount  int     `json:"population_count"`
	SampleCount      int     `json:"sample_count"`
	PreOverrideCount int     `json:"pre_override_count"`

	// Filled in by SampleData once the draw is realized.
	RealizedCount     int     `json:"realized_count"`
	ShareOfPopulation float64 `json:"share_of_population"`
	ShareOfSample     float64 `json:"share_of_sample"`
}

// CoverageOverride records a stratum forced from zero to one selections.
// It is an append-only audit fact, never mutated after creation.
type CoverageOverride struct {
	Key           string  `json:"key"`
	Stratum       Stratum `json:"stratum"`
	Justification string  `json:"justification"`
}

// Plan is the full sampling plan for one request: per-stratum allocations
// plus whole-population totals, before any rows are drawn.
type Plan struct {
	ID             string              `json:"id"`
	DesiredSize    int                 `json:"desired_size"`
	PlannedSize    int                 `json:"planned_size"`
	StratifyFields []string            `json:"stratify_fields,omitempty"`
	PopulationSize int                 `json:"population_size"`
	Signature      string              `json:"signature,omitempty"` // SHA-256 of the config JSON
	Allocations    []StratumAllocation `json:"allocations"`

	CoverageOverrides []CoverageOverride `json:"coverage_overrides,omitempty"`
}

// Result is the externally visible output of a sampling execution. It is
// immutable once returned.
type Result struct {
	Sample  []Row   `json:"sample"`
	Summary Summary `json:"summary"`
	Plan    *Plan   `json:"plan"`
}

// StratumDistribution is the audit-facing view of one stratum: population
// distribution plus the realized-vs-planned delta.
type StratumDistribution struct {
	Key                  string  `json:"key"`
	Stratum              Stratum `json:"stratum"`
	PopulationCount      int     `json:"population_count"`
	PlannedCount         int     `json:"planned_count"`
	RealizedCount        int     `json:"realized_count"`
	AllocationDifference int     `json:"allocation_difference"`
	ShareOfPopulation    float64 `json:"share_of_population"`
	ShareOfSample        float64 `json:"share_of_sample"`
}

// ParameterOverride records one parameter override: whether it was applied
// and the original vs. applied values.
type ParameterOverride struct {
	Applied  bool    `json:"applied"`
	Original float64 `json:"original"`
	Value    float64 `json:"value"`
}

// AllocationAdjustment records a nonzero realized-vs-planned delta for one
// stratum.
type AllocationAdjustment struct {
	Key        string `json:"key"`
	Planned    int    `json:"planned"`
	Realized   int    `json:"realized"`
	Difference int    `json:"difference"`
}

// OverridesSection consolidates every override disclosure for the audit
// record. Each parameter override is flagged independently.
type OverridesSection struct {
	HasOverrides bool `json:"has_overrides"`

	PopulationSize   ParameterOverride `json:"population_size"`
	SampleSize       ParameterOverride `json:"sample_size"`
	SamplePercentage ParameterOverride `json:"sample_percentage"`
	SystematicStep   ParameterOverride `json:"systematic_step"`

	Coverage              []CoverageOverride     `json:"coverage,omitempty"`
	AllocationAdjustments []AllocationAdjustment `json:"allocation_adjustments,omitempty"`

	Justification string `json:"justification,omitempty"`
}

// Summary is the denormalized, audit-oriented view of a completed execution.
// It feeds the narrative layer and the compliance record; everything a
// reviewer needs to reproduce or challenge the sample is here.
type Summary struct {
	Method         Method   `json:"method"`
	Seed           uint32   `json:"seed"`
	Confidence     float64  `json:"confidence"`
	TolerableError float64  `json:"tolerable_error_rate"`
	ExpectedError  float64  `json:"expected_error_rate"`
	ZScore         float64  `json:"z_score,omitempty"`
	StratifyFields []string `json:"stratify_fields,omitempty"`

	PopulationSize int `json:"population_size"`
	DesiredSize    int `json:"desired_size"`
	PlannedSize    int `json:"planned_size"`
	SampledSize    int `json:"sampled_size"`

	Distribution []StratumDistribution `json:"distribution"`

	// Descriptive statistics of the per-stratum population shares, for the
	// narrative layer's skew commentary.
	ShareMean   float64 `json:"share_mean"`
	ShareStdDev float64 `json:"share_std_dev"`

	SelectedIDs []string `json:"selected_ids,omitempty"` // ordered, only when an ID field is configured

	Overrides OverridesSection `json:"overrides"`

	SourceFile  string `json:"source_file,omitempty"`
	SourceSheet string `json:"source_sheet,omitempty"`
}
