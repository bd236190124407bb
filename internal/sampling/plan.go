package sampling

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NormalizeValue collapses a raw field value to the string used for stratum
// grouping. Nil, NaN, and blank values all normalize to MissingValue so that
// grouping is stable regardless of how the source spelled "no value".
func NormalizeValue(v any) string {
	switch x := v.(type) {
	case nil:
		return MissingValue
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return MissingValue
		}
		return s
	case float64:
		if math.IsNaN(x) {
			return MissingValue
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		if math.IsNaN(float64(x)) {
			return MissingValue
		}
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// stratumGroup collects the row indices belonging to one stratum, in the
// order the rows appear in the population.
type stratumGroup struct {
	key     string
	stratum Stratum
	indices []int
}

// groupRows partitions rows by the normalized tuple of stratification field
// values. Groups are returned in first-seen order, which downstream phases
// rely on for deterministic tie-breaking. With no fields configured the whole
// population forms a single AllStrataKey group.
func groupRows(rows []Row, fields []string) []stratumGroup {
	if len(fields) == 0 {
		all := stratumGroup{key: AllStrataKey, stratum: Stratum{}}
		all.indices = make([]int, len(rows))
		for i := range rows {
			all.indices[i] = i
		}
		return []stratumGroup{all}
	}

	byKey := make(map[string]int)
	var groups []stratumGroup
	var sb strings.Builder
	for i, row := range rows {
		sb.Reset()
		stratum := make(Stratum, len(fields))
		for fi, f := range fields {
			val := NormalizeValue(row[f])
			stratum[f] = val
			if fi > 0 {
				sb.WriteByte('|')
			}
			sb.WriteString(f)
			sb.WriteByte('=')
			sb.WriteString(val)
		}
		key := sb.String()
		gi, ok := byKey[key]
		if !ok {
			gi = len(groups)
			byKey[key] = gi
			groups = append(groups, stratumGroup{key: key, stratum: stratum})
		}
		groups[gi].indices = append(groups[gi].indices, i)
	}
	return groups
}

// ConfigSignature returns the SHA-256 hex digest of the config's JSON
// encoding. Persisted plans carry it so a stored plan can be matched back to
// the exact configuration that produced it.
func ConfigSignature(cfg Config) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		// Config contains only marshalable fields; this cannot happen.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// BuildPlan computes the sampling plan for rows under cfg: target size
// resolution followed by proportional allocation across the observed strata.
// No rows are drawn yet. A population-size override substitutes for the true
// row count when resolving the target, but grouping always uses the rows
// actually supplied.
func BuildPlan(rows []Row, cfg Config) (*Plan, error) {
	effectivePop := len(rows)
	if cfg.PopulationSize != nil && *cfg.PopulationSize > 0 {
		effectivePop = *cfg.PopulationSize
	}

	target, err := ResolveSampleSize(cfg, effectivePop)
	if err != nil {
		return nil, err
	}
	if target <= 0 {
		return nil, errValidation("Calculated sample size is 0. Adjust parameters.")
	}

	groups := groupRows(rows, cfg.StratifyFields)
	counts := make([]StratumCount, len(groups))
	for i, g := range groups {
		counts[i] = StratumCount{Key: g.key, Count: len(g.indices)}
	}
	alloc := AllocateProportional(counts, target)

	plan := &Plan{
		ID:             uuid.New().String(),
		DesiredSize:    target,
		StratifyFields: cfg.StratifyFields,
		PopulationSize: len(rows),
		Signature:      ConfigSignature(cfg),
		Allocations:    make([]StratumAllocation, len(groups)),
	}
	planned := 0
	for i, g := range groups {
		plan.Allocations[i] = StratumAllocation{
			Key:              g.key,
			Stratum:          g.stratum,
			PopulationCount:  len(g.indices),
			SampleCount:      alloc[i],
			PreOverrideCount: alloc[i],
		}
		planned += alloc[i]
	}
	plan.PlannedSize = planned
	return plan, nil
}

// ApplyCoverageOverrides forces at least one selection from every non-empty
// stratum that was allocated zero, recording a CoverageOverride per bumped
// stratum and recomputing the planned total. The pass is idempotent: strata
// already allocated are untouched, and a second invocation finds nothing to
// bump. Callers needing strict proportionality skip this pass.
func ApplyCoverageOverrides(plan *Plan) {
	total := 0
	for i := range plan.Allocations {
		a := &plan.Allocations[i]
		if a.SampleCount == 0 && a.PopulationCount > 0 {
			a.SampleCount = 1
			plan.CoverageOverrides = append(plan.CoverageOverrides, CoverageOverride{
				Key:           a.Key,
				Stratum:       a.Stratum,
				Justification: CoverageJustification,
			})
		}
		total += a.SampleCount
	}
	plan.PlannedSize = total
}
