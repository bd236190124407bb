// Package sampling implements the statistical sampling engine used to draw
// audit-defensible samples from a population of records.
//
// The engine is pure: every operation is a synchronous function over in-memory
// inputs. The only mutable state is the seeded generator constructed for a
// single sampling call, so concurrent calls with independent configs never
// interfere. For a fixed (rows, config, seed) triple, repeated executions
// produce identical selections and summaries on any machine — a compliance
// sample must be reproducible from its recorded configuration alone, without
// storing the sample itself.
//
// Callers own everything around the engine: ingestion of the population,
// persistence of plans and results, and any narrative rendering of the
// summary.
package sampling
