package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/auditsample/internal/sampling"
)

// ErrNotFound is returned when a plan or run does not exist.
var ErrNotFound = errors.New("not found")

// Run is a persisted sampling execution: the result plus enough metadata
// to list and reproduce it.
type Run struct {
	ID             string    `json:"id"`
	PlanID         string    `json:"plan_id"`
	Method         string    `json:"method"`
	Seed           uint32    `json:"seed"`
	PopulationSize int       `json:"population_size"`
	SampleSize     int       `json:"sample_size"`
	CreatedAt      time.Time `json:"created_at"`

	// Result is omitted from list views to keep responses small.
	Result *sampling.Result `json:"result,omitempty"`
}

// SavePlan stores a sampling plan along with the config that produced it.
func (db *DB) SavePlan(cfg sampling.Config, plan *sampling.Plan) error {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	_, err = db.Exec(
		`INSERT INTO sampling_plans (id, signature, config_json, plan_json, population_size, planned_size)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		plan.ID, plan.Signature, string(configJSON), string(planJSON), plan.PopulationSize, plan.PlannedSize,
	)
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}
	return nil
}

// GetPlan loads a stored plan by ID.
func (db *DB) GetPlan(id string) (*sampling.Plan, error) {
	var planJSON string
	err := db.QueryRow(`SELECT plan_json FROM sampling_plans WHERE id = ?`, id).Scan(&planJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("plan %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var plan sampling.Plan
	if err := json.Unmarshal([]byte(planJSON), &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan %s: %w", id, err)
	}
	return &plan, nil
}

// SaveRun stores a completed sampling execution.
func (db *DB) SaveRun(run *Run) error {
	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = db.Exec(
		`INSERT INTO sampling_runs (id, plan_id, method, seed, population_size, sample_size, result_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.PlanID, run.Method, run.Seed, run.PopulationSize, run.SampleSize, string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// GetRun loads a stored run by ID, including the full result.
func (db *DB) GetRun(id string) (*Run, error) {
	var (
		run        Run
		resultJSON string
		createdAt  string
	)
	err := db.QueryRow(
		`SELECT id, plan_id, method, seed, population_size, sample_size, result_json, created_at
		 FROM sampling_runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.PlanID, &run.Method, &run.Seed, &run.PopulationSize, &run.SampleSize, &resultJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	run.CreatedAt = parseTimestamp(createdAt)

	var result sampling.Result
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result for run %s: %w", id, err)
	}
	run.Result = &result

	return &run, nil
}

// ListRuns returns run metadata ordered newest first. Results are not
// loaded; use GetRun for the full record.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.Query(
		`SELECT id, plan_id, method, seed, population_size, sample_size, created_at
		 FROM sampling_runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			createdAt string
		)
		if err := rows.Scan(&run.ID, &run.PlanID, &run.Method, &run.Seed, &run.PopulationSize, &run.SampleSize, &createdAt); err != nil {
			return nil, err
		}
		run.CreatedAt = parseTimestamp(createdAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

// parseTimestamp handles the formats SQLite emits for CURRENT_TIMESTAMP.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
