package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/banshee-data/auditsample/internal/db"
	"github.com/banshee-data/auditsample/internal/httputil"
	"github.com/banshee-data/auditsample/internal/ingest"
	"github.com/banshee-data/auditsample/internal/sampling"
)

// sizeRequest asks for a statistical sample size without drawing anything.
type sizeRequest struct {
	PopulationSize     int      `json:"population_size"`
	Confidence         *float64 `json:"confidence,omitempty"`
	TolerableErrorRate *float64 `json:"tolerable_error_rate,omitempty"`
	ExpectedErrorRate  *float64 `json:"expected_error_rate,omitempty"`
}

type sizeResponse struct {
	PopulationSize     int     `json:"population_size"`
	Confidence         float64 `json:"confidence"`
	TolerableErrorRate float64 `json:"tolerable_error_rate"`
	ExpectedErrorRate  float64 `json:"expected_error_rate"`
	ZScore             float64 `json:"z_score"`
	SampleSize         int     `json:"sample_size"`
}

// sampleRequest carries one plan or run request. Rows may be supplied inline
// or referenced by file name relative to the server's data directory.
type sampleRequest struct {
	Rows           []sampling.Row  `json:"rows,omitempty"`
	SourceFile     string          `json:"source_file,omitempty"`
	EnsureCoverage bool            `json:"ensure_coverage,omitempty"`
	Config         sampling.Config `json:"config"`
}

func (s *Server) calculateSize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req sizeRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	confidence := s.defaults.GetConfidence()
	if req.Confidence != nil {
		confidence = *req.Confidence
	}
	tolerable := s.defaults.GetTolerableErrorRate()
	if req.TolerableErrorRate != nil {
		tolerable = *req.TolerableErrorRate
	}
	expected := s.defaults.GetExpectedErrorRate()
	if req.ExpectedErrorRate != nil {
		expected = *req.ExpectedErrorRate
	}

	size, err := sampling.CalculateSampleSize(req.PopulationSize, confidence, tolerable, expected)
	if err != nil {
		s.writeSamplingError(w, err)
		return
	}
	z, err := sampling.ZScore(confidence)
	if err != nil {
		s.writeSamplingError(w, err)
		return
	}

	httputil.WriteJSONOK(w, sizeResponse{
		PopulationSize:     req.PopulationSize,
		Confidence:         confidence,
		TolerableErrorRate: tolerable,
		ExpectedErrorRate:  expected,
		ZScore:             z,
		SampleSize:         size,
	})
}

func (s *Server) buildPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	req, rows, ok := s.decodeSampleRequest(w, r)
	if !ok {
		return
	}

	plan, err := sampling.BuildPlan(rows, req.Config)
	if err != nil {
		s.writeSamplingError(w, err)
		return
	}
	if req.EnsureCoverage {
		sampling.ApplyCoverageOverrides(plan)
	}

	if s.db != nil {
		if err := s.db.SavePlan(req.Config, plan); err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to save plan: %v", err))
			return
		}
	}

	httputil.WriteJSONOK(w, plan)
}

func (s *Server) runSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	req, rows, ok := s.decodeSampleRequest(w, r)
	if !ok {
		return
	}

	plan, err := sampling.BuildPlan(rows, req.Config)
	if err != nil {
		s.writeSamplingError(w, err)
		return
	}
	if req.EnsureCoverage {
		sampling.ApplyCoverageOverrides(plan)
	}

	result, err := sampling.SampleData(rows, req.Config, plan)
	if err != nil {
		s.writeSamplingError(w, err)
		return
	}
	if req.SourceFile != "" {
		result.Summary.SourceFile = req.SourceFile
	}

	run := &db.Run{
		ID:             uuid.New().String(),
		PlanID:         plan.ID,
		Method:         string(req.Config.Method),
		Seed:           req.Config.Seed,
		PopulationSize: plan.PopulationSize,
		SampleSize:     len(result.Sample),
		Result:         result,
	}

	if s.db != nil {
		if err := s.db.SavePlan(req.Config, plan); err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to save plan: %v", err))
			return
		}
		if err := s.db.SaveRun(run); err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to save run: %v", err))
			return
		}
	}

	httputil.WriteJSONOK(w, run)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.db == nil {
		httputil.InternalServerError(w, "no database configured")
		return
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	runs, err := s.db.ListRuns(limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list runs: %v", err))
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	httputil.WriteJSONOK(w, runs)
}

func (s *Server) showRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.db == nil {
		httputil.InternalServerError(w, "no database configured")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/sample/runs/")
	if id == "" || strings.Contains(id, "/") {
		httputil.BadRequest(w, "Invalid run ID")
		return
	}

	run, err := s.db.GetRun(id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			httputil.NotFound(w, fmt.Sprintf("run %s not found", id))
			return
		}
		httputil.InternalServerError(w, fmt.Sprintf("failed to load run: %v", err))
		return
	}
	httputil.WriteJSONOK(w, run)
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"method":               s.defaults.GetMethod(),
		"confidence":           s.defaults.GetConfidence(),
		"tolerable_error_rate": s.defaults.GetTolerableErrorRate(),
		"expected_error_rate":  s.defaults.GetExpectedErrorRate(),
		"seed":                 s.defaults.GetSeed(),
		"id_field":             s.defaults.GetIDField(),
		"random_start":         s.defaults.GetRandomStart(),
	})
}

// decodeSampleRequest decodes the body, loads rows, and layers server
// defaults under any config fields the request left zero.
func (s *Server) decodeSampleRequest(w http.ResponseWriter, r *http.Request) (*sampleRequest, []sampling.Row, bool) {
	var req sampleRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return nil, nil, false
	}

	s.applyDefaults(&req.Config)

	rows := req.Rows
	if len(rows) == 0 {
		if req.SourceFile == "" {
			httputil.BadRequest(w, "Provide rows or source_file")
			return nil, nil, false
		}
		if s.dataDir == "" {
			httputil.BadRequest(w, "Server has no data directory configured")
			return nil, nil, false
		}
		loaded, err := ingest.LoadFile(filepath.Join(s.dataDir, req.SourceFile), s.dataDir, s.defaults.GetMaxUploadBytes())
		if err != nil {
			httputil.BadRequest(w, fmt.Sprintf("failed to load %s: %v", req.SourceFile, err))
			return nil, nil, false
		}
		rows = loaded
	}

	return &req, rows, true
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.defaults.GetMaxUploadBytes())
	return json.NewDecoder(r.Body).Decode(v)
}

// applyDefaults fills unset request config fields from the server defaults.
func (s *Server) applyDefaults(cfg *sampling.Config) {
	if cfg.Method == "" {
		cfg.Method = s.defaults.GetMethod()
	}
	if cfg.Confidence == 0 {
		cfg.Confidence = s.defaults.GetConfidence()
	}
	if cfg.TolerableErrorRate == 0 {
		cfg.TolerableErrorRate = s.defaults.GetTolerableErrorRate()
	}
	if cfg.ExpectedErrorRate == 0 {
		cfg.ExpectedErrorRate = s.defaults.GetExpectedErrorRate()
	}
	if cfg.Seed == 0 {
		cfg.Seed = s.defaults.GetSeed()
	}
	if cfg.IDField == "" {
		cfg.IDField = s.defaults.GetIDField()
	}
}

func (s *Server) writeSamplingError(w http.ResponseWriter, err error) {
	if sampling.IsValidation(err) {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.InternalServerError(w, err.Error())
}
