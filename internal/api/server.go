package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/auditsample/internal/config"
	"github.com/banshee-data/auditsample/internal/db"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	db       *db.DB
	defaults *config.Defaults
	dataDir  string
}

// NewServer builds the API server. dataDir is the only directory server-side
// population files may be loaded from; empty disables file loading.
func NewServer(database *db.DB, defaults *config.Defaults, dataDir string) *Server {
	if defaults == nil {
		defaults = config.EmptyDefaults()
	}
	return &Server{
		db:       database,
		defaults: defaults,
		dataDir:  dataDir,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400 && statusCode < 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sample/size", s.calculateSize)
	mux.HandleFunc("/api/sample/plan", s.buildPlan)
	mux.HandleFunc("/api/sample/run", s.runSample)
	mux.HandleFunc("/api/sample/runs", s.listRuns)
	mux.HandleFunc("/api/sample/runs/", s.showRun)
	mux.HandleFunc("/api/sample/chart", s.showAllocationChart)
	mux.HandleFunc("/api/config", s.showConfig)
	return mux
}
