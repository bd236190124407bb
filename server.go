package main

import (
	"io"
	"net/http"

	"github.com/banshee-data/auditsample/internal/api"
	"github.com/banshee-data/auditsample/internal/config"
	"github.com/banshee-data/auditsample/internal/db"
)

// buildMux assembles the full HTTP surface: the sampling API, the database
// admin/debug routes, and a trivial home page.
func buildMux(database *db.DB, defaults *config.Defaults, dataDir string) http.Handler {
	mux := http.NewServeMux()

	// mount the admin debugging routes (tailsql console and backup download)
	database.AttachAdminRoutes(mux)

	// mount the API handlers; the api mux registers its own /api/ prefix
	apiMux := api.NewServer(database, defaults, dataDir).ServeMux()
	mux.Handle("/api/", apiMux)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "auditsample: statistical sampling engine\n")
	})

	return api.LoggingMiddleware(mux)
}
