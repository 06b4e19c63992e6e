// Package httpapi exposes a read-only chi-routed HTTP surface over a
// diagnostics.Store and the .dot/SVG debug artifacts restructure.Run
// writes out, per SPEC_FULL.md's module 15: an operator or the CLI's
// "serve" subcommand queries region status and pulls a given pass's
// rendered graph without touching the restructuring pipeline itself.
package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cfgforge/restructure/diagnostics"
)

// App holds the server's dependencies: a status store and the root
// directory under which restructure.DumpDot's per-region artifact
// directories live (see jobrunner.RunAll's WithRunID(ctx, r.Name) call).
type App struct {
	store        *diagnostics.Store
	artifactRoot string
}

// NewApp builds an App. artifactRoot may be empty, in which case the
// dot/SVG routes always 404 — useful for a diagnostics-only deployment
// that never wrote debug artifacts.
func NewApp(store *diagnostics.Store, artifactRoot string) *App {
	return &App{store: store, artifactRoot: strings.TrimSuffix(artifactRoot, "/")}
}

// Handler returns the full router: recovery/real-ip middleware plus the
// read-only /regions surface.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/regions", func(r chi.Router) {
		r.Get("/", a.handleListRegions)
		r.Get("/{name}", a.handleGetRegion)
		r.Get("/{name}/dot/{phase}", a.handleRegionArtifact)
	})

	return r
}

func (a *App) handleListRegions(w http.ResponseWriter, r *http.Request) {
	recs, err := a.store.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, recs)
}

func (a *App) handleGetRegion(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rec, err := a.store.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "region not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rec)
}

// handleRegionArtifact serves the SVG restructure.DumpDot wrote for
// {name}'s {phase} stage (e.g. "after-untangle"), named exactly as
// jobrunner's WithRunID(ctx, r.Name) + dumpStage lay it out on disk.
func (a *App) handleRegionArtifact(w http.ResponseWriter, r *http.Request) {
	if a.artifactRoot == "" {
		http.Error(w, "no artifact directory configured", http.StatusNotFound)
		return
	}
	name := chi.URLParam(r, "name")
	phase := chi.URLParam(r, "phase")

	path := filepath.Join(a.artifactRoot, filepath.Clean("/"+name), filepath.Clean("/"+phase)+".svg")
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		http.Error(w, "artifact not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
