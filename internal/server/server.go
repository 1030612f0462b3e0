// Package server exposes the planning pipeline over HTTP for interactive
// design sessions.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/estateforge/estateplan/pkg/config"
	"github.com/estateforge/estateplan/pkg/geoio"
	"github.com/estateforge/estateplan/pkg/pipeline"
	"github.com/estateforge/estateplan/pkg/validation"
)

// maxBodyBytes bounds uploaded parcel geometry.
const maxBodyBytes = 16 << 20

// Server is the local development server for interactive planning.
type Server struct {
	projectPath string
	port        int
}

// New creates a server for the given project directory. The directory
// supplies the default configuration; requests may override it inline.
func New(projectPath string, port int) *Server {
	return &Server{
		projectPath: projectPath,
		port:        port,
	}
}

// Start launches the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/plan", s.handlePlan)
	mux.HandleFunc("POST /api/validate", s.handleValidate)
	mux.HandleFunc("GET /api/config", s.handleConfig)
	mux.HandleFunc("GET /api/healthz", s.handleHealthz)
	mux.HandleFunc("GET /", s.handleIndex)

	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("estateplan server starting", "addr", "http://localhost"+addr, "project", s.projectPath)

	return http.ListenAndServe(addr, mux)
}

// planRequest is the POST /api/plan body: a GeoJSON feature collection of
// parcels plus an optional inline config override.
type planRequest struct {
	Parcels json.RawMessage `json:"parcels"`
	Config  *config.Config  `json:"config,omitempty"`
}

func (s *Server) loadConfig() (*config.Config, error) {
	return config.Load(s.projectPath)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		httpError(w, http.StatusBadRequest, "reading body: %v", err)
		return
	}

	var req planRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpError(w, http.StatusBadRequest, "parsing request: %v", err)
		return
	}

	cfg := req.Config
	if cfg == nil {
		if cfg, err = s.loadConfig(); err != nil {
			httpError(w, http.StatusInternalServerError, "loading config: %v", err)
			return
		}
	}

	parcels, dropped, err := geoio.ParseParcels(req.Parcels)
	if err != nil {
		httpError(w, http.StatusBadRequest, "parsing parcels: %v", err)
		return
	}
	if dropped > 0 {
		slog.Warn("interior rings ignored in uploaded parcels", "count", dropped)
	}

	res, err := pipeline.Run(parcels, cfg)
	if err != nil {
		status := http.StatusUnprocessableEntity
		var cfgErr *pipeline.ConfigError
		if errors.As(err, &cfgErr) {
			status = http.StatusBadRequest
		}
		httpError(w, status, "%v", err)
		return
	}

	writeJSON(w, map[string]any{
		"run_id":     res.RunID,
		"summary":    res.Summary,
		"cost":       res.Cost,
		"validation": res.Report,
		"features":   geoio.ExportResult(res),
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		httpError(w, http.StatusBadRequest, "reading body: %v", err)
		return
	}
	cfg := &config.Config{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, cfg); err != nil {
			httpError(w, http.StatusBadRequest, "parsing config: %v", err)
			return
		}
	} else if cfg, err = s.loadConfig(); err != nil {
		httpError(w, http.StatusInternalServerError, "loading config: %v", err)
		return
	}
	writeJSON(w, validation.ValidateConfig(cfg))
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	cfg, err := s.loadConfig()
	if err != nil {
		httpError(w, http.StatusInternalServerError, "loading config: %v", err)
		return
	}
	writeJSON(w, cfg)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>EstatePlan</title></head>
<body style="margin:0;background:#111;color:#fff;font-family:system-ui;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1>EstatePlan</h1>
<p>POST a GeoJSON parcel set to <code>/api/plan</code> to generate a layout.</p>
</div>
</body></html>`)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "err", err)
	}
}

func httpError(w http.ResponseWriter, status int, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": fmt.Sprintf(format, args...),
	})
}
