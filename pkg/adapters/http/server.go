// Package http exposes the engine over a REST API.
package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	"github.com/verdancy/bramble"
	"github.com/verdancy/bramble/pkg/lsystem"
	"github.com/verdancy/bramble/pkg/preset"
	"github.com/verdancy/bramble/pkg/turtle"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Engine defines the interface for the rendering core.
type Engine interface {
	Expand(ctx context.Context, req bramble.ExpandRequest) (*lsystem.Expansion, error)
	Render(ctx context.Context, req bramble.RenderRequest) (*bramble.Result, error)
	RenderPreset(ctx context.Context, name string, overrides map[string]any) (*bramble.Result, error)
	Presets(ctx context.Context) ([]string, error)
	Preset(ctx context.Context, name string) (*preset.Preset, error)
}

var _ Engine = (*bramble.Engine)(nil)

// Server holds the dependencies shared by all handlers.
type Server struct {
	Engine  Engine
	metrics http.Handler
}

// Option configures the handler returned by NewHandler.
type Option func(*Server)

// WithMetricsHandler mounts the given handler at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{Engine: engine}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/expand", server.Expand)
		r.Post("/render", server.Render)
		r.Get("/presets", server.ListPresets)
		r.Get("/presets/{name}", server.GetPreset)
		r.Post("/presets/{name}/render", server.RenderPreset)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Bramble API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

var (
	specOnce sync.Once
	specDoc  *openapi3.T
	specErr  error
)

// Spec parses the embedded OpenAPI document.
func Spec() (*openapi3.T, error) {
	specOnce.Do(func() {
		loader := openapi3.NewLoader()
		specDoc, specErr = loader.LoadFromData(openapiSpec)
	})
	return specDoc, specErr
}

// RenderRequest is the JSON body of the render endpoint. Turtle parameters
// sit at the top level, mirroring preset files.
type RenderRequest struct {
	Rules       string  `json:"rules"`
	Depth       int     `json:"depth"`
	Budget      int     `json:"budget"`
	Angle       float64 `json:"angle"`
	Step        float64 `json:"step"`
	AngleDelta  float64 `json:"angle_delta"`
	StepDelta   float64 `json:"step_delta"`
	Roughness   int     `json:"roughness"`
	MaxSegments int     `json:"max_segments"`
}

// RenderResponse carries the traced path as four parallel coordinate
// arrays, one entry per segment, in emission order.
type RenderResponse struct {
	FromX     []float64 `json:"from_x"`
	FromY     []float64 `json:"from_y"`
	ToX       []float64 `json:"to_x"`
	ToY       []float64 `json:"to_y"`
	Count     int       `json:"count"`
	Steps     int       `json:"steps"`
	DrawCount int       `json:"draw_count"`
	Truncated bool      `json:"truncated"`
	Dropped   int       `json:"dropped"`
	Preset    string    `json:"preset,omitempty"`
	CacheHit  bool      `json:"cache_hit"`
	ElapsedMs float64   `json:"elapsed_ms"`
}

// Expand handles the POST /v1/expand request.
func (s *Server) Expand(w http.ResponseWriter, r *http.Request) {
	var body bramble.ExpandRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		slog.Warn("Expand: invalid request body", "error", err)
		return
	}

	exp, err := s.Engine.Expand(r.Context(), body)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		slog.Warn("Expand failed", "error", err)
		return
	}

	writeJSON(w, exp)
}

// Render handles the POST /v1/render request.
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	var body RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		slog.Warn("Render: invalid request body", "error", err)
		return
	}

	res, err := s.Engine.Render(r.Context(), bramble.RenderRequest{
		Rules:  body.Rules,
		Depth:  body.Depth,
		Budget: body.Budget,
		Params: turtle.Params{
			Angle:       body.Angle,
			Step:        body.Step,
			AngleDelta:  body.AngleDelta,
			StepDelta:   body.StepDelta,
			Roughness:   body.Roughness,
			MaxSegments: body.MaxSegments,
		},
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		slog.Warn("Render failed", "error", err)
		return
	}

	writeJSON(w, mapResult(res))
}

// ListPresets handles the GET /v1/presets request.
func (s *Server) ListPresets(w http.ResponseWriter, r *http.Request) {
	names, err := s.Engine.Presets(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		slog.Error("ListPresets failed", "error", err)
		return
	}
	if names == nil {
		names = []string{}
	}

	writeJSON(w, map[string][]string{"presets": names})
}

// GetPreset handles the GET /v1/presets/{name} request.
func (s *Server) GetPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	p, err := s.Engine.Preset(r.Context(), name)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		slog.Warn("GetPreset failed", "error", err, "preset", name)
		return
	}

	writeJSON(w, p)
}

// RenderPreset handles the POST /v1/presets/{name}/render request. The
// body, when present, is a map of preset field overrides.
func (s *Server) RenderPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var overrides map[string]any
	if err := json.NewDecoder(r.Body).Decode(&overrides); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		slog.Warn("RenderPreset: invalid request body", "error", err, "preset", name)
		return
	}

	res, err := s.Engine.RenderPreset(r.Context(), name, overrides)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		slog.Warn("RenderPreset failed", "error", err, "preset", name)
		return
	}

	writeJSON(w, mapResult(res))
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := Spec(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	writeJSON(w, map[string]string{
		"app":         "bramble-http",
		"version":     strings.TrimSpace(bramble.Version),
		"api_version": apiVersion,
	})
}

func init() {
	// Configure default slog to output JSON to stderr
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)
}

// -- Helpers --

func mapResult(res *bramble.Result) RenderResponse {
	fromX, fromY, toX, toY := res.Path.Arrays()
	return RenderResponse{
		FromX:     fromX,
		FromY:     fromY,
		ToX:       toX,
		ToY:       toY,
		Count:     res.Path.Len(),
		Steps:     res.Path.Steps,
		DrawCount: res.Expansion.DrawCount,
		Truncated: res.Expansion.Truncated,
		Dropped:   res.Expansion.Dropped,
		Preset:    res.Preset,
		CacheHit:  res.CacheHit,
		ElapsedMs: float64(res.Elapsed.Microseconds()) / 1000.0,
	}
}

// statusFor maps domain errors onto HTTP status codes. Anything
// unrecognized is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, preset.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, turtle.ErrStackUnderflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, preset.ErrInvalid),
		errors.Is(err, bramble.ErrLimitExceeded),
		errors.Is(err, lsystem.ErrNoRules),
		errors.Is(err, lsystem.ErrMalformedRule):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
