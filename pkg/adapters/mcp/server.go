// Package mcp exposes the engine as an MCP server.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/verdancy/bramble"
	"github.com/verdancy/bramble/pkg/lsystem"
	"github.com/verdancy/bramble/pkg/preset"
	"github.com/verdancy/bramble/pkg/turtle"
)

// ExpandResponse aligns with the OpenAPI schema and provides a unified structure across adapters.
type ExpandResponse struct {
	Commands  string `json:"commands" jsonschema_description:"The fully expanded command string"`
	DrawCount int    `json:"draw_count" jsonschema_description:"Number of draw commands in the output"`
	Truncated bool   `json:"truncated" jsonschema_description:"True when expansion stopped at the draw budget"`
	Dropped   int    `json:"dropped" jsonschema_description:"Number of unknown symbols dropped"`
}

// RenderResponse carries traced segments as parallel coordinate arrays.
type RenderResponse struct {
	FromX     []float64 `json:"from_x" jsonschema_description:"Segment start X coordinates"`
	FromY     []float64 `json:"from_y" jsonschema_description:"Segment start Y coordinates"`
	ToX       []float64 `json:"to_x" jsonschema_description:"Segment end X coordinates"`
	ToY       []float64 `json:"to_y" jsonschema_description:"Segment end Y coordinates"`
	Count     int       `json:"count" jsonschema_description:"Number of emitted segments"`
	Steps     int       `json:"steps" jsonschema_description:"Total number of forward steps walked"`
	DrawCount int       `json:"draw_count" jsonschema_description:"Number of draw commands in the expansion"`
	Truncated bool      `json:"truncated" jsonschema_description:"True when expansion stopped at the draw budget"`
	Dropped   int       `json:"dropped" jsonschema_description:"Number of unknown symbols dropped"`
	Preset    string    `json:"preset,omitempty" jsonschema_description:"Preset name, when rendered through one"`
	CacheHit  bool      `json:"cache_hit" jsonschema_description:"True when served from the render cache"`
}

// Engine defines the interface required by the MCP server.
type Engine interface {
	Expand(ctx context.Context, req bramble.ExpandRequest) (*lsystem.Expansion, error)
	Render(ctx context.Context, req bramble.RenderRequest) (*bramble.Result, error)
	RenderPreset(ctx context.Context, name string, overrides map[string]any) (*bramble.Result, error)
	Presets(ctx context.Context) ([]string, error)
	Preset(ctx context.Context, name string) (*preset.Preset, error)
}

var _ Engine = (*bramble.Engine)(nil)

// Server wraps the rendering engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("bramble-mcp", strings.TrimSpace(bramble.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: expand_grammar
	expandTool := mcp.NewTool("expand_grammar",
		mcp.WithDescription("Parse an L-system grammar and expand it into a command string without tracing it."),
		mcp.WithString("rules", mcp.Required(), mcp.Description("Grammar source, one 'Symbol:replacement' rule per line; the first rule is the axiom")),
		mcp.WithNumber("depth", mcp.Description("Recursion depth (default 0)")),
		mcp.WithNumber("budget", mcp.Description("Maximum number of draw commands in the output (default 0, empty output)")),
		mcp.WithOutputSchema[ExpandResponse](),
	)
	s.mcpServer.AddTool(expandTool, mcp.NewStructuredToolHandler(s.handleExpand))

	// TOOL: render_grammar
	renderTool := mcp.NewTool("render_grammar",
		mcp.WithDescription("Expand an L-system grammar and trace it into line segments."),
		mcp.WithString("rules", mcp.Required(), mcp.Description("Grammar source, one 'Symbol:replacement' rule per line")),
		mcp.WithNumber("depth", mcp.Description("Recursion depth")),
		mcp.WithNumber("budget", mcp.Description("Maximum number of draw commands")),
		mcp.WithNumber("angle", mcp.Description("Turn increment in degrees")),
		mcp.WithNumber("step", mcp.Description("Distance covered by one forward step")),
		mcp.WithNumber("angle_delta", mcp.Description("Relative angle scale factor applied by ( and )")),
		mcp.WithNumber("step_delta", mcp.Description("Relative step scale factor applied by < and >")),
		mcp.WithNumber("roughness", mcp.Description("Emission stride: only every Nth step emits a segment")),
		mcp.WithNumber("max_segments", mcp.Description("Cap on the number of emitted segments")),
		mcp.WithOutputSchema[RenderResponse](),
	)
	s.mcpServer.AddTool(renderTool, mcp.NewStructuredToolHandler(s.handleRender))

	// TOOL: render_preset
	presetTool := mcp.NewTool("render_preset",
		mcp.WithDescription("Render a named preset, optionally overriding individual fields."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Preset name")),
		mcp.WithString("overrides", mcp.Description("JSON object of preset field overrides (optional)")),
		mcp.WithOutputSchema[RenderResponse](),
	)
	s.mcpServer.AddTool(presetTool, mcp.NewStructuredToolHandler(s.handleRenderPreset))

	// TOOL: list_presets
	s.mcpServer.AddTool(mcp.NewTool("list_presets",
		mcp.WithDescription("List the preset names known to the engine."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		names, err := s.engine.Presets(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(names)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleExpand(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ExpandResponse, error) {
	rules, _ := args["rules"].(string)

	exp, err := s.engine.Expand(ctx, bramble.ExpandRequest{
		Rules:  rules,
		Depth:  intArg(args, "depth"),
		Budget: intArg(args, "budget"),
	})
	if err != nil {
		return ExpandResponse{}, fmt.Errorf("expand failed: %w", err)
	}

	return ExpandResponse{
		Commands:  exp.Commands,
		DrawCount: exp.DrawCount,
		Truncated: exp.Truncated,
		Dropped:   exp.Dropped,
	}, nil
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RenderResponse, error) {
	rules, _ := args["rules"].(string)

	res, err := s.engine.Render(ctx, bramble.RenderRequest{
		Rules:  rules,
		Depth:  intArg(args, "depth"),
		Budget: intArg(args, "budget"),
		Params: turtle.Params{
			Angle:       floatArg(args, "angle"),
			Step:        floatArg(args, "step"),
			AngleDelta:  floatArg(args, "angle_delta"),
			StepDelta:   floatArg(args, "step_delta"),
			Roughness:   intArg(args, "roughness"),
			MaxSegments: intArg(args, "max_segments"),
		},
	})
	if err != nil {
		return RenderResponse{}, fmt.Errorf("render failed: %w", err)
	}

	return mapResult(res), nil
}

func (s *Server) handleRenderPreset(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RenderResponse, error) {
	name, _ := args["name"].(string)

	var overrides map[string]any
	if ovStr, ok := args["overrides"].(string); ok && ovStr != "" {
		if err := json.Unmarshal([]byte(ovStr), &overrides); err != nil {
			slog.Warn("MCP RenderPreset: overrides rejected", "error", err, "preset", name)
			return RenderResponse{}, fmt.Errorf("invalid overrides: %w", err)
		}
	}

	res, err := s.engine.RenderPreset(ctx, name, overrides)
	if err != nil {
		return RenderResponse{}, fmt.Errorf("render failed: %w", err)
	}

	return mapResult(res), nil
}

func (s *Server) registerResources() {
	// EXPOSE: bramble://presets
	s.mcpServer.AddResource(mcp.NewResource("bramble://presets", "Preset Library",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.engine.Presets(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list presets: %w", err)
		}

		defs := make([]*preset.Preset, 0, len(names))
		for _, name := range names {
			p, err := s.engine.Preset(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("failed to load preset %q: %w", name, err)
			}
			defs = append(defs, p)
		}
		jsonBytes, _ := json.Marshal(defs)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "bramble://presets",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

// -- Helpers --

func intArg(args map[string]interface{}, key string) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return 0
}

func floatArg(args map[string]interface{}, key string) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return 0
}

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
	}
}
