package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/edvin/rediscloud-tools/internal/tools"
)

// Server exposes the tool provider's diagnostics tools over MCP.
type Server struct {
	router   chi.Router
	provider *tools.Provider
	logger   zerolog.Logger
}

// New creates and configures a new MCP server around the given provider.
func New(cfg *Config, provider *tools.Provider, logger zerolog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	// Health check
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	serverTools := BuildTools(provider)

	mcpSrv := server.NewMCPServer(
		"redis-cloud",
		"1.0.0",
		server.WithInstructions(cfg.Description),
	)
	mcpSrv.AddTools(serverTools...)

	httpSrv := server.NewStreamableHTTPServer(mcpSrv,
		server.WithEndpointPath("/"),
	)
	router.Mount("/mcp", httpSrv)

	logger.Info().Int("tools", len(serverTools)).Msg("mounted MCP endpoint at /mcp")

	return &Server{
		router:   router,
		provider: provider,
		logger:   logger,
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// BuildTools converts the provider's tool definitions into MCP server tools.
func BuildTools(provider *tools.Provider) []server.ServerTool {
	defs := provider.Definitions()
	serverTools := make([]server.ServerTool, 0, len(defs))

	for _, def := range defs {
		toolOpts := []mcp.ToolOption{
			mcp.WithDescription(def.Description),
			// Diagnostics tools never mutate the control plane.
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
		}
		toolOpts = append(toolOpts, buildParams(def.Parameters)...)

		serverTools = append(serverTools, server.ServerTool{
			Tool:    mcp.NewTool(def.Name, toolOpts...),
			Handler: toolHandler(provider, def.Name),
		})
	}

	return serverTools
}

// buildParams converts definition parameters to MCP tool parameter options.
func buildParams(params []tools.Parameter) []mcp.ToolOption {
	var opts []mcp.ToolOption
	for _, p := range params {
		popts := []mcp.PropertyOption{
			mcp.Description(p.Description),
		}
		if p.Required {
			popts = append(popts, mcp.Required())
		}

		switch p.Type {
		case "integer", "number":
			opts = append(opts, mcp.WithNumber(p.Name, popts...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(p.Name, popts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, popts...))
		}
	}
	return opts
}

// toolHandler returns an MCP handler that dispatches to the provider by name.
func toolHandler(provider *tools.Provider, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode arguments: %s", err)), nil
		}

		result, err := provider.Execute(ctx, name, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode result: %s", err)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}
