package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/tablewatch"
	"github.com/aretw0/tablewatch/internal/logging"
	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// UnitsURI is the resource listing every generated unit.
const UnitsURI = "tablewatch://units"

// Catalog is the read and materialize surface of the loaded definitions.
type Catalog interface {
	Units() []domain.ProcessingUnit
	External() []domain.ExternalSpec
	Materialize(ctx context.Context, name string) (string, error)
}

// Ticker drives the sensor.
type Ticker interface {
	TickNow(ctx context.Context) (domain.Evaluation, error)
	Last() (domain.Evaluation, bool)
	Ticks() int64
}

// StatusResponse is the structured result of the get_status tool.
type StatusResponse struct {
	Ticks int64              `json:"ticks" jsonschema_description:"Number of completed ticks since startup"`
	Last  *domain.Evaluation `json:"last,omitempty" jsonschema_description:"The most recent evaluation, if any"`
}

// UnitsResponse is the structured result of the list_units tool.
type UnitsResponse struct {
	Units    []domain.ProcessingUnit `json:"units" jsonschema_description:"Generated processing units in manifest order"`
	External []domain.ExternalSpec   `json:"external" jsonschema_description:"Upstream sources the units read from"`
}

// MaterializeResponse is the structured result of the materialize_unit tool.
type MaterializeResponse struct {
	Unit   string `json:"unit"`
	Output string `json:"output"`
}

type materializeArgs struct {
	Name string `json:"name"`
}

// Server exposes the sensor and the unit catalog as an MCP server.
type Server struct {
	catalog   Catalog
	ticker    Ticker
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(catalog Catalog, ticker Ticker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		catalog: catalog,
		ticker:  ticker,
		logger:  logger,
		mcpServer: server.NewMCPServer("tablewatch-mcp", strings.TrimSpace(tablewatch.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, mainly for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	r := chi.NewRouter()
	r.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	r.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: tick
	s.mcpServer.AddTool(mcp.NewTool("tick",
		mcp.WithDescription("Check the manifest now and reload the code location if it changed."),
		mcp.WithOutputSchema[domain.Evaluation](),
	), mcp.NewStructuredToolHandler(s.handleTick))

	// TOOL: get_status
	s.mcpServer.AddTool(mcp.NewTool("get_status",
		mcp.WithDescription("Get the tick count and the most recent sensor evaluation."),
		mcp.WithOutputSchema[StatusResponse](),
	), mcp.NewStructuredToolHandler(s.handleStatus))

	// TOOL: list_units
	s.mcpServer.AddTool(mcp.NewTool("list_units",
		mcp.WithDescription("List the processing units generated from the manifest."),
		mcp.WithOutputSchema[UnitsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListUnits))

	// TOOL: materialize_unit
	s.mcpServer.AddTool(mcp.NewTool("materialize_unit",
		mcp.WithDescription("Run one processing unit and return its output."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Unit name")),
		mcp.WithOutputSchema[MaterializeResponse](),
	), mcp.NewStructuredToolHandler(s.handleMaterialize))
}

func (s *Server) handleTick(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (domain.Evaluation, error) {
	eval, err := s.ticker.TickNow(ctx)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("tick failed: %w", err)
	}
	return eval, nil
}

func (s *Server) handleStatus(_ context.Context, _ mcp.CallToolRequest, _ map[string]any) (StatusResponse, error) {
	resp := StatusResponse{Ticks: s.ticker.Ticks()}
	if last, ok := s.ticker.Last(); ok {
		resp.Last = &last
	}
	return resp, nil
}

func (s *Server) handleListUnits(_ context.Context, _ mcp.CallToolRequest, _ map[string]any) (UnitsResponse, error) {
	return UnitsResponse{Units: s.catalog.Units(), External: s.catalog.External()}, nil
}

func (s *Server) handleMaterialize(ctx context.Context, _ mcp.CallToolRequest, args materializeArgs) (MaterializeResponse, error) {
	if args.Name == "" {
		return MaterializeResponse{}, errors.New("name is required")
	}
	out, err := s.catalog.Materialize(ctx, args.Name)
	if err != nil {
		s.logger.Warn("MCP materialize failed", "unit", args.Name, "error", err)
		return MaterializeResponse{}, fmt.Errorf("materialize failed: %w", err)
	}
	return MaterializeResponse{Unit: args.Name, Output: out}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: tablewatch://units
	s.mcpServer.AddResource(mcp.NewResource(UnitsURI, "Generated Processing Units",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(UnitsResponse{Units: s.catalog.Units(), External: s.catalog.External()})
		if err != nil {
			return nil, fmt.Errorf("failed to encode units: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      UnitsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
