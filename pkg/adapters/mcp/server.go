// Package mcp exposes the interpreter as an MCP server, so agent frameworks
// that speak the Model Context Protocol can drive journeys as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	wayfarer "github.com/wayfarerhq/wayfarer"
	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// DispatchResponse is the structured result returned by dispatching tools.
type DispatchResponse struct {
	RunID    string                  `json:"run_id" jsonschema_description:"The run this dispatch applied to"`
	Matched  bool                    `json:"matched" jsonschema_description:"Whether the event matched and fired"`
	Signal   domain.AgentSignal      `json:"signal" jsonschema_description:"Current screen/agent and completion state"`
	Warnings []domain.Warning        `json:"warnings,omitempty" jsonschema_description:"Recovered faults during the dispatch"`
	Screen   *domain.EffectiveScreen `json:"screen,omitempty" jsonschema_description:"Resolved screen after the dispatch"`
}

// StartResponse is the structured result of start_run.
type StartResponse struct {
	RunID  string                  `json:"run_id"`
	Signal domain.AgentSignal      `json:"signal"`
	Screen *domain.EffectiveScreen `json:"screen,omitempty"`
}

// Server wraps an Interpreter and exposes it as an MCP server.
type Server struct {
	itp       *wayfarer.Interpreter
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an MCP server over the interpreter.
func NewServer(itp *wayfarer.Interpreter, opts ...Option) *Server {
	s := &Server{
		itp:       itp,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("wayfarer-mcp", strings.TrimSpace(wayfarer.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE transport.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	startTool := mcp.NewTool("start_run",
		mcp.WithDescription("Start a new journey run and return its first screen."),
		mcp.WithString("module_seed", mcp.Description("JSON object pre-seeding module-scoped state (optional)")),
		mcp.WithOutputSchema[StartResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStartRun))

	toolCallTool := mcp.NewTool("tool_call",
		mcp.WithDescription("Deliver an agent tool call to a run. The tool name addresses a screen-level event; arguments become transient evaluation context."),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("Target run ID")),
		mcp.WithString("tool", mcp.Required(), mcp.Description("Tool / event name")),
		mcp.WithString("args", mcp.Description("JSON object of tool arguments (optional)")),
		mcp.WithOutputSchema[DispatchResponse](),
	)
	s.mcpServer.AddTool(toolCallTool, mcp.NewStructuredToolHandler(s.handleToolCall))

	eventTool := mcp.NewTool("dispatch_event",
		mcp.WithDescription("Fire a UI event on a run, optionally scoped to one element."),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("Target run ID")),
		mcp.WithString("event_id", mcp.Required(), mcp.Description("Event ID to fire")),
		mcp.WithString("element_id", mcp.Description("Source element ID (optional)")),
		mcp.WithString("args", mcp.Description("JSON object of transient context (optional)")),
		mcp.WithOutputSchema[DispatchResponse](),
	)
	s.mcpServer.AddTool(eventTool, mcp.NewStructuredToolHandler(s.handleDispatchEvent))

	handoffTool := mcp.NewTool("handoff",
		mcp.WithDescription("Transfer a run to another agent declared in the current agent's handoff list."),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("Target run ID")),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent to hand the run to")),
		mcp.WithOutputSchema[DispatchResponse](),
	)
	s.mcpServer.AddTool(handoffTool, mcp.NewStructuredToolHandler(s.handleHandoff))

	getScreenTool := mcp.NewTool("get_screen",
		mcp.WithDescription("Resolve the effective screen for a run's current state."),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("Target run ID")),
	)
	s.mcpServer.AddTool(getScreenTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		runID := request.GetString("run_id", "")
		run, err := s.itp.Run(ctx, runID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("run lookup failed: %v", err)), nil
		}
		screen, err := run.Screen(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("resolve failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(screen)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	getStateTool := mcp.NewTool("get_state",
		mcp.WithDescription("Return the run's persisted state (scopes, position, status)."),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("Target run ID")),
	)
	s.mcpServer.AddTool(getStateTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		runID := request.GetString("run_id", "")
		run, err := s.itp.Run(ctx, runID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("run lookup failed: %v", err)), nil
		}
		state, err := run.State(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("state load failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(state)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleStartRun(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (StartResponse, error) {
	var seed map[string]any
	if seedStr, ok := args["module_seed"].(string); ok && seedStr != "" {
		if err := json.Unmarshal([]byte(seedStr), &seed); err != nil {
			return StartResponse{}, fmt.Errorf("invalid module_seed: %w", err)
		}
	}

	run, err := s.itp.StartRun(ctx, seed)
	if err != nil {
		return StartResponse{}, fmt.Errorf("start failed: %w", err)
	}

	resp := StartResponse{RunID: run.ID()}
	if state, err := run.State(ctx); err == nil {
		resp.Signal = domain.AgentSignal{ScreenID: state.ScreenID, AgentID: state.AgentID}
	}
	if screen, err := run.Screen(ctx); err == nil {
		resp.Screen = screen
	}
	return resp, nil
}

func (s *Server) handleToolCall(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (DispatchResponse, error) {
	runID, _ := args["run_id"].(string)
	tool, _ := args["tool"].(string)
	extra, err := decodeArgs(args)
	if err != nil {
		return DispatchResponse{}, err
	}

	run, err := s.itp.Run(ctx, runID)
	if err != nil {
		return DispatchResponse{}, fmt.Errorf("run lookup failed: %w", err)
	}
	res, err := run.HandleToolCall(ctx, tool, extra)
	if err != nil {
		return DispatchResponse{}, fmt.Errorf("tool call failed: %w", err)
	}
	return s.dispatchResponse(ctx, run, res), nil
}

func (s *Server) handleDispatchEvent(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (DispatchResponse, error) {
	runID, _ := args["run_id"].(string)
	eventID, _ := args["event_id"].(string)
	elementID, _ := args["element_id"].(string)
	extra, err := decodeArgs(args)
	if err != nil {
		return DispatchResponse{}, err
	}

	run, err := s.itp.Run(ctx, runID)
	if err != nil {
		return DispatchResponse{}, fmt.Errorf("run lookup failed: %w", err)
	}
	res, err := run.Dispatch(ctx, eventID, elementID, extra)
	if err != nil {
		return DispatchResponse{}, fmt.Errorf("dispatch failed: %w", err)
	}
	return s.dispatchResponse(ctx, run, res), nil
}

func (s *Server) handleHandoff(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (DispatchResponse, error) {
	runID, _ := args["run_id"].(string)
	agentID, _ := args["agent_id"].(string)

	run, err := s.itp.Run(ctx, runID)
	if err != nil {
		return DispatchResponse{}, fmt.Errorf("run lookup failed: %w", err)
	}
	res, err := run.Handoff(ctx, agentID)
	if err != nil {
		return DispatchResponse{}, fmt.Errorf("handoff failed: %w", err)
	}
	return s.dispatchResponse(ctx, run, res), nil
}

func (s *Server) dispatchResponse(ctx context.Context, run *wayfarer.Run, res *domain.DispatchResult) DispatchResponse {
	resp := DispatchResponse{
		RunID:    run.ID(),
		Matched:  res.Matched,
		Signal:   res.Signal,
		Warnings: res.Warnings,
	}
	if screen, err := run.Screen(ctx); err == nil {
		resp.Screen = screen
	}
	return resp
}

func decodeArgs(args map[string]any) (map[string]any, error) {
	argsStr, ok := args["args"].(string)
	if !ok || argsStr == "" {
		return nil, nil
	}
	var extra map[string]any
	if err := json.Unmarshal([]byte(argsStr), &extra); err != nil {
		return nil, fmt.Errorf("invalid args: %w", err)
	}
	return extra, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("wayfarer://journey", "Journey Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.itp.Journey())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal journey: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "wayfarer://journey",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
