// Package wsbridge is the websocket gateway for the voice-agent runtime.
// The agent streams tool calls and UI event notifications as JSON frames;
// each dispatch comes back as a signal frame telling the agent which
// screen/agent is active and whether the conversation is over.
package wsbridge

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	wayfarer "github.com/wayfarerhq/wayfarer"
	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// Frame types exchanged with the agent runtime.
const (
	FrameConnected = "connected"
	FrameToolCall  = "tool_call"
	FrameEvent     = "event"
	FrameHandoff   = "handoff"
	FrameSignal    = "signal"
	FrameError     = "error"
)

// Inbound is a frame sent by the agent runtime.
type Inbound struct {
	Type      string         `json:"type"`
	Tool      string         `json:"tool,omitempty"`
	EventID   string         `json:"event_id,omitempty"`
	ElementID string         `json:"element_id,omitempty"`
	AgentID   string         `json:"agent_id,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
}

// Outbound is a frame sent to the agent runtime.
type Outbound struct {
	Type     string              `json:"type"`
	RunID    string              `json:"run_id,omitempty"`
	Matched  bool                `json:"matched,omitempty"`
	Signal   *domain.AgentSignal `json:"signal,omitempty"`
	Warnings []domain.Warning    `json:"warnings,omitempty"`
	Message  string              `json:"message,omitempty"`
}

// Handler upgrades agent connections and pumps frames through a run.
type Handler struct {
	itp      *wayfarer.Interpreter
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets the connection logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithCheckOrigin overrides the websocket origin check.
func WithCheckOrigin(check func(*http.Request) bool) Option {
	return func(h *Handler) {
		h.upgrader.CheckOrigin = check
	}
}

// NewHandler builds the websocket handler. Connections address an existing
// run via the run_id query parameter, or start a fresh run without one.
func NewHandler(itp *wayfarer.Interpreter, opts ...Option) *Handler {
	h := &Handler{
		itp:    itp,
		logger: logging.NewNop(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()

	var run *wayfarer.Run
	if runID := r.URL.Query().Get("run_id"); runID != "" {
		run, err = h.itp.Run(ctx, runID)
	} else {
		run, err = h.itp.StartRun(ctx, nil)
	}
	if err != nil {
		_ = conn.WriteJSON(Outbound{Type: FrameError, Message: err.Error()})
		return
	}

	if err := conn.WriteJSON(Outbound{Type: FrameConnected, RunID: run.ID()}); err != nil {
		h.logger.Warn("failed to send connected frame", "err", err)
		return
	}

	for {
		var in Inbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket closed unexpectedly", "run_id", run.ID(), "err", err)
			}
			return
		}

		var res *domain.DispatchResult
		switch in.Type {
		case FrameToolCall:
			if in.Tool == "" {
				h.writeError(conn, run.ID(), "tool_call frame requires tool")
				continue
			}
			res, err = run.HandleToolCall(ctx, in.Tool, in.Args)
		case FrameEvent:
			if in.EventID == "" {
				h.writeError(conn, run.ID(), "event frame requires event_id")
				continue
			}
			res, err = run.Dispatch(ctx, in.EventID, in.ElementID, in.Args)
		case FrameHandoff:
			if in.AgentID == "" {
				h.writeError(conn, run.ID(), "handoff frame requires agent_id")
				continue
			}
			res, err = run.Handoff(ctx, in.AgentID)
		default:
			h.writeError(conn, run.ID(), "unknown frame type: "+in.Type)
			continue
		}

		if err != nil {
			if errors.Is(err, domain.ErrRunClosed) {
				h.writeError(conn, run.ID(), "run is closed")
				return
			}
			h.logger.Error("dispatch failed", "run_id", run.ID(), "err", err)
			h.writeError(conn, run.ID(), "dispatch failed")
			continue
		}

		out := Outbound{
			Type:     FrameSignal,
			RunID:    run.ID(),
			Matched:  res.Matched,
			Signal:   &res.Signal,
			Warnings: res.Warnings,
		}
		if err := conn.WriteJSON(out); err != nil {
			h.logger.Warn("failed to write signal frame", "run_id", run.ID(), "err", err)
			return
		}

		if res.Signal.Completed {
			return
		}
	}
}

func (h *Handler) writeError(conn *websocket.Conn, runID, msg string) {
	if err := conn.WriteJSON(Outbound{Type: FrameError, RunID: runID, Message: msg}); err != nil {
		h.logger.Warn("failed to write error frame", "run_id", runID, "err", err)
	}
}
