package wsbridge_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wayfarer "github.com/wayfarerhq/wayfarer"
	"github.com/wayfarerhq/wayfarer/pkg/adapters/wsbridge"
	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

func agentJourney() *domain.Journey {
	return &domain.Journey{
		ID:         "voice",
		StartAgent: "greeter",
		Agents: []domain.Agent{
			{
				ID:       "greeter",
				Handoffs: []string{"closer"},
				Screens: []domain.Screen{
					{
						ID: "ask_name",
						Events: []domain.Event{
							{
								ID:      "capture_name",
								Trigger: domain.TriggerCustom,
								Actions: []domain.Action{
									domain.StateUpdate(domain.ScopeModule, map[string]any{"answer.name": "{{name}}"}),
									domain.Navigate("thanks"),
								},
							},
						},
					},
					{ID: "thanks"},
				},
			},
			{
				ID: "closer",
				Screens: []domain.Screen{
					{
						ID: "wrap",
						Events: []domain.Event{
							{
								ID:      "finish",
								Trigger: domain.TriggerCustom,
								Actions: []domain.Action{domain.Close(true, map[string]any{"reason": "done"})},
							},
						},
					},
				},
			},
		},
	}
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wsbridge.Outbound {
	t.Helper()
	var out wsbridge.Outbound
	require.NoError(t, conn.ReadJSON(&out))
	return out
}

func TestHandler_ToolCallStream(t *testing.T) {
	itp, err := wayfarer.New(agentJourney())
	require.NoError(t, err)
	defer itp.Shutdown()

	srv := httptest.NewServer(wsbridge.NewHandler(itp))
	defer srv.Close()

	conn := dial(t, srv, "")

	connected := readFrame(t, conn)
	require.Equal(t, wsbridge.FrameConnected, connected.Type)
	require.NotEmpty(t, connected.RunID)

	require.NoError(t, conn.WriteJSON(wsbridge.Inbound{
		Type: wsbridge.FrameToolCall,
		Tool: "capture_name",
		Args: map[string]any{"name": "ada"},
	}))

	signal := readFrame(t, conn)
	assert.Equal(t, wsbridge.FrameSignal, signal.Type)
	assert.True(t, signal.Matched)
	require.NotNil(t, signal.Signal)
	assert.Equal(t, "thanks", signal.Signal.ScreenID)

	run, err := itp.Run(t.Context(), connected.RunID)
	require.NoError(t, err)
	state, err := run.State(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "ada", state.Module["answer.name"])
}

func TestHandler_HandoffAndCompletionClosesStream(t *testing.T) {
	itp, err := wayfarer.New(agentJourney())
	require.NoError(t, err)
	defer itp.Shutdown()

	srv := httptest.NewServer(wsbridge.NewHandler(itp))
	defer srv.Close()

	conn := dial(t, srv, "")
	readFrame(t, conn) // connected

	require.NoError(t, conn.WriteJSON(wsbridge.Inbound{Type: wsbridge.FrameHandoff, AgentID: "closer"}))
	signal := readFrame(t, conn)
	require.NotNil(t, signal.Signal)
	assert.Equal(t, "closer", signal.Signal.AgentID)

	require.NoError(t, conn.WriteJSON(wsbridge.Inbound{Type: wsbridge.FrameToolCall, Tool: "finish"}))
	final := readFrame(t, conn)
	require.NotNil(t, final.Signal)
	assert.True(t, final.Signal.Completed)

	// The handler closes the stream after a completion signal.
	var extra wsbridge.Outbound
	assert.Error(t, conn.ReadJSON(&extra))
}

func TestHandler_ResumeExistingRun(t *testing.T) {
	itp, err := wayfarer.New(agentJourney())
	require.NoError(t, err)
	defer itp.Shutdown()

	run, err := itp.StartRun(t.Context(), map[string]any{"plan": "pro"})
	require.NoError(t, err)

	srv := httptest.NewServer(wsbridge.NewHandler(itp))
	defer srv.Close()

	conn := dial(t, srv, "?run_id="+run.ID())
	connected := readFrame(t, conn)
	assert.Equal(t, run.ID(), connected.RunID)
}

func TestHandler_UnknownRun(t *testing.T) {
	itp, err := wayfarer.New(agentJourney())
	require.NoError(t, err)
	defer itp.Shutdown()

	srv := httptest.NewServer(wsbridge.NewHandler(itp))
	defer srv.Close()

	conn := dial(t, srv, "?run_id=ghost")
	frame := readFrame(t, conn)
	assert.Equal(t, wsbridge.FrameError, frame.Type)
}

func TestHandler_MalformedFrames(t *testing.T) {
	itp, err := wayfarer.New(agentJourney())
	require.NoError(t, err)
	defer itp.Shutdown()

	srv := httptest.NewServer(wsbridge.NewHandler(itp))
	defer srv.Close()

	conn := dial(t, srv, "")
	readFrame(t, conn) // connected

	require.NoError(t, conn.WriteJSON(wsbridge.Inbound{Type: "telepathy"}))
	frame := readFrame(t, conn)
	assert.Equal(t, wsbridge.FrameError, frame.Type)

	require.NoError(t, conn.WriteJSON(wsbridge.Inbound{Type: wsbridge.FrameToolCall}))
	frame = readFrame(t, conn)
	assert.Equal(t, wsbridge.FrameError, frame.Type)
}
