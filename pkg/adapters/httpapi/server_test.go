package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wayfarer "github.com/wayfarerhq/wayfarer"
	"github.com/wayfarerhq/wayfarer/pkg/adapters/httpapi"
	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

func testJourney() *domain.Journey {
	return &domain.Journey{
		ID:         "signup",
		StartAgent: "greeter",
		Agents: []domain.Agent{
			{
				ID: "greeter",
				Screens: []domain.Screen{
					{
						ID:    "welcome",
						Title: "Welcome",
						Events: []domain.Event{
							{
								ID:      "continue",
								Trigger: domain.TriggerSelection,
								Actions: []domain.Action{domain.Navigate("done")},
							},
							{
								ID:      "capture_name",
								Trigger: domain.TriggerCustom,
								Actions: []domain.Action{
									domain.StateUpdate(domain.ScopeModule, map[string]any{"answer.name": "{{name}}"}),
								},
							},
						},
					},
					{
						ID: "done",
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

func newTestServer(t *testing.T) (*httptest.Server, *wayfarer.Interpreter) {
	t.Helper()
	itp, err := wayfarer.New(testJourney())
	require.NoError(t, err)
	t.Cleanup(itp.Shutdown)

	srv := httptest.NewServer(httpapi.NewHandler(itp))
	t.Cleanup(srv.Close)
	return srv, itp
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createRun(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, srv.URL+"/runs", map[string]any{"module_seed": map[string]any{"plan": "pro"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	id, _ := body["run_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestServer_CreateRunAndGetScreen(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createRun(t, srv)

	resp, err := http.Get(srv.URL + "/runs/" + id + "/screen")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	screen := decode[domain.EffectiveScreen](t, resp)
	assert.Equal(t, "welcome", screen.ID)
	assert.Equal(t, "Welcome", screen.Title)
}

func TestServer_DispatchEvent(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createRun(t, srv)

	resp := postJSON(t, srv.URL+"/runs/"+id+"/events", map[string]any{"event_id": "continue"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, true, body["matched"])
	assert.Equal(t, true, body["navigated"])

	screen, _ := body["screen"].(map[string]any)
	require.NotNil(t, screen)
	assert.Equal(t, "done", screen["id"])
}

func TestServer_ToolCallWritesState(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createRun(t, srv)

	resp := postJSON(t, srv.URL+"/runs/"+id+"/tool-calls", map[string]any{
		"tool": "capture_name",
		"args": map[string]any{"name": "ada"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, true, body["matched"])

	stateResp, err := http.Get(srv.URL + "/runs/" + id + "/state")
	require.NoError(t, err)
	state := decode[domain.RunState](t, stateResp)
	assert.Equal(t, "ada", state.Module["answer.name"])
	assert.Equal(t, "pro", state.Module["plan"])
}

func TestServer_CompletionSignal(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createRun(t, srv)

	postJSON(t, srv.URL+"/runs/"+id+"/events", map[string]any{"event_id": "continue"})
	resp := postJSON(t, srv.URL+"/runs/"+id+"/events", map[string]any{"event_id": "finish"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	signal, _ := body["signal"].(map[string]any)
	require.NotNil(t, signal)
	assert.Equal(t, true, signal["completed"])
	assert.Equal(t, "done", signal["completion_reason"])
}

func TestServer_UnknownRun(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/runs/ghost/screen")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/runs/ghost/events", map[string]any{"event_id": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createRun(t, srv)

	resp := postJSON(t, srv.URL+"/runs/"+id+"/events", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/runs/"+id+"/tool-calls", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/runs/"+id+"/handoff", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_DeleteRun(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createRun(t, srv)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/runs/"+id, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, err := http.Get(srv.URL + "/runs/" + id + "/screen")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
