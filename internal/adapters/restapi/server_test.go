package restapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"eth_block_explorer/internal/adapters/restapi"
	"eth_block_explorer/internal/config"
	"eth_block_explorer/internal/core/selection"
	"eth_block_explorer/internal/logger"
	"eth_block_explorer/internal/metrics"
	"eth_block_explorer/pkg/blockexplorer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExplorer struct {
	mu       sync.Mutex
	state    blockexplorer.ViewState
	initErr  error
	selErr   error
	selected []int64
	updates  chan blockexplorer.ViewState
}

func newFakeExplorer() *fakeExplorer {
	return &fakeExplorer{
		state:   blockexplorer.ViewState{Label: blockexplorer.NoSelectionLabel, ReceiptStatus: blockexplorer.ReceiptNone},
		updates: make(chan blockexplorer.ViewState, 4),
	}
}

func (f *fakeExplorer) Initialize(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.initErr == nil {
		f.state.Candidates = []int64{100, 99, 98}
	}
	return f.initErr
}

func (f *fakeExplorer) Select(_ context.Context, blockNumber int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = append(f.selected, blockNumber)
	f.state.SelectedBlock = &blockNumber
	f.state.Label = fmt.Sprintf(blockexplorer.BlockLabelFormat, blockNumber)
	return f.selErr
}

func (f *fakeExplorer) Selected() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.selected...)
}

func (f *fakeExplorer) State() blockexplorer.ViewState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeExplorer) Subscribe() (<-chan blockexplorer.ViewState, func()) {
	return f.updates, func() {}
}

func newTestServer(t *testing.T, explorer blockexplorer.Explorer, opts ...restapi.Option) *httptest.Server {
	t.Helper()
	cfg := &config.ServerConfig{Port: ":0"}
	server, err := restapi.NewServer(explorer, logger.Nop(), cfg, opts...)
	require.NoError(t, err)

	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestNewServer_NilDependencies(t *testing.T) {
	cfg := &config.ServerConfig{Port: ":0"}

	_, err := restapi.NewServer(nil, logger.Nop(), cfg)
	assert.Error(t, err)

	_, err = restapi.NewServer(newFakeExplorer(), nil, cfg)
	assert.Error(t, err)

	_, err = restapi.NewServer(newFakeExplorer(), logger.Nop(), nil)
	assert.Error(t, err)
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, newFakeExplorer())

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[restapi.HealthResponse](t, resp).Status)
}

func TestServer_InitializeThenState(t *testing.T) {
	srv := newTestServer(t, newFakeExplorer())

	resp, err := http.Post(srv.URL+"/api/initialize", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[restapi.StateResponse](t, resp)
	assert.Empty(t, body.Error)
	assert.Equal(t, []int64{100, 99, 98}, body.State.Candidates)

	resp, err = http.Get(srv.URL + "/api/state")
	require.NoError(t, err)
	state := decode[blockexplorer.ViewState](t, resp)
	assert.Equal(t, []int64{100, 99, 98}, state.Candidates)
	assert.Equal(t, blockexplorer.NoSelectionLabel, state.Label)
}

func TestServer_Select(t *testing.T) {
	explorer := newFakeExplorer()
	srv := newTestServer(t, explorer)

	resp, err := http.Post(srv.URL+"/api/select", "application/json", strings.NewReader(`{"blockNumber": 42}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[restapi.StateResponse](t, resp)
	require.NotNil(t, body.State.SelectedBlock)
	assert.Equal(t, int64(42), *body.State.SelectedBlock)
	assert.Equal(t, "Block #42", body.State.Label)
	assert.Equal(t, []int64{42}, explorer.Selected())
}

func TestServer_SelectBadRequests(t *testing.T) {
	explorer := newFakeExplorer()
	srv := newTestServer(t, explorer)

	for name, payload := range map[string]string{
		"Malformed JSON": `{"blockNumber":`,
		"Missing field":  `{}`,
		"Wrong type":     `{"blockNumber":"0x10"}`,
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/select", "application/json", strings.NewReader(payload))
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, decode[restapi.ErrorResponse](t, resp).Error)
		})
	}
	assert.Empty(t, explorer.Selected())
}

func TestServer_ErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "Superseded", err: selection.ErrSuperseded, code: http.StatusConflict},
		{name: "Primary fetch", err: &selection.FetchError{Kind: selection.KindPrimaryFetch, Err: io.EOF}, code: http.StatusBadGateway},
		{name: "Dependent fetch", err: &selection.FetchError{Kind: selection.KindDependentFetch, Err: io.EOF}, code: http.StatusBadGateway},
		{name: "Unknown", err: io.ErrUnexpectedEOF, code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			explorer := newFakeExplorer()
			explorer.selErr = fmt.Errorf("select block 7: %w", tt.err)
			srv := newTestServer(t, explorer)

			resp, err := http.Post(srv.URL+"/api/select", "application/json", strings.NewReader(`{"blockNumber": 7}`))
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)

			body := decode[restapi.StateResponse](t, resp)
			assert.Contains(t, body.Error, "select block 7")
			require.NotNil(t, body.State.SelectedBlock)
			assert.Equal(t, int64(7), *body.State.SelectedBlock)
		})
	}
}

func TestServer_InitializeFailure(t *testing.T) {
	explorer := newFakeExplorer()
	explorer.initErr = &selection.FetchError{Kind: selection.KindInitialization, Err: io.EOF}
	srv := newTestServer(t, explorer)

	resp, err := http.Post(srv.URL+"/api/initialize", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Empty(t, decode[restapi.StateResponse](t, resp).State.Candidates)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, newFakeExplorer())

	tests := []struct {
		method string
		path   string
	}{
		{method: http.MethodGet, path: "/api/select"},
		{method: http.MethodGet, path: "/api/initialize"},
		{method: http.MethodPost, path: "/api/state"},
		{method: http.MethodPost, path: "/api/health"},
		{method: http.MethodDelete, path: "/api/ws"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		})
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	srv := newTestServer(t, newFakeExplorer())

	resp, err := http.Get(srv.URL + "/api/blocks")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(reg)
	srv := newTestServer(t, newFakeExplorer(), restapi.WithMetrics(recorder, reg, "/metrics"))

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	_ = resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "blockexplorer_http_requests_total")
}

func TestServer_StateStream(t *testing.T) {
	explorer := newFakeExplorer()
	srv := newTestServer(t, explorer)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var initial blockexplorer.ViewState
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, blockexplorer.NoSelectionLabel, initial.Label)

	selected := int64(5)
	explorer.updates <- blockexplorer.ViewState{
		SelectedBlock: &selected,
		Label:         "Block #5",
		Loading:       true,
		Phase:         "fetching_primary",
		Token:         1,
	}

	var pushed blockexplorer.ViewState
	require.NoError(t, conn.ReadJSON(&pushed))
	assert.Equal(t, "Block #5", pushed.Label)
	assert.True(t, pushed.Loading)
	assert.Equal(t, uint64(1), pushed.Token)
}

func TestServer_StateStreamClosesWhenSubscriptionEnds(t *testing.T) {
	explorer := newFakeExplorer()
	srv := newTestServer(t, explorer)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var initial blockexplorer.ViewState
	require.NoError(t, conn.ReadJSON(&initial))

	close(explorer.updates)

	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
}
