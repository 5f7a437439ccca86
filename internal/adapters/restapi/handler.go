package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"eth_block_explorer/internal/core/selection"
	"eth_block_explorer/internal/logger"
	"eth_block_explorer/pkg/blockexplorer"
)

// WebSocket timings.
const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// HTTPHandler handles incoming HTTP requests for the explorer API.
type HTTPHandler struct {
	explorer blockexplorer.Explorer
	logger   logger.AppLogger
	upgrader websocket.Upgrader
}

// NewHTTPHandler creates a new handler with the necessary service dependency.
func NewHTTPHandler(explorer blockexplorer.Explorer, appLogger logger.AppLogger) (*HTTPHandler, error) {
	if explorer == nil {
		return nil, errors.New("explorer cannot be nil for HTTPHandler")
	}
	if appLogger == nil {
		return nil, errors.New("logger cannot be nil for HTTPHandler")
	}
	return &HTTPHandler{
		explorer: explorer,
		logger:   appLogger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}, nil
}

// HandleHealth handles requests to GET /api/health
func (h *HTTPHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"}, h.logger)
}

// HandleGetState handles requests to GET /api/state
func (h *HTTPHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.explorer.State(), h.logger)
}

// HandleInitialize handles requests to POST /api/initialize
func (h *HTTPHandler) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	requestLogger := h.logger.With("method", r.Method, "path", r.URL.Path)

	err := h.explorer.Initialize(context.WithoutCancel(r.Context()))
	h.respondWithState(w, err, requestLogger)
}

// HandleSelect handles requests to POST /api/select
func (h *HTTPHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	requestLogger := h.logger.With("method", r.Method, "path", r.URL.Path)
	defer func() {
		if err := r.Body.Close(); err != nil {
			requestLogger.Warn("Failed to close request body in HandleSelect", "error", err)
		}
	}()

	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestLogger.Warn("Invalid request body for Select", "error", err)
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error(), requestLogger)
		return
	}
	if req.BlockNumber == nil {
		requestLogger.Warn("Missing block number in Select request")
		respondWithError(w, http.StatusBadRequest, "blockNumber is required", requestLogger)
		return
	}

	requestLogger = requestLogger.With("blockNumber", *req.BlockNumber)
	err := h.explorer.Select(context.WithoutCancel(r.Context()), *req.BlockNumber)
	h.respondWithState(w, err, requestLogger)
}

// HandleStream handles requests to GET /api/ws and pushes every view state snapshot to the client.
func (h *HTTPHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	requestLogger := h.logger.With("method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		requestLogger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer func() {
		if errClose := conn.Close(); errClose != nil {
			requestLogger.Debug("WebSocket close failed", "error", errClose)
		}
	}()

	updates, cancel := h.explorer.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go h.readUntilClosed(conn, done)

	requestLogger.Info("State stream opened")
	if err := writeState(conn, h.explorer.State()); err != nil {
		requestLogger.Warn("Failed to write initial state", "error", err)
		return
	}

	pingTicker := time.NewTicker(wsPingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-done:
			requestLogger.Info("State stream closed by client")
			return
		case state, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(wsWriteWait))
				return
			}
			if err := writeState(conn, state); err != nil {
				requestLogger.Warn("Failed to write state", "error", err)
				return
			}
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				requestLogger.Debug("Failed to send ping", "error", err)
				return
			}
		}
	}
}

// readUntilClosed consumes client frames so control messages are processed, and closes done on error.
func (h *HTTPHandler) readUntilClosed(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeState(conn *websocket.Conn, state blockexplorer.ViewState) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return fmt.Errorf("failed to set the write deadline: %w", err)
	}
	return conn.WriteJSON(state)
}

// respondWithState writes the current state with a status derived from err.
func (h *HTTPHandler) respondWithState(w http.ResponseWriter, err error, l logger.AppLogger) {
	resp := StateResponse{State: h.explorer.State()}
	if err == nil {
		respondWithJSON(w, http.StatusOK, resp, l)
		return
	}

	resp.Error = err.Error()
	code := statusForError(err)
	if code == http.StatusInternalServerError {
		l.Error("Explorer operation failed", "error", err)
	} else {
		l.Warn("Explorer operation failed", "error", err, "http_code", code)
	}
	respondWithJSON(w, code, resp, l)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, selection.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, selection.ErrInitialization),
		errors.Is(err, selection.ErrPrimaryFetch),
		errors.Is(err, selection.ErrDependentFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError logs a warning and sends a JSON error response with the given code and message.
func respondWithError(w http.ResponseWriter, code int, message string, l logger.AppLogger) {
	l.Warn("Responding with error", "http_code", code, "message", message)
	respondWithJSON(w, code, ErrorResponse{Error: message}, l)
}

// respondWithJSON marshals the given payload into JSON and writes it to the response writer.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, l logger.AppLogger) {
	response, err := json.Marshal(payload)
	if err != nil {
		l.Error("Error marshaling JSON response",
			"error", err.Error(),
			"payload_type", fmt.Sprintf("%T", payload),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	n, writeErr := w.Write(response)
	if writeErr != nil {
		l.Error("Error writing response body", "error", writeErr, "bytes_written", n)
	}
}
