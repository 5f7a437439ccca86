// Package restapi implements the RESTful API layer, including DTOs and handlers.
package restapi

import "eth_block_explorer/pkg/blockexplorer"

// SelectRequest defines the expected JSON body for the POST /api/select endpoint.
type SelectRequest struct {
	BlockNumber *int64 `json:"blockNumber"`
}

// ErrorResponse defines a standard structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse defines the structure for the GET /api/health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// StateResponse is returned by the state-changing endpoints. Error is set when the
// operation failed; State is the snapshot after the operation either way.
type StateResponse struct {
	Error string                  `json:"error,omitempty"`
	State blockexplorer.ViewState `json:"state"`
}
