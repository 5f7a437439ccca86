// Package rpc implements an Ethereum client using JSON-RPC communication with an Ethereum node.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"eth_block_explorer/internal/core/domain"
	"eth_block_explorer/internal/core/domain/client"
	"eth_block_explorer/internal/logger"
	"eth_block_explorer/internal/utils"
)

// EthereumNodeAdapter implements the client.EthereumClient interface by making JSON-RPC calls to an Ethereum node.
type EthereumNodeAdapter struct {
	rpcURL     string
	httpClient *http.Client
	logger     logger.AppLogger
	requestID  atomic.Int64
}

// Compile-time check to ensure EthereumNodeAdapter implements client.EthereumClient
var _ client.EthereumClient = (*EthereumNodeAdapter)(nil)

// NewEthereumNodeAdapter creates a new RPC adapter.
func NewEthereumNodeAdapter(rpcURL string, httpClient *http.Client, appLogger logger.AppLogger) *EthereumNodeAdapter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if appLogger == nil {
		appLogger = logger.Nop()
	}
	return &EthereumNodeAdapter{
		rpcURL:     rpcURL,
		httpClient: httpClient,
		logger:     appLogger.With("component", "rpc_adapter"),
	}
}

// GetLatestBlockNumber fetches the number of the most recent block.
func (a *EthereumNodeAdapter) GetLatestBlockNumber(ctx context.Context) (domain.BlockNumber, error) {
	respBody, err := a.doRPC(ctx, "eth_blockNumber", []interface{}{})
	if err != nil {
		return domain.BlockNumber{}, fmt.Errorf("RPC call failed: %w", err)
	}

	if isNullResult(respBody.Result) {
		return domain.BlockNumber{}, fmt.Errorf("RPC result is null for eth_blockNumber")
	}

	var resultStr string
	if err := json.Unmarshal(respBody.Result, &resultStr); err != nil {
		return domain.BlockNumber{}, fmt.Errorf("failed to unmarshal block number result: %w", err)
	}

	blockNumberInt, err := utils.HexToInt64(resultStr)
	if err != nil {
		return domain.BlockNumber{}, fmt.Errorf("failed to parse block number hex '%s': %w", resultStr, err)
	}

	return domain.NewBlockNumber(blockNumberInt)
}

// GetBlockWithTransactions fetches a block by its number and includes its transactions.
func (a *EthereumNodeAdapter) GetBlockWithTransactions(
	ctx context.Context,
	blockNumber domain.BlockNumber,
) (*domain.Block, error) {
	blockNumberHex := blockNumber.Hex()
	params := []interface{}{blockNumberHex, true}

	respBody, err := a.doRPC(ctx, "eth_getBlockByNumber", params)
	if err != nil {
		return nil, fmt.Errorf("RPC call failed: %w", err)
	}

	if isNullResult(respBody.Result) {
		a.logger.Debug("Received null result for block", "blockNumber", blockNumber.Value())
		return nil, fmt.Errorf("%w: %d", domain.ErrBlockNotFound, blockNumber.Value())
	}

	var rpcBlock Block
	if err := json.Unmarshal(respBody.Result, &rpcBlock); err != nil {
		a.logger.Error("Failed to unmarshal block",
			"blockNumber", blockNumber.Value(),
			"error", err,
		)
		return nil, fmt.Errorf("failed to unmarshal block result for block %s: %w", blockNumberHex, err)
	}

	block, err := mapRPCBlockToDomain(&rpcBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to map block %s: %w", blockNumberHex, err)
	}
	return block, nil
}

// GetTransactionReceipt fetches the receipt of a mined transaction.
func (a *EthereumNodeAdapter) GetTransactionReceipt(
	ctx context.Context,
	hash domain.TransactionHash,
) (*domain.Receipt, error) {
	respBody, err := a.doRPC(ctx, "eth_getTransactionReceipt", []interface{}{hash.String()})
	if err != nil {
		return nil, fmt.Errorf("RPC call failed: %w", err)
	}

	if isNullResult(respBody.Result) {
		a.logger.Debug("Received null result for receipt", "txHash", hash.String())
		return nil, fmt.Errorf("%w: %s", domain.ErrReceiptNotFound, hash)
	}

	var rpcReceipt Receipt
	if err := json.Unmarshal(respBody.Result, &rpcReceipt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal receipt result for %s: %w", hash, err)
	}

	receipt, err := mapRPCReceiptToDomain(&rpcReceipt)
	if err != nil {
		return nil, fmt.Errorf("failed to map receipt %s: %w", hash, err)
	}
	return receipt, nil
}

// doRPC performs the actual JSON-RPC call.
func (a *EthereumNodeAdapter) doRPC(
	ctx context.Context,
	method string,
	params []interface{},
) (*JSONRPCResponse, error) {
	reqBody := JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      a.requestID.Add(1),
	}

	jsonReqBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal RPC request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.rpcURL, bytes.NewBuffer(jsonReqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer func() {
		if errClose := httpResp.Body.Close(); errClose != nil {
			a.logger.Warn("Failed to close response body", "method", method, "error", errClose)
		}
	}()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP request failed with status %s: %s", httpResp.Status, string(bodyBytes))
	}

	var rpcResp JSONRPCResponse
	if err := json.Unmarshal(bodyBytes, &rpcResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal RPC response: %w, body: %s", err, string(bodyBytes))
	}

	if rpcResp.Error != nil {
		return nil, fmt.Errorf("RPC error: code=%d, message='%s'", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	return &rpcResp, nil
}

func isNullResult(raw json.RawMessage) bool {
	return len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null"
}
