// Package rpc provides a thin JSON-RPC client for the ledger endpoint.
//
// The client exposes exactly the three capabilities the sync pipeline
// needs: current chain height, raw event logs for a filter, and a block's
// timestamp. It carries no retry logic; retry at chunk granularity is the
// range fetcher's responsibility.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Ojukwu12/Nodepulse/internal/core/domain"
	"github.com/Ojukwu12/Nodepulse/internal/indexing/metrics"
)

// Filter selects logs for GetLogs. Topics are OR-matched against the
// first topic position (the event signature hash).
type Filter struct {
	Address   string
	FromBlock uint64
	ToBlock   uint64
	Topics    []string
}

// Client is the capability boundary to the remote ledger.
type Client interface {
	// BlockNumber returns the current chain height.
	BlockNumber(ctx context.Context) (uint64, error)

	// GetLogs returns raw event logs matching the filter, in provider order.
	GetLogs(ctx context.Context, filter Filter) ([]domain.RawLog, error)

	// BlockTimestamp returns the timestamp of a block, or nil if the block
	// is unknown to the provider.
	BlockTimestamp(ctx context.Context, blockNumber uint64) (*time.Time, error)
}

// HTTPClient implements Client over JSON-RPC 2.0 / HTTP.
type HTTPClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPClient creates a client for a single JSON-RPC endpoint.
func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *HTTPClient) BlockNumber(ctx context.Context) (uint64, error) {
	result, err := c.call(ctx, "eth_blockNumber", []any{})
	if err != nil {
		return 0, err
	}

	var blockHex string
	if err := json.Unmarshal(result, &blockHex); err != nil {
		return 0, &TransportError{Method: "eth_blockNumber", Err: fmt.Errorf("parse result: %w", err)}
	}

	height, err := parseHexUint(blockHex)
	if err != nil {
		return 0, &TransportError{Method: "eth_blockNumber", Err: err}
	}
	return height, nil
}

func (c *HTTPClient) GetLogs(ctx context.Context, filter Filter) ([]domain.RawLog, error) {
	params := map[string]any{
		"fromBlock": hexUint(filter.FromBlock),
		"toBlock":   hexUint(filter.ToBlock),
	}
	if filter.Address != "" {
		params["address"] = filter.Address
	}
	if len(filter.Topics) > 0 {
		// All candidate event signatures go in position 0 as an OR-list.
		params["topics"] = []any{filter.Topics}
	}

	result, err := c.call(ctx, "eth_getLogs", []any{params})
	if err != nil {
		return nil, err
	}

	var wire []struct {
		Address         string   `json:"address"`
		Topics          []string `json:"topics"`
		Data            string   `json:"data"`
		BlockNumber     string   `json:"blockNumber"`
		TransactionHash string   `json:"transactionHash"`
	}
	if err := json.Unmarshal(result, &wire); err != nil {
		return nil, &TransportError{Method: "eth_getLogs", Err: fmt.Errorf("parse result: %w", err)}
	}

	logs := make([]domain.RawLog, 0, len(wire))
	for _, w := range wire {
		blockNum, err := parseHexUint(w.BlockNumber)
		if err != nil {
			return nil, &TransportError{Method: "eth_getLogs", Err: fmt.Errorf("log block number: %w", err)}
		}
		logs = append(logs, domain.RawLog{
			Address:     w.Address,
			Topics:      w.Topics,
			Data:        w.Data,
			BlockNumber: blockNum,
			TxHash:      w.TransactionHash,
		})
	}
	return logs, nil
}

func (c *HTTPClient) BlockTimestamp(ctx context.Context, blockNumber uint64) (*time.Time, error) {
	result, err := c.call(ctx, "eth_getBlockByNumber", []any{hexUint(blockNumber), false})
	if err != nil {
		return nil, err
	}
	if string(result) == "null" {
		return nil, nil
	}

	var block struct {
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(result, &block); err != nil {
		return nil, &TransportError{Method: "eth_getBlockByNumber", Err: fmt.Errorf("parse result: %w", err)}
	}

	secs, err := parseHexUint(block.Timestamp)
	if err != nil {
		return nil, &TransportError{Method: "eth_getBlockByNumber", Err: fmt.Errorf("block timestamp: %w", err)}
	}
	ts := time.Unix(int64(secs), 0).UTC()
	return &ts, nil
}

// call performs a single JSON-RPC request and returns the raw result.
// Every failure mode is wrapped in a TransportError.
func (c *HTTPClient) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	start := time.Now()
	metrics.RPCCallsTotal.WithLabelValues(method).Inc()

	reqBody := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, c.fail(method, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, c.fail(method, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(method, fmt.Errorf("rpc call: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(method, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.fail(method, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, c.fail(method, fmt.Errorf("parse response: %w", err))
	}
	if rpcResp.Error != nil {
		return nil, c.fail(method, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message))
	}

	metrics.RPCLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	return rpcResp.Result, nil
}

func (c *HTTPClient) fail(method string, err error) error {
	metrics.RPCErrorsTotal.WithLabelValues(method).Inc()
	return &TransportError{Method: method, Err: err}
}

func hexUint(n uint64) string {
	return fmt.Sprintf("0x%x", n)
}

func parseHexUint(s string) (uint64, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	if trimmed == "" {
		return 0, fmt.Errorf("empty hex value %q", s)
	}
	v, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hex value %q: %w", s, err)
	}
	return v, nil
}
