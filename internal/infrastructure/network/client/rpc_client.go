package client

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"

	"deploy_config/internal/app/port"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	ID     uint64    `json:"id"`
	Result string    `json:"result"`
	Error  *rpcError `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCClient speaks plain JSON-RPC over HTTP(S) with a shared fasthttp client.
// It covers the two quantity-returning calls the prober needs.
type RPCClient struct {
	client  *fasthttp.Client
	rpcURL  string
	timeout time.Duration
	nextID  atomic.Uint64
}

var _ port.ChainClient = (*RPCClient)(nil)

// NewHTTPClient returns the fasthttp client shared by RPCClients.
func NewHTTPClient(timeout time.Duration) *fasthttp.Client {
	return &fasthttp.Client{
		Name:                "deployconfig-probe",
		ReadTimeout:         timeout,
		WriteTimeout:        timeout,
		MaxIdleConnDuration: 30 * time.Second,
	}
}

// NewRPCClient creates an RPCClient for rpcURL.
func NewRPCClient(client *fasthttp.Client, rpcURL string, timeout time.Duration) *RPCClient {
	return &RPCClient{client: client, rpcURL: rpcURL, timeout: timeout}
}

// ChainID implements port.ChainClient.
func (c *RPCClient) ChainID(ctx context.Context) (uint64, error) {
	return c.callQuantity(ctx, "eth_chainId")
}

// BlockNumber implements port.ChainClient.
func (c *RPCClient) BlockNumber(ctx context.Context) (uint64, error) {
	return c.callQuantity(ctx, "eth_blockNumber")
}

// Close is a no-op; connections belong to the shared fasthttp client.
func (c *RPCClient) Close() {}

func (c *RPCClient) callQuantity(ctx context.Context, method string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", method, err)
	}

	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: c.nextID.Add(1), Method: method, Params: []any{}})
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.rpcURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return 0, fmt.Errorf("%s failed: %w", method, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return 0, fmt.Errorf("%s failed with HTTP status %d", method, resp.StatusCode())
	}

	var out rpcResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return 0, fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if out.Error != nil {
		return 0, fmt.Errorf("%s failed: rpc error %d: %s", method, out.Error.Code, out.Error.Message)
	}
	n, err := hexutil.DecodeUint64(out.Result)
	if err != nil {
		return 0, fmt.Errorf("%s returned %q: %w", method, out.Result, err)
	}
	return n, nil
}
