package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"deploy_config/internal/app/port"
	"deploy_config/internal/domain/entity"
	"deploy_config/internal/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
		goleak.IgnoreAnyFunction("github.com/valyala/fasthttp.(*HostClient).connsCleaner"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

// newRPCServer answers eth_chainId and eth_blockNumber the way a node would.
func newRPCServer(t *testing.T, chainID, block uint64, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if calls != nil {
			calls.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		switch req.Method {
		case "eth_chainId":
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":%q}`, req.ID, hexutil.EncodeUint64(chainID))
		case "eth_blockNumber":
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":%q}`, req.ID, hexutil.EncodeUint64(block))
		default:
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"error":{"code":-32601,"message":"method not found"}}`, req.ID)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testProberConfig() ProberConfig {
	return ProberConfig{
		ConnectionTimeout: 2 * time.Second,
		RPCCallTimeout:    2 * time.Second,
		MaxConcurrent:     2,
		CacheTTL:          time.Minute,
	}
}

func network(name, url string, chainID uint64) entity.ResolvedNetwork {
	return entity.ResolvedNetwork{Name: name, URL: url, DisplayURL: url, ChainID: chainID}
}

func TestProbe_MatchingChainID(t *testing.T) {
	srv := newRPCServer(t, 44787, 1234, nil)
	p := NewChainProber(testProberConfig(), logger.Nop())

	res := p.Probe(context.Background(), network("alfajores", srv.URL, 44787))

	assert.True(t, res.OK, res.Error)
	assert.Empty(t, res.Error)
	assert.Equal(t, uint64(44787), res.ReportedChainID)
	assert.Equal(t, uint64(1234), res.BlockNumber)
	assert.False(t, res.Cached)
	assert.False(t, res.CheckedAt.IsZero())
}

func TestProbe_Mismatch(t *testing.T) {
	srv := newRPCServer(t, 42220, 1, nil)
	p := NewChainProber(testProberConfig(), logger.Nop())

	res := p.Probe(context.Background(), network("alfajores", srv.URL, 44787))

	assert.False(t, res.OK)
	assert.Equal(t, uint64(42220), res.ReportedChainID)
	assert.Contains(t, res.Error, entity.ErrChainIDMismatch.Error())
	assert.Contains(t, res.Error, "42220")
}

func TestProbe_NoExpectedChainIDAcceptsAnyID(t *testing.T) {
	srv := newRPCServer(t, 31337, 0, nil)
	p := NewChainProber(testProberConfig(), logger.Nop())

	res := p.Probe(context.Background(), network("localhost", srv.URL, 0))

	assert.True(t, res.OK, res.Error)
	assert.Equal(t, uint64(31337), res.ReportedChainID)
}

func TestProbe_CachesResult(t *testing.T) {
	var calls atomic.Int32
	srv := newRPCServer(t, 42220, 7, &calls)
	p := NewChainProber(testProberConfig(), logger.Nop())
	n := network("celo", srv.URL, 42220)

	first := p.Probe(context.Background(), n)
	require.True(t, first.OK, first.Error)
	seen := calls.Load()

	second := p.Probe(context.Background(), n)
	assert.True(t, second.OK)
	assert.True(t, second.Cached)
	assert.Equal(t, seen, calls.Load(), "cached probe must not hit the endpoint")
}

type fakeClient struct {
	id     uint64
	idErr  error
	closed *atomic.Int32
}

func (f *fakeClient) ChainID(context.Context) (uint64, error)     { return f.id, f.idErr }
func (f *fakeClient) BlockNumber(context.Context) (uint64, error) { return 0, errors.New("unsupported") }
func (f *fakeClient) Close()                                      { f.closed.Add(1) }

func TestProbe_ErrorsAreNotCached(t *testing.T) {
	var dials, closed atomic.Int32
	dial := func(ctx context.Context, rawURL string, _ time.Duration) (port.ChainClient, error) {
		dials.Add(1)
		return &fakeClient{idErr: errors.New("connection refused"), closed: &closed}, nil
	}
	p := NewChainProberWithDialer(testProberConfig(), dial, logger.Nop())
	n := network("celo", "http://node.invalid", 42220)

	first := p.Probe(context.Background(), n)
	second := p.Probe(context.Background(), n)

	assert.False(t, first.OK)
	assert.Contains(t, first.Error, "connection refused")
	assert.False(t, second.Cached)
	assert.Equal(t, int32(2), dials.Load())
	assert.Equal(t, int32(2), closed.Load())
}

func TestProbe_DialFailure(t *testing.T) {
	dial := func(ctx context.Context, rawURL string, _ time.Duration) (port.ChainClient, error) {
		return nil, errors.New("dial tcp: no route to host")
	}
	p := NewChainProberWithDialer(testProberConfig(), dial, logger.Nop())

	res := p.Probe(context.Background(), network("celo", "http://node.invalid", 42220))

	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "no route to host")
}

func TestProbe_EmptyURL(t *testing.T) {
	p := NewChainProberWithDialer(testProberConfig(), nil, logger.Nop())

	res := p.Probe(context.Background(), network("celo", "", 42220))

	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Error)
}

func TestProbeAll_KeepsOrder(t *testing.T) {
	alfajores := newRPCServer(t, 44787, 10, nil)
	celo := newRPCServer(t, 42220, 20, nil)
	local := newRPCServer(t, 31337, 30, nil)
	p := NewChainProber(testProberConfig(), logger.Nop())

	results := p.ProbeAll(context.Background(), []entity.ResolvedNetwork{
		network("localhost", local.URL, 0),
		network("alfajores", alfajores.URL, 44787),
		network("celo", celo.URL, 42220),
	})

	require.Len(t, results, 3)
	assert.Equal(t, "localhost", results[0].Network)
	assert.Equal(t, "alfajores", results[1].Network)
	assert.Equal(t, "celo", results[2].Network)
	for _, r := range results {
		assert.True(t, r.OK, "%s: %s", r.Network, r.Error)
	}
	assert.Equal(t, uint64(20), results[2].BlockNumber)
}

func TestProbe_CancelledContext(t *testing.T) {
	dial := func(ctx context.Context, rawURL string, _ time.Duration) (port.ChainClient, error) {
		t.Fatal("dial must not run after the rate limiter rejects a cancelled context")
		return nil, nil
	}
	cfg := testProberConfig()
	cfg.RatePerSecond = 0.001
	p := NewChainProberWithDialer(cfg, dial, logger.Nop())
	n := network("celo", "http://node.invalid", 42220)

	// consume the single token for this host
	p.(*chainProber).limiterFor(n.URL).Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := p.Probe(ctx, n)

	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "rate limiter")
}
