package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"deploy_config/internal/app/port"
	"deploy_config/internal/domain/entity"
	"deploy_config/internal/pkg/metrics"
)

const (
	defaultConnectionTimeout = 10 * time.Second
	defaultRPCCallTimeout    = 10 * time.Second
	defaultMaxConcurrent     = 4
	defaultCacheTTL          = 5 * time.Minute
)

// DialFunc opens a read-only client for rawURL.
type DialFunc func(ctx context.Context, rawURL string, callTimeout time.Duration) (port.ChainClient, error)

// ProberConfig configures a chainProber. Zero values fall back to defaults,
// except CacheCleanupInterval where zero disables the background janitor.
type ProberConfig struct {
	ConnectionTimeout    time.Duration
	RPCCallTimeout       time.Duration
	MaxConcurrent        int
	CacheTTL             time.Duration
	CacheCleanupInterval time.Duration
	RatePerSecond        float64 // per host; <= 0 means unlimited
	Burst                int
}

// chainProber implements port.ChainProber.
type chainProber struct {
	cfg    ProberConfig
	dial   DialFunc
	cache  *cache.Cache
	logger port.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewChainProber creates a prober for http(s) and ws(s) endpoints. HTTP endpoints
// share one fasthttp client; websocket endpoints are dialed with go-ethereum's ethclient.
func NewChainProber(cfg ProberConfig, log port.Logger) port.ChainProber {
	cfg = withDefaults(cfg)
	httpClient := NewHTTPClient(cfg.RPCCallTimeout)
	dial := func(ctx context.Context, rawURL string, callTimeout time.Duration) (port.ChainClient, error) {
		if isHTTP(rawURL) {
			return NewRPCClient(httpClient, rawURL, callTimeout), nil
		}
		return NewEVMClient(ctx, []string{rawURL}, cfg.ConnectionTimeout, callTimeout)
	}
	return NewChainProberWithDialer(cfg, dial, log)
}

func isHTTP(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// NewChainProberWithDialer creates a prober with a custom dialer.
func NewChainProberWithDialer(cfg ProberConfig, dial DialFunc, log port.Logger) port.ChainProber {
	cfg = withDefaults(cfg)
	return &chainProber{
		cfg:      cfg,
		dial:     dial,
		cache:    cache.New(cfg.CacheTTL, cfg.CacheCleanupInterval),
		logger:   log,
		limiters: make(map[string]*rate.Limiter),
	}
}

func withDefaults(cfg ProberConfig) ProberConfig {
	if cfg.ConnectionTimeout <= 0 {
		cfg.ConnectionTimeout = defaultConnectionTimeout
	}
	if cfg.RPCCallTimeout <= 0 {
		cfg.RPCCallTimeout = defaultRPCCallTimeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return cfg
}

// Probe checks a single network. Successful and mismatching results are cached per
// network and URL; transport errors are not, so the next call retries.
func (p *chainProber) Probe(ctx context.Context, network entity.ResolvedNetwork) entity.ProbeResult {
	key := network.Name + "|" + network.URL
	if cached, ok := p.cache.Get(key); ok {
		res := cached.(entity.ProbeResult)
		res.Cached = true
		metrics.NetworkProbes.WithLabelValues(network.Name, "cached").Inc()
		return res
	}

	res := entity.ProbeResult{
		Network:         network.Name,
		URL:             network.DisplayURL,
		ExpectedChainID: network.ChainID,
		CheckedAt:       time.Now().UTC(),
	}

	outcome := p.probe(ctx, network, &res)
	metrics.NetworkProbes.WithLabelValues(network.Name, outcome).Inc()
	metrics.NetworkProbeDuration.WithLabelValues(network.Name).Observe(res.Latency.Seconds())

	if outcome != "error" {
		p.cache.Set(key, res, cache.DefaultExpiration)
	}
	return res
}

func (p *chainProber) probe(ctx context.Context, network entity.ResolvedNetwork, res *entity.ProbeResult) string {
	if network.URL == "" {
		res.Error = "network has no url"
		return "error"
	}

	if err := p.limiterFor(network.URL).Wait(ctx); err != nil {
		res.Error = fmt.Sprintf("rate limiter: %v", err)
		return "error"
	}

	callTimeout := p.cfg.RPCCallTimeout
	if network.Timeout > 0 && network.Timeout < callTimeout {
		callTimeout = network.Timeout
	}

	start := time.Now()
	client, err := p.dial(ctx, network.URL, callTimeout)
	if err != nil {
		res.Latency = time.Since(start)
		res.Error = err.Error()
		p.logger.Warn("Failed to dial network endpoint", "network", network.Name, "url", network.DisplayURL, "error", err)
		return "error"
	}
	defer client.Close()

	id, err := client.ChainID(ctx)
	res.Latency = time.Since(start)
	if err != nil {
		res.Error = err.Error()
		p.logger.Warn("Chain id probe failed", "network", network.Name, "url", network.DisplayURL, "error", err)
		return "error"
	}
	res.ReportedChainID = id

	if block, err := client.BlockNumber(ctx); err == nil {
		res.BlockNumber = block
	} else {
		p.logger.Debug("Block number probe failed", "network", network.Name, "error", err)
	}

	if network.ChainID != 0 && id != network.ChainID {
		res.Error = fmt.Sprintf("%v: endpoint reports %d, expected %d", entity.ErrChainIDMismatch, id, network.ChainID)
		p.logger.Warn("Endpoint chain id does not match config", "network", network.Name, "reported", id, "expected", network.ChainID)
		return "mismatch"
	}

	res.OK = true
	p.logger.Info("Network endpoint verified", "network", network.Name, "chain_id", id, "block", res.BlockNumber, "latency", res.Latency)
	return "ok"
}

// ProbeAll probes networks concurrently, at most MaxConcurrent at a time.
// Results keep the order of networks.
func (p *chainProber) ProbeAll(ctx context.Context, networks []entity.ResolvedNetwork) []entity.ProbeResult {
	results := make([]entity.ProbeResult, len(networks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrent)
	for i, n := range networks {
		i, n := i, n
		g.Go(func() error {
			results[i] = p.Probe(gctx, n)
			return nil
		})
	}
	_ = g.Wait() // probes report failures in their results

	return results
}

func (p *chainProber) limiterFor(rawURL string) *rate.Limiter {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.limiters[host]; ok {
		return l
	}
	limit := rate.Inf
	if p.cfg.RatePerSecond > 0 {
		limit = rate.Limit(p.cfg.RatePerSecond)
	}
	l := rate.NewLimiter(limit, p.cfg.Burst)
	p.limiters[host] = l
	return l
}
