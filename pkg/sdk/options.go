package indexflow

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/indexflow/internal/transport"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	readHosts  []string
	writeHosts []string

	requester     transport.Requester
	httpClient    *http.Client
	headers       map[string]string
	searchTimeout time.Duration
	writeTimeout  time.Duration

	cacheTTL time.Duration // zero = cache disabled
	backoff  Backoff

	logger          *slog.Logger
	transportLogger *zap.Logger
	metricsReg      prometheus.Registerer
}

// WithHosts sets one ordered host pool for both reads and writes.
// Hosts are bare names (https is assumed) or full URLs.
func WithHosts(hosts ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.readHosts = hosts
		c.writeHosts = hosts
	})
}

// WithReadHosts sets the hosts used for searches, browses and task status.
func WithReadHosts(hosts ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.readHosts = hosts
	})
}

// WithWriteHosts sets the hosts used for batch writes.
func WithWriteHosts(hosts ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.writeHosts = hosts
	})
}

// WithTransport replaces the HTTP transport. The requester owns retries and
// host failover and must be safe for concurrent use.
func WithTransport(r transport.Requester) Option {
	return optionFunc(func(c *clientConfig) {
		c.requester = r
	})
}

// WithHTTPClient sets the http.Client used by the default transport.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithHeader adds a header sent with every request, e.g. credentials.
func WithHeader(key, value string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	})
}

// WithTimeouts sets the per-host timeouts of the default transport.
// Defaults: 5s for searches, 30s for writes.
func WithTimeouts(search, write time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchTimeout = search
		c.writeTimeout = write
	})
}

// WithSearchCache enables the search response cache with the given TTL.
// A non-positive ttl uses the default of 2 minutes.
func WithSearchCache(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		c.cacheTTL = ttl
	})
}

// WithTaskBackoff sets the task polling schedule.
// Defaults: Base=100ms, Max=5s.
func WithTaskBackoff(base, maxDelay time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.backoff = Backoff{Base: base, Max: maxDelay}
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithTransportLogger sets the logger of the default HTTP transport, which
// reports host failover at debug level. Ignored with WithTransport.
func WithTransportLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.transportLogger = l
	})
}

// WithPrometheus registers SDK metrics (operations, durations, cache lookups,
// task polls) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
