package indexflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/indexflow/internal/cache"
	"github.com/kailas-cloud/indexflow/internal/domain"
	"github.com/kailas-cloud/indexflow/internal/operation"
	"github.com/kailas-cloud/indexflow/internal/transport"
	transporthttp "github.com/kailas-cloud/indexflow/internal/transport/http"
	"github.com/kailas-cloud/indexflow/internal/usecase/deletebyquery"
	"github.com/kailas-cloud/indexflow/internal/usecase/health"
	"github.com/kailas-cloud/indexflow/internal/usecase/multiquery"
	searchuc "github.com/kailas-cloud/indexflow/internal/usecase/search"
	"github.com/kailas-cloud/indexflow/internal/usecase/task"
)

const (
	defaultCacheTTL = searchuc.DefaultCacheTTL

	opWaitTasks = "wait_tasks"
)

// Internal interfaces, substituted in tests.
type searchUseCase interface {
	Search(index string, q domain.Query) *operation.Operation[domain.SearchResult]
	EnableCache(ttl time.Duration)
	DisableCache()
	ClearCache()
	CacheEnabled() bool
}

type multiQueryUseCase interface {
	MultipleQueries(queries []multiquery.IndexedQuery, strategy multiquery.Strategy) *operation.Operation[[]domain.SearchResult]
	SearchDisjunctiveFaceting(
		index string, q domain.Query, disjunctiveFacets []string, refinements domain.Refinements,
	) *operation.Operation[domain.AggregatedResult]
}

type deleteUseCase interface {
	DeleteByQuery(index string, q domain.Query) *operation.Operation[deletebyquery.Result]
}

type taskUseCase interface {
	WaitTask(index string, taskID int64) *operation.Operation[domain.TaskStatus]
	Wait(ctx context.Context, tok *operation.Token, index string, taskID int64) (domain.TaskStatus, error)
}

type healthUseCase interface {
	Check(ctx context.Context) health.Report
}

// Client is the indexflow SDK entry point. It is safe for concurrent use;
// the search cache is shared by every Index obtained from it.
type Client struct {
	searchSvc searchUseCase
	multiSvc  multiQueryUseCase
	deleteSvc deleteUseCase
	taskSvc   taskUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. At least one host is required.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.readHosts) == 0 && len(cfg.writeHosts) == 0 {
		return nil, errors.New("indexflow: at least one host required (use WithHosts)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	req := cfg.requester
	if req == nil {
		req = transporthttp.New(transporthttp.Config{
			HTTPClient:    cfg.httpClient,
			Headers:       cfg.headers,
			SearchTimeout: cfg.searchTimeout,
			WriteTimeout:  cfg.writeTimeout,
			Logger:        cfg.transportLogger,
		})
	}

	return wireClient(req, cfg, obs), nil
}

func wireClient(req transport.Requester, cfg *clientConfig, obs *observer) *Client {
	hosts := transport.Hosts{Read: cfg.readHosts, Write: cfg.writeHosts}

	taskSvc := task.New(req, hosts).
		WithBackoff(cfg.backoff).
		WithPollCounter(obs.pollCounter())
	searchSvc := searchuc.New(req, hosts).
		WithCacheOptions(cache.WithCounter(obs.cacheCounter()))
	if cfg.cacheTTL > 0 {
		searchSvc.EnableCache(cfg.cacheTTL)
	}

	return &Client{
		searchSvc: searchSvc,
		multiSvc:  multiquery.New(req, hosts),
		deleteSvc: deletebyquery.New(req, hosts, taskSvc),
		taskSvc:   taskSvc,
		healthSvc: health.New(req, hosts),
		obs:       obs,
	}
}

// Index returns the workflows of one index.
func (c *Client) Index(name string) *Index {
	return &Index{name: name, c: c}
}

// MultipleQueries sends queries as one batch. The operation completes with
// one result per query, in order.
func (c *Client) MultipleQueries(queries []IndexedQuery, strategy Strategy) *Operation[[]SearchResult] {
	return track(c.obs, c.multiSvc.MultipleQueries(queries, strategy))
}

// MultipleQueriesSync runs MultipleQueries and waits for it.
func (c *Client) MultipleQueriesSync(ctx context.Context, queries []IndexedQuery, strategy Strategy) ([]SearchResult, error) {
	return c.MultipleQueries(queries, strategy).Run(ctx)
}

// WaitTasks waits for several tasks, keyed by index name, concurrently.
// The first failure stops the remaining waits.
func (c *Client) WaitTasks(tasks map[string]int64) *Operation[map[string]TaskStatus] {
	op := operation.New(opWaitTasks, func(ctx context.Context, tok *operation.Token) (map[string]TaskStatus, error) {
		var (
			mu  sync.Mutex
			out = make(map[string]TaskStatus, len(tasks))
		)
		g, gctx := errgroup.WithContext(ctx)
		for index, taskID := range tasks {
			g.Go(func() error {
				st, err := c.taskSvc.Wait(gctx, tok, index, taskID)
				if err != nil {
					return err
				}
				mu.Lock()
				out[index] = st
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil
	})
	return track(c.obs, op)
}

// WaitTasksSync runs WaitTasks and waits for it.
func (c *Client) WaitTasksSync(ctx context.Context, tasks map[string]int64) (map[string]TaskStatus, error) {
	return c.WaitTasks(tasks).Run(ctx)
}

// EnableSearchCache starts caching search responses for ttl, discarding any
// previously cached ones. A non-positive ttl uses the default of 2 minutes.
func (c *Client) EnableSearchCache(ttl time.Duration) {
	c.searchSvc.EnableCache(ttl)
}

// DisableSearchCache stops caching and drops cached responses.
func (c *Client) DisableSearchCache() {
	c.searchSvc.DisableCache()
}

// ClearSearchCache drops cached responses and keeps the cache enabled.
func (c *Client) ClearSearchCache() {
	c.searchSvc.ClearCache()
}

// SearchCacheEnabled reports whether search responses are being cached.
func (c *Client) SearchCacheEnabled() bool {
	return c.searchSvc.CacheEnabled()
}

// Health checks every configured host once, bypassing failover.
func (c *Client) Health(ctx context.Context) HealthReport {
	return c.healthSvc.Check(ctx)
}
