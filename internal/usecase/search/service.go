// Package search runs single-index queries through an optional response cache.
package search

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/indexflow/internal/cache"
	"github.com/kailas-cloud/indexflow/internal/domain"
	"github.com/kailas-cloud/indexflow/internal/logger"
	"github.com/kailas-cloud/indexflow/internal/operation"
	"github.com/kailas-cloud/indexflow/internal/transport"
)

const opSearch = "search"

// DefaultCacheTTL is used by EnableCache when ttl is not positive.
const DefaultCacheTTL = 2 * time.Minute

// Service runs index queries. The response cache is shared by every index
// queried through the same Service and is off until EnableCache.
type Service struct {
	req   Requester
	hosts transport.Hosts

	mu        sync.RWMutex
	cache     *cache.Expiring
	cacheOpts []cache.Option
}

// New creates a search service with the cache disabled.
func New(req Requester, hosts transport.Hosts) *Service {
	return &Service{req: req, hosts: hosts}
}

// WithCacheOptions sets the options applied to every cache created by EnableCache.
func (s *Service) WithCacheOptions(opts ...cache.Option) *Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheOpts = opts
	return s
}

// EnableCache replaces the response cache with an empty one expiring entries after ttl.
func (s *Service) EnableCache(ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = cache.New(ttl, s.cacheOpts...)
}

// DisableCache drops the response cache.
func (s *Service) DisableCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = nil
}

// ClearCache empties the response cache, if enabled.
func (s *Service) ClearCache() {
	if c := s.current(); c != nil {
		c.Clear()
	}
}

// CacheEnabled reports whether responses are being cached.
func (s *Service) CacheEnabled() bool { return s.current() != nil }

func (s *Service) current() *cache.Expiring {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache
}

// CacheKey derives the cache key of a query on path: the path followed by the
// parameters encoded with sorted keys.
func CacheKey(path string, q domain.Query) (string, error) {
	params, err := q.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return path + "?" + string(params), nil
}

type queryBody struct {
	Params domain.Query `json:"params"`
}

// Search returns an operation that queries index. The cache is consulted
// when the operation starts, so enabling, disabling or clearing it affects
// operations created earlier. On a miss the response is fetched and, on
// success, cached before delivery.
func (s *Service) Search(index string, q domain.Query) *operation.Operation[domain.SearchResult] {
	path := transport.IndexPath(index, "query")
	params := q.Clone()
	return operation.New(opSearch, func(ctx context.Context, tok *operation.Token) (domain.SearchResult, error) {
		if err := tok.Err(); err != nil {
			return domain.SearchResult{}, err
		}

		c := s.current()
		var key string
		if c != nil {
			var err error
			if key, err = CacheKey(path, params); err != nil {
				return domain.SearchResult{}, err
			}
			if raw, ok := c.Lookup(key); ok {
				if res, err := domain.DecodeSearchResult(opSearch, raw); err == nil {
					return res, nil
				}
			}
		}

		raw, err := s.req.PerformQuery(ctx, transport.Request{
			Path:     path,
			Method:   transport.MethodPost,
			Body:     queryBody{Params: params},
			Hosts:    s.hosts.ForRead(),
			IsSearch: true,
		})
		if err != nil {
			return domain.SearchResult{}, domain.NewTransportError(opSearch, err)
		}
		res, err := domain.DecodeSearchResult(opSearch, raw)
		if err != nil {
			return domain.SearchResult{}, err
		}
		if c != nil {
			c.Insert(key, raw)
			logger.FromContext(ctx).Debug("Cached search response",
				zap.String("index", index),
				zap.Int("nb_hits", res.NbHits),
			)
		}
		return res, nil
	})
}
