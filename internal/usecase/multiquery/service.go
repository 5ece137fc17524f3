// Package multiquery sends batched queries and runs disjunctive faceting
// searches on top of them.
package multiquery

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/indexflow/internal/domain"
	"github.com/kailas-cloud/indexflow/internal/logger"
	"github.com/kailas-cloud/indexflow/internal/operation"
	"github.com/kailas-cloud/indexflow/internal/transport"
	"github.com/kailas-cloud/indexflow/internal/usecase/facet"
)

const (
	opMultipleQueries = "multiple_queries"
	opDisjunctive     = "search_disjunctive_faceting"
)

// Service issues multi-index query batches.
type Service struct {
	req   Requester
	hosts transport.Hosts
}

// New creates a multi-query service.
func New(req Requester, hosts transport.Hosts) *Service {
	return &Service{req: req, hosts: hosts}
}

// MultipleQueries returns an operation that sends queries as one batch and
// completes with one result per query, in request order.
func (s *Service) MultipleQueries(
	queries []IndexedQuery, strategy Strategy,
) *operation.Operation[[]domain.SearchResult] {
	return operation.New(opMultipleQueries, func(ctx context.Context, tok *operation.Token) ([]domain.SearchResult, error) {
		raw, err := s.Batch(ctx, tok, queries, strategy)
		if err != nil {
			return nil, err
		}
		results := make([]domain.SearchResult, 0, len(raw))
		for i, r := range raw {
			res, err := domain.DecodeSearchResult(opMultipleQueries, r)
			if err != nil {
				return nil, fmt.Errorf("result %d: %w", i, err)
			}
			results = append(results, res)
		}
		return results, nil
	})
}

// SearchDisjunctiveFaceting returns an operation that runs q with OR semantics
// inside each disjunctive facet and AND semantics across facets.
func (s *Service) SearchDisjunctiveFaceting(
	index string, q domain.Query, disjunctiveFacets []string, refinements domain.Refinements,
) *operation.Operation[domain.AggregatedResult] {
	queries := DisjunctiveQueries(index, q, disjunctiveFacets, refinements)
	return operation.New(opDisjunctive, func(ctx context.Context, tok *operation.Token) (domain.AggregatedResult, error) {
		raw, err := s.Batch(ctx, tok, queries, StrategyNone)
		if err != nil {
			return domain.AggregatedResult{}, err
		}
		if err := tok.Err(); err != nil {
			return domain.AggregatedResult{}, err
		}
		res, err := facet.AggregateResults(disjunctiveFacets, refinements, raw)
		if err != nil {
			return domain.AggregatedResult{}, fmt.Errorf("aggregate %s: %w", index, err)
		}
		return res, nil
	})
}

// Batch sends queries in one request and returns the raw results, validated
// to match the request one to one.
func (s *Service) Batch(
	ctx context.Context, tok *operation.Token, queries []IndexedQuery, strategy Strategy,
) ([]json.RawMessage, error) {
	if len(queries) == 0 {
		return nil, ErrEmptyBatch
	}
	if strategy == "" {
		strategy = StrategyNone
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	if err := tok.Err(); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Debug("Sending query batch",
		zap.Int("queries", len(queries)),
		zap.String("strategy", string(strategy)),
	)

	resp, err := s.req.PerformQuery(ctx, transport.Request{
		Path:     transport.MultiQueryPath,
		Method:   transport.MethodPost,
		Body:     batchBody{Requests: queries, Strategy: strategy},
		Hosts:    s.hosts.ForRead(),
		IsSearch: true,
	})
	if err != nil {
		return nil, domain.NewTransportError(opMultipleQueries, err)
	}

	raw, err := domain.DecodeResults(opMultipleQueries, resp)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(queries) {
		return nil, domain.NewInvalidResponse(opMultipleQueries, "results",
			fmt.Errorf("got %d results for %d queries", len(raw), len(queries)))
	}
	return raw, nil
}
