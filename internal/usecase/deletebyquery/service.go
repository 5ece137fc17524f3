// Package deletebyquery deletes every record matching a query by browsing the
// index, deleting each page of matches and waiting for the deletion to be
// published before browsing again.
package deletebyquery

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/indexflow/internal/domain"
	"github.com/kailas-cloud/indexflow/internal/logger"
	"github.com/kailas-cloud/indexflow/internal/operation"
	"github.com/kailas-cloud/indexflow/internal/transport"
)

const (
	opDeleteByQuery = "delete_by_query"
	opBrowse        = "browse"
	opBatch         = "batch"

	actionDeleteObject = "deleteObject"
)

// Result summarizes a finished delete-by-query.
type Result struct {
	Deleted int `json:"deleted"`
	Batches int `json:"batches"`
}

// Service runs delete-by-query workflows.
type Service struct {
	req   Requester
	hosts transport.Hosts
	tasks TaskWaiter
}

// New creates a delete-by-query service.
func New(req Requester, hosts transport.Hosts, tasks TaskWaiter) *Service {
	return &Service{req: req, hosts: hosts, tasks: tasks}
}

// DeleteByQuery returns an operation deleting every record of index matching q.
func (s *Service) DeleteByQuery(index string, q domain.Query) *operation.Operation[Result] {
	return operation.New(opDeleteByQuery, func(ctx context.Context, tok *operation.Token) (Result, error) {
		return s.Run(ctx, tok, index, q)
	})
}

// workflow is the mutable state of one run.
type workflow struct {
	index  string
	query  domain.Query
	cursor string
	page   domain.BrowsePage
	ids    []string
	taskID int64
	result Result
}

// Run drives the workflow to completion. Phases run strictly in sequence and
// the token is checked before each one.
func (s *Service) Run(ctx context.Context, tok *operation.Token, index string, q domain.Query) (Result, error) {
	w := &workflow{
		index: index,
		query: q.Clone().Set(domain.ParamAttributesToRetrieve, []string{domain.ObjectIDAttribute}),
	}
	log := logger.FromContext(ctx).With(zap.String("index", index))

	for p := phaseBrowsing; p != phaseDone; {
		if err := tok.Err(); err != nil {
			return w.result, err
		}
		next, err := s.step(ctx, tok, w, p)
		if err != nil {
			log.Debug("Delete by query failed",
				zap.Stringer("phase", p),
				zap.Int("deleted", w.result.Deleted),
				zap.Error(err),
			)
			return w.result, fmt.Errorf("delete by query %s: %s: %w", index, p, err)
		}
		p = next
	}

	log.Debug("Delete by query finished",
		zap.Int("deleted", w.result.Deleted),
		zap.Int("batches", w.result.Batches),
	)
	return w.result, nil
}

func (s *Service) step(ctx context.Context, tok *operation.Token, w *workflow, p phase) (phase, error) {
	switch p {
	case phaseBrowsing:
		page, err := s.browse(ctx, w.index, w.query, w.cursor)
		if err != nil {
			return p, err
		}
		w.page = page
		return phaseCollecting, nil

	case phaseCollecting:
		ids, err := domain.ObjectIDs(opBrowse, w.page.Hits)
		if err != nil {
			return p, err
		}
		w.ids = ids
		if len(ids) == 0 {
			return phaseDeciding, nil
		}
		return phaseDeleting, nil

	case phaseDeleting:
		taskID, err := s.deleteObjects(ctx, w.index, w.ids)
		if err != nil {
			return p, err
		}
		w.taskID = taskID
		return phaseWaiting, nil

	case phaseWaiting:
		if _, err := s.tasks.Wait(ctx, tok, w.index, w.taskID); err != nil {
			return p, err
		}
		w.result.Deleted += len(w.ids)
		w.result.Batches++
		return phaseDeciding, nil

	case phaseDeciding:
		if w.page.Cursor == "" {
			return phaseDone, nil
		}
		if len(w.ids) > 0 {
			// Deleting invalidated the cursor; browse again from the start.
			w.cursor = ""
		} else {
			w.cursor = w.page.Cursor
		}
		w.ids = nil
		return phaseBrowsing, nil
	}
	return phaseDone, fmt.Errorf("unexpected phase %d", p)
}

type browseBody struct {
	Params domain.Query `json:"params"`
	Cursor string       `json:"cursor,omitempty"`
}

func (s *Service) browse(ctx context.Context, index string, q domain.Query, cursor string) (domain.BrowsePage, error) {
	raw, err := s.req.PerformQuery(ctx, transport.Request{
		Path:     transport.IndexPath(index, "browse"),
		Method:   transport.MethodPost,
		Body:     browseBody{Params: q, Cursor: cursor},
		Hosts:    s.hosts.ForRead(),
		IsSearch: true,
	})
	if err != nil {
		return domain.BrowsePage{}, domain.NewTransportError(opBrowse, err)
	}
	return domain.DecodeBrowsePage(opBrowse, raw)
}

type batchOperation struct {
	Action string         `json:"action"`
	Body   map[string]any `json:"body"`
}

type batchBody struct {
	Requests []batchOperation `json:"requests"`
}

func (s *Service) deleteObjects(ctx context.Context, index string, ids []string) (int64, error) {
	body := batchBody{Requests: make([]batchOperation, 0, len(ids))}
	for _, id := range ids {
		body.Requests = append(body.Requests, batchOperation{
			Action: actionDeleteObject,
			Body:   map[string]any{domain.ObjectIDAttribute: id},
		})
	}

	raw, err := s.req.PerformQuery(ctx, transport.Request{
		Path:   transport.IndexPath(index, "batch"),
		Method: transport.MethodPost,
		Body:   body,
		Hosts:  s.hosts.ForWrite(),
	})
	if err != nil {
		return 0, domain.NewTransportError(opBatch, err)
	}
	resp, err := domain.DecodeBatchResponse(opBatch, raw)
	if err != nil {
		return 0, err
	}
	return resp.TaskID, nil
}
