package task

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/indexflow/internal/domain"
	"github.com/kailas-cloud/indexflow/internal/logger"
	"github.com/kailas-cloud/indexflow/internal/operation"
	"github.com/kailas-cloud/indexflow/internal/transport"
)

const opWaitTask = "wait_task"

// Service polls task status until the task is published.
type Service struct {
	req     Requester
	hosts   transport.Hosts
	backoff Backoff
	polls   *prometheus.CounterVec
}

// New creates a task poller with the default backoff.
func New(req Requester, hosts transport.Hosts) *Service {
	return &Service{req: req, hosts: hosts, backoff: DefaultBackoff()}
}

// WithBackoff overrides the polling schedule. Zero fields keep their defaults.
func (s *Service) WithBackoff(b Backoff) *Service {
	if b.Base > 0 {
		s.backoff.Base = b.Base
	}
	if b.Max > 0 {
		s.backoff.Max = b.Max
	}
	return s
}

// Poll outcomes used as the "status" label. Any status other than published
// counts as pending.
const (
	pollPublished = "published"
	pollPending   = "pending"
	pollError     = "error"
)

// WithPollCounter counts status requests on a counter vec with label "status".
func (s *Service) WithPollCounter(polls *prometheus.CounterVec) *Service {
	s.polls = polls
	return s
}

// Backoff returns the configured schedule.
func (s *Service) Backoff() Backoff { return s.backoff }

// WaitTask returns an operation that completes once the task is published.
func (s *Service) WaitTask(index string, taskID int64) *operation.Operation[domain.TaskStatus] {
	return operation.New(opWaitTask, func(ctx context.Context, tok *operation.Token) (domain.TaskStatus, error) {
		return s.Wait(ctx, tok, index, taskID)
	})
}

// Wait polls until the task is published, the token is cancelled, or the
// transport fails. Transport errors are not retried here.
func (s *Service) Wait(
	ctx context.Context, tok *operation.Token, index string, taskID int64,
) (domain.TaskStatus, error) {
	log := logger.FromContext(ctx).With(zap.String("index", index), zap.Int64("task_id", taskID))
	path := transport.TaskPath(index, taskID)

	for n := 1; ; n++ {
		if err := tok.Err(); err != nil {
			return domain.TaskStatus{}, err
		}

		raw, err := s.req.PerformQuery(ctx, transport.Request{
			Path:   path,
			Method: transport.MethodGet,
			Hosts:  s.hosts.ForRead(),
		})
		if err != nil {
			s.countPoll(pollError)
			return domain.TaskStatus{}, domain.NewTransportError(opWaitTask, err)
		}

		status, err := domain.DecodeTaskStatus(opWaitTask, raw)
		if err != nil {
			s.countPoll(pollError)
			return domain.TaskStatus{}, err
		}
		if status.Published() {
			s.countPoll(pollPublished)
			log.Debug("Task published", zap.Int("polls", n))
			return status, nil
		}

		s.countPoll(pollPending)

		delay := s.backoff.Delay(n)
		log.Debug("Task not published yet",
			zap.String("status", status.Status),
			zap.Int("attempt", n),
			zap.Duration("delay", delay),
		)
		if err := tok.Sleep(ctx, delay); err != nil {
			return domain.TaskStatus{}, fmt.Errorf("wait task %d: %w", taskID, err)
		}
	}
}

func (s *Service) countPoll(status string) {
	if s.polls != nil {
		s.polls.WithLabelValues(status).Inc()
	}
}
