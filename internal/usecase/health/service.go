package health

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/indexflow/internal/transport"
)

// IsAlivePath is the liveness endpoint of the index service.
const IsAlivePath = "/1/isalive"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all hosts answer.
	Healthy Status = "ok"
	// Degraded indicates some hosts fail; requests still fail over.
	Degraded Status = "degraded"
	// Unhealthy indicates no host answers.
	Unhealthy Status = "error"
)

// CheckResult represents one host check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing check.
	CheckError CheckResult = "error"
)

// Report aggregates check results, keyed by host.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service checks every configured host.
type Service struct {
	req   Requester
	hosts transport.Hosts
}

// New creates a Service.
func New(req Requester, hosts transport.Hosts) *Service {
	return &Service{req: req, hosts: hosts}
}

// Check calls each distinct host concurrently. Each request targets a single
// host so that failover does not hide a dead one. A failing check is recorded,
// not returned, so every host is always checked.
func (s *Service) Check(ctx context.Context) Report {
	hosts := s.distinctHosts()
	checks := make(map[string]CheckResult, len(hosts))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, h := range hosts {
		g.Go(func() error {
			res := CheckOK
			if _, err := s.req.PerformQuery(ctx, transport.Request{
				Path:     IsAlivePath,
				Method:   transport.MethodGet,
				Hosts:    []string{h},
				IsSearch: true,
			}); err != nil {
				res = CheckError
			}
			mu.Lock()
			checks[h] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case len(checks) == 0 || failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}

func (s *Service) distinctHosts() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, pool := range [][]string{s.hosts.ForRead(), s.hosts.ForWrite()} {
		for _, h := range pool {
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			out = append(out, h)
		}
	}
	return out
}
