package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks. The index is in memory and always
// reports ok; durable stores and event sinks are checked when configured.
type Service struct {
	storage Pinger
	events  Pinger
}

// New creates a Service. Both dependencies can be nil.
func New(storage, events Pinger) *Service {
	return &Service{storage: storage, events: events}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{"index": CheckOK}
	probe := func(name string, p Pinger) {
		if p == nil {
			return
		}
		if err := p.Ping(ctx); err != nil {
			checks[name] = CheckError
			return
		}
		checks[name] = CheckOK
	}
	probe("storage", s.storage)
	probe("events", s.events)

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	return Report{Status: status, Checks: checks}
}
