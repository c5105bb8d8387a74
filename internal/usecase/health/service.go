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
	// CheckEmpty indicates a reachable but empty collection.
	CheckEmpty CheckResult = "empty"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db          DBPinger
	collections []CollectionCounter
}

// New creates a Service. Each collection gets its own check.
func New(db DBPinger, collections ...CollectionCounter) *Service {
	return &Service{db: db, collections: collections}
}

// Check runs health checks against all components. An empty collection is
// reported but does not degrade the service.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	for _, c := range s.collections {
		n, err := c.Count(ctx)
		switch {
		case err != nil:
			checks[c.Collection()] = CheckError
		case n == 0:
			checks[c.Collection()] = CheckEmpty
		default:
			checks[c.Collection()] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
