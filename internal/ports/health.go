package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned when a checker name is registered twice.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is implemented by components that can report their health.
//
//	func (s *Store) Name() string { return "storage" }
//	func (s *Store) Check(ctx context.Context) error { return s.db.PingContext(ctx) }
type HealthChecker interface {
	// Name identifies the check in responses.
	Name() string

	// Check returns nil when healthy. It must respect ctx.
	Check(ctx context.Context) error
}

// HealthRegistry aggregates health checks from multiple components.
type HealthRegistry interface {
	// Register adds a critical checker: its failure makes the service unhealthy.
	Register(checker HealthChecker) error

	// RegisterOptional adds a checker whose failure only degrades the service.
	// The remote endpoint is optional: quotes keep working offline.
	RegisterOptional(checker HealthChecker) error

	// CheckAll runs every registered check concurrently.
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus represents the overall health state.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult contains the aggregated health check results.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult contains the result of a single health check.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Optional bool          `json:"optional,omitempty"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

type registration struct {
	checker  HealthChecker
	optional bool
}

// DefaultHealthRegistry is a thread-safe implementation of HealthRegistry.
type DefaultHealthRegistry struct {
	mu      sync.RWMutex
	entries []registration
}

// NewHealthRegistry creates an empty health registry.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{}
}

// Register adds a critical health checker.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	return r.add(checker, false)
}

// RegisterOptional adds a checker that can only degrade overall status.
func (r *DefaultHealthRegistry) RegisterOptional(checker HealthChecker) error {
	return r.add(checker, true)
}

func (r *DefaultHealthRegistry) add(checker HealthChecker, optional bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	for _, e := range r.entries {
		if e.checker.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
		}
	}

	r.entries = append(r.entries, registration{checker: checker, optional: optional})

	return nil
}

// CheckAll runs all registered health checks concurrently and folds their
// statuses: any critical failure is unhealthy, optional failures only degrade.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	entries := append([]registration(nil), r.entries...)
	r.mu.RUnlock()

	result := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(entries)),
		Timestamp: time.Now(),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, e := range entries {
		wg.Go(func() {
			start := time.Now()
			err := e.checker.Check(ctx)

			cr := &CheckResult{
				Status:   HealthStatusHealthy,
				Optional: e.optional,
				Duration: time.Since(start),
			}

			if err != nil {
				cr.Status = HealthStatusUnhealthy
				cr.Message = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()

			result.Checks[e.checker.Name()] = cr

			switch {
			case err == nil:
			case !e.optional:
				result.Status = HealthStatusUnhealthy
			case result.Status == HealthStatusHealthy:
				result.Status = HealthStatusDegraded
			}
		})
	}

	wg.Wait()

	return result
}
