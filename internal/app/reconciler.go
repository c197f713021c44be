package app

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/platform/requestctx"
	"github.com/jsamuelsen/quotesync/internal/platform/telemetry"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// MessageQuotesAdded is the transient notice raised after a mutating cycle.
const MessageQuotesAdded = "New quotes were added from the server!"

// Reconciler pulls the remote quote list and merges it into the store.
type Reconciler struct {
	store    *QuoteStore
	remote   ports.RemoteQuoteSource
	notifier ports.Notifier
	exec     *Executor

	pushAfterMerge bool
	storeObservers []ports.StoreObserver
	syncObservers  []ports.SyncObserver
	now            func() time.Time

	running atomic.Bool
	last    atomic.Pointer[domain.SyncResult]

	// pushes tracks fire-and-forget pushes so Wait can drain them.
	pushes sync.WaitGroup
}

// ReconcilerOption customizes a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithPushAfterMerge pushes the merged list to the remote after a mutating cycle.
func WithPushAfterMerge(enabled bool) ReconcilerOption {
	return func(r *Reconciler) { r.pushAfterMerge = enabled }
}

// WithStoreObservers registers observers told about persisted list changes.
func WithStoreObservers(observers ...ports.StoreObserver) ReconcilerOption {
	return func(r *Reconciler) { r.storeObservers = append(r.storeObservers, observers...) }
}

// WithSyncObservers registers observers told about every finished cycle.
func WithSyncObservers(observers ...ports.SyncObserver) ReconcilerOption {
	return func(r *Reconciler) { r.syncObservers = append(r.syncObservers, observers...) }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) { r.now = now }
}

// NewReconciler wires a reconciler. notifier may be nil.
func NewReconciler(
	store *QuoteStore,
	remote ports.RemoteQuoteSource,
	notifier ports.Notifier,
	logger *slog.Logger,
	opts ...ReconcilerOption,
) *Reconciler {
	r := &Reconciler{
		store:    store,
		remote:   remote,
		notifier: notifier,
		exec:     NewExecutor(logger),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// cycle accumulates what one Sync call saw and did.
type cycle struct {
	fetched int
	plan    MergePlan
	updated int
	added   int
	saved   bool
}

// Sync runs one reconciliation cycle. It never returns an error: failures are
// logged and recorded in the result. A failed fetch leaves the store as it was;
// a failed save keeps the merge in memory, dirty, for the next save. A call
// made while another cycle is in flight returns at once with Skipped set.
func (r *Reconciler) Sync(ctx context.Context) domain.SyncResult {
	if !r.running.CompareAndSwap(false, true) {
		result := domain.SyncResult{StartedAt: r.now(), Skipped: true}
		logging.FromContextOr(ctx, r.exec.logger).DebugContext(ctx, "sync already running, cycle skipped")
		r.finished(ctx, result)

		return result
	}
	defer r.running.Store(false)

	cycleID := ulid.Make().String()
	ctx = logging.WithContext(ctx, logging.FromContextOr(ctx, r.exec.logger))
	ctx = logging.WithCycleID(ctx, cycleID)

	if requestctx.CorrelationID(ctx) == "" {
		ctx = requestctx.WithCorrelationID(ctx, cycleID)
	}

	ctx, span := telemetry.Tracer().Start(ctx, "sync.cycle",
		trace.WithAttributes(attribute.String("sync.cycle_id", cycleID)),
	)
	defer span.End()

	result := domain.SyncResult{CycleID: cycleID, StartedAt: r.now()}
	state := &cycle{}

	_, err := Execute(ctx, r.exec, r.operation(state), struct{}{})

	result.Duration = r.now().Sub(result.StartedAt)
	result.Fetched = state.fetched
	result.Updated = state.updated
	result.Added = state.added
	result.Saved = state.saved

	logger := logging.FromContext(ctx)

	if result.Changed() {
		result.Conflicts = state.plan.Conflicts
	}

	if err != nil {
		result.Err = err
		result.Error = err.Error()

		span.RecordError(err)
		span.SetStatus(codes.Error, result.Outcome())
		logger.WarnContext(ctx, "sync cycle failed",
			slog.String("outcome", result.Outcome()),
			slog.Any("error", err),
		)

		// The merge stays in memory for the next save; announce it now.
		if step, _ := FailedStep(err); step == StepArchive {
			r.announce(ctx, result)
		}

		r.finished(ctx, result)

		return result
	}

	span.SetAttributes(
		attribute.Int("sync.fetched", result.Fetched),
		attribute.Int("sync.added", result.Added),
		attribute.Int("sync.updated", result.Updated),
		attribute.Int("sync.conflicts", len(result.Conflicts)),
	)

	r.announce(ctx, result)

	if result.Changed() && r.pushAfterMerge {
		r.push(ctx)
	}

	logger.InfoContext(ctx, "sync cycle completed",
		slog.String("outcome", result.Outcome()),
		slog.Int("fetched", result.Fetched),
		slog.Int("added", result.Added),
		slog.Int("updated", result.Updated),
		slog.Int("conflicts", len(result.Conflicts)),
		slog.Duration("duration", result.Duration),
	)

	r.finished(ctx, result)

	return result
}

func (r *Reconciler) operation(state *cycle) Operation[struct{}, []domain.Quote, *cycle, struct{}] {
	return Operation[struct{}, []domain.Quote, *cycle, struct{}]{
		Name: "sync",
		Perform: func(ctx context.Context, _ struct{}) ([]domain.Quote, error) {
			return r.remote.FetchRemote(ctx)
		},
		Verify: func(_ context.Context, _ struct{}, remote []domain.Quote) (*cycle, error) {
			state.fetched = len(remote)
			state.plan = PlanMerge(r.store.Snapshot(), remote)

			return state, nil
		},
		Archive: func(ctx context.Context, _ struct{}, c *cycle) error {
			if c.plan.Changed() {
				c.updated, c.added = r.store.Apply(c.plan)
			}

			if !r.store.Dirty() {
				return nil
			}

			if err := r.store.Save(ctx); err != nil {
				return err
			}

			c.saved = true

			return nil
		},
	}
}

// announce raises conflict notices in detection order, then one transient
// notice, then tells store observers once the change is saved. A cycle that
// changed nothing stays quiet.
func (r *Reconciler) announce(ctx context.Context, result domain.SyncResult) {
	if r.notifier != nil && result.Changed() {
		for _, c := range result.Conflicts {
			r.notifier.Notify(ctx, ports.NotificationConflict, c.Message())
		}

		r.notifier.Notify(ctx, ports.NotificationInfo, MessageQuotesAdded)
	}

	if !result.Saved {
		return
	}

	quotes := r.store.Snapshot()
	for _, o := range r.storeObservers {
		o.QuotesChanged(ctx, quotes)
	}
}

func (r *Reconciler) push(ctx context.Context) {
	quotes := r.store.Snapshot()
	ctx = context.WithoutCancel(ctx)

	r.pushes.Go(func() {
		if err := r.remote.PushLocal(ctx, quotes); err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "pushing merged quotes failed", slog.Any("error", err))
		}
	})
}

func (r *Reconciler) finished(ctx context.Context, result domain.SyncResult) {
	if !result.Skipped {
		r.last.Store(&result)
	}

	for _, o := range r.syncObservers {
		o.CycleFinished(ctx, result)
	}
}

// Last returns the most recent completed cycle, if any.
func (r *Reconciler) Last() (domain.SyncResult, bool) {
	if p := r.last.Load(); p != nil {
		return *p, true
	}

	return domain.SyncResult{}, false
}

// Running reports whether a cycle is in flight.
func (r *Reconciler) Running() bool {
	return r.running.Load()
}

// Wait blocks until background pushes started by Sync have returned.
func (r *Reconciler) Wait() {
	r.pushes.Wait()
}
