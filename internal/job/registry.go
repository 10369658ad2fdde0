package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seqcenter/annoserve/internal/apperrors"
	"github.com/seqcenter/annoserve/internal/metrics"
	"github.com/seqcenter/annoserve/internal/workflow"
)

// DefaultReconcileInterval is the pause between reconciliation runs.
const DefaultReconcileInterval = 15 * time.Second

// Registry is the authoritative in-memory map of known jobs. It is
// kept consistent with the workflow engine by a background
// reconciliation loop started by Start.
//
// The mutex guards the map and its records. Mutate and Remove run
// their callback while holding the write lock, which is the
// single-writer discipline start/delete rely on for their
// check-then-act sequences; no other code path holds the lock across
// an outbound call.
type Registry struct {
	mu       sync.RWMutex
	records  map[string]*Record
	engine   Engine
	interval time.Duration
	logger   *zap.Logger
}

// NewRegistry constructs a Registry. The loop is not running until
// Start is called.
func NewRegistry(engine Engine, interval time.Duration, logger *zap.Logger) *Registry {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	return &Registry{
		records:  make(map[string]*Record),
		engine:   engine,
		interval: interval,
		logger:   logger,
	}
}

// Start performs one synchronous reconciliation and, on success,
// launches the background loop. A failed initial fetch is fatal: the
// registry must not answer authorization checks from a map that was
// never populated, because "not found" has to mean truly absent.
//
// The loop runs until ctx is cancelled, which in normal operation is
// process shutdown.
func (r *Registry) Start(ctx context.Context) error {
	if err := r.reconcile(ctx); err != nil {
		return fmt.Errorf("initial execution fetch: %w", err)
	}
	go r.run(ctx)
	return nil
}

func (r *Registry) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.reconcile(ctx); err != nil {
				// Best effort: keep the previous map state and retry
				// on the next tick.
				r.logger.Error("reconciliation failed", zap.Error(err))
			}
		}
	}
}

// reconcile pulls the engine's execution list and merges it into the
// map. Items that cannot be parsed are skipped individually; only the
// fetch itself can fail the run.
func (r *Registry) reconcile(ctx context.Context) error {
	start := time.Now()
	items, err := r.engine.ListExecutions(ctx)
	if err != nil {
		metrics.ObserveReconcileRun("fetch_error", time.Since(start))
		return err
	}

	r.mu.Lock()
	for _, item := range items {
		partial, err := recordFromExecution(item)
		if err != nil {
			r.logger.Warn("skipping unparseable execution",
				zap.String("execution", item.Metadata.Name),
				zap.Error(err),
			)
			metrics.ObserveReconcileItemSkipped()
			continue
		}
		r.mergeLocked(partial)
	}
	counts := make(map[Status]int, 5)
	for _, rec := range r.records {
		counts[rec.Status]++
	}
	r.mu.Unlock()

	for _, status := range []Status{StatusUninitialized, StatusPending, StatusRunning, StatusSucceeded, StatusFailed} {
		metrics.SetJobsByStatus(string(status), counts[status])
	}
	metrics.ObserveReconcileRun("ok", time.Since(start))
	return nil
}

// recordFromExecution parses one engine-reported execution into a
// partial record keyed by the embedded job id label.
func recordFromExecution(e workflow.Execution) (Record, error) {
	rawID, ok := e.Metadata.Labels[workflow.LabelJobID]
	if !ok {
		return Record{}, fmt.Errorf("execution carries no %s label", workflow.LabelJobID)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return Record{}, fmt.Errorf("parse job id label: %w", err)
	}
	status, err := ParsePhase(e.Status.Phase)
	if err != nil {
		return Record{}, err
	}

	updated := time.Now().UTC()
	if e.Status.FinishedAt != nil {
		updated = *e.Status.FinishedAt
	}
	name, ok := e.Metadata.Labels[workflow.LabelName]
	if !ok {
		name = "Unknown name"
	}
	secret, ok := e.Metadata.Labels[workflow.LabelSecret]
	if !ok {
		secret = "Unknown"
	}

	return Record{
		ID:            id.String(),
		Secret:        secret,
		DisplayName:   name,
		Status:        status,
		ExecutionName: e.Metadata.Name,
		ExecutionUID:  e.Metadata.UID,
		StartedAt:     e.Status.StartedAt,
		UpdatedAt:     updated,
		Retired:       e.Archived(),
	}, nil
}

// mergeLocked upserts a reconciled partial record. Records the
// registry created locally keep their init-time secret and display
// name; a record only ever seen on the engine (cold start) takes both
// from the execution labels. A terminal status is never regressed.
func (r *Registry) mergeLocked(in Record) {
	existing, ok := r.records[in.ID]
	if !ok {
		cp := in
		r.records[in.ID] = &cp
		return
	}

	in.Secret = existing.Secret
	in.DisplayName = existing.DisplayName
	if existing.Status.Terminal() && !in.Status.Terminal() {
		// Stale engine view; keep the terminal record and only track
		// the archival flag.
		existing.Retired = in.Retired
		return
	}
	*existing = in
}

// Insert registers a newly initialized record.
func (r *Registry) Insert(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := rec
	r.records[rec.ID] = &cp
}

// Get returns a copy of the record, if present.
func (r *Registry) Get(id string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Mutate runs fn with exclusive access to the record. fn may mutate
// the record in place; an error from fn leaves whatever fn already
// wrote, so callers mutate only after every fallible step succeeded.
// Returns a not-found error for unknown ids.
func (r *Registry) Mutate(id string, fn func(*Record) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return apperrors.NotFound("job", id)
	}
	return fn(rec)
}

// Remove runs fn on a copy of the record and deletes it from the map
// only if fn succeeds. Returns a not-found error for unknown ids.
func (r *Registry) Remove(id string, fn func(Record) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return apperrors.NotFound("job", id)
	}
	if err := fn(*rec); err != nil {
		return err
	}
	delete(r.records, id)
	return nil
}
