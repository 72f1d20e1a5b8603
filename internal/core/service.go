package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"propdesk/internal/infra/persistence/memory"
	"propdesk/pkg/domain"
)

// ErrHistoryUnsupported is returned by Undo and Redo when the store keeps no history.
var ErrHistoryUnsupported = errors.New("store does not support undo")

// Service serialises read-then-replace against the entity store. It runs the
// mutation engine, evaluates rules on the candidate snapshot, and reports to
// the configured logger, metrics, and audit recorders.
type Service struct {
	mu      sync.Mutex
	store   domain.EntityStore
	engine  *Engine
	rules   *domain.RulesEngine
	logger  Logger
	metrics MetricsRecorder
	audit   AuditRecorder
	clock   Clock
}

// Option customises a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	rules   *domain.RulesEngine
	logger  Logger
	metrics MetricsRecorder
	audit   AuditRecorder
	clock   Clock
}

// WithRulesEngine replaces the default rule set.
func WithRulesEngine(engine *domain.RulesEngine) Option {
	return func(o *serviceOptions) {
		if engine != nil {
			o.rules = engine
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger Logger) Option {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsRecorder sets the metrics sink.
func WithMetricsRecorder(metrics MetricsRecorder) Option {
	return func(o *serviceOptions) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// WithAuditRecorder sets the audit sink.
func WithAuditRecorder(audit AuditRecorder) Option {
	return func(o *serviceOptions) {
		if audit != nil {
			o.audit = audit
		}
	}
}

// WithClock sets the time source used for identifiers and timings.
func WithClock(clock Clock) Option {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// NewService constructs a service over store.
func NewService(store domain.EntityStore, opts ...Option) *Service {
	o := serviceOptions{
		logger:  noopLogger{},
		metrics: noopMetricsRecorder{},
		audit:   noopAuditRecorder{},
		clock:   ClockFunc(nil),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rules == nil {
		o.rules = NewDefaultRulesEngine(false)
	}
	return &Service{
		store:   store,
		engine:  NewEngine(o.clock),
		rules:   o.rules,
		logger:  o.logger,
		metrics: o.metrics,
		audit:   o.audit,
		clock:   o.clock,
	}
}

// NewInMemoryService creates a service over a fresh in-memory store.
func NewInMemoryService(opts ...Option) *Service {
	return NewService(memory.NewStore(), opts...)
}

// Store returns the underlying entity store.
func (s *Service) Store() domain.EntityStore { return s.store }

// RulesEngine returns the active rules engine.
func (s *Service) RulesEngine() *domain.RulesEngine { return s.rules }

// MutationResult reports what a committed mutation did. Violations holds
// the non-blocking rule findings.
type MutationResult struct {
	ID      string          `json:"id,omitempty"`
	Changes []domain.Change `json:"-"`
	Applied int             `json:"applied"`
	domain.Outcome
}

// Snapshot returns the current snapshot.
func (s *Service) Snapshot() domain.Snapshot {
	return s.store.Read()
}

// Dashboard summarises the current snapshot.
func (s *Service) Dashboard() Dashboard {
	return BuildDashboard(s.store.Read())
}

// PropositionDetail returns a proposition and its subtree.
func (s *Service) PropositionDetail(id string) (PropositionDetail, bool) {
	return BuildPropositionDetail(s.store.Read(), id)
}

// Add creates a record of type t from fields.
func (s *Service) Add(ctx context.Context, t domain.EntityType, fields domain.Fields) (MutationResult, error) {
	return s.apply(ctx, "add_"+string(t), t, "", func(snap domain.Snapshot) (Mutation, error) {
		return s.engine.Add(snap, t, fields)
	})
}

// Update replaces a record of type t wholesale. An unknown id is a no-op.
func (s *Service) Update(ctx context.Context, t domain.EntityType, fields domain.Fields) (MutationResult, error) {
	return s.apply(ctx, "update_"+string(t), t, fieldString(fields, "id"), func(snap domain.Snapshot) (Mutation, error) {
		return s.engine.Update(snap, t, fields)
	})
}

// Delete removes a record of type t and its subtree.
func (s *Service) Delete(ctx context.Context, t domain.EntityType, id string) (MutationResult, error) {
	return s.apply(ctx, "delete_"+string(t), t, id, func(snap domain.Snapshot) (Mutation, error) {
		return s.engine.Delete(snap, t, id)
	})
}

// EditBudgetLine applies a single calculator edit to a budget line.
func (s *Service) EditBudgetLine(ctx context.Context, id, field string, raw any) (MutationResult, error) {
	return s.apply(ctx, "edit_budget_line", domain.EntityBudgetLine, id, func(snap domain.Snapshot) (Mutation, error) {
		return s.engine.EditBudgetLine(snap, id, field, raw)
	})
}

// ReplacePropositionBudget swaps the whole budget of a proposition.
func (s *Service) ReplacePropositionBudget(ctx context.Context, propositionID string, lines []domain.BudgetLine) (MutationResult, error) {
	return s.apply(ctx, "replace_budget", domain.EntityProposition, propositionID, func(snap domain.Snapshot) (Mutation, error) {
		return s.engine.ReplacePropositionBudget(snap, propositionID, lines)
	})
}

// Import repairs snapshot and installs it as the current state.
func (s *Service) Import(ctx context.Context, snapshot domain.Snapshot) (RepairReport, error) {
	start := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	repaired, report := Repair(snapshot)
	err := s.store.Replace(ctx, repaired)
	s.observe(ctx, AuditEntry{Operation: "import", Changes: repaired.Total(), Err: err}, start)
	if err != nil {
		return report, err
	}
	if report.Changed() {
		s.logger.Warn("import repaired snapshot", "dropped", report.Dropped, "normalized", report.Normalized)
	}
	return report, nil
}

// ResetHistory makes the current snapshot the oldest undo point. Stores
// without history are left alone.
func (s *Service) ResetHistory() {
	h, ok := s.store.(interface{ ClearHistory() })
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ClearHistory()
}

// Undo restores the previous snapshot when the store keeps history.
func (s *Service) Undo(ctx context.Context) (bool, error) {
	return s.travel(ctx, "undo", func(h domain.HistoryStore) (bool, error) { return h.Undo(ctx) })
}

// Redo reapplies the last undone snapshot when the store keeps history.
func (s *Service) Redo(ctx context.Context) (bool, error) {
	return s.travel(ctx, "redo", func(h domain.HistoryStore) (bool, error) { return h.Redo(ctx) })
}

func (s *Service) travel(ctx context.Context, op string, fn func(domain.HistoryStore) (bool, error)) (bool, error) {
	history, ok := s.store.(domain.HistoryStore)
	if !ok {
		return false, ErrHistoryUnsupported
	}
	start := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	moved, err := fn(history)
	entry := AuditEntry{Operation: op, Err: err}
	if !moved && err == nil {
		entry.Status = AuditStatusNoop
	}
	s.observe(ctx, entry, start)
	return moved, err
}

func (s *Service) apply(ctx context.Context, op string, t domain.EntityType, id string, fn func(domain.Snapshot) (Mutation, error)) (MutationResult, error) {
	start := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := AuditEntry{Operation: op, Entity: t, EntityID: id}
	m, err := fn(s.store.Read())
	if err != nil {
		entry.Err = err
		s.observe(ctx, entry, start)
		return MutationResult{}, err
	}
	if m.ID != "" {
		entry.EntityID = m.ID
	}
	if !m.Changed() {
		entry.Status = AuditStatusNoop
		s.observe(ctx, entry, start)
		return MutationResult{ID: m.ID}, nil
	}

	verdict, err := s.rules.Evaluate(ctx, m.Snapshot, m.Changes)
	if err != nil {
		entry.Err = err
		s.observe(ctx, entry, start)
		return MutationResult{}, err
	}
	entry.Violations = verdict.Violations
	if verdict.HasBlocking() {
		entry.Err = domain.RuleViolationError{Outcome: verdict}
		s.observe(ctx, entry, start)
		return MutationResult{Outcome: verdict}, entry.Err
	}
	if err := s.store.Replace(ctx, m.Snapshot); err != nil {
		entry.Err = err
		s.observe(ctx, entry, start)
		return MutationResult{}, err
	}
	for _, v := range verdict.Violations {
		s.logger.Warn("rule violation", "rule", v.Rule, "severity", v.Severity, "entity", v.Entity, "entity_id", v.EntityID, "message", v.Message)
	}
	entry.Changes = len(m.Changes)
	s.observe(ctx, entry, start)
	return MutationResult{ID: m.ID, Changes: m.Changes, Applied: len(m.Changes), Outcome: verdict}, nil
}

func (s *Service) observe(ctx context.Context, entry AuditEntry, start time.Time) {
	entry.At = s.clock.Now()
	entry.Duration = entry.At.Sub(start)
	if entry.Status == "" {
		entry.Status = AuditStatusSuccess
		if entry.Err != nil {
			entry.Status = AuditStatusError
		}
	}
	s.metrics.Observe(ctx, entry.Operation, entry.Err == nil, entry.Duration)
	s.audit.Record(ctx, entry)
	if entry.Err != nil {
		s.logger.Error("operation failed", "operation", entry.Operation, "entity", entry.Entity, "entity_id", entry.EntityID, "error", entry.Err)
		return
	}
	s.logger.Debug("operation complete", "operation", entry.Operation, "entity_id", entry.EntityID, "changes", entry.Changes, "status", entry.Status)
}
