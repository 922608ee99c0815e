package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"towncore/internal/index"
	"towncore/pkg/domain"
)

// Service serializes access to a Registry and maps its sentinel results onto
// the domain error taxonomy. Every operation is traced, timed, and logged.
type Service struct {
	mu       sync.Mutex
	registry *Registry
	logger   Logger
	metrics  MetricsRecorder
	tracer   Tracer
	audit    AuditRecorder
	clock    Clock
	newID    func() domain.TownID
}

// Option configures a Service.
type Option func(*Service)

// WithLogger overrides the service logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder installs a metrics sink.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithTracer installs a tracer.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithAuditRecorder installs an audit sink for mutating operations.
func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.audit = recorder
		}
	}
}

// WithClock overrides the clock used for timing and audit timestamps.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides how ids are assigned to towns registered without one.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = func() domain.TownID { return domain.TownID(fn()) }
		}
	}
}

// NewService constructs a service over an empty registry.
func NewService(opts ...Option) *Service {
	svc := &Service{
		registry: NewRegistry(),
		logger:   noopLogger{},
		metrics:  noopMetrics{},
		tracer:   noopTracer{},
		audit:    noopAudit{},
		clock:    systemClock{},
		newID:    func() domain.TownID { return domain.TownID(uuid.NewString()) },
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Stats summarizes the registry for health endpoints and metrics.
type Stats struct {
	Towns int         `json:"towns"`
	Index index.Stats `json:"index"`
}

// StatsObserver is implemented by metrics recorders that also track
// registry gauges. Service reports to it after every operation.
type StatsObserver interface {
	ObserveStats(stats Stats)
}

func (s *Service) stats() Stats {
	return Stats{Towns: s.registry.Len(), Index: s.registry.IndexStats()}
}

// run executes fn under the service lock with tracing, metrics and logging.
func (s *Service) run(ctx context.Context, op string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := s.tracer.Start(ctx, op)
	start := s.clock.Now()

	s.mu.Lock()
	err := fn()
	stats := s.stats()
	s.mu.Unlock()

	duration := s.clock.Now().Sub(start)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, duration)
	if observer, ok := s.metrics.(StatsObserver); ok {
		observer.ObserveStats(stats)
	}
	if err != nil {
		s.logger.Error("towncore operation failed", "operation", op, "duration", duration, "error", err)
		return err
	}
	s.logger.Debug("towncore operation completed", "operation", op, "duration", duration)
	return nil
}

// mutate runs a write operation and records its outcome for audit.
func (s *Service) mutate(ctx context.Context, op string, id domain.TownID, fn func() error) error {
	start := s.clock.Now()
	err := s.run(ctx, op, fn)
	entry := AuditEntry{
		Operation:  op,
		TownID:     string(id),
		Status:     AuditStatusSuccess,
		Duration:   s.clock.Now().Sub(start),
		RecordedAt: s.clock.Now(),
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)
	return err
}

func notFound(id domain.TownID) error {
	return fmt.Errorf("%w: %q", domain.ErrNotFound, id)
}

// Register adds a root town. An empty id is replaced by a generated one.
func (s *Service) Register(ctx context.Context, id domain.TownID, name string, x, y, tax int) (domain.Town, error) {
	if id == "" {
		id = s.newID()
	}
	var created domain.Town
	err := s.mutate(ctx, "register", id, func() error {
		if id == domain.NoID {
			return fmt.Errorf("%w: id %q is reserved", domain.ErrInvalidTown, id)
		}
		if tax < 0 {
			return fmt.Errorf("%w: negative tax %d", domain.ErrInvalidTown, tax)
		}
		if !domain.InRange(x, y) {
			return fmt.Errorf("%w: coordinates (%d, %d) out of range", domain.ErrInvalidTown, x, y)
		}
		if !s.registry.Register(id, name, x, y, tax) {
			return fmt.Errorf("%w: %q", domain.ErrAlreadyExists, id)
		}
		created, _ = s.registry.Town(id)
		return nil
	})
	return created, err
}

// Rename changes the name of a town.
func (s *Service) Rename(ctx context.Context, id domain.TownID, name string) (domain.Town, error) {
	var updated domain.Town
	err := s.mutate(ctx, "rename", id, func() error {
		if !s.registry.Rename(id, name) {
			return notFound(id)
		}
		updated, _ = s.registry.Town(id)
		return nil
	})
	return updated, err
}

// Remove unregisters a town, re-parenting its vassals.
func (s *Service) Remove(ctx context.Context, id domain.TownID) error {
	return s.mutate(ctx, "remove", id, func() error {
		if !s.registry.Remove(id) {
			return notFound(id)
		}
		return nil
	})
}

// Clear removes every town.
func (s *Service) Clear(ctx context.Context) error {
	return s.mutate(ctx, "clear", domain.NoID, func() error {
		s.registry.Clear()
		return nil
	})
}

// Link makes vassal a direct vassal of master.
func (s *Service) Link(ctx context.Context, vassal, master domain.TownID) error {
	return s.mutate(ctx, "link", vassal, func() error {
		return s.link(vassal, master)
	})
}

func (s *Service) link(vassal, master domain.TownID) error {
	if s.registry.Link(vassal, master) {
		return nil
	}
	for _, id := range []domain.TownID{vassal, master} {
		if _, ok := s.registry.Town(id); !ok {
			return notFound(id)
		}
	}
	return fmt.Errorf("%w: %q under %q", domain.ErrInvalidLink, vassal, master)
}

// Town returns the full record of id.
func (s *Service) Town(ctx context.Context, id domain.TownID) (domain.Town, error) {
	var town domain.Town
	err := s.run(ctx, "town", func() error {
		var ok bool
		if town, ok = s.registry.Town(id); !ok {
			return notFound(id)
		}
		return nil
	})
	return town, err
}

// Towns resolves ids to records, skipping ids that are no longer registered.
func (s *Service) Towns(ctx context.Context, ids []domain.TownID) ([]domain.Town, error) {
	var out []domain.Town
	err := s.run(ctx, "towns", func() error {
		out = make([]domain.Town, 0, len(ids))
		for _, id := range ids {
			if town, ok := s.registry.Town(id); ok {
				out = append(out, town)
			}
		}
		return nil
	})
	return out, err
}

func (s *Service) list(ctx context.Context, op string, fn func() []domain.TownID) ([]domain.TownID, error) {
	var out []domain.TownID
	err := s.run(ctx, op, func() error {
		out = fn()
		return nil
	})
	return out, err
}

// AllTowns returns every id in no particular order.
func (s *Service) AllTowns(ctx context.Context) ([]domain.TownID, error) {
	return s.list(ctx, "all_towns", s.registry.AllTowns)
}

// AllByName returns every id ordered by name.
func (s *Service) AllByName(ctx context.Context) ([]domain.TownID, error) {
	return s.list(ctx, "all_by_name", s.registry.AllByName)
}

// AllByDistance returns every id ordered by distance from the origin.
func (s *Service) AllByDistance(ctx context.Context) ([]domain.TownID, error) {
	return s.list(ctx, "all_by_distance", s.registry.AllByDistance)
}

// FindByName returns the ids carrying name, sorted by id.
func (s *Service) FindByName(ctx context.Context, name string) ([]domain.TownID, error) {
	return s.list(ctx, "find_by_name", func() []domain.TownID {
		return s.registry.FindByName(name)
	})
}

// DistanceFromPoint orders every id by Manhattan distance from (x, y).
func (s *Service) DistanceFromPoint(ctx context.Context, x, y int) ([]domain.TownID, error) {
	if !domain.InRange(x, y) {
		return nil, fmt.Errorf("%w: point (%d, %d)", domain.ErrOutOfRange, x, y)
	}
	return s.list(ctx, "distance_from_point", func() []domain.TownID {
		return s.registry.DistanceFromPoint(x, y)
	})
}

func (s *Service) extremum(ctx context.Context, op string, fn func() domain.TownID) (domain.TownID, error) {
	id := domain.NoID
	err := s.run(ctx, op, func() error {
		if id = fn(); id == domain.NoID {
			return fmt.Errorf("%w: registry is empty", domain.ErrNotFound)
		}
		return nil
	})
	return id, err
}

// MinDistance returns the town closest to the origin.
func (s *Service) MinDistance(ctx context.Context) (domain.TownID, error) {
	return s.extremum(ctx, "min_distance", s.registry.MinDistance)
}

// MaxDistance returns the town farthest from the origin.
func (s *Service) MaxDistance(ctx context.Context) (domain.TownID, error) {
	return s.extremum(ctx, "max_distance", s.registry.MaxDistance)
}

// NthDistance returns the n-th (1-based) town in distance order.
func (s *Service) NthDistance(ctx context.Context, n uint) (domain.TownID, error) {
	id := domain.NoID
	err := s.run(ctx, "nth_distance", func() error {
		if id = s.registry.NthDistance(n); id == domain.NoID {
			return fmt.Errorf("%w: %d of %d", domain.ErrOutOfRange, n, s.registry.Len())
		}
		return nil
	})
	return id, err
}

func (s *Service) path(ctx context.Context, op string, id domain.TownID, fn func(domain.TownID) []domain.TownID) ([]domain.TownID, error) {
	var out []domain.TownID
	err := s.run(ctx, op, func() error {
		if out = fn(id); out == nil {
			return notFound(id)
		}
		return nil
	})
	return out, err
}

// Vassals returns the direct vassals of id sorted by id.
func (s *Service) Vassals(ctx context.Context, id domain.TownID) ([]domain.TownID, error) {
	return s.path(ctx, "vassals", id, s.registry.Vassals)
}

// AncestorPath returns id followed by its masters up to the root.
func (s *Service) AncestorPath(ctx context.Context, id domain.TownID) ([]domain.TownID, error) {
	return s.path(ctx, "ancestor_path", id, s.registry.AncestorPath)
}

// DeepestDescendantPath returns the longest downward path from id.
func (s *Service) DeepestDescendantPath(ctx context.Context, id domain.TownID) ([]domain.TownID, error) {
	return s.path(ctx, "deepest_descendant_path", id, s.registry.DeepestDescendantPath)
}

// RetainedTax returns the tax id keeps after collecting from its vassals.
func (s *Service) RetainedTax(ctx context.Context, id domain.TownID) (int, error) {
	total := domain.NoValue
	err := s.run(ctx, "retained_tax", func() error {
		if total = s.registry.RetainedTax(id); total == domain.NoValue {
			return notFound(id)
		}
		return nil
	})
	return total, err
}

// Stats reports the registry size and index state.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	err := s.run(ctx, "stats", func() error {
		out = s.stats()
		return nil
	})
	return out, err
}
