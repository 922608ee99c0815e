package core

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// outcome labels a finished operation the same way audit entries do.
func outcome(success bool) string {
	if success {
		return string(AuditStatusSuccess)
	}
	return string(AuditStatusError)
}

// OperationTotals accumulates the calls of one registry operation.
type OperationTotals struct {
	Success int64   `json:"success"`
	Error   int64   `json:"error"`
	TotalMS float64 `json:"total_ms"`
	MaxMS   float64 `json:"max_ms"`
}

// Calls returns the number of observed calls.
func (o OperationTotals) Calls() int64 { return o.Success + o.Error }

// RegistryMetrics is what ExpvarRecorder publishes: per-operation totals
// plus the registry shape after the last operation.
type RegistryMetrics struct {
	Operations map[string]OperationTotals `json:"operations"`
	Registry   Stats                      `json:"registry"`
	TakenAt    time.Time                  `json:"taken_at"`
}

var expvarCount atomic.Uint64

// ExpvarRecorder is a MetricsRecorder and StatsObserver that keeps its totals
// in memory and serves them as one expvar variable.
type ExpvarRecorder struct {
	name string

	mu    sync.Mutex
	ops   map[string]OperationTotals
	stats Stats
}

// NewExpvarRecorder publishes a recorder under name, or under a fresh
// towncore_metrics_N name when name is empty. expvar names are process
// global; publishing the same name twice panics.
func NewExpvarRecorder(name string) *ExpvarRecorder {
	if name == "" {
		name = fmt.Sprintf("towncore_metrics_%d", expvarCount.Add(1))
	}
	r := &ExpvarRecorder{name: name, ops: make(map[string]OperationTotals)}
	expvar.Publish(name, expvar.Func(func() any { return r.Metrics() }))
	return r
}

// Name is the expvar variable the recorder is published under.
func (r *ExpvarRecorder) Name() string { return r.name }

// Observe implements MetricsRecorder. Unnamed operations are dropped.
func (r *ExpvarRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	ms := millis(duration)
	r.mu.Lock()
	defer r.mu.Unlock()
	tot := r.ops[operation]
	if success {
		tot.Success++
	} else {
		tot.Error++
	}
	tot.TotalMS += ms
	tot.MaxMS = max(tot.MaxMS, ms)
	r.ops[operation] = tot
}

// ObserveStats implements StatsObserver.
func (r *ExpvarRecorder) ObserveStats(stats Stats) {
	r.mu.Lock()
	r.stats = stats
	r.mu.Unlock()
}

// Metrics copies the current totals.
func (r *ExpvarRecorder) Metrics() RegistryMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RegistryMetrics{
		Operations: maps.Clone(r.ops),
		Registry:   r.stats,
		TakenAt:    time.Now().UTC(),
	}
}

// SpanRecord is one finished operation as written by SpanLog.
type SpanRecord struct {
	Operation  string    `json:"operation"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	Start      time.Time `json:"start"`
	DurationMS float64   `json:"duration_ms"`
}

// SpanLog is a Tracer that appends every finished span to an in-memory log
// and, when a writer is set, emits it there as one JSON line.
type SpanLog struct {
	mu      sync.Mutex
	out     *json.Encoder
	records []SpanRecord
}

// NewSpanLog returns a span log writing to w; w may be nil.
func NewSpanLog(w io.Writer) *SpanLog {
	l := &SpanLog{}
	if w != nil {
		l.out = json.NewEncoder(w)
	}
	return l
}

// Records returns the spans finished so far, oldest first.
func (l *SpanLog) Records() []SpanRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]SpanRecord(nil), l.records...)
}

// Start implements Tracer.
func (l *SpanLog) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &loggedSpan{log: l, op: operation, start: time.Now().UTC()}
}

type loggedSpan struct {
	log   *SpanLog
	op    string
	start time.Time
}

func (s *loggedSpan) End(err error) {
	rec := SpanRecord{
		Operation:  s.op,
		Outcome:    outcome(err == nil),
		Start:      s.start,
		DurationMS: millis(time.Since(s.start)),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	s.log.mu.Lock()
	defer s.log.mu.Unlock()
	s.log.records = append(s.log.records, rec)
	if s.log.out != nil {
		_ = s.log.out.Encode(rec)
	}
}
