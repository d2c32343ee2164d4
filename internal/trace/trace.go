// Package trace keeps a bounded, thread-safe history of (x, y) samples.
package trace

import (
	"fmt"
	"math"
	"sync"

	"github.com/mikaelreiersolmoen/tracedog/internal/buffer"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures a Trace
type Option func(*traceOptions)

type traceOptions struct {
	replacing bool
	registry  prometheus.Registerer
	logger    *zap.Logger
}

// WithReplacing makes Add update the Y of an existing sample with the same X
// instead of inserting a second one.
func WithReplacing(replacing bool) Option {
	return func(o *traceOptions) {
		o.replacing = replacing
	}
}

// WithMetrics exports trace counters and gauges to the given registry.
// A nil registry is ignored.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *traceOptions) {
		o.registry = reg
	}
}

// WithLogger sets the logger used for resizes and drains
func WithLogger(logger *zap.Logger) Option {
	return func(o *traceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Trace is a named ring buffer of points guarded by a lock
type Trace struct {
	mu        sync.RWMutex
	name      string
	points    *buffer.RingBuffer[Point]
	replacing bool
	evictions int
	metrics   *traceMetrics
	logger    *zap.Logger
}

// Bounds is the bounding box of all retained points
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// New creates a trace holding at most capacity points
func New(name string, capacity int, opts ...Option) (*Trace, error) {
	o := &traceOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	points, err := buffer.New[Point](capacity)
	if err != nil {
		return nil, fmt.Errorf("trace %q: %w", name, err)
	}

	var metrics *traceMetrics
	if o.registry != nil {
		metrics, err = newTraceMetrics(o.registry, name)
		if err != nil {
			return nil, err
		}
		metrics.observe(0, 0, capacity)
	}

	return &Trace{
		name:      name,
		points:    points,
		replacing: o.replacing,
		metrics:   metrics,
		logger:    o.logger.With(zap.String("trace", name)),
	}, nil
}

// Name returns the trace name
func (t *Trace) Name() string {
	return t.name
}

// Replacing reports whether samples with equal X are updated in place
func (t *Trace) Replacing() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.replacing
}

// SetReplacing switches between appending and replacing mode
func (t *Trace) SetReplacing(replacing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replacing = replacing
}

// Add stores p. If the trace was full, the point that had to be overwritten
// is returned with ok set.
func (t *Trace) Add(p Point) (evicted Point, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	evicted, ok = t.addLocked(p)
	t.observeLocked()
	return evicted, ok
}

// AddBatch stores several points under a single lock
func (t *Trace) AddBatch(points []Point) (evictions int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range points {
		if _, ok := t.addLocked(p); ok {
			evictions++
		}
	}
	t.observeLocked()
	return evictions
}

func (t *Trace) addLocked(p Point) (Point, bool) {
	if t.replacing && t.points.ReplaceFunc(p, func(old Point) bool { return old.X == p.X }) {
		t.metrics.recordReplace()
		return Point{}, false
	}

	evicted, ok, err := t.points.Insert(p)
	if err != nil {
		// Unreachable: points is always built through buffer.New
		t.logger.Error("insert failed", zap.Error(err))
		return Point{}, false
	}
	if ok {
		t.evictions++
	}
	t.metrics.recordInsert(ok)
	return evicted, ok
}

// SetMaxSize changes the capacity. Shrinking never drops points: the oldest
// ones stay pending until removed.
func (t *Trace) SetMaxSize(capacity int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	from := t.points.Capacity()
	if err := t.points.Resize(capacity); err != nil {
		return fmt.Errorf("trace %q: %w", t.name, err)
	}
	t.logger.Info("trace resized",
		zap.Int("from", from),
		zap.Int("to", capacity),
		zap.Int("pending", t.points.Pending()),
	)
	t.observeLocked()
	return nil
}

// MaxSize returns the current capacity
func (t *Trace) MaxSize() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.points.Capacity()
}

// Size returns the number of retained points, including pending ones
func (t *Trace) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.points.Size()
}

// Pending returns the number of points displaced by a shrink
func (t *Trace) Pending() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.points.Pending()
}

// Evictions returns how many points were overwritten since creation
func (t *Trace) Evictions() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.evictions
}

// IsEmpty reports whether the trace holds no points
func (t *Trace) IsEmpty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.points.IsEmpty()
}

// Points returns a snapshot of all points, oldest first
func (t *Trace) Points() []Point {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]Point, 0, t.points.Size())
	for p := range t.points.All() {
		result = append(result, p)
	}
	return result
}

// Snapshot is a consistent copy of a trace's state
type Snapshot struct {
	Points    []Point // Oldest first; the first Pending entries await removal
	Pending   int
	Capacity  int
	Evictions int
}

// Snapshot copies the points and counters under a single lock
func (t *Trace) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	points := make([]Point, 0, t.points.Size())
	for p := range t.points.All() {
		points = append(points, p)
	}
	return Snapshot{
		Points:    points,
		Pending:   t.points.Pending(),
		Capacity:  t.points.Capacity(),
		Evictions: t.evictions,
	}
}

// Newest returns up to n points, newest first. n <= 0 returns all of them.
func (t *Trace) Newest(n int) []Point {
	t.mu.RLock()
	defer t.mu.RUnlock()

	size := t.points.Size()
	if n <= 0 || n > size {
		n = size
	}
	result := make([]Point, 0, n)
	for p := range t.points.Backward() {
		if len(result) == n {
			break
		}
		result = append(result, p)
	}
	return result
}

// Remove takes out the oldest point
func (t *Trace) Remove() (Point, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.points.Remove()
	if err != nil {
		return p, fmt.Errorf("trace %q: %w", t.name, err)
	}
	t.metrics.recordRemove(1)
	t.observeLocked()
	return p, nil
}

// Drain removes and returns every point, oldest first
func (t *Trace) Drain() []Point {
	t.mu.Lock()
	defer t.mu.Unlock()

	points := t.points.RemoveAll()
	t.metrics.recordRemove(len(points))
	t.observeLocked()
	t.logger.Debug("trace drained", zap.Int("points", len(points)))
	return points
}

// Bounds returns the bounding box of all points; ok is false for an empty trace
func (t *Trace) Bounds() (b Bounds, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.boundsLocked()
}

func (t *Trace) boundsLocked() (Bounds, bool) {
	if t.points.IsEmpty() {
		return Bounds{}, false
	}
	b := Bounds{
		MinX: math.Inf(1), MaxX: math.Inf(-1),
		MinY: math.Inf(1), MaxY: math.Inf(-1),
	}
	for p := range t.points.All() {
		b.MinX = math.Min(b.MinX, p.X)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b, true
}

// Visible returns the points whose X lies inside the range chosen by policy,
// oldest first, along with that range.
func (t *Trace) Visible(policy RangePolicy) (points []Point, lo, hi float64) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	b, ok := t.boundsLocked()
	if !ok {
		return nil, 0, 0
	}
	lo, hi = policy.Range(b.MinX, b.MaxX)
	for p := range t.points.All() {
		if p.X >= lo && p.X <= hi {
			points = append(points, p)
		}
	}
	return points, lo, hi
}

func (t *Trace) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.name + " " + t.points.String()
}

func (t *Trace) observeLocked() {
	t.metrics.observe(t.points.Size(), t.points.Pending(), t.points.Capacity())
}
