package source

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/OldStager01/car-analytics/internal/events"
	"github.com/OldStager01/car-analytics/internal/logger"
	"github.com/OldStager01/car-analytics/internal/metrics"
	"github.com/OldStager01/car-analytics/internal/resilience"
	"github.com/OldStager01/car-analytics/pkg/models"
)

const breakerName = "live-store"

type Config struct {
	// RetryAfter is how long the snapshot is served after a live failure
	// before the next connect attempt.
	RetryAfter time.Duration
	Publisher  *events.Publisher
	Metrics    *metrics.Metrics
	Clock      func() time.Time
}

// Status describes what the resolver is currently doing.
type Status struct {
	Source        models.SourceKind `json:"source,omitempty"`
	LiveConnected bool              `json:"live_connected"`
	Degraded      bool              `json:"degraded"`
	Breaker       string            `json:"breaker"`
}

// Resolver hands out datasets backed by either the live store or the
// snapshot. The store handle and the snapshot are each created at most
// once and reused for the life of the resolver.
type Resolver struct {
	connector Connector
	snapshot  SnapshotReader
	breaker   *resilience.CircuitBreaker
	publisher *events.Publisher
	metrics   *metrics.Metrics

	storeMu sync.Mutex
	store   Store

	snapMu sync.Mutex
	snap   *models.Dataset

	flight     singleflight.Group
	degraded   atomic.Bool
	lastSource atomic.Value
}

func NewResolver(connector Connector, snapshot SnapshotReader, cfg Config) *Resolver {
	m := cfg.Metrics
	if m == nil {
		m = metrics.Get()
	}

	r := &Resolver{
		connector: connector,
		snapshot:  snapshot,
		publisher: cfg.Publisher,
		metrics:   m,
	}

	r.breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:        breakerName,
		MaxFailures: 1,
		HalfOpenMax: 1,
		Timeout:     cfg.RetryAfter,
		Clock:       cfg.Clock,
		OnStateChange: func(name string, from, to resilience.State) {
			m.SetCircuitBreakerState(name, int(to))
			logger.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Debug("Circuit breaker state changed")
		},
	})

	return r
}

// Resolve returns a dataset from the live store when it is reachable and
// from the snapshot otherwise. Only a snapshot failure or the caller's own
// cancellation is returned as an error; the former wraps
// ErrSnapshotUnavailable.
func (r *Resolver) Resolve(ctx context.Context) (*models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, err := r.resolveLive(ctx)
	if err == nil {
		r.markRestored()
		r.record(ds)
		return ds, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	r.markDegraded(ctx, err)

	ds, err = r.loadSnapshot()
	if err != nil {
		return nil, err
	}
	r.record(ds)
	return ds, nil
}

// resolveLive waits for the shared live attempt. Concurrent callers join
// the attempt in flight, so a down store costs one connect timeout no
// matter how many requests are waiting on it.
func (r *Resolver) resolveLive(ctx context.Context) (*models.Dataset, error) {
	ch := r.flight.DoChan("live", func() (interface{}, error) {
		return r.attemptLive(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Dataset), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// attemptLive runs on a context detached from any one caller. The connect
// and query timeouts of the connector still bound it.
func (r *Resolver) attemptLive(ctx context.Context) (*models.Dataset, error) {
	var ds *models.Dataset

	err := r.breaker.Execute(func() error {
		store, err := r.handle(ctx)
		if err != nil {
			return err
		}

		records, err := store.Cars(ctx)
		if err != nil {
			return fmt.Errorf("%w: scan cars: %v", ErrSourceUnavailable, err)
		}

		ds = models.NewDataset(models.SourceLive, records)
		return nil
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil, fmt.Errorf("%w: waiting before next connect attempt", ErrSourceUnavailable)
	}
	return ds, err
}

// handle returns the memoized store, connecting on first use.
func (r *Resolver) handle(ctx context.Context) (Store, error) {
	r.storeMu.Lock()
	defer r.storeMu.Unlock()

	if r.store != nil {
		return r.store, nil
	}

	conn := r.connector.Connect(ctx)
	if !conn.Available() {
		return nil, conn.Err
	}

	r.store = conn.Store
	logger.WithSource(string(models.SourceLive)).Info("Live store connection established")
	return r.store, nil
}

// Check reports whether a dataset can be served right now without scanning
// the live store. It never connects and never counts against the breaker.
func (r *Resolver) Check(ctx context.Context) error {
	r.storeMu.Lock()
	store := r.store
	r.storeMu.Unlock()

	if store != nil && r.breaker.State() == resilience.StateClosed {
		if err := store.Ping(ctx); err == nil {
			return nil
		}
	}

	r.snapMu.Lock()
	loaded := r.snap != nil
	r.snapMu.Unlock()
	if loaded {
		return nil
	}

	if checker, ok := r.snapshot.(SnapshotChecker); ok {
		return checker.Check()
	}
	_, err := r.loadSnapshot()
	return err
}

func (r *Resolver) loadSnapshot() (*models.Dataset, error) {
	r.snapMu.Lock()
	defer r.snapMu.Unlock()

	if r.snap != nil {
		return r.snap, nil
	}

	records, err := r.snapshot.ReadSnapshot()
	if err != nil {
		if !errors.Is(err, ErrSnapshotUnavailable) {
			err = fmt.Errorf("%w: %v", ErrSnapshotUnavailable, err)
		}
		r.metrics.IncSnapshotFailure()
		r.publisher.SnapshotFailed(err)
		logger.WithSource(string(models.SourceSnapshot)).WithError(err).Error("Snapshot could not be loaded")
		return nil, err
	}

	r.snap = models.NewDataset(models.SourceSnapshot, records)
	logger.WithSource(string(models.SourceSnapshot)).
		WithField("records", len(records)).
		Info("Snapshot loaded")
	return r.snap, nil
}

// markDegraded logs the live store outage once, on the first fallback.
func (r *Resolver) markDegraded(ctx context.Context, reason error) {
	r.metrics.IncFallback()
	if !r.degraded.CompareAndSwap(false, true) {
		return
	}
	logger.WarnCtxf(ctx, "Falling back to snapshot: %v", reason)
	r.publisher.SourceFallback(reason)
}

func (r *Resolver) markRestored() {
	if !r.degraded.CompareAndSwap(true, false) {
		return
	}
	logger.WithSource(string(models.SourceLive)).Info("Live store restored")
	r.publisher.SourceRestored()
}

func (r *Resolver) record(ds *models.Dataset) {
	r.lastSource.Store(ds.Source)
	r.metrics.ObserveResolve(string(ds.Source), ds.Len())
}

func (r *Resolver) Status() Status {
	r.storeMu.Lock()
	connected := r.store != nil
	r.storeMu.Unlock()

	st := Status{
		LiveConnected: connected,
		Degraded:      r.degraded.Load(),
		Breaker:       r.breaker.State().String(),
	}
	if src, ok := r.lastSource.Load().(models.SourceKind); ok {
		st.Source = src
	}
	return st
}

// Close releases the live store handle, if one was established.
func (r *Resolver) Close() error {
	r.storeMu.Lock()
	defer r.storeMu.Unlock()

	if r.store == nil {
		return nil
	}
	err := r.store.Close()
	r.store = nil
	return err
}
