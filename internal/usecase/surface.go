package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"resume-builder/internal/logger"
	"resume-builder/internal/metrics"
)

// State of a preview surface.
type State int

const (
	StateLoading State = iota
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "loading"
	}
}

// ParamSource yields the entry parameters of a navigation. It may block
// until ctx is done.
type ParamSource interface {
	Params(ctx context.Context) (Params, error)
}

// StaticParams is a ParamSource that is already resolved.
type StaticParams Params

func (s StaticParams) Params(context.Context) (Params, error) { return Params(s), nil }

// ParamSourceFunc adapts a function to ParamSource.
type ParamSourceFunc func(ctx context.Context) (Params, error)

func (f ParamSourceFunc) Params(ctx context.Context) (Params, error) { return f(ctx) }

// Snapshot is a consistent view of a Surface.
type Snapshot struct {
	State      State
	Reason     ErrorKind
	Err        error
	Result     Result
	Generation uint64
}

// Surface drives one preview view: Loading until the current navigation
// settles, then Ready or Error. Results of superseded navigations are
// dropped.
type Surface struct {
	resolver *Resolver
	log      logger.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	snap   Snapshot
	closed bool
	wg     sync.WaitGroup
}

func NewSurface(r *Resolver, log logger.Logger, m *metrics.Metrics) *Surface {
	return &Surface{
		resolver: r,
		log:      log,
		metrics:  m,
		snap:     Snapshot{State: StateLoading},
	}
}

// Navigate restarts the surface at Loading and resolves src in the
// background. Any navigation still in flight is cancelled and its result
// will be discarded. The returned channel is closed once this navigation
// has settled, whether it was applied or discarded.
func (s *Surface) Navigate(ctx context.Context, src ParamSource) <-chan struct{} {
	done := make(chan struct{})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(done)
		return done
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	navCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.snap = Snapshot{State: StateLoading, Generation: gen}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer close(done)
		defer cancel()

		p, err := src.Params(navCtx)
		if err != nil {
			if navCtx.Err() != nil {
				s.log.Debug("navigation abandoned", map[string]interface{}{"generation": gen})
				s.metrics.ObserveStale()
				return
			}
			s.complete(gen, Result{}, &ResolveError{Kind: MissingParameter, Err: fmt.Errorf("read parameters: %w", err)})
			return
		}

		res, err := s.resolver.Resolve(p)
		s.complete(gen, res, err)
	}()

	return done
}

func (s *Surface) complete(gen uint64, res Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.gen {
		s.metrics.ObserveStale()
		s.log.Debug("discarding stale preview result", map[string]interface{}{
			"generation": gen,
			"current":    s.gen,
		})
		return
	}

	if err != nil {
		s.snap = Snapshot{State: StateError, Reason: KindOf(err), Err: err, Generation: gen}
		if s.snap.Reason == NoError {
			s.snap.Reason = InvalidPayload
		}
		return
	}
	s.snap = Snapshot{State: StateReady, Result: res, Generation: gen}
}

// Snapshot returns the current state.
func (s *Surface) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Cancel unmounts the surface without waiting: in-flight work is cancelled
// and its late results are discarded when they arrive.
func (s *Surface) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.gen++
	if s.cancel != nil {
		s.cancel()
	}
}

// Close is Cancel followed by a wait for background goroutines to exit.
func (s *Surface) Close() {
	s.Cancel()
	s.wg.Wait()
}

// Render writes the document for the current state. Ready results are
// rendered read-only.
func (s *Surface) Render(w io.Writer) error {
	return s.RenderSnapshot(w, s.Snapshot())
}

// RenderSnapshot writes the document for snap, which may be older than the
// surface's current state.
func (s *Surface) RenderSnapshot(w io.Writer, snap Snapshot) error {
	reg := s.resolver.Registry()

	switch snap.State {
	case StateReady:
		return snap.Result.Template.Render(w, snap.Result.Data, true)
	case StateError:
		return reg.RenderError(w, snap.Reason.Message())
	case StateLoading:
		return reg.RenderLoading(w)
	default:
		return errors.New("unknown surface state")
	}
}
