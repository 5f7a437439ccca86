package selection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"eth_block_explorer/internal/logger"
)

// Defaults used when no option overrides them.
const (
	DefaultWindowSize   = 10
	DefaultFetchTimeout = 15 * time.Second
)

type settings struct {
	windowSize    int
	fetchTimeout  time.Duration
	minIdentifier *Identifier
	metrics       Metrics
}

// Option configures a Controller.
type Option func(*settings)

// WithWindowSize sets how many candidates are derived from the latest identifier.
func WithWindowSize(n int) Option {
	return func(s *settings) {
		s.windowSize = n
	}
}

// WithFetchTimeout bounds every provider call. Zero or negative disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.fetchTimeout = d
	}
}

// WithMinIdentifier truncates the candidate list at floor instead of counting below it.
func WithMinIdentifier(floor Identifier) Option {
	return func(s *settings) {
		s.minIdentifier = &floor
	}
}

// WithMetrics records provider calls and stale discards.
func WithMetrics(m Metrics) Option {
	return func(s *settings) {
		if m != nil {
			s.metrics = m
		}
	}
}

// Controller owns the ViewState and sequences the initialize and select workflows.
// All methods are safe for concurrent use.
type Controller[P Primary[R], R any, D any] struct {
	provider Provider[P, R, D]
	logger   logger.AppLogger
	cfg      settings

	// publishMu serializes commit+notify so observers see transitions in commit order.
	publishMu sync.Mutex

	mu             sync.RWMutex
	state          ViewState[P, D]
	observer       Observer[P, D]
	initToken      uint64
	selectionToken uint64
	initializing   bool
	selecting      bool

	// selectionErr is the failure of the current selection. Initialize puts it back once candidates load.
	selectionErr *ErrorInfo
}

// NewController creates a controller bound to provider.
func NewController[P Primary[R], R any, D any](
	provider Provider[P, R, D],
	appLogger logger.AppLogger,
	opts ...Option,
) (*Controller[P, R, D], error) {
	if appLogger == nil {
		return nil, errors.New("NewController: appLogger is nil")
	}
	if provider == nil {
		appLogger.Error("NewController: provider is nil")
		return nil, errors.New("NewController: provider is nil")
	}

	cfg := settings{
		windowSize:   DefaultWindowSize,
		fetchTimeout: DefaultFetchTimeout,
		metrics:      noopMetrics{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.windowSize < 0 {
		return nil, fmt.Errorf("NewController: window size cannot be negative: %d", cfg.windowSize)
	}

	return &Controller[P, R, D]{
		provider: provider,
		logger:   appLogger.With("component", "selection_controller"),
		cfg:      cfg,
	}, nil
}

// SetObserver replaces the observer notified after every transition. A nil observer disables notification.
func (c *Controller[P, R, D]) SetObserver(o Observer[P, D]) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	c.mu.Lock()
	c.observer = o
	c.mu.Unlock()
}

// State returns a snapshot of the current ViewState.
func (c *Controller[P, R, D]) State() ViewState[P, D] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.clone()
}

// Initialize fetches the latest identifier and replaces the candidate list with the window counting down from it.
func (c *Controller[P, R, D]) Initialize(ctx context.Context) error {
	var token uint64
	c.commit(func(s *ViewState[P, D]) {
		c.initToken++
		token = c.initToken
		c.initializing = true
		s.Candidates = nil
		s.Error = c.selectionErr
	})

	log := c.logger.With("initToken", token)
	log.Debug("Fetching latest identifier")

	latest, err := c.fetchLatest(ctx)
	if err != nil {
		fetchErr := &FetchError{Kind: KindInitialization, Err: err}
		applied := c.commitIf(func() bool { return token == c.initToken }, func(s *ViewState[P, D]) {
			c.initializing = false
			s.Error = fetchErr.info()
		})
		if !applied {
			c.discardStale(log, OpLatestIdentifier)
			return ErrSuperseded
		}
		log.Warn("Initialization failed", "error", err)
		return fetchErr
	}

	candidates := DeriveCandidates(latest, c.cfg.windowSize, c.cfg.minIdentifier)
	applied := c.commitIf(func() bool { return token == c.initToken }, func(s *ViewState[P, D]) {
		c.initializing = false
		s.Candidates = candidates
		s.Error = c.selectionErr
	})
	if !applied {
		c.discardStale(log, OpLatestIdentifier)
		return ErrSuperseded
	}

	log.Info("Candidates derived", "latest", int64(latest), "count", len(candidates))
	return nil
}

// Select runs the primary and dependent fetches for id. Membership in the candidate list is not required.
// It returns ErrSuperseded when a newer Select replaced this one before it settled.
func (c *Controller[P, R, D]) Select(ctx context.Context, id Identifier) error {
	var token uint64
	c.commit(func(s *ViewState[P, D]) {
		c.selectionToken++
		token = c.selectionToken
		c.selecting = true
		c.selectionErr = nil
		selected := id
		s.SelectedID = &selected
		s.Primary = nil
		s.Dependent = Dependent[D]{}
		s.Error = nil
		s.Phase = PhaseFetchingPrimary
		s.Token = token
	})
	current := func() bool { return token == c.selectionToken }

	log := c.logger.With("selectedId", int64(id), "selectionToken", token)
	log.Debug("Fetching primary resource")

	primary, err := c.fetchPrimary(ctx, id)
	if err != nil {
		fetchErr := &FetchError{Kind: KindPrimaryFetch, Identifier: &id, Err: err}
		applied := c.commitIf(current, func(s *ViewState[P, D]) {
			c.selecting = false
			c.selectionErr = fetchErr.info()
			s.Error = c.selectionErr
			s.Phase = PhasePrimaryFailed
		})
		if !applied {
			c.discardStale(log, OpPrimaryResource)
			return ErrSuperseded
		}
		log.Warn("Primary resource fetch failed", "error", err)
		return fetchErr
	}

	refs := primary.DependentReferences()
	if len(refs) == 0 {
		applied := c.commitIf(current, func(s *ViewState[P, D]) {
			c.selecting = false
			s.Primary = &primary
			s.Dependent = Dependent[D]{Status: DependentAbsent}
			s.Phase = PhaseSettled
		})
		if !applied {
			c.discardStale(log, OpPrimaryResource)
			return ErrSuperseded
		}
		log.Info("Selection settled without dependent resource")
		return nil
	}

	applied := c.commitIf(current, func(s *ViewState[P, D]) {
		s.Primary = &primary
		s.Phase = PhaseFetchingDependent
	})
	if !applied {
		c.discardStale(log, OpPrimaryResource)
		return ErrSuperseded
	}

	ref := refs[0]
	log = log.With("reference", fmt.Sprint(ref))
	log.Debug("Fetching dependent resource")

	dependent, err := c.fetchDependent(ctx, ref)
	if err != nil {
		fetchErr := &FetchError{Kind: KindDependentFetch, Identifier: &id, Reference: fmt.Sprint(ref), Err: err}
		applied = c.commitIf(current, func(s *ViewState[P, D]) {
			c.selecting = false
			c.selectionErr = fetchErr.info()
			s.Error = c.selectionErr
			s.Phase = PhaseDependentFailed
		})
		if !applied {
			c.discardStale(log, OpDependentResource)
			return ErrSuperseded
		}
		log.Warn("Dependent resource fetch failed", "error", err)
		return fetchErr
	}

	applied = c.commitIf(current, func(s *ViewState[P, D]) {
		c.selecting = false
		s.Dependent = Dependent[D]{Status: DependentPresent, Value: dependent}
		s.Phase = PhaseSettled
	})
	if !applied {
		c.discardStale(log, OpDependentResource)
		return ErrSuperseded
	}

	log.Info("Selection settled")
	return nil
}

func (c *Controller[P, R, D]) fetchLatest(ctx context.Context) (Identifier, error) {
	ctx, cancel := c.fetchContext(ctx)
	defer cancel()

	start := time.Now()
	latest, err := c.provider.LatestIdentifier(ctx)
	c.cfg.metrics.ObserveFetch(OpLatestIdentifier, time.Since(start), err)
	return latest, err
}

func (c *Controller[P, R, D]) fetchPrimary(ctx context.Context, id Identifier) (P, error) {
	ctx, cancel := c.fetchContext(ctx)
	defer cancel()

	start := time.Now()
	primary, err := c.provider.PrimaryResource(ctx, id)
	c.cfg.metrics.ObserveFetch(OpPrimaryResource, time.Since(start), err)
	return primary, err
}

func (c *Controller[P, R, D]) fetchDependent(ctx context.Context, ref R) (D, error) {
	ctx, cancel := c.fetchContext(ctx)
	defer cancel()

	start := time.Now()
	dependent, err := c.provider.DependentResource(ctx, ref)
	c.cfg.metrics.ObserveFetch(OpDependentResource, time.Since(start), err)
	return dependent, err
}

func (c *Controller[P, R, D]) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.fetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.fetchTimeout)
}

func (c *Controller[P, R, D]) discardStale(log logger.AppLogger, op string) {
	c.cfg.metrics.StaleResultDiscarded(op)
	log.Debug("Discarding result of superseded request", "operation", op)
}

// commit applies mutate unconditionally and notifies the observer.
func (c *Controller[P, R, D]) commit(mutate func(s *ViewState[P, D])) {
	c.commitIf(func() bool { return true }, mutate)
}

// commitIf applies mutate and notifies the observer only if current() holds under the state lock.
func (c *Controller[P, R, D]) commitIf(current func() bool, mutate func(s *ViewState[P, D])) bool {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	c.mu.Lock()
	if !current() {
		c.mu.Unlock()
		return false
	}
	mutate(&c.state)
	c.state.Loading = c.initializing || c.selecting
	snapshot := c.state.clone()
	observer := c.observer
	c.mu.Unlock()

	if observer != nil {
		observer.OnStateChange(snapshot)
	}
	return true
}

// DeriveCandidates returns window identifiers counting down from latest.
// With a non-nil floor the list stops before going below it.
func DeriveCandidates(latest Identifier, window int, floor *Identifier) []Identifier {
	if window <= 0 {
		return []Identifier{}
	}
	candidates := make([]Identifier, 0, window)
	for i := 0; i < window; i++ {
		id := latest - Identifier(i)
		if floor != nil && id < *floor {
			break
		}
		candidates = append(candidates, id)
	}
	return candidates
}
