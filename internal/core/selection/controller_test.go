package selection_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eth_block_explorer/internal/core/selection"
	"eth_block_explorer/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   selection.Identifier
	Refs []string
}

func (r record) DependentReferences() []string { return r.Refs }

type receipt struct {
	Status int
}

type (
	testController = selection.Controller[record, string, receipt]
	testState      = selection.ViewState[record, receipt]
)

// stubProvider delegates every call to the function configured by the test.
type stubProvider struct {
	latestFn    func(ctx context.Context) (selection.Identifier, error)
	primaryFn   func(ctx context.Context, id selection.Identifier) (record, error)
	dependentFn func(ctx context.Context, ref string) (receipt, error)

	mu             sync.Mutex
	dependentCalls []string
}

func (p *stubProvider) LatestIdentifier(ctx context.Context) (selection.Identifier, error) {
	return p.latestFn(ctx)
}

func (p *stubProvider) PrimaryResource(ctx context.Context, id selection.Identifier) (record, error) {
	return p.primaryFn(ctx, id)
}

func (p *stubProvider) DependentResource(ctx context.Context, ref string) (receipt, error) {
	p.mu.Lock()
	p.dependentCalls = append(p.dependentCalls, ref)
	p.mu.Unlock()
	return p.dependentFn(ctx, ref)
}

func (p *stubProvider) DependentCalls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.dependentCalls...)
}

type recordingObserver struct {
	mu        sync.Mutex
	snapshots []testState
}

func (o *recordingObserver) OnStateChange(state testState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.snapshots = append(o.snapshots, state)
}

func (o *recordingObserver) Snapshots() []testState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]testState(nil), o.snapshots...)
}

type countingMetrics struct {
	mu     sync.Mutex
	fetch  map[string]int
	failed map[string]int
	stale  map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{fetch: map[string]int{}, failed: map[string]int{}, stale: map[string]int{}}
}

func (m *countingMetrics) ObserveFetch(op string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetch[op]++
	if err != nil {
		m.failed[op]++
	}
}

func (m *countingMetrics) StaleResultDiscarded(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stale[op]++
}

func latestOf(id selection.Identifier) func(context.Context) (selection.Identifier, error) {
	return func(context.Context) (selection.Identifier, error) { return id, nil }
}

func newTestController(t *testing.T, p *stubProvider, opts ...selection.Option) (*testController, *recordingObserver) {
	t.Helper()
	c, err := selection.NewController[record, string, receipt](p, logger.Nop(), opts...)
	require.NoError(t, err)
	obs := &recordingObserver{}
	c.SetObserver(obs)
	return c, obs
}

func ids(from, to selection.Identifier) []selection.Identifier {
	var out []selection.Identifier
	for id := from; id >= to; id-- {
		out = append(out, id)
	}
	return out
}

func TestNewController_NilDependencies(t *testing.T) {
	_, err := selection.NewController[record, string, receipt](nil, logger.Nop())
	assert.Error(t, err)

	_, err = selection.NewController[record, string, receipt](&stubProvider{}, nil)
	assert.Error(t, err)

	_, err = selection.NewController[record, string, receipt](&stubProvider{}, logger.Nop(), selection.WithWindowSize(-1))
	assert.Error(t, err)
}

func TestController_InitializeDerivesCandidates(t *testing.T) {
	c, obs := newTestController(t, &stubProvider{latestFn: latestOf(100)})

	require.NoError(t, c.Initialize(context.Background()))

	state := c.State()
	assert.Equal(t, ids(100, 91), state.Candidates)
	assert.False(t, state.Loading)
	assert.Nil(t, state.Error)

	snapshots := obs.Snapshots()
	require.Len(t, snapshots, 2)
	assert.True(t, snapshots[0].Loading)
	assert.Empty(t, snapshots[0].Candidates)
	assert.False(t, snapshots[1].Loading)
}

func TestController_InitializeFailure(t *testing.T) {
	netErr := errors.New("dial tcp: connection refused")
	c, _ := newTestController(t, &stubProvider{
		latestFn: func(context.Context) (selection.Identifier, error) { return 0, netErr },
	})

	err := c.Initialize(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, selection.ErrInitialization)
	assert.ErrorIs(t, err, netErr)

	state := c.State()
	assert.Empty(t, state.Candidates)
	assert.False(t, state.Loading)
	require.NotNil(t, state.Error)
	assert.Equal(t, selection.KindInitialization, state.Error.Kind)
	assert.Contains(t, state.Error.Message, "connection refused")
}

func TestController_InitializeReplacesCandidates(t *testing.T) {
	latest := []selection.Identifier{100, 205}
	calls := 0
	c, _ := newTestController(t, &stubProvider{
		latestFn: func(context.Context) (selection.Identifier, error) {
			id := latest[calls]
			calls++
			return id, nil
		},
	})

	require.NoError(t, c.Initialize(context.Background()))
	require.NoError(t, c.Initialize(context.Background()))

	assert.Equal(t, ids(205, 196), c.State().Candidates)
}

func TestController_InitializeAfterFailureRecovers(t *testing.T) {
	fail := true
	c, _ := newTestController(t, &stubProvider{
		latestFn: func(context.Context) (selection.Identifier, error) {
			if fail {
				return 0, errors.New("rate limited")
			}
			return 50, nil
		},
	})

	require.Error(t, c.Initialize(context.Background()))
	fail = false
	require.NoError(t, c.Initialize(context.Background()))

	state := c.State()
	assert.Nil(t, state.Error)
	assert.Equal(t, ids(50, 41), state.Candidates)
}

func TestController_InitializeNearGenesis(t *testing.T) {
	t.Run("Pass through by default", func(t *testing.T) {
		c, _ := newTestController(t, &stubProvider{latestFn: latestOf(3)})
		require.NoError(t, c.Initialize(context.Background()))
		assert.Equal(t, ids(3, -6), c.State().Candidates)
	})

	t.Run("Truncated at the configured minimum", func(t *testing.T) {
		c, _ := newTestController(t, &stubProvider{latestFn: latestOf(3)}, selection.WithMinIdentifier(0))
		require.NoError(t, c.Initialize(context.Background()))
		assert.Equal(t, ids(3, 0), c.State().Candidates)
	})
}

func TestDeriveCandidates(t *testing.T) {
	floor := selection.Identifier(10)

	assert.Equal(t, ids(7, 5), selection.DeriveCandidates(7, 3, nil))
	assert.Equal(t, []selection.Identifier{}, selection.DeriveCandidates(7, 0, nil))
	assert.Equal(t, ids(12, 10), selection.DeriveCandidates(12, 10, &floor))
	assert.Empty(t, selection.DeriveCandidates(9, 10, &floor))
}

func TestController_SelectEndToEnd(t *testing.T) {
	block := record{ID: 100, Refs: []string{"0xabc"}}
	c, obs := newTestController(t, &stubProvider{
		latestFn: latestOf(100),
		primaryFn: func(_ context.Context, id selection.Identifier) (record, error) {
			require.Equal(t, selection.Identifier(100), id)
			return block, nil
		},
		dependentFn: func(_ context.Context, ref string) (receipt, error) {
			require.Equal(t, "0xabc", ref)
			return receipt{Status: 1}, nil
		},
	})
	ctx := context.Background()

	require.NoError(t, c.Initialize(ctx))
	require.NoError(t, c.Select(ctx, 100))

	state := c.State()
	assert.Equal(t, ids(100, 91), state.Candidates)
	require.NotNil(t, state.SelectedID)
	assert.Equal(t, selection.Identifier(100), *state.SelectedID)
	require.NotNil(t, state.Primary)
	assert.Equal(t, block, *state.Primary)
	got, ok := state.Dependent.Get()
	require.True(t, ok)
	assert.Equal(t, receipt{Status: 1}, got)
	assert.False(t, state.Loading)
	assert.Nil(t, state.Error)
	assert.Equal(t, selection.PhaseSettled, state.Phase)

	var phases []selection.Phase
	for _, s := range obs.Snapshots()[2:] {
		phases = append(phases, s.Phase)
	}
	assert.Equal(t, []selection.Phase{
		selection.PhaseFetchingPrimary,
		selection.PhaseFetchingDependent,
		selection.PhaseSettled,
	}, phases)
}

func TestController_SelectWithoutDependentReferences(t *testing.T) {
	p := &stubProvider{
		primaryFn: func(_ context.Context, id selection.Identifier) (record, error) {
			return record{ID: id}, nil
		},
		dependentFn: func(context.Context, string) (receipt, error) {
			return receipt{}, errors.New("must not be called")
		},
	}
	c, _ := newTestController(t, p)

	require.NoError(t, c.Select(context.Background(), 7))

	state := c.State()
	require.NotNil(t, state.Primary)
	assert.True(t, state.Dependent.IsAbsent())
	assert.Equal(t, selection.DependentAbsent, state.Dependent.Status)
	assert.Nil(t, state.Error)
	assert.Empty(t, p.DependentCalls())
}

func TestController_SelectPrimaryFailure(t *testing.T) {
	p := &stubProvider{
		latestFn: latestOf(100),
		primaryFn: func(context.Context, selection.Identifier) (record, error) {
			return record{}, errors.New("block not found")
		},
		dependentFn: func(context.Context, string) (receipt, error) {
			return receipt{}, nil
		},
	}
	c, _ := newTestController(t, p)
	ctx := context.Background()
	require.NoError(t, c.Initialize(ctx))

	err := c.Select(ctx, 999999)
	require.Error(t, err)
	assert.ErrorIs(t, err, selection.ErrPrimaryFetch)

	var fetchErr *selection.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.NotNil(t, fetchErr.Identifier)
	assert.Equal(t, selection.Identifier(999999), *fetchErr.Identifier)

	state := c.State()
	assert.Nil(t, state.Primary)
	assert.Equal(t, selection.DependentNone, state.Dependent.Status)
	require.NotNil(t, state.Error)
	assert.Equal(t, selection.KindPrimaryFetch, state.Error.Kind)
	assert.Equal(t, ids(100, 91), state.Candidates)
	assert.Equal(t, selection.PhasePrimaryFailed, state.Phase)
	assert.False(t, state.Loading)
	assert.Empty(t, p.DependentCalls())
}

func TestController_SelectDependentFailureKeepsPrimary(t *testing.T) {
	block := record{ID: 100, Refs: []string{"0xabc", "0xdef"}}
	c, _ := newTestController(t, &stubProvider{
		primaryFn: func(context.Context, selection.Identifier) (record, error) { return block, nil },
		dependentFn: func(context.Context, string) (receipt, error) {
			return receipt{}, errors.New("receipt unavailable")
		},
	})

	err := c.Select(context.Background(), 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, selection.ErrDependentFetch)
	assert.NotErrorIs(t, err, selection.ErrPrimaryFetch)

	state := c.State()
	require.NotNil(t, state.Primary)
	assert.Equal(t, block, *state.Primary)
	assert.Equal(t, selection.DependentNone, state.Dependent.Status)
	require.NotNil(t, state.Error)
	assert.Equal(t, selection.KindDependentFetch, state.Error.Kind)
	assert.Contains(t, state.Error.Message, "0xabc")
	assert.Equal(t, selection.PhaseDependentFailed, state.Phase)
}

func TestController_SelectDiscardsStalePrimary(t *testing.T) {
	startedA := make(chan struct{})
	releaseA := make(chan struct{})
	p := &stubProvider{
		primaryFn: func(_ context.Context, id selection.Identifier) (record, error) {
			if id == 1 {
				close(startedA)
				<-releaseA
				return record{ID: 1, Refs: []string{"0xa"}}, nil
			}
			return record{ID: id, Refs: []string{"0xb"}}, nil
		},
		dependentFn: func(_ context.Context, ref string) (receipt, error) {
			if ref == "0xa" {
				return receipt{Status: 0}, nil
			}
			return receipt{Status: 1}, nil
		},
	}
	metrics := newCountingMetrics()
	c, _ := newTestController(t, p, selection.WithMetrics(metrics))
	ctx := context.Background()

	errA := make(chan error, 1)
	go func() { errA <- c.Select(ctx, 1) }()
	<-startedA

	require.NoError(t, c.Select(ctx, 2))
	close(releaseA)
	assert.ErrorIs(t, <-errA, selection.ErrSuperseded)

	state := c.State()
	require.NotNil(t, state.SelectedID)
	assert.Equal(t, selection.Identifier(2), *state.SelectedID)
	require.NotNil(t, state.Primary)
	assert.Equal(t, selection.Identifier(2), state.Primary.ID)
	got, ok := state.Dependent.Get()
	require.True(t, ok)
	assert.Equal(t, 1, got.Status)
	assert.Equal(t, []string{"0xb"}, p.DependentCalls())
	assert.Equal(t, 1, metrics.stale[selection.OpPrimaryResource])
}

func TestController_SelectDiscardsStaleDependent(t *testing.T) {
	startedA := make(chan struct{})
	releaseA := make(chan struct{})
	p := &stubProvider{
		primaryFn: func(_ context.Context, id selection.Identifier) (record, error) {
			if id == 1 {
				return record{ID: 1, Refs: []string{"0xa"}}, nil
			}
			return record{ID: id}, nil
		},
		dependentFn: func(_ context.Context, ref string) (receipt, error) {
			close(startedA)
			<-releaseA
			return receipt{Status: 1}, nil
		},
	}
	c, obs := newTestController(t, p)
	ctx := context.Background()

	errA := make(chan error, 1)
	go func() { errA <- c.Select(ctx, 1) }()
	<-startedA

	require.NoError(t, c.Select(ctx, 2))
	close(releaseA)
	assert.ErrorIs(t, <-errA, selection.ErrSuperseded)

	state := c.State()
	require.NotNil(t, state.Primary)
	assert.Equal(t, selection.Identifier(2), state.Primary.ID)
	assert.True(t, state.Dependent.IsAbsent())

	last := obs.Snapshots()[len(obs.Snapshots())-1]
	assert.Equal(t, uint64(2), last.Token)
	assert.True(t, last.Dependent.IsAbsent())
}

func TestController_SelectClearsPreviousResultImmediately(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	p := &stubProvider{
		primaryFn: func(_ context.Context, id selection.Identifier) (record, error) {
			if id == 2 {
				close(started)
				<-release
			}
			return record{ID: id}, nil
		},
	}
	c, _ := newTestController(t, p)
	ctx := context.Background()

	require.NoError(t, c.Select(ctx, 1))
	require.NotNil(t, c.State().Primary)

	done := make(chan error, 1)
	go func() { done <- c.Select(ctx, 2) }()
	<-started

	pending := c.State()
	assert.Nil(t, pending.Primary)
	assert.Equal(t, selection.DependentNone, pending.Dependent.Status)
	assert.True(t, pending.Loading)
	require.NotNil(t, pending.SelectedID)
	assert.Equal(t, selection.Identifier(2), *pending.SelectedID)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, c.State().Loading)
}

func TestController_FetchTimeoutIsAFailure(t *testing.T) {
	c, _ := newTestController(t, &stubProvider{
		primaryFn: func(ctx context.Context, _ selection.Identifier) (record, error) {
			<-ctx.Done()
			return record{}, ctx.Err()
		},
	}, selection.WithFetchTimeout(20*time.Millisecond))

	err := c.Select(context.Background(), 5)
	assert.ErrorIs(t, err, selection.ErrPrimaryFetch)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, selection.PhasePrimaryFailed, c.State().Phase)
}

func TestController_SnapshotsAreIsolated(t *testing.T) {
	c, obs := newTestController(t, &stubProvider{
		latestFn:  latestOf(10),
		primaryFn: func(_ context.Context, id selection.Identifier) (record, error) { return record{ID: id}, nil },
	})
	ctx := context.Background()
	require.NoError(t, c.Initialize(ctx))
	require.NoError(t, c.Select(ctx, 7))

	snapshot := c.State()
	snapshot.Candidates[0] = 999
	snapshot.Primary.ID = 999

	observed := obs.Snapshots()
	last := observed[len(observed)-1]
	require.NotNil(t, last.Primary)
	last.Primary.ID = 998

	state := c.State()
	assert.Equal(t, selection.Identifier(10), state.Candidates[0])
	require.NotNil(t, state.Primary)
	assert.Equal(t, selection.Identifier(7), state.Primary.ID)
}

func TestController_InitializeKeepsSelectionFailure(t *testing.T) {
	latestErr := errors.New("node unreachable")
	var failLatest bool
	p := &stubProvider{
		latestFn: func(context.Context) (selection.Identifier, error) {
			if failLatest {
				return 0, latestErr
			}
			return 100, nil
		},
		primaryFn: func(_ context.Context, id selection.Identifier) (record, error) {
			return record{ID: id, Refs: []string{"0xabc"}}, nil
		},
		dependentFn: func(_ context.Context, ref string) (receipt, error) {
			return receipt{}, errors.New("receipt unavailable")
		},
	}
	c, obs := newTestController(t, p)
	ctx := context.Background()

	require.ErrorIs(t, c.Select(ctx, 100), selection.ErrDependentFetch)
	seen := len(obs.Snapshots())

	require.NoError(t, c.Initialize(ctx))
	for _, snap := range obs.Snapshots()[seen:] {
		require.NotNil(t, snap.Error)
		assert.Equal(t, selection.KindDependentFetch, snap.Error.Kind)
	}

	state := c.State()
	assert.Equal(t, selection.PhaseDependentFailed, state.Phase)
	require.NotNil(t, state.Primary)
	require.NotNil(t, state.Error)
	assert.Equal(t, selection.KindDependentFetch, state.Error.Kind)
	assert.Len(t, state.Candidates, selection.DefaultWindowSize)

	failLatest = true
	require.ErrorIs(t, c.Initialize(ctx), selection.ErrInitialization)
	require.NotNil(t, c.State().Error)
	assert.Equal(t, selection.KindInitialization, c.State().Error.Kind)

	failLatest = false
	require.NoError(t, c.Initialize(ctx))
	require.NotNil(t, c.State().Error)
	assert.Equal(t, selection.KindDependentFetch, c.State().Error.Kind)

	p.dependentFn = func(context.Context, string) (receipt, error) { return receipt{Status: 1}, nil }
	require.NoError(t, c.Select(ctx, 100))
	assert.Nil(t, c.State().Error)
	require.NoError(t, c.Initialize(ctx))
	assert.Nil(t, c.State().Error)
}

func TestController_InitializeLastCallWins(t *testing.T) {
	startedFirst := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls int
	var mu sync.Mutex
	p := &stubProvider{
		latestFn: func(context.Context) (selection.Identifier, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 1 {
				close(startedFirst)
				<-releaseFirst
				return 20, nil
			}
			return 50, nil
		},
	}
	metrics := newCountingMetrics()
	c, obs := newTestController(t, p, selection.WithMetrics(metrics))
	ctx := context.Background()

	errFirst := make(chan error, 1)
	go func() { errFirst <- c.Initialize(ctx) }()
	<-startedFirst

	require.NoError(t, c.Initialize(ctx))
	close(releaseFirst)
	assert.ErrorIs(t, <-errFirst, selection.ErrSuperseded)

	state := c.State()
	assert.Equal(t, ids(50, 41), state.Candidates)
	assert.False(t, state.Loading)
	assert.Nil(t, state.Error)
	assert.Equal(t, 1, metrics.stale[selection.OpLatestIdentifier])

	for _, snap := range obs.Snapshots() {
		assert.NotContains(t, snap.Candidates, selection.Identifier(20))
	}
}

func TestController_SelectDiscardsStalePrimaryFailure(t *testing.T) {
	startedA := make(chan struct{})
	releaseA := make(chan struct{})
	p := &stubProvider{
		primaryFn: func(_ context.Context, id selection.Identifier) (record, error) {
			if id == 1 {
				close(startedA)
				<-releaseA
				return record{}, errors.New("block 1 unavailable")
			}
			return record{ID: id}, nil
		},
	}
	metrics := newCountingMetrics()
	c, obs := newTestController(t, p, selection.WithMetrics(metrics))
	ctx := context.Background()

	errA := make(chan error, 1)
	go func() { errA <- c.Select(ctx, 1) }()
	<-startedA

	require.NoError(t, c.Select(ctx, 2))
	close(releaseA)
	assert.ErrorIs(t, <-errA, selection.ErrSuperseded)

	state := c.State()
	assert.Nil(t, state.Error)
	assert.Equal(t, selection.PhaseSettled, state.Phase)
	require.NotNil(t, state.Primary)
	assert.Equal(t, selection.Identifier(2), state.Primary.ID)
	assert.Equal(t, 1, metrics.stale[selection.OpPrimaryResource])

	for _, snap := range obs.Snapshots() {
		assert.NotEqual(t, selection.PhasePrimaryFailed, snap.Phase)
		assert.Nil(t, snap.Error)
	}
}
