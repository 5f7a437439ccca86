// Package application contains the core application service logic for the block explorer.
package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"eth_block_explorer/internal/core/domain"
	"eth_block_explorer/internal/core/domain/client"
	"eth_block_explorer/internal/core/selection"
	"eth_block_explorer/internal/logger"
	"eth_block_explorer/pkg/blockexplorer"
)

// SubscriberMetrics reports the number of active subscribers.
type SubscriberMetrics interface {
	SetSubscribers(n int)
}

// Config holds configuration needed by the ExplorerService.
type Config struct {
	WindowSize     int
	FetchTimeout   time.Duration
	MinBlockNumber *int64

	FetchMetrics      selection.Metrics
	SubscriberMetrics SubscriberMetrics
}

// ExplorerServiceImpl implements the blockexplorer.Explorer interface on top of the selection controller.
type ExplorerServiceImpl struct {
	controller        *blockController
	logger            logger.AppLogger
	subscriberMetrics SubscriberMetrics

	mu          sync.Mutex
	subscribers map[uint64]chan blockexplorer.ViewState
	nextSubID   uint64
	closed      bool
}

// Compile-time check to ensure ExplorerServiceImpl implements blockexplorer.Explorer
var _ blockexplorer.Explorer = (*ExplorerServiceImpl)(nil)

// NewExplorerService creates a new instance of ExplorerServiceImpl.
func NewExplorerService(
	ethClient client.EthereumClient,
	appLogger logger.AppLogger,
	appCfg Config,
) (*ExplorerServiceImpl, error) {
	if appLogger == nil {
		return nil, errors.New("NewExplorerService: appLogger is nil")
	}
	if ethClient == nil {
		appLogger.Error("NewExplorerService: ethClient is nil")
		return nil, errors.New("NewExplorerService: ethClient is nil")
	}

	opts := []selection.Option{
		selection.WithFetchTimeout(appCfg.FetchTimeout),
		selection.WithMetrics(appCfg.FetchMetrics),
	}
	if appCfg.WindowSize > 0 {
		opts = append(opts, selection.WithWindowSize(appCfg.WindowSize))
	}
	if appCfg.MinBlockNumber != nil {
		opts = append(opts, selection.WithMinIdentifier(selection.Identifier(*appCfg.MinBlockNumber)))
	}

	controller, err := selection.NewController[domain.Block, domain.TransactionHash, domain.Receipt](
		&blockProvider{ethClient: ethClient},
		appLogger,
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("NewExplorerService: %w", err)
	}

	s := &ExplorerServiceImpl{
		controller:        controller,
		logger:            appLogger.With("component", "explorer_service"),
		subscriberMetrics: appCfg.SubscriberMetrics,
		subscribers:       make(map[uint64]chan blockexplorer.ViewState),
	}
	controller.SetObserver(selection.ObserverFunc[domain.Block, domain.Receipt](s.broadcast))
	return s, nil
}

// Initialize loads the latest block number and replaces the candidate list.
func (s *ExplorerServiceImpl) Initialize(ctx context.Context) error {
	if err := s.controller.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize candidate blocks: %w", err)
	}
	return nil
}

// Select fetches the block and the receipt of its first transaction.
func (s *ExplorerServiceImpl) Select(ctx context.Context, blockNumber int64) error {
	if err := s.controller.Select(ctx, selection.Identifier(blockNumber)); err != nil {
		return fmt.Errorf("failed to select block %d: %w", blockNumber, err)
	}
	return nil
}

// State returns the current snapshot.
func (s *ExplorerServiceImpl) State() blockexplorer.ViewState {
	return mapViewState(s.controller.State())
}

// Subscribe registers a subscriber. Each subscriber holds at most one pending snapshot;
// a newer snapshot replaces an unread one.
func (s *ExplorerServiceImpl) Subscribe() (<-chan blockexplorer.ViewState, func()) {
	ch := make(chan blockexplorer.ViewState, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	count := len(s.subscribers)
	s.mu.Unlock()

	s.reportSubscribers(count)
	s.logger.Debug("Subscriber added", "subscriberId", id)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			sub, ok := s.subscribers[id]
			if ok {
				delete(s.subscribers, id)
				close(sub)
			}
			remaining := len(s.subscribers)
			s.mu.Unlock()

			if ok {
				s.reportSubscribers(remaining)
				s.logger.Debug("Subscriber removed", "subscriberId", id)
			}
		})
	}
	return ch, cancel
}

// Close ends all subscriptions. Later Subscribe calls return a closed channel.
func (s *ExplorerServiceImpl) Close() {
	s.mu.Lock()
	s.closed = true
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
	s.mu.Unlock()

	s.reportSubscribers(0)
}

// broadcast is the controller observer. The controller serializes calls, so subscribers see commit order.
func (s *ExplorerServiceImpl) broadcast(state blockViewState) {
	view := mapViewState(state)

	s.logger.Debug("View state changed",
		"phase", view.Phase,
		"token", view.Token,
		"loading", view.Loading,
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- view:
			default:
			}
		}
	}
}

func (s *ExplorerServiceImpl) reportSubscribers(n int) {
	if s.subscriberMetrics != nil {
		s.subscriberMetrics.SetSubscribers(n)
	}
}
