// Package selection implements a controller for "pick an identifier, view its resource" workflows.
//
// A Controller derives a window of candidate identifiers from the latest one reported by a
// Provider, fetches the primary resource for a selected identifier and, when the primary
// resource references dependent items, fetches the first of them. Every state transition is
// published to an Observer as an immutable ViewState snapshot. Results of a workflow that was
// superseded by a newer call are discarded.
package selection

import (
	"context"
	"time"
)

// Identifier names one unit of primary resource, e.g. a block number.
type Identifier int64

// Primary is implemented by primary resources that reference dependent items in a defined order.
type Primary[R any] interface {
	DependentReferences() []R
}

// Provider is the capability the controller delegates all fetching to.
type Provider[P Primary[R], R any, D any] interface {
	// LatestIdentifier returns the most recent identifier known to the provider.
	LatestIdentifier(ctx context.Context) (Identifier, error)

	// PrimaryResource returns the full record for id.
	PrimaryResource(ctx context.Context, id Identifier) (P, error)

	// DependentResource returns the record referenced by ref.
	DependentResource(ctx context.Context, ref R) (D, error)
}

// Observer receives a snapshot after every state transition.
type Observer[P any, D any] interface {
	OnStateChange(state ViewState[P, D])
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc[P any, D any] func(state ViewState[P, D])

// OnStateChange calls f(state).
func (f ObserverFunc[P, D]) OnStateChange(state ViewState[P, D]) {
	f(state)
}

// Operation names reported to Metrics.
const (
	OpLatestIdentifier  = "latest_identifier"
	OpPrimaryResource   = "primary_resource"
	OpDependentResource = "dependent_resource"
)

// Metrics records provider call outcomes and discarded stale results.
type Metrics interface {
	ObserveFetch(operation string, duration time.Duration, err error)
	StaleResultDiscarded(operation string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveFetch(string, time.Duration, error) {}

func (noopMetrics) StaleResultDiscarded(string) {}
