package selection

import (
	"errors"
	"fmt"
)

var (
	// ErrInitialization matches errors from fetching the latest identifier.
	ErrInitialization = errors.New("initialization failed")

	// ErrPrimaryFetch matches errors from fetching the selected primary resource.
	ErrPrimaryFetch = errors.New("primary resource fetch failed")

	// ErrDependentFetch matches errors from fetching the dependent resource after a successful primary fetch.
	ErrDependentFetch = errors.New("dependent resource fetch failed")

	// ErrSuperseded is returned when a newer call replaced the workflow before it finished.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// ErrorKind classifies fetch failures.
type ErrorKind string

// Error kinds.
const (
	KindInitialization ErrorKind = "InitializationError"
	KindPrimaryFetch   ErrorKind = "PrimaryFetchError"
	KindDependentFetch ErrorKind = "DependentFetchError"
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInitialization:
		return ErrInitialization
	case KindPrimaryFetch:
		return ErrPrimaryFetch
	case KindDependentFetch:
		return ErrDependentFetch
	default:
		return nil
	}
}

// FetchError wraps a provider failure with the step that produced it.
type FetchError struct {
	Kind       ErrorKind
	Identifier *Identifier
	Reference  string
	Err        error
}

// Error implements error.
func (e *FetchError) Error() string {
	switch {
	case e.Reference != "":
		return fmt.Sprintf("%s for reference %s: %v", e.Kind.sentinel(), e.Reference, e.Err)
	case e.Identifier != nil:
		return fmt.Sprintf("%s for identifier %d: %v", e.Kind.sentinel(), *e.Identifier, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Kind.sentinel(), e.Err)
	}
}

// Unwrap returns the provider error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *FetchError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *FetchError) info() *ErrorInfo {
	return &ErrorInfo{Kind: e.Kind, Message: e.Error(), Err: e}
}
