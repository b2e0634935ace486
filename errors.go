package navgraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/navgraph/distance"
	"github.com/hupe1980/navgraph/nsg"
)

// UsageError indicates the caller invoked an operation out of the allowed
// order — add after an NSG build, range search against an engine that
// doesn't support it, build on empty storage — rather than malformed
// input (§7 "Usage error").
//
// The underlying cause, if any, can be reached via errors.Unwrap.
type UsageError struct {
	Msg   string
	cause error
}

func (e *UsageError) Error() string { return fmt.Sprintf("navgraph: usage error: %s", e.Msg) }

func (e *UsageError) Unwrap() error { return e.cause }

// InputError indicates malformed input: a dimension mismatch, an unknown
// id, or a seed KNN graph with too many invalid entries (§7 "Input
// error").
//
// The underlying cause, if any, can be reached via errors.Unwrap.
type InputError struct {
	Msg   string
	cause error
}

func (e *InputError) Error() string { return fmt.Sprintf("navgraph: input error: %s", e.Msg) }

func (e *InputError) Unwrap() error { return e.cause }

// ResourceError indicates an allocation failure building the seed graph or
// adjacency tables (§7 "Resource error").
//
// The underlying cause, if any, can be reached via errors.Unwrap.
type ResourceError struct {
	Msg   string
	cause error
}

func (e *ResourceError) Error() string { return fmt.Sprintf("navgraph: resource error: %s", e.Msg) }

func (e *ResourceError) Unwrap() error { return e.cause }

// InterruptedError indicates cooperative cancellation during a long build
// or add (§7 "Interruption"); no partial result is promised.
//
// The underlying cause can be reached via errors.Unwrap.
type InterruptedError struct {
	cause error
}

func (e *InterruptedError) Error() string { return fmt.Sprintf("navgraph: interrupted: %v", e.cause) }

func (e *InterruptedError) Unwrap() error { return e.cause }

// translateError maps internal engine/storage sentinel errors onto the
// façade-level error taxonomy, following the teacher's own
// translateError boundary-translation pattern.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &InterruptedError{cause: err}
	}

	if errors.Is(err, nsg.ErrAlreadyBuilt) {
		return &UsageError{Msg: "NSG does not support incremental addition after build", cause: err}
	}
	if errors.Is(err, nsg.ErrEmptyStorage) {
		return &UsageError{Msg: "build requires at least one vector already in storage", cause: err}
	}
	if errors.Is(err, nsg.ErrNotBuilt) {
		return &UsageError{Msg: "operation requires a completed build", cause: err}
	}

	var seedErr *nsg.ErrInvalidSeedGraph
	if errors.As(err, &seedErr) {
		return &InputError{Msg: seedErr.Error(), cause: err}
	}

	var dimErr *distance.ErrDimensionMismatch
	if errors.As(err, &dimErr) {
		return &InputError{Msg: dimErr.Error(), cause: err}
	}

	var nodeErr *distance.ErrNodeNotFound
	if errors.As(err, &nodeErr) {
		return &InputError{Msg: nodeErr.Error(), cause: err}
	}

	return err
}
