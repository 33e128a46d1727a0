package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig reports construction parameters outside their valid
	// range.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotSupported reports a well-formed configuration this build or
	// CPU cannot provide.
	ErrNotSupported = errors.New("unsupported configuration")

	// ErrPrecondition reports a caller exceeding advertised headroom.
	ErrPrecondition = errors.New("precondition violated")

	// ErrInvalidState reports an operation illegal in the current state,
	// such as PutN after Flush. It wraps ErrPrecondition.
	ErrInvalidState = fmt.Errorf("%w: invalid state", ErrPrecondition)
)

func preconditionErr(err error) error {
	return fmt.Errorf("%w: %w", ErrPrecondition, err)
}

func configErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
