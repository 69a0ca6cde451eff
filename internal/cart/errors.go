package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by AdjustQuantity when no line exists for the product id.
	ErrNotFound = errors.New("cart: line not found")

	// ErrPersistence matches every *PersistenceError through errors.Is.
	ErrPersistence = errors.New("cart: persistence failure")

	// ErrParseFailure marks price text that could not be read as a number.
	// It never leaves the aggregation layer.
	ErrParseFailure = errors.New("cart: price text not parseable")

	ErrInvalidProduct = errors.New("cart: product id is required")
	ErrClosed         = errors.New("cart: service closed")
)

// PersistenceError wraps an I/O or commit failure of the underlying store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cart: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func persistenceFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
