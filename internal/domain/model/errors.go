package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the tournament core matches exactly
// one of these with errors.Is.
var (
	ErrPrecondition = errors.New("precondition violation")
	ErrStore        = errors.New("store failure")
)

// Precondition violations.
var (
	ErrSameCompetitor    = fmt.Errorf("%w: winner and loser must differ", ErrPrecondition)
	ErrUnknownCompetitor = fmt.Errorf("%w: competitor does not exist", ErrPrecondition)
	ErrOddCompetitors    = fmt.Errorf("%w: pairing needs an even number of competitors", ErrPrecondition)
	ErrEmptyName         = fmt.Errorf("%w: competitor name must not be blank", ErrPrecondition)
)

// storeError tags a store error with ErrStore while keeping the original
// error reachable through errors.Is and errors.As.
type storeError struct {
	op  string
	err error
}

func (e *storeError) Error() string { return e.op + ": " + e.err.Error() }

func (e *storeError) Unwrap() []error { return []error{ErrStore, e.err} }

// StoreFailure wraps err as a store failure for operation op. A nil err
// stays nil and an error that already carries a kind is returned as is.
func StoreFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStore) || errors.Is(err, ErrPrecondition) {
		return err
	}
	return &storeError{op: op, err: err}
}

// IsPrecondition reports whether err is a precondition violation.
func IsPrecondition(err error) bool { return errors.Is(err, ErrPrecondition) }
