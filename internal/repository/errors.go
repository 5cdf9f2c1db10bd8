package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStorage matches every *StorageFailure via errors.Is.
	ErrStorage = errors.New("storage failure")
)

// StorageFailure wraps an error raised by the local store (quota, I/O,
// corruption). It is always propagated, never swallowed.
type StorageFailure struct {
	Op  string
	Err error
}

func (f *StorageFailure) Error() string {
	return fmt.Sprintf("storage failure: %s: %v", f.Op, f.Err)
}

func (f *StorageFailure) Unwrap() error { return f.Err }

func (f *StorageFailure) Is(target error) bool { return target == ErrStorage }

func storageErr(op string, err error) error {
	return &StorageFailure{Op: op, Err: err}
}
