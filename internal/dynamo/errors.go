package dynamo

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an item does not exist.
	ErrNotFound = errors.New("item not found")

	// ErrAlreadyExists is returned when creating an item whose key is taken.
	ErrAlreadyExists = errors.New("item already exists")
)

// NotFoundError names the table and key that were missing.
type NotFoundError struct {
	Table string
	Key   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s item %q not found", e.Table, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError names the table and key that collided.
type AlreadyExistsError struct {
	Table string
	Key   string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s item %q already exists", e.Table, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}
