// Package storage mirrors the whole student collection to a single
// persistent location. Every backend replaces its contents on Save and
// returns them in order on Load.
package storage

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"studentrecords/internal/model"
)

var (
	// ErrNotExist is returned by Load when nothing has been stored yet.
	ErrNotExist = errors.New("storage does not exist")
	// ErrCorrupt is matched by errors returned when stored data exists but
	// cannot be decoded.
	ErrCorrupt = errors.New("storage is corrupt")
)

// Backend is a whole-collection store.
type Backend interface {
	// Load returns the stored collection in order, or ErrNotExist.
	Load(ctx context.Context) ([]model.Student, error)
	// Save replaces the stored collection with students.
	Save(ctx context.Context, students []model.Student) error
	// Close releases any handle held by the backend.
	Close() error
	// String names the backend and its location for logs.
	String() string
}

// CorruptError reports undecodable stored data.
type CorruptError struct {
	Location string
	Err      error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt storage %s: %v", e.Location, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

func (e *CorruptError) Is(target error) bool { return target == ErrCorrupt }

func nonNil(students []model.Student) []model.Student {
	if students == nil {
		return []model.Student{}
	}
	return students
}
