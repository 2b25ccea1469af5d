package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"studentrecords/internal/logger"
	"studentrecords/internal/model"
	"studentrecords/internal/storage"
)

const studentComponent = "StudentService"

// StorageError reports a failed load or persist. The in-memory collection
// is not rolled back when a persist fails.
type StorageError struct {
	Op      string
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// StudentService owns the ordered student collection and mirrors it to a
// storage backend after every mutation. Operations are serialized.
type StudentService struct {
	backend storage.Backend
	log     logger.Logger

	mu       sync.Mutex
	students []model.Student
	loadErr  error
}

// NewStudentService loads the collection from backend. Missing storage
// starts an empty collection; unreadable storage is logged, recorded in
// LoadErr and also starts empty.
func NewStudentService(ctx context.Context, backend storage.Backend, log logger.Logger) *StudentService {
	s := &StudentService{
		backend:  backend,
		log:      log,
		students: []model.Student{},
	}
	s.load(ctx)
	return s
}

func (s *StudentService) load(ctx context.Context) {
	students, err := s.backend.Load(ctx)
	switch {
	case err == nil:
		s.students = students
		s.log.Info(studentComponent, "student data loaded", map[string]interface{}{
			"backend": s.backend.String(),
			"count":   len(students),
		})
	case errors.Is(err, storage.ErrNotExist):
		s.log.Info(studentComponent, "no stored student data, starting empty", map[string]interface{}{
			"backend": s.backend.String(),
		})
	default:
		s.loadErr = &StorageError{Op: "load", Backend: s.backend.String(), Err: err}
		s.log.Error(studentComponent, "stored students unreadable, starting empty", s.loadErr, map[string]interface{}{
			"backend": s.backend.String(),
		})
	}
}

// LoadErr returns the error hit while loading at construction, if any.
func (s *StudentService) LoadErr() error {
	return s.loadErr
}

// Add appends student and persists the collection.
func (s *StudentService) Add(ctx context.Context, student model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.students = append(s.students, student)
	s.log.Debug(studentComponent, "student added", map[string]interface{}{
		"roll_number": student.RollNumber,
	})
	return s.persist(ctx)
}

// AddMany appends students in order and persists once.
func (s *StudentService) AddMany(ctx context.Context, students []model.Student) error {
	if len(students) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.students = append(s.students, students...)
	s.log.Debug(studentComponent, "students added", map[string]interface{}{
		"count": len(students),
	})
	return s.persist(ctx)
}

// Remove deletes every student with the given roll number and persists the
// collection whether or not anything matched. It returns how many were
// removed.
func (s *StudentService) Remove(ctx context.Context, rollNumber string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.students[:0]
	for _, st := range s.students {
		if st.RollNumber != rollNumber {
			kept = append(kept, st)
		}
	}
	removed := len(s.students) - len(kept)
	clear(s.students[len(kept):])
	s.students = kept

	s.log.Debug(studentComponent, "students removed", map[string]interface{}{
		"roll_number": rollNumber,
		"removed":     removed,
	})
	return removed, s.persist(ctx)
}

// Search returns the first student with the given roll number.
func (s *StudentService) Search(rollNumber string) (model.Student, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.students {
		if st.RollNumber == rollNumber {
			return st, true
		}
	}
	return model.Student{}, false
}

// List returns a copy of the collection in insertion order.
func (s *StudentService) List() []model.Student {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Student, len(s.students))
	copy(out, s.students)
	return out
}

func (s *StudentService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.students)
}

// persist must be called with mu held.
func (s *StudentService) persist(ctx context.Context) error {
	if err := s.backend.Save(ctx, s.students); err != nil {
		serr := &StorageError{Op: "persist", Backend: s.backend.String(), Err: err}
		s.log.Error(studentComponent, "failed to save students", serr, map[string]interface{}{
			"count": len(s.students),
		})
		return serr
	}
	return nil
}
