package service

import (
	"context"
	"math/rand"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"studentrecords/internal/logger"
	"studentrecords/internal/model"
	"studentrecords/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Load(ctx context.Context) ([]model.Student, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Student), args.Error(1)
}

func (m *MockBackend) Save(ctx context.Context, students []model.Student) error {
	snapshot := append([]model.Student(nil), students...)
	return m.Called(ctx, snapshot).Error(0)
}

func (m *MockBackend) Close() error { return nil }

func (m *MockBackend) String() string { return "mock" }

var (
	alice = model.Student{Name: "Alice", RollNumber: "R1", Grade: "A"}
	bob   = model.Student{Name: "Bob", RollNumber: "R2", Grade: "B"}
	carol = model.Student{Name: "Carol", RollNumber: "R3", Grade: "C"}
)

func newFileService(t *testing.T, path string) *StudentService {
	t.Helper()
	backend := storage.NewFileBackend(path, storage.GobCodec{})
	return NewStudentService(context.Background(), backend, logger.Nop())
}

func TestFreshStoreIsEmpty(t *testing.T) {
	svc := newFileService(t, filepath.Join(t.TempDir(), "students.dat"))

	assert.Empty(t, svc.List())
	assert.NotNil(t, svc.List())
	assert.NoError(t, svc.LoadErr())
}

func TestAddAddRemove(t *testing.T) {
	ctx := context.Background()
	svc := newFileService(t, filepath.Join(t.TempDir(), "students.dat"))

	require.NoError(t, svc.Add(ctx, alice))
	require.NoError(t, svc.Add(ctx, bob))
	removed, err := svc.Remove(ctx, "R1")
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	assert.Equal(t, []model.Student{bob}, svc.List())
}

func TestRestartReloadsCollection(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "students.dat")

	first := newFileService(t, path)
	require.NoError(t, first.Add(ctx, carol))

	second := newFileService(t, path)
	assert.Equal(t, []model.Student{carol}, second.List())
}

func TestRemoveDeletesEveryMatch(t *testing.T) {
	ctx := context.Background()
	svc := newFileService(t, filepath.Join(t.TempDir(), "students.dat"))

	dup := model.Student{Name: "Alice Two", RollNumber: "R1", Grade: "B"}
	require.NoError(t, svc.AddMany(ctx, []model.Student{alice, bob, dup}))

	removed, err := svc.Remove(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []model.Student{bob}, svc.List())
}

func TestRemoveIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	svc := newFileService(t, filepath.Join(t.TempDir(), "students.dat"))
	require.NoError(t, svc.Add(ctx, alice))

	removed, err := svc.Remove(ctx, "r1")
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, []model.Student{alice}, svc.List())
}

func TestRemoveMissingStillPersists(t *testing.T) {
	ctx := context.Background()
	backend := new(MockBackend)
	backend.On("Load", mock.Anything).Return(nil, storage.ErrNotExist)
	backend.On("Save", mock.Anything, []model.Student{alice}).Return(nil)

	svc := NewStudentService(ctx, backend, logger.Nop())
	require.NoError(t, svc.Add(ctx, alice))

	removed, err := svc.Remove(ctx, "R9")
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, []model.Student{alice}, svc.List())

	backend.AssertNumberOfCalls(t, "Save", 2)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	svc := newFileService(t, filepath.Join(t.TempDir(), "students.dat"))

	dup := model.Student{Name: "Alice Two", RollNumber: "R1", Grade: "B"}
	require.NoError(t, svc.AddMany(ctx, []model.Student{bob, alice, dup}))

	got, ok := svc.Search("R1")
	assert.True(t, ok)
	assert.Equal(t, alice, got)

	_, ok = svc.Search("R9")
	assert.False(t, ok)
}

func TestSearchDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	backend := new(MockBackend)
	backend.On("Load", mock.Anything).Return([]model.Student{alice}, nil)

	svc := NewStudentService(ctx, backend, logger.Nop())
	_, ok := svc.Search("R1")
	assert.True(t, ok)
	assert.Equal(t, 1, svc.Count())

	backend.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestListReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	svc := newFileService(t, filepath.Join(t.TempDir(), "students.dat"))
	require.NoError(t, svc.Add(ctx, alice))

	list := svc.List()
	list[0].Name = "Mallory"

	got, _ := svc.Search("R1")
	assert.Equal(t, "Alice", got.Name)
}

func TestCorruptStorageStartsEmpty(t *testing.T) {
	ctx := context.Background()
	backend := new(MockBackend)
	backend.On("Load", mock.Anything).Return(nil, &storage.CorruptError{Location: "students.dat", Err: errors.New("bad data")})

	svc := NewStudentService(ctx, backend, logger.Nop())

	assert.Empty(t, svc.List())
	require.Error(t, svc.LoadErr())
	assert.True(t, errors.Is(svc.LoadErr(), storage.ErrCorrupt))

	var serr *StorageError
	require.True(t, errors.As(svc.LoadErr(), &serr))
	assert.Equal(t, "load", serr.Op)
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	backend := new(MockBackend)
	backend.On("Load", mock.Anything).Return(nil, storage.ErrNotExist)
	backend.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := NewStudentService(ctx, backend, logger.Nop())

	err := svc.Add(ctx, alice)
	require.Error(t, err)

	var serr *StorageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "persist", serr.Op)
	assert.Equal(t, "mock", serr.Backend)
	assert.Equal(t, []model.Student{alice}, svc.List())

	removed, err := svc.Remove(ctx, "R1")
	assert.Error(t, err)
	assert.Equal(t, 1, removed)
	assert.Empty(t, svc.List())
}

func TestAddManyEmptyDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	backend := new(MockBackend)
	backend.On("Load", mock.Anything).Return(nil, storage.ErrNotExist)

	svc := NewStudentService(ctx, backend, logger.Nop())
	require.NoError(t, svc.AddMany(ctx, nil))

	backend.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// Random add/remove sequences must match a plain slice model, before and
// after a reload.
func TestMatchesReferenceModel(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	path := filepath.Join(t.TempDir(), "students.dat")
	svc := newFileService(t, path)

	var reference []model.Student
	for i := 0; i < 200; i++ {
		roll := "R" + strconv.Itoa(rng.Intn(10))
		if rng.Intn(3) == 0 {
			_, err := svc.Remove(ctx, roll)
			require.NoError(t, err)
			kept := reference[:0]
			for _, s := range reference {
				if s.RollNumber != roll {
					kept = append(kept, s)
				}
			}
			reference = kept
			continue
		}
		st := model.Student{Name: "N" + strconv.Itoa(i), RollNumber: roll, Grade: string(rune('A' + rng.Intn(5)))}
		require.NoError(t, svc.Add(ctx, st))
		reference = append(reference, st)
	}

	if reference == nil {
		reference = []model.Student{}
	}
	assert.Equal(t, reference, svc.List())
	assert.Equal(t, reference, newFileService(t, path).List())
}
