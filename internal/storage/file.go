package storage

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"studentrecords/internal/model"
)

// FileBackend keeps the collection in one file encoded with a Codec. The
// file is opened and closed around every read and write; writes go to a
// temporary file in the same directory which then replaces the target.
type FileBackend struct {
	path  string
	codec Codec
}

func NewFileBackend(path string, codec Codec) *FileBackend {
	return &FileBackend{path: path, codec: codec}
}

func (b *FileBackend) Load(ctx context.Context) ([]model.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, errors.Wrapf(err, "open %s", b.path)
	}
	defer f.Close()

	students, err := b.codec.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, &CorruptError{Location: b.path, Err: err}
	}
	return nonNil(students), nil
}

func (b *FileBackend) Save(ctx context.Context, students []model.Student) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir, base := filepath.Split(b.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "create %s", b.path)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	if err = b.codec.Encode(w, students); err != nil {
		return errors.Wrapf(err, "encode %s", b.path)
	}
	if err = w.Flush(); err != nil {
		return errors.Wrapf(err, "write %s", b.path)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "sync %s", b.path)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", b.path)
	}
	if err = os.Rename(tmpName, b.path); err != nil {
		return errors.Wrapf(err, "replace %s", b.path)
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) String() string {
	return "file(" + b.codec.Name() + "):" + b.path
}
