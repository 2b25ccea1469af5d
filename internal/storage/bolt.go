package storage

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"studentrecords/internal/model"
)

var studentsBucket = []byte("students")

// BoltBackend stores the collection in a bbolt bucket keyed by big-endian
// position, so cursor order is collection order.
type BoltBackend struct {
	path string
	db   *bolt.DB
}

func NewBoltBackend(path string) (*BoltBackend, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return &BoltBackend{path: path, db: db}, nil
}

func (b *BoltBackend) Load(ctx context.Context) ([]model.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var students []model.Student
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(studentsBucket)
		if bucket == nil {
			return ErrNotExist
		}
		students = make([]model.Student, 0, bucket.Stats().KeyN)
		return bucket.ForEach(func(k, v []byte) error {
			var s model.Student
			if err := json.Unmarshal(v, &s); err != nil {
				return &CorruptError{Location: b.path, Err: errors.Wrapf(err, "key %x", k)}
			}
			students = append(students, s)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (b *BoltBackend) Save(ctx context.Context, students []model.Student) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(studentsBucket) != nil {
			if err := tx.DeleteBucket(studentsBucket); err != nil {
				return err
			}
		}
		bucket, err := tx.CreateBucket(studentsBucket)
		if err != nil {
			return err
		}

		for i, s := range students {
			value, err := json.Marshal(s)
			if err != nil {
				return err
			}
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, uint64(i))
			if err := bucket.Put(key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}

func (b *BoltBackend) String() string {
	return "bolt:" + b.path
}
