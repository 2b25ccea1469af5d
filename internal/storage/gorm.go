package storage

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"studentrecords/internal/model"
)

// studentRow is the table layout; Position keeps the collection order.
type studentRow struct {
	Position      int `gorm:"primaryKey;autoIncrement:false"`
	model.Student `gorm:"embedded"`
}

func (studentRow) TableName() string { return "students" }

// GormBackend stores the collection in a SQL table, one row per student.
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend migrates the students table and returns the backend.
func NewGormBackend(db *gorm.DB) (*GormBackend, error) {
	if err := db.AutoMigrate(&studentRow{}); err != nil {
		return nil, errors.Wrap(err, "failed to auto-migrate the database")
	}
	return &GormBackend{db: db}, nil
}

func (b *GormBackend) Load(ctx context.Context) ([]model.Student, error) {
	var rows []studentRow
	if err := b.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query students")
	}
	if len(rows) == 0 {
		return nil, ErrNotExist
	}

	students := make([]model.Student, len(rows))
	for i, row := range rows {
		students[i] = row.Student
	}
	return students, nil
}

func (b *GormBackend) Save(ctx context.Context, students []model.Student) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&studentRow{}).Error; err != nil {
			return errors.Wrap(err, "clear students")
		}
		if len(students) == 0 {
			return nil
		}

		rows := make([]studentRow, len(students))
		for i, s := range students {
			rows[i] = studentRow{Position: i + 1, Student: s}
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return errors.Wrap(err, "insert students")
		}
		return nil
	})
}

func (b *GormBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (b *GormBackend) String() string {
	return "sql:" + b.db.Dialector.Name()
}
