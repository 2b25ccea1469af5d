package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrMissingField is returned by Validate when a required field is empty.
var ErrMissingField = errors.New("missing required field")

// Student is one record of the collection. RollNumber identifies a student
// for search and removal but is not required to be unique.
type Student struct {
	Name       string `json:"name" yaml:"name" gorm:"column:name"`
	RollNumber string `json:"roll_number" yaml:"roll_number" gorm:"column:roll_number;index"`
	Grade      string `json:"grade" yaml:"grade" gorm:"column:grade"`
}

// Validate checks that every field is present.
func (s Student) Validate() error {
	switch {
	case s.Name == "":
		return errors.WithMessage(ErrMissingField, "name")
	case s.RollNumber == "":
		return errors.WithMessage(ErrMissingField, "roll number")
	case s.Grade == "":
		return errors.WithMessage(ErrMissingField, "grade")
	}
	return nil
}

func (s Student) String() string {
	return fmt.Sprintf("Name='%s', RollNumber='%s', Grade='%s'", s.Name, s.RollNumber, s.Grade)
}
