package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/gob"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"studentrecords/internal/model"
)

// Codec serializes a whole collection to and from a byte stream.
type Codec interface {
	Name() string
	Encode(w io.Writer, students []model.Student) error
	Decode(r io.Reader) ([]model.Student, error)
}

// CodecFor returns the codec registered under name.
func CodecFor(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "gob", "":
		return GobCodec{}, nil
	case "json":
		return JSONCodec{}, nil
	case "csv":
		return CSVCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	}
	return nil, errors.Errorf("unknown storage format %q", name)
}

// GobCodec writes a single gob value holding the slice. An empty stream is
// not a valid encoding.
type GobCodec struct{}

func (GobCodec) Name() string { return "gob" }

func (GobCodec) Encode(w io.Writer, students []model.Student) error {
	return gob.NewEncoder(w).Encode(nonNil(students))
}

func (GobCodec) Decode(r io.Reader) ([]model.Student, error) {
	var students []model.Student
	if err := gob.NewDecoder(r).Decode(&students); err != nil {
		return nil, err
	}
	return nonNil(students), nil
}

// JSONCodec writes a JSON array.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Encode(w io.Writer, students []model.Student) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(nonNil(students))
}

func (JSONCodec) Decode(r io.Reader) ([]model.Student, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []model.Student{}, nil
	}
	var students []model.Student
	if err := json.Unmarshal(data, &students); err != nil {
		return nil, err
	}
	return nonNil(students), nil
}

var csvHeader = []string{"name", "roll_number", "grade"}

// encoding/csv reads a quoted \r\n back as \n, so carriage returns are
// written as the two characters `\r` and backslashes are doubled.
var (
	csvEscaper   = strings.NewReplacer(`\`, `\\`, "\r", `\r`)
	csvUnescaper = strings.NewReplacer(`\\`, `\`, `\r`, "\r")
)

// CSVCodec writes a header row followed by one row per student.
type CSVCodec struct{}

func (CSVCodec) Name() string { return "csv" }

func (CSVCodec) Encode(w io.Writer, students []model.Student) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range students {
		if err := cw.Write([]string{
			csvEscaper.Replace(s.Name),
			csvEscaper.Replace(s.RollNumber),
			csvEscaper.Replace(s.Grade),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (CSVCodec) Decode(r io.Reader) ([]model.Student, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []model.Student{}, nil
	}
	for i, col := range records[0] {
		if col != csvHeader[i] {
			return nil, errors.Errorf("unexpected csv header %v", records[0])
		}
	}

	students := make([]model.Student, 0, len(records)-1)
	for _, rec := range records[1:] {
		students = append(students, model.Student{
			Name:       csvUnescaper.Replace(rec[0]),
			RollNumber: csvUnescaper.Replace(rec[1]),
			Grade:      csvUnescaper.Replace(rec[2]),
		})
	}
	return students, nil
}

// YAMLCodec writes a YAML sequence of mappings.
type YAMLCodec struct{}

func (YAMLCodec) Name() string { return "yaml" }

func (YAMLCodec) Encode(w io.Writer, students []model.Student) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(nonNil(students)); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func (YAMLCodec) Decode(r io.Reader) ([]model.Student, error) {
	var students []model.Student
	if err := yaml.NewDecoder(r).Decode(&students); err != nil {
		if err == io.EOF {
			return []model.Student{}, nil
		}
		return nil, err
	}
	return nonNil(students), nil
}
