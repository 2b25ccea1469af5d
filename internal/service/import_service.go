package service

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"studentrecords/internal/logger"
	"studentrecords/internal/model"
)

const (
	importComponent = "ImportService"

	// ImportBatchSize is how many rows are added per persist.
	ImportBatchSize = 1000

	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

type ProgressInfo struct {
	FileName     string
	TotalRecords int
	Processed    int
	Skipped      int
	Status       string // "processing", "completed", "error"
	Error        string
	StartTime    time.Time
	EndTime      time.Time
}

// StudentAdder is the part of StudentService the importer needs.
type StudentAdder interface {
	AddMany(ctx context.Context, students []model.Student) error
}

// ImportService bulk-loads students from CSV files and tracks per-file
// progress for listeners.
type ImportService struct {
	students StudentAdder
	log      logger.Logger

	fileProgressMap   map[string]*ProgressInfo
	fileProgressLock  sync.RWMutex
	progressListeners map[chan *ProgressInfo]bool
	listenerLock      sync.RWMutex
}

func NewImportService(students StudentAdder, log logger.Logger) *ImportService {
	return &ImportService{
		students:          students,
		log:               log,
		fileProgressMap:   make(map[string]*ProgressInfo),
		progressListeners: make(map[chan *ProgressInfo]bool),
	}
}

func (s *ImportService) RegisterProgressListener(ch chan *ProgressInfo) {
	s.listenerLock.Lock()
	defer s.listenerLock.Unlock()
	s.progressListeners[ch] = true
}

// UnregisterProgressListener removes a client from receiving progress updates
func (s *ImportService) UnregisterProgressListener(ch chan *ProgressInfo) {
	s.listenerLock.Lock()
	defer s.listenerLock.Unlock()
	delete(s.progressListeners, ch)
}

// BroadcastProgress sends a copy of progress to every listener that is
// ready to receive; busy listeners miss the update.
func (s *ImportService) BroadcastProgress(progress *ProgressInfo) {
	s.listenerLock.RLock()
	defer s.listenerLock.RUnlock()

	for listener := range s.progressListeners {
		update := *progress
		select {
		case listener <- &update:
		default:
		}
	}
}

func (s *ImportService) updateProgress(fileName string, processed, skipped int) {
	s.fileProgressLock.Lock()
	defer s.fileProgressLock.Unlock()

	if progress, exists := s.fileProgressMap[fileName]; exists {
		progress.Processed += processed
		progress.Skipped += skipped
		if progress.Processed > progress.TotalRecords {
			progress.Processed = progress.TotalRecords
		}
		s.BroadcastProgress(progress)
	}
}

func (s *ImportService) updateProgressError(fileName string, errorMsg string) {
	s.fileProgressLock.Lock()
	defer s.fileProgressLock.Unlock()

	if progress, exists := s.fileProgressMap[fileName]; exists {
		progress.Status = StatusError
		progress.Error = errorMsg
		progress.EndTime = time.Now()
		s.BroadcastProgress(progress)
	}
}

func (s *ImportService) GetFileProgress(fileName string) *ProgressInfo {
	s.fileProgressLock.RLock()
	defer s.fileProgressLock.RUnlock()

	if progress, exists := s.fileProgressMap[fileName]; exists {
		copyProgress := *progress
		return &copyProgress
	}

	return nil
}

// GetAllFileProgress returns copies of every tracked file, sorted by name.
func (s *ImportService) GetAllFileProgress() []*ProgressInfo {
	s.fileProgressLock.RLock()
	defer s.fileProgressLock.RUnlock()

	result := make([]*ProgressInfo, 0, len(s.fileProgressMap))
	for _, progress := range s.fileProgressMap {
		copyProgress := *progress
		result = append(result, &copyProgress)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FileName < result[j].FileName })

	return result
}

// ProcessCSV adds every valid row of the CSV file at filePath, in file
// order. The first row is a header naming the name, roll_number and grade
// columns in any order. Rows that are short or fail validation are skipped.
func (s *ImportService) ProcessCSV(ctx context.Context, filePath string) error {
	fileName := filepath.Base(filePath)
	startTime := time.Now()

	s.fileProgressLock.Lock()
	s.fileProgressMap[fileName] = &ProgressInfo{
		FileName:  fileName,
		Status:    StatusProcessing,
		StartTime: startTime,
	}
	s.fileProgressLock.Unlock()

	totalRecords, err := countRecords(filePath)
	if err != nil {
		s.updateProgressError(fileName, "Failed to count records: "+err.Error())
		return err
	}

	s.fileProgressLock.Lock()
	s.fileProgressMap[fileName].TotalRecords = totalRecords
	s.fileProgressLock.Unlock()

	file, err := os.Open(filePath)
	if err != nil {
		s.updateProgressError(fileName, "Failed to open file: "+err.Error())
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		s.updateProgressError(fileName, "Failed to read header: "+err.Error())
		return errors.Wrap(err, "read header")
	}
	cols, err := headerColumns(header)
	if err != nil {
		s.updateProgressError(fileName, err.Error())
		return err
	}

	batch := make([]model.Student, 0, ImportBatchSize)
	processed, skipped := 0, 0

	flush := func() error {
		if err := s.students.AddMany(ctx, batch); err != nil {
			return err
		}
		s.updateProgress(fileName, processed, skipped)
		batch = batch[:0]
		processed, skipped = 0, 0
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			s.updateProgressError(fileName, err.Error())
			return err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil && !isParseError(err) {
			s.updateProgressError(fileName, "Failed to read file: "+err.Error())
			return err
		}
		processed++
		if err != nil {
			s.log.Warning(importComponent, "skipping unreadable csv record", map[string]interface{}{
				"file":  fileName,
				"error": err.Error(),
			})
			skipped++
			continue
		}

		student, ok := cols.student(record)
		if !ok {
			skipped++
			continue
		}
		if err := student.Validate(); err != nil {
			s.log.Warning(importComponent, "skipping invalid student", map[string]interface{}{
				"file":  fileName,
				"error": err.Error(),
			})
			skipped++
			continue
		}

		batch = append(batch, student)
		if len(batch) >= ImportBatchSize {
			if err := flush(); err != nil {
				s.updateProgressError(fileName, "Failed to store students: "+err.Error())
				return err
			}
		}
	}
	if err := flush(); err != nil {
		s.updateProgressError(fileName, "Failed to store students: "+err.Error())
		return err
	}

	s.fileProgressLock.Lock()
	if progress, exists := s.fileProgressMap[fileName]; exists {
		progress.Status = StatusCompleted
		progress.EndTime = time.Now()
		progress.Processed = progress.TotalRecords
		s.BroadcastProgress(progress)
	}
	s.fileProgressLock.Unlock()

	s.log.Info(importComponent, "import completed", map[string]interface{}{
		"file":     fileName,
		"records":  totalRecords,
		"duration": time.Since(startTime).String(),
	})

	return nil
}

type columns struct {
	name, roll, grade int
}

func headerColumns(header []string) (columns, error) {
	cols := columns{-1, -1, -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "student_name":
			cols.name = i
		case "roll_number", "roll number", "rollnumber", "roll":
			cols.roll = i
		case "grade":
			cols.grade = i
		}
	}
	if cols.name < 0 || cols.roll < 0 || cols.grade < 0 {
		return cols, errors.Errorf("csv header %v must name name, roll_number and grade columns", header)
	}
	return cols, nil
}

func (c columns) student(record []string) (model.Student, bool) {
	if len(record) <= max(c.name, c.roll, c.grade) {
		return model.Student{}, false
	}
	return model.Student{
		Name:       record[c.name],
		RollNumber: record[c.roll],
		Grade:      record[c.grade],
	}, true
}

// countRecords returns the number of data rows, excluding the header.
func countRecords(filePath string) (int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	count := 0
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil && !isParseError(err) {
			return count, err
		}
		count++
	}

	if count > 0 {
		count--
	}
	return count, nil
}

func isParseError(err error) bool {
	var perr *csv.ParseError
	return errors.As(err, &perr)
}
