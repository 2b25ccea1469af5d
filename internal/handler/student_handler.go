package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"studentrecords/internal/model"
)

// StudentStore is the record store as seen by the HTTP shell.
type StudentStore interface {
	Add(ctx context.Context, student model.Student) error
	Remove(ctx context.Context, rollNumber string) (int, error)
	Search(rollNumber string) (model.Student, bool)
	List() []model.Student
}

type StudentHandler struct {
	studentService StudentStore
}

func NewStudentHandler(studentService StudentStore) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// AddStudent rejects a request with any empty field. A storage failure is
// reported as 500 although the student stays in the collection.
func (h *StudentHandler) AddStudent(w http.ResponseWriter, r *http.Request) {
	var student model.Student
	if err := json.NewDecoder(r.Body).Decode(&student); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := student.Validate(); err != nil {
		http.Error(w, model.MsgFieldsRequired, http.StatusBadRequest)
		return
	}

	if err := h.studentService.Add(r.Context(), student); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": model.MsgAdded,
		"data":    student,
	})
}

// RemoveStudent answers the same way whether or not anything matched.
func (h *StudentHandler) RemoveStudent(w http.ResponseWriter, r *http.Request) {
	rollNumber := mux.Vars(r)["roll"]

	if _, err := h.studentService.Remove(r.Context(), rollNumber); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"message": model.MsgRemoved})
}

func (h *StudentHandler) SearchStudent(w http.ResponseWriter, r *http.Request) {
	student, ok := h.studentService.Search(mux.Vars(r)["roll"])
	if !ok {
		http.Error(w, model.MsgNotFound, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students := h.studentService.List()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  students,
		"total": len(students),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
