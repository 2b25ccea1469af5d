package handler

import (
	"github.com/gorilla/mux"
)

// NewRouter maps the HTTP API onto the handlers.
func NewRouter(students *StudentHandler, upload *UploadHandler, progress *ProgressHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/students", students.ListStudents).Methods("GET")
	r.HandleFunc("/students", students.AddStudent).Methods("POST")
	r.HandleFunc("/students/{roll}", students.SearchStudent).Methods("GET")
	r.HandleFunc("/students/{roll}", students.RemoveStudent).Methods("DELETE")

	r.HandleFunc("/upload", upload.UploadCSV).Methods("POST")

	r.HandleFunc("/progress", progress.GetAllProgress).Methods("GET")
	r.HandleFunc("/progress/file", progress.GetFileProgress).Methods("GET")
	r.HandleFunc("/progress/stream", progress.SSEProgress).Methods("GET")

	return r
}
