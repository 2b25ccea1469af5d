package model

import "strings"

// Notices shown by every front end.
const (
	MsgFieldsRequired = "All fields are required."
	MsgAdded          = "Student added successfully."
	MsgRemoved        = "Student removed successfully."
	MsgNotFound       = "Student not found."
)

// FormatList renders one student per line.
func FormatList(students []Student) string {
	var sb strings.Builder
	for _, st := range students {
		sb.WriteString(st.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
