package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatList(t *testing.T) {
	assert.Empty(t, FormatList(nil))
	assert.Equal(t,
		"Name='Alice', RollNumber='R1', Grade='A'\nName='Bob', RollNumber='R2', Grade='B'\n",
		FormatList([]Student{
			{Name: "Alice", RollNumber: "R1", Grade: "A"},
			{Name: "Bob", RollNumber: "R2", Grade: "B"},
		}))
}
