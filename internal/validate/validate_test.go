package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTime(t *testing.T) {
	valid := []string{"00:00", "09:00", "12:30", "23:59", "20:00"}
	for _, s := range valid {
		assert.True(t, ValidTime(s), "expected %q to be valid", s)
	}

	invalid := []string{"24:00", "12:60", "9:00", "09:5", "0900", "ab:cd", "", " 09:00"}
	for _, s := range invalid {
		assert.False(t, ValidTime(s), "expected %q to be invalid", s)
	}
}

func TestValidDate(t *testing.T) {
	valid := []string{"01/01/2025", "25/12/2025", "29/02/2024", "31/12/1999"}
	for _, s := range valid {
		assert.True(t, ValidDate(s), "expected %q to be valid", s)
	}

	invalid := []string{"31/02/2025", "00/01/2025", "aa/bb/cccc", "29/02/2025", "1/1/2025", "2025-12-25", ""}
	for _, s := range invalid {
		assert.False(t, ValidDate(s), "expected %q to be invalid", s)
	}
}

func TestValidRating(t *testing.T) {
	for n := 1; n <= 5; n++ {
		assert.True(t, ValidRating(n))
	}
	for _, n := range []int{0, -1, 6, 100} {
		assert.False(t, ValidRating(n))
	}
}
