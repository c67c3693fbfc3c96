package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		input       string
		expected    time.Time
		expectError bool
	}{
		{"1632992395.123456", time.Unix(1632992395, 123456000).UTC(), false},
		{"1632992395", time.Unix(1632992395, 0).UTC(), false},
		{"0.0", time.Unix(0, 0).UTC(), false},
		{"2024-01-01T00:00:00Z", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"2024-01-01 10:30:00", time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), false},
		{"2024-01-01 10:30:00.250000", time.Date(2024, 1, 1, 10, 30, 0, 250000000, time.UTC), false},
		{"invalid", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, test := range tests {
		result, err := ParseTime(test.input)
		if test.expectError {
			assert.ErrorIs(t, err, ErrBadTime, "Expected error for input %s", test.input)
		} else {
			assert.NoError(t, err, "Unexpected error for input %s", test.input)
			assert.True(t, test.expected.Equal(result), "For input %s, expected %v, but got %v", test.input, test.expected, result)
		}
	}
}
