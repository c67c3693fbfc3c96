package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIdentity(t *testing.T) {
	tests := []struct {
		identity string
		id       string
		ok       bool
	}{
		{"user_42", "42", true},
		{" user_7 ", "7", true},
		{"user_007", "7", true},
		{"user_0", "0", true},
		{"user_", "", false},
		{"user_abc", "", false},
		{"guest_12", "", false},
		{"42", "", false},
		{"", "", false},
	}

	for _, test := range tests {
		id, ok := ParseIdentity(test.identity)
		assert.Equal(t, test.ok, ok, "ParseIdentity(%q) ok", test.identity)
		assert.Equal(t, test.id, id, "ParseIdentity(%q) id", test.identity)
	}
}

func TestFormatIdentity(t *testing.T) {
	identity := FormatIdentity("15")
	assert.Equal(t, "user_15", identity)

	id, ok := ParseIdentity(identity)
	assert.True(t, ok)
	assert.Equal(t, "15", id)
}

func TestIsDigit(t *testing.T) {
	assert.True(t, IsDigit("0123"))
	assert.False(t, IsDigit(""))
	assert.False(t, IsDigit("-1"))
	assert.False(t, IsDigit("1a"))
}
