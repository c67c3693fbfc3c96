package utils

import (
	"strings"
)

// IdentityPrefix is the prefix of real-time SDK identities that map to backend users.
const IdentityPrefix = "user_"

// ParseIdentity extracts the backend user id from an SDK identity string.
//
// The identity follows the "user_<id>" convention where <id> is a decimal number.
//
// Args:
//   - identity: The SDK identity string.
//
// Returns:
//   - string: The backend user id.
//   - bool: False if the identity does not follow the convention.
func ParseIdentity(identity string) (string, bool) {
	identity = strings.TrimSpace(identity)
	if !strings.HasPrefix(identity, IdentityPrefix) {
		return "", false
	}

	id := identity[len(IdentityPrefix):]
	if !IsDigit(id) {
		return "", false
	}

	// Normalise "user_007" to the backend form "7".
	id = strings.TrimLeft(id, "0")
	if id == "" {
		id = "0"
	}

	return id, true
}

// FormatIdentity builds the SDK identity string for a backend user id.
func FormatIdentity(userID string) string {
	return IdentityPrefix + userID
}

// IsDigit checks whether the provided string is a non-empty run of ASCII digits.
func IsDigit(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
