package utils

// Flags represents an integer bit set.
type Flags interface {
	~int64 | ~uint32 | ~uint64
}

// ComputeFlagChanges computes the flag changes between the oldFlags and newFlags values.
//
// Args:
//   - oldFlags: The old flag value.
//   - newFlags: The new flag value.
//
// Returns:
//   - T: The bits set in newFlags but not in oldFlags.
//   - T: The bits set in oldFlags but not in newFlags.
func ComputeFlagChanges[T Flags](oldFlags, newFlags T) (addedFlags, removedFlags T) {
	addedFlags = newFlags &^ oldFlags
	removedFlags = oldFlags &^ newFlags

	return
}
