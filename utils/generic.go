package utils

// Contains is a generic function that checks whether the specified item is present in the given array.
//
// Args:
//   - arr: The array to search in.
//   - item: The item to search for.
//
// Returns:
//   - bool: True if the item is found in the array, otherwise false.
func Contains[T comparable](arr []T, item T) bool {
	for _, i := range arr {
		if i == item {
			return true
		}
	}

	return false
}

// Remove is a generic function that removes the first occurrence of item from arr.
//
// Returns:
//   - []T: The modified array without the removed item.
func Remove[T comparable](arr []T, item T) []T {
	for i, v := range arr {
		if v == item {
			return append(arr[:i], arr[i+1:]...)
		}
	}

	return arr
}

// Set builds a membership set from the given items.
func Set[T comparable](items ...T) map[T]struct{} {
	s := make(map[T]struct{}, len(items))
	for _, i := range items {
		s[i] = struct{}{}
	}

	return s
}

// SameSet reports whether a and b hold the same members.
func SameSet[T comparable](a, b map[T]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}

	return true
}
