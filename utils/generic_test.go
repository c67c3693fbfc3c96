package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	arr := []string{"1", "2", "3"}
	assert.True(t, Contains(arr, "3"), "Contains should return true if the item is found")
	assert.False(t, Contains(arr, "6"), "Contains should return false if the item is not found")
}

func TestRemove(t *testing.T) {
	arr := []int{1, 2, 3, 4, 5}
	expectedArr := []int{1, 2, 4, 5}
	assert.Equal(t, expectedArr, Remove(arr, 3), "Remove should return the array without the removed item")
	assert.Equal(t, []int{1, 2, 4, 5}, Remove([]int{1, 2, 4, 5}, 9), "Remove should leave the array untouched when the item is missing")
}

func TestSameSet(t *testing.T) {
	assert.True(t, SameSet(Set("1", "2"), Set("2", "1")))
	assert.False(t, SameSet(Set("1", "2"), Set("1")))
	assert.False(t, SameSet(Set("1", "2"), Set("1", "3")))
	assert.True(t, SameSet(Set[string](), map[string]struct{}{}))
}
