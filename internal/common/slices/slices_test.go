package slices

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	toString := func(val int) string { return fmt.Sprintf("%d", val) }
	input := []int{1, 3, 5, 7, 9}
	expectedOutput := []string{"1", "3", "5", "7", "9"}

	output := Map(input, toString)
	assert.Equal(t, expectedOutput, output)
}

func TestMapEmptyList(t *testing.T) {
	toString := func(val int) string { return fmt.Sprintf("%d", val) }
	input := []int{}
	expectedOutput := []string{}

	output := Map(input, toString)
	assert.Equal(t, expectedOutput, output)
}

func TestFill(t *testing.T) {
	assert.Equal(t, []float64{2.5, 2.5, 2.5}, Fill(2.5, 3))
	assert.Equal(t, []string{}, Fill("a", 0))
}

func TestZerosAndOnes(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0, 0}, Zeros[float64](4))
	assert.Equal(t, []float64{1, 1, 1, 1}, Ones[float64](4))
	assert.Equal(t, []int{1, 1}, Ones[int](2))
}

func TestPartition(t *testing.T) {
	tests := map[string]struct {
		input    []int
		n        int
		expected [][]int
	}{
		"evenly divisible": {
			input:    []int{1, 2, 3, 4, 5, 6},
			n:        3,
			expected: [][]int{{1, 2}, {3, 4}, {5, 6}},
		},
		"remainder spread over the first partitions": {
			input:    []int{1, 2, 3, 4, 5, 6, 7},
			n:        3,
			expected: [][]int{{1, 2, 3}, {4, 5}, {6, 7}},
		},
		"more partitions than elements": {
			input:    []int{1, 2},
			n:        4,
			expected: [][]int{{1}, {2}, {}, {}},
		},
		"single partition": {
			input:    []int{1, 2, 3},
			n:        1,
			expected: [][]int{{1, 2, 3}},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Partition(tc.input, tc.n))
		})
	}
}

func TestPartitionFlattenRoundtrip(t *testing.T) {
	s := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	for n := 1; n < 2*len(s); n++ {
		assert.Equal(t, s, Flatten(Partition(s, n)))
	}
}

func TestPartitionToMaxLen(t *testing.T) {
	s := []int{1, 2, 3, 4, 5, 6, 7}
	for maxLen := 1; maxLen < 2*len(s); maxLen++ {
		partitions := PartitionToMaxLen(s, maxLen)
		for _, partition := range partitions {
			assert.LessOrEqual(t, len(partition), maxLen)
		}
		assert.Equal(t, s, Flatten(partitions))
	}
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, Unique([]int{1, 2, 1, 3, 2}))
	assert.Equal(t, []string(nil), Unique([]string(nil)))
}
