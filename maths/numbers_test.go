package maths

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMin(t *testing.T) {
	type testCase struct {
		name     string
		a, b     int
		expected int
	}

	cases := []testCase{
		{
			name:     "FirstSmaller",
			a:        1,
			b:        2,
			expected: 1,
		},
		{
			name:     "SecondSmaller",
			a:        2,
			b:        1,
			expected: 1,
		},
		{
			name:     "Equal",
			a:        42,
			b:        42,
			expected: 42,
		},
		{
			name:     "Negative",
			a:        -1,
			b:        0,
			expected: -1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Min(tc.a, tc.b))
		})
	}
}

func TestMax(t *testing.T) {
	type testCase struct {
		name     string
		a, b     int
		expected int
	}

	cases := []testCase{
		{
			name:     "FirstLarger",
			a:        2,
			b:        1,
			expected: 2,
		},
		{
			name:     "SecondLarger",
			a:        1,
			b:        2,
			expected: 2,
		},
		{
			name:     "Equal",
			a:        42,
			b:        42,
			expected: 42,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Max(tc.a, tc.b))
		})
	}
}

func TestMinUint64(t *testing.T) {
	type testCase struct {
		name     string
		a, b     uint64
		expected uint64
	}

	cases := []testCase{
		{
			name:     "FirstSmaller",
			a:        1,
			b:        2,
			expected: 1,
		},
		{
			name:     "SecondSmaller",
			a:        math.MaxUint64,
			b:        1,
			expected: 1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, MinUint64(tc.a, tc.b))
		})
	}
}
