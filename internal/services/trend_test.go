package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrend(t *testing.T) {
	cases := []struct {
		name     string
		current  int
		prior    int
		expected int
	}{
		{"doubling", 20, 10, 100},
		{"halving", 5, 10, -50},
		{"flat", 10, 10, 0},
		{"rounds to nearest percent", 11, 3, 267},
		{"rounds down", 10, 3, 233},
		{"zero baseline never explodes", 50, 0, 0},
		{"zero current on zero baseline", 0, 0, 0},
		{"drop to zero", 0, 8, -100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Trend(tc.current, tc.prior))
		})
	}
}
