package parking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateFee(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		rate    float64
		want    float64
	}{
		{"zero duration bills one hour", 0, 2.0, 2.0},
		{"ten minutes bills one hour", 10, 2.0, 2.0},
		{"exactly one hour", 60, 2.0, 2.0},
		{"ninety minutes bills fractional hours", 90, 2.0, 3.0},
		{"two hours", 120, 2.0, 4.0},
		{"fractional cents round", 100, 2.5, 4.17},
		{"non-positive rate falls back to default", 30, 0, 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateFee(tt.minutes, tt.rate))
		})
	}
}
