package demod

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMagnitudeStream tests IQ byte to magnitude conversion
func TestMagnitudeStream(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected []float64
	}{
		{
			name:     "empty input",
			data:     nil,
			expected: []float64{},
		},
		{
			name:     "single quiet sample",
			data:     []byte{127, 128},
			expected: []float64{0.7071067811865476},
		},
		{
			name:     "full scale I",
			data:     []byte{255, 127},
			expected: []float64{127.50098038742964},
		},
		{
			name:     "trailing odd byte discarded",
			data:     []byte{127, 128, 99},
			expected: []float64{0.7071067811865476},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mag := MagnitudeStream(tt.data)
			assert.Len(t, mag, len(tt.expected))
			for i, want := range tt.expected {
				assert.InDelta(t, want, mag[i], 1e-6)
			}
		})
	}
}

// TestMagnitudeNonNegative tests that magnitudes are never negative
func TestMagnitudeNonNegative(t *testing.T) {
	data := make([]byte, 512)
	for i := range data {
		data[i] = byte(i)
	}

	for _, m := range MagnitudeStream(data) {
		assert.GreaterOrEqual(t, m, 0.0)
	}
}
