package demod

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// Mode S preamble at 2 Msps: energy pulses at sample offsets 0, 2, 7 and 9
// of the 16-sample window, the rest quiet.
var (
	pulseOffsets = [4]int{0, 2, 7, 9}
	quietOffsets = [12]int{1, 3, 4, 5, 6, 8, 10, 11, 12, 13, 14, 15}
)

// Candidate marks a position in the magnitude stream where a preamble
// pattern matched, together with the noise floor used for thresholding.
type Candidate struct {
	Index      int
	NoiseFloor float64
}

// PreambleDetector scans a magnitude stream for Mode S preambles using a
// ratio threshold over the stream's mean magnitude.
type PreambleDetector struct {
	ratio  float64
	logger *logrus.Logger
}

// NewPreambleDetector creates a detector with the given threshold ratio.
func NewPreambleDetector(ratio float64, logger *logrus.Logger) *PreambleDetector {
	return &PreambleDetector{
		ratio:  ratio,
		logger: logger,
	}
}

// NoiseFloor estimates the noise floor as the mean of the magnitude
// stream. The ratio threshold scales with it, so detection adapts to
// gain drift between captures.
func (d *PreambleDetector) NoiseFloor(mag []float64) float64 {
	if len(mag) == 0 {
		return 0
	}
	return stat.Mean(mag, nil)
}

// Match reports whether a preamble starts at index k given the noise
// floor. Each pulse sample must exceed ratio*floor and every quiet slot
// must stay strictly below the weakest pulse; ties are non-detections.
func (d *PreambleDetector) Match(mag []float64, k int, floor float64) bool {
	if k+FrameSamples > len(mag) {
		return false
	}

	threshold := d.ratio * floor

	weakest := mag[k+pulseOffsets[0]]
	for _, off := range pulseOffsets {
		m := mag[k+off]
		if m <= threshold {
			return false
		}
		if m < weakest {
			weakest = m
		}
	}

	// Pulses must dominate the quiet slots, rejecting DC and
	// broadband-noise impostors.
	for _, off := range quietOffsets {
		if mag[k+off] >= weakest {
			return false
		}
	}

	return true
}

// ScanRange scans mag indices [start, end) and returns every index where
// a preamble matched. It advances one sample at a time; suppression of
// overlapping detections is done by the caller once all candidates from
// all chunks are merged, so the result does not depend on chunking.
func (d *PreambleDetector) ScanRange(mag []float64, start, end int, floor float64) []Candidate {
	var found []Candidate

	if end > len(mag)-FrameSamples+1 {
		end = len(mag) - FrameSamples + 1
	}

	for k := start; k < end; k++ {
		if d.Match(mag, k, floor) {
			found = append(found, Candidate{Index: k, NoiseFloor: floor})
		}
	}

	return found
}
