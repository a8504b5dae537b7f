package demod

import "math"

// Sample timing constants for Mode S at 2 Msps.
const (
	SampleRate      = 2000000 // 2 MHz, one sample every 0.5us
	SamplesPerBit   = 2
	PreambleSamples = 16  // 8us preamble
	LongFrameBits   = 112 // DF17 extended squitter
	DataSamples     = LongFrameBits * SamplesPerBit
	FrameSamples    = PreambleSamples + DataSamples
)

// MagnitudeStream converts interleaved unsigned 8-bit I/Q bytes into a
// magnitude sequence. Samples are centered on 127.5 so that silence maps
// near zero. A trailing odd byte is discarded.
func MagnitudeStream(data []byte) []float64 {
	n := len(data) / 2
	mag := make([]float64, n)

	for i := 0; i < n; i++ {
		di := float64(data[2*i]) - 127.5
		dq := float64(data[2*i+1]) - 127.5
		mag[i] = math.Sqrt(di*di + dq*dq)
	}

	return mag
}
