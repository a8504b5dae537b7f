package adsb_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iq1090/internal/adsb"
	"iq1090/internal/testutil"
)

// TestParseAirbornePosition tests field extraction from a DF17 frame
func TestParseAirbornePosition(t *testing.T) {
	logger := logrus.New()
	p := adsb.NewParser(false, logger, false)

	data := testutil.BuildPositionFrame(0x4B1234, 11, testutil.EncodeAltitude(35000), false, 74158, 50194)
	frame := &adsb.Frame{Data: data, Timestamp: 10000}

	rep := p.Parse(frame)
	require.NotNil(t, rep)
	assert.Equal(t, uint32(0x4B1234), rep.ICAO)
	assert.Equal(t, uint8(11), rep.TypeCode)
	require.NotNil(t, rep.AltitudeFt)
	assert.Equal(t, 35000, *rep.AltitudeFt)
	assert.Equal(t, adsb.CPREven, rep.CPRFormat)
	assert.Equal(t, uint32(74158), rep.LatCPR)
	assert.Equal(t, uint32(50194), rep.LonCPR)
	assert.Equal(t, uint64(10000), rep.Timestamp)
}

// TestParseOddFrame tests the CPR format flag
func TestParseOddFrame(t *testing.T) {
	logger := logrus.New()
	p := adsb.NewParser(false, logger, false)

	data := testutil.BuildPositionFrame(0x4B1234, 12, testutil.EncodeAltitude(0), true, 93000, 51372)
	rep := p.Parse(&adsb.Frame{Data: data})

	require.NotNil(t, rep)
	assert.Equal(t, adsb.CPROdd, rep.CPRFormat)
	assert.Equal(t, uint32(93000), rep.LatCPR)
	assert.Equal(t, uint32(51372), rep.LonCPR)
}

// TestParseRejections tests the DF and TC gates
func TestParseRejections(t *testing.T) {
	logger := logrus.New()

	tests := []struct {
		name string
		df   uint8
		tc   uint8
	}{
		{name: "DF11 all-call", df: 11, tc: 11},
		{name: "DF4 surveillance", df: 4, tc: 11},
		{name: "identification TC4", df: 17, tc: 4},
		{name: "surface position TC8", df: 17, tc: 8},
		{name: "velocity TC19", df: 17, tc: 19},
		{name: "TC31", df: 17, tc: 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := adsb.NewParser(false, logger, false)

			data := testutil.BuildPositionFrame(0x4B1234, tt.tc, 0, false, 1, 1)
			data[0] = tt.df<<3 | data[0]&0x07
			adsb.AttachCRC(&data)

			assert.Nil(t, p.Parse(&adsb.Frame{Data: data}))

			nonDF17, nonAirborne := p.Counters()
			if tt.df != 17 {
				assert.Equal(t, uint64(1), nonDF17)
			} else {
				assert.Equal(t, uint64(1), nonAirborne)
			}
		})
	}
}

// TestDecodeAltitudeQ1 tests the 25 ft encoding across the range
func TestDecodeAltitudeQ1(t *testing.T) {
	logger := logrus.New()
	p := adsb.NewParser(false, logger, false)

	for n := 0; n <= 2047; n++ {
		altFt := 25*n - 1000
		got := p.DecodeAltitudeForTest(testutil.EncodeAltitude(altFt))
		if n == 0 {
			// N=0 yields altCode 0x10; still a valid -1000 ft reading
			require.NotNil(t, got)
			assert.Equal(t, -1000, *got)
			continue
		}
		require.NotNil(t, got, "n=%d", n)
		assert.Equal(t, altFt, *got, "n=%d", n)
	}
}

// TestDecodeAltitudeQ0 tests the Gillham policies
func TestDecodeAltitudeQ0(t *testing.T) {
	logger := logrus.New()

	// 12-bit field with the Q-bit clear
	altCode := uint16(0x0A20)

	skip := adsb.NewParser(false, logger, false)
	assert.Nil(t, skip.DecodeAltitudeForTest(altCode))

	gillham := adsb.NewParser(true, logger, false)
	got := gillham.DecodeAltitudeForTest(altCode)
	require.NotNil(t, got)
	assert.GreaterOrEqual(t, *got, adsb.AltitudeMinFt)
	assert.LessOrEqual(t, *got, adsb.AltitudeMaxFt)
}

// TestDecodeAltitudeZeroField tests the absent-altitude encoding
func TestDecodeAltitudeZeroField(t *testing.T) {
	logger := logrus.New()
	p := adsb.NewParser(true, logger, false)
	assert.Nil(t, p.DecodeAltitudeForTest(0))
}
