package adsb

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameFromHex(t *testing.T, s string) [14]byte {
	t.Helper()
	raw, err := hex.DecodeString(s)
	require.NoError(t, err)
	require.Len(t, raw, 14)

	var f [14]byte
	copy(f[:], raw)
	return f
}

// TestVerifyCRCKnownFrames tests published DF17 frames with valid parity
func TestVerifyCRCKnownFrames(t *testing.T) {
	valid := []string{
		"8D406B902015A678D4D220AA4BDA",
		"8D4840D6202CC371C32CE0576098",
	}

	for _, msg := range valid {
		t.Run(msg, func(t *testing.T) {
			assert.True(t, VerifyCRC(frameFromHex(t, msg)))
		})
	}
}

// TestVerifyCRCCorruption tests that any single corrupted byte is caught
func TestVerifyCRCCorruption(t *testing.T) {
	frame := frameFromHex(t, "8D406B902015A678D4D220AA4BDA")

	for i := 0; i < len(frame); i++ {
		corrupted := frame
		corrupted[i] ^= 0x40
		assert.False(t, VerifyCRC(corrupted), "byte %d", i)
	}
}

// TestAttachCRC tests that attached parity always verifies
func TestAttachCRC(t *testing.T) {
	var frame [14]byte
	frame[0] = 17<<3 | 5
	frame[1], frame[2], frame[3] = 0x4B, 0x12, 0x34
	frame[4] = 11 << 3

	AttachCRC(&frame)
	assert.True(t, VerifyCRC(frame))

	crc := Checksum(frame[:11])
	assert.Equal(t, crc, uint32(frame[11])<<16|uint32(frame[12])<<8|uint32(frame[13]))
}

// TestChecksumEmpty tests the remainder of no data
func TestChecksumEmpty(t *testing.T) {
	assert.Equal(t, uint32(0), Checksum(nil))
}
