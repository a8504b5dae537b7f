package adsb

// DecodeAltitudeForTest exposes the unexported decodeAltitude method to the
// external adsb_test package, which cannot import iq1090/internal/testutil
// from inside package adsb without creating an import cycle.
func (p *Parser) DecodeAltitudeForTest(altCode uint16) *int {
	return p.decodeAltitude(altCode)
}
