package adsb

import (
	"github.com/sirupsen/logrus"
)

// Parser interprets DF17 airborne position frames. Frames with any other
// downlink format or type code are dropped and counted.
type Parser struct {
	gillham bool
	logger  *logrus.Logger
	verbose bool

	nonDF17     uint64
	nonAirborne uint64
}

// NewParser creates a parser. When gillham is true the Q=0 altitude
// encoding is decoded; otherwise those altitudes are reported as nil.
func NewParser(gillham bool, logger *logrus.Logger, verbose bool) *Parser {
	return &Parser{
		gillham: gillham,
		logger:  logger,
		verbose: verbose,
	}
}

// Parse extracts a position report from a frame, or returns nil when the
// frame is not a DF17 airborne position message.
func (p *Parser) Parse(f *Frame) *PositionReport {
	if f.DF() != 17 {
		p.nonDF17++
		return nil
	}

	tc := f.TypeCode()
	if tc < TypeCodeAirborneMin || tc > TypeCodeAirborneMax {
		p.nonAirborne++
		return nil
	}

	data := f.Data

	// 12-bit altitude field, frame bits 41-52
	altCode := (uint16(data[5])<<4 | uint16(data[6])>>4) & 0x0FFF

	// CPR format flag, frame bit 54
	fFlag := (data[6] >> 2) & 0x01

	// 17-bit CPR coordinates, frame bits 55-71 and 72-88
	latCPR := (uint32(data[6]&0x03)<<15 | uint32(data[7])<<7 | uint32(data[8])>>1) & 0x1FFFF
	lonCPR := (uint32(data[8]&0x01)<<16 | uint32(data[9])<<8 | uint32(data[10])) & 0x1FFFF

	report := &PositionReport{
		ICAO:       f.ICAO(),
		TypeCode:   tc,
		AltitudeFt: p.decodeAltitude(altCode),
		CPRFormat:  fFlag,
		LatCPR:     latCPR,
		LonCPR:     lonCPR,
		Timestamp:  f.Timestamp,
	}

	if p.verbose {
		p.logger.Debugf("DF17 position: ICAO=%06X TC=%d F=%d lat_cpr=%d lon_cpr=%d",
			report.ICAO, tc, fFlag, latCPR, lonCPR)
	}

	return report
}

// Counters returns the drop counts for non-DF17 frames and DF17 frames
// outside the airborne position type codes.
func (p *Parser) Counters() (nonDF17, nonAirborne uint64) {
	return p.nonDF17, p.nonAirborne
}

// decodeAltitude interprets the 12-bit altitude field. With the Q-bit
// set the altitude is the 11 remaining bits in 25 ft steps offset by
// -1000 ft. With Q clear the field is 100 ft Gillham code, decoded only
// when the parser was configured for it.
func (p *Parser) decodeAltitude(altCode uint16) *int {
	if altCode == 0 {
		return nil
	}

	if altCode&0x10 != 0 {
		n := int(((altCode & 0x0FE0) >> 1) | (altCode & 0x000F))
		alt := n*25 - 1000
		return &alt
	}

	if !p.gillham {
		return nil
	}

	// Rebuild the 13-bit Gillham code by inserting M=0 at bit 6, then
	// combine the 100 ft and 500 ft digits.
	n13 := ((altCode & 0x0FC0) << 1) | (altCode & 0x003F)
	if n13 == 0 {
		return nil
	}

	hundreds := int((n13 >> 8) & 0x07)
	fiveHundreds := int((n13 >> 4) & 0x0F)
	alt := (fiveHundreds*5 + hundreds) * 100

	if alt < AltitudeMinFt || alt > AltitudeMaxFt {
		return nil
	}
	return &alt
}
