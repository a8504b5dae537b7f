package adsb

import (
	"math"

	"github.com/sirupsen/logrus"
)

// CPRFrame is one half of an even/odd CPR pair, pending resolution.
type CPRFrame struct {
	LatCPR    uint32
	LonCPR    uint32
	Timestamp uint64
}

// AircraftState holds the pending CPR frames for one ICAO address. A new
// frame always replaces the pending frame of the same parity.
type AircraftState struct {
	ICAO uint32
	Even *CPRFrame
	Odd  *CPRFrame
}

// Resolver pairs even and odd CPR records per aircraft and reconstructs
// unambiguous global positions. It is owned by a single decoding
// invocation and fed records in sample order.
type Resolver struct {
	staleness uint64
	aircraft  map[uint32]*AircraftState
	logger    *logrus.Logger
	verbose   bool

	nlMismatches uint64
	stalePairs   uint64
	outOfRange   uint64
}

// NewResolver creates a resolver. Pairs whose timestamps differ by more
// than staleness samples are not decoded.
func NewResolver(staleness uint64, logger *logrus.Logger, verbose bool) *Resolver {
	return &Resolver{
		staleness: staleness,
		aircraft:  make(map[uint32]*AircraftState),
		logger:    logger,
		verbose:   verbose,
	}
}

// Update stores a position report and attempts a global decode when a
// fresh even/odd pair exists for the aircraft. It returns a fix, or nil
// when no pair is available yet or the decode was rejected. Rejected
// decodes leave the pending frames in place for future pairing.
func (r *Resolver) Update(rep *PositionReport) *PositionFix {
	state, ok := r.aircraft[rep.ICAO]
	if !ok {
		state = &AircraftState{ICAO: rep.ICAO}
		r.aircraft[rep.ICAO] = state
	}

	frame := &CPRFrame{
		LatCPR:    rep.LatCPR,
		LonCPR:    rep.LonCPR,
		Timestamp: rep.Timestamp,
	}
	if rep.CPRFormat == CPREven {
		state.Even = frame
	} else {
		state.Odd = frame
	}

	if state.Even == nil || state.Odd == nil {
		return nil
	}

	if sampleGap(state.Even.Timestamp, state.Odd.Timestamp) > r.staleness {
		r.stalePairs++
		if r.verbose {
			r.logger.Debugf("CPR: stale pair for ICAO=%06X, gap=%d samples",
				rep.ICAO, sampleGap(state.Even.Timestamp, state.Odd.Timestamp))
		}
		return nil
	}

	lat, lon, ok := r.decodeGlobal(state.Even, state.Odd)
	if !ok {
		return nil
	}

	return &PositionFix{
		ICAO:       rep.ICAO,
		Latitude:   lat,
		Longitude:  lon,
		AltitudeFt: rep.AltitudeFt,
	}
}

// Counters returns the per-pair rejection counts: latitude zone
// mismatches, stale pairs and out-of-range latitudes.
func (r *Resolver) Counters() (nlMismatches, stalePairs, outOfRange uint64) {
	return r.nlMismatches, r.stalePairs, r.outOfRange
}

// Aircraft returns the number of distinct ICAO addresses tracked.
func (r *Resolver) Aircraft() int {
	return len(r.aircraft)
}

// decodeGlobal runs the global CPR algorithm over an even/odd pair.
func (r *Resolver) decodeGlobal(even, odd *CPRFrame) (float64, float64, bool) {
	const dLatEven = 360.0 / 60.0
	const dLatOdd = 360.0 / 59.0

	yEven := float64(even.LatCPR) / CPRMax
	yOdd := float64(odd.LatCPR) / CPRMax
	xEven := float64(even.LonCPR) / CPRMax
	xOdd := float64(odd.LonCPR) / CPRMax

	// Latitude index
	j := int(math.Floor(59*yEven - 60*yOdd + 0.5))

	rlatEven := dLatEven * (float64(cprMod(j, 60)) + yEven)
	rlatOdd := dLatOdd * (float64(cprMod(j, 59)) + yOdd)

	if rlatEven >= 270 {
		rlatEven -= 360
	}
	if rlatOdd >= 270 {
		rlatOdd -= 360
	}

	if rlatEven < -90 || rlatEven > 90 || rlatOdd < -90 || rlatOdd > 90 {
		r.outOfRange++
		if r.verbose {
			r.logger.Debugf("CPR: latitude out of range, even=%.6f odd=%.6f", rlatEven, rlatOdd)
		}
		return 0, 0, false
	}

	// Both halves must agree on the longitude zone, or the pair spans a
	// zone transition and cannot be resolved yet.
	if NL(rlatEven) != NL(rlatOdd) {
		r.nlMismatches++
		if r.verbose {
			r.logger.Debugf("CPR: zone mismatch, NL(even)=%d NL(odd)=%d",
				NL(rlatEven), NL(rlatOdd))
		}
		return 0, 0, false
	}

	// The more recent half of the pair supplies the latitude and the
	// longitude fraction.
	var lat, lon float64
	if odd.Timestamp > even.Timestamp {
		nl := NL(rlatOdd)
		n := cprN(rlatOdd, 1)
		m := int(math.Floor(xEven*float64(nl-1) - xOdd*float64(nl) + 0.5))
		lon = (360.0 / float64(n)) * (float64(cprMod(m, n)) + xOdd)
		lat = rlatOdd
	} else {
		nl := NL(rlatEven)
		n := cprN(rlatEven, 0)
		m := int(math.Floor(xEven*float64(nl-1) - xOdd*float64(nl) + 0.5))
		lon = (360.0 / float64(n)) * (float64(cprMod(m, n)) + xEven)
		lat = rlatEven
	}

	lon = normalizeLon(lon)

	if r.verbose {
		r.logger.Debugf("CPR decode: lat=%.6f lon=%.6f j=%d", lat, lon, j)
	}

	return lat, lon, true
}

// cprMod is the always-positive integer remainder.
func cprMod(a, b int) int {
	res := a % b
	if res < 0 {
		res += b
	}
	return res
}

// normalizeLon maps a longitude into (-180, +180].
func normalizeLon(lon float64) float64 {
	lon -= math.Floor((lon+180)/360) * 360
	if lon == -180 {
		lon = 180
	}
	return lon
}

// sampleGap returns the absolute distance between two sample indices.
func sampleGap(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

// cprN returns the number of longitude zones for the given parity,
// never less than one.
func cprN(lat float64, fflag int) int {
	n := NL(lat) - fflag
	if n < 1 {
		n = 1
	}
	return n
}

// NL returns the number of longitude zones for a latitude, from the
// standard ADS-B transition latitude table.
func NL(lat float64) int {
	absLat := math.Abs(lat)

	switch {
	case absLat < 10.47047130:
		return 59
	case absLat < 14.82817437:
		return 58
	case absLat < 18.18626357:
		return 57
	case absLat < 21.02939493:
		return 56
	case absLat < 23.54504487:
		return 55
	case absLat < 25.82924707:
		return 54
	case absLat < 27.93898710:
		return 53
	case absLat < 29.91135686:
		return 52
	case absLat < 31.77209708:
		return 51
	case absLat < 33.53993436:
		return 50
	case absLat < 35.22899598:
		return 49
	case absLat < 36.85025108:
		return 48
	case absLat < 38.41241892:
		return 47
	case absLat < 39.92256684:
		return 46
	case absLat < 41.38651832:
		return 45
	case absLat < 42.80914012:
		return 44
	case absLat < 44.19454951:
		return 43
	case absLat < 45.54626723:
		return 42
	case absLat < 46.86733252:
		return 41
	case absLat < 48.16039128:
		return 40
	case absLat < 49.42776439:
		return 39
	case absLat < 50.67150166:
		return 38
	case absLat < 51.89342469:
		return 37
	case absLat < 53.09516153:
		return 36
	case absLat < 54.27817472:
		return 35
	case absLat < 55.44378444:
		return 34
	case absLat < 56.59318756:
		return 33
	case absLat < 57.72747354:
		return 32
	case absLat < 58.84763776:
		return 31
	case absLat < 59.95459277:
		return 30
	case absLat < 61.04917774:
		return 29
	case absLat < 62.13216659:
		return 28
	case absLat < 63.20427479:
		return 27
	case absLat < 64.26616523:
		return 26
	case absLat < 65.31845310:
		return 25
	case absLat < 66.36171008:
		return 24
	case absLat < 67.39646774:
		return 23
	case absLat < 68.42322022:
		return 22
	case absLat < 69.44242631:
		return 21
	case absLat < 70.45451075:
		return 20
	case absLat < 71.45986473:
		return 19
	case absLat < 72.45884545:
		return 18
	case absLat < 73.45177442:
		return 17
	case absLat < 74.43893416:
		return 16
	case absLat < 75.42056257:
		return 15
	case absLat < 76.39684391:
		return 14
	case absLat < 77.36789461:
		return 13
	case absLat < 78.33374083:
		return 12
	case absLat < 79.29428225:
		return 11
	case absLat < 80.24923213:
		return 10
	case absLat < 81.19801349:
		return 9
	case absLat < 82.13956981:
		return 8
	case absLat < 83.07199445:
		return 7
	case absLat < 83.99173563:
		return 6
	case absLat < 84.89166191:
		return 5
	case absLat < 85.75541621:
		return 4
	case absLat < 86.53536998:
		return 3
	case absLat < 87.00000000:
		return 2
	default:
		return 1
	}
}
