package adsb

// DF17 airborne position type code range
const (
	TypeCodeAirborneMin = 9
	TypeCodeAirborneMax = 18
)

// CPR encoding constants
const (
	CPRBits = 17
	CPRMax  = 131072 // 2^17
)

// Altitude field limits (feet) accepted after decoding
const (
	AltitudeMinFt = -1000
	AltitudeMaxFt = 100000
)
