package demod

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Scanner runs the preamble search over the magnitude stream, optionally
// splitting it across a worker pool. Chunks overlap by a full frame so
// candidates straddling a boundary are not missed; results are merged,
// sorted by sample index and deduplicated, so the output is identical
// for any worker count.
type Scanner struct {
	detector *PreambleDetector
	workers  int
	logger   *logrus.Logger
}

// minimum chunk size worth handing to a worker
const minChunkSamples = 1 << 16

// NewScanner creates a scanner over the given detector. workers <= 1
// selects the straight-line scan.
func NewScanner(detector *PreambleDetector, workers int, logger *logrus.Logger) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		detector: detector,
		workers:  workers,
		logger:   logger,
	}
}

// Scan returns all preamble candidates in mag, ordered by sample index,
// with detections closer than one frame length to an earlier accepted
// detection suppressed.
func (s *Scanner) Scan(mag []float64) []Candidate {
	if len(mag) < FrameSamples {
		return nil
	}

	floor := s.detector.NoiseFloor(mag)

	scanEnd := len(mag) - FrameSamples + 1

	var raw []Candidate
	if s.workers == 1 || scanEnd < 2*minChunkSamples {
		raw = s.detector.ScanRange(mag, 0, scanEnd, floor)
	} else {
		raw = s.scanParallel(mag, scanEnd, floor)
	}

	return suppressOverlaps(raw)
}

// scanParallel fans the scan out over disjoint chunks. Each worker scans
// start offsets [lo, hi); the magnitude slice itself is shared read-only.
func (s *Scanner) scanParallel(mag []float64, scanEnd int, floor float64) []Candidate {
	chunk := (scanEnd + s.workers - 1) / s.workers
	if chunk < minChunkSamples {
		chunk = minChunkSamples
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []Candidate
	)

	for lo := 0; lo < scanEnd; lo += chunk {
		hi := lo + chunk
		if hi > scanEnd {
			hi = scanEnd
		}

		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			found := s.detector.ScanRange(mag, lo, hi, floor)
			if len(found) == 0 {
				return
			}
			mu.Lock()
			results = append(results, found...)
			mu.Unlock()
		}(lo, hi)
	}

	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results
}

// suppressOverlaps drops candidates that start inside an earlier accepted
// frame, so one transmission never decodes twice. Input must be sorted.
func suppressOverlaps(sorted []Candidate) []Candidate {
	var out []Candidate
	next := 0

	for _, c := range sorted {
		if c.Index < next {
			continue
		}
		out = append(out, c)
		next = c.Index + FrameSamples
	}

	return out
}
