package app

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"iq1090/internal/adsb"
	"iq1090/internal/demod"
	"iq1090/internal/output"
)

// Application drives one decoding invocation: read the capture file, run
// the pipeline, write the fixes in the requested format.
type Application struct {
	config Config
	logger *logrus.Logger
}

// FrameSink receives every frame that survived demodulation and the CRC
// gate, before parsing.
type FrameSink interface {
	Append(frame *adsb.Frame) error
}

// Stats carries the diagnostic counters of one decoding invocation.
// Per-candidate and per-pair rejections are normal operating conditions;
// they are counted here and never abort the run.
type Stats struct {
	Samples       uint64
	Candidates    uint64
	AmbiguousPPM  uint64
	CRCFailures   uint64
	NonDF17       uint64
	NonAirborneTC uint64
	Records       uint64
	NLMismatches  uint64
	StalePairs    uint64
	OutOfRange    uint64
	Aircraft      int
	Fixes         uint64
}

// Fields renders the counters for a logrus summary line.
func (s *Stats) Fields() logrus.Fields {
	return logrus.Fields{
		"samples":         s.Samples,
		"candidates":      s.Candidates,
		"ambiguous_ppm":   s.AmbiguousPPM,
		"crc_failures":    s.CRCFailures,
		"non_df17":        s.NonDF17,
		"non_airborne_tc": s.NonAirborneTC,
		"records":         s.Records,
		"nl_mismatches":   s.NLMismatches,
		"stale_pairs":     s.StalePairs,
		"out_of_range":    s.OutOfRange,
		"aircraft":        s.Aircraft,
		"fixes":           s.Fixes,
	}
}

// NewApplication creates an application instance.
func NewApplication(config Config) *Application {
	logger := logrus.New()
	if config.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Application{
		config: config,
		logger: logger,
	}
}

// Decode runs the full pipeline over a raw IQ byte buffer and returns
// the resolved position fixes in emission order. All cross-frame state
// lives in the resolver instance created here and is released on return.
func Decode(data []byte, cfg Config, logger *logrus.Logger, sink FrameSink) ([]adsb.PositionFix, *Stats, error) {
	stats := &Stats{}

	mag := demod.MagnitudeStream(data)
	stats.Samples = uint64(len(mag))

	detector := demod.NewPreambleDetector(cfg.ThresholdRatio, logger)
	scanner := demod.NewScanner(detector, cfg.Workers, logger)
	parser := adsb.NewParser(cfg.Q0Policy == Q0PolicyGillham, logger, cfg.Verbose)
	resolver := adsb.NewResolver(cfg.StalenessSamples, logger, cfg.Verbose)

	candidates := scanner.Scan(mag)
	stats.Candidates = uint64(len(candidates))

	var fixes []adsb.PositionFix

	for _, c := range candidates {
		bits, ok := demod.DemodulatePPM(mag, c)
		if !ok {
			stats.AmbiguousPPM++
			continue
		}

		frame := &adsb.Frame{Data: bits, Timestamp: uint64(c.Index)}

		if cfg.EnforceCRC && !adsb.VerifyCRC(frame.Data) {
			stats.CRCFailures++
			continue
		}

		if sink != nil {
			if err := sink.Append(frame); err != nil {
				return nil, stats, err
			}
		}

		report := parser.Parse(frame)
		if report == nil {
			continue
		}
		stats.Records++

		if fix := resolver.Update(report); fix != nil {
			fixes = append(fixes, *fix)
			stats.Fixes++
		}
	}

	stats.NonDF17, stats.NonAirborneTC = parser.Counters()
	stats.NLMismatches, stats.StalePairs, stats.OutOfRange = resolver.Counters()
	stats.Aircraft = resolver.Aircraft()

	return fixes, stats, nil
}

// Run executes one decode invocation end to end.
func (app *Application) Run() error {
	if err := app.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := os.ReadFile(app.config.InputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("input file %s is empty", app.config.InputPath)
	}
	if len(data)%2 != 0 {
		app.logger.Warn("Input has odd length, discarding trailing byte")
	}

	app.logger.WithFields(logrus.Fields{
		"input":     app.config.InputPath,
		"bytes":     len(data),
		"threshold": app.config.ThresholdRatio,
		"crc":       app.config.EnforceCRC,
		"workers":   app.config.Workers,
	}).Info("Starting IQ decode")

	now := time.Now()

	var sink FrameSink
	if app.config.FramesDir != "" {
		frameLog, err := output.NewFrameLog(app.config.FramesDir, now, app.logger)
		if err != nil {
			return err
		}
		defer frameLog.Close()
		sink = frameLog
	}

	fixes, stats, err := Decode(data, app.config, app.logger, sink)
	if err != nil {
		return err
	}

	app.logger.WithFields(stats.Fields()).Info("Decode complete")

	path, err := output.ResolvePath(app.config.OutputPath, "", app.config.Format, now)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := output.Write(f, app.config.Format, fixes); err != nil {
		return err
	}

	app.logger.WithFields(logrus.Fields{
		"output": path,
		"fixes":  len(fixes),
	}).Info("Results written")

	return nil
}
