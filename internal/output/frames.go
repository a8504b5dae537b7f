package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"iq1090/internal/adsb"
)

// FrameLog appends accepted frames as one line each in the form
//
//	YYYYMMDD_HHMMSS <sample index> *<28 hex digits>;
//
// so external tools can cross-check the decode against a reference
// implementation.
type FrameLog struct {
	w      io.WriteCloser
	stamp  string
	logger *logrus.Logger
}

// NewFrameLog opens a frame log file under dir, named after the run's
// start time.
func NewFrameLog(dir string, now time.Time, logger *logrus.Logger) (*FrameLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create frames directory: %w", err)
	}

	stamp := now.Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("frames_%s.log", stamp))

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create frame log: %w", err)
	}

	logger.WithField("path", path).Debug("Frame log opened")

	return &FrameLog{
		w:      f,
		stamp:  stamp,
		logger: logger,
	}, nil
}

// Append writes one frame line.
func (l *FrameLog) Append(frame *adsb.Frame) error {
	_, err := fmt.Fprintf(l.w, "%s %d *%X;\n", l.stamp, frame.Timestamp, frame.Data)
	if err != nil {
		return fmt.Errorf("failed to append frame: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *FrameLog) Close() error {
	return l.w.Close()
}
