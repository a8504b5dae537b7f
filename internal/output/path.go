package output

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultBaseDir is where dated result files land when no explicit
// output path is given.
const DefaultBaseDir = "output"

// ResolvePath returns the file path for a decode run's results. An
// explicit path wins; otherwise results are placed under
// baseDir/YYYYMMDD/outputHHMM.<ext>, creating the date directory.
func ResolvePath(explicit, baseDir, format string, now time.Time) (string, error) {
	if explicit != "" {
		if dir := filepath.Dir(explicit); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		return explicit, nil
	}

	if baseDir == "" {
		baseDir = DefaultBaseDir
	}

	dateDir := filepath.Join(baseDir, now.Format("20060102"))
	if err := os.MkdirAll(dateDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("output%s%s", now.Format("1504"), format)
	return filepath.Join(dateDir, name), nil
}
