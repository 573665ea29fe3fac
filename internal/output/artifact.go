package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/benchrace/benchrace/internal/metrics"
)

// WriteArtifact serializes the report to a timestamped JSON file in dir and
// returns the path. The write is guarded by a file lock so overlapping runs
// sharing an output directory cannot interleave writes to the same second's
// artifact.
func WriteArtifact(dir string, report metrics.Report) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("artifact dir: %w", err)
	}

	name := fmt.Sprintf("benchrace_%s.json", report.StartedAt.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("artifact lock: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("artifact encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("artifact write: %w", err)
	}
	return path, nil
}
