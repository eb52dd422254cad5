package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DumpPayload writes an encoded recording into dir for offline inspection.
func DumpPayload(dir string, format string, data []byte, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create audio dump dir: %w", err)
	}
	if format == "" {
		format = FormatWAV
	}
	name := fmt.Sprintf("entry-%s.%s", now.UTC().Format("20060102T150405.000Z"), format)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write audio dump: %w", err)
	}
	return path, nil
}
