package watermark

import (
	"fmt"
	"os"
	"strings"
)

// ReadFile loads a stored watermark. A missing file means no watermark
// yet and returns "" with a nil error.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read watermark file %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteFile stores a watermark for the next run.
func WriteFile(path, value string) error {
	if err := os.WriteFile(path, []byte(value+"\n"), 0644); err != nil {
		return fmt.Errorf("write watermark file %s: %w", path, err)
	}
	return nil
}
