package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultOutputDir returns the results directory for a symbol and timeframe,
// e.g. results/XAUUSD_m15
func DefaultOutputDir(symbol, timeframe string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	tf := strings.ToLower(strings.TrimSpace(timeframe))
	if s == "" {
		s = "UNKNOWN"
	}
	if tf == "" {
		tf = "unknown"
	}
	return filepath.Join("results", fmt.Sprintf("%s_%s", s, tf))
}

// EnsureDirectoryExists creates the parent directory of path when missing
func EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}
