package finddups

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseHumanSize parses human-readable size strings (e.g., "2MiB", "512k", "1G")
// Suffixes follow go-humanize: "k", "M", "G" are decimal, "KiB", "MiB", "GiB" binary.
func ParseHumanSize(sizeStr string) (int, error) {
	sizeStr = strings.TrimSpace(sizeStr)
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}

	size, err := humanize.ParseBytes(sizeStr)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", sizeStr, err)
	}
	if size == 0 {
		return 0, fmt.Errorf("size must be positive: %s", sizeStr)
	}
	if size > uint64(^uint(0)>>1) {
		return 0, fmt.Errorf("size too large: %s", sizeStr)
	}

	return int(size), nil
}

// formatBytes renders a byte count for log output
func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
