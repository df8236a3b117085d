package util

import (
	"fmt"
	"strconv"
	"strings"
)

// StringToUint64 converts string to uint64
func StringToUint64(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse uint64: %w", err)
	}
	return n, nil
}

// IsSnowflake reports whether s looks like a Discord snowflake: a non-empty
// run of ASCII digits that fits in a uint64 and is not zero.
func IsSnowflake(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	n, err := StringToUint64(s)
	return err == nil && n != 0
}
