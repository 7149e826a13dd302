package util

import (
	"strconv"
	"strings"
)

var sizeUnits = []struct {
	suffix string
	bytes  int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseSize parses a human-readable size string (e.g. "10MB", "512KB",
// "2GB", or a bare byte count) into bytes. Returns defaultBytes when the
// string cannot be parsed.
func ParseSize(s string, defaultBytes int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return defaultBytes
	}

	unit := int64(1)
	for _, u := range sizeUnits {
		if strings.HasSuffix(s, u.suffix) {
			unit = u.bytes
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			break
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return defaultBytes
	}
	return n * unit
}

// MaskSecret renders a secret safe for logs: the first visiblePrefix bytes
// followed by "***". Secrets no longer than the prefix are fully masked so
// short values never leak.
func MaskSecret(secret string, visiblePrefix int) string {
	if visiblePrefix < 0 {
		visiblePrefix = 0
	}
	if len(secret) <= visiblePrefix {
		return "***"
	}
	return secret[:visiblePrefix] + "***"
}
