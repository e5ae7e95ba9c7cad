package core

import (
	"strings"
	"time"
)

var NowFunc = time.Now // mockable

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// ToMillis converts t to UTC unix milliseconds, the storage format of every timestamp.
func ToMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
