package resolver

import (
	"strconv"
	"strings"
	"time"
)

// Source produces candidate background URLs.
type Source interface {
	Next(now time.Time) string
}

// Fallback appends the epoch-millis to a fixed base URL so every candidate
// defeats intermediate caches and yields a different image.
type Fallback struct {
	BaseURL string
}

func (f Fallback) Next(now time.Time) string {
	sep := "?"
	if strings.Contains(f.BaseURL, "?") {
		sep = "&"
	}
	return f.BaseURL + sep + strconv.FormatInt(now.UnixMilli(), 10)
}
