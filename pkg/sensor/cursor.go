package sensor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// EncodeWatermark renders a watermark as the decimal text stored in the cursor.
func EncodeWatermark(mtime float64) string {
	return strconv.FormatFloat(mtime, 'f', -1, 64)
}

// DecodeWatermark parses a cursor written by EncodeWatermark.
// An empty cursor decodes to 0.
func DecodeWatermark(cursor string) (float64, error) {
	cursor = strings.TrimSpace(cursor)
	if cursor == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(cursor, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor %q: %w", cursor, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid cursor %q: not a finite number", cursor)
	}
	return v, nil
}

// Mtime converts a modification time to fractional seconds since the epoch.
func Mtime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
