package utils

import (
	"fmt"
	"time"

	"github.com/phillip/nft-ticketing-go/models"
)

var fallbackLayouts = []string{"2006-01-02", "2006-01-02 15:04", "2006-01-02 15:04:05"}

// ParseTime accepts RFC3339 and a few date-only or space separated layouts,
// which are read as UTC.
func ParseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q, use RFC3339 or YYYY-MM-DD", models.ErrInvalidStartTime, raw)
}
