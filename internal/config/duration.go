package config

import (
	"fmt"
	"strings"
	"time"
)

// DurationOrDefault parses a duration field from a registry entry,
// substituting the documented default when the field is blank.
func DurationOrDefault(value, fallback string) (time.Duration, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		s = strings.TrimSpace(fallback)
	}
	if s == "" {
		return 0, fmt.Errorf("duration value is empty")
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return d, nil
}
