package frame

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// positionRegex matches [HH:]MM:SS[.fff]
var positionRegex = regexp.MustCompile(`^(?:(\d{2}):)?(\d{2}):(\d{2}(?:\.\d+)?)$`)

// ParsePosition parses a seek position given either as seconds ("12.5") or
// as a clock value ("00:01:30", "01:30.25")
func ParsePosition(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("invalid position %q: must not be negative", s)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}

	matches := positionRegex.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid position format %q: expected seconds or HH:MM:SS", s)
	}

	hours := 0
	if matches[1] != "" {
		hours, _ = strconv.Atoi(matches[1])
	}
	minutes, _ := strconv.Atoi(matches[2])
	seconds, _ := strconv.ParseFloat(matches[3], 64)

	if minutes > 59 {
		return 0, fmt.Errorf("invalid position %q: minutes must be 0-59", s)
	}
	if seconds >= 60 {
		return 0, fmt.Errorf("invalid position %q: seconds must be 0-59", s)
	}

	total := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	return total + time.Duration(seconds*float64(time.Second)), nil
}

// FormatPosition renders d as HH:MM:SS.mmm
func FormatPosition(d time.Duration) string {
	d = d.Round(time.Millisecond)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, d/time.Millisecond)
}
