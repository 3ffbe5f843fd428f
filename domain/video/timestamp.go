package video

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Timestamp represents a clip length in HH:MM:SS format
type Timestamp struct {
	Hours   int
	Minutes int
	Seconds int
}

// timestampRegex matches HH:MM:SS format
var timestampRegex = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})$`)

// ParseTimestamp parses a timestamp string in HH:MM:SS format
func ParseTimestamp(s string) (Timestamp, error) {
	matches := timestampRegex.FindStringSubmatch(s)
	if matches == nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp format %q: expected HH:MM:SS", s)
	}

	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	seconds, _ := strconv.Atoi(matches[3])

	if minutes > 59 {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: minutes must be 0-59", s)
	}
	if seconds > 59 {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: seconds must be 0-59", s)
	}

	return Timestamp{
		Hours:   hours,
		Minutes: minutes,
		Seconds: seconds,
	}, nil
}

// TimestampFromSeconds splits a number of seconds into hours, minutes and seconds
func TimestampFromSeconds(total int) Timestamp {
	if total < 0 {
		total = 0
	}
	return Timestamp{
		Hours:   total / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}

// String returns the timestamp in HH:MM:SS format
func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// TotalSeconds returns the timestamp as total seconds
func (t Timestamp) TotalSeconds() int {
	return t.Hours*3600 + t.Minutes*60 + t.Seconds
}

// ParseDuration parses a clip length given as plain seconds ("90"),
// HH:MM:SS ("00:01:30") or a Go duration ("1m30s"). The result is in whole
// seconds and must be positive.
func ParseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)

	var seconds int
	switch {
	case s == "":
		return 0, fmt.Errorf("invalid duration: empty")
	case timestampRegex.MatchString(s):
		ts, err := ParseTimestamp(s)
		if err != nil {
			return 0, err
		}
		seconds = ts.TotalSeconds()
	default:
		if n, err := strconv.Atoi(s); err == nil {
			seconds = n
			break
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: expected seconds, HH:MM:SS or a value like 5m", s)
		}
		if d%time.Second != 0 {
			return 0, fmt.Errorf("invalid duration %q: must be whole seconds", s)
		}
		seconds = int(d / time.Second)
	}

	if seconds <= 0 {
		return 0, fmt.Errorf("invalid duration %q: must be positive", s)
	}
	return seconds, nil
}

// FormatDuration renders seconds in the largest unit that divides them evenly,
// e.g. "1 hour", "5 minutes", "90 seconds"
func FormatDuration(seconds int) string {
	if seconds < 1 {
		seconds = 1
	}

	value, unit := seconds, "second"
	switch {
	case seconds >= 3600 && seconds%3600 == 0:
		value, unit = seconds/3600, "hour"
	case seconds >= 60 && seconds%60 == 0:
		value, unit = seconds/60, "minute"
	}

	if value != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", value, unit)
}
