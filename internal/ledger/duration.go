package ledger

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var goalRe = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?$`)

// ParseGoal parses a goal into hours.
// Supported formats: "4", "2.5", "30m", "3h", "3h30m".
func ParseGoal(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(strings.ToLower(s)), " ", "")
	if s == "" {
		return 0, fmt.Errorf("empty goal")
	}

	if h, err := strconv.ParseFloat(s, 64); err == nil {
		if h <= 0 || math.IsInf(h, 0) || math.IsNaN(h) {
			return 0, ErrInvalidGoal
		}
		return h, nil
	}

	m := goalRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid goal format %q (expected e.g. 4, 2.5, 30m, 3h30m)", s)
	}

	hours, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])

	total := hours*60 + mins
	if total <= 0 {
		return 0, ErrInvalidGoal
	}

	return float64(total) / 60, nil
}

// FormatMinutes converts a minute count to a human-friendly string.
// Examples: 90 → "1h 30m", 30 → "30m".
func FormatMinutes(m int) string {
	if m <= 0 {
		return "0m"
	}

	hours := m / 60
	mins := m % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if mins > 0 || hours == 0 {
		parts = append(parts, fmt.Sprintf("%dm", mins))
	}

	return strings.Join(parts, " ")
}

// FormatHours renders fractional hours, e.g. 2.5 → "2h 30m".
func FormatHours(h float64) string {
	return FormatMinutes(int(math.Round(h * 60)))
}

// FormatClock renders a duration as HH:MM:SS.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
