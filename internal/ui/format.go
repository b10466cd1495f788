package ui

import "fmt"

// ElapsedTime renders a duration in seconds as HH:MM:SS. Hours are not
// wrapped, so long uptimes read as e.g. "123:04:05".
func ElapsedTime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Megabytes formats a whole-megabyte amount with its unit.
func Megabytes(mb int64) string { return fmt.Sprintf("%d MB", mb) }

// Percent formats a utilization fraction as a percentage.
func Percent(frac float64) string { return fmt.Sprintf("%.1f%%", frac*100) }

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
