package source

import (
	"os"
	"strconv"

	"github.com/tklauser/go-sysconf"
)

// DefaultClockTicks is USER_HZ on every mainstream Linux build.
const DefaultClockTicks = 100

// ClockTicks returns the number of clock ticks per second.
// It first checks the env var CLK_TCK (useful for testing), then asks
// sysconf(_SC_CLK_TCK), and finally falls back to DefaultClockTicks.
func ClockTicks() int64 {
	if v, err := strconv.ParseInt(os.Getenv("CLK_TCK"), 10, 64); err == nil && v > 0 {
		return v
	}
	if v, err := sysconf.Sysconf(sysconf.SC_CLK_TCK); err == nil && v > 0 {
		return v
	}
	return DefaultClockTicks
}
