package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClockTicks(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv("CLK_TCK", "")
		assert.Greater(t, ClockTicks(), int64(0), "ClockTicks must be > 0")
	})
	t.Run("env_override", func(t *testing.T) {
		t.Setenv("CLK_TCK", "250")
		assert.Equal(t, int64(250), ClockTicks())
	})
	t.Run("invalid_env_ignored", func(t *testing.T) {
		t.Setenv("CLK_TCK", "-3")
		assert.Greater(t, ClockTicks(), int64(0))
		t.Setenv("CLK_TCK", "abc")
		assert.Greater(t, ClockTicks(), int64(0))
	})
}

func TestValidKind(t *testing.T) {
	for _, k := range []string{KindAuto, KindProcfs, KindPsutil} {
		assert.True(t, ValidKind(k), k)
	}
	assert.False(t, ValidKind("wmi"))
	assert.False(t, ValidKind(""))
}
