package sampler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/procmon/internal/identity"
	"github.com/Dicklesworthstone/procmon/internal/model"
	"github.com/Dicklesworthstone/procmon/internal/source/sourcetest"
)

type users map[uint32]string

func (u users) LookupName(uid uint32) (string, error) {
	if n, ok := u[uid]; ok {
		return n, nil
	}
	return "", identity.ErrUnknown
}

func TestBuildProcess(t *testing.T) {
	src := sourcetest.New()
	src.Add(model.ProcessCounters{
		PID: 10, UserTicks: 200, SystemTicks: 50, ChildUserTicks: 100, ChildSystemTicks: 150,
		StartTicks: 500, OwnerID: 1000, Command: "/bin/app -v", ResidentKB: 5 * 1024,
	})
	dir := users{1000: "alice"}
	ctx := context.Background()

	t.Run("derived_fields", func(t *testing.T) {
		// uptime 10s, start 5s after boot: age 5s, active 250 ticks
		p, ok := BuildProcess(ctx, src, dir, 10, 10, BuildOptions{})
		require.True(t, ok)
		assert.Equal(t, model.Process{
			PID: 10, UID: 1000, User: "alice", Command: "/bin/app -v",
			CPU: 0.5, RAMMB: 5, AgeSeconds: 5,
		}, p)
	})
	t.Run("include_children", func(t *testing.T) {
		p, ok := BuildProcess(ctx, src, dir, 10, 10, BuildOptions{IncludeChildren: true})
		require.True(t, ok)
		assert.InDelta(t, 1.0, p.CPU, 1e-12)
	})
	t.Run("zero_age_is_fully_busy", func(t *testing.T) {
		p, ok := BuildProcess(ctx, src, dir, 10, 5, BuildOptions{})
		require.True(t, ok)
		assert.Equal(t, int64(0), p.AgeSeconds)
		assert.Equal(t, 1.0, p.CPU)
	})
	t.Run("negative_age_clamped", func(t *testing.T) {
		p, ok := BuildProcess(ctx, src, dir, 10, 2, BuildOptions{})
		require.True(t, ok)
		assert.Equal(t, int64(0), p.AgeSeconds)
		assert.Equal(t, 1.0, p.CPU)
	})
	t.Run("unknown_owner_is_empty", func(t *testing.T) {
		p, ok := BuildProcess(ctx, src, users{}, 10, 10, BuildOptions{})
		require.True(t, ok)
		assert.Equal(t, "", p.User)
		assert.Equal(t, uint32(1000), p.UID)
	})
	t.Run("nil_directory", func(t *testing.T) {
		p, ok := BuildProcess(ctx, src, nil, 10, 10, BuildOptions{})
		require.True(t, ok)
		assert.Equal(t, "", p.User)
	})
}

func TestBuildProcess_Absent(t *testing.T) {
	src := sourcetest.New()
	src.Add(model.ProcessCounters{PID: 2, Command: model.NoCommand})
	src.Add(model.ProcessCounters{PID: 3, Command: ""})
	src.Vanished = []int{4}
	src.Broken = []int{5}
	ctx := context.Background()

	for _, pid := range []int{2, 3, 4, 5, 6} {
		_, ok := BuildProcess(ctx, src, nil, pid, 100, BuildOptions{})
		assert.False(t, ok, "pid %d", pid)
	}
}

func TestResolveOwner(t *testing.T) {
	dir := users{0: "root"}
	assert.Equal(t, "root", ResolveOwner(dir, 0))
	assert.Equal(t, "", ResolveOwner(dir, 1))
	assert.Equal(t, "", ResolveOwner(nil, 0))
}
