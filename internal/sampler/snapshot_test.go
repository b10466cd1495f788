package sampler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/procmon/internal/model"
)

func systemSource() model.SystemCounters {
	return model.SystemCounters{
		CPU:              model.CPUBuckets{User: 100, System: 50, Idle: 800, Iowait: 10},
		MemTotalKB:       1000,
		MemFreeKB:        400,
		UptimeSeconds:    100,
		TotalProcesses:   999,
		RunningProcesses: 3,
	}
}

func TestSnapshot_Refresh(t *testing.T) {
	src := churnSource()
	src.System = systemSource()
	src.HostInfo = model.Host{Kernel: "6.1.0", OS: "Debian GNU/Linux 12"}

	snap := New(src, users{0: "root"}, CatalogOptions{})
	require.NoError(t, snap.Refresh(context.Background()))

	v := snap.View()
	assert.InDelta(t, 0.15625, v.CPU, 1e-12)
	assert.InDelta(t, 0.6, v.Memory, 1e-12)
	assert.Equal(t, int64(100), v.UptimeSeconds)
	assert.Equal(t, "6.1.0", v.Kernel)
	assert.Equal(t, "Debian GNU/Linux 12", v.OS)
	assert.Equal(t, "cpu", v.Order)
	assert.False(t, v.Timestamp.IsZero())

	// counts come from the source, not from the filtered table
	assert.Equal(t, 999, v.TotalProcesses)
	assert.Equal(t, 3, v.RunningProcesses)
	assert.Equal(t, []int{20, 30, 31, 1}, pids(v.Processes))
	assertSorted(t, v.Processes)
}

func TestSnapshot_HostResolvedOnce(t *testing.T) {
	src := churnSource()
	src.System = systemSource()
	src.HostInfo = model.Host{Kernel: "6.1.0", OS: "Arch Linux"}

	snap := New(src, nil, CatalogOptions{})
	for i := 0; i < 3; i++ {
		require.NoError(t, snap.Refresh(context.Background()))
	}
	assert.Equal(t, 1, src.HostCalls)

	src.HostInfo = model.Host{Kernel: "changed"}
	require.NoError(t, snap.Refresh(context.Background()))
	assert.Equal(t, "6.1.0", snap.View().Kernel)
}

func TestSnapshot_HostErrorIsNotFatal(t *testing.T) {
	src := churnSource()
	src.System = systemSource()
	src.HostErr = errors.New("no os-release")
	src.HostInfo = model.Host{Kernel: "6.1.0"}

	snap := New(src, nil, CatalogOptions{})
	require.NoError(t, snap.Refresh(context.Background()))
	v := snap.View()
	assert.Equal(t, "6.1.0", v.Kernel)
	assert.Equal(t, "", v.OS)
}

func TestSnapshot_HostRetriedUntilKnown(t *testing.T) {
	src := churnSource()
	src.System = systemSource()
	src.HostErr = errors.New("version unreadable")
	snap := New(src, nil, CatalogOptions{})

	require.NoError(t, snap.Refresh(context.Background()))
	assert.Equal(t, "", snap.View().Kernel)

	src.HostErr = nil
	src.HostInfo = model.Host{Kernel: "6.1.0"}
	require.NoError(t, snap.Refresh(context.Background()))
	assert.Equal(t, "6.1.0", snap.View().Kernel)
	assert.Equal(t, 2, src.HostCalls)

	require.NoError(t, snap.Refresh(context.Background()))
	assert.Equal(t, 2, src.HostCalls, "cached once known")
}

func TestSnapshot_SystemUnavailable(t *testing.T) {
	src := churnSource()
	src.System = systemSource()
	snap := New(src, nil, CatalogOptions{})

	t.Run("before_first_success", func(t *testing.T) {
		src.SystemErr = errors.New("stat missing")
		err := snap.Refresh(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrSystemUnavailable))
		v := snap.View()
		assert.Equal(t, 0.0, v.CPU)
		assert.Empty(t, v.Processes)
	})

	t.Run("keeps_previous", func(t *testing.T) {
		src.SystemErr = nil
		require.NoError(t, snap.Refresh(context.Background()))
		before := snap.View()

		src.SystemErr = errors.New("stat missing")
		src.Add(model.ProcessCounters{PID: 99, UserTicks: 1 << 20, Command: "new"})
		require.Error(t, snap.Refresh(context.Background()))

		after := snap.View()
		assert.Equal(t, before, after)
	})
}

func TestSnapshot_EnumerationFailureKeepsPrevious(t *testing.T) {
	src := churnSource()
	src.System = systemSource()
	snap := New(src, nil, CatalogOptions{})
	require.NoError(t, snap.Refresh(context.Background()))
	before := snap.View()

	src.IDsErr = errors.New("readdir failed")
	src.System.UptimeSeconds = 500
	err := snap.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEnumerate))
	assert.Equal(t, before, snap.View())
}

func TestSnapshot_ViewIsACopy(t *testing.T) {
	src := churnSource()
	src.System = systemSource()
	snap := New(src, nil, CatalogOptions{})
	require.NoError(t, snap.Refresh(context.Background()))

	v := snap.View()
	v.Processes[0].Command = "mutated"
	v.Processes = v.Processes[:1]
	assert.Equal(t, "busy", snap.View().Processes[0].Command)
	assert.Len(t, snap.View().Processes, 4)
}

func TestSnapshot_ProcessChurn(t *testing.T) {
	src := churnSource()
	src.System = systemSource()
	snap := New(src, nil, CatalogOptions{})
	require.NoError(t, snap.Refresh(context.Background()))
	assert.Len(t, snap.View().Processes, 4)

	// pid 20 exits between enumerations
	delete(src.Procs, 20)
	src.Vanished = append(src.Vanished, 20)
	require.NoError(t, snap.Refresh(context.Background()))
	assert.Equal(t, []int{30, 31, 1}, pids(snap.View().Processes))
}

func TestSnapshot_SetOrder(t *testing.T) {
	src := churnSource()
	src.System = systemSource()
	snap := New(src, nil, CatalogOptions{})
	require.NoError(t, snap.Refresh(context.Background()))

	snap.SetOrder(ByMemory)
	v := snap.View()
	assert.Equal(t, "mem", v.Order)
	assert.Equal(t, []int{1, 31, 30, 20}, pids(v.Processes), "current table re-sorted")

	require.NoError(t, snap.Refresh(context.Background()))
	assert.Equal(t, []int{1, 31, 30, 20}, pids(snap.View().Processes))
}

func TestSnapshot_Stream(t *testing.T) {
	src := churnSource()
	src.System = systemSource()
	snap := New(src, nil, CatalogOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := snap.Stream(ctx, 10*time.Millisecond)

	first := <-ch
	assert.Equal(t, 10*time.Millisecond, first.Interval)
	assert.Equal(t, []int{20, 30, 31, 1}, pids(first.Processes))

	second := <-ch
	assert.Equal(t, pids(first.Processes), pids(second.Processes))

	cancel()
	for range ch {
	}
}

func TestSnapshot_StreamSurvivesFailures(t *testing.T) {
	src := churnSource()
	src.SystemErr = errors.New("down")
	snap := New(src, nil, CatalogOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := snap.Stream(ctx, 5*time.Millisecond)

	v := <-ch
	assert.Empty(t, v.Processes)
	v = <-ch
	assert.Empty(t, v.Processes)
	cancel()
	for range ch {
	}
}
