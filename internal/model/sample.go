package model

import "time"

// NoCommand marks a process whose command line could not be read
// (kernel threads, zombies, permission-restricted entries).
const NoCommand = "None"

// CPUBuckets holds the ten cumulative CPU time counters of the aggregate
// "cpu" line. Any unit works as long as all fields share it.
type CPUBuckets struct {
	User      float64
	Nice      float64
	System    float64
	Idle      float64
	Iowait    float64
	Irq       float64
	Softirq   float64
	Steal     float64
	Guest     float64
	GuestNice float64
}

// Active is user+nice+system+irq+softirq+steal. Idle, iowait and guest
// time are not counted.
func (b CPUBuckets) Active() float64 {
	return b.User + b.Nice + b.System + b.Irq + b.Softirq + b.Steal
}

// Total sums all ten buckets.
func (b CPUBuckets) Total() float64 {
	return b.Active() + b.Idle + b.Iowait + b.Guest + b.GuestNice
}

// SystemCounters is one system-wide read of the counter source.
type SystemCounters struct {
	CPU              CPUBuckets
	MemTotalKB       uint64
	MemFreeKB        uint64
	UptimeSeconds    int64
	TotalProcesses   int // procfs: forks since boot; psutil: live processes
	RunningProcesses int
}

// Host identifies the running kernel and distribution.
type Host struct {
	Kernel string
	OS     string
}

// ProcessCounters is one raw read of a single process.
type ProcessCounters struct {
	PID              int
	UserTicks        uint64
	SystemTicks      uint64
	ChildUserTicks   uint64
	ChildSystemTicks uint64
	StartTicks       uint64 // ticks after boot
	OwnerID          uint32
	Command          string // NoCommand when absent
	ResidentKB       uint64 // 0 when unknown
}

// Process is a fully derived row of the process table.
type Process struct {
	PID        int     `json:"pid"`
	UID        uint32  `json:"uid"`
	User       string  `json:"user"`
	Command    string  `json:"command"`
	CPU        float64 `json:"cpu"` // fraction of one core, not clamped
	RAMMB      int64   `json:"ram_mb"`
	AgeSeconds int64   `json:"age_seconds"`
}

// Sample is the read-only view handed to renderers and the JSON exporter.
type Sample struct {
	Timestamp        time.Time     `json:"timestamp"`
	Interval         time.Duration `json:"interval"`
	CPU              float64       `json:"cpu"`    // fraction 0-1
	Memory           float64       `json:"memory"` // fraction 0-1
	UptimeSeconds    int64         `json:"uptime_seconds"`
	TotalProcesses   int           `json:"total_processes"`
	RunningProcesses int           `json:"running_processes"`
	Kernel           string        `json:"kernel"`
	OS               string        `json:"os"`
	Order            string        `json:"order"`
	Processes        []Process     `json:"processes"`
}
