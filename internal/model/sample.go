package model

import "time"

// Workspace is one i3 workspace as reported by get_workspaces.
type Workspace struct {
	Name    string `json:"name"`
	Num     int    `json:"num"`
	Focused bool   `json:"focused"`
	Urgent  bool   `json:"urgent"`
}

// TrafficCounters holds cumulative byte counters of one network interface.
type TrafficCounters struct {
	RxBytes uint64 `json:"rx_bytes"`
	TxBytes uint64 `json:"tx_bytes"`
}

// Traffic maps interface name to its counters.
type Traffic map[string]TrafficCounters

// Sum adds up the counters of every interface.
func (t Traffic) Sum() TrafficCounters {
	var out TrafficCounters
	for _, c := range t {
		out.RxBytes += c.RxBytes
		out.TxBytes += c.TxBytes
	}
	return out
}

// CPUCounters holds cumulative tick buckets of one logical core.
type CPUCounters struct {
	Idle  uint64 `json:"idle"`
	Total uint64 `json:"total"`
}

// Work is the number of non-idle ticks.
func (c CPUCounters) Work() uint64 {
	if c.Idle > c.Total {
		return 0
	}
	return c.Total - c.Idle
}

// CPU maps core id (the N of cpuN) to its counters.
type CPU map[int]CPUCounters

// Memory is an instantaneous /proc/meminfo style snapshot in KiB.
type Memory struct {
	TotalKB   uint64 `json:"total_kb"`
	FreeKB    uint64 `json:"free_kb"`
	BuffersKB uint64 `json:"buffers_kb"`
	CachedKB  uint64 `json:"cached_kb"`
}

// Sample is one cycle of raw readings. A metric whose read failed carries a
// non-nil error and a zero value.
type Sample struct {
	At         time.Time
	TrafficAt  time.Time // when Traffic was read; zero means At
	Workspaces []Workspace
	Traffic    Traffic
	CPU        CPU
	Memory     Memory

	WorkspacesErr error
	TrafficErr    error
	CPUErr        error
	MemoryErr     error
}

// TrafficTime is the instant the traffic counters belong to.
func (s Sample) TrafficTime() time.Time {
	if s.TrafficAt.IsZero() {
		return s.At
	}
	return s.TrafficAt
}

// CoreLoad is the utilization of a single core in [0,1].
type CoreLoad struct {
	ID   int     `json:"id"`
	Load float64 `json:"load"`
}

// Readings are the values derived from two consecutive samples.
type Readings struct {
	Warming bool    `json:"warming"`
	Elapsed float64 `json:"elapsed_seconds"`

	RxBits    float64 `json:"rx_bits"`
	TxBits    float64 `json:"tx_bits"`
	TrafficOK bool    `json:"traffic_ok"`

	Loads []CoreLoad `json:"loads"`
	CPUOK bool       `json:"cpu_ok"`

	MemUsed  float64 `json:"mem_used"`
	MemoryOK bool    `json:"memory_ok"`
}

// Segments are the rendered fragments a line is composed from.
type Segments struct {
	Workspaces string   `json:"workspaces"`
	Time       string   `json:"time"`
	Right      []string `json:"right"`
}

// Frame is what one poll cycle produced.
type Frame struct {
	At         time.Time   `json:"at"`
	Line       string      `json:"line"`
	Segments   Segments    `json:"segments"`
	Workspaces []Workspace `json:"workspaces"`
	Readings   Readings    `json:"readings"`
}
