package sampler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/Dicklesworthstone/statusline/internal/model"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// userHZ is the kernel's tick rate for /proc/stat; gopsutil reports CPU
// times in seconds so they are scaled back to ticks.
const userHZ = 100

// guestInUser is true where the kernel already counts guest time inside
// user and nice.
var guestInUser = runtime.GOOS == "linux"

// ErrMalformed marks a reading whose shape was not what we expected.
var ErrMalformed = errors.New("malformed reading")

// Sampler reads raw counters from procfs through gopsutil and the workspace
// list from i3-msg. Every call is bounded by Timeout.
type Sampler struct {
	Timeout time.Duration
	// I3Msg is the i3-msg binary, looked up in PATH when relative.
	I3Msg string
	// Clock stamps the traffic read; time.Now when nil.
	Clock func() time.Time
}

func New(timeout time.Duration) *Sampler {
	return &Sampler{Timeout: timeout, I3Msg: "i3-msg", Clock: time.Now}
}

// Sample takes one reading of every metric. Failures are recorded per metric
// and never stop the others. Traffic is stamped with the instant its read
// returned so i3 latency never leaks into the rate.
func (s *Sampler) Sample(ctx context.Context, now time.Time) model.Sample {
	out := model.Sample{At: now}
	out.Workspaces, out.WorkspacesErr = s.Workspaces(ctx)
	out.Traffic, out.TrafficErr = s.Traffic(ctx)
	out.TrafficAt = s.clock()
	out.CPU, out.CPUErr = s.CPU(ctx)
	out.Memory, out.MemoryErr = s.Memory(ctx)
	return out
}

func (s *Sampler) clock() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Sampler) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// Workspaces asks i3 for its workspace list.
func (s *Sampler) Workspaces(ctx context.Context) ([]model.Workspace, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	out, err := runCmd(ctx, s.I3Msg, "-t", "get_workspaces")
	if err != nil {
		return nil, fmt.Errorf("i3 get_workspaces: %w", err)
	}
	return decodeWorkspaces(out)
}

// Traffic reads per-interface byte counters.
func (s *Sampler) Traffic(ctx context.Context) (model.Traffic, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("net counters: %w", err)
	}
	return trafficFromCounters(counters), nil
}

// CPU reads per-core tick buckets.
func (s *Sampler) CPU(ctx context.Context) (model.CPU, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	times, err := cpu.TimesWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("cpu times: %w", err)
	}
	return cpuFromTimes(times)
}

// Memory reads total/free/buffers/cached.
func (s *Sampler) Memory(ctx context.Context) (model.Memory, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return model.Memory{}, fmt.Errorf("virtual memory: %w", err)
	}
	return memoryFromVirtual(vm), nil
}

func decodeWorkspaces(raw []byte) ([]model.Workspace, error) {
	var list []model.Workspace
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: workspaces: %v", ErrMalformed, err)
	}
	return list, nil
}

func trafficFromCounters(counters []net.IOCountersStat) model.Traffic {
	out := make(model.Traffic, len(counters))
	for _, c := range counters {
		out[c.Name] = model.TrafficCounters{RxBytes: c.BytesRecv, TxBytes: c.BytesSent}
	}
	return out
}

func cpuFromTimes(times []cpu.TimesStat) (model.CPU, error) {
	out := make(model.CPU, len(times))
	for _, t := range times {
		id, ok := coreID(t.CPU)
		if !ok {
			continue
		}
		total := t.Total()
		if guestInUser {
			total -= t.Guest + t.GuestNice
		}
		out[id] = model.CPUCounters{Idle: ticks(t.Idle + t.Iowait), Total: ticks(total)}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no per-core cpu entries", ErrMalformed)
	}
	return out, nil
}

// coreID parses "cpu7" into 7. The aggregate "cpu" / "cpu-total" entries are
// not cores.
func coreID(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "cpu")
	if !ok || rest == "" {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

func ticks(seconds float64) uint64 {
	if !(seconds > 0) {
		return 0
	}
	return uint64(math.Round(seconds * userHZ))
}

// memoryFromVirtual maps gopsutil's snapshot to meminfo fields. On Linux
// gopsutil folds SReclaimable into Cached; it is taken back out so Cached is
// the bare meminfo line.
func memoryFromVirtual(vm *mem.VirtualMemoryStat) model.Memory {
	if vm == nil {
		return model.Memory{}
	}
	return model.Memory{
		TotalKB:   vm.Total / 1024,
		FreeKB:    vm.Free / 1024,
		BuffersKB: vm.Buffers / 1024,
		CachedKB:  (vm.Cached - min(vm.Sreclaimable, vm.Cached)) / 1024,
	}
}

func runCmd(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, ctx.Err()
	}
	return out, err
}
