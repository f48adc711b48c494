package sampler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Dicklesworthstone/statusline/internal/model"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

func TestDecodeWorkspaces(t *testing.T) {
	raw := []byte(`[
		{"id":94,"num":1,"name":"1:term","visible":true,"focused":false,"urgent":false,"output":"eDP-1"},
		{"id":95,"num":4,"name":"4:web","visible":true,"focused":true,"urgent":false,"output":"eDP-1"},
		{"id":96,"num":9,"name":"9","visible":false,"focused":false,"urgent":true,"output":"eDP-1"}
	]`)
	got, err := decodeWorkspaces(raw)
	if err != nil {
		t.Fatal(err)
	}
	want := []model.Workspace{
		{Name: "1:term", Num: 1},
		{Name: "4:web", Num: 4, Focused: true},
		{Name: "9", Num: 9, Urgent: true},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d workspaces, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDecodeWorkspacesMalformed(t *testing.T) {
	for _, raw := range []string{``, `{"success":false}`, `[{"num":"one"}]`} {
		if _, err := decodeWorkspaces([]byte(raw)); !errors.Is(err, ErrMalformed) {
			t.Errorf("decodeWorkspaces(%q) err = %v, want ErrMalformed", raw, err)
		}
	}
}

func TestTrafficFromCounters(t *testing.T) {
	got := trafficFromCounters([]net.IOCountersStat{
		{Name: "lo", BytesRecv: 10, BytesSent: 10},
		{Name: "eth0", BytesRecv: 1000, BytesSent: 2000},
	})
	if got["eth0"] != (model.TrafficCounters{RxBytes: 1000, TxBytes: 2000}) {
		t.Errorf("eth0 = %+v", got["eth0"])
	}
	if sum := got.Sum(); sum.RxBytes != 1010 || sum.TxBytes != 2010 {
		t.Errorf("Sum = %+v", sum)
	}
}

func TestCPUFromTimes(t *testing.T) {
	got, err := cpuFromTimes([]cpu.TimesStat{
		{CPU: "cpu-total", User: 100, Idle: 100},
		{CPU: "cpu1", User: 2, System: 1, Idle: 6.5, Iowait: 0.5},
		{CPU: "cpu0", User: 1, Idle: 1},
		{CPU: "cpuX", User: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d cores, want 2: %+v", len(got), got)
	}
	if got[1] != (model.CPUCounters{Idle: 700, Total: 1000}) {
		t.Errorf("cpu1 = %+v", got[1])
	}
	if got[0] != (model.CPUCounters{Idle: 100, Total: 200}) {
		t.Errorf("cpu0 = %+v", got[0])
	}
}

func TestCPUFromTimesGuestCountedOnce(t *testing.T) {
	prev := guestInUser
	guestInUser = true
	t.Cleanup(func() { guestInUser = prev })

	got, err := cpuFromTimes([]cpu.TimesStat{
		{CPU: "cpu0", User: 0.5, Guest: 0.5, Idle: 0.5},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != (model.CPUCounters{Idle: 50, Total: 100}) {
		t.Errorf("cpu0 = %+v, want guest time inside user only", got[0])
	}
}

func TestMemoryFromVirtualCachedNeverUnderflows(t *testing.T) {
	got := memoryFromVirtual(&mem.VirtualMemoryStat{Total: 1024, Cached: 1024, Sreclaimable: 4096})
	if got.CachedKB != 0 {
		t.Errorf("CachedKB = %d, want 0", got.CachedKB)
	}
}

func TestCPUFromTimesNoCores(t *testing.T) {
	if _, err := cpuFromTimes([]cpu.TimesStat{{CPU: "cpu-total"}}); !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestMemoryFromVirtual(t *testing.T) {
	// gopsutil reports meminfo Cached + SReclaimable as Cached.
	got := memoryFromVirtual(&mem.VirtualMemoryStat{
		Total:        1000 * 1024,
		Free:         200 * 1024,
		Buffers:      100 * 1024,
		Cached:       300 * 1024,
		Sreclaimable: 100 * 1024,
	})
	want := model.Memory{TotalKB: 1000, FreeKB: 200, BuffersKB: 100, CachedKB: 200}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if memoryFromVirtual(nil) != (model.Memory{}) {
		t.Error("nil stat should give a zero snapshot")
	}
}

func TestWorkspacesMissingBinary(t *testing.T) {
	s := New(100 * time.Millisecond)
	s.I3Msg = "/nonexistent/i3-msg"
	if _, err := s.Workspaces(context.Background()); err == nil {
		t.Error("expected an error for a missing i3-msg")
	}
}

func TestSampleRecordsFailuresPerMetric(t *testing.T) {
	s := New(100 * time.Millisecond)
	s.I3Msg = "/nonexistent/i3-msg"
	now := time.Now()
	got := s.Sample(context.Background(), now)
	if !got.At.Equal(now) {
		t.Errorf("At = %v, want %v", got.At, now)
	}
	if got.WorkspacesErr == nil {
		t.Error("workspace failure not recorded")
	}
	if got.Workspaces != nil {
		t.Errorf("Workspaces = %+v, want nil on failure", got.Workspaces)
	}
}

// fakeI3Msg writes a shell script that answers get_workspaces after delay.
func fakeI3Msg(t *testing.T, delay string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "i3-msg")
	script := "#!/bin/sh\nsleep " + delay + "\necho '[{\"num\":1,\"name\":\"1\",\"focused\":true}]'\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSampleStampsTrafficAfterSlowWorkspaces(t *testing.T) {
	s := New(2 * time.Second)
	s.I3Msg = fakeI3Msg(t, "0.3")

	now := time.Now()
	got := s.Sample(context.Background(), now)
	if got.WorkspacesErr != nil {
		t.Fatalf("workspaces: %v", got.WorkspacesErr)
	}
	if len(got.Workspaces) != 1 || !got.Workspaces[0].Focused {
		t.Errorf("Workspaces = %+v", got.Workspaces)
	}
	if lag := got.TrafficAt.Sub(got.At); lag < 250*time.Millisecond {
		t.Errorf("TrafficAt is %v after At, want it after the 300ms workspace query", lag)
	}
	if got.TrafficAt.After(time.Now()) {
		t.Errorf("TrafficAt %v is in the future", got.TrafficAt)
	}
}

func TestSampleUsesClockForTraffic(t *testing.T) {
	s := New(time.Second)
	s.I3Msg = fakeI3Msg(t, "0")
	stamp := time.Date(2024, 3, 8, 14, 5, 0, 250_000_000, time.UTC)
	s.Clock = func() time.Time { return stamp }

	got := s.Sample(context.Background(), stamp.Add(-250*time.Millisecond))
	if !got.TrafficAt.Equal(stamp) || !got.TrafficTime().Equal(stamp) {
		t.Errorf("TrafficAt = %v, want %v", got.TrafficAt, stamp)
	}
}
