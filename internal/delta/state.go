package delta

import (
	"sort"
	"time"

	"github.com/Dicklesworthstone/statusline/internal/model"
)

// PollState carries the counters of the previous successful poll.
type PollState struct {
	Traffic model.Traffic
	CPU     model.CPU
	// At is when Traffic was read; zero until the first successful read.
	// CPU load does not depend on wall time.
	At time.Time
}

// NewPollState bootstraps from the first sample. The returned readings are
// zero-valued for every rate and load since there is nothing to diff against.
func NewPollState(s model.Sample) (*PollState, model.Readings) {
	p := &PollState{}
	r := model.Readings{Warming: true}

	if s.TrafficErr == nil {
		p.Traffic, p.At = s.Traffic, s.TrafficTime()
		r.TrafficOK = true
	}
	if s.CPUErr == nil {
		p.CPU = s.CPU
		r.Loads = make([]model.CoreLoad, 0, len(s.CPU))
		for _, id := range coreIDs(s.CPU) {
			r.Loads = append(r.Loads, model.CoreLoad{ID: id})
		}
		r.CPUOK = true
	}
	fillMemory(&r, s)
	return p, r
}

// Advance diffs s against the stored counters and then stores s in their
// place. A metric that failed to sample keeps its old counters and is
// reported unavailable. Counters that went backwards count as zero for this
// cycle and become the new baseline. Traffic that has never been read before
// bootstraps here and reports zero rates.
func (p *PollState) Advance(s model.Sample) model.Readings {
	var r model.Readings

	if s.TrafficErr == nil {
		at := s.TrafficTime()
		if p.At.IsZero() {
			r.TrafficOK = true
		} else {
			elapsed := at.Sub(p.At).Seconds()
			r.Elapsed = elapsed
			r.RxBits, r.TxBits, r.TrafficOK = trafficRates(p.Traffic, s.Traffic, elapsed)
		}
		p.Traffic, p.At = s.Traffic, at
	}

	if s.CPUErr == nil {
		r.Loads = make([]model.CoreLoad, 0, len(s.CPU))
		for _, id := range coreIDs(s.CPU) {
			cl := model.CoreLoad{ID: id}
			if prev, ok := p.CPU[id]; ok {
				cl.Load, _ = CPULoad(prev, s.CPU[id])
			}
			r.Loads = append(r.Loads, cl)
		}
		r.CPUOK = true
		p.CPU = s.CPU
	}

	fillMemory(&r, s)
	return r
}

// trafficRates sums per-interface bit rates. Interfaces seen in only one of
// the two samples, or whose counters reset, contribute nothing.
func trafficRates(prev, curr model.Traffic, elapsed float64) (rx, tx float64, ok bool) {
	if !(elapsed > 0) {
		return 0, 0, false
	}
	for name, c := range curr {
		pc, seen := prev[name]
		if !seen {
			continue
		}
		if v, err := BitRate(pc.RxBytes, c.RxBytes, elapsed); err == nil {
			rx += v
		}
		if v, err := BitRate(pc.TxBytes, c.TxBytes, elapsed); err == nil {
			tx += v
		}
	}
	return rx, tx, true
}

func fillMemory(r *model.Readings, s model.Sample) {
	if s.MemoryErr != nil {
		return
	}
	r.MemUsed = MemoryUsed(s.Memory)
	r.MemoryOK = true
}

func coreIDs(c model.CPU) []int {
	ids := make([]int, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
