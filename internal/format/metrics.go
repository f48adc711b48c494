package format

import (
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/statusline/internal/model"
)

// Percent renders a [0,1] ratio as a whole percentage.
func Percent(ratio float64) string {
	if !(ratio > 0) {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return fmt.Sprintf("%.0f%%", ratio*100)
}

// Metrics renders the right-hand segments of the bar.
type Metrics struct {
	Units       Units
	Placeholder string
}

// Rates returns the receive and transmit fragments.
func (m Metrics) Rates(r model.Readings) (rx, tx string) {
	if !r.TrafficOK {
		return m.Placeholder, m.Placeholder
	}
	return m.Units.Format(r.RxBits), m.Units.Format(r.TxBits)
}

// CPU lists per-core loads in core id order.
func (m Metrics) CPU(r model.Readings) string {
	if !r.CPUOK || len(r.Loads) == 0 {
		return m.Placeholder
	}
	parts := make([]string, len(r.Loads))
	for i, l := range r.Loads {
		parts[i] = Percent(l.Load)
	}
	return strings.Join(parts, " ")
}

func (m Metrics) Memory(r model.Readings) string {
	if !r.MemoryOK {
		return m.Placeholder
	}
	return Percent(r.MemUsed)
}
