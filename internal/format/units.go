// Package format turns derived readings into bar text.
package format

import (
	"fmt"
	"math"
)

// Step is one unit breakpoint: values at or above Factor are divided by it.
type Step struct {
	Factor float64
	Suffix string
}

// Units converts a bits-per-second rate into a human string.
type Units struct {
	Steps []Step
	Base  string
}

// SI is the decimal bit-rate table.
func SI() Units {
	return Units{
		Steps: []Step{
			{1e12, "Tbit/s"},
			{1e9, "Gbit/s"},
			{1e6, "Mbit/s"},
			{1e3, "kbit/s"},
		},
		Base: "bit/s",
	}
}

// Format uses the largest breakpoint not above v, or the base unit when v is
// below all of them.
func (u Units) Format(v float64) string {
	if !(v > 0) {
		v = 0
	}
	factor, suffix := 1.0, u.Base
	for _, s := range u.Steps {
		if s.Factor > 0 && v >= s.Factor && s.Factor > factor {
			factor, suffix = s.Factor, s.Suffix
		}
	}
	if math.IsInf(v, 1) {
		return "inf " + suffix
	}
	return fmt.Sprintf("%.2f %s", v/factor, suffix)
}
