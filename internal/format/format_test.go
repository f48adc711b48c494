package format

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/goodsign/monday"

	"github.com/Dicklesworthstone/statusline/internal/markup"
	"github.com/Dicklesworthstone/statusline/internal/model"
)

func TestUnitsFormat(t *testing.T) {
	u := SI()
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00 bit/s"},
		{-5, "0.00 bit/s"},
		{math.NaN(), "0.00 bit/s"},
		{999, "999.00 bit/s"},
		{1000, "1.00 kbit/s"},
		{8000, "8.00 kbit/s"},
		{12_340_000, "12.34 Mbit/s"},
		{1e9, "1.00 Gbit/s"},
		{2.5e12, "2.50 Tbit/s"},
		{5e15, "5000.00 Tbit/s"},
	}
	for _, tt := range tests {
		if got := u.Format(tt.in); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnitsBoundary(t *testing.T) {
	u := SI()
	if got := u.Format(1e9); !strings.HasSuffix(got, " Gbit/s") {
		t.Errorf("Format(1e9) = %q, want Gbit/s", got)
	}
	if got := u.Format(999_999_999); !strings.HasSuffix(got, " Mbit/s") {
		t.Errorf("Format(999999999) = %q, want Mbit/s", got)
	}
}

func TestUnitsUnorderedTable(t *testing.T) {
	u := Units{Steps: []Step{{1e3, "K"}, {1e6, "M"}}, Base: "B"}
	if got := u.Format(2e6); got != "2.00 M" {
		t.Errorf("Format = %q, want 2.00 M", got)
	}
}

func TestWorkspacesFormat(t *testing.T) {
	w := Workspaces{
		Dialect:       markup.Dzen2{},
		FocusedBG:     "#285577",
		UrgentFG:      "#ff0000",
		SwitchCommand: "i3-msg workspace number %d",
	}

	got := w.Format([]model.Workspace{
		{Name: "1", Num: 1},
		{Name: "2", Num: 2, Focused: true},
	})
	want := "^ca(1,i3-msg workspace number 1)1^ca() " +
		"^ca(1,i3-msg workspace number 2)^bg(#285577)2^bg()^ca()"
	if got != want {
		t.Errorf("Format =\n%q\nwant\n%q", got, want)
	}
}

func TestWorkspacesUsesNumNotIndex(t *testing.T) {
	w := Workspaces{Dialect: markup.Dzen2{}, SwitchCommand: "i3-msg workspace number %d", UrgentFG: "#f00", FocusedBG: "#00f"}
	got := w.Format([]model.Workspace{
		{Name: "10:web", Num: 10},
		{Name: "3:mail", Num: 3, Urgent: true, Focused: true},
	})
	if strings.Index(got, "10:web") > strings.Index(got, "3:mail") {
		t.Errorf("order not preserved: %q", got)
	}
	if !strings.Contains(got, "^ca(1,i3-msg workspace number 3)^bg(#00f)^fg(#f00)3:mail^fg()^bg()^ca()") {
		t.Errorf("urgent+focused workspace not nested as expected: %q", got)
	}
	if !strings.Contains(got, "workspace number 10)") {
		t.Errorf("click target should be the workspace number: %q", got)
	}
}

func TestWorkspacesEmpty(t *testing.T) {
	w := Workspaces{Dialect: markup.Dzen2{}, SwitchCommand: "%d"}
	if got := w.Format(nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}
}

func TestRussianGenitive(t *testing.T) {
	for in, want := range map[string]string{
		"январь":   "января",
		"март":     "марта",
		"май":      "мая",
		"август":   "августа",
		"сентябрь": "сентября",
		"":         "",
	} {
		if got := RussianGenitive(in); got != want {
			t.Errorf("RussianGenitive(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLookupLocale(t *testing.T) {
	l := LookupLocale("ru_RU.UTF-8")
	if l.Name != monday.LocaleRuRU {
		t.Errorf("Name = %s, want ru_RU", l.Name)
	}
	if l.MonthRule("март") != "марта" {
		t.Error("ru_RU should use the genitive rule")
	}
	if got := LookupLocale("C").Name; got != monday.LocaleEnUS {
		t.Errorf("C locale = %s, want en_US", got)
	}
}

func TestLocaleFromEnv(t *testing.T) {
	env := map[string]string{"LANG": "en_US.UTF-8", "LC_TIME": "ru_RU.UTF-8"}
	l := LocaleFromEnv(func(k string) string { return env[k] })
	if l.Name != monday.LocaleRuRU {
		t.Errorf("LC_TIME should win over LANG, got %s", l.Name)
	}
	l = LocaleFromEnv(func(string) string { return "" })
	if l.Name != monday.LocaleEnUS {
		t.Errorf("empty env = %s, want en_US", l.Name)
	}
}

func TestClockFormat(t *testing.T) {
	at := time.Date(2024, 3, 8, 14, 5, 0, 0, time.UTC)
	c := Clock{Locale: LookupLocale("en_US")}
	if got, want := c.Format(at), "Friday,  8 march, 14:05"; got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}

	c.Locale.MonthRule = func(m string) string { return "<" + m + ">" }
	if got := c.Format(at); !strings.Contains(got, " <march>, ") {
		t.Errorf("month rule not applied: %q", got)
	}
}

func TestMetrics(t *testing.T) {
	m := Metrics{Units: SI(), Placeholder: "--"}

	r := model.Readings{
		RxBits: 8000, TxBits: 16000, TrafficOK: true,
		Loads: []model.CoreLoad{{ID: 0, Load: 0.25}, {ID: 1, Load: 1}}, CPUOK: true,
		MemUsed: 0.5, MemoryOK: true,
	}
	rx, tx := m.Rates(r)
	if rx != "8.00 kbit/s" || tx != "16.00 kbit/s" {
		t.Errorf("Rates = %q, %q", rx, tx)
	}
	if got := m.CPU(r); got != "25% 100%" {
		t.Errorf("CPU = %q", got)
	}
	if got := m.Memory(r); got != "50%" {
		t.Errorf("Memory = %q", got)
	}

	var down model.Readings
	rx, tx = m.Rates(down)
	if rx != "--" || tx != "--" || m.CPU(down) != "--" || m.Memory(down) != "--" {
		t.Error("unavailable metrics should render the placeholder")
	}
}
