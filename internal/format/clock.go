package format

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goodsign/monday"
)

// MonthRule rewrites a lowercased month name into the form used after a day
// number ("8 марта" rather than "8 март").
type MonthRule func(month string) string

// Identity leaves the month name alone.
func Identity(month string) string { return month }

// RussianGenitive: март -> марта, январь -> января, май -> мая.
func RussianGenitive(month string) string {
	if strings.HasSuffix(month, "т") {
		return month + "а"
	}
	_, size := utf8.DecodeLastRuneInString(month)
	if size == 0 {
		return month
	}
	return month[:len(month)-size] + "я"
}

// MonthRuleFor returns the built-in rule of a locale.
func MonthRuleFor(l monday.Locale) MonthRule {
	switch l {
	case monday.LocaleRuRU:
		return RussianGenitive
	}
	return Identity
}

// Locale names weekdays and months.
type Locale struct {
	Name      monday.Locale
	MonthRule MonthRule
}

// LookupLocale accepts POSIX names like "ru_RU.UTF-8" and falls back to
// en_US for anything monday does not know.
func LookupLocale(name string) Locale {
	if i := strings.IndexAny(name, ".@"); i >= 0 {
		name = name[:i]
	}
	var loc monday.Locale = monday.LocaleEnUS
	for _, known := range monday.ListLocales() {
		if string(known) == name {
			loc = known
			break
		}
	}
	return Locale{Name: loc, MonthRule: MonthRuleFor(loc)}
}

// LocaleFromEnv resolves the time locale the way setlocale(LC_ALL, "") does.
func LocaleFromEnv(getenv func(string) string) Locale {
	for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		if v := getenv(key); v != "" {
			return LookupLocale(v)
		}
	}
	return LookupLocale("")
}

// Clock formats "<weekday>, <day> <month>, <HH:MM>".
type Clock struct {
	Locale Locale
}

func (c Clock) Format(t time.Time) string {
	rule := c.Locale.MonthRule
	if rule == nil {
		rule = Identity
	}
	weekday := monday.Format(t, "Monday", c.Locale.Name)
	month := rule(strings.ToLower(monday.Format(t, "January", c.Locale.Name)))
	return weekday + ", " + t.Format("_2") + " " + month + ", " + t.Format("15:04")
}
