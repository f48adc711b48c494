package bar

import (
	"strings"

	"github.com/Dicklesworthstone/statusline/internal/markup"
)

// Compose lays out one bar line: left as is, center after the dialect's
// centre marker, right after its right marker joined by sep.
//
// Empty fragments are kept, so a line always has len(right)-1 separators no
// matter which metrics were available.
func Compose(d markup.Dialect, left, center string, right []string, sep string) string {
	var b strings.Builder
	b.WriteString(left)
	b.WriteString(d.Align(markup.Center))
	b.WriteString(center)
	b.WriteString(d.Align(markup.Right))
	b.WriteString(strings.Join(right, sep))
	return b.String()
}
