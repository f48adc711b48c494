package format

import (
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/statusline/internal/markup"
	"github.com/Dicklesworthstone/statusline/internal/model"
)

// Workspaces renders the i3 workspace list as clickable names.
type Workspaces struct {
	Dialect   markup.Dialect
	FocusedBG string
	UrgentFG  string
	// SwitchCommand takes the workspace number as its only verb.
	SwitchCommand string
}

// Format keeps the order i3 reported. The click target is the workspace
// number, not its position in the list.
func (w Workspaces) Format(list []model.Workspace) string {
	if len(list) == 0 {
		return ""
	}
	parts := make([]string, 0, len(list))
	for _, ws := range list {
		decs := []markup.Decoration{markup.OnClick(fmt.Sprintf(w.SwitchCommand, ws.Num))}
		if ws.Focused {
			decs = append(decs, markup.Bg(w.FocusedBG))
		}
		if ws.Urgent {
			decs = append(decs, markup.Fg(w.UrgentFG))
		}
		parts = append(parts, markup.Decorate(w.Dialect, ws.Name, decs...))
	}
	return strings.Join(parts, " ")
}
