// Package markup renders decorated text for a status bar renderer.
//
// A Dialect knows how to spell one decoration for one renderer. Decorate
// orders decorations before wrapping so that click regions always end up
// outermost and the whole coloured glyph stays clickable.
package markup

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies a decoration.
type Kind int

const (
	Foreground Kind = iota
	Background
	Click
)

func (k Kind) String() string {
	switch k {
	case Foreground:
		return "fg"
	case Background:
		return "bg"
	case Click:
		return "click"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Alignment is a position marker in the composed line.
type Alignment int

const (
	Left Alignment = iota
	Center
	Right
)

// Decoration is one wrapper: a colour for Foreground/Background, a command
// for Click.
type Decoration struct {
	Kind    Kind
	Payload string
}

func Fg(color string) Decoration { return Decoration{Kind: Foreground, Payload: color} }
func Bg(color string) Decoration { return Decoration{Kind: Background, Payload: color} }
func OnClick(cmd string) Decoration { return Decoration{Kind: Click, Payload: cmd} }

// Dialect is the markup language of one bar renderer.
type Dialect interface {
	Name() string
	Wrap(kind Kind, payload, inner string) string
	Align(a Alignment) string
}

// Decorate wraps text in every decoration with an empty payload skipped.
// Colours are applied innermost (foreground inside background) and click
// regions outermost, whatever order they were given in.
func Decorate(d Dialect, text string, decs ...Decoration) string {
	ordered := make([]Decoration, 0, len(decs))
	for _, dec := range decs {
		if dec.Payload != "" {
			ordered = append(ordered, dec)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Kind < ordered[j].Kind })
	for _, dec := range ordered {
		text = d.Wrap(dec.Kind, dec.Payload, text)
	}
	return text
}

// ByName returns the dialect registered under name.
func ByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "dzen", "dzen2":
		return Dzen2{}, nil
	case "lemonbar", "lemon", "bar":
		return Lemonbar{}, nil
	case "term", "terminal", "ansi":
		return NewTerm(), nil
	case "plain", "none":
		return Plain{}, nil
	}
	return nil, fmt.Errorf("unknown markup dialect %q", name)
}

// Dzen2 speaks dzen2's in-text commands.
type Dzen2 struct{}

func (Dzen2) Name() string { return "dzen2" }

func (Dzen2) Wrap(kind Kind, payload, inner string) string {
	switch kind {
	case Click:
		return "^ca(1," + payload + ")" + inner + "^ca()"
	case Background:
		return "^bg(" + payload + ")" + inner + "^bg()"
	case Foreground:
		return "^fg(" + payload + ")" + inner + "^fg()"
	}
	return inner
}

func (Dzen2) Align(a Alignment) string {
	switch a {
	case Center:
		return "^p(_CENTER)"
	case Right:
		return "^p(_RIGHT)"
	}
	return "^p(_LEFT)"
}

// Lemonbar speaks lemonbar's %{} format blocks.
type Lemonbar struct{}

func (Lemonbar) Name() string { return "lemonbar" }

func (Lemonbar) Wrap(kind Kind, payload, inner string) string {
	switch kind {
	case Click:
		return "%{A:" + strings.ReplaceAll(payload, ":", `\:`) + ":}" + inner + "%{A}"
	case Background:
		return "%{B" + payload + "}" + inner + "%{B-}"
	case Foreground:
		return "%{F" + payload + "}" + inner + "%{F-}"
	}
	return inner
}

func (Lemonbar) Align(a Alignment) string {
	switch a {
	case Center:
		return "%{c}"
	case Right:
		return "%{r}"
	}
	return "%{l}"
}

// Plain drops every decoration and separates alignments with a space.
type Plain struct{}

func (Plain) Name() string { return "plain" }
func (Plain) Wrap(_ Kind, _, inner string) string { return inner }

func (Plain) Align(a Alignment) string {
	if a == Left {
		return ""
	}
	return " "
}
