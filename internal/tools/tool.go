// Package tools holds the drawing tools an editor session can select and the
// per-tool behaviour applied to a pointer gesture.
package tools

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTool is returned for a tool name that is not recognised.
var ErrUnknownTool = errors.New("tools: unknown tool")

// Tool identifies a drawing tool.
type Tool int

const (
	Pen Tool = iota
	Highlighter
	Rectangle
	Circle
	Text
	Eraser
)

var toolNames = [...]string{"pen", "highlighter", "rectangle", "circle", "text", "eraser"}

var toolAliases = map[string]Tool{
	"pencil":  Pen,
	"rect":    Rectangle,
	"ellipse": Circle,
}

var toolShortcuts = [...]rune{'p', 'h', 'r', 'c', 't', 'e'}

// All returns every tool in toolbar order.
func All() []Tool {
	return []Tool{Pen, Highlighter, Rectangle, Circle, Text, Eraser}
}

func (t Tool) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tool(%d)", int(t))
	}
	return toolNames[t]
}

// Valid reports whether t names a known tool.
func (t Tool) Valid() bool { return t >= Pen && t <= Eraser }

// Shortcut returns the keyboard rune selecting t.
func (t Tool) Shortcut() rune {
	if !t.Valid() {
		return 0
	}
	return toolShortcuts[t]
}

// ToolForShortcut maps a keyboard rune to its tool.
func ToolForShortcut(r rune) (Tool, bool) {
	for i, s := range toolShortcuts {
		if s == r || s-'a'+'A' == r {
			return Tool(i), true
		}
	}
	return 0, false
}

// ParseTool resolves a tool name.
func ParseTool(s string) (Tool, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range toolNames {
		if n == name {
			return Tool(i), nil
		}
	}
	if t, ok := toolAliases[name]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTool, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tool) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTool, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tool) UnmarshalText(b []byte) error {
	v, err := ParseTool(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
