package main

import (
	"flag"
	"fmt"

	"github.com/example/shotmark/internal/tools"
)

type colorsCmd struct {
	*root
	fs *flag.FlagSet
}

func parseColorsCmd(args []string, r *root) (*colorsCmd, error) {
	fs := flag.NewFlagSet("colors", flag.ExitOnError)
	cmd := &colorsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *colorsCmd) Run() error {
	current := tools.DefaultColor
	if set, err := c.config.EditorSettings(); err == nil {
		current = set.Color
	}
	fmt.Fprintln(c.out(), "palette colors (* marks the starting color, keys 1-8 select in the editor):")
	for idx, entry := range tools.PaletteColors() {
		marker := " "
		if entry.Color == current {
			marker = "*"
		}
		block := fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m", entry.Color.R, entry.Color.G, entry.Color.B)
		fmt.Fprintf(c.out(), "%s %d: %-8s %s %s\n", marker, idx+1, entry.Name, tools.Hex(entry.Color), block)
	}
	return nil
}

func (c *colorsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *colorsCmd) Template() string {
	return "colors.txt"
}

type toolsCmd struct {
	*root
	fs *flag.FlagSet
}

func parseToolsCmd(args []string, r *root) (*toolsCmd, error) {
	fs := flag.NewFlagSet("tools", flag.ExitOnError)
	cmd := &toolsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *toolsCmd) Run() error {
	current := tools.DefaultSettings()
	if set, err := c.config.EditorSettings(); err == nil {
		current = set
	}
	fmt.Fprintln(c.out(), "tools (* marks the starting tool):")
	for _, t := range tools.All() {
		marker := " "
		if t == current.Tool {
			marker = "*"
		}
		fmt.Fprintf(c.out(), "%s %c  %s\n", marker, t.Shortcut(), t)
	}
	fmt.Fprintf(c.out(), "widths: %d-%dpx, starting at %dpx\n", tools.MinWidth, tools.MaxWidth, current.Width)
	return nil
}

func (c *toolsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *toolsCmd) Template() string {
	return "tools.txt"
}
