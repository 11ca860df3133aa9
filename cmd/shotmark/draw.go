package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/example/shotmark/internal/clipboard"
	"github.com/example/shotmark/internal/editor"
	"github.com/example/shotmark/internal/source"
	"github.com/example/shotmark/internal/store"
	"github.com/example/shotmark/internal/tools"
)

// drawScript is a headless editing session: an input image, a list of
// steps replayed through the editor as pointer gestures, and an output.
type drawScript struct {
	Input  string     `yaml:"input"`
	Output string     `yaml:"output"`
	Tool   string     `yaml:"tool"`
	Color  string     `yaml:"color"`
	Width  int        `yaml:"width"`
	Steps  []drawStep `yaml:"steps"`
}

// drawStep is one gesture or history action. Tool, Color and Width stay in
// effect for later steps, as a toolbar selection would.
type drawStep struct {
	Tool   string  `yaml:"tool,omitempty"`
	Color  string  `yaml:"color,omitempty"`
	Width  int     `yaml:"width,omitempty"`
	Points [][]int `yaml:"points,omitempty"`
	Text   string  `yaml:"text,omitempty"`
	Undo   int     `yaml:"undo,omitempty"`
	Redo   int     `yaml:"redo,omitempty"`
}

// drawCmd applies a script or a single gesture to an image without a window.
type drawCmd struct {
	*root
	fs          *flag.FlagSet
	file        string
	output      string
	script      string
	id          string
	toClipboard bool
	colorSpec   string
	width       int
	plan        drawScript
}

func (d *drawCmd) FlagSet() *flag.FlagSet {
	return d.fs
}

func (d *drawCmd) Template() string {
	return "draw.txt"
}

var drawFlagNames = map[string]struct{}{
	"file":         {},
	"output":       {},
	"script":       {},
	"id":           {},
	"to-clipboard": {},
	"color":        {},
	"width":        {},
}

var drawBoolFlags = map[string]struct{}{
	"to-clipboard": {},
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	fs := flag.NewFlagSet("draw", flag.ExitOnError)
	d := &drawCmd{root: r, fs: fs}
	fs.Usage = usageFunc(d)
	fs.StringVar(&d.file, "file", "", "input image reference (path, URL, data:, screen: or clipboard:)")
	fs.StringVar(&d.output, "output", "", "output PNG (defaults to the input file)")
	fs.StringVar(&d.script, "script", "", "YAML script of steps (- for stdin)")
	fs.StringVar(&d.id, "id", "", "gallery screenshot to draw on; the result is stored as its edit")
	fs.BoolVar(&d.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.StringVar(&d.colorSpec, "color", "", "palette colour, colour name or hex (snapped to the palette)")
	fs.IntVar(&d.width, "width", 0, "stroke width in pixels")

	flagArgs, positionals, err := splitDrawArgs(args)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}

	switch {
	case d.script != "" && len(positionals) > 0:
		return nil, &UsageError{of: d, msg: "use either -script or a positional step, not both"}
	case d.script != "":
		plan, err := readDrawScript(d.script)
		if err != nil {
			return nil, err
		}
		d.plan = plan
	case len(positionals) > 0:
		step, err := parseStep(positionals)
		if err != nil {
			return nil, err
		}
		d.plan.Steps = []drawStep{step}
	default:
		return nil, &UsageError{of: d}
	}
	if d.file != "" {
		d.plan.Input = d.file
	}
	if d.output != "" {
		d.plan.Output = d.output
	}
	if d.colorSpec != "" {
		d.plan.Color = d.colorSpec
	}
	if d.width != 0 {
		d.plan.Width = d.width
	}
	if d.plan.Input == "" && d.id == "" {
		return nil, &UsageError{of: d, msg: "an input image is required (-file or -id)"}
	}
	if d.plan.Output == "" && d.id == "" && !d.toClipboard {
		if !isLocalFile(d.plan.Input) {
			return nil, errors.New("output file is required when the input is not a local file")
		}
		d.plan.Output = d.plan.Input
	}
	return d, nil
}

func readDrawScript(path string) (drawScript, error) {
	var (
		r   io.Reader
		err error
	)
	if path == "-" {
		r = os.Stdin
	} else {
		f, ferr := os.Open(path)
		if ferr != nil {
			return drawScript{}, fmt.Errorf("open script: %w", ferr)
		}
		defer f.Close()
		r = f
	}
	var plan drawScript
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err = dec.Decode(&plan); err != nil {
		return drawScript{}, fmt.Errorf("parse script %s: %w", path, err)
	}
	return plan, nil
}

// parseStep reads the positional form: a tool name followed by x y pairs,
// with text taking the remaining words after its anchor.
func parseStep(args []string) (drawStep, error) {
	name := strings.ToLower(args[0])
	rest := args[1:]
	switch name {
	case "undo", "redo":
		n := 1
		if len(rest) == 1 {
			v, err := strconv.Atoi(rest[0])
			if err != nil || v < 1 {
				return drawStep{}, fmt.Errorf("%s takes a positive count", name)
			}
			n = v
		} else if len(rest) > 1 {
			return drawStep{}, fmt.Errorf("%s takes at most one count", name)
		}
		if name == "undo" {
			return drawStep{Undo: n}, nil
		}
		return drawStep{Redo: n}, nil
	}
	tool, err := tools.ParseTool(name)
	if err != nil {
		return drawStep{}, err
	}
	step := drawStep{Tool: tool.String()}
	if tool == tools.Text {
		if len(rest) < 3 {
			return drawStep{}, fmt.Errorf("text requires x y and content")
		}
		coords, err := expectInts(rest[:2], 2, name)
		if err != nil {
			return drawStep{}, err
		}
		step.Points = [][]int{coords}
		step.Text = strings.Join(rest[2:], " ")
		return step, nil
	}
	if len(rest) < 2 || len(rest)%2 != 0 {
		return drawStep{}, fmt.Errorf("%s requires x y pairs", name)
	}
	coords, err := expectInts(rest, len(rest), name)
	if err != nil {
		return drawStep{}, err
	}
	for i := 0; i < len(coords); i += 2 {
		step.Points = append(step.Points, []int{coords[i], coords[i+1]})
	}
	return step, nil
}

func expectInts(args []string, n int, shape string) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d integer arguments", shape, n)
	}
	vals := make([]int, n)
	for i, raw := range args {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", raw)
		}
		vals[i] = v
	}
	return vals, nil
}

func (d *drawCmd) Run() error {
	var st store.Store
	input := d.plan.Input
	if d.id != "" {
		s, closer, err := d.gallery()
		if err != nil {
			return err
		}
		defer closeStore(closer)
		st = s
		if input == "" {
			sc, err := st.Get(d.runCtx(), d.id)
			if err != nil {
				return fmt.Errorf("draw %s: %w", d.id, err)
			}
			input = sc.Source(true)
		}
	}

	set, err := d.config.EditorSettings()
	if err != nil {
		return err
	}
	session := editor.New(
		editor.WithSettings(set),
		editor.WithHistoryLimit(d.config.HistoryLimit),
		editor.WithLoader(source.New()),
	)
	if err := <-session.Load(d.runCtx(), input); err != nil {
		return err
	}
	if err := applyDefaults(session, d.plan); err != nil {
		return err
	}
	if err := play(session, d.plan.Steps); err != nil {
		return err
	}
	data, err := session.TrySave()
	if err != nil {
		return err
	}

	if st != nil {
		if _, err := store.SetEdited(d.runCtx(), st, d.id, data); err != nil {
			return err
		}
		fmt.Fprintf(d.out(), "stored edit for %s\n", d.id)
	}
	if d.plan.Output != "" {
		if err := os.WriteFile(d.plan.Output, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", d.plan.Output, err)
		}
		fmt.Fprintln(d.out(), d.plan.Output)
		d.notifySave(d.plan.Output)
	}
	if d.toClipboard {
		if err := clipboard.WritePNG(data); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		d.notifyCopy("drawing")
	}
	return nil
}

func applyDefaults(s *editor.Session, plan drawScript) error {
	return applySettings(s, drawStep{Tool: plan.Tool, Color: plan.Color, Width: plan.Width})
}

func applySettings(s *editor.Session, step drawStep) error {
	if step.Tool != "" {
		t, err := tools.ParseTool(step.Tool)
		if err != nil {
			return err
		}
		if err := s.SetTool(t); err != nil {
			return err
		}
	}
	if step.Color != "" {
		c, err := tools.ParseColor(step.Color)
		if err != nil {
			return err
		}
		if err := s.SetColor(tools.NearestPaletteColor(c)); err != nil {
			return err
		}
	}
	if step.Width != 0 {
		s.SetWidth(step.Width)
	}
	return nil
}

// play replays steps as pointer gestures over a view the size of the image,
// so script coordinates are image pixels.
func play(s *editor.Session, steps []drawStep) error {
	w, h, ok := s.Size()
	if !ok {
		return editor.ErrNotReady
	}
	view := editor.View{Width: float64(w), Height: float64(h)}
	at := func(p []int) editor.Pointer {
		return editor.Pointer{X: float64(p[0]), Y: float64(p[1]), View: view}
	}
	for i, step := range steps {
		log := logrus.WithField("step", i+1)
		if step.Undo > 0 || step.Redo > 0 {
			for n := 0; n < step.Undo; n++ {
				if !s.Undo() {
					log.Debug("nothing to undo")
				}
			}
			for n := 0; n < step.Redo; n++ {
				if !s.Redo() {
					log.Debug("nothing to redo")
				}
			}
			continue
		}
		if err := applySettings(s, step); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		for _, p := range step.Points {
			if len(p) != 2 {
				return fmt.Errorf("step %d: points must be [x, y] pairs", i+1)
			}
		}
		if len(step.Points) == 0 {
			return fmt.Errorf("step %d: no points", i+1)
		}
		if err := gesture(s, step, at); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		log.WithField("history", s.HistoryLen()).Debug("step applied")
	}
	return nil
}

func gesture(s *editor.Session, step drawStep, at func([]int) editor.Pointer) error {
	first, last := step.Points[0], step.Points[len(step.Points)-1]
	if err := s.PointerDown(at(first)); err != nil {
		return err
	}
	if s.Settings().Tool == tools.Text {
		_, err := s.ConfirmText(step.Text)
		return err
	}
	for _, p := range step.Points[1:] {
		if err := s.PointerMove(at(p)); err != nil {
			return err
		}
	}
	return s.PointerUp(at(last))
}

func splitDrawArgs(args []string) ([]string, []string, error) {
	var flags []string
	var positionals []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" || isNumber(arg) {
			positionals = append(positionals, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		parts := strings.SplitN(name, "=", 2)
		base := strings.ToLower(parts[0])
		if _, ok := drawFlagNames[base]; !ok {
			positionals = append(positionals, arg)
			continue
		}
		norm := "-" + base
		if len(parts) == 2 {
			flags = append(flags, norm+"="+parts[1])
			continue
		}
		if _, ok := drawBoolFlags[base]; ok {
			flags = append(flags, norm)
			continue
		}
		if i+1 >= len(args) {
			return nil, nil, fmt.Errorf("flag %s requires a value", arg)
		}
		flags = append(flags, norm, args[i+1])
		i++
	}
	return flags, positionals, nil
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func isLocalFile(ref string) bool {
	for _, prefix := range []string{"http://", "https://", "data:", "screen:", "clipboard:"} {
		if strings.HasPrefix(ref, prefix) {
			return false
		}
	}
	return ref != ""
}
