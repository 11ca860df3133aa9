package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/example/shotmark/internal/clipboard"
	"github.com/example/shotmark/internal/render"
	"github.com/example/shotmark/internal/shot"
	"github.com/example/shotmark/internal/source"
)

// captureCmd records page screenshots into the gallery.
type captureCmd struct {
	*root
	fs   *flag.FlagSet
	list string
	urls []string
}

func parseCaptureCmd(args []string, r *root) (*captureCmd, error) {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	c := &captureCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.list, "urls", "", "file with one URL per line (- for stdin)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	c.urls = fs.Args()
	if len(c.urls) == 0 && c.list == "" {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *captureCmd) Run() error {
	urls := append([]string(nil), c.urls...)
	if c.list != "" {
		var (
			data []byte
			err  error
		)
		if c.list == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(c.list)
		}
		if err != nil {
			return fmt.Errorf("read url list: %w", err)
		}
		more, err := shot.ParseURLList(string(data))
		if err != nil {
			return err
		}
		urls = append(urls, more...)
	}

	st, closer, err := c.gallery()
	if err != nil {
		return err
	}
	defer closeStore(closer)

	capturer := c.shotCapturer()
	var errs []error
	for _, u := range urls {
		s, err := capturer.Capture(c.runCtx(), u)
		if err != nil {
			errs = append(errs, fmt.Errorf("capture %s: %w", u, err))
			continue
		}
		if err := st.Save(c.runCtx(), s); err != nil {
			errs = append(errs, fmt.Errorf("store %s: %w", s.ID, err))
			continue
		}
		fmt.Fprintf(c.out(), "%s\t%s\t%d\n", s.ID, s.URL, s.StatusCode)
		c.notifyCapture(s.Domain, nil)
	}
	return errors.Join(errs...)
}

func (c *captureCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *captureCmd) Template() string { return "capture.txt" }

// listCmd prints the gallery, newest first.
type listCmd struct {
	*root
	fs *flag.FlagSet
}

func parseListCmd(args []string, r *root) (*listCmd, error) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	c := &listCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *listCmd) Run() error {
	st, closer, err := c.gallery()
	if err != nil {
		return err
	}
	defer closeStore(closer)
	list, err := st.List(c.runCtx())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(c.out(), "no screenshots")
		return nil
	}
	tw := tabwriter.NewWriter(c.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCAPTURED\tSTATUS\tEDITED\tURL")
	for _, s := range list {
		edited := ""
		if s.HasEdit() {
			edited = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", s.ID, s.CapturedAt.Format("2006-01-02 15:04"), s.StatusCode, edited, s.URL)
	}
	return tw.Flush()
}

func (c *listCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *listCmd) Template() string { return "list.txt" }

// showCmd prints one screenshot record.
type showCmd struct {
	*root
	fs     *flag.FlagSet
	format string
	id     string
}

func parseShowCmd(args []string, r *root) (*showCmd, error) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	c := &showCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.format, "format", "yaml", "output format: yaml or json")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	c.id = fs.Arg(0)
	switch c.format {
	case "yaml", "json":
	default:
		return nil, &UsageError{of: c, msg: fmt.Sprintf("unknown format %q", c.format)}
	}
	return c, nil
}

func (c *showCmd) Run() error {
	st, closer, err := c.gallery()
	if err != nil {
		return err
	}
	defer closeStore(closer)
	s, err := st.Get(c.runCtx(), c.id)
	if err != nil {
		return err
	}
	record := struct {
		shot.Screenshot `yaml:",inline"`
		HasEdit         bool   `json:"hasEdit" yaml:"has_edit"`
		ExportName      string `json:"exportName" yaml:"export_name"`
	}{s.Summary(), s.HasEdit(), s.ExportName()}
	if c.format == "json" {
		enc := json.NewEncoder(c.out())
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}
	enc := yaml.NewEncoder(c.out())
	defer enc.Close()
	return enc.Encode(record)
}

func (c *showCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *showCmd) Template() string { return "show.txt" }

// deleteCmd removes screenshots from the gallery.
type deleteCmd struct {
	*root
	fs  *flag.FlagSet
	ids []string
}

func parseDeleteCmd(args []string, r *root) (*deleteCmd, error) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	c := &deleteCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() == 0 {
		return nil, &UsageError{of: c}
	}
	c.ids = fs.Args()
	return c, nil
}

func (c *deleteCmd) Run() error {
	st, closer, err := c.gallery()
	if err != nil {
		return err
	}
	defer closeStore(closer)
	var errs []error
	for _, id := range c.ids {
		if err := st.Delete(c.runCtx(), id); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", id, err))
			continue
		}
		fmt.Fprintf(c.out(), "deleted %s\n", id)
	}
	return errors.Join(errs...)
}

func (c *deleteCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *deleteCmd) Template() string { return "delete.txt" }

// exportCmd writes a screenshot's image, edited when available, to a file
// or the clipboard.
type exportCmd struct {
	*root
	fs       *flag.FlagSet
	output   string
	copy     bool
	original bool
	shadow   bool
	id       string
	fetcher  *source.Fetcher
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	c := &exportCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.output, "o", "", "output file (defaults to the export name in save_dir)")
	fs.BoolVar(&c.copy, "copy", false, "copy the image to the clipboard instead of writing a file")
	fs.BoolVar(&c.original, "original", false, "export the captured image even when an edit exists")
	fs.BoolVar(&c.shadow, "shadow", false, "add a drop shadow around the image")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	c.id = fs.Arg(0)
	return c, nil
}

func (c *exportCmd) Run() error {
	st, closer, err := c.gallery()
	if err != nil {
		return err
	}
	defer closeStore(closer)
	s, err := st.Get(c.runCtx(), c.id)
	if err != nil {
		return err
	}
	data, err := c.imageBytes(s)
	if err != nil {
		return err
	}
	if c.shadow {
		if data, err = render.ShadowPNG(data, render.DefaultShadowOptions()); err != nil {
			return err
		}
	}
	if c.copy {
		if err := clipboard.WritePNG(data); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintln(c.out(), "copied to clipboard")
		c.notifyCopy(s.Domain)
		return nil
	}
	path := c.output
	if path == "" {
		path = outputPath(c.config.SaveDir, s.ExportName())
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintln(c.out(), path)
	c.notifySave(path)
	return nil
}

func (c *exportCmd) imageBytes(s *shot.Screenshot) ([]byte, error) {
	if s.HasEdit() && !c.original {
		return s.Edited, nil
	}
	f := c.fetcher
	if f == nil {
		f = source.New()
	}
	img, err := f.Fetch(c.runCtx(), s.Source(false))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *exportCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *exportCmd) Template() string { return "export.txt" }

func outputPath(dir, name string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return name
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logrus.WithError(err).WithField("dir", dir).Warn("save_dir unusable, writing to the working directory")
		return name
	}
	return filepath.Join(dir, name)
}
