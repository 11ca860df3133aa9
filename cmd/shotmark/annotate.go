package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/example/shotmark/internal/clipboard"
	"github.com/example/shotmark/internal/editor"
	"github.com/example/shotmark/internal/source"
	"github.com/example/shotmark/internal/store"
	"github.com/example/shotmark/internal/window"
)

// annotateCmd opens the editor window on a gallery entry or any image
// reference the source package understands.
type annotateCmd struct {
	*root
	fs       *flag.FlagSet
	id       string
	file     string
	url      string
	screen   string
	paste    bool
	output   string
	original bool
}

func (a *annotateCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func (a *annotateCmd) Template() string {
	return "annotate.txt"
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)
	a := &annotateCmd{root: r, fs: fs}
	fs.Usage = usageFunc(a)
	fs.StringVar(&a.id, "id", "", "gallery screenshot to annotate; saving stores the edit back")
	fs.StringVar(&a.file, "file", "", "image file to annotate")
	fs.StringVar(&a.url, "url", "", "image URL (http, https or data:) to annotate")
	fs.StringVar(&a.screen, "screen", "", "capture a monitor first (name, index or \"all\")")
	fs.BoolVar(&a.paste, "from-clipboard", false, "annotate the image on the clipboard")
	fs.StringVar(&a.output, "output", "", "file written on save (defaults to annotated.png, or the gallery for -id)")
	fs.BoolVar(&a.original, "original", false, "with -id, start from the captured image instead of the last edit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() == 1 && a.file == "" {
		a.file = fs.Arg(0)
	} else if fs.NArg() > 0 {
		return nil, &UsageError{of: a}
	}
	n := 0
	for _, set := range []bool{a.id != "", a.file != "", a.url != "", a.screen != "", a.paste} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, &UsageError{of: a, msg: "choose exactly one of -id, -file, -url, -screen or -from-clipboard"}
	}
	return a, nil
}

func (a *annotateCmd) Run() error {
	var st store.Store
	if a.id != "" {
		s, closer, err := a.gallery()
		if err != nil {
			return err
		}
		defer closeStore(closer)
		st = s
	}
	ref, label, err := a.reference(st)
	if err != nil {
		return err
	}

	session, err := a.newSession()
	if err != nil {
		return err
	}
	load := func() {
		done := session.Load(a.runCtx(), ref)
		go func() {
			if err := <-done; err != nil && !errors.Is(err, editor.ErrSuperseded) {
				fmt.Fprintf(os.Stderr, "annotate: %v\n", err)
			}
		}()
	}
	load()
	return window.Run(session, window.Options{
		Title:  "shotmark - " + label,
		Theme:  a.uiTheme(),
		OnSave: a.saver(st),
		OnCopy: a.copier(),
		Reload: load,
	})
}

// reference picks the image to load and a label for the window title.
func (a *annotateCmd) reference(st store.Store) (ref, label string, err error) {
	switch {
	case a.id != "":
		s, err := st.Get(a.runCtx(), a.id)
		if err != nil {
			return "", "", fmt.Errorf("annotate %s: %w", a.id, err)
		}
		return s.Source(!a.original), s.Domain, nil
	case a.file != "":
		return a.file, a.file, nil
	case a.url != "":
		return a.url, a.url, nil
	case a.paste:
		return "clipboard:", "clipboard", nil
	}
	return "screen:" + a.screen, "screen " + a.screen, nil
}

func (a *annotateCmd) newSession() (*editor.Session, error) {
	set, err := a.config.EditorSettings()
	if err != nil {
		return nil, err
	}
	return editor.New(
		editor.WithSettings(set),
		editor.WithHistoryLimit(a.config.HistoryLimit),
		editor.WithLoader(source.New()),
	), nil
}

// saver stores the edit in the gallery when annotating an entry and writes a
// file otherwise, or when -output asks for one as well.
func (a *annotateCmd) saver(st store.Store) window.SaveFunc {
	return func(png []byte) (string, error) {
		where := ""
		if st != nil && a.id != "" {
			if _, err := store.SetEdited(a.runCtx(), st, a.id, png); err != nil {
				return "", err
			}
			where = "to gallery " + a.id
			if a.output == "" {
				return where, nil
			}
		}
		path := a.output
		if path == "" {
			path = outputPath(a.config.SaveDir, "annotated.png")
		}
		if err := os.WriteFile(path, png, 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		logrus.WithField("path", path).Info("annotation saved")
		a.notifySave(path)
		if where != "" {
			return where + " and " + path, nil
		}
		return path, nil
	}
}

func (a *annotateCmd) copier() window.CopyFunc {
	return func(img *image.RGBA) error {
		if err := clipboard.WriteImage(img); err != nil {
			return err
		}
		a.notifyCopy("annotation")
		return nil
	}
}
