// Package window hosts an editor session in a desktop window.
package window

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/shotmark/internal/editor"
	"github.com/example/shotmark/internal/theme"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

const (
	defaultWidth  = 1280
	defaultHeight = 800
)

// Options configures the window.
type Options struct {
	Title  string
	Theme  *theme.Theme
	Width  int
	Height int
	OnSave SaveFunc
	OnCopy CopyFunc
	Reload ReloadFunc
}

// Run opens a window on s and blocks until it is closed.
func Run(s *editor.Session, opts Options) error {
	var err error
	driver.Main(func(scr screen.Screen) {
		err = run(scr, s, opts)
	})
	return err
}

func (o *Options) defaults(s *editor.Session) {
	if o.Theme == nil {
		o.Theme = theme.Default()
	}
	if o.Width <= 0 || o.Height <= 0 {
		o.Width, o.Height = defaultWidth, defaultHeight
		if w, h, ok := s.Size(); ok {
			o.Width = min(w+toolbarWidth, defaultWidth)
			o.Height = min(h+statusHeight+bottomHeight, defaultHeight)
		}
	}
}

func run(scr screen.Screen, s *editor.Session, opts Options) error {
	opts.defaults(s)
	w, err := scr.NewWindow(&screen.NewWindowOptions{Width: opts.Width, Height: opts.Height, Title: opts.Title})
	if err != nil {
		return fmt.Errorf("new window: %w", err)
	}
	defer w.Release()

	c := newController(s, opts)
	var (
		closed   bool
		closedMu sync.Mutex
	)
	s.OnChange(func() {
		closedMu.Lock()
		defer closedMu.Unlock()
		if !closed {
			w.Send(paint.Event{})
		}
	})
	defer func() {
		closedMu.Lock()
		closed = true
		closedMu.Unlock()
	}()

	var (
		paintMu     sync.Mutex
		paintCancel context.CancelFunc
		dropCount   int
	)
	paintCh := make(chan frameState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, scr, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return nil
			}
		case size.Event:
			c.resize(e.WidthPx, e.HeightPx)
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := c.snapshot(opts.Theme)
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			if c.handleMouse(e) {
				w.Send(paint.Event{})
			}
		case key.Event:
			redraw, quit := c.handleKey(e)
			if quit {
				stopPaint()
				return nil
			}
			if redraw {
				w.Send(paint.Event{})
			}
		case error:
			c.log.WithError(e).Warn("window event error")
		}
	}
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st frameState) {
	if st.width <= 0 || st.height <= 0 {
		return
	}
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		logrus.WithError(err).Warn("new buffer")
		return
	}
	defer b.Release()
	renderFrame(ctx, b.RGBA(), st)
	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
