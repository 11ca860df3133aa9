package window

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/shotmark/internal/editor"
	"github.com/example/shotmark/internal/tools"
)

const messageDuration = 2 * time.Second

// SaveFunc persists an exported PNG and describes where it went.
type SaveFunc func(png []byte) (string, error)

// CopyFunc places an exported image on the clipboard.
type CopyFunc func(img *image.RGBA) error

// ReloadFunc fetches the image again. Failures show up through the
// session's load error.
type ReloadFunc func()

// controller turns window events into editor session calls. It holds only
// view state; every pixel lives in the session.
type controller struct {
	session *editor.Session
	title   string
	onSave  SaveFunc
	onCopy  CopyFunc
	reload  ReloadFunc
	now     func() time.Time
	log     *logrus.Entry

	layout   layout
	zoom     float64 // 0 fits the window
	dragging bool
	hover    hit

	message      string
	messageUntil time.Time
}

func newController(s *editor.Session, opts Options) *controller {
	c := &controller{
		session: s,
		title:   opts.Title,
		onSave:  opts.OnSave,
		onCopy:  opts.OnCopy,
		reload:  opts.Reload,
		now:     time.Now,
		log:     logrus.WithField("component", "window"),
	}
	c.resize(opts.Width, opts.Height)
	return c
}

func (c *controller) resize(w, h int) {
	c.layout = newLayout(w, h, c.session.State() == editor.TextPending)
}

func (c *controller) relayout() {
	c.resize(c.layout.width, c.layout.height)
}

func (c *controller) effectiveZoom() float64 {
	if c.zoom > 0 {
		return c.zoom
	}
	w, h, ok := c.session.Size()
	if !ok {
		return 1
	}
	return c.layout.fitZoom(w, h)
}

// view is the display rectangle of the surface in window coordinates.
func (c *controller) view() (editor.View, image.Rectangle) {
	w, h, ok := c.session.Size()
	if !ok {
		return editor.View{}, image.Rectangle{}
	}
	r := c.layout.imageRect(w, h, c.effectiveZoom())
	return editor.ViewOf(r), r
}

func (c *controller) pointer(e mouse.Event) editor.Pointer {
	v, _ := c.view()
	return editor.Pointer{X: float64(e.X), Y: float64(e.Y), View: v}
}

func (c *controller) toast(format string, args ...any) {
	c.message = fmt.Sprintf(format, args...)
	c.messageUntil = c.now().Add(messageDuration)
	c.log.Info(c.message)
}

func (c *controller) toastVisible() bool {
	return c.message != "" && c.now().Before(c.messageUntil)
}

// handleMouse reports whether the window needs repainting.
func (c *controller) handleMouse(e mouse.Event) bool {
	if c.toastVisible() && e.Direction == mouse.DirPress {
		c.messageUntil = time.Time{}
		return true
	}
	p := image.Pt(int(e.X), int(e.Y))
	v, _ := c.view()
	inside := v.Contains(float64(e.X), float64(e.Y))

	switch e.Direction {
	case mouse.DirNone:
		if c.dragging {
			if !inside {
				c.dragging = false
				c.report(c.session.PointerLeave())
				return true
			}
			c.report(c.session.PointerMove(c.pointer(e)))
			return false
		}
		h := c.layout.hitTest(p)
		changed := h != c.hover
		c.hover = h
		return changed
	case mouse.DirRelease:
		if c.dragging && e.Button == mouse.ButtonLeft {
			c.dragging = false
			c.report(c.session.PointerUp(c.pointer(e)))
			return true
		}
		return false
	case mouse.DirPress:
		if e.Button != mouse.ButtonLeft {
			return false
		}
	default:
		return false
	}

	h := c.layout.hitTest(p)
	if h.kind != hitCanvas {
		// Using any control takes focus away from a pending entry.
		c.blurText()
	}
	switch h.kind {
	case hitTool:
		c.report(c.session.SetTool(tools.All()[h.index]))
	case hitSwatch:
		c.report(c.session.SetColor(tools.ColorAt(h.index)))
	case hitWidthDown:
		c.trigger(actionWidthDown)
	case hitWidthUp:
		c.trigger(actionWidthUp)
	case hitShortcut:
		c.trigger(c.layout.shortcuts[h.index].action)
	case hitCanvas:
		if !inside {
			c.blurText()
			break
		}
		err := c.session.PointerDown(c.pointer(e))
		c.report(err)
		c.dragging = err == nil && c.session.State() == editor.Dragging
	}
	c.relayout()
	return true
}

// handleKey reports whether to repaint and whether to quit.
func (c *controller) handleKey(e key.Event) (redraw, quit bool) {
	if e.Direction != key.DirPress && e.Direction != key.DirNone {
		return false, false
	}
	if a, ok := controlAction(e); ok {
		return true, c.trigger(a)
	}
	if c.session.State() == editor.TextPending {
		switch e.Code {
		case key.CodeReturnEnter, key.CodeKeypadEnter:
			c.trigger(actionTextDone)
		case key.CodeEscape:
			c.trigger(actionTextCancel)
		case key.CodeDeleteBackspace:
			c.report(c.session.Backspace())
		default:
			if e.Rune > 0 && e.Modifiers&key.ModControl == 0 {
				c.report(c.session.TypeText(string(e.Rune)))
			}
		}
		return true, false
	}
	if a, ok := plainAction(e); ok {
		return true, c.trigger(a)
	}
	if e.Rune >= '1' && e.Rune <= '8' {
		c.report(c.session.SetColor(tools.ColorAt(int(e.Rune - '1'))))
		return true, false
	}
	if t, ok := tools.ToolForShortcut(e.Rune); ok {
		c.report(c.session.SetTool(t))
		return true, false
	}
	return false, false
}

// trigger runs a named action and reports whether the window should close.
func (c *controller) trigger(action string) bool {
	defer c.relayout()
	switch action {
	case actionUndo:
		if !c.session.Undo() {
			c.log.Debug("nothing to undo")
		}
	case actionRedo:
		if !c.session.Redo() {
			c.log.Debug("nothing to redo")
		}
	case actionSave:
		c.blurText()
		c.save()
	case actionCopy:
		c.blurText()
		c.copyImage()
	case actionReload:
		if c.reload == nil {
			c.toast("reload is not available")
			break
		}
		c.dragging = false
		c.reload()
		c.toast("reloading image")
	case actionQuit:
		return true
	case actionZoomIn:
		c.zoom = min(c.effectiveZoom()*1.25, maxZoom)
	case actionZoomOut:
		c.zoom = max(c.effectiveZoom()/1.25, minZoom)
	case actionZoomFit:
		c.zoom = 0
	case actionWidthDown:
		c.session.SetWidth(c.session.Settings().Width - 1)
	case actionWidthUp:
		c.session.SetWidth(c.session.Settings().Width + 1)
	case actionTextDone:
		_, err := c.session.CommitText()
		c.report(err)
	case actionTextCancel:
		c.session.CancelText()
	}
	return false
}

func (c *controller) blurText() {
	if c.session.State() == editor.TextPending {
		_, err := c.session.CommitText()
		c.report(err)
	}
}

func (c *controller) save() {
	data, err := c.session.TrySave()
	if err != nil {
		c.report(err)
		return
	}
	if c.onSave == nil {
		c.toast("saving is not configured")
		return
	}
	where, err := c.onSave(data)
	if err != nil {
		c.log.WithError(err).Error("save failed")
		c.toast("save failed: %v", err)
		return
	}
	c.toast("saved %s", where)
}

func (c *controller) copyImage() {
	img, err := c.session.Export()
	if err != nil {
		c.report(err)
		return
	}
	if c.onCopy == nil {
		c.toast("clipboard is not available")
		return
	}
	if err := c.onCopy(img); err != nil {
		c.log.WithError(err).Error("copy failed")
		c.toast("copy failed: %v", err)
		return
	}
	c.toast("image copied to clipboard")
}

func (c *controller) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, editor.ErrNotReady):
		c.toast("image is not loaded yet")
	default:
		c.log.WithError(err).Warn("editor rejected input")
		c.toast("%v", err)
	}
}
