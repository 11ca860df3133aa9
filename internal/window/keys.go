package window

import (
	"unicode"

	"golang.org/x/mobile/event/key"
)

const (
	actionUndo       = "undo"
	actionRedo       = "redo"
	actionSave       = "save"
	actionCopy       = "copy"
	actionReload     = "reload"
	actionQuit       = "quit"
	actionZoomIn     = "zoomin"
	actionZoomOut    = "zoomout"
	actionZoomFit    = "zoomfit"
	actionWidthDown  = "widthdown"
	actionWidthUp    = "widthup"
	actionTextDone   = "textdone"
	actionTextCancel = "textcancel"
)

// KeyShortcut identifies a key combination.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

const ctrlShift = key.ModControl | key.ModShift

// controlActions work in every mode, including while text is typed.
var controlActions = map[KeyShortcut]string{
	{Rune: 'z', Modifiers: key.ModControl}: actionUndo,
	{Rune: 'y', Modifiers: key.ModControl}: actionRedo,
	{Rune: 'z', Modifiers: ctrlShift}:      actionRedo,
	{Rune: 's', Modifiers: key.ModControl}: actionSave,
	{Rune: 'c', Modifiers: key.ModControl}: actionCopy,
	{Rune: 'r', Modifiers: key.ModControl}: actionReload,
}

// plainActions apply only outside text entry.
var plainActions = map[rune]string{
	'q': actionQuit,
	'+': actionZoomIn,
	'=': actionZoomIn,
	'-': actionZoomOut,
	'0': actionZoomFit,
	'[': actionWidthDown,
	']': actionWidthUp,
}

func controlAction(e key.Event) (string, bool) {
	mods := e.Modifiers & (key.ModControl | key.ModShift)
	if mods&key.ModControl == 0 {
		return "", false
	}
	r := unicode.ToLower(e.Rune)
	if r <= 0 {
		r = codeRune(e.Code)
	}
	a, ok := controlActions[KeyShortcut{Rune: r, Modifiers: mods}]
	return a, ok
}

func plainAction(e key.Event) (string, bool) {
	a, ok := plainActions[unicode.ToLower(e.Rune)]
	return a, ok
}

// codeRune recovers the letter for drivers that send control combinations
// without a rune.
func codeRune(c key.Code) rune {
	if c >= key.CodeA && c <= key.CodeZ {
		return 'a' + rune(c-key.CodeA)
	}
	return -1
}
