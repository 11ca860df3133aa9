// Package capture grabs the local desktop for use as an editor source. It
// asks the desktop portal first and reads the X11 root window when no portal
// answers.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/sirupsen/logrus"
)

// ErrUnsupported is returned on platforms without a capture backend.
var ErrUnsupported = errors.New("capture: desktop capture not supported on this platform")

type backend interface {
	Portal(ctx context.Context) (*image.RGBA, error)
	Root() (*image.RGBA, error)
	Monitors() ([]MonitorInfo, error)
}

var current backend = newBackend()

// Desktop captures the whole desktop, or one monitor when selector names it
// (an index, "primary" or part of the output name).
func Desktop(ctx context.Context, selector string) (*image.RGBA, error) {
	img, err := current.Portal(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logrus.WithError(err).Debug("portal capture unavailable, reading root window")
		var rootErr error
		img, rootErr = current.Root()
		if rootErr != nil {
			return nil, fmt.Errorf("capture desktop: %v; root window: %w", err, rootErr)
		}
	}
	if selector == "" {
		return img, nil
	}
	monitors, err := current.Monitors()
	if err != nil {
		return nil, fmt.Errorf("capture monitor %q: %w", selector, err)
	}
	mon, err := FindMonitor(monitors, selector)
	if err != nil {
		return nil, err
	}
	return cropToRect(img, mon.Rect)
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}
