//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import (
	"context"
	"image"
)

type unsupportedBackend struct{}

func newBackend() backend { return unsupportedBackend{} }

func (unsupportedBackend) Portal(context.Context) (*image.RGBA, error) { return nil, ErrUnsupported }
func (unsupportedBackend) Root() (*image.RGBA, error)                  { return nil, ErrUnsupported }
func (unsupportedBackend) Monitors() ([]MonitorInfo, error)            { return nil, ErrUnsupported }
