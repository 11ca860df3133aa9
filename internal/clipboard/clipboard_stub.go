//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

// WritePNG is unavailable on this platform.
func WritePNG([]byte) error { return ErrUnsupported }

// ReadPNG is unavailable on this platform.
func ReadPNG() ([]byte, error) { return nil, ErrUnsupported }
