package theme

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// Parse reads a theme file. Keys left out keep the default theme's value.
func Parse(r io.Reader) (*Theme, error) {
	t := Default()
	t.Name = ""
	if _, err := toml.NewDecoder(r).Decode(t); err != nil {
		return nil, fmt.Errorf("parse theme: %w", err)
	}
	return t, nil
}

// Write encodes t in the format Parse reads.
func Write(w io.Writer, t *Theme) error {
	return toml.NewEncoder(w).Encode(t)
}
