package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/example/shotmark/internal/shot"
	"github.com/example/shotmark/internal/theme"
	"github.com/example/shotmark/internal/tools"
)

// Store backend names.
const (
	StoreMemory     = "memory"
	StoreFilesystem = "filesystem"
	StoreSQLite     = "sqlite"
	StoreS3         = "s3"
)

// Notify holds notification settings.
type Notify struct {
	Capture bool `toml:"capture"`
	Save    bool `toml:"save"`
	Copy    bool `toml:"copy"`

	// Title and the *Text templates override the notifier defaults. Each
	// template receives one %s.
	Title       string `toml:"title,omitempty"`
	CaptureText string `toml:"capture_text,omitempty"`
	SaveText    string `toml:"save_text,omitempty"`
	CopyText    string `toml:"copy_text,omitempty"`
}

// Editor holds the tool settings a new editing session starts with.
type Editor struct {
	Tool  string `toml:"tool"`
	Width int    `toml:"width"`
	Color string `toml:"color"`
}

// Store selects and configures the gallery backend.
type Store struct {
	Type   string `toml:"type"`
	Path   string `toml:"path,omitempty"`
	DSN    string `toml:"dsn,omitempty"`
	Bucket string `toml:"bucket,omitempty"`
}

// Capture configures the page rendering service.
type Capture struct {
	APIBase            string `toml:"api_base"`
	APIKey             string `toml:"api_key"`
	Dimension          string `toml:"dimension"`
	ThumbnailDimension string `toml:"thumbnail_dimension"`
	DelayMS            int    `toml:"delay_ms"`
}

// Config holds the application configuration.
type Config struct {
	Theme        string `toml:"theme,omitempty"`
	LogLevel     string `toml:"log_level,omitempty"`
	SaveDir      string `toml:"save_dir,omitempty"`
	HistoryLimit int    `toml:"history_limit"`

	Editor  Editor                  `toml:"editor"`
	Store   Store                   `toml:"store"`
	Capture Capture                 `toml:"capture"`
	Notify  Notify                  `toml:"notify"`
	Themes  map[string]*theme.Theme `toml:"themes,omitempty"`
}

// New creates a Config with defaults.
func New() *Config {
	def := tools.DefaultSettings()
	return &Config{
		// Theme stays empty so the environment and built-in default can apply.
		LogLevel: "info",
		Editor: Editor{
			Tool:  def.Tool.String(),
			Width: def.Width,
			Color: tools.Hex(def.Color),
		},
		Store: Store{Type: StoreMemory},
		Capture: Capture{
			APIBase:            shot.DefaultAPIBase,
			Dimension:          shot.DefaultDimension,
			ThumbnailDimension: shot.DefaultThumbnailDimension,
			DelayMS:            int(shot.DefaultDelay / time.Millisecond),
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// Parse reads a TOML configuration. Missing keys keep their defaults.
func Parse(r io.Reader) (*Config, error) {
	c := New()
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		logrus.WithField("keys", undecoded).Warn("ignoring unknown config keys")
	}
	for name, t := range c.Themes {
		if t == nil {
			continue
		}
		if t.Name == "" {
			t.Name = name
		}
		t.FillDefaults(theme.Default())
	}
	return c, nil
}

// Write encodes the configuration as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// String implements fmt.Stringer and returns the configuration as TOML.
func (c *Config) String() string {
	var sb strings.Builder
	if err := c.Write(&sb); err != nil {
		return fmt.Sprintf("# error: %v\n", err)
	}
	return sb.String()
}

// ApplyEnv overlays SHOTMARK_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Theme, "SHOTMARK_THEME")
	set(&c.LogLevel, "SHOTMARK_LOG_LEVEL")
	set(&c.SaveDir, "SHOTMARK_SAVE_DIR")
	set(&c.Store.Type, "SHOTMARK_STORE")
	set(&c.Store.Path, "SHOTMARK_STORE_PATH")
	set(&c.Store.DSN, "SHOTMARK_STORE_DSN")
	set(&c.Store.Bucket, "SHOTMARK_S3_BUCKET")
	set(&c.Capture.APIBase, "SHOTMARK_API_BASE")
	set(&c.Capture.APIKey, "SHOTMARK_API_KEY")
	set(&c.Notify.Title, "SHOTMARK_NOTIFY_TITLE")
	set(&c.Notify.CaptureText, "SHOTMARK_NOTIFY_CAPTURE_TEXT")
	set(&c.Notify.SaveText, "SHOTMARK_NOTIFY_SAVE_TEXT")
	set(&c.Notify.CopyText, "SHOTMARK_NOTIFY_COPY_TEXT")
}

// EditorSettings validates the [editor] section into tool settings.
func (c *Config) EditorSettings() (tools.Settings, error) {
	s := tools.DefaultSettings()
	if c.Editor.Tool != "" {
		t, err := tools.ParseTool(c.Editor.Tool)
		if err != nil {
			return s, fmt.Errorf("editor.tool: %w", err)
		}
		s.Tool = t
	}
	if c.Editor.Width != 0 {
		s.Width = c.Editor.Width
	}
	if c.Editor.Color != "" {
		col, err := tools.ParsePaletteColor(c.Editor.Color)
		if err != nil {
			return s, fmt.Errorf("editor.color: %w", err)
		}
		s.Color = col
	}
	return s.Validate()
}

// Level returns the configured log level, falling back to info.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// ShotClient builds a capture client from the [capture] section.
func (c *Config) ShotClient() *shot.Client {
	cl := shot.NewClient(c.Capture.APIKey)
	if c.Capture.APIBase != "" {
		cl.APIBase = c.Capture.APIBase
	}
	if c.Capture.Dimension != "" {
		cl.Dimension = c.Capture.Dimension
	}
	if c.Capture.ThumbnailDimension != "" {
		cl.ThumbnailDimension = c.Capture.ThumbnailDimension
	}
	if c.Capture.DelayMS >= 0 {
		cl.Delay = time.Duration(c.Capture.DelayMS) * time.Millisecond
	}
	return cl
}
