package main

import (
	"errors"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/example/shotmark/internal/server"
	"github.com/example/shotmark/internal/source"
)

// serveCmd runs the gallery HTTP API.
type serveCmd struct {
	*root
	fs        *flag.FlagSet
	addr      string
	envFile   string
	maxUpload int64
	maxPixels int64
}

func parseServeCmd(args []string, r *root) (*serveCmd, error) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	c := &serveCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.addr, "addr", ":8080", "listen address")
	fs.StringVar(&c.envFile, "env", ".env", "dotenv file loaded before the store is opened")
	fs.Int64Var(&c.maxUpload, "max-upload", server.DefaultMaxUpload, "largest accepted edited image in bytes")
	fs.Int64Var(&c.maxPixels, "max-pixels", source.DefaultMaxPixels, "largest accepted image in pixels (width*height)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *serveCmd) Run() error {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		// Values from the dotenv file join the real environment, which
		// outranks the config file.
		c.config.ApplyEnv(os.Getenv)
	}
	st, closer, err := c.gallery()
	if err != nil {
		return err
	}
	defer closeStore(closer)

	srv := server.New(st, c.shotCapturer(),
		server.WithFetcher(source.New(source.WithMaxPixels(c.maxPixels))),
		server.WithMaxUpload(c.maxUpload),
		server.WithMaxPixels(c.maxPixels),
	)
	logrus.WithField("store", c.config.Store.Type).Info("gallery API ready")
	return srv.ListenAndServe(c.runCtx(), c.addr)
}

func (c *serveCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *serveCmd) Template() string { return "serve.txt" }
