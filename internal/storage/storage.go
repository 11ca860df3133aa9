// Package storage picks a gallery store backend from configuration.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/example/shotmark/internal/config"
	"github.com/example/shotmark/internal/store"
	"github.com/example/shotmark/internal/store/filesystem"
	"github.com/example/shotmark/internal/store/memory"
	"github.com/example/shotmark/internal/store/s3"
	"github.com/example/shotmark/internal/store/sqlite"
)

// DefaultDSN is the sqlite file used when none is configured.
const DefaultDSN = "shotmark.db"

// Open builds the store named by cfg.Type. The returned closer releases
// backend resources and is never nil.
func Open(ctx context.Context, cfg config.Store) (store.Store, io.Closer, error) {
	fields := logrus.Fields{"storageType": cfg.Type}
	var (
		st     store.Store
		closer io.Closer = nopCloser{}
	)
	switch strings.ToLower(cfg.Type) {
	case config.StoreFilesystem:
		basePath := expandHome(cfg.Path)
		if basePath == "" {
			basePath = DefaultPath()
		}
		fields["basePath"] = basePath
		fs, err := filesystem.NewStore(basePath)
		if err != nil {
			return nil, nil, err
		}
		st = fs
	case config.StoreSQLite:
		dsn := expandHome(cfg.DSN)
		if dsn == "" {
			dsn = DefaultDSN
		}
		fields["dataSourceName"] = dsn
		db, err := sqlite.NewStore(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		st, closer = db, db
	case config.StoreS3:
		if cfg.Bucket == "" {
			return nil, nil, errors.New("storage: bucket must be set for s3 storage")
		}
		fields["bucketName"] = cfg.Bucket
		s, err := s3.NewFromEnv(ctx, cfg.Bucket)
		if err != nil {
			return nil, nil, err
		}
		st = s
	case config.StoreMemory, "":
		st = memory.NewStore()
		fields["storageType"] = "in-memory"
	default:
		return nil, nil, fmt.Errorf("storage: unknown store type %q", cfg.Type)
	}
	logrus.WithFields(fields).Info("Use storage")
	return st, closer, nil
}

// DefaultPath is the filesystem store location when none is configured.
func DefaultPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "shotmark")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".local", "share", "shotmark")
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
