// Package s3 stores screenshots as JSON objects in an S3 bucket.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"

	"github.com/example/shotmark/internal/shot"
	"github.com/example/shotmark/internal/store"
)

const keyPrefix = "screenshots/"

// API is the subset of the S3 client the store uses.
type API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Store keeps one object per screenshot under the screenshots/ prefix.
type Store struct {
	client API
	bucket string
}

// NewStore wraps an existing client.
func NewStore(client API, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// NewFromEnv builds a client from the default AWS configuration chain.
func NewFromEnv(ctx context.Context, bucket string) (*Store, error) {
	if bucket == "" {
		return nil, errors.New("s3 store: bucket name is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewStore(s3.NewFromConfig(cfg), bucket), nil
}

func key(id string) string { return keyPrefix + id + ".json" }

func (s *Store) List(ctx context.Context) ([]*shot.Screenshot, error) {
	var out []*shot.Screenshot
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(keyPrefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list screenshots: %w", err)
		}
		for _, obj := range page.Contents {
			k := aws.ToString(obj.Key)
			if !strings.HasSuffix(k, ".json") {
				continue
			}
			sc, err := s.read(ctx, k)
			if err != nil {
				logrus.WithError(err).WithField("key", k).Warn("skipping unreadable screenshot")
				continue
			}
			sc.Edited = nil
			out = append(out, sc)
		}
	}
	store.SortNewest(out)
	return out, nil
}

func (s *Store) read(ctx context.Context, k string) (*shot.Screenshot, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", k, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", k, err)
	}
	var sc shot.Screenshot
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", k, err)
	}
	return &sc, nil
}

func (s *Store) Get(ctx context.Context, id string) (*shot.Screenshot, error) {
	if err := store.ValidID(id); err != nil {
		return nil, store.ErrNotFound
	}
	return s.read(ctx, key(id))
}

func (s *Store) Save(ctx context.Context, sc *shot.Screenshot) error {
	if err := store.ValidID(sc.ID); err != nil {
		return err
	}
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", sc.ID, err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key(sc.ID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", sc.ID, err)
	}
	logrus.WithField("screenshot_id", sc.ID).Debug("screenshot saved")
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := store.ValidID(id); err != nil {
		return store.ErrNotFound
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key(id)),
	})
	if err != nil {
		var nf *s3types.NotFound
		if errors.As(err, &nf) {
			return store.ErrNotFound
		}
		return fmt.Errorf("head %s: %w", id, err)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key(id)),
	}); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	logrus.WithField("screenshot_id", id).Debug("screenshot deleted")
	return nil
}
