package shot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const (
	DefaultAPIBase            = "https://api.screenshotmachine.com"
	DefaultDimension          = "1280x800"
	DefaultThumbnailDimension = "640x400"
	DefaultDelay              = 2 * time.Second

	probeTimeout   = 5 * time.Second
	probeUserAgent = "Mozilla/5.0"
)

// Client builds screenshot records against the rendering service.
type Client struct {
	APIBase            string
	APIKey             string
	Dimension          string
	ThumbnailDimension string
	Delay              time.Duration

	HTTP *http.Client
	Now  func() time.Time
}

// NewClient returns a client with the default service settings.
func NewClient(apiKey string) *Client {
	return &Client{
		APIBase:            DefaultAPIBase,
		APIKey:             apiKey,
		Dimension:          DefaultDimension,
		ThumbnailDimension: DefaultThumbnailDimension,
		Delay:              DefaultDelay,
		HTTP:               &http.Client{},
		Now:                time.Now,
	}
}

// Capture records a screenshot of rawURL. The images themselves are
// rendered lazily by the service when their references are fetched.
func (c *Client) Capture(ctx context.Context, rawURL string) (*Screenshot, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	u, _ := url.Parse(target)
	now := c.now()
	s := &Screenshot{
		ID:         ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		URL:        target,
		Domain:     u.Hostname(),
		Title:      TitleFor(u.Hostname()),
		Thumbnail:  c.imageURL(target, c.ThumbnailDimension),
		FullImage:  c.imageURL(target, c.Dimension),
		CapturedAt: now,
	}
	s.StatusCode = c.ProbeStatus(ctx, target)
	logrus.WithFields(logrus.Fields{
		"id":     s.ID,
		"domain": s.Domain,
		"status": s.StatusCode,
	}).Info("screenshot captured")
	return s, nil
}

// CaptureAll captures every URL, skipping failures. The errors for skipped
// URLs are joined.
func (c *Client) CaptureAll(ctx context.Context, urls []string) ([]*Screenshot, error) {
	var (
		out  []*Screenshot
		errs []error
	)
	for _, raw := range urls {
		s, err := c.Capture(ctx, raw)
		if err != nil {
			logrus.WithError(err).WithField("url", raw).Warn("capture failed")
			errs = append(errs, fmt.Errorf("capture %s: %w", raw, err))
			continue
		}
		out = append(out, s)
	}
	return out, errors.Join(errs...)
}

// ProbeStatus issues a HEAD request and returns the status code. A request
// that cannot connect reports 404; a timeout keeps the optimistic 200.
func (c *Client) ProbeStatus(ctx context.Context, target string) int {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return http.StatusNotFound
	}
	req.Header.Set("User-Agent", probeUserAgent)
	resp, err := c.httpClient().Do(req)
	if err != nil {
		log := logrus.WithError(err).WithField("url", target)
		if errors.Is(err, context.DeadlineExceeded) {
			log.Debug("status probe timed out")
			return http.StatusOK
		}
		log.Debug("status probe failed")
		return http.StatusNotFound
	}
	_ = resp.Body.Close()
	return resp.StatusCode
}

func (c *Client) imageURL(target, dimension string) string {
	q := url.Values{}
	q.Set("key", c.APIKey)
	q.Set("url", target)
	q.Set("dimension", dimension)
	q.Set("format", "png")
	q.Set("cacheLimit", "0")
	q.Set("delay", strconv.FormatInt(c.Delay.Milliseconds(), 10))
	return c.APIBase + "?" + q.Encode()
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
