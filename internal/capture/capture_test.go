package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	portalErr error
	rootErr   error
	img       *image.RGBA
	monitors  []MonitorInfo
	rootCalls *int
}

func (f fakeBackend) Portal(context.Context) (*image.RGBA, error) {
	if f.portalErr != nil {
		return nil, f.portalErr
	}
	return f.img, nil
}

func (f fakeBackend) Root() (*image.RGBA, error) {
	if f.rootCalls != nil {
		*f.rootCalls++
	}
	if f.rootErr != nil {
		return nil, f.rootErr
	}
	return f.img, nil
}

func (f fakeBackend) Monitors() ([]MonitorInfo, error) { return f.monitors, nil }

func useBackend(t *testing.T, b backend) {
	t.Helper()
	orig := current
	current = b
	t.Cleanup(func() { current = orig })
}

func desktop() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	img.SetRGBA(150, 50, color.RGBA{R: 0xff, A: 0xff})
	return img
}

var twoMonitors = []MonitorInfo{
	{Index: 0, Name: "DP-1", Rect: image.Rect(0, 0, 100, 100)},
	{Index: 1, Name: "HDMI-1", Rect: image.Rect(100, 0, 200, 100), Primary: true},
}

func TestDesktopFallsBackToRoot(t *testing.T) {
	calls := 0
	useBackend(t, fakeBackend{portalErr: errors.New("no portal"), img: desktop(), rootCalls: &calls})
	img, err := Desktop(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 200, img.Bounds().Dx())
}

func TestDesktopReportsBothFailures(t *testing.T) {
	rootErr := errors.New("no display")
	useBackend(t, fakeBackend{portalErr: errors.New("no portal"), rootErr: rootErr})
	_, err := Desktop(context.Background(), "")
	require.ErrorIs(t, err, rootErr)
	assert.Contains(t, err.Error(), "no portal")
}

func TestDesktopCropsToMonitor(t *testing.T) {
	useBackend(t, fakeBackend{img: desktop(), monitors: twoMonitors})
	img, err := Desktop(context.Background(), "primary")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())
	assert.Equal(t, uint8(0xff), img.RGBAAt(50, 50).R)
}

func TestFindMonitor(t *testing.T) {
	m, err := FindMonitor(twoMonitors, "")
	require.NoError(t, err)
	assert.Equal(t, "DP-1", m.Name)
	m, err = FindMonitor(twoMonitors, "#1")
	require.NoError(t, err)
	assert.Equal(t, "HDMI-1", m.Name)
	m, err = FindMonitor(twoMonitors, "hdmi")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Index)
	_, err = FindMonitor(twoMonitors, "5")
	assert.Error(t, err)
	_, err = FindMonitor(nil, "")
	assert.ErrorIs(t, err, errNoMonitors)
}
