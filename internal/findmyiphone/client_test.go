package findmyiphone

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picklepete/icloudgo/internal/icloud"
)

// fakeRequester resolves requests against canned bodies keyed by path
// suffix and records every POST body for inspection.
type fakeRequester struct {
	responses map[string]string
	posts     map[string]any
}

func (f *fakeRequester) Get(ctx context.Context, endpoint string, params url.Values) (*icloud.Response, error) {
	return f.respond(endpoint)
}

func (f *fakeRequester) Post(ctx context.Context, endpoint string, params url.Values, body any) (*icloud.Response, error) {
	if f.posts == nil {
		f.posts = make(map[string]any)
	}
	for suffix := range f.responses {
		if strings.HasSuffix(endpoint, suffix) {
			f.posts[suffix] = body
		}
	}
	return f.respond(endpoint)
}

func (f *fakeRequester) respond(endpoint string) (*icloud.Response, error) {
	for suffix, body := range f.responses {
		if strings.HasSuffix(endpoint, suffix) {
			return &icloud.Response{StatusCode: 200, Body: []byte(body)}, nil
		}
	}
	return nil, fmt.Errorf("unexpected endpoint: %s", endpoint)
}

const refreshFixture = `{
	"content": [
		{
			"id": "device-1",
			"name": "My iPhone",
			"deviceDisplayName": "iPhone 7",
			"deviceStatus": "200",
			"batteryLevel": 0.78,
			"batteryStatus": "NotCharging",
			"lostModeCapable": true,
			"locationEnabled": true,
			"location": {
				"latitude": 52.52,
				"longitude": 13.405,
				"timeStamp": 1533560176526,
				"positionType": "GPS",
				"isOld": false
			}
		},
		{
			"id": "device-2",
			"name": "My MacBook",
			"deviceDisplayName": "MacBook Pro",
			"deviceStatus": "201"
		}
	]
}`

func newTestClient(t *testing.T) (*Client, *fakeRequester) {
	t.Helper()

	f := &fakeRequester{responses: map[string]string{
		"/refreshClient": refreshFixture,
		"/playSound":     `{}`,
		"/sendMessage":   `{}`,
		"/lostDevice":    `{}`,
	}}
	c, err := NewClient(context.Background(), f, "https://p10-fmipweb.icloud.com", false)
	require.NoError(t, err)
	return c, f
}

func TestRefreshPopulatesDevices(t *testing.T) {
	c, f := newTestClient(t)

	devices := c.Devices()
	require.Len(t, devices, 2)
	assert.Equal(t, "My iPhone", devices[0].Name)
	assert.Equal(t, "online", devices[0].StatusText())
	assert.Equal(t, "offline", devices[1].StatusText())
	assert.InDelta(t, 0.78, devices[0].BatteryLevel, 0.001)

	require.NotNil(t, devices[0].Location)
	assert.InDelta(t, 52.52, devices[0].Location.Latitude, 0.001)

	// The refresh request asks the backend to locate all devices.
	body, err := json.Marshal(f.posts["/refreshClient"])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"clientContext": {
			"fmly": false,
			"shouldLocate": true,
			"selectedDevice": "all",
			"deviceListVersion": 1
		}
	}`, string(body))
}

func TestRefreshWithoutDevices(t *testing.T) {
	f := &fakeRequester{responses: map[string]string{
		"/refreshClient": `{"content": []}`,
	}}
	_, err := NewClient(context.Background(), f, "https://p10-fmipweb.icloud.com", false)

	assert.ErrorIs(t, err, ErrNoDevices)
}

func TestDeviceLookup(t *testing.T) {
	c, _ := newTestClient(t)

	device, err := c.Device("device-2")
	require.NoError(t, err)
	assert.Equal(t, "My MacBook", device.Name)

	_, err = c.Device("missing")
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestPlaySoundDefaultsSubject(t *testing.T) {
	c, f := newTestClient(t)

	require.NoError(t, c.PlaySound(context.Background(), "device-1", ""))

	body := f.posts["/playSound"].(map[string]any)
	assert.Equal(t, "device-1", body["device"])
	assert.Equal(t, "Find My iPhone Alert", body["subject"])
}

func TestLostDevicePayload(t *testing.T) {
	c, f := newTestClient(t)

	require.NoError(t, c.LostDevice(context.Background(), "device-1", "+15551234567", "", "1234"))

	body := f.posts["/lostDevice"].(map[string]any)
	assert.Equal(t, "device-1", body["device"])
	assert.Equal(t, "+15551234567", body["ownerNbr"])
	assert.Equal(t, "This iPhone has been lost. Please call me.", body["text"])
	assert.Equal(t, true, body["lostModeEnabled"])
	assert.Equal(t, "1234", body["passcode"])
}

func TestDeviceRawFallback(t *testing.T) {
	c, _ := newTestClient(t)

	device, err := c.Device("device-1")
	require.NoError(t, err)
	assert.Equal(t, "NotCharging", device.Raw["batteryStatus"])
}
