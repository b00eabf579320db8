package findmyiphone

import (
	"context"
	"errors"
	"fmt"

	"github.com/picklepete/icloudgo/internal/icloud"
)

// ErrNoDevices is returned when the service reports an empty device list.
var ErrNoDevices = errors.New("no iCloud devices found")

// ErrDeviceNotFound is returned when a device identifier does not match
// any known device.
var ErrDeviceNotFound = errors.New("device not found")

const defaultAlertSubject = "Find My iPhone Alert"

// Client provides access to the Find My iPhone web service.
type Client struct {
	requester  icloud.Requester
	endpoint   string
	withFamily bool

	devices []Device
}

// NewClient creates a client for the given service root and performs the
// initial device list refresh.
func NewClient(ctx context.Context, requester icloud.Requester, serviceRoot string, withFamily bool) (*Client, error) {
	if serviceRoot == "" {
		return nil, fmt.Errorf("serviceRoot cannot be empty")
	}

	c := &Client{
		requester:  requester,
		endpoint:   serviceRoot + "/fmipservice/client/web",
		withFamily: withFamily,
	}
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Refresh re-fetches the device list, asking the backend to locate every
// device.
func (c *Client) Refresh(ctx context.Context) error {
	body := map[string]any{
		"clientContext": map[string]any{
			"fmly":              c.withFamily,
			"shouldLocate":      true,
			"selectedDevice":    "all",
			"deviceListVersion": 1,
		},
	}
	resp, err := c.requester.Post(ctx, c.endpoint+"/refreshClient", nil, body)
	if err != nil {
		return fmt.Errorf("failed to refresh device list: %w", err)
	}

	var payload struct {
		Content []Device `json:"content"`
	}
	if err := resp.JSON(&payload); err != nil {
		return err
	}
	if len(payload.Content) == 0 {
		return ErrNoDevices
	}

	c.devices = payload.Content
	return nil
}

// Devices returns the device list from the last refresh.
func (c *Client) Devices() []Device {
	return c.devices
}

// Device returns the device with the given identifier from the last
// refresh.
func (c *Client) Device(id string) (*Device, error) {
	for i := range c.devices {
		if c.devices[i].ID == id {
			return &c.devices[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
}

// PlaySound plays an alert sound on the device. An empty subject falls
// back to the standard alert title.
func (c *Client) PlaySound(ctx context.Context, deviceID, subject string) error {
	if subject == "" {
		subject = defaultAlertSubject
	}
	body := map[string]any{
		"device":  deviceID,
		"subject": subject,
		"clientContext": map[string]any{
			"fmly": true,
		},
	}
	_, err := c.requester.Post(ctx, c.endpoint+"/playSound", nil, body)
	if err != nil {
		return fmt.Errorf("failed to play sound: %w", err)
	}
	return nil
}

// DisplayMessage shows a message on the device, optionally with a sound.
func (c *Client) DisplayMessage(ctx context.Context, deviceID, subject, message string, sound bool) error {
	if subject == "" {
		subject = defaultAlertSubject
	}
	body := map[string]any{
		"device":   deviceID,
		"subject":  subject,
		"sound":    sound,
		"userText": true,
		"text":     message,
		"clientContext": map[string]any{
			"fmly": true,
		},
	}
	_, err := c.requester.Post(ctx, c.endpoint+"/sendMessage", nil, body)
	if err != nil {
		return fmt.Errorf("failed to display message: %w", err)
	}
	return nil
}

// LostDevice puts the device into lost mode with a callback number, an
// optional message shown on the lock screen, and an optional new
// passcode.
func (c *Client) LostDevice(ctx context.Context, deviceID, phoneNumber, text, passcode string) error {
	if text == "" {
		text = "This iPhone has been lost. Please call me."
	}
	body := map[string]any{
		"device":          deviceID,
		"ownerNbr":        phoneNumber,
		"text":            text,
		"userText":        true,
		"lostModeEnabled": true,
		"trackingEnabled": true,
		"passcode":        passcode,
	}
	_, err := c.requester.Post(ctx, c.endpoint+"/lostDevice", nil, body)
	if err != nil {
		return fmt.Errorf("failed to enable lost mode: %w", err)
	}
	return nil
}
