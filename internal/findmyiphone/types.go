package findmyiphone

import (
	"encoding/json"
	"time"
)

// Device status codes reported by the service.
const (
	statusOnline       = "200"
	statusOffline      = "201"
	statusPending      = "203"
	statusUnregistered = "204"
)

// Location is a device's last known position.
type Location struct {
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	HorizontalAccuracy float64 `json:"horizontalAccuracy"`
	PositionType       string  `json:"positionType"`
	TimestampMillis    int64   `json:"timeStamp"`
	IsOld              bool    `json:"isOld"`
	IsInaccurate       bool    `json:"isInaccurate"`
	LocationFinished   bool    `json:"locationFinished"`
}

// Time returns the location timestamp as a time.Time.
func (l *Location) Time() time.Time {
	return time.UnixMilli(l.TimestampMillis)
}

// Device is one entry of the Find My iPhone device list. Raw holds the
// complete payload for fields the typed record does not cover.
type Device struct {
	ID                string
	Name              string
	DisplayName       string
	DeviceStatus      string
	DeviceModel       string
	BatteryLevel      float64
	BatteryStatus     string
	LostModeCapable   bool
	LocationEnabled   bool
	Location          *Location
	Raw               map[string]any
}

// UnmarshalJSON fills the typed fields and keeps the full payload in Raw.
func (d *Device) UnmarshalJSON(data []byte) error {
	var fields struct {
		ID              string    `json:"id"`
		Name            string    `json:"name"`
		DisplayName     string    `json:"deviceDisplayName"`
		DeviceStatus    string    `json:"deviceStatus"`
		DeviceModel     string    `json:"deviceModel"`
		BatteryLevel    float64   `json:"batteryLevel"`
		BatteryStatus   string    `json:"batteryStatus"`
		LostModeCapable bool      `json:"lostModeCapable"`
		LocationEnabled bool      `json:"locationEnabled"`
		Location        *Location `json:"location"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.ID = fields.ID
	d.Name = fields.Name
	d.DisplayName = fields.DisplayName
	d.DeviceStatus = fields.DeviceStatus
	d.DeviceModel = fields.DeviceModel
	d.BatteryLevel = fields.BatteryLevel
	d.BatteryStatus = fields.BatteryStatus
	d.LostModeCapable = fields.LostModeCapable
	d.LocationEnabled = fields.LocationEnabled
	d.Location = fields.Location
	d.Raw = raw
	return nil
}

// StatusText maps the numeric device status onto a readable value.
func (d *Device) StatusText() string {
	switch d.DeviceStatus {
	case statusOnline:
		return "online"
	case statusOffline:
		return "offline"
	case statusPending:
		return "pending"
	case statusUnregistered:
		return "unregistered"
	default:
		return "unknown"
	}
}
