package icloud

import "encoding/json"

// DSInfo is the directory-services record inside the login response.
type DSInfo struct {
	// DSID is the numeric account identifier, sent as a string on the wire.
	DSID string `json:"dsid"`

	// HSAVersion is the account's second-factor protocol version. Version 0
	// accounts never require device verification.
	HSAVersion int `json:"hsaVersion"`

	FullName     string `json:"fullName,omitempty"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	PrimaryEmail string `json:"primaryEmail,omitempty"`
	Locale       string `json:"locale,omitempty"`
}

// Webservice is one entry of the service directory unlocked by login.
type Webservice struct {
	URL         string `json:"url"`
	Status      string `json:"status,omitempty"`
	PCSRequired bool   `json:"pcsRequired,omitempty"`
}

// AccountInfo is the decoded body of a successful login response.
type AccountInfo struct {
	DSInfo               DSInfo                `json:"dsInfo"`
	HSAChallengeRequired bool                  `json:"hsaChallengeRequired"`
	HSATrustedBrowser    bool                  `json:"hsaTrustedBrowser"`
	Webservices          map[string]Webservice `json:"webservices"`
}

// TrustedDevice describes a device the backend can deliver a verification
// code to. The server expects the descriptor echoed back verbatim on
// sendVerificationCode/validateVerificationCode, so the raw payload is
// preserved alongside the typed fields.
type TrustedDevice struct {
	DeviceType  string
	DeviceID    string
	DeviceName  string
	AreaCode    string
	PhoneNumber string

	raw map[string]json.RawMessage
}

// UnmarshalJSON keeps the untyped payload for later round-tripping.
func (d *TrustedDevice) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var fields struct {
		DeviceType  string `json:"deviceType"`
		DeviceID    string `json:"deviceId"`
		DeviceName  string `json:"deviceName"`
		AreaCode    string `json:"areaCode"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	d.DeviceType = fields.DeviceType
	d.DeviceID = fields.DeviceID
	d.DeviceName = fields.DeviceName
	d.AreaCode = fields.AreaCode
	d.PhoneNumber = fields.PhoneNumber
	d.raw = raw
	return nil
}

// MarshalJSON emits the original payload when the device came off the
// wire, falling back to the typed fields for locally built descriptors.
func (d TrustedDevice) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.payload())
}

// payload returns the device descriptor as a generic map suitable for
// merging extra keys into a POST body.
func (d *TrustedDevice) payload() map[string]any {
	if d.raw != nil {
		body := make(map[string]any, len(d.raw))
		for key, value := range d.raw {
			body[key] = value
		}
		return body
	}

	body := map[string]any{
		"deviceType": d.DeviceType,
	}
	if d.DeviceID != "" {
		body["deviceId"] = d.DeviceID
	}
	if d.DeviceName != "" {
		body["deviceName"] = d.DeviceName
	}
	if d.AreaCode != "" {
		body["areaCode"] = d.AreaCode
	}
	if d.PhoneNumber != "" {
		body["phoneNumber"] = d.PhoneNumber
	}
	return body
}

// Label returns a short human-readable description for prompts, matching
// the device name when set and the phone number otherwise.
func (d *TrustedDevice) Label() string {
	if d.DeviceName != "" {
		return d.DeviceName
	}
	return "SMS to " + d.PhoneNumber
}
