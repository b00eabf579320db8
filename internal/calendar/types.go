package calendar

import "time"

// DateList is the wire encoding for event timestamps: a packed yyyymmdd
// integer followed by the individual year, month, day, hour, and minute
// components.
type DateList []int

// Time converts the date list into a time.Time in the given location. A
// malformed list yields the zero time.
func (d DateList) Time(loc *time.Location) time.Time {
	if len(d) < 6 {
		return time.Time{}
	}
	return time.Date(d[1], time.Month(d[2]), d[3], d[4], d[5], 0, 0, loc)
}

// Calendar is one calendar collection.
type Calendar struct {
	GUID             string `json:"guid"`
	Title            string `json:"title"`
	Color            string `json:"color,omitempty"`
	SymbolicColor    string `json:"symbolicColor,omitempty"`
	ObjectType       string `json:"objectType,omitempty"`
	ShareType        string `json:"shareType,omitempty"`
	SupportedTypes   []string `json:"supportedType,omitempty"`
	IsDefault        bool   `json:"isDefault,omitempty"`
}

// Event is a calendar event summary as returned by the events endpoint.
type Event struct {
	GUID           string   `json:"guid"`
	PGUID          string   `json:"pGuid"`
	Title          string   `json:"title"`
	Location       string   `json:"location,omitempty"`
	StartDate      DateList `json:"startDate"`
	EndDate        DateList `json:"endDate"`
	LocalStartDate DateList `json:"localStartDate,omitempty"`
	LocalEndDate   DateList `json:"localEndDate,omitempty"`
	AllDay         bool     `json:"allDay"`
	Duration       int      `json:"duration,omitempty"`
	TZ             string   `json:"tz,omitempty"`
}
