package calendar

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/picklepete/icloudgo/internal/icloud"
)

// Client provides access to the calendar web service.
type Client struct {
	requester icloud.Requester
	endpoint  string
	timezone  string
}

// NewClient creates a client for the given calendar service root. The
// timezone is sent with every request; when empty the local zone is used.
func NewClient(requester icloud.Requester, serviceRoot, timezone string) (*Client, error) {
	if serviceRoot == "" {
		return nil, fmt.Errorf("serviceRoot cannot be empty")
	}
	if timezone == "" {
		timezone = time.Local.String()
	}
	return &Client{
		requester: requester,
		endpoint:  serviceRoot + "/ca",
		timezone:  timezone,
	}, nil
}

func (c *Client) localeParams() url.Values {
	return url.Values{
		"lang":   {"en-us"},
		"usertz": {c.timezone},
	}
}

// Calendars lists the account's calendar collections.
func (c *Client) Calendars(ctx context.Context) ([]Calendar, error) {
	resp, err := c.requester.Get(ctx, c.endpoint+"/startup", c.localeParams())
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	var payload struct {
		Collection []Calendar `json:"Collection"`
	}
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}
	return payload.Collection, nil
}

// Events lists events within the window. Zero times default to the
// current month.
func (c *Client) Events(ctx context.Context, from, to time.Time) ([]Event, error) {
	if from.IsZero() || to.IsZero() {
		now := time.Now()
		firstDay := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		if from.IsZero() {
			from = firstDay
		}
		if to.IsZero() {
			to = firstDay.AddDate(0, 1, -1)
		}
	}

	params := c.localeParams()
	params.Set("startDate", from.Format("2006-01-02"))
	params.Set("endDate", to.Format("2006-01-02"))

	resp, err := c.requester.Get(ctx, c.endpoint+"/events", params)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var payload struct {
		Event []Event `json:"Event"`
	}
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}
	return payload.Event, nil
}

// EventDetail fetches the full record for one event.
func (c *Client) EventDetail(ctx context.Context, pGUID, guid string) (*Event, error) {
	endpoint := fmt.Sprintf("%s/eventdetail/%s/%s", c.endpoint, url.PathEscape(pGUID), url.PathEscape(guid))
	resp, err := c.requester.Get(ctx, endpoint, c.localeParams())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event detail: %w", err)
	}

	var payload struct {
		Event []Event `json:"Event"`
	}
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}
	if len(payload.Event) == 0 {
		return nil, fmt.Errorf("event %s not found", guid)
	}
	return &payload.Event[0], nil
}
