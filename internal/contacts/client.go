package contacts

import (
	"context"
	"fmt"
	"net/url"

	"github.com/picklepete/icloudgo/internal/icloud"
)

// Client provides access to the contacts web service.
type Client struct {
	requester icloud.Requester
	endpoint  string
}

// NewClient creates a client for the given contacts service root.
func NewClient(requester icloud.Requester, serviceRoot string) (*Client, error) {
	if serviceRoot == "" {
		return nil, fmt.Errorf("serviceRoot cannot be empty")
	}
	return &Client{
		requester: requester,
		endpoint:  serviceRoot + "/co",
	}, nil
}

func baseParams() url.Values {
	return url.Values{
		"clientVersion": {"2.1"},
		"locale":        {"en_US"},
		"order":         {"last,first"},
	}
}

// All fetches the complete address book. The startup call yields the sync
// tokens required by the follow-up contacts call, which returns every
// entry in one page.
func (c *Client) All(ctx context.Context) ([]Contact, error) {
	resp, err := c.requester.Get(ctx, c.endpoint+"/startup", baseParams())
	if err != nil {
		return nil, fmt.Errorf("failed to start contacts sync: %w", err)
	}

	var startup struct {
		PrefToken string    `json:"prefToken"`
		SyncToken string    `json:"syncToken"`
		Contacts  []Contact `json:"contacts"`
	}
	if err := resp.JSON(&startup); err != nil {
		return nil, err
	}

	params := baseParams()
	params.Set("prefToken", startup.PrefToken)
	params.Set("syncToken", startup.SyncToken)
	params.Set("limit", "0")
	params.Set("offset", "0")

	resp, err = c.requester.Get(ctx, c.endpoint+"/contacts", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	var page struct {
		Contacts []Contact `json:"contacts"`
	}
	if err := resp.JSON(&page); err != nil {
		return nil, err
	}
	if len(page.Contacts) > 0 {
		return page.Contacts, nil
	}
	return startup.Contacts, nil
}
