package hidemyemail

import (
	"context"
	"fmt"

	"github.com/picklepete/icloudgo/internal/icloud"
)

// Alias is one Hide My Email address.
type Alias struct {
	AnonymousID     string `json:"anonymousId"`
	HME             string `json:"hme"`
	Label           string `json:"label"`
	Note            string `json:"note,omitempty"`
	Domain          string `json:"domain,omitempty"`
	ForwardToEmail  string `json:"forwardToEmail,omitempty"`
	IsActive        bool   `json:"isActive"`
	CreateTimestamp int64  `json:"createTimestamp,omitempty"`
}

// Client provides access to the Hide My Email service.
type Client struct {
	requester icloud.Requester
	endpoint  string
}

// NewClient creates a client for the given premium mail settings service
// root.
func NewClient(requester icloud.Requester, serviceRoot string) (*Client, error) {
	if serviceRoot == "" {
		return nil, fmt.Errorf("serviceRoot cannot be empty")
	}
	return &Client{
		requester: requester,
		endpoint:  serviceRoot,
	}, nil
}

// List returns the account's existing aliases.
func (c *Client) List(ctx context.Context) ([]Alias, error) {
	resp, err := c.requester.Get(ctx, c.endpoint+"/v2/hme/list", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}

	var payload struct {
		Result struct {
			HMEEmails []Alias `json:"hmeEmails"`
		} `json:"result"`
	}
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}
	return payload.Result.HMEEmails, nil
}

// Generate asks the backend for a fresh, unreserved alias address.
func (c *Client) Generate(ctx context.Context) (string, error) {
	resp, err := c.requester.Post(ctx, c.endpoint+"/v1/hme/generate", nil, map[string]any{})
	if err != nil {
		return "", fmt.Errorf("failed to generate alias: %w", err)
	}

	var payload struct {
		Result struct {
			HME string `json:"hme"`
		} `json:"result"`
	}
	if err := resp.JSON(&payload); err != nil {
		return "", err
	}
	if payload.Result.HME == "" {
		return "", fmt.Errorf("no alias in response")
	}
	return payload.Result.HME, nil
}

// Reserve activates a generated alias under the given label.
func (c *Client) Reserve(ctx context.Context, address, label, note string) (*Alias, error) {
	body := map[string]any{
		"hme":   address,
		"label": label,
		"note":  note,
	}
	resp, err := c.requester.Post(ctx, c.endpoint+"/v1/hme/reserve", nil, body)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve alias %s: %w", address, err)
	}

	var payload struct {
		Result struct {
			HME Alias `json:"hme"`
		} `json:"result"`
	}
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}
	return &payload.Result.HME, nil
}
