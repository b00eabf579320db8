package account

import (
	"context"
	"fmt"

	"github.com/picklepete/icloudgo/internal/icloud"
)

// Client provides access to the account web service.
type Client struct {
	requester    icloud.Requester
	setupWebRoot string
	setupWSRoot  string
}

// NewClient creates a client for the given account service root.
func NewClient(requester icloud.Requester, serviceRoot string) (*Client, error) {
	if serviceRoot == "" {
		return nil, fmt.Errorf("serviceRoot cannot be empty")
	}
	return &Client{
		requester:    requester,
		setupWebRoot: serviceRoot + "/setup/web",
		setupWSRoot:  serviceRoot + "/setup/ws/1",
	}, nil
}

// Devices lists the hardware devices registered with the account.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	resp, err := c.requester.Get(ctx, c.setupWebRoot+"/device/getDevices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list account devices: %w", err)
	}

	var payload struct {
		Devices []Device `json:"devices"`
	}
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}
	return payload.Devices, nil
}

// FamilyMembers lists the members of the account's family group. An
// account without family sharing yields an empty list.
func (c *Client) FamilyMembers(ctx context.Context) ([]FamilyMember, error) {
	resp, err := c.requester.Get(ctx, c.setupWebRoot+"/family/getFamilyDetails", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch family details: %w", err)
	}

	var payload struct {
		FamilyMembers []FamilyMember `json:"familyMembers"`
	}
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}
	return payload.FamilyMembers, nil
}

// StorageUsage fetches the account's storage totals and the per-media
// breakdown.
func (c *Client) StorageUsage(ctx context.Context) (*StorageUsage, error) {
	resp, err := c.requester.Post(ctx, c.setupWSRoot+"/storageUsageInfo", nil, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch storage usage: %w", err)
	}

	var payload struct {
		StorageUsageInfo    StorageUsage `json:"storageUsageInfo"`
		StorageUsageByMedia []MediaUsage `json:"storageUsageByMedia"`
	}
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}

	usage := payload.StorageUsageInfo
	usage.Media = payload.StorageUsageByMedia
	return &usage, nil
}
