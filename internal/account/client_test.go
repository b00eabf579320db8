package account

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picklepete/icloudgo/internal/icloud"
)

type fakeRequester struct {
	responses map[string]string
}

func (f *fakeRequester) Get(ctx context.Context, endpoint string, params url.Values) (*icloud.Response, error) {
	return f.respond(endpoint)
}

func (f *fakeRequester) Post(ctx context.Context, endpoint string, params url.Values, body any) (*icloud.Response, error) {
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

func TestDevices(t *testing.T) {
	f := &fakeRequester{responses: map[string]string{
		"/device/getDevices": `{
			"devices": [
				{
					"name": "My iPhone",
					"model": "iphone7-1",
					"modelDisplayName": "iPhone 7",
					"osVersion": "15.7",
					"serialNumber": "ABC123",
					"udid": "udid-1"
				}
			]
		}`,
	}}
	c, err := NewClient(f, "https://setup.icloud.com")
	require.NoError(t, err)

	devices, err := c.Devices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "iPhone 7", devices[0].ModelDisplayName)
	assert.Equal(t, "ABC123", devices[0].SerialNumber)
}

func TestFamilyMembers(t *testing.T) {
	f := &fakeRequester{responses: map[string]string{
		"/family/getFamilyDetails": `{
			"familyMembers": [
				{"dsid": "1", "appleId": "parent@example.com", "fullName": "Parent One", "ageClassification": "ADULT"},
				{"dsid": "2", "appleId": "kid@example.com", "fullName": "Kid One", "ageClassification": "CHILD"}
			]
		}`,
	}}
	c, err := NewClient(f, "https://setup.icloud.com")
	require.NoError(t, err)

	members, err := c.FamilyMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "CHILD", members[1].AgeClassification)
}

func TestStorageUsage(t *testing.T) {
	f := &fakeRequester{responses: map[string]string{
		"/storageUsageInfo": `{
			"storageUsageInfo": {
				"totalStorageInBytes": 5368709120,
				"usedStorageInBytes": 1342177280
			},
			"storageUsageByMedia": [
				{"mediaKey": "photos", "displayLabel": "Photos and Videos", "usageInBytes": 500000000}
			]
		}`,
	}}
	c, err := NewClient(f, "https://setup.icloud.com")
	require.NoError(t, err)

	usage, err := c.StorageUsage(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 25.0, usage.UsedPercent(), 0.01)
	assert.Equal(t, int64(4026531840), usage.AvailableStorageInBytes())
	require.Len(t, usage.Media, 1)
	assert.Equal(t, "photos", usage.Media[0].Key)
}

func TestUsedPercentWithUnknownTotal(t *testing.T) {
	usage := &StorageUsage{UsedStorageInBytes: 100}
	assert.Zero(t, usage.UsedPercent())
}
