package photos

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picklepete/icloudgo/internal/icloud"
)

type fakeRequester struct {
	// respond picks the body based on the decoded request.
	respond func(endpoint string, body map[string]any) (string, error)
	posts   []map[string]any
}

func (f *fakeRequester) Get(ctx context.Context, endpoint string, params url.Values) (*icloud.Response, error) {
	return nil, fmt.Errorf("unexpected GET %s", endpoint)
}

func (f *fakeRequester) Post(ctx context.Context, endpoint string, params url.Values, body any) (*icloud.Response, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var decoded map[string]any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return nil, err
	}
	f.posts = append(f.posts, decoded)

	responseBody, err := f.respond(endpoint, decoded)
	if err != nil {
		return nil, err
	}
	return &icloud.Response{StatusCode: 200, Body: []byte(responseBody)}, nil
}

func indexingStateBody(state string) string {
	return fmt.Sprintf(`{"records": [{"recordName": "idx", "recordType": "CheckIndexingState", "fields": {"state": {"value": %q}}}]}`, state)
}

func recordType(body map[string]any) string {
	query, _ := body["query"].(map[string]any)
	rt, _ := query["recordType"].(string)
	return rt
}

func TestNewClientChecksIndexingState(t *testing.T) {
	f := &fakeRequester{respond: func(endpoint string, body map[string]any) (string, error) {
		require.Equal(t, "CheckIndexingState", recordType(body))
		return indexingStateBody("FINISHED"), nil
	}}

	_, err := NewClient(context.Background(), f, "https://p10-ckdatabasews.icloud.com")
	require.NoError(t, err)
}

func TestNewClientWhileIndexing(t *testing.T) {
	f := &fakeRequester{respond: func(endpoint string, body map[string]any) (string, error) {
		return indexingStateBody("RUNNING"), nil
	}}

	_, err := NewClient(context.Background(), f, "https://p10-ckdatabasews.icloud.com")
	assert.ErrorIs(t, err, ErrIndexing)
}

func albumFixture() string {
	filename := base64.StdEncoding.EncodeToString([]byte("IMG_0001.JPG"))
	return fmt.Sprintf(`{
		"records": [
			{
				"recordName": "master-1",
				"recordType": "CPLMaster",
				"fields": {
					"filenameEnc": {"value": %q},
					"resOriginalRes": {"value": {"size": 2291183}},
					"resOriginalWidth": {"value": 4032},
					"resOriginalHeight": {"value": 3024}
				}
			},
			{
				"recordName": "asset-1",
				"recordType": "CPLAsset",
				"fields": {
					"assetDate": {"value": 1533560176526},
					"masterRef": {"value": {"recordName": "master-1"}}
				}
			}
		]
	}`, filename)
}

func newReadyClient(t *testing.T, respond func(endpoint string, body map[string]any) (string, error)) (*Client, *fakeRequester) {
	t.Helper()

	f := &fakeRequester{respond: func(endpoint string, body map[string]any) (string, error) {
		if recordType(body) == "CheckIndexingState" {
			return indexingStateBody("FINISHED"), nil
		}
		return respond(endpoint, body)
	}}
	c, err := NewClient(context.Background(), f, "https://p10-ckdatabasews.icloud.com")
	require.NoError(t, err)
	return c, f
}

func TestAlbumPhotos(t *testing.T) {
	c, f := newReadyClient(t, func(endpoint string, body map[string]any) (string, error) {
		return albumFixture(), nil
	})

	album, err := c.Album("All Photos")
	require.NoError(t, err)

	assets, err := album.Photos(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, assets, 1)

	assert.Equal(t, "asset-1", assets[0].ID)
	assert.Equal(t, "IMG_0001.JPG", assets[0].Filename)
	assert.Equal(t, int64(2291183), assets[0].Size)
	assert.Equal(t, int64(4032), assets[0].Width)
	assert.Equal(t, time.UnixMilli(1533560176526), assets[0].Created)

	// The listing query targets the album's list type in the sync zone.
	listQuery := f.posts[len(f.posts)-1]
	assert.Equal(t, "CPLAssetAndMasterByAddedDate", recordType(listQuery))
	zone := listQuery["zoneID"].(map[string]any)
	assert.Equal(t, "PrimarySync", zone["zoneName"])
}

func TestSmartAlbumCarriesFilter(t *testing.T) {
	c, f := newReadyClient(t, func(endpoint string, body map[string]any) (string, error) {
		return `{"records": []}`, nil
	})

	album, err := c.Album("Videos")
	require.NoError(t, err)
	_, err = album.Photos(context.Background(), 5)
	require.NoError(t, err)

	query := f.posts[len(f.posts)-1]["query"].(map[string]any)
	filters := query["filterBy"].([]any)
	last := filters[len(filters)-1].(map[string]any)
	assert.Equal(t, "smartAlbum", last["fieldName"])
	assert.Equal(t, "VIDEO", last["fieldValue"].(map[string]any)["value"])
}

func TestAlbumCount(t *testing.T) {
	c, _ := newReadyClient(t, func(endpoint string, body map[string]any) (string, error) {
		if !strings.HasSuffix(endpoint, "/internal/records/query/batch") {
			return "", fmt.Errorf("unexpected endpoint: %s", endpoint)
		}
		return `{"batch": [{"records": [{"recordName": "count", "fields": {"itemCount": {"value": 1234}}}]}]}`, nil
	})

	album, err := c.Album("All Photos")
	require.NoError(t, err)

	count, err := album.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1234), count)
}

func TestUnknownAlbum(t *testing.T) {
	c, _ := newReadyClient(t, func(endpoint string, body map[string]any) (string, error) {
		return `{"records": []}`, nil
	})

	_, err := c.Album("No Such Album")
	assert.Error(t, err)
	assert.Len(t, c.Albums(), 5)
}
