package photos

import (
	"context"
	"fmt"
	"net/url"

	"github.com/picklepete/icloudgo/internal/icloud"
)

const zoneName = "PrimarySync"

// ErrIndexing is wrapped into the error returned when the photo library
// has not finished server-side indexing yet.
var ErrIndexing = fmt.Errorf("iCloud Photo Library not finished indexing, try again in a few minutes")

// smartFolder describes one of the built-in album views.
type smartFolder struct {
	name        string
	objType     string
	listType    string
	direction   string
	queryFilter []map[string]any
}

func smartAlbumFilter(value string) []map[string]any {
	return []map[string]any{{
		"fieldName":  "smartAlbum",
		"comparator": "EQUALS",
		"fieldValue": map[string]any{"type": "STRING", "value": value},
	}}
}

// smartFolders is the reduced set of album views the client exposes.
var smartFolders = []smartFolder{
	{
		name:      "All Photos",
		objType:   "CPLAssetByAddedDate",
		listType:  "CPLAssetAndMasterByAddedDate",
		direction: "ASCENDING",
	},
	{
		name:        "Videos",
		objType:     "CPLAssetInSmartAlbumByAssetDate:Video",
		listType:    "CPLAssetAndMasterInSmartAlbumByAssetDate",
		direction:   "ASCENDING",
		queryFilter: smartAlbumFilter("VIDEO"),
	},
	{
		name:        "Favorites",
		objType:     "CPLAssetInSmartAlbumByAssetDate:Favorite",
		listType:    "CPLAssetAndMasterInSmartAlbumByAssetDate",
		direction:   "ASCENDING",
		queryFilter: smartAlbumFilter("FAVORITE"),
	},
	{
		name:        "Screenshots",
		objType:     "CPLAssetInSmartAlbumByAssetDate:Screenshot",
		listType:    "CPLAssetAndMasterInSmartAlbumByAssetDate",
		direction:   "ASCENDING",
		queryFilter: smartAlbumFilter("SCREENSHOT"),
	},
	{
		name:      "Recently Deleted",
		objType:   "CPLAssetDeletedByExpungedDate",
		listType:  "CPLAssetAndMasterDeletedByExpungedDate",
		direction: "ASCENDING",
	},
}

// Client provides access to the photo library.
type Client struct {
	requester icloud.Requester
	endpoint  string
}

// NewClient creates a client for the given CloudKit database service root
// and verifies that library indexing has finished.
func NewClient(ctx context.Context, requester icloud.Requester, serviceRoot string) (*Client, error) {
	if serviceRoot == "" {
		return nil, fmt.Errorf("serviceRoot cannot be empty")
	}

	c := &Client{
		requester: requester,
		endpoint:  serviceRoot + "/database/1/com.apple.photos.cloud/production/private",
	}
	if err := c.checkIndexingState(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func queryParams() url.Values {
	return url.Values{
		"remapEnums":          {"True"},
		"getCurrentSyncToken": {"True"},
	}
}

func (c *Client) query(ctx context.Context, body map[string]any) ([]record, error) {
	resp, err := c.requester.Post(ctx, c.endpoint+"/records/query", queryParams(), body)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Records []record `json:"records"`
	}
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}
	return payload.Records, nil
}

func (c *Client) checkIndexingState(ctx context.Context) error {
	records, err := c.query(ctx, map[string]any{
		"query":  map[string]any{"recordType": "CheckIndexingState"},
		"zoneID": map[string]any{"zoneName": zoneName},
	})
	if err != nil {
		return fmt.Errorf("failed to check indexing state: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no indexing state record returned")
	}
	if state := records[0].stringField("state"); state != "FINISHED" {
		return fmt.Errorf("%w (state: %s)", ErrIndexing, state)
	}
	return nil
}

// Albums returns the built-in smart album views.
func (c *Client) Albums() []*Album {
	albums := make([]*Album, 0, len(smartFolders))
	for _, folder := range smartFolders {
		albums = append(albums, &Album{client: c, folder: folder})
	}
	return albums
}

// Album returns the named smart album.
func (c *Client) Album(name string) (*Album, error) {
	for _, folder := range smartFolders {
		if folder.name == name {
			return &Album{client: c, folder: folder}, nil
		}
	}
	return nil, fmt.Errorf("no album named %q", name)
}

// Album is one smart album view over the photo library.
type Album struct {
	client *Client
	folder smartFolder
}

// Name returns the album's display name.
func (a *Album) Name() string {
	return a.folder.name
}

// Count fetches the number of assets in the album without listing them.
func (a *Album) Count(ctx context.Context) (int64, error) {
	body := map[string]any{
		"batch": []map[string]any{{
			"resultsLimit": 1,
			"query": map[string]any{
				"recordType": "HyperionIndexCountLookup",
				"filterBy": map[string]any{
					"fieldName":  "indexCountID",
					"comparator": "IN",
					"fieldValue": map[string]any{"type": "STRING_LIST", "value": []string{a.folder.objType}},
				},
			},
			"zoneWide": true,
			"zoneID":   map[string]any{"zoneName": zoneName},
		}},
	}
	resp, err := a.client.requester.Post(ctx, a.client.endpoint+"/internal/records/query/batch", queryParams(), body)
	if err != nil {
		return 0, fmt.Errorf("failed to count album %s: %w", a.folder.name, err)
	}

	var payload struct {
		Batch []struct {
			Records []record `json:"records"`
		} `json:"batch"`
	}
	if err := resp.JSON(&payload); err != nil {
		return 0, err
	}
	if len(payload.Batch) == 0 || len(payload.Batch[0].Records) == 0 {
		return 0, fmt.Errorf("no count record for album %s", a.folder.name)
	}
	return payload.Batch[0].Records[0].intField("itemCount"), nil
}

// Photos lists the first page of assets, oldest first. A non-positive
// limit uses the default page size.
func (a *Album) Photos(ctx context.Context, limit int) ([]Asset, error) {
	if limit <= 0 {
		limit = 100
	}

	filterBy := []map[string]any{
		{
			"fieldName":  "startRank",
			"comparator": "EQUALS",
			"fieldValue": map[string]any{"type": "INT64", "value": 0},
		},
		{
			"fieldName":  "direction",
			"comparator": "EQUALS",
			"fieldValue": map[string]any{"type": "STRING", "value": a.folder.direction},
		},
	}
	filterBy = append(filterBy, a.folder.queryFilter...)

	// Assets and masters arrive interleaved, hence the doubled limit.
	records, err := a.client.query(ctx, map[string]any{
		"query": map[string]any{
			"recordType": a.folder.listType,
			"filterBy":   filterBy,
		},
		"resultsLimit": limit * 2,
		"desiredKeys": []string{
			"resOriginalRes", "resOriginalWidth", "resOriginalHeight",
			"filenameEnc", "assetDate", "masterRef", "recordName", "isDeleted",
		},
		"zoneID": map[string]any{"zoneName": zoneName},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list album %s: %w", a.folder.name, err)
	}

	masters := make(map[string]*record)
	for i := range records {
		if records[i].RecordType == "CPLMaster" {
			masters[records[i].RecordName] = &records[i]
		}
	}

	var assets []Asset
	for i := range records {
		if records[i].RecordType != "CPLAsset" {
			continue
		}
		assets = append(assets, assetFromRecords(&records[i], masters[records[i].masterRef()]))
		if len(assets) == limit {
			break
		}
	}
	return assets, nil
}
