package drive

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/picklepete/icloudgo/internal/icloud"
)

const rootNodeID = "root"

// Client provides access to the iCloud Drive web service.
type Client struct {
	requester    icloud.Requester
	serviceRoot  string
	documentRoot string

	root *Node
}

// NewClient creates a client from the drive and document service roots.
func NewClient(requester icloud.Requester, serviceRoot, documentRoot string) (*Client, error) {
	if serviceRoot == "" {
		return nil, fmt.Errorf("serviceRoot cannot be empty")
	}
	if documentRoot == "" {
		return nil, fmt.Errorf("documentRoot cannot be empty")
	}
	return &Client{
		requester:    requester,
		serviceRoot:  serviceRoot,
		documentRoot: documentRoot,
	}, nil
}

// drivewsID expands a bare node id into the folder identifier format the
// service expects. Identifiers coming off the wire are already qualified.
func drivewsID(nodeID string) string {
	if strings.Contains(nodeID, "::") {
		return nodeID
	}
	return "FOLDER::com.apple.CloudDocs::" + nodeID
}

// Root returns the drive root folder with its direct children. The root
// is fetched once and reused.
func (c *Client) Root(ctx context.Context) (*Node, error) {
	if c.root != nil {
		return c.root, nil
	}
	node, err := c.GetNode(ctx, rootNodeID)
	if err != nil {
		return nil, err
	}
	c.root = node
	return node, nil
}

// GetNode fetches a folder node and its direct children.
func (c *Client) GetNode(ctx context.Context, nodeID string) (*Node, error) {
	body := []map[string]any{{
		"drivewsid":   drivewsID(nodeID),
		"partialData": false,
	}}
	resp, err := c.requester.Post(ctx, c.serviceRoot+"/retrieveItemDetailsInFolders", nil, body)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch node %s: %w", nodeID, err)
	}

	var nodes []Node
	if err := resp.JSON(&nodes); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("node %s not found", nodeID)
	}
	return &nodes[0], nil
}

// DownloadURL resolves the short-lived download URL for a file node.
func (c *Client) DownloadURL(ctx context.Context, node *Node) (string, error) {
	if node.DocwsID == "" {
		return "", fmt.Errorf("node %s is not a downloadable file", node.FullName())
	}

	params := url.Values{"document_id": {node.DocwsID}}
	resp, err := c.requester.Get(ctx, c.documentRoot+"/ws/com.apple.CloudDocs/download/by_id", params)
	if err != nil {
		return "", fmt.Errorf("failed to resolve download for %s: %w", node.FullName(), err)
	}

	var payload struct {
		DataToken struct {
			URL string `json:"url"`
		} `json:"data_token"`
		PackageToken struct {
			URL string `json:"url"`
		} `json:"package_token"`
	}
	if err := resp.JSON(&payload); err != nil {
		return "", err
	}

	if payload.DataToken.URL != "" {
		return payload.DataToken.URL, nil
	}
	if payload.PackageToken.URL != "" {
		return payload.PackageToken.URL, nil
	}
	return "", fmt.Errorf("no download token for %s", node.FullName())
}
