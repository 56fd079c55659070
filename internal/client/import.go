package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/virl2-client/pkg/virl2"
)

// ImportLab implements virl2.Client.ImportLab. The topology text is posted
// unmodified; the title travels in the query string.
func (c *Client) ImportLab(ctx context.Context, topology, title string, format virl2.TopologyFormat) (*virl2.Lab, error) {
	var (
		path  string
		query = url.Values{}
	)

	switch format {
	case virl2.TopologyFormatJSON:
		path = "import"

		query.Set("is_json", "true")
	case virl2.TopologyFormatVIRL:
		path = "import/virl-1x"
	default:
		return nil, fmt.Errorf("%w: %q", virl2.ErrUnknownTopology, format)
	}

	query.Set("title", title)

	resp, err := c.httpClient.PostWithQuery(ctx, path, query, topology)
	if err != nil {
		return nil, fmt.Errorf("importing lab: %w", err)
	}

	var imported struct {
		ID string `json:"id"`
	}

	err = json.Unmarshal(resp.Body, &imported)
	if err != nil {
		return nil, fmt.Errorf("parsing import response: %w", err)
	}

	if imported.ID == "" {
		return nil, virl2.ErrNoLabIDInResponse
	}

	lab := c.labs.newLab(imported.ID)
	lab.Title = title

	err = c.labs.Sync(ctx, lab)
	if err != nil {
		return nil, err
	}

	return lab, nil
}

// ImportLabFromPath implements virl2.Client.ImportLabFromPath. The file
// extension selects the import endpoint (.ng is the JSON format, .virl the
// legacy XML one) and the title is the file name including its extension.
func (c *Client) ImportLabFromPath(ctx context.Context, path string) (*virl2.Lab, error) {
	var format virl2.TopologyFormat

	switch filepath.Ext(path) {
	case ".ng":
		format = virl2.TopologyFormatJSON
	case ".virl":
		format = virl2.TopologyFormatVIRL
	default:
		return nil, fmt.Errorf("%w: %s", virl2.ErrUnknownTopology, path)
	}

	topology, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology file: %w", err)
	}

	return c.ImportLab(ctx, string(topology), filepath.Base(path), format)
}
