package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/virl2-client/internal/http"
	"github.com/fivetwenty-io/virl2-client/pkg/virl2"
)

// LabsClient implements virl2.LabsClient.
type LabsClient struct {
	httpClient *http.Client
}

// NewLabsClient creates a new labs client.
func NewLabsClient(httpClient *http.Client) *LabsClient {
	return &LabsClient{httpClient: httpClient}
}

// List implements virl2.LabsClient.List.
func (c *LabsClient) List(ctx context.Context) ([]string, error) {
	resp, err := c.httpClient.Get(ctx, "labs", nil)
	if err != nil {
		return nil, fmt.Errorf("listing labs: %w", err)
	}

	var ids []string

	err = json.Unmarshal(resp.Body, &ids)
	if err != nil {
		return nil, fmt.Errorf("parsing labs response: %w", err)
	}

	return ids, nil
}

// Create implements virl2.LabsClient.Create.
func (c *LabsClient) Create(ctx context.Context, title string) (*virl2.Lab, error) {
	query := url.Values{"title": []string{title}}

	resp, err := c.httpClient.PostWithQuery(ctx, "labs", query, nil)
	if err != nil {
		return nil, fmt.Errorf("creating lab: %w", err)
	}

	var created struct {
		ID string `json:"id"`
	}

	err = json.Unmarshal(resp.Body, &created)
	if err != nil {
		return nil, fmt.Errorf("parsing lab response: %w", err)
	}

	if created.ID == "" {
		return nil, virl2.ErrNoLabIDInResponse
	}

	lab := c.newLab(created.ID)
	lab.Title = title

	return lab, nil
}

// Get implements virl2.LabsClient.Get. The handle is lazy; Sync populates it
// from the server.
func (c *LabsClient) Get(ctx context.Context, id string) (*virl2.Lab, error) {
	lab := c.newLab(id)

	err := c.Sync(ctx, lab)
	if err != nil {
		return nil, err
	}

	return lab, nil
}

// Delete implements virl2.LabsClient.Delete.
func (c *LabsClient) Delete(ctx context.Context, id string) error {
	_, err := c.httpClient.Delete(ctx, "labs/"+id)
	if err != nil {
		return fmt.Errorf("deleting lab: %w", err)
	}

	return nil
}

// Start implements virl2.LabsClient.Start.
func (c *LabsClient) Start(ctx context.Context, id string) error {
	_, err := c.httpClient.Put(ctx, "labs/"+id+"/start", nil)
	if err != nil {
		return fmt.Errorf("starting lab: %w", err)
	}

	return nil
}

// Stop implements virl2.LabsClient.Stop.
func (c *LabsClient) Stop(ctx context.Context, id string) error {
	_, err := c.httpClient.Put(ctx, "labs/"+id+"/stop", nil)
	if err != nil {
		return fmt.Errorf("stopping lab: %w", err)
	}

	return nil
}

// Sync implements virl2.LabsClient.Sync. Lab state lives on the server and
// is refreshed on demand, never cached authoritatively.
func (c *LabsClient) Sync(ctx context.Context, lab *virl2.Lab) error {
	resp, err := c.httpClient.Get(ctx, "labs/"+lab.ID+"/topology", nil)
	if err != nil {
		return fmt.Errorf("syncing lab %s: %w", lab.ID, err)
	}

	var topology virl2.Topology

	err = json.Unmarshal(resp.Body, &topology)
	if err != nil {
		return fmt.Errorf("parsing topology response: %w", err)
	}

	if topology.Title != "" {
		lab.Title = topology.Title
	}

	lab.State = topology.State
	lab.Nodes = topology.Nodes
	lab.Links = topology.Links

	return nil
}

// newLab builds a handle with its endpoint root under the API base.
func (c *LabsClient) newLab(id string) *virl2.Lab {
	return &virl2.Lab{
		ID:      id,
		BaseURL: c.httpClient.BaseURL() + "labs/" + id,
	}
}
