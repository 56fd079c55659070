package virl2

// TopologyFormat identifies the serialization of an uploaded topology.
type TopologyFormat string

const (
	// TopologyFormatJSON is the native JSON topology format (.ng files).
	TopologyFormatJSON TopologyFormat = "json"
	// TopologyFormatVIRL is the legacy VIRL 1.x XML format (.virl files).
	TopologyFormatVIRL TopologyFormat = "virl-1x"
)

// Lab is a local handle for one simulation topology on the controller. Its
// fields are refreshed from the server by LabsClient.Sync and are never
// cached authoritatively.
type Lab struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	State string `json:"state,omitempty"`
	Nodes []Node `json:"nodes,omitempty"`
	Links []Link `json:"links,omitempty"`

	// BaseURL is the lab's endpoint root under the API base, set by the
	// client that created the handle.
	BaseURL string `json:"-"`
}

// Topology is the server's serialized description of a lab's nodes and links.
type Topology struct {
	Title string `json:"title"`
	State string `json:"state,omitempty"`
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Node is one simulated device in a topology.
type Node struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	NodeDefinition string `json:"node_definition,omitempty"`
	State          string `json:"state,omitempty"`
	X              int    `json:"x,omitempty"`
	Y              int    `json:"y,omitempty"`
}

// Link connects two node interfaces in a topology.
type Link struct {
	ID         string `json:"id"`
	InterfaceA string `json:"interface_a"`
	InterfaceB string `json:"interface_b"`
	State      string `json:"state,omitempty"`
}
