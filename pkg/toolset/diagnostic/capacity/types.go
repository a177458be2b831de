// Package capacity aggregates requested, limited, and utilized compute
// per node, similar to kube-capacity. All data comes from kubectl; no
// API client is involved.
package capacity

// Resource holds one resource dimension for a node or pod. CPU values
// are millicores, memory values are bytes.
type Resource struct {
	Capacity    int64 `json:"capacity,omitempty"`
	Allocatable int64 `json:"allocatable,omitempty"`
	Requested   int64 `json:"requested"`
	Limited     int64 `json:"limited"`
	Utilized    int64 `json:"utilized,omitempty"`
}

// PodCountInfo holds scheduled pod counts against the node's limit.
type PodCountInfo struct {
	Allocatable int64 `json:"allocatable"`
	Requested   int64 `json:"requested"`
}

// PodInfo holds aggregated container resources for one pod.
type PodInfo struct {
	Namespace string   `json:"namespace"`
	Name      string   `json:"name"`
	CPU       Resource `json:"cpu"`
	Memory    Resource `json:"memory"`
}

// NodeInfo holds resource information for a node.
type NodeInfo struct {
	Name     string       `json:"name"`
	CPU      Resource     `json:"cpu"`
	Memory   Resource     `json:"memory"`
	PodCount PodCountInfo `json:"podCount"`
	Pods     []PodInfo    `json:"pods,omitempty"`
}

// Result holds the complete capacity analysis.
type Result struct {
	Nodes    []NodeInfo `json:"nodes"`
	Cluster  NodeInfo   `json:"cluster"`
	ShowPods bool       `json:"-"`
	ShowUtil bool       `json:"-"`
}

// Params holds the parameters for one capacity analysis.
type Params struct {
	Context       string
	Namespace     string
	LabelSelector string
	SortBy        string
	ShowPods      bool
	ShowUtil      bool
}
