package destroy

import (
	"sort"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
)

// Kind is a teardown target kind.
type Kind string

const (
	KindNamespace     Kind = "namespace"
	KindDatabase      Kind = "database"
	KindBucket        Kind = "bucket"
	KindNodepool      Kind = "nodepool"
	KindCluster       Kind = "cluster"
	KindLoadBalancer  Kind = "load-balancer"
	KindSecurityGroup Kind = "security-group"
)

// Order lists kinds in deletion order.
var Order = []Kind{
	KindNamespace,
	KindDatabase,
	KindBucket,
	KindNodepool,
	KindCluster,
	KindLoadBalancer,
	KindSecurityGroup,
}

// Rank returns the deletion rank of k. Unknown kinds sort last.
func (k Kind) Rank() int {
	for i, o := range Order {
		if o == k {
			return i
		}
	}
	return len(Order)
}

// Target is one resource to delete.
type Target struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	// ClusterID is set for nodepools.
	ClusterID string `json:"cluster_id,omitempty"`
	// Database carries what DeleteDatabase needs.
	Database *exoscale.Database `json:"-"`
}

// Label returns the name, or the ID when the name is empty.
func (t Target) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// Inventory groups discovered targets by kind.
type Inventory map[Kind][]Target

// Add appends targets of one kind.
func (inv Inventory) Add(targets ...Target) {
	for _, t := range targets {
		inv[t.Kind] = append(inv[t.Kind], t)
	}
}

// Count returns the number of targets across all kinds.
func (inv Inventory) Count() int {
	n := 0
	for _, ts := range inv {
		n += len(ts)
	}
	return n
}

// Ordered returns all targets in deletion order. Within a kind, discovery
// order is kept.
func (inv Inventory) Ordered() []Target {
	var out []Target
	for _, k := range Order {
		out = append(out, inv[k]...)
	}
	var extra []Kind
	for k := range inv {
		if k.Rank() == len(Order) {
			extra = append(extra, k)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, k := range extra {
		out = append(out, inv[k]...)
	}
	return out
}

// CloudCount counts targets that live in the control plane or object
// storage, excluding the in-cluster namespace.
func (inv Inventory) CloudCount() int {
	return inv.Count() - len(inv[KindNamespace])
}
