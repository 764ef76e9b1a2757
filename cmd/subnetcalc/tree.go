package main

import "fmt"

type Status string

const (
	StatusInUse       Status = "in_use"
	StatusFree        Status = "free"
	StatusReserved    Status = "reserved"
	StatusUnavailable Status = "unavailable"
	StatusPartial     Status = "partial"
)

func (s Status) Label() string {
	switch s {
	case StatusInUse:
		return "In Use"
	case StatusFree:
		return "Free"
	case StatusReserved:
		return "Reserved"
	case StatusUnavailable:
		return "Unavailable"
	case StatusPartial:
		return "Partial"
	}
	return string(s)
}

func parseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusInUse, StatusFree, StatusReserved, StatusUnavailable:
		return Status(raw), true
	}
	return "", false
}

// SubnetNode is one block of the partition tree. The id is the canonical
// CIDR string and doubles as the node's key in SubnetTree.Nodes; edges are
// ids, never pointers, so cloning a tree is a flat map copy.
type SubnetNode struct {
	ID       string   `json:"id" yaml:"id"`
	Network  string   `json:"network" yaml:"network"`
	Prefix   int      `json:"prefix" yaml:"prefix"`
	Start    uint32   `json:"start" yaml:"start"`
	End      uint32   `json:"end" yaml:"end"`
	ParentID string   `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`

	// ExplicitStatus is the operator override; empty means unset.
	// DefaultStatus is fixed at build time from the assigned ranges.
	// EffectiveStatus is derived; recomputed wholesale after any change.
	ExplicitStatus  Status `json:"explicit_status,omitempty" yaml:"explicit_status,omitempty"`
	DefaultStatus   Status `json:"default_status" yaml:"default_status"`
	EffectiveStatus Status `json:"effective_status" yaml:"effective_status"`

	TotalIPs uint64 `json:"total_ips" yaml:"total_ips"`
}

type SubnetTree struct {
	RootID string                 `json:"root_id" yaml:"root_id"`
	Nodes  map[string]*SubnetNode `json:"nodes" yaml:"nodes"`
}

// TreePlanConfig is the construction input. AssignedCIDRs establishes which
// space is provisionally free; the three status lists pre-mark exact tree
// nodes at build time, applied in the order in-use, reserved, unavailable.
type TreePlanConfig struct {
	RootCIDR         string   `json:"root_cidr" yaml:"root_cidr" binding:"required"`
	MinPrefix        int      `json:"min_prefix" yaml:"min_prefix" binding:"min=0,max=32"`
	AssignedCIDRs    []string `json:"assigned_cidrs" yaml:"assigned_cidrs"`
	InUseCIDRs       []string `json:"in_use_cidrs,omitempty" yaml:"in_use_cidrs,omitempty"`
	ReservedCIDRs    []string `json:"reserved_cidrs,omitempty" yaml:"reserved_cidrs,omitempty"`
	UnavailableCIDRs []string `json:"unavailable_cidrs,omitempty" yaml:"unavailable_cidrs,omitempty"`
}

// buildSubnetTree expands the root CIDR into a complete binary tree down to
// MinPrefix, seeds default statuses from the assigned ranges, cascades the
// configured overrides and rolls up effective statuses. Malformed CIDRs and
// a MinPrefix above the root's own prefix fail before any node is built.
func buildSubnetTree(cfg TreePlanConfig) (*SubnetTree, error) {
	root, err := parseCIDR(cfg.RootCIDR)
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	if cfg.MinPrefix < root.Prefix || cfg.MinPrefix > 32 {
		return nil, fmt.Errorf("%w: min prefix /%d outside /%d..32", ErrInvalidTreeConfig, cfg.MinPrefix, root.Prefix)
	}
	assigned, err := parseCIDRList(cfg.AssignedCIDRs)
	if err != nil {
		return nil, fmt.Errorf("assigned: %w", err)
	}
	overrides := []struct {
		status Status
		cidrs  []string
		ranges []AddressRange
	}{
		{status: StatusInUse, cidrs: cfg.InUseCIDRs},
		{status: StatusReserved, cidrs: cfg.ReservedCIDRs},
		{status: StatusUnavailable, cidrs: cfg.UnavailableCIDRs},
	}
	for i := range overrides {
		overrides[i].ranges, err = parseCIDRList(overrides[i].cidrs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", overrides[i].status, err)
		}
	}

	tree := &SubnetTree{Nodes: map[string]*SubnetNode{}}
	tree.RootID = tree.grow(root, "", cfg.MinPrefix)

	for _, node := range tree.Nodes {
		if rangeAssigned(assigned, node.Start, node.End) {
			node.DefaultStatus = StatusFree
		}
	}
	for _, ov := range overrides {
		for _, r := range ov.ranges {
			// overrides must align to an exact node; anything else is
			// silently skipped
			if _, ok := tree.Nodes[r.String()]; ok {
				tree.cascade(r.String(), ov.status)
			}
		}
	}
	tree.rollUp(tree.RootID)
	return tree, nil
}

func parseCIDRList(cidrs []string) ([]AddressRange, error) {
	out := make([]AddressRange, 0, len(cidrs))
	for _, raw := range cidrs {
		r, err := parseCIDR(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func rangeAssigned(assigned []AddressRange, start, end uint32) bool {
	for _, a := range assigned {
		if a.Start <= start && a.End >= end {
			return true
		}
	}
	return false
}

// grow builds the subtree for r and returns its node id. Children are
// ordered [lower half, upper half].
func (t *SubnetTree) grow(r AddressRange, parentID string, minPrefix int) string {
	node := &SubnetNode{
		ID:              r.String(),
		Network:         u32ToDotted(r.Network),
		Prefix:          r.Prefix,
		Start:           r.Start,
		End:             r.End,
		ParentID:        parentID,
		DefaultStatus:   StatusUnavailable,
		EffectiveStatus: StatusUnavailable,
		TotalIPs:        r.Size,
	}
	t.Nodes[node.ID] = node
	if r.Prefix < minPrefix {
		half := r.Size / 2
		lower := AddressRange{
			Network: r.Start, Prefix: r.Prefix + 1,
			Start: r.Start, End: r.Start + uint32(half-1), Size: half,
		}
		upper := AddressRange{
			Network: r.Start + uint32(half), Prefix: r.Prefix + 1,
			Start: r.Start + uint32(half), End: r.End, Size: half,
		}
		node.Children = []string{
			t.grow(lower, node.ID, minPrefix),
			t.grow(upper, node.ID, minPrefix),
		}
	}
	return node.ID
}

// cascade sets the explicit status on id and every descendant.
func (t *SubnetTree) cascade(id string, status Status) {
	node, ok := t.Nodes[id]
	if !ok {
		return
	}
	node.ExplicitStatus = status
	for _, child := range node.Children {
		t.cascade(child, status)
	}
}

// rollUp recomputes effective statuses bottom-up. A leaf shows its explicit
// status if set, else its default; an internal node shows the common status
// of its children, or partial when they disagree. An internal node's own
// explicit status is deliberately not consulted here: it only ever matters
// on leaves, which is the behavior the UI depends on.
func (t *SubnetTree) rollUp(id string) Status {
	node := t.Nodes[id]
	if len(node.Children) == 0 {
		if node.ExplicitStatus != "" {
			node.EffectiveStatus = node.ExplicitStatus
		} else {
			node.EffectiveStatus = node.DefaultStatus
		}
		return node.EffectiveStatus
	}
	lower := t.rollUp(node.Children[0])
	upper := t.rollUp(node.Children[1])
	if lower == upper {
		node.EffectiveStatus = lower
	} else {
		node.EffectiveStatus = StatusPartial
	}
	return node.EffectiveStatus
}

// clone copies the node map and every node so the previous tree value stays
// valid; child id slices are copied too, though nothing mutates them after
// construction.
func (t *SubnetTree) clone() *SubnetTree {
	out := &SubnetTree{RootID: t.RootID, Nodes: make(map[string]*SubnetNode, len(t.Nodes))}
	for id, node := range t.Nodes {
		copied := *node
		if node.Children != nil {
			copied.Children = append([]string(nil), node.Children...)
		}
		out.Nodes[id] = &copied
	}
	return out
}

// updateNodeStatus returns a new tree with the node's explicit status set,
// cascaded to descendants when requested, and effective statuses recomputed.
// An unknown id returns the input tree untouched.
func updateNodeStatus(tree *SubnetTree, nodeID string, status Status, cascade bool) *SubnetTree {
	if _, ok := tree.Nodes[nodeID]; !ok {
		return tree
	}
	next := tree.clone()
	if cascade {
		next.cascade(nodeID, status)
	} else {
		next.Nodes[nodeID].ExplicitStatus = status
	}
	next.rollUp(next.RootID)
	return next
}
