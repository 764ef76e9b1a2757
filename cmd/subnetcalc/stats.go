package main

import "sort"

type StatusTotals struct {
	Total       uint64 `json:"total" yaml:"total"`
	InUse       uint64 `json:"in_use" yaml:"in_use"`
	Free        uint64 `json:"free" yaml:"free"`
	Reserved    uint64 `json:"reserved" yaml:"reserved"`
	Unavailable uint64 `json:"unavailable" yaml:"unavailable"`
}

func (t *StatusTotals) add(status Status, n uint64) {
	switch status {
	case StatusInUse:
		t.InUse += n
	case StatusFree:
		t.Free += n
	case StatusReserved:
		t.Reserved += n
	case StatusUnavailable:
		t.Unavailable += n
	}
}

// calculateStatusTotals sums address counts per effective status. Descent
// stops at any node that is not partial: a uniform block is counted whole
// without visiting its subtree, so the four buckets always sum to the
// root's TotalIPs.
func calculateStatusTotals(tree *SubnetTree) StatusTotals {
	root := tree.Nodes[tree.RootID]
	totals := StatusTotals{Total: root.TotalIPs}
	tree.countInto(&totals, tree.RootID)
	return totals
}

func (t *SubnetTree) countInto(totals *StatusTotals, id string) {
	node := t.Nodes[id]
	if node.EffectiveStatus != StatusPartial {
		totals.add(node.EffectiveStatus, node.TotalIPs)
		return
	}
	for _, child := range node.Children {
		t.countInto(totals, child)
	}
}

// getFreeBlocks returns every free node whose prefix is in the requested
// set, ascending by start address. This is a flat scan rather than a
// short-circuiting walk: callers want each matching block, not a sum.
func getFreeBlocks(tree *SubnetTree, prefixes []int) []SubnetNode {
	wanted := make(map[int]bool, len(prefixes))
	for _, p := range prefixes {
		wanted[p] = true
	}
	var out []SubnetNode
	for _, node := range tree.Nodes {
		if node.EffectiveStatus == StatusFree && wanted[node.Prefix] {
			out = append(out, *node)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// FlatNode is a node paired with its depth below the root.
type FlatNode struct {
	SubnetNode
	Depth int
}

// flattenTree lists all nodes in preorder (lower half before upper) for
// table rendering.
func flattenTree(tree *SubnetTree) []FlatNode {
	out := make([]FlatNode, 0, len(tree.Nodes))
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		node := tree.Nodes[id]
		out = append(out, FlatNode{SubnetNode: *node, Depth: depth})
		for _, child := range node.Children {
			walk(child, depth+1)
		}
	}
	walk(tree.RootID, 0)
	return out
}

// nodesByStatus filters the flattened tree by effective status, keeping
// preorder. Empty status means no filter.
func nodesByStatus(tree *SubnetTree, status Status) []FlatNode {
	all := flattenTree(tree)
	if status == "" {
		return all
	}
	out := make([]FlatNode, 0, len(all))
	for _, n := range all {
		if n.EffectiveStatus == status {
			out = append(out, n)
		}
	}
	return out
}
