package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTotalsDemoPlan(t *testing.T) {
	tree, err := buildSubnetTree(defaultPlanConfig())
	require.NoError(t, err)

	totals := calculateStatusTotals(tree)
	assert.Equal(t, uint64(4096), totals.Total)
	assert.Equal(t, uint64(1888), totals.InUse)
	assert.Equal(t, uint64(160), totals.Free)
	assert.Equal(t, uint64(0), totals.Reserved)
	assert.Equal(t, uint64(2048), totals.Unavailable)
	assert.Equal(t, totals.Total, totals.InUse+totals.Free+totals.Reserved+totals.Unavailable)
}

func TestStatusTotalsAlwaysSumToRoot(t *testing.T) {
	configs := []TreePlanConfig{
		{RootCIDR: "10.0.0.0/24", MinPrefix: 28},
		{RootCIDR: "10.0.0.0/24", MinPrefix: 28, AssignedCIDRs: []string{"10.0.0.0/25", "10.0.0.192/27"}},
		{
			RootCIDR: "192.168.0.0/16", MinPrefix: 24,
			AssignedCIDRs: []string{"192.168.0.0/17"},
			InUseCIDRs:    []string{"192.168.0.0/18"},
			ReservedCIDRs: []string{"192.168.64.0/19"},
		},
	}
	for _, cfg := range configs {
		tree, err := buildSubnetTree(cfg)
		require.NoError(t, err, cfg.RootCIDR)
		totals := calculateStatusTotals(tree)
		root := tree.Nodes[tree.RootID]
		assert.Equal(t, root.TotalIPs, totals.Total, cfg.RootCIDR)
		assert.Equal(t, totals.Total, totals.InUse+totals.Free+totals.Reserved+totals.Unavailable, cfg.RootCIDR)
	}
}

func TestStatusTotalsAfterMutations(t *testing.T) {
	tree, err := buildSubnetTree(TreePlanConfig{
		RootCIDR: "10.0.0.0/22", MinPrefix: 26,
		AssignedCIDRs: []string{"10.0.0.0/22"},
	})
	require.NoError(t, err)

	tree = updateNodeStatus(tree, "10.0.1.0/24", StatusInUse, true)
	tree = updateNodeStatus(tree, "10.0.2.0/25", StatusReserved, true)
	totals := calculateStatusTotals(tree)
	assert.Equal(t, uint64(1024), totals.Total)
	assert.Equal(t, uint64(256), totals.InUse)
	assert.Equal(t, uint64(128), totals.Reserved)
	assert.Equal(t, uint64(640), totals.Free)
	assert.Equal(t, uint64(0), totals.Unavailable)
}

func TestGetFreeBlocks(t *testing.T) {
	tree, err := buildSubnetTree(defaultPlanConfig())
	require.NoError(t, err)

	blocks := getFreeBlocks(tree, []int{25, 26, 27})
	require.NotEmpty(t, blocks)
	for i, b := range blocks {
		assert.Equal(t, StatusFree, b.EffectiveStatus, b.ID)
		assert.Contains(t, []int{25, 26, 27}, b.Prefix, b.ID)
		if i > 0 {
			assert.GreaterOrEqual(t, b.Start, blocks[i-1].Start)
		}
	}
	// the free space is 10.1.249.96/27 plus everything under 10.1.249.128/25
	assert.Len(t, blocks, 8)
	assert.Equal(t, "10.1.249.96/27", blocks[0].ID)

	only25 := getFreeBlocks(tree, []int{25})
	require.Len(t, only25, 1)
	assert.Equal(t, "10.1.249.128/25", only25[0].ID)

	assert.Empty(t, getFreeBlocks(tree, []int{21}))
	assert.Empty(t, getFreeBlocks(tree, nil))
}

func TestFlattenTreePreorder(t *testing.T) {
	tree, err := buildSubnetTree(TreePlanConfig{RootCIDR: "10.0.0.0/24", MinPrefix: 26})
	require.NoError(t, err)

	rows := flattenTree(tree)
	require.Len(t, rows, len(tree.Nodes))
	assert.Equal(t, tree.RootID, rows[0].ID)
	assert.Equal(t, 0, rows[0].Depth)

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
		assert.Equal(t, row.Prefix-24, row.Depth, row.ID)
	}
	assert.Equal(t, []string{
		"10.0.0.0/24",
		"10.0.0.0/25", "10.0.0.0/26", "10.0.0.64/26",
		"10.0.0.128/25", "10.0.0.128/26", "10.0.0.192/26",
	}, ids)
}

func TestNodesByStatus(t *testing.T) {
	tree, err := buildSubnetTree(TreePlanConfig{
		RootCIDR: "10.0.0.0/24", MinPrefix: 26,
		AssignedCIDRs: []string{"10.0.0.0/25"},
	})
	require.NoError(t, err)

	free := nodesByStatus(tree, StatusFree)
	require.Len(t, free, 3)
	for _, n := range free {
		assert.Equal(t, StatusFree, n.EffectiveStatus, n.ID)
	}
	assert.Len(t, nodesByStatus(tree, ""), len(tree.Nodes))
}
