package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubnetDetailsHostCounts(t *testing.T) {
	r, err := parseCIDR("192.168.1.0/24")
	require.NoError(t, err)
	d := subnetDetails(r)
	assert.Equal(t, uint64(254), d.UsableHosts)
	assert.Equal(t, "192.168.1.1", d.HostMin)
	assert.Equal(t, "192.168.1.254", d.HostMax)
	assert.Equal(t, "255.255.255.0", d.Netmask)
	assert.Equal(t, "0.0.0.255", d.Wildcard)

	r, err = parseCIDR("10.0.0.0/31")
	require.NoError(t, err)
	d = subnetDetails(r)
	assert.Equal(t, uint64(2), d.UsableHosts)
	assert.Equal(t, "10.0.0.0", d.HostMin)
	assert.Equal(t, "10.0.0.1", d.HostMax)

	r, err = parseCIDR("10.0.0.7/32")
	require.NoError(t, err)
	d = subnetDetails(r)
	assert.Equal(t, uint64(1), d.UsableHosts)
	assert.Equal(t, d.HostMin, d.HostMax)
}

func TestDivideSubnet(t *testing.T) {
	r, err := parseCIDR("10.0.0.0/24")
	require.NoError(t, err)
	lower, upper, err := divideSubnet(r)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/25", lower.String())
	assert.Equal(t, "10.0.0.128/25", upper.String())
	assert.Equal(t, r.Size, lower.Size+upper.Size)
	assert.Equal(t, lower.End+1, upper.Start)

	_, _, err = divideSubnet(AddressRange{Prefix: 32, Size: 1})
	assert.ErrorIs(t, err, ErrInvalidPrefix)
}

func TestJoinSubnetAnchorsToParent(t *testing.T) {
	for _, raw := range []string{"10.0.0.0/25", "10.0.0.128/25"} {
		r, err := parseCIDR(raw)
		require.NoError(t, err)
		parent, err := joinSubnet(r)
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.0/24", parent.String(), raw)
	}

	r, err := parseCIDR("0.0.0.0/0")
	require.NoError(t, err)
	_, err = joinSubnet(r)
	assert.ErrorIs(t, err, ErrInvalidPrefix)
}
