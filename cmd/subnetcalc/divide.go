package main

import "fmt"

// SubnetDetails is the single-subnet report shown on the calculator page.
// UsableHosts follows the classic rules: /31 counts both addresses
// (point-to-point), /32 counts one, everything else excludes network and
// broadcast.
type SubnetDetails struct {
	CIDR        string `json:"cidr" yaml:"cidr"`
	Network     string `json:"network" yaml:"network"`
	Broadcast   string `json:"broadcast" yaml:"broadcast"`
	Netmask     string `json:"netmask" yaml:"netmask"`
	Wildcard    string `json:"wildcard" yaml:"wildcard"`
	HostMin     string `json:"host_min" yaml:"host_min"`
	HostMax     string `json:"host_max" yaml:"host_max"`
	TotalIPs    uint64 `json:"total_ips" yaml:"total_ips"`
	UsableHosts uint64 `json:"usable_hosts" yaml:"usable_hosts"`
	BinaryAddr  string `json:"binary_addr" yaml:"binary_addr"`
	BinaryMask  string `json:"binary_mask" yaml:"binary_mask"`
}

func subnetDetails(r AddressRange) SubnetDetails {
	d := SubnetDetails{
		CIDR:       r.String(),
		Network:    u32ToDotted(r.Network),
		Broadcast:  u32ToDotted(r.End),
		Netmask:    maskString(r.Prefix),
		Wildcard:   wildcardString(r.Prefix),
		TotalIPs:   r.Size,
		BinaryAddr: binaryString(r.Network),
		BinaryMask: binaryString(prefixMask(r.Prefix)),
	}
	switch r.Prefix {
	case 32:
		d.HostMin, d.HostMax = d.Network, d.Network
		d.UsableHosts = 1
	case 31:
		d.HostMin, d.HostMax = d.Network, d.Broadcast
		d.UsableHosts = 2
	default:
		d.HostMin = u32ToDotted(r.Start + 1)
		d.HostMax = u32ToDotted(r.End - 1)
		d.UsableHosts = r.Size - 2
	}
	return d
}

// divideSubnet splits a block into its two equal halves one prefix deeper.
func divideSubnet(r AddressRange) (AddressRange, AddressRange, error) {
	if r.Prefix >= 32 {
		return AddressRange{}, AddressRange{}, fmt.Errorf("%w: cannot divide a /32", ErrInvalidPrefix)
	}
	half := r.Size / 2
	lower := AddressRange{
		Network: r.Start, Prefix: r.Prefix + 1,
		Start: r.Start, End: r.Start + uint32(half-1), Size: half,
	}
	upper := AddressRange{
		Network: r.Start + uint32(half), Prefix: r.Prefix + 1,
		Start: r.Start + uint32(half), End: r.End, Size: half,
	}
	return lower, upper, nil
}

// joinSubnet widens a block to its parent one prefix up, anchoring to the
// parent's network boundary so either sibling joins to the same parent.
func joinSubnet(r AddressRange) (AddressRange, error) {
	if r.Prefix <= 0 {
		return AddressRange{}, fmt.Errorf("%w: cannot join a /0", ErrInvalidPrefix)
	}
	return parseCIDR(u32ToDotted(r.Network) + "/" + itoa(r.Prefix-1))
}
