package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidPrefix     = errors.New("invalid prefix")
	ErrInvalidTreeConfig = errors.New("invalid tree config")
)

// AddressRange is a normalized CIDR block. Start always equals Network
// (host bits cleared); Size is 64-bit because a /0 spans 2^32 addresses.
type AddressRange struct {
	Network uint32
	Prefix  int
	Start   uint32
	End     uint32
	Size    uint64
}

func (r AddressRange) String() string {
	return u32ToDotted(r.Network) + "/" + itoa(r.Prefix)
}

// parseCIDR normalizes "A.B.C.D/P" into its enclosing network range.
// Host bits in the input are cleared, so 10.0.0.5/24 and 10.0.0.0/24
// parse to the same range.
func parseCIDR(raw string) (AddressRange, error) {
	raw = strings.TrimSpace(raw)
	slash := strings.IndexByte(raw, '/')
	if slash < 0 {
		return AddressRange{}, fmt.Errorf("%w: %q has no prefix length", ErrInvalidPrefix, raw)
	}
	bits, err := strconv.Atoi(raw[slash+1:])
	if err != nil || bits < 0 || bits > 32 {
		return AddressRange{}, fmt.Errorf("%w: %q", ErrInvalidPrefix, raw[slash+1:])
	}
	addr, err := parseIPv4(raw[:slash])
	if err != nil {
		return AddressRange{}, err
	}
	network := networkAddress(addr, bits)
	size := uint64(1) << (32 - bits)
	return AddressRange{
		Network: network,
		Prefix:  bits,
		Start:   network,
		End:     network + uint32(size-1),
		Size:    size,
	}, nil
}

func parseIPv4(raw string) (uint32, error) {
	parts := strings.Split(strings.TrimSpace(raw), ".")
	if len(parts) != 4 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAddress, raw)
	}
	var v uint32
	for _, part := range parts {
		oct, err := strconv.Atoi(part)
		if err != nil || oct < 0 || oct > 255 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAddress, raw)
		}
		v = v<<8 | uint32(oct)
	}
	return v, nil
}

func prefixMask(bits int) uint32 {
	// shift count 32 yields 0, which is the correct /0 mask
	return ^uint32(0) << (32 - uint(bits))
}

func networkAddress(addr uint32, bits int) uint32 {
	return addr & prefixMask(bits)
}

func broadcastAddress(addr uint32, bits int) uint32 {
	return networkAddress(addr, bits) | ^prefixMask(bits)
}

func u32ToDotted(v uint32) string {
	return itoa(int(v>>24)) + "." + itoa(int(v>>16&0xff)) + "." + itoa(int(v>>8&0xff)) + "." + itoa(int(v&0xff))
}

func maskString(bits int) string {
	return u32ToDotted(prefixMask(bits))
}

func wildcardString(bits int) string {
	return u32ToDotted(^prefixMask(bits))
}

// binaryString renders a 32-bit value as dotted binary octets,
// e.g. 00001010.00000001.11110000.00000000.
func binaryString(v uint32) string {
	var b strings.Builder
	for i := 3; i >= 0; i-- {
		oct := v >> (uint(i) * 8) & 0xff
		for bit := 7; bit >= 0; bit-- {
			if oct>>uint(bit)&1 == 1 {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		if i > 0 {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func itoa(i int) string { return strconv.Itoa(i) }

func u64toa(v uint64) string { return strconv.FormatUint(v, 10) }
