package p2pnet

// environment.go implements RoutingEnvironment, the process-wide state
// backing a simulation run: a monotonic router-ID allocator seeded at
// 0.0.0.1, passed explicitly to each GlobalRouter at construction rather
// than mutated from a package-level global.

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// RoutingEnvironment allocates router IDs for the lifetime of one
// simulation run. Its counter is mutated only at router construction time,
// never from event callbacks.
type RoutingEnvironment struct {
	next uint32
}

// NewRoutingEnvironment is a constructor. The first router ID it hands out
// is 0.0.0.1.
func NewRoutingEnvironment() *RoutingEnvironment {
	return &RoutingEnvironment{next: 1}
}

// AllocateRouterID hands out the next router ID in the dense, monotonic
// sequence 0.0.0.1, 0.0.0.2, ....
func (re *RoutingEnvironment) AllocateRouterID() netip.Addr {
	if re.next == 0 {
		panic(fmt.Errorf("p2pnet: RoutingEnvironment router-ID space exhausted"))
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], re.next)
	re.next++
	return netip.AddrFrom4(b)
}

// subnetOf zeroes the host bits of addr given a mask width in bits (24
// for a /24), used by GlobalRouter.DiscoverLSAs to derive a stub network's
// link id from an interface address. maskBits must be in [0,32].
func subnetOf(addr netip.Addr, maskBits int) netip.Addr {
	if !addr.Is4() {
		panic(fmt.Errorf("p2pnet: subnetOf requires an IPv4 address, got %v", addr))
	}
	prefix := netip.PrefixFrom(addr, maskBits)
	return prefix.Masked().Addr()
}

// maskAddr renders a /maskBits IPv4 mask as a netip.Addr, e.g. 24 ->
// 255.255.255.0, matching the OSPF convention of storing the mask itself
// in a StubNetwork record's LinkData field.
func maskAddr(maskBits int) netip.Addr {
	if maskBits < 0 || maskBits > 32 {
		panic(fmt.Errorf("p2pnet: invalid mask width %d", maskBits))
	}
	var v uint32
	if maskBits > 0 {
		v = ^uint32(0) << (32 - maskBits)
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b)
}
