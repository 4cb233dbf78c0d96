package p2pnet

// packet.go holds the Packet type carried across queues, channels, and
// devices. A Packet is immutable from the device's perspective once handed
// off; ownership moves from sender's upper layer -> device -> channel ->
// peer device -> peer's upper layer, and no node holds a packet twice.

import (
	"sync/atomic"
)

// nxtPacketUID is a process-wide monotonic counter used to hand out unique
// packet identifiers.
var nxtPacketUID uint64

// nextPacketUID returns a fresh, process-wide unique packet identifier.
func nextPacketUID() uint64 {
	return atomic.AddUint64(&nxtPacketUID, 1)
}

// Packet is an opaque payload with a unique identifier and a size in bytes.
// The Payload field is carried but never interpreted by this package.
type Packet struct {
	UID     uint64
	Size    int // bytes
	Payload any
}

// CreatePacket is a constructor. Size must be non-negative; callers at the
// application boundary are responsible for that invariant since this
// package cannot see the payload's structure.
func CreatePacket(size int, payload any) *Packet {
	return &Packet{
		UID:     nextPacketUID(),
		Size:    size,
		Payload: payload,
	}
}
