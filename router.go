package p2pnet

// router.go implements GlobalRouterLinkRecord, GlobalRouterLSA, and
// GlobalRouter, grounded directly on
// original_source/src/routing/global-routing/global-router-interface.h
// (RFC 2328-style link records and LSAs) and on the teacher's own
// convention of walking a device's attached channel to find its peer
// (net.go's intrfcStruct.cable/carry linkage).

import (
	"fmt"
	"net/netip"
)

// LinkType enumerates the kinds of link a GlobalRouterLinkRecord can
// describe, following RFC 2328's OSPF LSA link types.
type LinkType int

const (
	UnknownLink LinkType = iota
	PointToPointLink
	StubNetworkLink
	TransitNetworkLink // reserved, unused
	VirtualLink        // reserved, unused
)

// GlobalRouterLinkRecord is a single link record in a router's LSA. The
// LinkID/LinkData fields carry different meanings depending on Type: for a
// PointToPoint link, LinkID is the neighbor's router ID and LinkData is
// this router's own local interface address; for a StubNetwork link,
// LinkID is the subnet address and LinkData is the subnet mask.
type GlobalRouterLinkRecord struct {
	Type     LinkType
	LinkID   netip.Addr
	LinkData netip.Addr
	Metric   int
}

// SPFStatus is the tristate flag used by the SPF computation to mark
// whether a vertex is new, a shortest-path candidate, or settled into the
// SPF tree, following RFC 2328's SPF calculation states.
type SPFStatus int

const (
	NotExplored SPFStatus = iota
	Candidate
	InSPFTree
)

// GlobalRouterLSA is one router's Link State Advertisement: its own router
// ID as both LinkStateID and AdvertisingRouter, plus the link records
// DiscoverLSAs assembled for it.
type GlobalRouterLSA struct {
	Status            SPFStatus
	LinkStateID       netip.Addr
	AdvertisingRouter netip.Addr
	Links             []GlobalRouterLinkRecord
}

// DefaultPointToPointMetric is the metric assigned to a PointToPoint link
// record when the caller does not configure one.
const DefaultPointToPointMetric = 1

// DefaultStubMetric is the metric assigned to a StubNetwork link record.
const DefaultStubMetric = 1

// DefaultSubnetMaskBits is the prefix length used to derive a stub
// network's subnet address from an interface's IPv4 address when no mask
// width is configured for that interface.
const DefaultSubnetMaskBits = 24

// GlobalRouter is a per-node aggregate that discovers the node's link
// adjacencies and assembles them into a single LSA advertised under the
// node's allocated router ID.
type GlobalRouter struct {
	node     *Node
	routerID netip.Addr

	ifAddrs  map[*PointToPointNetDevice]netip.Addr
	maskBits map[*PointToPointNetDevice]int

	metric int

	lsas   []*GlobalRouterLSA
	routes map[netip.Addr][]*PointToPointNetDevice
}

// GlobalRouterOption configures a GlobalRouter at construction time.
type GlobalRouterOption func(*GlobalRouter)

// WithPointToPointMetric overrides the default metric this router assigns
// to its own PointToPoint link records. StubNetwork records always carry
// DefaultStubMetric.
func WithPointToPointMetric(metric int) GlobalRouterOption {
	return func(gr *GlobalRouter) { gr.metric = metric }
}

// CreateGlobalRouter is a constructor. The router ID is allocated from env
// in the order routers are constructed.
func CreateGlobalRouter(env *RoutingEnvironment, opts ...GlobalRouterOption) *GlobalRouter {
	gr := &GlobalRouter{
		routerID: env.AllocateRouterID(),
		ifAddrs:  make(map[*PointToPointNetDevice]netip.Addr),
		maskBits: make(map[*PointToPointNetDevice]int),
		metric:   DefaultPointToPointMetric,
		routes:   make(map[netip.Addr][]*PointToPointNetDevice),
	}
	for _, opt := range opts {
		opt(gr)
	}
	return gr
}

// RouterID returns this router's allocated router ID.
func (gr *GlobalRouter) RouterID() netip.Addr { return gr.routerID }

// SetInterfaceAddr configures the local IPv4 address (and subnet mask
// width) that DiscoverLSAs should report for dev. An interface with no
// configured address is skipped silently during discovery.
func (gr *GlobalRouter) SetInterfaceAddr(dev *PointToPointNetDevice, addr netip.Addr, maskBits int) {
	gr.ifAddrs[dev] = addr
	gr.maskBits[dev] = maskBits
}

// peerRouter returns the GlobalRouter aggregated on the node at the other
// end of dev's attached channel, and true, iff that node has one.
func peerRouter(dev *PointToPointNetDevice) (*GlobalRouter, *PointToPointNetDevice, bool) {
	ch := dev.Channel()
	if ch == nil {
		return nil, nil, false
	}
	if ch.attached() != 2 {
		return nil, nil, false
	}
	peer, ok := ch.peerOf(dev)
	if !ok || peer.node == nil {
		return nil, nil, false
	}
	router, isRouter := peer.node.Router()
	return router, peer, isRouter
}

// OutgoingInterface returns the local device whose own link record, as
// DiscoverLSAs would emit it, carries linkID as its LinkID: either the
// PointToPoint device facing a neighbor router, or the device attached to
// a directly-connected stub network. This is how the SPF engine turns the
// first hop of a shortest path (always the LinkID of one of this router's
// own link records) into a concrete outgoing device to install a route
// against.
func (gr *GlobalRouter) OutgoingInterface(linkID netip.Addr) (*PointToPointNetDevice, bool) {
	for _, dev := range gr.node.Devices() {
		if peerRtr, _, isRouter := peerRouter(dev); isRouter && peerRtr.RouterID() == linkID {
			return dev, true
		}
		if localAddr, ok := gr.ifAddrs[dev]; ok {
			maskBits, ok := gr.maskBits[dev]
			if !ok {
				maskBits = DefaultSubnetMaskBits
			}
			if subnetOf(localAddr, maskBits) == linkID {
				return dev, true
			}
		}
	}
	return nil, false
}

// InstallRoutes records devices as the outgoing devices for traffic
// addressed to dest. More than one device means the destination is
// reachable by equal-cost multipath; it overwrites any route previously
// installed for dest.
func (gr *GlobalRouter) InstallRoutes(dest netip.Addr, devices []*PointToPointNetDevice) {
	gr.routes[dest] = devices
}

// RoutesTo returns the devices installed for dest by InstallRoutes, and
// true, iff a route has been installed.
func (gr *GlobalRouter) RoutesTo(dest netip.Addr) ([]*PointToPointNetDevice, bool) {
	devs, ok := gr.routes[dest]
	return devs, ok
}

// ClearRoutes discards every route installed on this router, so that a
// fresh RouteTables computation starts from an empty forwarding table.
func (gr *GlobalRouter) ClearRoutes() {
	gr.routes = make(map[netip.Addr][]*PointToPointNetDevice)
}

// DiscoverLSAs rebuilds this router's LSA by walking every NetDevice
// attached to its node. It emits exactly one LSA under this router's own
// ID, containing one PointToPoint record per up point-to-point adjacency
// to another router, plus one StubNetwork record per configured interface
// whose channel has both endpoints attached (whether the peer is a router
// or not).
func (gr *GlobalRouter) DiscoverLSAs() int {
	if gr.node == nil {
		panic(fmt.Errorf("p2pnet: GlobalRouter.DiscoverLSAs called before the router was aggregated to a node"))
	}

	lsa := &GlobalRouterLSA{
		Status:            NotExplored,
		LinkStateID:       gr.routerID,
		AdvertisingRouter: gr.routerID,
		Links:             make([]GlobalRouterLinkRecord, 0),
	}

	for _, dev := range gr.node.Devices() {
		localAddr, hasAddr := gr.ifAddrs[dev]
		if !hasAddr {
			// interface has no IPv4 configured: skip silently
			continue
		}

		ch := dev.Channel()
		if ch == nil || ch.attached() != 2 {
			// device not attached to a channel, or its channel doesn't yet
			// have a peer on the other end: skip the device entirely, no
			// record of either type.
			continue
		}

		maskBits, ok := gr.maskBits[dev]
		if !ok {
			maskBits = DefaultSubnetMaskBits
		}

		peerRtr, _, isRouter := peerRouter(dev)
		if isRouter {
			// The PointToPoint record only needs the neighbor's router ID
			// and this router's own local address; whether the peer's
			// interface happens to have an address configured is the
			// peer's own concern, not a precondition for this side's link.
			lsa.Links = append(lsa.Links, GlobalRouterLinkRecord{
				Type:     PointToPointLink,
				LinkID:   peerRtr.RouterID(),
				LinkData: localAddr,
				Metric:   gr.metric,
			})
		}

		lsa.Links = append(lsa.Links, GlobalRouterLinkRecord{
			Type:     StubNetworkLink,
			LinkID:   subnetOf(localAddr, maskBits),
			LinkData: maskAddr(maskBits),
			Metric:   DefaultStubMetric,
		})
	}

	gr.lsas = []*GlobalRouterLSA{lsa}
	return len(gr.lsas)
}

// GetNumLSAs returns the number of LSAs this router currently advertises.
func (gr *GlobalRouter) GetNumLSAs() int {
	return len(gr.lsas)
}

// GetLSA returns the n-th advertisement by insertion order.
func (gr *GlobalRouter) GetLSA(n int) (*GlobalRouterLSA, bool) {
	if n < 0 || n >= len(gr.lsas) {
		return nil, false
	}
	return gr.lsas[n], true
}
