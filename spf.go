package p2pnet

// spf.go runs Dijkstra's algorithm over the LSDB per RFC 2328 §16.1,
// admitting an edge only after its two-way check passes, and computing
// equal-cost multipath next hops by enumerating every minimum-weight path
// gonum's Dijkstra tree can produce. Grounded on the teacher's routes.go
// (buildconnGraph/getSPTree idiom of converting a local graph
// representation into gonum.org/v1/gonum/graph/simple and calling
// graph/path.DijkstraFrom), generalized from routes.go's unweighted device
// graph to a metric-weighted, two-way-checked router graph plus
// stub-network leaves.
//
// The graph built by buildGraph keys nodes strictly by netip.Addr, one
// node per router or stub network. Two parallel PointToPoint links
// between the same pair of routers therefore collapse onto the same
// directed edge in simple.WeightedDirectedGraph, which has no capacity for
// parallel edges; SetWeightedEdge on the second link silently overwrites
// the first. Equal-cost multipath across genuinely distinct paths through
// distinct intermediate routers is computed correctly (see TestSPFECMP),
// but two direct parallel links between the same two routers are not
// distinguishable to this graph model and are represented as one edge.

import (
	"fmt"
	"math"
	"net/netip"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// SPFVertex is a vertex of a finished SPF computation (InSPFTree if it is
// reachable from the source, NotExplored otherwise), kept around for
// callers that want to inspect the tree beyond the forwarding table.
type SPFVertex struct {
	Status   SPFStatus
	ID       netip.Addr
	Distance float64
	IsRouter bool
}

// ForwardingEntry is one destination's result from an SPF computation: its
// cost from the source, every next-hop LinkID that achieves that cost
// (more than one means ECMP), and the outgoing device on the source router
// resolved for each one via GlobalRouter.OutgoingInterface. NextHops and
// NextHopDevices are parallel slices: NextHopDevices[i] is the device
// through which NextHops[i] is reached.
type ForwardingEntry struct {
	Destination    netip.Addr
	Distance       float64
	NextHops       []netip.Addr
	NextHopDevices []*PointToPointNetDevice
}

// SPFResult is the full outcome of running SPF from one source router: the
// per-vertex status the computation left behind, and the resulting
// forwarding table.
type SPFResult struct {
	Source     netip.Addr
	Vertices   map[netip.Addr]*SPFVertex
	Forwarding map[netip.Addr]*ForwardingEntry
}

// addrGraph is the gonum graph representation of an LSDB, plus the
// bookkeeping to translate between netip.Addr identities and the int64
// node IDs gonum requires.
type addrGraph struct {
	g       *simple.WeightedDirectedGraph
	idOf    map[netip.Addr]int64
	addrOf  map[int64]netip.Addr
	routers map[netip.Addr]bool
	next    int64
}

func newAddrGraph() *addrGraph {
	return &addrGraph{
		g:       simple.NewWeightedDirectedGraph(0, math.Inf(1)),
		idOf:    make(map[netip.Addr]int64),
		addrOf:  make(map[int64]netip.Addr),
		routers: make(map[netip.Addr]bool),
	}
}

func (ag *addrGraph) nodeFor(addr netip.Addr) simple.Node {
	id, ok := ag.idOf[addr]
	if !ok {
		id = ag.next
		ag.next++
		ag.idOf[addr] = id
		ag.addrOf[id] = addr
		ag.g.AddNode(simple.Node(id))
	}
	return simple.Node(id)
}

// hasBackLink reports whether the LSA advertised by "to" contains a
// PointToPointLink record whose LinkID names "from" — the two-way check
// RFC 2328 §16.1 requires before admitting an edge into the SPF graph.
func hasBackLink(db *LSDB, from, to netip.Addr) bool {
	lsa, ok := db.Lookup(to)
	if !ok {
		return false
	}
	for _, link := range lsa.Links {
		if link.Type == PointToPointLink && link.LinkID == from {
			return true
		}
	}
	return false
}

// buildGraph converts db into a gonum directed, weighted graph: one node
// per router and one leaf node per stub network, edges for every
// PointToPointLink record that passes the two-way check, and a one-way
// edge from a router to each of its StubNetwork leaves.
func buildGraph(db *LSDB) *addrGraph {
	ag := newAddrGraph()

	for _, routerID := range db.RouterIDs() {
		ag.routers[routerID] = true
		ag.nodeFor(routerID)
	}

	for _, routerID := range db.RouterIDs() {
		lsa, _ := db.Lookup(routerID)
		for _, link := range lsa.Links {
			switch link.Type {
			case PointToPointLink:
				if !hasBackLink(db, routerID, link.LinkID) {
					continue
				}
				from := ag.nodeFor(routerID)
				to := ag.nodeFor(link.LinkID)
				ag.g.SetWeightedEdge(simple.WeightedEdge{F: from, T: to, W: float64(link.Metric)})
			case StubNetworkLink:
				from := ag.nodeFor(routerID)
				to := ag.nodeFor(link.LinkID)
				ag.g.SetWeightedEdge(simple.WeightedEdge{F: from, T: to, W: float64(link.Metric)})
			}
		}
	}

	return ag
}

// convertPath turns a sequence of gonum graph nodes into netip.Addrs, per
// the teacher's convertNodeSeq idiom in routes.go.
func (ag *addrGraph) convertPath(nodes []graph.Node) []netip.Addr {
	route := make([]netip.Addr, 0, len(nodes))
	for _, n := range nodes {
		route = append(route, ag.addrOf[n.ID()])
	}
	return route
}

// ComputeSPF runs Dijkstra's algorithm rooted at source over the graph
// implied by db, resolves every next-hop LinkID to a concrete outgoing
// device on source via GlobalRouter.OutgoingInterface, installs the
// resulting routes onto source, and returns a forwarding table with
// equal-cost multipath next hops for every reachable destination.
// ComputeSPF clears any routes previously installed on source before
// installing the new ones.
func ComputeSPF(db *LSDB, source *GlobalRouter) *SPFResult {
	ag := buildGraph(db)

	sourceID := source.RouterID()
	result := &SPFResult{
		Source:     sourceID,
		Vertices:   make(map[netip.Addr]*SPFVertex),
		Forwarding: make(map[netip.Addr]*ForwardingEntry),
	}

	srcNode, known := ag.idOf[sourceID]
	if !known {
		return result
	}

	source.ClearRoutes()

	tree := path.DijkstraAllFrom(simple.Node(srcNode), ag.g)

	for id, addr := range ag.addrOf {
		dist := tree.WeightTo(id)
		status := NotExplored
		if !math.IsInf(dist, 1) {
			status = InSPFTree
		}
		result.Vertices[addr] = &SPFVertex{
			Status:   status,
			ID:       addr,
			Distance: dist,
			IsRouter: ag.routers[addr],
		}
	}
	result.Vertices[sourceID].Status = InSPFTree
	result.Vertices[sourceID].Distance = 0

	for id, addr := range ag.addrOf {
		if addr == sourceID {
			continue
		}
		dist := tree.WeightTo(id)
		if math.IsInf(dist, 1) {
			continue
		}

		allPaths, weight := tree.AllTo(id)
		if len(allPaths) == 0 {
			continue
		}
		_ = weight

		nextHopSet := make(map[netip.Addr]bool)
		for _, p := range allPaths {
			route := ag.convertPath(p)
			if len(route) < 2 {
				continue
			}
			nextHopSet[route[1]] = true
		}

		nextHops := make([]netip.Addr, 0, len(nextHopSet))
		for hop := range nextHopSet {
			nextHops = append(nextHops, hop)
		}
		sort.Slice(nextHops, func(i, j int) bool {
			return nextHops[i].String() < nextHops[j].String()
		})

		devices := make([]*PointToPointNetDevice, 0, len(nextHops))
		for _, hop := range nextHops {
			dev, ok := source.OutgoingInterface(hop)
			if !ok {
				panic(fmt.Errorf("p2pnet: SPF selected next hop %s for %s but router %s has no matching outgoing interface", hop, addr, sourceID))
			}
			devices = append(devices, dev)
		}
		source.InstallRoutes(addr, devices)

		result.Forwarding[addr] = &ForwardingEntry{
			Destination:    addr,
			Distance:       dist,
			NextHops:       nextHops,
			NextHopDevices: devices,
		}
	}

	return result
}

// RouteTables runs ComputeSPF once per router known to db, using routers to
// look up the GlobalRouter object backing each router ID so that every
// computation can resolve and install its own routes, and returns the full
// set of per-source results.
func RouteTables(db *LSDB, routers map[netip.Addr]*GlobalRouter) map[netip.Addr]*SPFResult {
	tables := make(map[netip.Addr]*SPFResult)
	for _, routerID := range db.RouterIDs() {
		router, ok := routers[routerID]
		if !ok {
			panic(fmt.Errorf("p2pnet: RouteTables has no GlobalRouter for router ID %s advertised in the LSDB", routerID))
		}
		tables[routerID] = ComputeSPF(db, router)
	}
	return tables
}
