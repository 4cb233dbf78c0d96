package p2pnet

import (
	"net/netip"
	"testing"

	"github.com/iti/evt/evtm"
)

// linkRouters attaches two freshly created router-bearing nodes over one
// point-to-point channel, mirroring what config.go's Build does for a
// single ChannelDesc.
func linkRouters(t *testing.T, evtMgr *evtm.EventManager, env *RoutingEnvironment, nameA, addrA, nameB, addrB string) (*Node, *Node) {
	t.Helper()

	nodeA := CreateNode(1, nameA)
	routerA := CreateGlobalRouter(env)
	nodeA.SetRouter(routerA)
	devA := CreatePointToPointNetDevice(evtMgr, 1, "eth0", Mbps(10))
	nodeA.AddDevice(devA)
	routerA.SetInterfaceAddr(devA, addr(addrA), 30)

	nodeB := CreateNode(2, nameB)
	routerB := CreateGlobalRouter(env)
	nodeB.SetRouter(routerB)
	devB := CreatePointToPointNetDevice(evtMgr, 2, "eth0", Mbps(10))
	nodeB.AddDevice(devB)
	routerB.SetInterfaceAddr(devB, addr(addrB), 30)

	ch := CreatePointToPointChannel(evtMgr, Mbps(10), 0)
	devA.Attach(ch)
	devB.Attach(ch)

	return nodeA, nodeB
}

func TestDiscoverLSAsPointToPointAdjacency(t *testing.T) {
	evtMgr := evtm.New()
	env := NewRoutingEnvironment()
	nodeA, nodeB := linkRouters(t, evtMgr, env, "A", "10.0.0.1", "B", "10.0.0.2")

	routerA, _ := nodeA.Router()
	routerB, _ := nodeB.Router()

	routerA.DiscoverLSAs()
	routerB.DiscoverLSAs()

	lsaA, _ := routerA.GetLSA(0)

	var sawPTP bool
	for _, link := range lsaA.Links {
		if link.Type == PointToPointLink {
			sawPTP = true
			if link.LinkID != routerB.RouterID() {
				t.Fatalf("expected PointToPoint LinkID to be B's router ID, got %s", link.LinkID)
			}
		}
	}
	if !sawPTP {
		t.Fatalf("expected a PointToPoint link record toward B")
	}
}

func TestDiscoverLSAsSkipsChannelWithoutBothEndpoints(t *testing.T) {
	evtMgr := evtm.New()
	env := NewRoutingEnvironment()

	node := CreateNode(1, "A")
	router := CreateGlobalRouter(env)
	node.SetRouter(router)
	dev := CreatePointToPointNetDevice(evtMgr, 1, "eth0", Mbps(10))
	node.AddDevice(dev)
	router.SetInterfaceAddr(dev, addr("10.0.0.1"), 30)

	ch := CreatePointToPointChannel(evtMgr, Mbps(10), 0)
	dev.Attach(ch)
	// Only one endpoint ever attaches: the channel has no peer.

	router.DiscoverLSAs()
	lsa, _ := router.GetLSA(0)
	if len(lsa.Links) != 0 {
		t.Fatalf("expected zero link records for a device whose channel has no peer attached, got %d", len(lsa.Links))
	}
}

func TestBuildLSDBAndRouteTables(t *testing.T) {
	evtMgr := evtm.New()
	env := NewRoutingEnvironment()
	topo := CreateTopology()

	nodeA, nodeB := linkRouters(t, evtMgr, env, "A", "10.0.0.1", "B", "10.0.0.2")
	topo.AddNode(nodeA)
	topo.AddNode(nodeB)

	db := BuildLSDB(topo)
	if db.Len() != 2 {
		t.Fatalf("expected 2 LSAs in the database, got %d", db.Len())
	}

	routerA, _ := nodeA.Router()
	routerB, _ := nodeB.Router()
	routers := map[netip.Addr]*GlobalRouter{
		routerA.RouterID(): routerA,
		routerB.RouterID(): routerB,
	}

	tables := RouteTables(db, routers)

	toB, ok := tables[routerA.RouterID()].Forwarding[routerB.RouterID()]
	if !ok {
		t.Fatalf("expected A's table to have a route to B")
	}
	if toB.Distance != 1 {
		t.Fatalf("expected distance 1 between directly connected routers, got %v", toB.Distance)
	}
	if len(toB.NextHopDevices) != 1 {
		t.Fatalf("expected exactly one resolved outgoing device toward B, got %d", len(toB.NextHopDevices))
	}

	devs, ok := routerA.RoutesTo(routerB.RouterID())
	if !ok || len(devs) != 1 || devs[0] != toB.NextHopDevices[0] {
		t.Fatalf("expected RouteTables to have installed the same device onto router A")
	}
}
