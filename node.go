package p2pnet

// node.go supplies the minimal "node" aggregate that hosts network
// devices and, optionally, a router. It exists only so that
// PointToPointNetDevices have somewhere to live, and so LSDB construction
// (walking every node) and GlobalRouter's neighbor-is-a-router check have
// something concrete to walk, mirroring the teacher's
// topoDev/topoDevById bookkeeping in mrnes.go without importing its full
// IPv4/application-layer machinery.

import "fmt"

// Node is a minimal network endpoint: a name, a unique id, the
// PointToPointNetDevices it hosts, and an optional GlobalRouter aggregate.
// Presence of a router indicates routerhood.
type Node struct {
	name    string
	id      int
	devices []*PointToPointNetDevice
	router  *GlobalRouter
}

// CreateNode is a constructor.
func CreateNode(id int, name string) *Node {
	return &Node{name: name, id: id, devices: make([]*PointToPointNetDevice, 0)}
}

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// ID returns the node's unique integer id.
func (n *Node) ID() int { return n.id }

// AddDevice attaches dev to this node and sets dev's owning node backlink.
func (n *Node) AddDevice(dev *PointToPointNetDevice) {
	if dev.node != nil {
		panic(fmt.Errorf("p2pnet: device %s already belongs to node %s", dev.name, dev.node.name))
	}
	dev.node = n
	n.devices = append(n.devices, dev)
}

// Devices returns the node's list of network devices.
func (n *Node) Devices() []*PointToPointNetDevice {
	return n.devices
}

// SetRouter aggregates a GlobalRouter onto this node.
func (n *Node) SetRouter(r *GlobalRouter) {
	r.node = n
	n.router = r
}

// Router returns the node's GlobalRouter aggregate, if any.
func (n *Node) Router() (*GlobalRouter, bool) {
	return n.router, n.router != nil
}

// Topology is the node-list collaborator that BuildLSDB walks to discover
// every router in a network.
type Topology struct {
	nodes []*Node
}

// CreateTopology is a constructor for an empty node list.
func CreateTopology() *Topology {
	return &Topology{nodes: make([]*Node, 0)}
}

// AddNode registers n with the topology.
func (t *Topology) AddNode(n *Node) {
	t.nodes = append(t.nodes, n)
}

// Nodes returns every node registered with the topology.
func (t *Topology) Nodes() []*Node {
	return t.nodes
}
