package p2pnet

// config.go implements a declarative, pointer-free topology description
// following desc-topo.go's Desc/Frame convention: everything here is a
// plain, serializable "Desc" struct; Build walks the Desc tree once to
// construct the pointer-based runtime objects (Node, PointToPointNetDevice,
// PointToPointChannel, GlobalRouter) defined elsewhere in this package.
// Serialization selects YAML or JSON by file extension, matching
// DevExecList.WriteToFile/ReadDevExecList in desc-topo.go.

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"os"
	"path"
	"time"

	"github.com/iti/evt/evtm"
	"gopkg.in/yaml.v3"
)

// DeviceDesc describes one PointToPointNetDevice to be created on a node.
// DataRateMbps of zero leaves the device's rate to be set later, e.g. by
// the channel it is attached to. QueueLen of zero means Unbounded.
type DeviceDesc struct {
	Name         string  `json:"name" yaml:"name"`
	ID           int     `json:"id" yaml:"id"`
	DataRateMbps float64 `json:"datarate_mbps" yaml:"datarate_mbps"`
	QueueLen     int     `json:"queuelen" yaml:"queuelen"`
	IfAddr       string  `json:"ifaddr" yaml:"ifaddr"`
	MaskBits     int     `json:"maskbits" yaml:"maskbits"`
}

// NodeDesc describes one Node and the devices it hosts. IsRouter requests
// a GlobalRouter aggregate.
type NodeDesc struct {
	Name     string       `json:"name" yaml:"name"`
	ID       int          `json:"id" yaml:"id"`
	IsRouter bool         `json:"isrouter" yaml:"isrouter"`
	Devices  []DeviceDesc `json:"devices" yaml:"devices"`
}

// ChannelDesc describes one PointToPointChannel and the two "node:device"
// endpoints it attaches.
type ChannelDesc struct {
	Name         string  `json:"name" yaml:"name"`
	DataRateMbps float64 `json:"datarate_mbps" yaml:"datarate_mbps"`
	DelayUsec    float64 `json:"delayusec" yaml:"delayusec"`
	EndpointA    string  `json:"endpointa" yaml:"endpointa"`
	EndpointB    string  `json:"endpointb" yaml:"endpointb"`
}

// TopoConfig is the top-level, fully pointer-free description of a
// topology: a set of nodes (each with its devices) and the channels
// wiring device pairs together.
type TopoConfig struct {
	Name     string        `json:"name" yaml:"name"`
	Nodes    []NodeDesc    `json:"nodes" yaml:"nodes"`
	Channels []ChannelDesc `json:"channels" yaml:"channels"`
}

// CreateTopoConfig is an initialization constructor.
func CreateTopoConfig(name string) *TopoConfig {
	return &TopoConfig{Name: name, Nodes: make([]NodeDesc, 0), Channels: make([]ChannelDesc, 0)}
}

// AddNode appends a NodeDesc to the configuration.
func (tc *TopoConfig) AddNode(nd NodeDesc) {
	tc.Nodes = append(tc.Nodes, nd)
}

// AddChannel appends a ChannelDesc to the configuration.
func (tc *TopoConfig) AddChannel(cd ChannelDesc) {
	tc.Channels = append(tc.Channels, cd)
}

// WriteToFile serializes tc to filename, choosing YAML or JSON by
// extension, matching DevExecList.WriteToFile's convention.
func (tc *TopoConfig) WriteToFile(filename string) error {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error

	switch pathExt {
	case ".yaml", ".YAML", ".yml":
		bytes, merr = yaml.Marshal(*tc)
	case ".json", ".JSON":
		bytes, merr = json.MarshalIndent(*tc, "", "\t")
	default:
		return fmt.Errorf("p2pnet: unrecognized topology config extension %q", pathExt)
	}
	if merr != nil {
		return merr
	}

	return os.WriteFile(filename, bytes, 0644)
}

// ReadTopoConfig deserializes a TopoConfig from filename (or from dict, if
// non-empty), choosing YAML or JSON by useYAML, matching
// desc-topo.go's ReadDevExecList convention.
func ReadTopoConfig(filename string, useYAML bool, dict []byte) (*TopoConfig, error) {
	var err error
	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	tc := &TopoConfig{}
	if useYAML {
		err = yaml.Unmarshal(dict, tc)
	} else {
		err = json.Unmarshal(dict, tc)
	}
	if err != nil {
		return nil, err
	}
	return tc, nil
}

// BuiltTopology is the runtime object graph Build assembles from a
// TopoConfig: the Topology itself, plus lookup tables keyed by name for
// tests and application code to reach individual devices.
type BuiltTopology struct {
	Topology *Topology
	Env      *RoutingEnvironment
	NodeByName   map[string]*Node
	DeviceByName map[string]*PointToPointNetDevice
}

// deviceKey forms the "node:device" lookup key Build and ChannelDesc
// endpoints share.
func deviceKey(nodeName, devName string) string {
	return nodeName + ":" + devName
}

// Build constructs the pointer-based runtime object graph described by tc:
// one Node and its PointToPointNetDevices per NodeDesc, a GlobalRouter for
// every NodeDesc with IsRouter set, and one PointToPointChannel per
// ChannelDesc attaching its two named endpoints. It is a contract
// violation for a ChannelDesc to reference an undefined endpoint, and
// Build panics in that case rather than deferring the failure to a later,
// harder-to-diagnose nil dereference.
func (tc *TopoConfig) Build(evtMgr *evtm.EventManager) *BuiltTopology {
	env := NewRoutingEnvironment()
	topo := CreateTopology()

	bt := &BuiltTopology{
		Topology:     topo,
		Env:          env,
		NodeByName:   make(map[string]*Node),
		DeviceByName: make(map[string]*PointToPointNetDevice),
	}

	for _, nd := range tc.Nodes {
		node := CreateNode(nd.ID, nd.Name)
		topo.AddNode(node)
		bt.NodeByName[nd.Name] = node

		var router *GlobalRouter
		if nd.IsRouter {
			router = CreateGlobalRouter(env)
			node.SetRouter(router)
		}

		for _, dd := range nd.Devices {
			rate := DataRate(0)
			if dd.DataRateMbps > 0 {
				rate = Mbps(dd.DataRateMbps)
			}
			dev := CreatePointToPointNetDevice(evtMgr, dd.ID, dd.Name, rate)
			node.AddDevice(dev)
			bt.DeviceByName[deviceKey(nd.Name, dd.Name)] = dev

			queueLen := dd.QueueLen
			if queueLen == 0 {
				queueLen = Unbounded
			}
			dev.AddQueue(CreateQueue(queueLen))

			if dd.IfAddr != "" {
				addr, perr := netip.ParseAddr(dd.IfAddr)
				if perr != nil {
					panic(fmt.Errorf("p2pnet: device %s has invalid ifaddr %q: %w", deviceKey(nd.Name, dd.Name), dd.IfAddr, perr))
				}
				maskBits := dd.MaskBits
				if maskBits == 0 {
					maskBits = DefaultSubnetMaskBits
				}
				if router == nil {
					panic(fmt.Errorf("p2pnet: device %s has an ifaddr but node %s is not a router", deviceKey(nd.Name, dd.Name), nd.Name))
				}
				router.SetInterfaceAddr(dev, addr, maskBits)
			}
		}
	}

	for _, cd := range tc.Channels {
		devA, okA := bt.DeviceByName[cd.EndpointA]
		devB, okB := bt.DeviceByName[cd.EndpointB]
		if !okA || !okB {
			panic(fmt.Errorf("p2pnet: channel %s references undefined endpoint(s) %q, %q", cd.Name, cd.EndpointA, cd.EndpointB))
		}

		ch := CreatePointToPointChannel(evtMgr, Mbps(cd.DataRateMbps), time.Duration(cd.DelayUsec*float64(time.Microsecond)))
		devA.Attach(ch)
		devB.Attach(ch)
	}

	return bt
}
