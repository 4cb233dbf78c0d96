package p2pnet

import (
	"path/filepath"
	"testing"
)

func sampleTopoConfig() *TopoConfig {
	tc := CreateTopoConfig("two-node")
	tc.AddNode(NodeDesc{
		Name: "A", ID: 1, IsRouter: true,
		Devices: []DeviceDesc{{Name: "eth0", ID: 1, IfAddr: "10.0.0.1", MaskBits: 30}},
	})
	tc.AddNode(NodeDesc{
		Name: "B", ID: 2, IsRouter: true,
		Devices: []DeviceDesc{{Name: "eth0", ID: 2, IfAddr: "10.0.0.2", MaskBits: 30}},
	})
	tc.AddChannel(ChannelDesc{
		Name: "link0", DataRateMbps: 10, DelayUsec: 2000,
		EndpointA: "A:eth0", EndpointB: "B:eth0",
	})
	return tc
}

func TestTopoConfigBuild(t *testing.T) {
	tc := sampleTopoConfig()
	bt := tc.Build(nil)

	if len(bt.Topology.Nodes()) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(bt.Topology.Nodes()))
	}

	devA := bt.DeviceByName["A:eth0"]
	devB := bt.DeviceByName["B:eth0"]
	if devA == nil || devB == nil {
		t.Fatalf("expected both devices to be registered")
	}
	if !devA.IsLinkUp() || !devB.IsLinkUp() {
		t.Fatalf("expected both endpoints to be linked up after Build")
	}
	if devA.Channel() != devB.Channel() {
		t.Fatalf("expected both devices to share the same channel")
	}

	nodeA := bt.NodeByName["A"]
	router, ok := nodeA.Router()
	if !ok {
		t.Fatalf("expected node A to have a router")
	}
	router.DiscoverLSAs()
	lsa, _ := router.GetLSA(0)
	if len(lsa.Links) != 2 {
		t.Fatalf("expected 2 link records (PointToPoint + StubNetwork), got %d", len(lsa.Links))
	}
}

func TestTopoConfigBuildRejectsUnknownEndpoint(t *testing.T) {
	tc := CreateTopoConfig("broken")
	tc.AddNode(NodeDesc{Name: "A", ID: 1, Devices: []DeviceDesc{{Name: "eth0", ID: 1}}})
	tc.AddChannel(ChannelDesc{Name: "bad", EndpointA: "A:eth0", EndpointB: "Z:eth9"})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for undefined channel endpoint")
		}
	}()
	tc.Build(nil)
}

func TestTopoConfigWriteAndReadYAML(t *testing.T) {
	tc := sampleTopoConfig()
	path := filepath.Join(t.TempDir(), "topo.yaml")

	if err := tc.WriteToFile(path); err != nil {
		t.Fatalf("WriteToFile failed: %v", err)
	}

	got, err := ReadTopoConfig(path, true, nil)
	if err != nil {
		t.Fatalf("ReadTopoConfig failed: %v", err)
	}
	if got.Name != tc.Name {
		t.Fatalf("round-tripped Name = %q, want %q", got.Name, tc.Name)
	}
	if len(got.Nodes) != len(tc.Nodes) || len(got.Channels) != len(tc.Channels) {
		t.Fatalf("round-tripped config has wrong shape: %+v", got)
	}
}
