package p2pnet

import "testing"

func TestCreatePacketUniqueUIDs(t *testing.T) {
	p1 := CreatePacket(100, nil)
	p2 := CreatePacket(200, "payload")
	if p1.UID == p2.UID {
		t.Fatalf("expected distinct UIDs, got %d and %d", p1.UID, p2.UID)
	}
	if p1.Size != 100 || p2.Size != 200 {
		t.Fatalf("unexpected sizes: %d, %d", p1.Size, p2.Size)
	}
	if p2.Payload.(string) != "payload" {
		t.Fatalf("payload not preserved")
	}
}
