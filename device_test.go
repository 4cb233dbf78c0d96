package p2pnet

// device_test.go and channel_test.go drive the point-to-point transmitter
// state machine end to end through a real evtm.EventManager, covering
// single-link delivery, back-to-back transmissions, interframe-gap
// spacing, and queue overflow. Constructing and running the event manager
// itself (evtm.New / EventManager.Run) is inferred from the package's
// exported handler-function signature and Schedule call shape, since no
// retrieved example in this corpus ever constructs or drives an
// EventManager directly.

import (
	"testing"
	"time"

	"github.com/iti/evt/evtm"
)

func newTestPair(t *testing.T, rate DataRate, delay time.Duration) (*evtm.EventManager, *PointToPointNetDevice, *PointToPointNetDevice) {
	t.Helper()
	evtMgr := evtm.New()

	devA := CreatePointToPointNetDevice(evtMgr, 1, "A-eth0", rate)
	devB := CreatePointToPointNetDevice(evtMgr, 2, "B-eth0", rate)
	devA.AddQueue(CreateQueue(Unbounded))
	devB.AddQueue(CreateQueue(Unbounded))

	ch := CreatePointToPointChannel(evtMgr, rate, delay)
	devA.Attach(ch)
	devB.Attach(ch)

	return evtMgr, devA, devB
}

func TestSingleLinkDelivery(t *testing.T) {
	evtMgr, devA, devB := newTestPair(t, Mbps(10), 2*time.Millisecond)

	var receivedAt float64 = -1
	devB.SetForwardUp(func(p *Packet) {
		receivedAt = evtMgr.CurrentSeconds()
	})

	devA.SendTo(CreatePacket(1250, nil), BroadcastMAC)

	evtMgr.Run(1.0)

	want := 0.003 // 1ms tx + 2ms prop
	if diff := receivedAt - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected delivery at %v seconds, got %v", want, receivedAt)
	}
}

func TestBackToBackDelivery(t *testing.T) {
	evtMgr, devA, devB := newTestPair(t, Mbps(10), 2*time.Millisecond)
	devA.SetInterframeGap(0)

	var times []float64
	devB.SetForwardUp(func(p *Packet) {
		times = append(times, evtMgr.CurrentSeconds())
	})

	devA.SendTo(CreatePacket(1250, nil), BroadcastMAC)
	devA.SendTo(CreatePacket(1250, nil), BroadcastMAC)

	evtMgr.Run(1.0)

	if len(times) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(times))
	}
	if diff := times[0] - 0.003; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("first delivery at %v, want 0.003", times[0])
	}
	if diff := times[1] - 0.004; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("second delivery at %v, want 0.004", times[1])
	}
}

func TestInterframeGap(t *testing.T) {
	evtMgr, devA, devB := newTestPair(t, Mbps(10), 2*time.Millisecond)
	devA.SetInterframeGap(9600 * time.Nanosecond) // 96 bit-times at 10Mb/s == 9.6us

	var times []float64
	devB.SetForwardUp(func(p *Packet) {
		times = append(times, evtMgr.CurrentSeconds())
	})

	devA.SendTo(CreatePacket(1250, nil), BroadcastMAC)
	devA.SendTo(CreatePacket(1250, nil), BroadcastMAC)

	evtMgr.Run(1.0)

	if len(times) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(times))
	}
	want := 0.0040096
	if diff := times[1] - want; diff > 1e-7 || diff < -1e-7 {
		t.Fatalf("second delivery at %v, want %v", times[1], want)
	}
}

func TestQueueDropOnOverflow(t *testing.T) {
	evtMgr, devA, devB := newTestPair(t, Mbps(10), 2*time.Millisecond)
	devA.AddQueue(CreateQueue(1))

	var received int
	devB.SetForwardUp(func(p *Packet) {
		received++
	})

	r1 := devA.SendTo(CreatePacket(1250, nil), BroadcastMAC)
	r2 := devA.SendTo(CreatePacket(1250, nil), BroadcastMAC)
	r3 := devA.SendTo(CreatePacket(1250, nil), BroadcastMAC)

	if !r1 {
		t.Fatalf("first SendTo (transmits immediately) should return true")
	}
	if !r2 {
		t.Fatalf("second SendTo (enqueues) should return true")
	}
	if r3 {
		t.Fatalf("third SendTo should be dropped and return false")
	}

	evtMgr.Run(1.0)

	if received != 2 {
		t.Fatalf("expected exactly 2 packets delivered, got %d", received)
	}
}

func TestSendToPanicsWhenLinkDown(t *testing.T) {
	evtMgr := evtm.New()
	dev := CreatePointToPointNetDevice(evtMgr, 1, "orphan", Mbps(10))
	dev.AddQueue(CreateQueue(Unbounded))

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic sending on a device with no attached channel")
		}
	}()
	dev.SendTo(CreatePacket(10, nil), BroadcastMAC)
}
