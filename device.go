package p2pnet

// device.go implements PointToPointNetDevice and its transmitter state
// machine, grounded directly on the original source's
// PointToPointNetDevice::SendTo/TransmitStart/TransmitComplete/Attach
// (p2p-net-device.cc) and on the teacher's evtm-based scheduling idiom.

import (
	"fmt"
	"time"

	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
	"github.com/iti/rngstream"
)

// BroadcastMAC is the broadcast MAC address every PointToPointNetDevice
// reports.
const BroadcastMAC = "ff:ff:ff:ff:ff:ff"

// txState is the transmitter state machine's state: READY to start a new
// transmission, or BUSY placing the current packet on the wire.
type txState int

const (
	txReady txState = iota
	txBusy
)

// PointToPointNetDevice is a per-endpoint transmitter/receiver state
// machine. It holds exactly one queue and, once attached, exactly one
// channel; it is DOWN until attached.
type PointToPointNetDevice struct {
	evtMgr *evtm.EventManager

	id   int
	name string
	node *Node

	rate DataRate
	ifg  time.Duration

	channel *PointToPointChannel
	queue   *Queue

	linkUp bool
	state  txState

	forwardUp    func(*Packet)
	linkUpNotify func()
	rxObservers  []func(*Packet)

	trace   *TraceManager
	rngstrm *rngstream.RngStream
}

// CreatePointToPointNetDevice is a constructor. The device is DOWN
// (link_up = false) until Attach is called.
func CreatePointToPointNetDevice(evtMgr *evtm.EventManager, id int, name string, rate DataRate) *PointToPointNetDevice {
	return &PointToPointNetDevice{
		evtMgr:  evtMgr,
		id:      id,
		name:    name,
		rate:    rate,
		state:   txReady,
		rngstrm: rngstream.New(name),
	}
}

// DevRng returns the device's own RNG stream, seeded from its name, for
// any stochastic behavior a caller layers on top of this device (e.g.
// service-time jitter); the transmitter state machine itself is fully
// deterministic and never consumes it.
func (dev *PointToPointNetDevice) DevRng() *rngstream.RngStream {
	return dev.rngstrm
}

// DevID returns the device's unique integer id.
func (dev *PointToPointNetDevice) DevID() int { return dev.id }

// Name returns the device's name.
func (dev *PointToPointNetDevice) Name() string { return dev.name }

// SetTrace attaches a TraceManager used to log state-machine transitions.
func (dev *PointToPointNetDevice) SetTrace(tm *TraceManager) {
	dev.trace = tm
}

// SetDataRate sets the device's configured DataRate. Takes effect on
// subsequent transmissions.
func (dev *PointToPointNetDevice) SetDataRate(rate DataRate) {
	dev.rate = rate
}

// SetInterframeGap sets the minimum idle time enforced between successive
// transmissions. Takes effect on subsequent transmissions.
func (dev *PointToPointNetDevice) SetInterframeGap(ifg time.Duration) {
	dev.ifg = ifg
}

// AddQueue sets the device's transmit queue.
func (dev *PointToPointNetDevice) AddQueue(q *Queue) {
	dev.queue = q
}

// Queue returns the device's transmit queue.
func (dev *PointToPointNetDevice) Queue() *Queue { return dev.queue }

// SetForwardUp registers the callback invoked when a packet is delivered
// upward to the application/IPv4 layer.
func (dev *PointToPointNetDevice) SetForwardUp(fn func(*Packet)) {
	dev.forwardUp = fn
}

// SetNotifyLinkUp registers the callback invoked once, when Attach brings
// the link up.
func (dev *PointToPointNetDevice) SetNotifyLinkUp(fn func()) {
	dev.linkUpNotify = fn
}

// AddRxObserver registers an additional receive-trace observer.
func (dev *PointToPointNetDevice) AddRxObserver(fn func(*Packet)) {
	dev.rxObservers = append(dev.rxObservers, fn)
}

// IsLinkUp reports whether the device's link is up.
func (dev *PointToPointNetDevice) IsLinkUp() bool { return dev.linkUp }

// NeedsArp is always false for a point-to-point device: there is exactly
// one peer, reached directly over the attached channel.
func (dev *PointToPointNetDevice) NeedsArp() bool { return false }

// IsBroadcast, IsMulticast, and IsPointToPoint report the device's fixed
// capability flags.
func (dev *PointToPointNetDevice) IsBroadcast() bool    { return true }
func (dev *PointToPointNetDevice) IsMulticast() bool    { return true }
func (dev *PointToPointNetDevice) IsPointToPoint() bool { return true }

// Channel returns the device's attached channel, or nil if none.
func (dev *PointToPointNetDevice) Channel() *PointToPointChannel { return dev.channel }

// Attach records ch as this device's channel, copies its DataRate and
// Delay into local fields, and marks the link up. The link comes up as
// soon as this one side attaches, matching the original source's own
// "for now" behavior, rather than waiting for both endpoints.
func (dev *PointToPointNetDevice) Attach(ch *PointToPointChannel) {
	dev.channel = ch
	ch.Attach(dev)

	dev.rate = ch.DataRate()
	dev.ifg = ch.Delay()

	dev.linkUp = true
	if dev.linkUpNotify != nil {
		dev.linkUpNotify()
	}
}

// SendTo transmits p toward destMac. Preconditions: the link must be up
// and a queue must be attached; violating either is a contract violation
// and panics. If the transmitter is READY, transmission begins
// immediately and SendTo returns the channel's TransmitStart result.
// Otherwise p is enqueued and SendTo returns the queue's Enqueue result
// (false on drop).
func (dev *PointToPointNetDevice) SendTo(p *Packet, destMac string) bool {
	if !dev.linkUp {
		panic(fmt.Errorf("p2pnet: SendTo called on device %s while link is down", dev.name))
	}
	if dev.queue == nil {
		panic(fmt.Errorf("p2pnet: SendTo called on device %s with no queue attached", dev.name))
	}

	if dev.state == txReady {
		return dev.transmitStart(p)
	}
	return dev.queue.Enqueue(p)
}

// transmitStart begins transmission of p: it is a contract violation to
// call this while BUSY. It schedules TransmitComplete at
// now + txTime + interframeGap and hands p to the channel.
func (dev *PointToPointNetDevice) transmitStart(p *Packet) bool {
	if dev.state == txBusy {
		panic(fmt.Errorf("p2pnet: TransmitStart called on device %s while BUSY", dev.name))
	}
	dev.state = txBusy

	txTime := dev.rate.TxTime(p.Size)
	completeAfter := txTime + dev.ifg

	dev.logTrace("txstart")
	dev.evtMgr.Schedule(dev, p, transmitCompleteEvent, vrtime.SecondsToTime(completeAfter.Seconds()))

	return dev.channel.TransmitStart(p, dev)
}

// transmitCompleteEvent is the evtm.EventHandlerFunction scheduled by
// transmitStart.
func transmitCompleteEvent(evtMgr *evtm.EventManager, context any, data any) any {
	dev := context.(*PointToPointNetDevice)
	dev.transmitComplete()
	return nil
}

// transmitComplete finishes a transmission: the transmitter returns to
// READY, and if the queue holds another packet it is dequeued and
// transmission begins again immediately (still within this synchronous
// callback), preserving the invariant that the queue is empty whenever
// state is READY at rest.
func (dev *PointToPointNetDevice) transmitComplete() {
	if dev.state != txBusy {
		panic(fmt.Errorf("p2pnet: TransmitComplete called on device %s while not BUSY", dev.name))
	}
	dev.state = txReady
	dev.logTrace("txcomplete")

	next, ok := dev.queue.Dequeue()
	if !ok {
		return
	}
	dev.transmitStart(next)
}

// Receive is invoked by the channel on delivery. It fires the rx-trace
// observers and forwards the packet upward; delivery is best-effort, so
// no error surfaces from Receive.
func (dev *PointToPointNetDevice) Receive(p *Packet) {
	dev.logTrace("rx")
	for _, obs := range dev.rxObservers {
		obs(p)
	}
	if dev.forwardUp != nil {
		dev.forwardUp(p)
	}
}

func (dev *PointToPointNetDevice) logTrace(op string) {
	if !dev.trace.Active() {
		return
	}
	dev.trace.AddEventAt(vrtime.SecondsToTime(dev.evtMgr.CurrentSeconds()), dev.id, TraceEvent{
		ObjID: dev.id,
		Op:    "device:" + op,
	})
}
