package p2pnet

// channel.go implements PointToPointChannel, the shared medium between two
// net devices, grounded on the original source's
// PointToPointChannel::TransmitStart (implied by p2p-net-device.cc's calls
// into it) and the teacher's own scheduling idiom of calling
// evtm.EventManager.Schedule with a context, a data payload, an event
// handler, and a vrtime.Time delay (net.go, scheduler.go).

import (
	"fmt"
	"time"

	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
)

// PointToPointChannel is a medium with exactly two attached devices.
// Attachment count is in {0,1,2}; once two devices are attached the
// channel is closed to further attachment. The channel is stateless with
// respect to in-flight packets once a delivery has been scheduled.
type PointToPointChannel struct {
	evtMgr *evtm.EventManager

	dataRate DataRate
	delay    time.Duration

	endpoints [2]*PointToPointNetDevice
	nAttached int

	trace *TraceManager
	objID int
}

// CreatePointToPointChannel is a constructor.
func CreatePointToPointChannel(evtMgr *evtm.EventManager, dataRate DataRate, delay time.Duration) *PointToPointChannel {
	return &PointToPointChannel{
		evtMgr:   evtMgr,
		dataRate: dataRate,
		delay:    delay,
	}
}

// SetTrace attaches a TraceManager and an object id for trace records.
func (ch *PointToPointChannel) SetTrace(tm *TraceManager, objID int) {
	ch.trace = tm
	ch.objID = objID
}

// DataRate returns the channel's configured bit rate.
func (ch *PointToPointChannel) DataRate() DataRate { return ch.dataRate }

// Delay returns the channel's configured propagation delay.
func (ch *PointToPointChannel) Delay() time.Duration { return ch.delay }

// Attach records dev as one of the channel's (at most two) endpoints. It
// succeeds until two endpoints are attached; a third Attach is a contract
// violation and panics.
func (ch *PointToPointChannel) Attach(dev *PointToPointNetDevice) {
	if ch.nAttached >= 2 {
		panic(fmt.Errorf("p2pnet: channel already has two attached devices"))
	}
	ch.endpoints[ch.nAttached] = dev
	ch.nAttached++
}

// attached reports how many devices are currently attached.
func (ch *PointToPointChannel) attached() int {
	return ch.nAttached
}

// peerOf returns the endpoint of ch that is not sender, and true, iff a
// peer is attached.
func (ch *PointToPointChannel) peerOf(sender *PointToPointNetDevice) (*PointToPointNetDevice, bool) {
	for i := 0; i < ch.nAttached; i++ {
		if ch.endpoints[i] != sender {
			return ch.endpoints[i], true
		}
	}
	return nil, false
}

// TransmitStart schedules delivery of p to the endpoint other than sender,
// at now + the time it takes to place p on the wire at the channel's own
// DataRate + the channel's propagation delay. It returns true iff a peer
// is attached to receive the packet; calling it on a channel with fewer
// than two attachments is a contract violation the caller (the device
// layer) must not commit.
func (ch *PointToPointChannel) TransmitStart(p *Packet, sender *PointToPointNetDevice) bool {
	peer, ok := ch.peerOf(sender)
	if !ok {
		return false
	}

	if ch.trace.Active() {
		ch.trace.AddEventAt(vrtime.SecondsToTime(ch.evtMgr.CurrentSeconds()), int(p.UID), TraceEvent{
			ObjID: ch.objID,
			Op:    "channel:transmit",
		})
	}

	arrival := ch.dataRate.TxTime(p.Size) + ch.delay
	ch.evtMgr.Schedule(peer, p, deliverPacketEvent, vrtime.SecondsToTime(arrival.Seconds()))
	return true
}

// deliverPacketEvent is the evtm.EventHandlerFunction scheduled by
// TransmitStart; it fires synchronously inside the delivery event and
// hands the packet to the receiving device.
func deliverPacketEvent(evtMgr *evtm.EventManager, context any, data any) any {
	dev := context.(*PointToPointNetDevice)
	p := data.(*Packet)
	dev.Receive(p)
	return nil
}
