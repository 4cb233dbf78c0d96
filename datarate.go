package p2pnet

// datarate.go holds the DataRate type and its transmission-time arithmetic,
// grounded on the original source's DataRate::CalculateTxTime and the
// teacher's own bandwidth fields (intrfcState.bndwdth) in net.go.

import (
	"fmt"
	"time"
)

// DataRate is a bit rate, expressed in bits per second.
type DataRate float64

// Common unit constructors, mirroring the "10Mb/s"-style literals used
// throughout the original source's link configuration.
func Bps(bps float64) DataRate  { return DataRate(bps) }
func Kbps(kbps float64) DataRate { return DataRate(kbps * 1e3) }
func Mbps(mbps float64) DataRate { return DataRate(mbps * 1e6) }
func Gbps(gbps float64) DataRate { return DataRate(gbps * 1e9) }

// TxTime returns the time required to place size bytes onto the wire at
// this DataRate: 8*size/rate seconds.
func (dr DataRate) TxTime(sizeBytes int) time.Duration {
	if dr <= 0 {
		panic(fmt.Errorf("p2pnet: DataRate.TxTime called with non-positive rate %v", dr))
	}
	seconds := 8.0 * float64(sizeBytes) / float64(dr)
	return time.Duration(seconds * float64(time.Second))
}

// Seconds returns the DataRate's tx-time for sizeBytes, as a float64 number
// of seconds, for callers that work directly in the vrtime domain.
func (dr DataRate) Seconds(sizeBytes int) float64 {
	if dr <= 0 {
		panic(fmt.Errorf("p2pnet: DataRate.Seconds called with non-positive rate %v", dr))
	}
	return 8.0 * float64(sizeBytes) / float64(dr)
}

func (dr DataRate) String() string {
	switch {
	case dr >= 1e9:
		return fmt.Sprintf("%.3gGb/s", float64(dr)/1e9)
	case dr >= 1e6:
		return fmt.Sprintf("%.3gMb/s", float64(dr)/1e6)
	case dr >= 1e3:
		return fmt.Sprintf("%.3gKb/s", float64(dr)/1e3)
	default:
		return fmt.Sprintf("%.3gb/s", float64(dr))
	}
}
