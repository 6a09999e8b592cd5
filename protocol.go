package mdnsresponder

import "net"

const (
	mdnsPort = 5353

	// maxDatagramSize is the practical ceiling on an outbound mDNS
	// packet; answer construction truncates at the answer boundary
	// rather than exceed it. RFC 6762 recommends 1500 but tolerates
	// larger path-MTU-sized packets.
	maxDatagramSize = 9000

	// defaultTTL is used for every inbound-triggered answer and for
	// unsolicited announcements. Goodbye packets override it with 0.
	defaultTTL = 60

	// metaQueryName is the RFC 6762 §9 DNS-SD service-type enumeration
	// meta-query name.
	metaQueryName = "_services._dns-sd._udp.local"
)

var (
	mdnsGroupIPv4 = net.IPv4(224, 0, 0, 251)
	mdnsGroupIPv6 = net.ParseIP("ff02::fb")

	ipv4GroupAddr = &net.UDPAddr{IP: mdnsGroupIPv4, Port: mdnsPort}
	ipv6GroupAddr = &net.UDPAddr{IP: mdnsGroupIPv6, Port: mdnsPort}
)

// family identifies which IP address family an FSM instance serves.
type family int

const (
	familyIPv4 family = iota
	familyIPv6
)

func (f family) String() string {
	if f == familyIPv4 {
		return "ipv4"
	}
	return "ipv6"
}
