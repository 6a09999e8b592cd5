package mdnsresponder

import "net"

// listInterfaces returns the non-loopback, multicast-capable, up
// interfaces on the host. An empty list is tolerated by every caller.
func listInterfaces() ([]net.Interface, error) {
	all, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var out []net.Interface
	for _, iface := range all {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if iface.Flags&net.FlagMulticast == 0 {
			continue
		}
		out = append(out, iface)
	}
	return out, nil
}

// addrsForInterface splits iface's assigned addresses into non-loopback
// IPv4 and IPv6 addresses.
func addrsForInterface(iface net.Interface) (v4, v6 []net.IP) {
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, nil
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			v4 = append(v4, ip4)
		} else if ipnet.IP.To16() != nil {
			v6 = append(v6, ipnet.IP)
		}
	}
	return v4, v6
}

// hostAddrs collects every non-loopback address assigned across ifaces,
// split by family. Computed once at responder construction time, the way
// the teacher's Register() resolves AddrIPv4/AddrIPv6 once up front rather
// than re-enumerating on every query.
func hostAddrs(ifaces []net.Interface) (v4, v6 []net.IP) {
	for _, iface := range ifaces {
		a4, a6 := addrsForInterface(iface)
		v4 = append(v4, a4...)
		v6 = append(v6, a6...)
	}
	return v4, v6
}
