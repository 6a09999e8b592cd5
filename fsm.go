package mdnsresponder

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/miekg/dns"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// fsm owns one multicast UDP socket for one address family. It has no
// probe/announce state machinery of its own: its "state" is the socket,
// an inbound read loop feeding a channel, and the command channel it
// shares with the responder façade. Construction binds and joins
// multicast groups; run drives the steady-state event loop described in
// the package's design notes.
type fsm struct {
	family family
	conn   net.PacketConn
	pc4    *ipv4.PacketConn
	pc6    *ipv6.PacketConn

	ifaces   []net.Interface
	hostV4   []net.IP
	hostV6   []net.IP
	reg      *registry
	cmds     <-chan command
	logger   Logger

	stopCh chan struct{}
}

// newFSM creates and binds the socket for fam, joining the mDNS multicast
// group on every interface in ifaces. Per-interface join failures are
// logged and skipped; at least one successful join is not required. The
// caller is responsible for treating IPv4 construction failure as fatal
// and IPv6 construction failure as non-fatal, per the responder's
// lifecycle rules.
func newFSM(fam family, reg *registry, ifaces []net.Interface, hostV4, hostV6 []net.IP, cmds <-chan command, logger Logger) (*fsm, error) {
	network, bindAddr, err := bindParamsFor(fam)
	if err != nil {
		return nil, err
	}

	lc := net.ListenConfig{Control: controlReuseAddr}
	conn, err := lc.ListenPacket(context.Background(), network, bindAddr)
	if err != nil {
		return nil, fmt.Errorf("mdnsresponder: bind %s %s: %w", network, bindAddr, err)
	}

	f := &fsm{
		family: fam,
		conn:   conn,
		ifaces: ifaces,
		hostV4: hostV4,
		hostV6: hostV6,
		reg:    reg,
		cmds:   cmds,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	switch fam {
	case familyIPv4:
		pc := ipv4.NewPacketConn(conn)
		for i := range ifaces {
			ifc := ifaces[i]
			if err := pc.JoinGroup(&ifc, &net.UDPAddr{IP: mdnsGroupIPv4}); err != nil {
				logger.Printf("join ipv4 multicast group on %s: %v", ifc.Name, err)
			}
		}
		if err := pc.SetMulticastTTL(255); err != nil {
			conn.Close()
			return nil, fmt.Errorf("mdnsresponder: set ipv4 multicast ttl: %w", err)
		}
		f.pc4 = pc

	case familyIPv6:
		pc := ipv6.NewPacketConn(conn)
		for i := range ifaces {
			ifc := ifaces[i]
			if err := pc.JoinGroup(&ifc, &net.UDPAddr{IP: mdnsGroupIPv6}); err != nil {
				logger.Printf("join ipv6 multicast group on %s: %v", ifc.Name, err)
			}
		}
		if err := pc.SetMulticastHopLimit(255); err != nil {
			conn.Close()
			return nil, fmt.Errorf("mdnsresponder: set ipv6 multicast hop limit: %w", err)
		}
		f.pc6 = pc

	default:
		conn.Close()
		return nil, fmt.Errorf("mdnsresponder: unknown address family %d", fam)
	}

	return f, nil
}

func bindParamsFor(fam family) (network, addr string, err error) {
	switch fam {
	case familyIPv4:
		return "udp4", fmt.Sprintf("0.0.0.0:%d", mdnsPort), nil
	case familyIPv6:
		return "udp6", fmt.Sprintf("[::]:%d", mdnsPort), nil
	default:
		return "", "", fmt.Errorf("mdnsresponder: unknown address family %d", fam)
	}
}

// run is the FSM's event loop. It multiplexes inbound datagrams (relayed
// from a dedicated read goroutine, since a blocking socket read cannot
// itself be a select case) and commands from the responder façade. Events
// are processed one at a time, in arrival order; commands and inbound
// datagrams interleave in the order they become ready.
func (f *fsm) run(wg *sync.WaitGroup) {
	defer wg.Done()

	inbound := make(chan []byte, 16)
	readDone := make(chan struct{})
	go f.readLoop(inbound, readDone)

	for {
		select {
		case pkt, ok := <-inbound:
			if !ok {
				return
			}
			f.handleInbound(pkt)

		case cmd, ok := <-f.cmds:
			if !ok {
				return
			}
			if cmd.kind == cmdShutdown {
				close(f.stopCh)
				f.conn.Close()
				<-readDone
				return
			}
			f.handleCommand(cmd)
		}
	}
}

func (f *fsm) readLoop(out chan<- []byte, done chan<- struct{}) {
	defer close(done)
	buf := make([]byte, maxDatagramSize)
	for {
		n, err := f.readFrom(buf)
		if err != nil {
			return
		}
		pkt := make([]byte, n)
		copy(pkt, buf[:n])
		select {
		case out <- pkt:
		case <-f.stopCh:
			return
		}
	}
}

func (f *fsm) readFrom(buf []byte) (int, error) {
	switch f.family {
	case familyIPv4:
		n, _, _, err := f.pc4.ReadFrom(buf)
		return n, err
	case familyIPv6:
		n, _, _, err := f.pc6.ReadFrom(buf)
		return n, err
	default:
		return 0, fmt.Errorf("mdnsresponder: unknown address family %d", f.family)
	}
}

// handleInbound parses one inbound datagram and answers it, if it
// produces any answers at all. Parse failures are logged and dropped.
func (f *fsm) handleInbound(pkt []byte) {
	var msg dns.Msg
	if err := msg.Unpack(pkt); err != nil {
		f.logger.Printf("drop unparseable packet: %v", err)
		return
	}

	var answers, extras []dns.RR
	for _, q := range msg.Question {
		q.Name = trimDot(q.Name)
		a, e := f.answerQuestion(q)
		answers = append(answers, a...)
		extras = append(extras, e...)
	}
	if len(answers) == 0 {
		return
	}

	f.send(buildResponse(answers, extras))
}

// answerQuestion dispatches a single question by QTYPE, per RFC 6762 §6
// and the package's record table.
func (f *fsm) answerQuestion(q dns.Question) (answers, extras []dns.RR) {
	switch q.Qtype {
	case dns.TypePTR:
		return f.answerPTR(q.Name)
	case dns.TypeSRV:
		return f.answerInstance(q.Name, true)
	case dns.TypeTXT:
		return f.answerInstance(q.Name, false)
	case dns.TypeA:
		return f.answerHostname(q.Name, dns.TypeA), nil
	case dns.TypeAAAA:
		return f.answerHostname(q.Name, dns.TypeAAAA), nil
	case dns.TypeANY:
		return f.answerANY(q.Name), nil
	default:
		return nil, nil
	}
}

// answerPTR handles both the DNS-SD meta-query and PTR queries for a
// specific registered service type.
func (f *fsm) answerPTR(name string) (answers, extras []dns.RR) {
	if name == metaQueryName {
		for _, t := range f.reg.Types() {
			answers = append(answers, ptrRecord(metaQueryName, t, defaultTTL))
		}
		return answers, nil
	}

	services := f.reg.FindByType(name)
	if len(services) == 0 {
		return nil, nil
	}
	hostname := f.reg.Hostname()
	for _, svc := range services {
		answers = append(answers, ptrRecord(svc.TypeName, svc.InstanceName, defaultTTL))
		extras = append(extras, srvRecord(svc, hostname, defaultTTL), txtRecord(svc, defaultTTL))
		extras = append(extras, f.addressRecords(defaultTTL)...)
	}
	return answers, extras
}

// answerInstance handles SRV and TXT queries against a registered
// instance name. SRV responses additionally carry the host's address
// records.
func (f *fsm) answerInstance(name string, isSRV bool) (answers, extras []dns.RR) {
	svc, ok := f.reg.FindByName(name)
	if !ok {
		return nil, nil
	}
	if isSRV {
		answers = append(answers, srvRecord(svc, f.reg.Hostname(), defaultTTL))
		extras = append(extras, f.addressRecords(defaultTTL)...)
		return answers, extras
	}
	answers = append(answers, txtRecord(svc, defaultTTL))
	return answers, nil
}

// answerHostname handles A and AAAA queries against the local hostname.
func (f *fsm) answerHostname(name string, qtype uint16) []dns.RR {
	if name != f.reg.Hostname() {
		return nil
	}
	var out []dns.RR
	for _, rr := range f.addressRecords(defaultTTL) {
		if rr.Header().Rrtype == qtype {
			out = append(out, rr)
		}
	}
	return out
}

// answerANY folds the PTR/SRV+TXT/A+AAAA cases together for the name,
// whichever kind of registered name it turns out to be.
func (f *fsm) answerANY(name string) []dns.RR {
	if name == metaQueryName {
		a, _ := f.answerPTR(name)
		return a
	}
	if name == f.reg.Hostname() {
		return f.addressRecords(defaultTTL)
	}
	if svcs := f.reg.FindByType(name); len(svcs) > 0 {
		a, _ := f.answerPTR(name)
		return a
	}
	if svc, ok := f.reg.FindByName(name); ok {
		return []dns.RR{srvRecord(svc, f.reg.Hostname(), defaultTTL), txtRecord(svc, defaultTTL)}
	}
	return nil
}

func (f *fsm) addressRecords(ttl uint32) []dns.RR {
	return buildAddressRecords(f.reg.Hostname(), f.hostV4, f.hostV6, ttl)
}

// handleCommand applies a command from the responder façade: an announce
// or goodbye, or shutdown (handled by the caller in run).
func (f *fsm) handleCommand(cmd command) {
	if cmd.kind != cmdSendUnsolicited {
		return
	}
	answers := []dns.RR{
		ptrRecord(cmd.svc.TypeName, cmd.svc.InstanceName, cmd.ttl),
		srvRecord(cmd.svc, f.reg.Hostname(), cmd.ttl),
		txtRecord(cmd.svc, cmd.ttl),
	}
	var extras []dns.RR
	if cmd.includeAddrs {
		extras = f.addressRecords(cmd.ttl)
	}
	f.send(buildResponse(answers, extras))
}

// send packs msg and writes it to the multicast group for this family.
// Record names are held without a trailing dot; they are made fully
// qualified here, since the codec only packs fully-qualified names. If
// it does not fit within maxDatagramSize, it is truncated at the answer
// boundary: extras are dropped first, then answers, one record at a time,
// until it fits or nothing is left to send.
func (f *fsm) send(msg *dns.Msg) {
	for _, rr := range append(append([]dns.RR(nil), msg.Answer...), msg.Extra...) {
		hdr := rr.Header()
		hdr.Name = dns.Fqdn(hdr.Name)
		switch v := rr.(type) {
		case *dns.PTR:
			v.Ptr = dns.Fqdn(v.Ptr)
		case *dns.SRV:
			v.Target = dns.Fqdn(v.Target)
		}
	}
	for {
		buf, err := msg.Pack()
		if err == nil && len(buf) <= maxDatagramSize {
			if len(msg.Answer) == 0 {
				return
			}
			f.writeMulticast(buf)
			return
		}
		if len(msg.Extra) > 0 {
			msg.Extra = msg.Extra[:len(msg.Extra)-1]
			continue
		}
		if len(msg.Answer) > 0 {
			msg.Answer = msg.Answer[:len(msg.Answer)-1]
			continue
		}
		if err != nil {
			f.logger.Printf("failed to build response: %v", err)
		}
		return
	}
}

func (f *fsm) writeMulticast(buf []byte) {
	switch f.family {
	case familyIPv4:
		f.writeMulticast4(buf)
	case familyIPv6:
		f.writeMulticast6(buf)
	}
}

func (f *fsm) writeMulticast4(buf []byte) {
	if len(f.ifaces) == 0 {
		if _, err := f.pc4.WriteTo(buf, nil, ipv4GroupAddr); err != nil {
			f.logger.Printf("write ipv4 multicast: %v", err)
		}
		return
	}
	for i := range f.ifaces {
		ifc := f.ifaces[i]
		if err := f.pc4.SetMulticastInterface(&ifc); err != nil {
			f.logger.Printf("set multicast interface %s: %v", ifc.Name, err)
			continue
		}
		if _, err := f.pc4.WriteTo(buf, nil, ipv4GroupAddr); err != nil {
			f.logger.Printf("write ipv4 multicast on %s: %v", ifc.Name, err)
		}
	}
}

func (f *fsm) writeMulticast6(buf []byte) {
	if len(f.ifaces) == 0 {
		if _, err := f.pc6.WriteTo(buf, nil, ipv6GroupAddr); err != nil {
			f.logger.Printf("write ipv6 multicast: %v", err)
		}
		return
	}
	for i := range f.ifaces {
		ifc := f.ifaces[i]
		if err := f.pc6.SetMulticastInterface(&ifc); err != nil {
			f.logger.Printf("set multicast interface %s: %v", ifc.Name, err)
			continue
		}
		if _, err := f.pc6.WriteTo(buf, nil, ipv6GroupAddr); err != nil {
			f.logger.Printf("write ipv6 multicast on %s: %v", ifc.Name, err)
		}
	}
}
