package mdnsresponder

import (
	"net"

	"github.com/miekg/dns"
)

// ptrRecord builds a PTR record owned by owner pointing at target.
func ptrRecord(owner, target string, ttl uint32) *dns.PTR {
	return &dns.PTR{
		Hdr: dns.RR_Header{Name: owner, Rrtype: dns.TypePTR, Class: dns.ClassINET, Ttl: ttl},
		Ptr: target,
	}
}

// srvRecord builds the SRV record for svc, targeting hostname, per the
// priority-0/weight-0 convention used throughout the mDNS/DNS-SD pack.
func srvRecord(svc ServiceData, hostname string, ttl uint32) *dns.SRV {
	return &dns.SRV{
		Hdr:      dns.RR_Header{Name: svc.InstanceName, Rrtype: dns.TypeSRV, Class: dns.ClassINET, Ttl: ttl},
		Priority: 0,
		Weight:   0,
		Port:     svc.Port,
		Target:   hostname,
	}
}

// txtRecord builds the TXT record for svc from its pre-encoded payload.
func txtRecord(svc ServiceData, ttl uint32) *dns.TXT {
	return &dns.TXT{
		Hdr: dns.RR_Header{Name: svc.InstanceName, Rrtype: dns.TypeTXT, Class: dns.ClassINET, Ttl: ttl},
		Txt: decodeTXT(svc.TXT),
	}
}

// buildAddressRecords builds A records for v4 and AAAA records for v6, all
// owned by hostname. It is a pure function over explicit address lists so
// it can be exercised without a live network stack.
func buildAddressRecords(hostname string, v4, v6 []net.IP, ttl uint32) []dns.RR {
	out := make([]dns.RR, 0, len(v4)+len(v6))
	for _, ip := range v4 {
		out = append(out, &dns.A{
			Hdr: dns.RR_Header{Name: hostname, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: ttl},
			A:   ip,
		})
	}
	for _, ip := range v6 {
		out = append(out, &dns.AAAA{
			Hdr:  dns.RR_Header{Name: hostname, Rrtype: dns.TypeAAAA, Class: dns.ClassINET, Ttl: ttl},
			AAAA: ip,
		})
	}
	return out
}

// buildResponse assembles an mDNS response message per RFC 6762 §6: id
// zero, response + authoritative, no echoed questions.
func buildResponse(answers, extras []dns.RR) *dns.Msg {
	msg := new(dns.Msg)
	msg.Id = 0
	msg.Response = true
	msg.Authoritative = true
	msg.Answer = answers
	msg.Extra = extras
	return msg
}
