// Package mdnsresponder implements a multicast DNS (mDNS) responder.
//
// It advertises local services on the link-local network per RFC 6762,
// binding the well-known mDNS multicast group on UDP/5353 for IPv4 and,
// optionally, IPv6. Callers register services with Responder.Register and
// the responder answers PTR/SRV/TXT/A/AAAA queries for them, emitting
// unsolicited announcements on registration and withdrawal ("goodbye"
// packets) when a ServiceHandle is closed.
//
// Name-conflict probing (RFC 6762 §8) is not implemented: callers are
// expected to own the hostname and service names they register.
package mdnsresponder
