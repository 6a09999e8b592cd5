package mdnsresponder

// commandBufferSize sizes the per-FSM command channel. Registration and
// unregistration are control-plane events, orders of magnitude rarer than
// inbound queries, so a generously buffered channel behaves as an
// effectively-unbounded queue for this traffic without the bookkeeping of
// a real unbounded channel.
const commandBufferSize = 64

type commandKind int

const (
	cmdSendUnsolicited commandKind = iota
	cmdShutdown
)

// command is the message carried from the responder façade to each FSM's
// command channel.
type command struct {
	kind commandKind

	// Fields below apply to cmdSendUnsolicited only.
	svc          ServiceData
	ttl          uint32
	includeAddrs bool
}
