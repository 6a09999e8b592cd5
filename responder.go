package mdnsresponder

import (
	"fmt"
	"sync"
)

// Responder advertises a set of mDNS/DNS-SD services on the local
// network. It owns one FSM per address family and a shared service
// registry; Register and Close are safe to call concurrently.
type Responder struct {
	reg *registry

	senders []chan command
	wg      sync.WaitGroup

	closeOnce sync.Once
}

// ServiceHandle represents one registered service. Close unregisters it
// and sends a goodbye packet (TTL=0) on every address family.
type ServiceHandle struct {
	r    *Responder
	id   uint64
	once sync.Once
}

// New constructs a Responder and starts its FSMs. IPv4 construction
// failure is fatal; IPv6 construction failure is logged and the
// responder falls back to IPv4-only, since plenty of real networks run
// mDNS-capable IPv4 without routed multicast IPv6.
func New(opts ...Option) (*Responder, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	hostname := trimDot(o.hostname)
	if hostname == "" {
		h, err := defaultHostname()
		if err != nil {
			return nil, err
		}
		hostname = h
	}

	reg, err := newRegistry(hostname)
	if err != nil {
		return nil, err
	}

	ifaces := o.ifaces
	if ifaces == nil {
		ifaces, err = listInterfaces()
		if err != nil {
			return nil, fmt.Errorf("mdnsresponder: list interfaces: %w", err)
		}
	}
	hostV4, hostV6 := hostAddrs(ifaces)

	r := &Responder{reg: reg}

	cmds4 := make(chan command, commandBufferSize)
	fsm4, err := newFSM(familyIPv4, reg, ifaces, hostV4, hostV6, cmds4, o.logger)
	if err != nil {
		return nil, fmt.Errorf("mdnsresponder: start ipv4 responder: %w", err)
	}
	r.senders = append(r.senders, cmds4)
	r.wg.Add(1)
	go fsm4.run(&r.wg)

	if o.ipv6 {
		cmds6 := make(chan command, commandBufferSize)
		fsm6, err := newFSM(familyIPv6, reg, ifaces, hostV4, hostV6, cmds6, o.logger)
		if err != nil {
			o.logger.Printf("ipv6 responder disabled: %v", err)
		} else {
			r.senders = append(r.senders, cmds6)
			r.wg.Add(1)
			go fsm6.run(&r.wg)
		}
	}

	return r, nil
}

// Register advertises a new service instance and returns a handle used to
// withdraw it later. The unsolicited announcement is broadcast before the
// service is added to the registry, so that by the time any peer reacts
// to the announcement the registry already has an answer for it.
func (r *Responder) Register(typeName, instanceName string, port uint16, txt []string) (*ServiceHandle, error) {
	encoded, err := encodeTXT(txt)
	if err != nil {
		return nil, err
	}
	svc := ServiceData{
		TypeName:     typeName,
		InstanceName: instanceName,
		Port:         port,
		TXT:          encoded,
	}

	r.broadcast(command{kind: cmdSendUnsolicited, svc: svc, ttl: defaultTTL, includeAddrs: true})
	id := r.reg.Register(svc)

	return &ServiceHandle{r: r, id: id}, nil
}

// broadcast fans cmd out to every live FSM's command channel, in order.
// The channels are large enough, and registration rare enough, that a
// plain blocking send per FSM never meaningfully stalls the caller.
func (r *Responder) broadcast(cmd command) {
	for _, ch := range r.senders {
		ch <- cmd
	}
}

// Close shuts every FSM down and waits for their goroutines to exit. It
// is idempotent; only the first call has effect.
func (r *Responder) Close() {
	r.closeOnce.Do(func() {
		r.broadcast(command{kind: cmdShutdown})
		r.wg.Wait()
	})
}

// Close withdraws the service, removing it from the registry and then
// broadcasting a goodbye packet (TTL=0) on every address family. It is
// idempotent.
func (h *ServiceHandle) Close() error {
	var err error
	h.once.Do(func() {
		svc, unregErr := h.r.reg.Unregister(h.id)
		if unregErr != nil {
			err = unregErr
			return
		}
		h.r.broadcast(command{kind: cmdSendUnsolicited, svc: svc, ttl: 0, includeAddrs: false})
	})
	return err
}
