package mdnsresponder

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownID is returned by registry.Unregister for an id that is not
// currently registered.
var ErrUnknownID = errors.New("mdnsresponder: unknown service id")

// ServiceData describes one advertised service.
type ServiceData struct {
	// TypeName is the fully-qualified service type, e.g. "_http._tcp.local".
	TypeName string
	// InstanceName is the fully-qualified instance name, e.g.
	// "My Web._http._tcp.local".
	InstanceName string
	Port         uint16
	// TXT is the pre-encoded TXT record payload: a concatenation of
	// length-prefixed substrings. An empty TXT is encoded as a single
	// zero byte. See encodeTXT/decodeTXT.
	TXT []byte
}

// registry is the shared, concurrently-accessed index of registered
// services. It is guarded by a single-writer/multiple-reader lock; all
// critical sections are O(1)-ish map operations and never suspend.
type registry struct {
	mu       sync.RWMutex
	hostname string
	byID     map[uint64]ServiceData
	byName   map[string]uint64
	byType   map[string][]uint64
}

func newRegistry(hostname string) (*registry, error) {
	if hostname == "" || !strings.HasSuffix(hostname, ".local") {
		return nil, fmt.Errorf("mdnsresponder: invalid hostname %q: must end in \".local\"", hostname)
	}
	return &registry{
		hostname: hostname,
		byID:     make(map[uint64]ServiceData),
		byName:   make(map[string]uint64),
		byType:   make(map[string][]uint64),
	}, nil
}

// Hostname returns the registry's fixed hostname.
func (r *registry) Hostname() string {
	return r.hostname
}

// FindByName returns the service registered under the given instance name.
func (r *registry) FindByName(name string) (ServiceData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	if !ok {
		return ServiceData{}, false
	}
	svc, ok := r.byID[id]
	return svc, ok
}

// FindByType returns every service registered under the given type name.
// The order is not significant.
func (r *registry) FindByType(typeName string) []ServiceData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byType[typeName]
	if len(ids) == 0 {
		return nil
	}
	out := make([]ServiceData, 0, len(ids))
	for _, id := range ids {
		if svc, ok := r.byID[id]; ok {
			out = append(out, svc)
		}
	}
	return out
}

// Types returns every distinct registered type name, in no particular
// order. Used to answer the DNS-SD meta-query.
func (r *registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byType))
	for t := range r.byType {
		out = append(out, t)
	}
	return out
}

// Register adds svc to the registry and returns a newly drawn random id
// that no currently registered service holds. Ids of services that were
// already unregistered are not excluded from later draws.
func (r *registry) Register(svc ServiceData) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := randomID()
	for {
		if _, exists := r.byID[id]; !exists {
			break
		}
		id = randomID()
	}

	r.byID[id] = svc
	r.byName[svc.InstanceName] = id
	r.byType[svc.TypeName] = append(r.byType[svc.TypeName], id)
	return id
}

// Unregister removes the service with the given id and returns its data.
// It returns ErrUnknownID if id is not registered; that is a programmer
// error, not an expected runtime condition.
func (r *registry) Unregister(id uint64) (ServiceData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	svc, ok := r.byID[id]
	if !ok {
		return ServiceData{}, fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	delete(r.byID, id)

	if ids := r.byType[svc.TypeName]; len(ids) > 0 {
		for i, v := range ids {
			if v == id {
				ids = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(ids) == 0 {
			delete(r.byType, svc.TypeName)
		} else {
			r.byType[svc.TypeName] = ids
		}
	}

	removed, ok := r.byName[svc.InstanceName]
	if !ok || removed != id {
		panic(fmt.Sprintf("mdnsresponder: name index mismatch for id %d", id))
	}
	delete(r.byName, svc.InstanceName)

	return svc, nil
}

// randomID draws a CSPRNG-backed 64-bit id. Collisions are retried by the
// caller; no security property depends on unguessability here, but using
// crypto/rand costs nothing at this call frequency and keeps ids from
// being trivially sequential.
func randomID() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("mdnsresponder: crypto/rand unavailable: " + err.Error())
	}
	return binary.BigEndian.Uint64(buf[:])
}
