package mdnsresponder

import "testing"

func TestNewRegistryRejectsNonLocalHostname(t *testing.T) {
	if _, err := newRegistry("host.example.com"); err == nil {
		t.Fatal("expected error for non-.local hostname")
	}
	if _, err := newRegistry(""); err == nil {
		t.Fatal("expected error for empty hostname")
	}
}

func TestRegistryRegisterAndFind(t *testing.T) {
	reg, err := newRegistry("host.local")
	if err != nil {
		t.Fatalf("newRegistry: %v", err)
	}

	svc := ServiceData{
		TypeName:     "_http._tcp.local",
		InstanceName: "My Web._http._tcp.local",
		Port:         8080,
	}
	id := reg.Register(svc)

	got, ok := reg.FindByName(svc.InstanceName)
	if !ok {
		t.Fatal("expected to find service by name")
	}
	if got.Port != svc.Port {
		t.Fatalf("got port %d, want %d", got.Port, svc.Port)
	}

	byType := reg.FindByType(svc.TypeName)
	if len(byType) != 1 {
		t.Fatalf("got %d services by type, want 1", len(byType))
	}

	types := reg.Types()
	if len(types) != 1 || types[0] != svc.TypeName {
		t.Fatalf("got types %v, want [%s]", types, svc.TypeName)
	}

	if _, err := reg.Unregister(id); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	if _, ok := reg.FindByName(svc.InstanceName); ok {
		t.Fatal("expected service to be gone after unregister")
	}
	if types := reg.Types(); len(types) != 0 {
		t.Fatalf("expected no types after last unregister, got %v", types)
	}
}

func TestRegistryUnregisterUnknownID(t *testing.T) {
	reg, err := newRegistry("host.local")
	if err != nil {
		t.Fatalf("newRegistry: %v", err)
	}
	if _, err := reg.Unregister(12345); err == nil {
		t.Fatal("expected ErrUnknownID")
	}
}

func TestRegistryMultipleInstancesSameType(t *testing.T) {
	reg, err := newRegistry("host.local")
	if err != nil {
		t.Fatalf("newRegistry: %v", err)
	}

	typeName := "_http._tcp.local"
	reg.Register(ServiceData{TypeName: typeName, InstanceName: "A._http._tcp.local", Port: 1})
	reg.Register(ServiceData{TypeName: typeName, InstanceName: "B._http._tcp.local", Port: 2})

	if got := reg.FindByType(typeName); len(got) != 2 {
		t.Fatalf("got %d services, want 2", len(got))
	}
}
