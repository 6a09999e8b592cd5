package mdnsresponder

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncodeDecodeTXTRoundTrip(t *testing.T) {
	entries := []string{"version=1.0", "path=/", "a=b"}
	encoded, err := encodeTXT(entries)
	if err != nil {
		t.Fatalf("encodeTXT: %v", err)
	}
	decoded := decodeTXT(encoded)
	if len(decoded) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(decoded), len(entries))
	}
	for i, e := range entries {
		if decoded[i] != e {
			t.Errorf("entry %d: got %q, want %q", i, decoded[i], e)
		}
	}
}

func TestEncodeEmptyTXT(t *testing.T) {
	encoded, err := encodeTXT(nil)
	if err != nil {
		t.Fatalf("encodeTXT: %v", err)
	}
	if !bytes.Equal(encoded, []byte{0}) {
		t.Fatalf("got %v, want [0]", encoded)
	}
	decoded := decodeTXT(encoded)
	if len(decoded) != 1 || decoded[0] != "" {
		t.Fatalf("got %v, want ['']", decoded)
	}
}

func TestEncodeTXTEntryTooLong(t *testing.T) {
	long := strings.Repeat("a", 256)
	if _, err := encodeTXT([]string{long}); err == nil {
		t.Fatal("expected ErrEntryTooLong")
	}
}

func TestDecodeTXTNil(t *testing.T) {
	if got := decodeTXT(nil); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}
