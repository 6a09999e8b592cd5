package mdnsresponder

import (
	"errors"
	"fmt"
)

const maxTXTEntryLen = 255

// ErrEntryTooLong is returned by encodeTXT when an entry exceeds the
// 255-byte limit imposed by the DNS TXT wire format. Exceeding it is a
// programmer error in the caller, not a recoverable runtime condition.
var ErrEntryTooLong = errors.New("mdnsresponder: TXT entry exceeds 255 bytes")

// encodeTXT builds the canonical DNS TXT record payload for entries: a
// concatenation of length-prefixed substrings. An empty entry list encodes
// to a single zero byte, per RFC 1035 §3.3.14's empty-string convention.
func encodeTXT(entries []string) ([]byte, error) {
	if len(entries) == 0 {
		return []byte{0}, nil
	}
	buf := make([]byte, 0, len(entries)*8)
	for _, e := range entries {
		if len(e) > maxTXTEntryLen {
			return nil, fmt.Errorf("%w: %q is %d bytes", ErrEntryTooLong, e, len(e))
		}
		buf = append(buf, byte(len(e)))
		buf = append(buf, e...)
	}
	return buf, nil
}

// decodeTXT splits a canonical TXT payload back into its substrings, for
// handing to the DNS codec's per-string TXT representation. It is the
// inverse of encodeTXT, including the empty-TXT case: decodeTXT([]byte{0})
// returns [""], which the codec packs back to a single zero byte.
func decodeTXT(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, 1)
	for i := 0; i < len(raw); {
		n := int(raw[i])
		i++
		end := i + n
		if end > len(raw) {
			end = len(raw)
		}
		out = append(out, string(raw[i:end]))
		i = end
	}
	return out
}
