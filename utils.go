package mdnsresponder

import "strings"

// trimDot trims leading and trailing dots from a name. DNS names are
// conventionally fully-qualified with a trailing dot; this package's
// naming convention omits it, so the hostname (OS-derived or set with the
// Hostname option) and the names of inbound questions are normalized
// through this function first. Service names passed to Register are
// stored as given.
func trimDot(s string) string {
	return strings.Trim(s, ".")
}
