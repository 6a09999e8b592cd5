package mdnsresponder

import (
	"fmt"
	"os"
	"strings"
)

// defaultHostname derives a ".local" name from the OS hostname, the way
// the teacher's Register() falls back to os.Hostname() when none is
// supplied. Any existing trailing dot is trimmed first so the result
// never ends in "..local".
func defaultHostname() (string, error) {
	h, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("mdnsresponder: resolve hostname: %w", err)
	}
	h = trimDot(h)
	if strings.HasSuffix(h, ".local") {
		return h, nil
	}
	return h + ".local", nil
}
