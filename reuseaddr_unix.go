//go:build !windows

package mdnsresponder

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// controlReuseAddr sets SO_REUSEADDR (and, best-effort, SO_REUSEPORT) so
// multiple mDNS responders can coexist on one host, each bound to
// UDP/5353. Failure to set SO_REUSEPORT is ignored and does not fail
// construction; SO_REUSEADDR is load-bearing and does.
func controlReuseAddr(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if sockErr != nil {
			return
		}
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
