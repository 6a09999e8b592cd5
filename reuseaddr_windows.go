//go:build windows

package mdnsresponder

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// controlReuseAddr sets SO_REUSEADDR. Windows has no SO_REUSEPORT
// equivalent, matching the rest of this domain's pack (beacon's transport
// layer draws the same distinction in its windows-specific socket test).
func controlReuseAddr(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
