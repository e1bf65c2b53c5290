// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"net"
	"os"
	"strings"
	"syscall"
)

// describeBridgeError explains why the privileged execution host could not
// be reached.
func describeBridgeError(err error) string {
	switch {
	case isSocketMissing(err):
		return "The execution host socket does not exist.\n" +
			"  • Start the host with 'polarisdesk host'\n" +
			"  • Or drop --bridge-socket to run commands in-process\n"
	case isConnectionRefused(err):
		return "The execution host is not accepting connections.\n" +
			"  • The host process may have exited; restart 'polarisdesk host'\n"
	case isPermissionDenied(err):
		return "Access to the execution host socket was denied.\n" +
			"  • The socket is private to the user that started the host\n"
	case isTimeout(err):
		return "The execution host did not answer in time.\n"
	default:
		return "The execution host could not be reached.\n"
	}
}

func isSocketMissing(err error) bool {
	return errors.Is(err, os.ErrNotExist) || strings.Contains(strings.ToLower(err.Error()), "no such file")
}

func isConnectionRefused(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.ECONNREFUSED)
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isPermissionDenied(err error) bool {
	return errors.Is(err, os.ErrPermission) || strings.Contains(strings.ToLower(err.Error()), "permission denied")
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded")
}
