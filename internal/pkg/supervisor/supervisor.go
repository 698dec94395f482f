// Package supervisor answers questions about the process environment:
// whether it runs privileged and whether systemd supervises the host.
package supervisor

import (
	"fmt"
	"os"

	"wireguard-subnets/internal/pkg/config"
	"wireguard-subnets/internal/port"
)

// systemdRuntimeDir exists iff the host was booted with systemd (sd_booted(3)).
const systemdRuntimeDir = "/run/systemd/system"

// euid is swapped in tests.
var euid = os.Geteuid

// CheckPrivileges fails unless the process can mutate the routing table.
func CheckPrivileges() error {
	if euid() != 0 {
		return fmt.Errorf("this program must be run with root privileges")
	}
	return nil
}

// SystemdPresent reports whether systemd is the running service manager.
func SystemdPresent(fileMgr port.FileManager) bool {
	return fileMgr.FileExists(systemdRuntimeDir)
}

// UseScopedExecution resolves a scope mode to a decision.
func UseScopedExecution(mode string, fileMgr port.FileManager) bool {
	switch mode {
	case config.ScopeAlways:
		return true
	case config.ScopeNever:
		return false
	default:
		return SystemdPresent(fileMgr)
	}
}
