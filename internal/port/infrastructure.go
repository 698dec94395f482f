// Package port defines the primary ports (interfaces) for the application.
// This follows the Ports and Adapters (Hexagonal Architecture) pattern.
package port

//go:generate mockgen -source=infrastructure.go -destination=../mock/mock_infrastructure.go -package=mock

import (
	"context"
	"net/netip"

	"github.com/vishvananda/netlink"
)

// CommandResult is the captured outcome of an external command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the command exited with status zero.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// CommandRunner is a port for executing external commands.
// This interface abstracts process creation so probes can be tested without a shell.
type CommandRunner interface {
	// Run executes the command and captures its output.
	// A non-zero exit status is reported through CommandResult, not as an error.
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}

// NetworkManager is a port for network interface operations.
// This interface abstracts netlink operations for routing table management.
type NetworkManager interface {
	// GetLinkByName returns a network link by interface name
	GetLinkByName(interfaceName string) (netlink.Link, error)

	// ListRoutes returns routes on the link whose destination is exactly dst
	ListRoutes(link netlink.Link, dst netip.Prefix) ([]netlink.Route, error)

	// AddRoute adds a route
	AddRoute(route *netlink.Route) error

	// DeleteRoute removes a route
	DeleteRoute(route *netlink.Route) error
}

// FileManager is a port for file system operations.
type FileManager interface {
	// FileExists checks if a file exists
	FileExists(filename string) bool
}

// PeerInspector is a port for reading WireGuard device state.
type PeerInspector interface {
	// AllowedPrefixes returns the union of AllowedIPs of every peer on the device
	AllowedPrefixes(interfaceName string) ([]netip.Prefix, error)
}
