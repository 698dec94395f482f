// Package types defines common types used across the application.
package types

import (
	"fmt"
	"net/netip"
	"strings"
	"time"
)

// GatewayTarget is a remote gateway reachable through the managed interface
// together with the subnets routed behind it.
// It is built once at startup and never modified afterwards.
type GatewayTarget struct {
	Address netip.Addr     // Gateway address probed for reachability
	Subnets []netip.Prefix // Subnets that must be routed iff Address is reachable
}

// NewGatewayTarget returns a target with masked, de-duplicated subnets.
func NewGatewayTarget(address netip.Addr, subnets []netip.Prefix) (GatewayTarget, error) {
	if !address.IsValid() {
		return GatewayTarget{}, fmt.Errorf("invalid gateway address")
	}
	if len(subnets) == 0 {
		return GatewayTarget{}, fmt.Errorf("gateway %s: at least one subnet is required", address)
	}

	seen := make(map[netip.Prefix]struct{}, len(subnets))
	masked := make([]netip.Prefix, 0, len(subnets))
	for _, s := range subnets {
		if !s.IsValid() {
			return GatewayTarget{}, fmt.Errorf("gateway %s: invalid subnet", address)
		}
		s = s.Masked()
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		masked = append(masked, s)
	}

	return GatewayTarget{Address: address.Unmap(), Subnets: masked}, nil
}

// String renders the target the way it is written on the command line.
func (g GatewayTarget) String() string {
	parts := make([]string, len(g.Subnets))
	for i, s := range g.Subnets {
		parts[i] = s.String()
	}
	addr := g.Address.String()
	if g.Address.Is6() {
		addr = "[" + addr + "]"
	}
	return addr + ":" + strings.Join(parts, ",")
}

// ReconciliationConfig holds the settings shared by every reconciliation loop.
type ReconciliationConfig struct {
	InterfaceName      string        // Interface the gateways are reachable through (e.g., "wg0")
	PollPeriod         time.Duration // Time between two reconciliation ticks
	Metric             int           // Metric of routes added to the table
	UseScopedExecution bool          // Wrap external commands in a systemd scope
}
