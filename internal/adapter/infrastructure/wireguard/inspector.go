// Package wireguard provides the WireGuard device inspection adapter implementation.
package wireguard

import (
	"fmt"
	"net/netip"

	"wireguard-subnets/internal/pkg/logging"
	"wireguard-subnets/internal/port"
	"wireguard-subnets/internal/types"

	"github.com/sirupsen/logrus"
	"golang.zx2c4.com/wireguard/wgctrl"
)

// InspectorAdapter is an adapter that implements the PeerInspector port using wgctrl.
type InspectorAdapter struct{}

// Ensure InspectorAdapter implements the PeerInspector port
var _ port.PeerInspector = (*InspectorAdapter)(nil)

// NewInspectorAdapter creates a new WireGuard inspector adapter.
func NewInspectorAdapter() *InspectorAdapter {
	return &InspectorAdapter{}
}

// AllowedPrefixes returns the AllowedIPs of every peer configured on the device.
func (i *InspectorAdapter) AllowedPrefixes(interfaceName string) ([]netip.Prefix, error) {
	client, err := wgctrl.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create wgctrl client: %w", err)
	}
	defer client.Close()

	device, err := client.Device(interfaceName)
	if err != nil {
		return nil, fmt.Errorf("failed to get device %s: %w", interfaceName, err)
	}

	var prefixes []netip.Prefix
	for _, peer := range device.Peers {
		for _, ipNet := range peer.AllowedIPs {
			addr, ok := netip.AddrFromSlice(ipNet.IP)
			if !ok {
				continue
			}
			bits, _ := ipNet.Mask.Size()
			prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), bits).Masked())
		}
	}
	return prefixes, nil
}

// Uncovered returns the subnets that are not contained in any allowed prefix.
// WireGuard drops traffic to such subnets even when a route sends it to the device.
func Uncovered(subnets, allowed []netip.Prefix) []netip.Prefix {
	var missing []netip.Prefix
	for _, s := range subnets {
		if !covered(s, allowed) {
			missing = append(missing, s)
		}
	}
	return missing
}

func covered(subnet netip.Prefix, allowed []netip.Prefix) bool {
	for _, a := range allowed {
		if a.Addr().BitLen() == subnet.Addr().BitLen() && a.Bits() <= subnet.Bits() && a.Contains(subnet.Addr()) {
			return true
		}
	}
	return false
}

// CheckPeerCoverage warns about configured subnets that no peer on the
// device accepts. It returns the uncovered subnets; an interface that cannot
// be inspected (not WireGuard, module missing) yields nil.
func CheckPeerCoverage(inspector port.PeerInspector, interfaceName string, targets []types.GatewayTarget) []netip.Prefix {
	logger := logging.WithComponentAndInterface("wireguard", interfaceName)

	allowed, err := inspector.AllowedPrefixes(interfaceName)
	if err != nil {
		logger.WithError(err).Debug("Skipping AllowedIPs coverage check")
		return nil
	}

	var missing []netip.Prefix
	for _, target := range targets {
		for _, s := range Uncovered(target.Subnets, allowed) {
			logger.WithFields(logrus.Fields{
				"gateway": target.Address.String(),
				"subnet":  s.String(),
			}).Warn("Subnet is not covered by any peer's AllowedIPs, routed traffic will be dropped")
			missing = append(missing, s)
		}
	}
	return missing
}
