// Package network provides network management adapter implementation.
package network

import (
	"fmt"
	"net"
	"net/netip"

	"wireguard-subnets/internal/port"

	"github.com/vishvananda/netlink"
)

// ManagerAdapter is an adapter that implements the NetworkManager port using vishvananda/netlink library.
type ManagerAdapter struct{}

// Ensure ManagerAdapter implements the NetworkManager port
var _ port.NetworkManager = (*ManagerAdapter)(nil)

// NewManagerAdapter creates a new network manager adapter.
func NewManagerAdapter() *ManagerAdapter {
	return &ManagerAdapter{}
}

// GetLinkByName returns a network link by interface name.
func (n *ManagerAdapter) GetLinkByName(interfaceName string) (netlink.Link, error) {
	link, err := netlink.LinkByName(interfaceName)
	if err != nil {
		return nil, fmt.Errorf("failed to get netlink interface %s: %w", interfaceName, err)
	}
	return link, nil
}

// ListRoutes returns the routes on link whose destination is exactly dst.
func (n *ManagerAdapter) ListRoutes(link netlink.Link, dst netip.Prefix) ([]netlink.Route, error) {
	filter := &netlink.Route{
		LinkIndex: link.Attrs().Index,
		Dst:       PrefixToIPNet(dst),
	}
	routes, err := netlink.RouteListFiltered(Family(dst), filter, netlink.RT_FILTER_OIF|netlink.RT_FILTER_DST)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes for %s: %w", dst, err)
	}
	return routes, nil
}

// AddRoute adds a route.
func (n *ManagerAdapter) AddRoute(route *netlink.Route) error {
	if err := netlink.RouteAdd(route); err != nil {
		return fmt.Errorf("failed to add route %s: %w", route.Dst, err)
	}
	return nil
}

// DeleteRoute removes a route.
func (n *ManagerAdapter) DeleteRoute(route *netlink.Route) error {
	if err := netlink.RouteDel(route); err != nil {
		return fmt.Errorf("failed to delete route %s: %w", route.Dst, err)
	}
	return nil
}

// PrefixToIPNet converts a prefix to the net.IPNet form netlink expects.
func PrefixToIPNet(p netip.Prefix) *net.IPNet {
	p = p.Masked()
	return &net.IPNet{
		IP:   net.IP(p.Addr().AsSlice()),
		Mask: net.CIDRMask(p.Bits(), p.Addr().BitLen()),
	}
}

// Family returns the netlink address family of the prefix.
func Family(p netip.Prefix) int {
	if p.Addr().Is4() {
		return netlink.FAMILY_V4
	}
	return netlink.FAMILY_V6
}
