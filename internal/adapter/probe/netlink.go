package probe

import (
	"context"
	"net"
	"net/netip"

	"wireguard-subnets/internal/adapter/infrastructure/network"
	"wireguard-subnets/internal/pkg/logging"
	"wireguard-subnets/internal/port"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

// NetlinkProber is a RouteProber adapter that reads and mutates the routing
// table over netlink. Reachability is still probed with ping(8).
type NetlinkProber struct {
	networkMgr port.NetworkManager
	runner     port.CommandRunner
	logger     *logrus.Entry
}

// Ensure NetlinkProber implements the RouteProber port
var _ port.RouteProber = (*NetlinkProber)(nil)

// NewNetlinkProber creates a netlink backed prober.
func NewNetlinkProber(networkMgr port.NetworkManager, runner port.CommandRunner) *NetlinkProber {
	return &NetlinkProber{
		networkMgr: networkMgr,
		runner:     runner,
		logger:     logging.WithComponent("probe"),
	}
}

// IsInterfaceUp reports whether the link exists and carries the UP flag.
func (p *NetlinkProber) IsInterfaceUp(_ context.Context, interfaceName string) bool {
	link, ok := p.link(interfaceName)
	return ok && link.Attrs().Flags&net.FlagUp != 0
}

// IsReachable pings addr through interfaceName.
func (p *NetlinkProber) IsReachable(ctx context.Context, interfaceName string, addr netip.Addr) bool {
	return ping(ctx, p.runner, p.logger, interfaceName, addr)
}

// RouteExists reports whether a route for exactly subnet is bound to the link.
func (p *NetlinkProber) RouteExists(_ context.Context, interfaceName string, subnet netip.Prefix) bool {
	link, ok := p.link(interfaceName)
	if !ok {
		return false
	}
	routes, err := p.networkMgr.ListRoutes(link, subnet)
	if err != nil {
		p.logger.WithError(err).WithField("subnet", subnet.String()).Debug("Route lookup failed")
		return false
	}
	return len(routes) > 0
}

// AddRoute installs a link-scoped route with the given metric.
func (p *NetlinkProber) AddRoute(_ context.Context, interfaceName string, subnet netip.Prefix, metric int) bool {
	link, ok := p.link(interfaceName)
	if !ok {
		return false
	}
	route := &netlink.Route{
		LinkIndex: link.Attrs().Index,
		Dst:       network.PrefixToIPNet(subnet),
		Scope:     netlink.SCOPE_LINK,
		Priority:  metric,
	}
	if err := p.networkMgr.AddRoute(route); err != nil {
		p.logger.WithError(err).WithField("subnet", subnet.String()).Debug("Route add failed")
		return false
	}
	return true
}

// RemoveRoute deletes the route for subnet bound to the link.
func (p *NetlinkProber) RemoveRoute(_ context.Context, interfaceName string, subnet netip.Prefix) bool {
	link, ok := p.link(interfaceName)
	if !ok {
		return false
	}
	route := &netlink.Route{
		LinkIndex: link.Attrs().Index,
		Dst:       network.PrefixToIPNet(subnet),
	}
	if err := p.networkMgr.DeleteRoute(route); err != nil {
		p.logger.WithError(err).WithField("subnet", subnet.String()).Debug("Route delete failed")
		return false
	}
	return true
}

func (p *NetlinkProber) link(interfaceName string) (netlink.Link, bool) {
	link, err := p.networkMgr.GetLinkByName(interfaceName)
	if err != nil {
		p.logger.WithError(err).Debug("Link lookup failed")
		return nil, false
	}
	return link, true
}
