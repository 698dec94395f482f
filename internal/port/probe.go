package port

//go:generate mockgen -source=probe.go -destination=../mock/mock_probe.go -package=mock

import (
	"context"
	"net/netip"
)

// RouteProber is the port every reconciliation loop reads live state through
// and pushes corrective actions to.
// Every method reports a plain boolean: a failed probe is indistinguishable
// from a negative answer, and a failed mutation is reported as false.
type RouteProber interface {
	// IsInterfaceUp reports whether the interface exists and is administratively up.
	IsInterfaceUp(ctx context.Context, interfaceName string) bool

	// IsReachable reports whether addr answers a bounded reachability probe
	// sent out through interfaceName.
	IsReachable(ctx context.Context, interfaceName string, addr netip.Addr) bool

	// RouteExists reports whether the table holds an entry for exactly subnet bound to interfaceName.
	RouteExists(ctx context.Context, interfaceName string, subnet netip.Prefix) bool

	// AddRoute installs a link-scoped route for subnet on interfaceName.
	AddRoute(ctx context.Context, interfaceName string, subnet netip.Prefix, metric int) bool

	// RemoveRoute deletes the route for subnet on interfaceName.
	RemoveRoute(ctx context.Context, interfaceName string, subnet netip.Prefix) bool
}
