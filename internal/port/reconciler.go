package port

import (
	"context"
	"net/netip"
)

// GatewayReconciler is the primary port for route reconciliation.
// One implementation instance keeps the routes of a single gateway converged
// until the shared shutdown signal fires.
type GatewayReconciler interface {
	// Run reconciles until shutdown is requested. It returns nil on orderly termination.
	Run(ctx context.Context) error

	// GetGatewayAddress returns the address of the gateway managed by this reconciler.
	GetGatewayAddress() netip.Addr
}
