// Package reconcile implements the per-gateway route reconciliation loop.
package reconcile

import (
	"context"
	"fmt"
	"net/netip"

	"wireguard-subnets/internal/pkg/logging"
	"wireguard-subnets/internal/pkg/shutdown"
	"wireguard-subnets/internal/port"
	"wireguard-subnets/internal/types"

	"github.com/sirupsen/logrus"
)

// Condition is the observed relation between gateway reachability and a subnet's route.
type Condition int

const (
	// ConditionRouted: gateway reachable, route present.
	ConditionRouted Condition = iota
	// ConditionUnrouted: gateway unreachable, route absent.
	ConditionUnrouted
	// ConditionMissing: gateway reachable, route absent.
	ConditionMissing
	// ConditionStale: gateway unreachable, route present.
	ConditionStale
)

func (c Condition) String() string {
	switch c {
	case ConditionRouted:
		return "routed"
	case ConditionUnrouted:
		return "unrouted"
	case ConditionMissing:
		return "missing"
	case ConditionStale:
		return "stale"
	default:
		return fmt.Sprintf("condition(%d)", int(c))
	}
}

// Action is the corrective step taken for a subnet during a tick.
type Action int

const (
	ActionNone Action = iota
	ActionAdd
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// SubnetOutcome records what a tick observed and did for one subnet.
type SubnetOutcome struct {
	Subnet    netip.Prefix
	Condition Condition
	Action    Action
	Succeeded bool // Meaningful only when Action is not ActionNone
}

// TickReport is the result of one reconciliation tick.
type TickReport struct {
	LinkUp    bool
	Reachable bool
	Subnets   []SubnetOutcome
}

// classify maps the two live booleans onto a condition and the action it calls for.
func classify(reachable, exists bool) (Condition, Action) {
	switch {
	case reachable && exists:
		return ConditionRouted, ActionNone
	case !reachable && !exists:
		return ConditionUnrouted, ActionNone
	case reachable:
		return ConditionMissing, ActionAdd
	default:
		return ConditionStale, ActionRemove
	}
}

// Loop keeps the routes of one gateway converged with its reachability.
// It holds no state between ticks: link, reachability and route presence are
// queried from the system every time.
type Loop struct {
	target types.GatewayTarget
	config types.ReconciliationConfig
	prober port.RouteProber
	signal *shutdown.Signal
	logger *logrus.Entry
}

// Ensure Loop implements the GatewayReconciler port
var _ port.GatewayReconciler = (*Loop)(nil)

// Option configures a Loop.
type Option func(*Loop)

// WithLogger routes the loop's status notices to logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(l *Loop) {
		l.logger = logger.WithFields(l.fields())
	}
}

// NewLoop creates a reconciliation loop for target. Every loop of the process
// shares the same signal.
func NewLoop(target types.GatewayTarget, config types.ReconciliationConfig, prober port.RouteProber, signal *shutdown.Signal, opts ...Option) *Loop {
	l := &Loop{
		target: target,
		config: config,
		prober: prober,
		signal: signal,
	}
	l.logger = logging.GetLogger().WithFields(l.fields())
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loop) fields() logrus.Fields {
	return logrus.Fields{
		"component": "reconcile",
		"interface": l.config.InterfaceName,
		"gateway":   l.target.Address.String(),
	}
}

// GetGatewayAddress returns the address of the gateway managed by this loop.
func (l *Loop) GetGatewayAddress() netip.Addr {
	return l.target.Address
}

// Run ticks every poll period until the shared signal requests a stop.
// A stop interrupts the wait but never an in-flight tick, so no corrective
// action is left half applied. ctx is handed to the prober; Run itself only
// terminates through the signal and always returns nil.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.WithField("target", l.target.String()).Info("Starting reconciliation")

	for l.signal.ShouldContinue() {
		l.safeTick(ctx)
		if l.signal.WaitOrStop(l.config.PollPeriod) {
			break
		}
	}

	l.logger.Info("Reconciliation stopped")
	return nil
}

// safeTick runs a tick and turns a panic into an error notice so the loop
// carries on with the next tick.
func (l *Loop) safeTick(ctx context.Context) (report TickReport, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.WithField("panic", r).Error("Reconciliation tick failed, retrying next period")
			ok = false
		}
	}()
	return l.Tick(ctx), true
}

// Tick performs one check-link, check-reachability, per-subnet diff pass.
func (l *Loop) Tick(ctx context.Context) TickReport {
	iface := l.config.InterfaceName

	if !l.prober.IsInterfaceUp(ctx, iface) {
		l.logger.Warn("WireGuard interface is currently DOWN")
		return TickReport{}
	}

	report := TickReport{
		LinkUp:    true,
		Reachable: l.prober.IsReachable(ctx, iface, l.target.Address),
		Subnets:   make([]SubnetOutcome, 0, len(l.target.Subnets)),
	}

	for _, subnet := range l.target.Subnets {
		report.Subnets = append(report.Subnets, l.reconcileSubnet(ctx, subnet, report.Reachable))
	}
	return report
}

// reconcileSubnet applies at most one corrective action for subnet. A failed
// action is not retried here; the next tick sees the same mismatch again.
func (l *Loop) reconcileSubnet(ctx context.Context, subnet netip.Prefix, reachable bool) SubnetOutcome {
	iface := l.config.InterfaceName
	logger := l.logger.WithField("subnet", subnet.String())

	exists := l.prober.RouteExists(ctx, iface, subnet)
	condition, action := classify(reachable, exists)
	outcome := SubnetOutcome{Subnet: subnet, Condition: condition, Action: action}

	switch condition {
	case ConditionRouted:
		logger.Info("Gateway is reachable and subnet appears in the routing table")
	case ConditionUnrouted:
		logger.Info("Gateway is unreachable and subnet does not appear in the routing table")
	case ConditionMissing:
		logger.Info("Gateway is reachable but subnet does not appear in the routing table")
		outcome.Succeeded = l.prober.AddRoute(ctx, iface, subnet, l.config.Metric)
		if outcome.Succeeded {
			logger.WithField("metric", l.config.Metric).Info("Successfully added subnet to the routing table")
		} else {
			logger.Warn("Could not add subnet to the routing table")
		}
	case ConditionStale:
		logger.Info("Gateway is not reachable but subnet appears in the routing table")
		outcome.Succeeded = l.prober.RemoveRoute(ctx, iface, subnet)
		if outcome.Succeeded {
			logger.Info("Successfully removed subnet from the routing table")
		} else {
			logger.Warn("Could not remove subnet from the routing table")
		}
	}

	return outcome
}
