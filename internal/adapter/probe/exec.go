// Package probe provides the RouteProber adapters the reconciliation loops
// read live link, reachability and route state through.
package probe

import (
	"context"
	"net/netip"
	"strconv"
	"strings"

	"wireguard-subnets/internal/pkg/logging"
	"wireguard-subnets/internal/port"

	"github.com/sirupsen/logrus"
)

const (
	// PingCount is the number of echo requests sent per reachability probe.
	PingCount = 3
	// PingTimeoutSeconds bounds how long ping waits for a reply.
	PingTimeoutSeconds = 5
)

// ExecProber is a RouteProber adapter backed by the ip(8) and ping(8) tools.
type ExecProber struct {
	runner port.CommandRunner
	logger *logrus.Entry
}

// Ensure ExecProber implements the RouteProber port
var _ port.RouteProber = (*ExecProber)(nil)

// NewExecProber creates a prober that shells out through runner.
func NewExecProber(runner port.CommandRunner) *ExecProber {
	return &ExecProber{
		runner: runner,
		logger: logging.WithComponent("probe"),
	}
}

// IsInterfaceUp reports whether "ip link show" succeeds and lists the UP flag.
func (p *ExecProber) IsInterfaceUp(ctx context.Context, interfaceName string) bool {
	result, ok := p.run(ctx, "ip", "link", "show", "dev", interfaceName)
	return ok && hasUpFlag(result.Stdout)
}

// IsReachable pings addr through interfaceName.
func (p *ExecProber) IsReachable(ctx context.Context, interfaceName string, addr netip.Addr) bool {
	return ping(ctx, p.runner, p.logger, interfaceName, addr)
}

// RouteExists reports whether "ip route show" prints an entry for subnet on interfaceName.
func (p *ExecProber) RouteExists(ctx context.Context, interfaceName string, subnet netip.Prefix) bool {
	args := append(familyArgs(subnet), "route", "show", subnet.String(), "dev", interfaceName)
	result, ok := p.run(ctx, "ip", args...)
	return ok && strings.TrimSpace(result.Stdout) != ""
}

// AddRoute runs "ip route add SUBNET dev IFACE scope link metric M".
func (p *ExecProber) AddRoute(ctx context.Context, interfaceName string, subnet netip.Prefix, metric int) bool {
	args := append(familyArgs(subnet), "route", "add", subnet.String(), "dev", interfaceName,
		"scope", "link", "metric", strconv.Itoa(metric))
	_, ok := p.run(ctx, "ip", args...)
	return ok
}

// RemoveRoute runs "ip route del SUBNET dev IFACE".
func (p *ExecProber) RemoveRoute(ctx context.Context, interfaceName string, subnet netip.Prefix) bool {
	args := append(familyArgs(subnet), "route", "del", subnet.String(), "dev", interfaceName)
	_, ok := p.run(ctx, "ip", args...)
	return ok
}

func (p *ExecProber) run(ctx context.Context, name string, args ...string) (port.CommandResult, bool) {
	return run(ctx, p.runner, p.logger, name, args...)
}

// run executes a command and folds every failure into false.
func run(ctx context.Context, runner port.CommandRunner, logger *logrus.Entry, name string, args ...string) (port.CommandResult, bool) {
	result, err := runner.Run(ctx, name, args...)
	if err != nil {
		logger.WithError(err).WithField("command", name+" "+strings.Join(args, " ")).Debug("Command could not be executed")
		return result, false
	}
	if !result.Success() {
		logger.WithFields(logrus.Fields{
			"command":   name + " " + strings.Join(args, " "),
			"exit_code": result.ExitCode,
			"stderr":    strings.TrimSpace(result.Stderr),
		}).Debug("Command failed")
		return result, false
	}
	return result, true
}

func ping(ctx context.Context, runner port.CommandRunner, logger *logrus.Entry, interfaceName string, addr netip.Addr) bool {
	_, ok := run(ctx, runner, logger, "ping",
		"-W"+strconv.Itoa(PingTimeoutSeconds),
		"-c"+strconv.Itoa(PingCount),
		"-I", interfaceName,
		addr.String())
	return ok
}

func familyArgs(subnet netip.Prefix) []string {
	if subnet.Addr().Is6() {
		return []string{"-6"}
	}
	return []string{}
}

// hasUpFlag looks for UP in the "<FLAG,FLAG>" list of "ip link show" output.
func hasUpFlag(output string) bool {
	start := strings.IndexByte(output, '<')
	end := strings.IndexByte(output, '>')
	if start < 0 || end < start {
		return false
	}
	for _, flag := range strings.Split(output[start+1:end], ",") {
		if flag == "UP" {
			return true
		}
	}
	return false
}
