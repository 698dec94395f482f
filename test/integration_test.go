//go:build integration
// +build integration

package test

import (
	"context"
	"net/netip"
	"os"
	"testing"
	"time"

	"wireguard-subnets/internal/adapter/infrastructure/command"
	"wireguard-subnets/internal/adapter/infrastructure/network"
	"wireguard-subnets/internal/adapter/probe"
	"wireguard-subnets/internal/adapter/reconcile"
	"wireguard-subnets/internal/pkg/shutdown"
	"wireguard-subnets/internal/port"
	"wireguard-subnets/internal/types"

	"github.com/vishvananda/netlink"
)

const (
	testLinkName = "wgsubtest0"
	localAddr    = "10.250.0.1/24"
)

var (
	// TEST-NET-2, never routed on a real host
	testSubnet = netip.MustParsePrefix("198.51.100.0/24")
	// Assigned to the test link, so it answers pings locally
	reachableGateway = netip.MustParseAddr("10.250.0.1")
	// On-link but nobody answers
	unreachableGateway = netip.MustParseAddr("10.250.0.99")
)

// setupLink creates a dummy link carrying localAddr and removes it on cleanup
func setupLink(t *testing.T) netlink.Link {
	t.Helper()

	if os.Geteuid() != 0 {
		t.Skip("integration tests require root privileges")
	}

	_ = netlink.LinkDel(&netlink.Dummy{LinkAttrs: netlink.LinkAttrs{Name: testLinkName}})

	if err := netlink.LinkAdd(&netlink.Dummy{LinkAttrs: netlink.LinkAttrs{Name: testLinkName}}); err != nil {
		t.Fatalf("Failed to create dummy link: %v", err)
	}
	t.Cleanup(func() {
		if link, err := netlink.LinkByName(testLinkName); err == nil {
			_ = netlink.LinkDel(link)
		}
	})

	link, err := netlink.LinkByName(testLinkName)
	if err != nil {
		t.Fatalf("Failed to look up dummy link: %v", err)
	}

	addr, err := netlink.ParseAddr(localAddr)
	if err != nil {
		t.Fatalf("Failed to parse address: %v", err)
	}
	if err := netlink.AddrAdd(link, addr); err != nil {
		t.Fatalf("Failed to add address: %v", err)
	}
	if err := netlink.LinkSetUp(link); err != nil {
		t.Fatalf("Failed to set link up: %v", err)
	}
	return link
}

func backends() map[string]port.RouteProber {
	runner := command.NewRunnerAdapter(false, 30*time.Second)
	return map[string]port.RouteProber{
		"exec":    probe.NewExecProber(runner),
		"netlink": probe.NewNetlinkProber(network.NewManagerAdapter(), runner),
	}
}

func TestProberBackends(t *testing.T) {
	for name, prober := range backends() {
		t.Run(name, func(t *testing.T) {
			link := setupLink(t)
			ctx := context.Background()

			if !prober.IsInterfaceUp(ctx, testLinkName) {
				t.Fatal("Expected dummy link to be reported up")
			}
			if prober.IsInterfaceUp(ctx, "nonexistent0") {
				t.Fatal("Expected missing link to be reported down")
			}

			if prober.RouteExists(ctx, testLinkName, testSubnet) {
				t.Fatal("Route unexpectedly present before add")
			}
			if !prober.AddRoute(ctx, testLinkName, testSubnet, 123) {
				t.Fatal("AddRoute failed")
			}
			if !prober.RouteExists(ctx, testLinkName, testSubnet) {
				t.Fatal("Route missing after add")
			}
			if prober.AddRoute(ctx, testLinkName, testSubnet, 123) {
				t.Fatal("Adding an existing route must report failure")
			}

			routes, err := netlink.RouteListFiltered(netlink.FAMILY_V4,
				&netlink.Route{LinkIndex: link.Attrs().Index, Dst: network.PrefixToIPNet(testSubnet)},
				netlink.RT_FILTER_OIF|netlink.RT_FILTER_DST)
			if err != nil || len(routes) != 1 {
				t.Fatalf("Expected exactly one route, got %d (err=%v)", len(routes), err)
			}
			if routes[0].Priority != 123 || routes[0].Scope != netlink.SCOPE_LINK {
				t.Errorf("Unexpected route attributes: metric=%d scope=%v", routes[0].Priority, routes[0].Scope)
			}

			if !prober.RemoveRoute(ctx, testLinkName, testSubnet) {
				t.Fatal("RemoveRoute failed")
			}
			if prober.RouteExists(ctx, testLinkName, testSubnet) {
				t.Fatal("Route still present after remove")
			}
			if prober.RemoveRoute(ctx, testLinkName, testSubnet) {
				t.Fatal("Removing a missing route must report failure")
			}

			if !prober.IsReachable(ctx, testLinkName, reachableGateway) {
				t.Error("Expected local address to answer ping")
			}
		})
	}
}

func TestReconcileLoop(t *testing.T) {
	link := setupLink(t)
	ctx := context.Background()
	prober := backends()["netlink"]
	config := types.ReconciliationConfig{InterfaceName: testLinkName, PollPeriod: time.Second}

	t.Run("ReachableGatewayGetsRoute", func(t *testing.T) {
		target, _ := types.NewGatewayTarget(reachableGateway, []netip.Prefix{testSubnet})
		loop := reconcile.NewLoop(target, config, prober, shutdown.NewSignal())

		report := loop.Tick(ctx)
		if len(report.Subnets) != 1 || report.Subnets[0].Action != reconcile.ActionAdd || !report.Subnets[0].Succeeded {
			t.Fatalf("Expected a successful add, got %+v", report)
		}
		report = loop.Tick(ctx)
		if report.Subnets[0].Condition != reconcile.ConditionRouted {
			t.Fatalf("Expected routed condition, got %v", report.Subnets[0].Condition)
		}
	})

	t.Run("UnreachableGatewayLosesRoute", func(t *testing.T) {
		target, _ := types.NewGatewayTarget(unreachableGateway, []netip.Prefix{testSubnet})
		loop := reconcile.NewLoop(target, config, prober, shutdown.NewSignal())

		report := loop.Tick(ctx)
		if len(report.Subnets) != 1 || report.Subnets[0].Action != reconcile.ActionRemove || !report.Subnets[0].Succeeded {
			t.Fatalf("Expected a successful remove, got %+v", report)
		}
	})

	t.Run("LinkDownSkipsTick", func(t *testing.T) {
		if err := netlink.LinkSetDown(link); err != nil {
			t.Fatalf("Failed to set link down: %v", err)
		}
		target, _ := types.NewGatewayTarget(reachableGateway, []netip.Prefix{testSubnet})
		loop := reconcile.NewLoop(target, config, prober, shutdown.NewSignal())

		report := loop.Tick(ctx)
		if report.LinkUp || len(report.Subnets) != 0 {
			t.Fatalf("Expected link down tick, got %+v", report)
		}
	})

	t.Run("StopEndsRun", func(t *testing.T) {
		if err := netlink.LinkSetUp(link); err != nil {
			t.Fatalf("Failed to set link up: %v", err)
		}
		target, _ := types.NewGatewayTarget(reachableGateway, []netip.Prefix{testSubnet})
		stop := shutdown.NewSignal()
		loop := reconcile.NewLoop(target, types.ReconciliationConfig{InterfaceName: testLinkName, PollPeriod: time.Hour}, prober, stop)

		done := make(chan error, 1)
		go func() { done <- loop.Run(ctx) }()

		deadline := time.Now().Add(15 * time.Second)
		for !prober.RouteExists(ctx, testLinkName, testSubnet) {
			if time.Now().After(deadline) {
				t.Fatal("Route was never added")
			}
			time.Sleep(50 * time.Millisecond)
		}

		stop.RequestStop()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
		case <-time.After(15 * time.Second):
			t.Fatal("Loop did not stop")
		}
	})
}
