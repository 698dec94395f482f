//go:build unit

package probe

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"

	"wireguard-subnets/internal/mock"
	"wireguard-subnets/internal/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
	"go.uber.org/mock/gomock"
)

func newWireguardLink(flags net.Flags) netlink.Link {
	return &netlink.Wireguard{LinkAttrs: netlink.LinkAttrs{Index: 5, Name: "wg0", Flags: flags}}
}

func TestNetlinkProber_IsInterfaceUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	networkMgr := mock.NewMockNetworkManager(ctrl)
	prober := NewNetlinkProber(networkMgr, mock.NewMockCommandRunner(ctrl))
	ctx := context.Background()

	t.Run("Up", func(t *testing.T) {
		networkMgr.EXPECT().GetLinkByName("wg0").Return(newWireguardLink(net.FlagUp|net.FlagPointToPoint), nil)
		assert.True(t, prober.IsInterfaceUp(ctx, "wg0"))
	})

	t.Run("Down", func(t *testing.T) {
		networkMgr.EXPECT().GetLinkByName("wg0").Return(newWireguardLink(net.FlagPointToPoint), nil)
		assert.False(t, prober.IsInterfaceUp(ctx, "wg0"))
	})

	t.Run("Missing", func(t *testing.T) {
		networkMgr.EXPECT().GetLinkByName("wg0").Return(nil, errors.New("Link not found"))
		assert.False(t, prober.IsInterfaceUp(ctx, "wg0"))
	})
}

func TestNetlinkProber_IsReachable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runner := mock.NewMockCommandRunner(ctrl)
	prober := NewNetlinkProber(mock.NewMockNetworkManager(ctrl), runner)
	ctx := context.Background()

	runner.EXPECT().
		Run(ctx, "ping", "-W5", "-c3", "-I", "wg0", "10.0.0.4").
		Return(port.CommandResult{}, nil)

	assert.True(t, prober.IsReachable(ctx, "wg0", netip.MustParseAddr("10.0.0.4")))
}

func TestNetlinkProber_RouteExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	networkMgr := mock.NewMockNetworkManager(ctrl)
	prober := NewNetlinkProber(networkMgr, mock.NewMockCommandRunner(ctrl))
	ctx := context.Background()
	link := newWireguardLink(net.FlagUp)
	subnet := netip.MustParsePrefix("192.168.1.0/24")

	t.Run("Present", func(t *testing.T) {
		networkMgr.EXPECT().GetLinkByName("wg0").Return(link, nil)
		networkMgr.EXPECT().ListRoutes(link, subnet).Return([]netlink.Route{{LinkIndex: 5}}, nil)
		assert.True(t, prober.RouteExists(ctx, "wg0", subnet))
	})

	t.Run("Absent", func(t *testing.T) {
		networkMgr.EXPECT().GetLinkByName("wg0").Return(link, nil)
		networkMgr.EXPECT().ListRoutes(link, subnet).Return(nil, nil)
		assert.False(t, prober.RouteExists(ctx, "wg0", subnet))
	})

	t.Run("ListFailed", func(t *testing.T) {
		networkMgr.EXPECT().GetLinkByName("wg0").Return(link, nil)
		networkMgr.EXPECT().ListRoutes(link, subnet).Return(nil, errors.New("netlink receive: interrupted"))
		assert.False(t, prober.RouteExists(ctx, "wg0", subnet))
	})

	t.Run("LinkGone", func(t *testing.T) {
		networkMgr.EXPECT().GetLinkByName("wg0").Return(nil, errors.New("Link not found"))
		assert.False(t, prober.RouteExists(ctx, "wg0", subnet))
	})
}

func TestNetlinkProber_AddRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	networkMgr := mock.NewMockNetworkManager(ctrl)
	prober := NewNetlinkProber(networkMgr, mock.NewMockCommandRunner(ctrl))
	ctx := context.Background()
	link := newWireguardLink(net.FlagUp)
	subnet := netip.MustParsePrefix("192.168.1.0/24")

	t.Run("Success", func(t *testing.T) {
		var added *netlink.Route
		networkMgr.EXPECT().GetLinkByName("wg0").Return(link, nil)
		networkMgr.EXPECT().AddRoute(gomock.Any()).DoAndReturn(func(route *netlink.Route) error {
			added = route
			return nil
		})

		assert.True(t, prober.AddRoute(ctx, "wg0", subnet, 42))
		require.NotNil(t, added)
		assert.Equal(t, 5, added.LinkIndex)
		assert.Equal(t, "192.168.1.0/24", added.Dst.String())
		assert.Equal(t, netlink.SCOPE_LINK, added.Scope)
		assert.Equal(t, 42, added.Priority)
	})

	t.Run("Failure", func(t *testing.T) {
		networkMgr.EXPECT().GetLinkByName("wg0").Return(link, nil)
		networkMgr.EXPECT().AddRoute(gomock.Any()).Return(errors.New("file exists"))
		assert.False(t, prober.AddRoute(ctx, "wg0", subnet, 0))
	})
}

func TestNetlinkProber_RemoveRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	networkMgr := mock.NewMockNetworkManager(ctrl)
	prober := NewNetlinkProber(networkMgr, mock.NewMockCommandRunner(ctrl))
	ctx := context.Background()
	link := newWireguardLink(net.FlagUp)
	subnet := netip.MustParsePrefix("fd00:1::/64")

	t.Run("Success", func(t *testing.T) {
		networkMgr.EXPECT().GetLinkByName("wg0").Return(link, nil)
		networkMgr.EXPECT().DeleteRoute(gomock.Any()).DoAndReturn(func(route *netlink.Route) error {
			assert.Equal(t, "fd00:1::/64", route.Dst.String())
			return nil
		})
		assert.True(t, prober.RemoveRoute(ctx, "wg0", subnet))
	})

	t.Run("Failure", func(t *testing.T) {
		networkMgr.EXPECT().GetLinkByName("wg0").Return(link, nil)
		networkMgr.EXPECT().DeleteRoute(gomock.Any()).Return(errors.New("no such process"))
		assert.False(t, prober.RemoveRoute(ctx, "wg0", subnet))
	})
}
