package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wireguard-subnets",
	Short: "wireguard-subnets keeps routes to subnets behind WireGuard gateways in sync with their reachability",
	Long: "wireguard-subnets performs unattended addition and removal of remote subnets accessible\n" +
		"through a WireGuard interface to the host's routing table. Works great combined with systemd.",
	SilenceUsage: true,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
