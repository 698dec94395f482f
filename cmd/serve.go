package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wireguard-subnets/internal/adapter/infrastructure/command"
	"wireguard-subnets/internal/adapter/infrastructure/file"
	"wireguard-subnets/internal/adapter/infrastructure/network"
	"wireguard-subnets/internal/adapter/infrastructure/wireguard"
	"wireguard-subnets/internal/adapter/probe"
	"wireguard-subnets/internal/adapter/reconcile"
	"wireguard-subnets/internal/pkg/config"
	"wireguard-subnets/internal/pkg/logging"
	"wireguard-subnets/internal/pkg/scheduler"
	"wireguard-subnets/internal/pkg/shutdown"
	"wireguard-subnets/internal/pkg/supervisor"
	"wireguard-subnets/internal/port"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// serveOptions holds the raw flag values of the serve command
type serveOptions struct {
	configFile     string
	iface          string
	period         float64
	metric         int
	backend        string
	scope          string
	logLevel       string
	logFormat      string
	checkPeers     bool
	commandTimeout float64
}

var serveOpts serveOptions

func bindServeFlags(cmd *cobra.Command, o *serveOptions) {
	defaults := config.Default()
	flags := cmd.Flags()
	flags.StringVarP(&o.configFile, "config", "f", "", "Path to config file (YAML)")
	flags.StringVarP(&o.iface, "interface", "i", defaults.Interface, "the interface to be set and kept up")
	flags.Float64VarP(&o.period, "period", "p", defaults.Period, "waiting time in seconds between program iterations")
	flags.IntVarP(&o.metric, "metric", "m", defaults.Metric, "metric of new routing table entries")
	flags.StringVar(&o.backend, "backend", defaults.Backend, "probe backend: exec or netlink")
	flags.StringVar(&o.scope, "scope", defaults.Scope, "wrap commands in a systemd scope: auto, always or never")
	flags.StringVar(&o.logLevel, "log-level", defaults.Logging.Level, "log level")
	flags.StringVar(&o.logFormat, "log-format", defaults.Logging.Format, "log format: text, json, simple or compact")
	flags.BoolVar(&o.checkPeers, "check-peers", defaults.CheckPeers, "warn about subnets not covered by WireGuard AllowedIPs")
	flags.Float64Var(&o.commandTimeout, "command-timeout", defaults.CommandTimeout, "upper bound in seconds for a single external command")
}

// buildConfig merges the config file, explicitly set flags and positional
// gateway specs, then validates the result.
func buildConfig(cmd *cobra.Command, o *serveOptions, args []string) (*config.Config, error) {
	cfg := config.Default()
	if o.configFile != "" {
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("interface") {
		cfg.Interface = o.iface
	}
	if flags.Changed("period") {
		cfg.Period = o.period
	}
	if flags.Changed("metric") {
		cfg.Metric = o.metric
	}
	if flags.Changed("backend") {
		cfg.Backend = o.backend
	}
	if flags.Changed("scope") {
		cfg.Scope = o.scope
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = o.logFormat
	}
	if flags.Changed("check-peers") {
		cfg.CheckPeers = o.checkPeers
	}
	if flags.Changed("command-timeout") {
		cfg.CommandTimeout = o.commandTimeout
	}

	for _, arg := range args {
		gateway, err := config.ParseGatewaySpec(arg)
		if err != nil {
			return nil, err
		}
		cfg.Gateways = append(cfg.Gateways, gateway)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}
	return cfg, nil
}

// newProber creates the probe adapter selected by the backend name
func newProber(backend string, runner port.CommandRunner) port.RouteProber {
	if backend == config.BackendNetlink {
		return probe.NewNetlinkProber(network.NewManagerAdapter(), runner)
	}
	return probe.NewExecProber(runner)
}

var serveCmd = &cobra.Command{
	Use:   "serve [flags] gateway:subnets...",
	Short: "Keep routes to the subnets behind each gateway in sync with its reachability",
	Example: "  wireguard-subnets serve 10.0.0.4:192.168.1.0/24,172.20.0.0/25 10.1.0.2:192.168.2.0/24\n" +
		"  wireguard-subnets serve -i wg1 -p 5 '[fd00::4]:fd00:1::/64'",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd, &serveOpts, args)
		if err != nil {
			return err
		}

		logging.InitLogger(cfg.Logging)
		logger := logging.WithComponentAndInterface("daemon", cfg.Interface)

		if err := supervisor.CheckPrivileges(); err != nil {
			return err
		}

		targets, err := cfg.Targets()
		if err != nil {
			return err
		}

		scoped := supervisor.UseScopedExecution(cfg.Scope, file.NewManagerAdapter())
		runner := command.NewRunnerAdapter(scoped, cfg.CommandTimeoutDuration())
		prober := newProber(cfg.Backend, runner)
		reconcileConfig := cfg.ReconciliationConfig(runner.Scoped())

		logger.WithFields(logrus.Fields{
			"period":  reconcileConfig.PollPeriod.String(),
			"metric":  reconcileConfig.Metric,
			"backend": cfg.Backend,
			"scoped":  reconcileConfig.UseScopedExecution,
		}).Info("Starting WireGuard Subnets")
		for _, target := range targets {
			for _, subnet := range target.Subnets {
				logger.WithFields(logrus.Fields{
					"gateway": target.Address.String(),
					"subnet":  subnet.String(),
				}).Info("Managing subnet behind gateway")
			}
		}

		if cfg.CheckPeers {
			wireguard.CheckPeerCoverage(wireguard.NewInspectorAdapter(), reconcileConfig.InterfaceName, targets)
		}

		stop := shutdown.NewSignal()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		go func() {
			select {
			case sig := <-sigChan:
				logger.WithField("signal", sig.String()).Info("Stop signal received")
				stop.RequestStop()
			case <-stop.Done():
			}
		}()

		sched := scheduler.New()
		for _, target := range targets {
			sched.Add(reconcile.NewLoop(target, reconcileConfig, prober, stop))
		}

		// Probes use a context that outlives the stop request so an in-flight
		// route mutation is never cut short.
		if err := sched.Run(context.Background()); err != nil {
			logger.WithError(err).Error("Reconciliation ended with errors")
		}
		stop.RequestStop()
		logger.Info("Exiting")
		return nil
	},
}

func init() {
	bindServeFlags(serveCmd, &serveOpts)
	rootCmd.AddCommand(serveCmd)
}
