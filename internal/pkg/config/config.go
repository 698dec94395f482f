package config

import (
	"fmt"
	"math"
	"net/netip"
	"os"
	"strings"
	"time"

	"wireguard-subnets/internal/pkg/logging"
	"wireguard-subnets/internal/types"

	"gopkg.in/yaml.v3"
)

// Probe backends
const (
	BackendExec    = "exec"
	BackendNetlink = "netlink"
)

// Execution scope modes
const (
	ScopeAuto   = "auto"
	ScopeAlways = "always"
	ScopeNever  = "never"
)

// GatewayConfig represents a gateway and the subnets routed behind it
type GatewayConfig struct {
	Address string   `yaml:"address"`
	Subnets []string `yaml:"subnets"`
}

// Config represents the main configuration structure
type Config struct {
	Logging        logging.LogConfig `yaml:"logging"`
	Interface      string            `yaml:"interface"`
	Period         float64           `yaml:"period"` // seconds
	Metric         int               `yaml:"metric"`
	Backend        string            `yaml:"backend"`
	Scope          string            `yaml:"scope"`
	CheckPeers     bool              `yaml:"check_peers"`
	CommandTimeout float64           `yaml:"command_timeout"` // seconds
	Gateways       []GatewayConfig   `yaml:"gateways"`
}

// Default returns the configuration used when nothing else is specified
func Default() *Config {
	return &Config{
		Logging: logging.LogConfig{
			Level:  "info",
			Format: "simple",
		},
		Interface:      "wg0",
		Period:         20,
		Metric:         0,
		Backend:        BackendExec,
		Scope:          ScopeAuto,
		CheckPeers:     true,
		CommandTimeout: 30,
	}
}

// Load loads configuration from a YAML file on top of the defaults
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return config, nil
}

// ParseGatewaySpec parses the command line form IP:SUBNET1,SUBNET2,...
// IPv6 gateways are written in brackets: [fd00::4]:fd00:1::/64
func ParseGatewaySpec(value string) (GatewayConfig, error) {
	value = strings.TrimSpace(value)

	var addr, subnets string
	if strings.HasPrefix(value, "[") {
		end := strings.Index(value, "]:")
		if end < 0 {
			return GatewayConfig{}, fmt.Errorf("unrecognized ip:subnet1,subnet2,... format: '%s'", value)
		}
		addr, subnets = value[1:end], value[end+2:]
	} else {
		parts := strings.SplitN(value, ":", 2)
		if len(parts) != 2 {
			return GatewayConfig{}, fmt.Errorf("unrecognized ip:subnet1,subnet2,... format: '%s'", value)
		}
		addr, subnets = parts[0], parts[1]
	}

	gateway := GatewayConfig{Address: addr}
	for _, s := range strings.Split(subnets, ",") {
		gateway.Subnets = append(gateway.Subnets, strings.TrimSpace(s))
	}

	if _, _, err := gateway.parse(); err != nil {
		return GatewayConfig{}, fmt.Errorf("unrecognized ip:subnet1,subnet2,... format: '%s': %w", value, err)
	}
	return gateway, nil
}

func (g GatewayConfig) parse() (netip.Addr, []netip.Prefix, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(g.Address))
	if err != nil {
		return netip.Addr{}, nil, fmt.Errorf("invalid gateway address %q: %w", g.Address, err)
	}
	if len(g.Subnets) == 0 {
		return netip.Addr{}, nil, fmt.Errorf("gateway %s: no subnets configured", addr)
	}

	prefixes := make([]netip.Prefix, 0, len(g.Subnets))
	for _, s := range g.Subnets {
		prefix, err := parsePrefix(s)
		if err != nil {
			return netip.Addr{}, nil, fmt.Errorf("gateway %s: %w", addr, err)
		}
		prefixes = append(prefixes, prefix)
	}
	return addr, prefixes, nil
}

// parsePrefix accepts CIDR notation or a bare address (host route), and
// rejects prefixes with host bits set the way a strict network parser does.
func parsePrefix(s string) (netip.Prefix, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "/") {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("invalid subnet %q: %w", s, err)
		}
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}

	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid subnet %q: %w", s, err)
	}
	if prefix.Masked() != prefix {
		return netip.Prefix{}, fmt.Errorf("invalid subnet %q: host bits set", s)
	}
	return prefix, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Interface) == "" {
		return fmt.Errorf("interface name is required")
	}
	if err := checkSeconds("period", c.Period); err != nil {
		return err
	}
	if c.Period <= 0 || c.PollPeriod() <= 0 {
		return fmt.Errorf("period %v must be a positive number of seconds", c.Period)
	}
	if c.Metric < 0 {
		return fmt.Errorf("metric %d must be a positive integer", c.Metric)
	}
	if err := checkSeconds("command timeout", c.CommandTimeout); err != nil {
		return err
	}
	if c.CommandTimeout < 0 {
		return fmt.Errorf("command timeout %v must not be negative", c.CommandTimeout)
	}

	switch c.Backend {
	case BackendExec, BackendNetlink:
	default:
		return fmt.Errorf("unknown backend %q: must be %s or %s", c.Backend, BackendExec, BackendNetlink)
	}

	switch c.Scope {
	case ScopeAuto, ScopeAlways, ScopeNever:
	default:
		return fmt.Errorf("unknown scope %q: must be %s, %s or %s", c.Scope, ScopeAuto, ScopeAlways, ScopeNever)
	}

	_, err := c.Targets()
	return err
}

// maxSeconds is the largest number of seconds a time.Duration can hold.
const maxSeconds = float64(math.MaxInt64 / int64(time.Second))

// checkSeconds rejects values that do not convert to a time.Duration.
func checkSeconds(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s %v must be a finite number of seconds", name, v)
	}
	if v > maxSeconds {
		return fmt.Errorf("%s %v exceeds the maximum of %v seconds", name, v, maxSeconds)
	}
	return nil
}

// Targets builds one gateway target per distinct gateway address. Entries
// naming the same gateway are merged; a subnet claimed by two different
// gateways is rejected since each subnet must be owned by exactly one loop.
func (c *Config) Targets() ([]types.GatewayTarget, error) {
	if len(c.Gateways) == 0 {
		return nil, fmt.Errorf("no gateways configured")
	}

	var order []netip.Addr
	subnets := make(map[netip.Addr][]netip.Prefix)
	owner := make(map[netip.Prefix]netip.Addr)

	for _, g := range c.Gateways {
		addr, prefixes, err := g.parse()
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()

		if _, seen := subnets[addr]; !seen {
			order = append(order, addr)
		}
		for _, p := range prefixes {
			if other, taken := owner[p]; taken && other != addr {
				return nil, fmt.Errorf("subnet %s is configured behind both %s and %s", p, other, addr)
			}
			owner[p] = addr
			subnets[addr] = append(subnets[addr], p)
		}
	}

	targets := make([]types.GatewayTarget, 0, len(order))
	for _, addr := range order {
		target, err := types.NewGatewayTarget(addr, subnets[addr])
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// PollPeriod returns the period as a duration
func (c *Config) PollPeriod() time.Duration {
	return time.Duration(c.Period * float64(time.Second))
}

// CommandTimeoutDuration returns the per-command timeout as a duration
func (c *Config) CommandTimeoutDuration() time.Duration {
	return time.Duration(c.CommandTimeout * float64(time.Second))
}

// ReconciliationConfig returns the settings shared by every reconciliation loop
func (c *Config) ReconciliationConfig(scoped bool) types.ReconciliationConfig {
	return types.ReconciliationConfig{
		InterfaceName:      strings.TrimSpace(c.Interface),
		PollPeriod:         c.PollPeriod(),
		Metric:             c.Metric,
		UseScopedExecution: scoped,
	}
}
