package config

import (
	"fmt"
	"net"
	"slices"
	"strings"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir is empty")
	}
	if cfg.RPC.Port < 0 || cfg.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port must be in range [0, 65535]")
	}
	if cfg.ChainsFile == "" {
		return fmt.Errorf("chains.file is empty")
	}
	if !cfg.XcmVersion.Valid() {
		return fmt.Errorf("xcm.version %s is not supported", cfg.XcmVersion)
	}
	if cfg.Log.Level != "" && !slices.Contains(logLevels, strings.ToLower(cfg.Log.Level)) {
		return fmt.Errorf("log.level %q must be one of %s", cfg.Log.Level, strings.Join(logLevels, ", "))
	}
	for i, ip := range cfg.RPC.AllowedIPs {
		if _, _, err := net.ParseCIDR(ip); err == nil {
			continue
		}
		if net.ParseIP(ip) == nil {
			return fmt.Errorf("rpc.allowedips[%d] %q is not an IP or CIDR", i, ip)
		}
	}
	return nil
}
