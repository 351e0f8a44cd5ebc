package config

import "github.com/Klingon-tech/klingsign/pkg/xcm"

// DefaultRPCPort is the default JSON-RPC listen port.
const DefaultRPCPort = 9955

// Default returns the default daemon configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		RPC: RPCConfig{
			Enabled:    true,
			Addr:       "127.0.0.1",
			Port:       DefaultRPCPort,
			AllowedIPs: []string{"127.0.0.1"},
		},
		ChainsFile: "chains.json",
		XcmVersion: xcm.V4,
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
