// Package config handles application configuration.
//
// Settings come from three layers, later ones winning: built-in
// defaults, the klingsign.conf file in the data directory, and
// command-line flags. Chain descriptors live in a separate JSON file.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/Klingon-tech/klingsign/pkg/xcm"
)

// Config holds daemon runtime configuration.
type Config struct {
	DataDir string `conf:"datadir"`

	RPC RPCConfig

	// Chains descriptor file. Relative paths resolve against DataDir.
	ChainsFile string `conf:"chains.file"`

	// Keystore directory. Empty means <datadir>/keystore.
	KeystoreDir string `conf:"keystore.dir"`

	// XCM version used when a request doesn't name one.
	XcmVersion xcm.Version `conf:"xcm.version"`

	Log LogConfig
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled"`
	Addr        string   `conf:"rpc.addr"`
	Port        int      `conf:"rpc.port"`
	AllowedIPs  []string `conf:"rpc.allowedips"`
	CORSOrigins []string `conf:"rpc.cors"` // Allowed CORS origins ("*" = all).
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.klingsign
//	macOS:   ~/Library/Application Support/Klingsign
//	Windows: %APPDATA%\Klingsign
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".klingsign"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Klingsign")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Klingsign")
		}
		return filepath.Join(home, "AppData", "Roaming", "Klingsign")
	default:
		return filepath.Join(home, ".klingsign")
	}
}

// WalletsDir returns the wallet database directory.
func (c *Config) WalletsDir() string {
	return filepath.Join(c.DataDir, "wallets")
}

// KeystorePath returns the keystore directory.
func (c *Config) KeystorePath() string {
	if c.KeystoreDir != "" {
		return c.KeystoreDir
	}
	return filepath.Join(c.DataDir, "keystore")
}

// ChainsPath returns the chain descriptor file path.
func (c *Config) ChainsPath() string {
	if filepath.IsAbs(c.ChainsFile) {
		return c.ChainsFile
	}
	return filepath.Join(c.DataDir, c.ChainsFile)
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "klingsign.conf")
}
