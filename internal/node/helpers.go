package node

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Klingon-tech/klingsign/config"
)

// expandHome replaces a leading ~ or ~/ with the user's home directory.
// Other forms (~user) are returned unchanged.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// paths holds the expanded on-disk locations a node uses.
type paths struct {
	logFile  string
	chains   string
	wallets  string
	keystore string
}

// resolvePaths expands every configured path and creates the log
// directory when the default log file is used.
func resolvePaths(cfg *config.Config) (paths, error) {
	p := paths{
		logFile:  expandHome(cfg.Log.File),
		chains:   expandHome(cfg.ChainsPath()),
		wallets:  expandHome(cfg.WalletsDir()),
		keystore: expandHome(cfg.KeystorePath()),
	}
	if p.logFile == "" {
		logsDir := expandHome(cfg.LogsDir())
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return paths{}, fmt.Errorf("creating logs dir: %w", err)
		}
		p.logFile = filepath.Join(logsDir, "klingsign.log")
	}
	return p, nil
}
