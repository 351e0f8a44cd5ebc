// Package node assembles the signing daemon: storage, wallets, chain
// descriptors and the RPC server. It can be embedded in any binary.
package node

import (
	"fmt"
	"net"
	"strconv"

	"github.com/Klingon-tech/klingsign/config"
	klog "github.com/Klingon-tech/klingsign/internal/log"
	"github.com/Klingon-tech/klingsign/internal/rpc"
	"github.com/Klingon-tech/klingsign/internal/storage"
	"github.com/Klingon-tech/klingsign/internal/wallet"
	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/rs/zerolog"
)

// Node is a fully-initialized signing daemon.
type Node struct {
	cfg    *config.Config
	logger zerolog.Logger

	db       storage.DB
	wallets  *wallet.Repository
	keystore *wallet.Keystore
	chains   []types.Chain

	rpcServer *rpc.Server
}

// New creates and initializes a new Node. It opens storage, loads the
// chain descriptors and prepares the RPC server, but does not listen
// until Start is called.
func New(cfg *config.Config) (*Node, error) {
	// ── 1. Init logger ──────────────────────────────────────────────
	p, err := resolvePaths(cfg)
	if err != nil {
		return nil, err
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, p.logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.WithComponent("node")

	// ── 2. Chains ───────────────────────────────────────────────────
	chains, err := config.LoadChains(p.chains)
	if err != nil {
		return nil, fmt.Errorf("load chains: %w", err)
	}
	logger.Info().
		Str("path", p.chains).
		Int("chains", len(chains)).
		Str("xcm_version", cfg.XcmVersion.String()).
		Msg("Starting Klingsign")

	// ── 3. Open storage ─────────────────────────────────────────────
	db, err := storage.NewBadger(p.wallets)
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", p.wallets, err)
	}
	repo := wallet.NewRepository(db)
	logger.Info().Str("path", p.wallets).Msg("Wallet database opened")

	// ── 4. Keystore ─────────────────────────────────────────────────
	ks, err := wallet.NewKeystore(p.keystore)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create wallet keystore: %w", err)
	}
	logger.Info().Str("path", p.keystore).Msg("Keystore ready")

	n := &Node{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		wallets:  repo,
		keystore: ks,
		chains:   chains,
	}

	// ── 5. RPC ──────────────────────────────────────────────────────
	if cfg.RPC.Enabled {
		addr := net.JoinHostPort(cfg.RPC.Addr, strconv.Itoa(cfg.RPC.Port))
		n.rpcServer = rpc.New(addr, repo, chains, cfg.RPC)
		n.rpcServer.SetKeystore(ks)
		n.rpcServer.SetXcmVersion(cfg.XcmVersion)
	} else {
		logger.Warn().Msg("RPC disabled by config")
	}

	return n, nil
}

// Start binds the RPC listener.
func (n *Node) Start() error {
	if n.rpcServer != nil {
		if err := n.rpcServer.Start(); err != nil {
			return fmt.Errorf("start rpc: %w", err)
		}
		n.logger.Info().Str("addr", n.rpcServer.Addr()).Msg("RPC server listening")
	}

	n.logger.Info().Int("chains", len(n.chains)).Msg("Node started successfully")
	return nil
}

// Stop performs graceful shutdown in reverse order.
func (n *Node) Stop() {
	if n.rpcServer != nil {
		if err := n.rpcServer.Stop(); err != nil {
			n.logger.Warn().Err(err).Msg("RPC shutdown")
		}
	}
	if n.db != nil {
		n.db.Close()
	}

	n.logger.Info().Msg("Goodbye!")
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// Wallets returns the wallet repository.
func (n *Node) Wallets() *wallet.Repository {
	return n.wallets
}

// Chains returns the loaded chain descriptors.
func (n *Node) Chains() []types.Chain {
	return n.chains
}
