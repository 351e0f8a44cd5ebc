// klingsign-cli is a command-line client for a running klingsignd.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/Klingon-tech/klingsign/config"
	"github.com/Klingon-tech/klingsign/internal/rpc"
	"github.com/Klingon-tech/klingsign/internal/rpcclient"
	"github.com/Klingon-tech/klingsign/internal/wallet"
	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/google/uuid"
	"golang.org/x/term"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Parse global flags that appear before the subcommand.
	rpcURL := fmt.Sprintf("http://127.0.0.1:%d", config.DefaultRPCPort)
	dataDir := config.DefaultDataDir()

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	client := rpcclient.NewWithTimeout(rpcURL, 30*time.Second)
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "chains":
		cmdChains(client)
	case "wallets":
		cmdWallets(client, cmdArgs)
	case "import-mnemonic":
		cmdImportMnemonic(client, cmdArgs, (&config.Config{DataDir: dataDir}).KeystorePath())
	case "delete-wallet":
		cmdDeleteWallet(client, cmdArgs)
	case "resolve":
		cmdResolve(client, cmdArgs)
	case "validate":
		cmdValidate(client, cmdArgs)
	case "xcm-convert":
		cmdXcmConvert(client, cmdArgs)
	case "xcm-transfer":
		cmdXcmTransfer(client, cmdArgs)
	case "version":
		fmt.Printf("klingsign-cli %s\n", config.Version)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: klingsign-cli [global flags] <command> [args]

Global flags:
  --rpc <url>         RPC endpoint (default: http://127.0.0.1:%d)
  --datadir <path>    Data directory (default: ~/.klingsign)

Commands:
  chains                          List configured chains
  wallets [--chain <id>]          List wallets, optionally with their account on a chain
  import-mnemonic <name> [--mnemonic "..."] [--substrate <hex>]
                                  Import a secrets wallet from a BIP-39 mnemonic
  delete-wallet <meta_id>         Delete a wallet and its stored secret
  resolve <request.json>          Resolve the signer for delegated calls
  validate <request.json>         Show the checks a delegated call needs
  xcm-convert <kind> <version> <file>
                                  Re-encode a versioned location, asset, assets or message
  xcm-transfer <request.json>     Build an XCM execute call for a transfer
  version                         Show version
`, config.DefaultRPCPort)
}

// ── chains / wallets ────────────────────────────────────────────────────

func cmdChains(client *rpcclient.Client) {
	chains, err := client.ChainList()
	if err != nil {
		fatal("chain_list: %v", err)
	}
	for _, c := range chains {
		kind := "relay"
		if c.ParaID != nil {
			kind = fmt.Sprintf("para %d", *c.ParaID)
		}
		family := "substrate"
		if c.EthereumBased {
			family = "ethereum"
		}
		fmt.Printf("%-22s %-22s %-10s %-9s proxy=%t multisig=%t\n",
			c.ChainID, c.Name, kind, family, c.HasProxy, c.HasMultisig)
	}
}

func cmdWallets(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("wallets", flag.ExitOnError)
	chainID := fs.String("chain", "", "Show accounts on this chain")
	fs.Parse(args)

	wallets, err := client.WalletList(*chainID)
	if err != nil {
		fatal("wallet_list: %v", err)
	}
	if len(wallets) == 0 {
		fmt.Println("No wallets found.")
		return
	}
	for _, w := range wallets {
		line := fmt.Sprintf("%-36s %-20s %-14s", w.MetaID, w.Name, w.Type)
		if w.HasSecrets {
			line += " [secrets]"
		}
		if w.Account != nil {
			line += " " + w.Account.AccountID.Hex()
		}
		fmt.Println(line)
	}
}

func cmdImportMnemonic(client *rpcclient.Client, args []string, ksDir string) {
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		fatal("Usage: klingsign-cli import-mnemonic <name> [--mnemonic \"word1 word2 ...\"] [--substrate <hex>]")
	}
	name := args[0]
	fs := flag.NewFlagSet("import-mnemonic", flag.ExitOnError)
	mnemonicFlag := fs.String("mnemonic", "", "BIP-39 mnemonic (prompted when empty)")
	substrate := fs.String("substrate", "", "Substrate account id of the same secret")
	fs.Parse(args[1:])

	mnemonic := *mnemonicFlag
	if mnemonic == "" {
		entered, err := readPassword("Enter mnemonic: ")
		if err != nil {
			fatal("read mnemonic: %v", err)
		}
		mnemonic = string(entered)
	}
	mnemonic = wallet.NormalizeMnemonic(mnemonic)
	if !wallet.ValidateMnemonic(mnemonic) {
		fatal("invalid mnemonic")
	}

	var substrateID types.AccountID
	if *substrate != "" {
		id, err := types.HexToAccountID(*substrate)
		if err != nil || id.Len() != types.SubstrateAccountIDSize {
			fatal("invalid substrate account id %q", *substrate)
		}
		substrateID = id
	}

	// Prompt for password (twice).
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}

	eth, err := wallet.EthereumAddressFromMnemonic(mnemonic, "")
	if err != nil {
		fatal("derive address: %v", err)
	}

	// The secret stays local; only the public wallet record goes over RPC.
	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	metaID := uuid.NewString()
	if err := ks.Store(metaID, mnemonic, password, wallet.DefaultParams()); err != nil {
		fatal("store secret: %v", err)
	}

	m := &wallet.MetaAccount{
		MetaID:             metaID,
		Name:               name,
		Type:               wallet.TypeSecrets,
		SubstrateAccountID: substrateID,
		EthereumAddress:    eth,
	}
	added, err := client.AddWallet(m)
	if err != nil {
		if derr := ks.Delete(metaID); derr != nil {
			fmt.Fprintf(os.Stderr, "Warning: remove secret %s: %v\n", metaID, derr)
		}
		fatal("wallet_add: %v", err)
	}

	fmt.Printf("Wallet imported: %s\n", name)
	fmt.Printf("Meta ID:  %s\n", added)
	fmt.Printf("Ethereum: %s\n", eth.Hex())
}

func cmdDeleteWallet(client *rpcclient.Client, args []string) {
	if len(args) != 1 {
		fatal("Usage: klingsign-cli delete-wallet <meta_id>")
	}
	if err := client.DeleteWallet(args[0]); err != nil {
		fatal("wallet_delete: %v", err)
	}
	fmt.Printf("Wallet deleted: %s\n", args[0])
}

// ── delegation / xcm ────────────────────────────────────────────────────

// readRequest reads a JSON params file into target, so malformed
// requests fail before reaching the daemon.
func readRequest(command string, args []string, target interface{}) {
	if len(args) != 1 {
		fatal("Usage: klingsign-cli %s <request.json>", command)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fatal("read request: %v", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		fatal("parse request %s: %v", args[0], err)
	}
}

func cmdResolve(client *rpcclient.Client, args []string) {
	var p rpc.ResolveParam
	readRequest("resolve", args, &p)
	res, err := client.ResolveDelegation(p)
	if err != nil {
		fatal("delegation_resolve: %v", err)
	}
	printJSON(res)
}

func cmdValidate(client *rpcclient.Client, args []string) {
	var p rpc.ValidateParam
	readRequest("validate", args, &p)
	seq, err := client.ValidateDelegation(p)
	if err != nil {
		fatal("delegation_validate: %v", err)
	}
	for i, node := range seq.Nodes {
		fmt.Printf("%d. %-18s %-20s %s %s\n", i+1, node.Kind, node.Account.Name,
			node.Account.ChainAccount.AccountID.Hex(), node.Call.Path())
	}
}

func cmdXcmTransfer(client *rpcclient.Client, args []string) {
	var p rpc.XcmTransferParam
	readRequest("xcm-transfer", args, &p)
	res, err := client.XcmTransferCall(p)
	if err != nil {
		fatal("xcm_transferCall: %v", err)
	}
	fmt.Fprintf(os.Stderr, "%s transfer at %s, call hash %s\n", res.Type, res.Version, res.CallHash)
	call, err := json.Marshal(res.Call)
	if err != nil {
		fatal("encode call: %v", err)
	}
	printJSON(call)
}

func cmdXcmConvert(client *rpcclient.Client, args []string) {
	if len(args) != 3 {
		fatal("Usage: klingsign-cli xcm-convert <location|asset|assets|message> <version> <file>")
	}
	data, err := os.ReadFile(args[2])
	if err != nil {
		fatal("read %s: %v", args[2], err)
	}
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		fatal("%s is not valid JSON", args[2])
	}

	result, err := client.XcmConvert(args[0], data, args[1])
	if err != nil {
		fatal("xcm_convert: %v", err)
	}
	fmt.Fprintf(os.Stderr, "%s -> %s\n", result.FromVersion, result.Version)
	fmt.Println(string(result.Data))
}

// printJSON indents raw JSON without reordering keys.
func printJSON(raw json.RawMessage) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(buf.String())
}

// ── Password helper ─────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
