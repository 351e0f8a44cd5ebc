package delegation

import (
	"slices"

	"github.com/Klingon-tech/klingsign/pkg/runtime"
)

// nestedProxyTypes may dispatch Proxy, Multisig and Utility wrapper calls.
var nestedProxyTypes = []runtime.ProxyType{runtime.ProxyAny, runtime.ProxyNonTransfer}

// Modules whose calls move funds.
var transferModules = []string{
	"Balances", "Assets", "ForeignAssets", "PoolAssets", "Tokens", "Currencies",
	"Uniques", "Nfts", "XTokens", "XcmPallet", "PolkadotXcm", "Vesting", "Indices",
}

// Extra calls NonTransfer may not dispatch outside transferModules.
var transferCalls = []runtime.CallCodingPath{
	runtime.NewCallCodingPath("Claims", "attest"),
	runtime.NewCallCodingPath("Claims", "claim"),
}

var (
	governanceModules = []string{
		"Treasury", "Bounties", "ChildBounties", "ConvictionVoting", "Referenda",
		"Whitelist", "Democracy", "Council", "TechnicalCommittee", "PhragmenElection",
		"TechnicalMembership", "Tips", "Utility",
	}
	stakingModules = []string{
		"Staking", "Session", "Utility", "FastUnstake", "VoterList", "NominationPools",
	}
	nominationPoolsModules = []string{"NominationPools", "Utility"}
	auctionModules         = []string{"Auctions", "Crowdloan", "Registrar", "Slots"}
)

// ProxyTypesForCall returns the proxy types allowed to dispatch path, in
// declaration order.
func ProxyTypesForCall(path runtime.CallCodingPath) []runtime.ProxyType {
	allowed := []runtime.ProxyType{runtime.ProxyAny}

	if !slices.Contains(transferModules, path.Module) && !slices.Contains(transferCalls, path) {
		allowed = append(allowed, runtime.ProxyNonTransfer)
	}
	if slices.Contains(governanceModules, path.Module) {
		allowed = append(allowed, runtime.ProxyGovernance)
	}
	if slices.Contains(stakingModules, path.Module) {
		allowed = append(allowed, runtime.ProxyStaking)
	}
	if path == runtime.NewCallCodingPath("Identity", "provide_judgement") || path.Module == runtime.ModuleUtility {
		allowed = append(allowed, runtime.ProxyIdentityJudgement)
	}
	if path == runtime.NewCallCodingPath(runtime.ModuleProxy, "reject_announcement") ||
		path.Module == runtime.ModuleUtility || path.Module == runtime.ModuleMultisig {
		allowed = append(allowed, runtime.ProxyCancelProxy)
	}
	if slices.Contains(auctionModules, path.Module) {
		allowed = append(allowed, runtime.ProxyAuction)
	}
	if slices.Contains(nominationPoolsModules, path.Module) {
		allowed = append(allowed, runtime.ProxyNominationPools)
	}
	return allowed
}
