package runtime

// ProxyType is a proxy permission class from the Proxy pallet.
type ProxyType string

// Proxy types known across Polkadot ecosystem runtimes.
const (
	ProxyAny               ProxyType = "Any"
	ProxyNonTransfer       ProxyType = "NonTransfer"
	ProxyGovernance        ProxyType = "Governance"
	ProxyStaking           ProxyType = "Staking"
	ProxyIdentityJudgement ProxyType = "IdentityJudgement"
	ProxyCancelProxy       ProxyType = "CancelProxy"
	ProxyAuction           ProxyType = "Auction"
	ProxyNominationPools   ProxyType = "NominationPools"
)

// ProxyTypes lists the known types in declaration order.
var ProxyTypes = []ProxyType{
	ProxyAny,
	ProxyNonTransfer,
	ProxyGovernance,
	ProxyStaking,
	ProxyIdentityJudgement,
	ProxyCancelProxy,
	ProxyAuction,
	ProxyNominationPools,
}

// Rank returns the declaration index of t, or len(ProxyTypes) for
// runtime-specific types.
func (t ProxyType) Rank() int {
	for i, known := range ProxyTypes {
		if known == t {
			return i
		}
	}
	return len(ProxyTypes)
}
