package xcm

import (
	"fmt"

	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/holiman/uint256"
)

// TransferType is the way assets move between origin and destination.
type TransferType uint8

// Transfer types.
const (
	TransferTeleport TransferType = iota
	TransferLocalReserve
	TransferDestinationReserve
	TransferRemoteReserve
)

func (t TransferType) String() string {
	switch t {
	case TransferTeleport:
		return "teleport"
	case TransferLocalReserve:
		return "localReserve"
	case TransferDestinationReserve:
		return "destinationReserve"
	case TransferRemoteReserve:
		return "remoteReserve"
	}
	return fmt.Sprintf("TransferType(%d)", t)
}

// systemParaIDLimit bounds the parachain ids reserved for system chains.
const systemParaIDLimit = 2000

// ChainLocation is a chain in the consensus tree. A nil ParaID is the relay.
type ChainLocation struct {
	ParaID        *uint32 `json:"para_id,omitempty"`
	EthereumBased bool    `json:"ethereum_based,omitempty"`
}

func (c ChainLocation) isSystem() bool {
	return c.ParaID == nil || *c.ParaID < systemParaIDLimit
}

func (c ChainLocation) same(o ChainLocation) bool {
	if c.ParaID == nil || o.ParaID == nil {
		return c.ParaID == nil && o.ParaID == nil
	}
	return *c.ParaID == *o.ParaID
}

func (c ChainLocation) absolute() AbsoluteLocation {
	return NewAbsoluteLocation(c.ParaID)
}

// TransferRequest describes an unweighted cross-chain transfer.
type TransferRequest struct {
	Origin        ChainLocation
	Destination   ChainLocation
	Reserve       ChainLocation
	AssetLocation AbsoluteLocation
	Amount        uint256.Int
	Beneficiary   types.AccountID
	// UtilityAsset marks the native token of the relay ecosystem, which
	// system chains teleport instead of reserve-transferring.
	UtilityAsset bool
}

// Type derives how the request moves its asset.
func (r TransferRequest) Type() TransferType {
	switch {
	case r.UtilityAsset && r.Origin.isSystem() && r.Destination.isSystem():
		return TransferTeleport
	case r.Origin.same(r.Reserve):
		return TransferLocalReserve
	case r.Destination.same(r.Reserve):
		return TransferDestinationReserve
	}
	return TransferRemoteReserve
}

// originFeeLimit is the limit bought on origin. The origin message is
// weighted as a whole, so any non-zero bounded value works here.
var originFeeLimit = Limited(NewWeight(1, 1))

func (r TransferRequest) assetAt(chain ChainLocation) Asset {
	return NewAsset(r.AssetLocation.FromPointOfView(chain.absolute()), &r.Amount)
}

// depositProgram buys execution on chain and deposits to the beneficiary.
func (r TransferRequest) depositProgram(chain ChainLocation) Message {
	dest := r.Destination.absolute()
	beneficiary := dest.AppendingAccountID(r.Beneficiary, r.Destination.EthereumBased).FromPointOfView(dest)
	return Message{
		BuyExecution{Fees: r.assetAt(chain).Half(), WeightLimit: Unlimited},
		DepositAsset{Assets: AllCounted(1), MaxAssets: 1, Beneficiary: beneficiary},
	}
}

// TransferProgram builds the origin-side execute program for r.
func TransferProgram(r TransferRequest) Message {
	origin := r.Origin.absolute()
	dest := r.Destination.absolute()
	originAsset := r.assetAt(r.Origin)

	program := Message{
		WithdrawAsset{Assets: Assets{originAsset}},
		BuyExecution{Fees: originAsset.Half(), WeightLimit: originFeeLimit},
	}

	switch r.Type() {
	case TransferTeleport:
		program = append(program, InitiateTeleport{
			Assets: AllCounted(1),
			Dest:   dest.FromPointOfView(origin),
			XCM:    r.depositProgram(r.Destination),
		})
	case TransferLocalReserve:
		program = append(program, DepositReserveAsset{
			Assets:    AllCounted(1),
			MaxAssets: 1,
			Dest:      dest.FromPointOfView(origin),
			XCM:       r.depositProgram(r.Destination),
		})
	case TransferDestinationReserve:
		program = append(program, InitiateReserveWithdraw{
			Assets:  AllCounted(1),
			Reserve: dest.FromPointOfView(origin),
			XCM:     r.depositProgram(r.Destination),
		})
	case TransferRemoteReserve:
		reserve := r.Reserve.absolute()
		program = append(program, InitiateReserveWithdraw{
			Assets:  AllCounted(1),
			Reserve: reserve.FromPointOfView(origin),
			XCM: Message{
				BuyExecution{Fees: r.assetAt(r.Reserve).Half(), WeightLimit: Unlimited},
				DepositReserveAsset{
					Assets:    AllCounted(1),
					MaxAssets: 1,
					Dest:      dest.FromPointOfView(reserve),
					XCM:       r.depositProgram(r.Destination),
				},
			},
		})
	}
	return program
}

// WeightMessage builds a message used only to estimate the weight of the
// listed instructions on a remote chain.
func WeightMessage(names []string, dest Location, asset Asset) (Message, error) {
	msg := make(Message, 0, len(names))
	for _, name := range names {
		switch name {
		case TagWithdrawAsset:
			msg = append(msg, WithdrawAsset{Assets: Assets{asset}})
		case TagClearOrigin:
			msg = append(msg, ClearOrigin{})
		case TagReserveAssetDeposited:
			msg = append(msg, ReserveAssetDeposited{Assets: Assets{asset}})
		case TagBuyExecution:
			msg = append(msg, BuyExecution{Fees: asset, WeightLimit: Unlimited})
		case TagDepositAsset:
			msg = append(msg, DepositAsset{Assets: All(), MaxAssets: 1, Beneficiary: dest})
		case TagDepositReserveAsset:
			msg = append(msg, DepositReserveAsset{Assets: All(), MaxAssets: 1, Dest: dest, XCM: Message{}})
		case TagReceiveTeleportedAsset:
			msg = append(msg, ReceiveTeleportedAsset{Assets: Assets{asset}})
		default:
			return nil, fmt.Errorf("xcm: weight message %q: %w", name, ErrUnsupportedInstruction)
		}
	}
	return msg, nil
}
