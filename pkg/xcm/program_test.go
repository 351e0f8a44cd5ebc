package xcm

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/holiman/uint256"
)

func testRequest(origin, dest, reserve ChainLocation) TransferRequest {
	return TransferRequest{
		Origin:        origin,
		Destination:   dest,
		Reserve:       reserve,
		AssetLocation: AbsoluteLocation{Interior: Junctions{Parachain(1000), PalletInstance(50), GeneralIndex(uint256.NewInt(1984))}},
		Amount:        *uint256.NewInt(1000),
		Beneficiary:   testAccount32(0x42),
	}
}

func TestTransferRequest_Type(t *testing.T) {
	relay := ChainLocation{}
	assetHub := ChainLocation{ParaID: paraID(1000)}
	hydra := ChainLocation{ParaID: paraID(2034)}
	moonbeam := ChainLocation{ParaID: paraID(2004), EthereumBased: true}

	tests := []struct {
		name string
		req  TransferRequest
		want TransferType
	}{
		{"local reserve", testRequest(assetHub, hydra, assetHub), TransferLocalReserve},
		{"destination reserve", testRequest(hydra, assetHub, assetHub), TransferDestinationReserve},
		{"remote reserve", testRequest(hydra, moonbeam, assetHub), TransferRemoteReserve},
		{"relay reserve", testRequest(relay, hydra, relay), TransferLocalReserve},
	}
	teleport := testRequest(relay, assetHub, relay)
	teleport.UtilityAsset = true
	tests = append(tests, struct {
		name string
		req  TransferRequest
		want TransferType
	}{"teleport", teleport, TransferTeleport})

	for _, tt := range tests {
		if got := tt.req.Type(); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestTransferProgram_LocalReserve(t *testing.T) {
	assetHub := ChainLocation{ParaID: paraID(1000)}
	hydra := ChainLocation{ParaID: paraID(2034)}
	req := testRequest(assetHub, hydra, assetHub)

	originAsset := NewAsset(NewLocation(0, PalletInstance(50), GeneralIndex(uint256.NewInt(1984))), uint256.NewInt(1000))
	destAsset := NewAsset(NewLocation(1, Parachain(1000), PalletInstance(50), GeneralIndex(uint256.NewInt(1984))), uint256.NewInt(500))

	want := Message{
		WithdrawAsset{Assets: Assets{originAsset}},
		BuyExecution{Fees: originAsset.Half(), WeightLimit: Limited(NewWeight(1, 1))},
		DepositReserveAsset{
			Assets:    AllCounted(1),
			MaxAssets: 1,
			Dest:      NewLocation(1, Parachain(2034)),
			XCM: Message{
				BuyExecution{Fees: destAsset, WeightLimit: Unlimited},
				DepositAsset{Assets: AllCounted(1), MaxAssets: 1, Beneficiary: NewLocation(0, AccountID32(AnyNetwork, testAccount32(0x42)))},
			},
		},
	}
	if diff := cmp.Diff(want, TransferProgram(req)); diff != "" {
		t.Errorf("program mismatch (-want +got):\n%s", diff)
	}
}

func TestTransferProgram_Shapes(t *testing.T) {
	relay := ChainLocation{}
	assetHub := ChainLocation{ParaID: paraID(1000)}
	hydra := ChainLocation{ParaID: paraID(2034)}
	moonbeam := ChainLocation{ParaID: paraID(2004), EthereumBased: true}

	teleport := testRequest(relay, assetHub, relay)
	teleport.UtilityAsset = true

	remote := testRequest(hydra, moonbeam, assetHub)
	remote.Beneficiary = testAccount20(0x42)

	tests := []struct {
		name  string
		req   TransferRequest
		names []string
	}{
		{"teleport", teleport, []string{TagWithdrawAsset, TagBuyExecution, TagInitiateTeleport}},
		{"destination reserve", testRequest(hydra, assetHub, assetHub), []string{TagWithdrawAsset, TagBuyExecution, TagInitiateReserveWithdraw}},
		{"remote reserve", remote, []string{TagWithdrawAsset, TagBuyExecution, TagInitiateReserveWithdraw}},
	}
	for _, tt := range tests {
		program := TransferProgram(tt.req)
		if diff := cmp.Diff(tt.names, program.Names()); diff != "" {
			t.Errorf("%s: (-want +got):\n%s", tt.name, diff)
		}
		for _, v := range []Version{V3, V4, V5} {
			if _, err := Encode(program, v); err != nil {
				t.Errorf("%s: Encode(%s): %v", tt.name, v, err)
			}
		}
	}

	// The remote reserve program forwards from the reserve to the destination.
	withdraw := TransferProgram(remote)[2].(InitiateReserveWithdraw)
	if !withdraw.Reserve.Equal(NewLocation(1, Parachain(1000))) {
		t.Errorf("reserve = %v", withdraw.Reserve)
	}
	deposit := withdraw.XCM[1].(DepositReserveAsset)
	if !deposit.Dest.Equal(NewLocation(1, Parachain(2004))) {
		t.Errorf("reserve dest = %v", deposit.Dest)
	}
	beneficiary := deposit.XCM[1].(DepositAsset).Beneficiary
	if beneficiary.Interior[0].Kind != JunctionAccountKey20 {
		t.Errorf("ethereum destination should use AccountKey20, got %v", beneficiary.Interior[0])
	}
}

func TestWeightMessage(t *testing.T) {
	asset := NewAsset(NewLocation(1), uint256.NewInt(1))
	dest := NewLocation(1, Parachain(2034))
	names := []string{TagReserveAssetDeposited, TagClearOrigin, TagBuyExecution, TagDepositAsset}

	msg, err := WeightMessage(names, dest, asset)
	if err != nil {
		t.Fatalf("WeightMessage: %v", err)
	}
	if diff := cmp.Diff(names, msg.Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}

	if _, err := WeightMessage([]string{"Transact"}, dest, asset); !errors.Is(err, ErrUnsupportedInstruction) {
		t.Errorf("expected ErrUnsupportedInstruction, got %v", err)
	}
}
