package xcm

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/google/go-cmp/cmp"
	"github.com/holiman/uint256"
)

var allVersions = []Version{V0, V1, V2, V3, V4, V5}

func testAccount32(b byte) types.AccountID {
	return types.NewAccountID(bytes.Repeat([]byte{b}, types.SubstrateAccountIDSize))
}

func testAccount20(b byte) types.AccountID {
	return types.NewAccountID(bytes.Repeat([]byte{b}, types.EthereumAccountIDSize))
}

func mustEncode(t *testing.T, e Encoder, v Version) string {
	t.Helper()
	raw, err := Encode(e, v)
	if err != nil {
		t.Fatalf("Encode(%s): %v", v, err)
	}
	return string(raw)
}

func sampleJunctions(v Version) Junctions {
	js := Junctions{
		Parachain(2004),
		PalletInstance(50),
		GeneralIndex(uint256.NewInt(1984)),
		GeneralKey([]byte{0x00, 0x08}),
		AccountID32(AnyNetwork, testAccount32(0xaa)),
		AccountKey20(NetworkID{Kind: NetworkKusama}, testAccount20(0xbb)),
		AccountIndex64(NetworkID{Kind: NetworkPolkadot}, 7),
		OnlyChild(),
	}
	if v >= V3 {
		js[6] = GlobalConsensus(NetworkID{Kind: NetworkEthereum, ChainID: 1})
	}
	return js
}

func sampleMessage(v Version) Message {
	amount := uint256.MustFromDecimal("340282366920938463463374607431768211455")
	asset := NewAsset(NewLocation(1, Parachain(1000), PalletInstance(50), GeneralIndex(uint256.NewInt(1984))), amount)
	dest := NewLocation(1, Parachain(2034))
	beneficiary := NewLocation(0, AccountID32(AnyNetwork, testAccount32(0x11)))

	maxAssets := uint32(1)
	filter := All()
	weight := NewWeight(4_000_000_000, 65536)
	if v < V3 {
		maxAssets = 2
		weight = NewWeight(4_000_000_000, 0)
	} else {
		filter = AllCounted(1)
	}
	nested := Message{
		BuyExecution{Fees: asset.Half(), WeightLimit: Unlimited},
		DepositAsset{Assets: filter, MaxAssets: maxAssets, Beneficiary: beneficiary},
	}
	msg := Message{
		WithdrawAsset{Assets: Assets{asset}},
		ReserveAssetDeposited{Assets: Assets{asset}},
		ReceiveTeleportedAsset{Assets: Assets{}},
		ClearOrigin{},
		BuyExecution{Fees: asset, WeightLimit: Limited(weight)},
		DepositReserveAsset{Assets: Definite(asset), MaxAssets: maxAssets, Dest: dest, XCM: nested},
		InitiateReserveWithdraw{Assets: Wild(WildAsset{Kind: WildAllOf, ID: asset.ID}), Reserve: dest, XCM: nested},
		InitiateTeleport{Assets: filter, Dest: NewLocation(1), XCM: Message{}},
		Other{Tag: "SetTopic", Payload: json.RawMessage(`"0x0102"`)},
	}
	if v >= V3 {
		msg = append(msg, BurnAsset{Assets: Assets{asset}})
	}
	return msg
}

func TestMessage_RoundTrip(t *testing.T) {
	for _, v := range allVersions {
		t.Run(v.String(), func(t *testing.T) {
			msg := sampleMessage(v)
			raw, err := Encode(msg, v)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			var got Message
			if err := Decode(raw, &got, v); err != nil {
				t.Fatalf("Decode: %v\n%s", err, raw)
			}
			if diff := cmp.Diff(msg, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestJunctions_RoundTrip(t *testing.T) {
	for _, v := range allVersions {
		full := sampleJunctions(v)
		for n := 0; n <= len(full); n++ {
			js := full[:n]
			raw, err := Encode(js, v)
			if err != nil {
				t.Fatalf("%s X%d: Encode: %v", v, n, err)
			}
			var got Junctions
			if err := Decode(raw, &got, v); err != nil {
				t.Fatalf("%s X%d: Decode: %v", v, n, err)
			}
			if !got.Equal(js) {
				t.Errorf("%s X%d: got %v, want %v", v, n, got, js)
			}
		}
	}
}

func TestJunctions_Wire(t *testing.T) {
	one := Junctions{Parachain(1000)}
	two := Junctions{Parachain(1000), PalletInstance(50)}

	tests := []struct {
		name string
		js   Junctions
		v    Version
		want string
	}{
		{"here v3", Junctions{}, V3, `["Here",null]`},
		{"here v4", nil, V4, `["Here",null]`},
		{"x1 v3", one, V3, `["X1",["Parachain","1000"]]`},
		{"x1 v4", one, V4, `["X1",[["Parachain","1000"]]]`},
		{"x2 v2", two, V2, `["X2",{"0":["Parachain","1000"],"1":["PalletInstance","50"]}]`},
		{"x2 v3", two, V3, `["X2",{"0":["Parachain","1000"],"1":["PalletInstance","50"]}]`},
		{"x2 v5", two, V5, `["X2",[["Parachain","1000"],["PalletInstance","50"]]]`},
	}
	for _, tt := range tests {
		if got := mustEncode(t, tt.js, tt.v); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestJunctions_TooMany(t *testing.T) {
	js := make(Junctions, MaxJunctions+1)
	for i := range js {
		js[i] = Parachain(uint32(i))
	}
	if _, err := Encode(js, V4); !errors.Is(err, ErrTooManyJunctions) {
		t.Errorf("expected ErrTooManyJunctions, got %v", err)
	}
}

func TestJunctions_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		v    Version
	}{
		{"bad prefix", `["Y2",[]]`, V4},
		{"x9", `["X9",[]]`, V4},
		{"x0", `["X0",[]]`, V4},
		{"count mismatch array", `["X2",[["Parachain","1"]]]`, V4},
		{"array before v4", `["X2",[["Parachain","1"],["Parachain","2"]]]`, V3},
		{"object from v4", `["X2",{"0":["Parachain","1"],"1":["Parachain","2"]}]`, V4},
		{"missing index", `["X2",{"0":["Parachain","1"],"2":["Parachain","2"]}]`, V2},
	}
	for _, tt := range tests {
		var js Junctions
		err := Decode([]byte(tt.raw), &js, tt.v)
		if !errors.Is(err, ErrMalformedJunctions) {
			t.Errorf("%s: expected ErrMalformedJunctions, got %v", tt.name, err)
		}
		var de *DecodeError
		if !errors.As(err, &de) || !strings.Contains(string(de.Raw), tt.raw[1:5]) {
			t.Errorf("%s: decode error should carry the raw value, got %v", tt.name, err)
		}
	}
}

func TestNetworkID_Wire(t *testing.T) {
	j := AccountID32(AnyNetwork, testAccount32(0x01))
	id := `"0x` + strings.Repeat("01", 32) + `"`

	if got, want := mustEncode(t, j, V2), `["AccountId32",{"network":["Any",null],"id":`+id+`}]`; got != want {
		t.Errorf("V2: got %s, want %s", got, want)
	}
	if got, want := mustEncode(t, j, V3), `["AccountId32",{"network":null,"id":`+id+`}]`; got != want {
		t.Errorf("V3: got %s, want %s", got, want)
	}

	// Both forms of Any decode in every version.
	for _, raw := range []string{`null`, `["Any",null]`} {
		var n NetworkID
		if err := n.DecodeXCM(json.RawMessage(raw), V3); err != nil || n.Kind != NetworkAny {
			t.Errorf("decode %s: kind %v, err %v", raw, n.Kind, err)
		}
	}

	if _, err := Encode(NetworkID{Kind: NetworkNamed, Name: []byte("x")}, V3); !errors.Is(err, ErrUnsupportedInVersion) {
		t.Errorf("Named in V3: expected ErrUnsupportedInVersion, got %v", err)
	}
	if _, err := Encode(NetworkID{Kind: NetworkEthereum, ChainID: 1}, V2); !errors.Is(err, ErrUnsupportedInVersion) {
		t.Errorf("Ethereum in V2: expected ErrUnsupportedInVersion, got %v", err)
	}
}

func TestGeneralKey_Wire(t *testing.T) {
	j := GeneralKey([]byte{0xab, 0xcd})

	if got, want := mustEncode(t, j, V2), `["GeneralKey","0xabcd"]`; got != want {
		t.Errorf("V2: got %s, want %s", got, want)
	}
	want := `["GeneralKey",{"length":"2","data":"0xabcd` + strings.Repeat("00", 30) + `"}]`
	if got := mustEncode(t, j, V3); got != want {
		t.Errorf("V3: got %s, want %s", got, want)
	}

	var got Junction
	if err := Decode([]byte(want), &got, V4); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got.GeneralKey, []byte{0xab, 0xcd}) {
		t.Errorf("decoded key = %x, want abcd", got.GeneralKey)
	}

	bad := []string{
		`["GeneralKey",{"length":"33","data":"0x` + strings.Repeat("00", 32) + `"}]`,
		`["GeneralKey",{"length":"2","data":"0xabcd"}]`,
		`["GeneralKey",{"data":"0x` + strings.Repeat("00", 32) + `"}]`,
	}
	for _, raw := range bad {
		if err := Decode([]byte(raw), &got, V3); !errors.Is(err, ErrMalformedGeneralKey) {
			t.Errorf("decode %s: expected ErrMalformedGeneralKey, got %v", raw, err)
		}
	}
}

func TestWeightLimit_Legacy(t *testing.T) {
	var huge uint256.Int
	huge.Lsh(uint256.NewInt(1), 100)
	limit := Limited(Weight{RefTime: huge, ProofSize: *uint256.NewInt(10)})

	if got, want := mustEncode(t, limit, V2), `["Limited","18446744073709551615"]`; got != want {
		t.Errorf("V2: got %s, want %s", got, want)
	}
	if got, want := mustEncode(t, Limited(NewWeight(5, 6)), V3), `["Limited",{"ref_time":"5","proof_size":"6"}]`; got != want {
		t.Errorf("V3: got %s, want %s", got, want)
	}
	if got, want := mustEncode(t, Unlimited, V0), `["Unlimited",null]`; got != want {
		t.Errorf("V0: got %s, want %s", got, want)
	}

	for _, v := range allVersions {
		l := Limited(NewWeight(1234, 0))
		raw := mustEncode(t, l, v)
		var got WeightLimit
		if err := Decode([]byte(raw), &got, v); err != nil {
			t.Fatalf("%s: Decode: %v", v, err)
		}
		if !got.Equal(l) {
			t.Errorf("%s: round trip got %+v", v, got)
		}
	}
}

func TestDepositAsset_MaxAssets(t *testing.T) {
	d := DepositAsset{Assets: All(), MaxAssets: 3, Beneficiary: Here}

	legacy := mustEncode(t, d, V2)
	if !strings.Contains(legacy, `"max_assets":"3"`) {
		t.Errorf("V2 should carry max_assets: %s", legacy)
	}
	modern := mustEncode(t, d, V3)
	if strings.Contains(modern, "max_assets") {
		t.Errorf("V3 must omit max_assets: %s", modern)
	}

	var msg Message
	if err := Decode([]byte("["+modern+"]"), &msg, V3); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := msg[0].(DepositAsset).MaxAssets; got != 1 {
		t.Errorf("V3 MaxAssets = %d, want default 1", got)
	}
}

func TestDepositAsset_ZeroMaxAssets(t *testing.T) {
	for _, v := range allVersions {
		_, err := Encode(Message{DepositAsset{Assets: All(), Beneficiary: Here}}, v)
		if !errors.Is(err, ErrZeroMaxAssets) {
			t.Errorf("%s: DepositAsset err = %v, want ErrZeroMaxAssets", v, err)
		}
		_, err = Encode(Message{DepositReserveAsset{Assets: All(), Dest: Here}}, v)
		if !errors.Is(err, ErrZeroMaxAssets) {
			t.Errorf("%s: DepositReserveAsset err = %v, want ErrZeroMaxAssets", v, err)
		}
	}

	raw := `[["DepositAsset",{"assets":["Wild",["All",null]],"max_assets":"0","beneficiary":{"parents":"0","interior":["Here",null]}}]]`
	var msg Message
	if err := Decode([]byte(raw), &msg, V2); !errors.Is(err, ErrZeroMaxAssets) {
		t.Errorf("V2 decode err = %v, want ErrZeroMaxAssets", err)
	}
}

func TestAssetID_Concrete(t *testing.T) {
	a := NewAsset(NewLocation(1), uint256.NewInt(10))
	if got, want := mustEncode(t, a, V3), `{"id":["Concrete",{"parents":"1","interior":["Here",null]}],"fun":["Fungible","10"]}`; got != want {
		t.Errorf("V3: got %s, want %s", got, want)
	}
	if got, want := mustEncode(t, a, V4), `{"id":{"parents":"1","interior":["Here",null]},"fun":["Fungible","10"]}`; got != want {
		t.Errorf("V4: got %s, want %s", got, want)
	}
}

func TestOther_Passthrough(t *testing.T) {
	payloads := []string{
		`null`,
		`{"b":1,"a":[1, 2,3],"html":"<&>"}`,
		`"0x00"`,
		`[ {"x" :"y"} ]`,
	}
	for _, v := range allVersions {
		for _, payload := range payloads {
			in := Message{Other{Tag: "CustomTag", Payload: json.RawMessage(payload)}}
			raw, err := Encode(in, v)
			if err != nil {
				t.Fatalf("%s: Encode: %v", v, err)
			}
			if want := `[["CustomTag",` + payload + `]]`; string(raw) != want {
				t.Errorf("%s: wire = %s, want %s", v, raw, want)
			}
			var out Message
			if err := Decode(raw, &out, v); err != nil {
				t.Fatalf("%s: Decode: %v", v, err)
			}
			other, ok := out[0].(Other)
			if !ok || other.Tag != "CustomTag" || string(other.Payload) != payload {
				t.Errorf("%s: passthrough got %#v", v, out[0])
			}
		}
	}
}

func TestOther_EmptyPayload(t *testing.T) {
	in := Other{Tag: "ClearTopic"}
	for _, v := range allVersions {
		raw := mustEncode(t, Message{in}, v)
		if want := `[["ClearTopic",null]]`; raw != want {
			t.Errorf("%s: wire = %s, want %s", v, raw, want)
		}
		var out Message
		if err := Decode([]byte(raw), &out, v); err != nil {
			t.Fatalf("%s: Decode: %v", v, err)
		}
		if got, ok := out[0].(Other); !ok || !got.Equal(in) {
			t.Errorf("%s: round trip got %#v, want %#v", v, out[0], in)
		}
	}
}

func TestBurnAsset_RequiresV3(t *testing.T) {
	b := BurnAsset{Assets: Assets{}}
	if _, err := Encode(b, V2); !errors.Is(err, ErrUnsupportedInVersion) {
		t.Errorf("expected ErrUnsupportedInVersion, got %v", err)
	}
	var msg Message
	if err := Decode([]byte(`[["BurnAsset",[]]]`), &msg, V2); !errors.Is(err, ErrUnsupportedInVersion) {
		t.Errorf("expected ErrUnsupportedInVersion on decode, got %v", err)
	}
}

func TestDecode_NumericForms(t *testing.T) {
	var j Junction
	for _, raw := range []string{`["Parachain",1000]`, `["Parachain","1000"]`, `["Parachain","0x3e8"]`} {
		if err := Decode([]byte(raw), &j, V4); err != nil || j.ParaID != 1000 {
			t.Errorf("decode %s: got %d, err %v", raw, j.ParaID, err)
		}
	}
	if err := Decode([]byte(`["Parachain","4294967296"]`), &j, V4); !errors.Is(err, ErrMalformedNumber) {
		t.Errorf("overflowing para id: expected ErrMalformedNumber, got %v", err)
	}
	if err := Decode([]byte(`["Parachain","abc"]`), &j, V4); !errors.Is(err, ErrMalformedNumber) {
		t.Errorf("garbage para id: expected ErrMalformedNumber, got %v", err)
	}
}

func TestDecode_MalformedVariant(t *testing.T) {
	var j Junction
	for _, raw := range []string{`{}`, `["Parachain"]`, `["Parachain","1","2"]`, `[1,"1"]`} {
		if err := Decode([]byte(raw), &j, V3); !errors.Is(err, ErrMalformedVariant) {
			t.Errorf("decode %s: expected ErrMalformedVariant, got %v", raw, err)
		}
	}
	if err := Decode([]byte(`["Nowhere",null]`), &j, V3); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestVersioned(t *testing.T) {
	loc := NewLocation(1, Parachain(1000), PalletInstance(50))
	x := NewVersioned(loc, V3)

	raw, err := x.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	want := `["V3",{"parents":"1","interior":["X2",{"0":["Parachain","1000"],"1":["PalletInstance","50"]}]}]`
	if string(raw) != want {
		t.Errorf("wire = %s, want %s", raw, want)
	}

	got, err := DecodeVersioned[Location](raw)
	if err != nil {
		t.Fatalf("DecodeVersioned: %v", err)
	}
	if got.Version != V3 || !got.Entity.Equal(loc) {
		t.Errorf("decoded %v %v", got.Version, got.Entity)
	}

	converted, err := got.Convert(V4).Bytes()
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if want := `["V4",{"parents":"1","interior":["X2",[["Parachain","1000"],["PalletInstance","50"]]]}]`; string(converted) != want {
		t.Errorf("converted = %s, want %s", converted, want)
	}

	// Versioned values nest inside ordinary JSON documents.
	var doc struct {
		Msg VersionedMessage `json:"msg"`
	}
	if err := json.Unmarshal([]byte(`{"msg":["V2",[["ClearOrigin",null]]]}`), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc.Msg.Version != V2 || len(doc.Msg.Entity) != 1 || doc.Msg.Entity[0].Name() != TagClearOrigin {
		t.Errorf("nested decode = %+v", doc.Msg)
	}
}

func TestVersioned_UnknownVersion(t *testing.T) {
	_, err := DecodeVersioned[Location]([]byte(`["V9",{"parents":"0","interior":["Here",null]}]`))
	if !errors.Is(err, ErrUnknownVersion) {
		t.Fatalf("expected ErrUnknownVersion, got %v", err)
	}
	var de *DecodeError
	if !errors.As(err, &de) || !strings.Contains(string(de.Raw), "V9") {
		t.Errorf("expected DecodeError with raw value, got %v", err)
	}
	if _, err := Encode(Here, Version(6)); !errors.Is(err, ErrUnknownVersion) {
		t.Errorf("Encode(V6): expected ErrUnknownVersion, got %v", err)
	}
}

func TestParseVersion(t *testing.T) {
	for _, v := range allVersions {
		got, err := ParseVersion(v.String())
		if err != nil || got != v {
			t.Errorf("ParseVersion(%s) = %v, %v", v, got, err)
		}
	}
	if _, err := ParseVersion("v3"); !errors.Is(err, ErrUnknownVersion) {
		t.Errorf("lowercase tag should be rejected, got %v", err)
	}
}
