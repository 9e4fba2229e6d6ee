package decode

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Ojukwu12/Nodepulse/internal/core/domain"
	"github.com/Ojukwu12/Nodepulse/internal/indexing/schema"
)

const testABI = `[
	{"type":"event","name":"JobCompleted","inputs":[
		{"name":"jobId","type":"bytes32","indexed":true},
		{"name":"node","type":"address","indexed":false},
		{"name":"reward","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"PayoutProcessed","inputs":[
		{"name":"recipient","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}
	]}
]`

func testSchema(t *testing.T) *schema.EventSchema {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(testABI))
	if err != nil {
		t.Fatalf("failed to parse test abi: %v", err)
	}
	return &schema.EventSchema{ABI: parsed}
}

// jobCompletedLog builds a well-formed JobCompleted log.
func jobCompletedLog(t *testing.T, s *schema.EventSchema, node common.Address, reward *big.Int) domain.RawLog {
	t.Helper()
	ev := s.ABI.Events["JobCompleted"]

	data, err := ev.Inputs.NonIndexed().Pack(node, reward)
	if err != nil {
		t.Fatalf("failed to pack event data: %v", err)
	}

	jobID := common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111111")
	return domain.RawLog{
		Address:     "0xcontract",
		Topics:      []string{ev.ID.Hex(), jobID.Hex()},
		Data:        hexutil.Encode(data),
		BlockNumber: 1035,
		TxHash:      "0xabc",
	}
}

func TestDecodeJobCompleted(t *testing.T) {
	s := testSchema(t)
	node := common.HexToAddress("0xc0de000000000000000000000000000000000000")
	lg := jobCompletedLog(t, s, node, big.NewInt(123456))

	decoded := Decode(lg, s)
	if decoded == nil {
		t.Fatal("expected decoded event, got nil")
	}
	if decoded.Name != "JobCompleted" {
		t.Errorf("expected JobCompleted, got %s", decoded.Name)
	}
	if decoded.Signature != "JobCompleted(bytes32,address,uint256)" {
		t.Errorf("unexpected signature %s", decoded.Signature)
	}

	if got, ok := decoded.Args["node"].(common.Address); !ok || got != node {
		t.Errorf("unexpected node arg: %v", decoded.Args["node"])
	}
	reward, ok := decoded.Args["reward"].(*big.Int)
	if !ok || reward.String() != "123456" {
		t.Errorf("unexpected reward arg: %v", decoded.Args["reward"])
	}
	jobID, ok := decoded.Args["jobId"].([32]byte)
	if !ok {
		t.Fatalf("unexpected jobId type: %T", decoded.Args["jobId"])
	}
	if hexutil.Encode(jobID[:]) != "0x1111111111111111111111111111111111111111111111111111111111111111" {
		t.Errorf("unexpected jobId: %x", jobID)
	}
}

func TestDecodeNilSchema(t *testing.T) {
	s := testSchema(t)
	lg := jobCompletedLog(t, s, common.Address{}, big.NewInt(1))

	if decoded := Decode(lg, nil); decoded != nil {
		t.Error("expected nil without schema")
	}
}

func TestDecodeUnknownTopic(t *testing.T) {
	s := testSchema(t)
	lg := domain.RawLog{
		Topics: []string{"0xdeadbeef00000000000000000000000000000000000000000000000000000000"},
		Data:   "0x",
	}
	if decoded := Decode(lg, s); decoded != nil {
		t.Error("expected nil for unknown event topic")
	}
}

func TestDecodeNoTopics(t *testing.T) {
	if decoded := Decode(domain.RawLog{Data: "0x"}, testSchema(t)); decoded != nil {
		t.Error("expected nil for log without topics")
	}
}

func TestDecodeIndexedTopicMismatch(t *testing.T) {
	s := testSchema(t)
	lg := jobCompletedLog(t, s, common.Address{}, big.NewInt(1))
	lg.Topics = lg.Topics[:1] // drop the indexed jobId topic

	if decoded := Decode(lg, s); decoded != nil {
		t.Error("expected nil when indexed topic count mismatches")
	}
}

func TestDecodeMalformedData(t *testing.T) {
	s := testSchema(t)
	lg := jobCompletedLog(t, s, common.Address{}, big.NewInt(1))

	lg.Data = "not-hex"
	if decoded := Decode(lg, s); decoded != nil {
		t.Error("expected nil for non-hex data")
	}

	lg.Data = "0x1234" // too short for (address, uint256)
	if decoded := Decode(lg, s); decoded != nil {
		t.Error("expected nil for truncated data")
	}
}
