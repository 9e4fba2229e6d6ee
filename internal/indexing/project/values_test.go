package project

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestRenderDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"big int", big.NewInt(123456), "123456"},
		{"uint64", uint64(42), "42"},
		{"int32", int32(-5), "-5"},
		{"decimal string", "789", "789"},
		{"hex string", "0xff", "255"},
		{"garbage string", "not-a-number", ""},
		{"address", common.Address{}, ""},
		{"nil", nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := renderDecimal(tc.in); got != tc.want {
				t.Errorf("renderDecimal(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRenderString(t *testing.T) {
	addr := common.HexToAddress("0xAbCd000000000000000000000000000000000001")
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"passthrough", "job-1", "job-1"},
		{"address lowercased", addr, "0xabcd000000000000000000000000000000000001"},
		{"big int", big.NewInt(9), "9"},
		{"bytes", []byte{0xde, 0xad}, "0xdead"},
		{"bool", true, "true"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := renderString(tc.in); got != tc.want {
				t.Errorf("renderString(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
