package project

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// renderString converts an ABI-decoded value into its string form.
// Addresses and hashes come out lowercased hex; fixed byte arrays as hex.
func renderString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case common.Address:
		return strings.ToLower(val.Hex())
	case common.Hash:
		return val.Hex()
	case *big.Int:
		return val.String()
	case []byte:
		return hexutil.Encode(val)
	case [32]byte:
		return hexutil.Encode(val[:])
	case bool:
		return strconv.FormatBool(val)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// renderDecimal converts a numeric ABI value into its canonical decimal
// string representation. Non-numeric values yield "" so the caller's
// fallback applies.
func renderDecimal(v any) string {
	switch val := v.(type) {
	case *big.Int:
		return val.String()
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case string:
		// Providers occasionally hand numbers through as hex strings.
		if strings.HasPrefix(val, "0x") || strings.HasPrefix(val, "0X") {
			if n, ok := new(big.Int).SetString(val[2:], 16); ok {
				return n.String()
			}
			return ""
		}
		if n, ok := new(big.Int).SetString(val, 10); ok {
			return n.String()
		}
		return ""
	default:
		return ""
	}
}
