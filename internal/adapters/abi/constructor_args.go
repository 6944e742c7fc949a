package abi

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
)

// ParseConstructorArgs converts command line values into Go values matching the
// constructor inputs of parsed, in order
func ParseConstructorArgs(parsed abi.ABI, args []string) ([]any, error) {
	inputs := parsed.Constructor.Inputs
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("constructor expects %d argument(s) %s, got %d",
			len(inputs), signature(inputs), len(args))
	}

	values := make([]any, len(args))
	for i, input := range inputs {
		value, err := parseValue(input.Type, args[i])
		if err != nil {
			name := input.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("invalid constructor argument %s (%s): %w", name, input.Type.String(), err)
		}
		values[i] = value
	}
	return values, nil
}

func signature(inputs abi.Arguments) string {
	types := make([]string, len(inputs))
	for i, input := range inputs {
		types[i] = input.Type.String()
	}
	return "(" + strings.Join(types, ",") + ")"
}

// parseValue converts one argument. Only addresses, bools and integers are trimmed;
// string and bytes values are taken verbatim.
func parseValue(t abi.Type, raw string) (any, error) {
	switch t.T {
	case abi.AddressTy, abi.BoolTy, abi.UintTy, abi.IntTy:
		raw = strings.TrimSpace(raw)
	}

	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(raw) {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, raw)
		}
		return common.HexToAddress(raw), nil

	case abi.BoolTy:
		return strconv.ParseBool(raw)

	case abi.StringTy:
		return raw, nil

	case abi.BytesTy:
		return hexutil.Decode(withHexPrefix(raw))

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(withHexPrefix(raw))
		if err != nil {
			return nil, err
		}
		if len(b) > t.Size {
			return nil, fmt.Errorf("value is %d bytes, type holds %d", len(b), t.Size)
		}
		// right-padded like solidity bytesN literals
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil

	case abi.UintTy, abi.IntTy:
		return parseInteger(t, raw)

	default:
		return nil, fmt.Errorf("unsupported type %s", t.String())
	}
}

func parseInteger(t abi.Type, raw string) (any, error) {
	n, ok := parseIntegerLiteral(raw)
	if !ok {
		return nil, fmt.Errorf("not an integer: %q", raw)
	}

	unsigned := t.T == abi.UintTy
	if unsigned && n.Sign() < 0 {
		return nil, fmt.Errorf("negative value for unsigned type")
	}

	bits := uint(t.Size)
	if unsigned {
		if n.BitLen() > int(bits) {
			return nil, fmt.Errorf("value overflows %s", t.String())
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), bits-1)
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("value overflows %s", t.String())
		}
	}

	// the packer wants native integers up to 64 bits and *big.Int beyond
	switch {
	case unsigned && bits == 8:
		return uint8(n.Uint64()), nil
	case unsigned && bits == 16:
		return uint16(n.Uint64()), nil
	case unsigned && bits == 32:
		return uint32(n.Uint64()), nil
	case unsigned && bits == 64:
		return n.Uint64(), nil
	case !unsigned && bits == 8:
		return int8(n.Int64()), nil
	case !unsigned && bits == 16:
		return int16(n.Int64()), nil
	case !unsigned && bits == 32:
		return int32(n.Int64()), nil
	case !unsigned && bits == 64:
		return n.Int64(), nil
	default:
		return n, nil
	}
}

// parseIntegerLiteral accepts decimal or 0x-prefixed hex, optionally negative.
// Leading zeros stay decimal and Go literal forms (0o, 0b, _) are rejected.
func parseIntegerLiteral(raw string) (*big.Int, bool) {
	digits := raw
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	base := 10
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		base, digits = 16, digits[2:]
	}
	if digits == "" || strings.ContainsAny(digits, "+-_") {
		return nil, false
	}

	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, false
	}
	if negative {
		n.Neg(n)
	}
	return n, true
}

func withHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return "0x" + s[2:]
	}
	return "0x" + s
}
