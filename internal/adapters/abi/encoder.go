package abi

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ConvertConstructorArgs converts literal constructor arguments to the Go
// values expected by the constructor inputs of parsed.
func ConvertConstructorArgs(parsed *abi.ABI, args []string) ([]interface{}, error) {
	inputs := parsed.Constructor.Inputs
	if len(inputs) != len(args) {
		return nil, fmt.Errorf("constructor takes %d arguments, got %d", len(inputs), len(args))
	}

	values := make([]interface{}, len(args))
	for i, input := range inputs {
		v, err := ConvertArgument(input.Type, args[i])
		if err != nil {
			name := input.Name
			if name == "" {
				name = strconv.Itoa(i)
			}
			return nil, fmt.Errorf("constructor argument %s (%s): %w", name, input.Type.String(), err)
		}
		values[i] = v
	}
	return values, nil
}

// EncodeConstructorArgs returns the ABI encoding of the constructor arguments,
// the bytes appended to the creation code.
func EncodeConstructorArgs(parsed *abi.ABI, args []string) ([]byte, error) {
	values, err := ConvertConstructorArgs(parsed, args)
	if err != nil {
		return nil, err
	}
	packed, err := parsed.Pack("", values...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack constructor arguments: %w", err)
	}
	return packed, nil
}

// ConvertArgument parses a literal into the Go representation of t. Array and
// slice values are JSON arrays of literals.
func ConvertArgument(t abi.Type, value string) (interface{}, error) {
	value = strings.TrimSpace(value)

	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(value) {
			return nil, fmt.Errorf("invalid address %q", value)
		}
		return common.HexToAddress(value), nil

	case abi.BoolTy:
		return strconv.ParseBool(value)

	case abi.StringTy:
		return value, nil

	case abi.UintTy, abi.IntTy:
		return convertInteger(t, value)

	case abi.BytesTy:
		b, err := hexutil.Decode(value)
		if err != nil {
			return nil, fmt.Errorf("invalid bytes %q: %w", value, err)
		}
		return b, nil

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(value)
		if err != nil {
			return nil, fmt.Errorf("invalid bytes%d %q: %w", t.Size, value, err)
		}
		if len(b) > t.Size {
			return nil, fmt.Errorf("value %q does not fit in bytes%d", value, t.Size)
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil

	case abi.SliceTy, abi.ArrayTy:
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(value), &items); err != nil {
			return nil, fmt.Errorf("expected a JSON array for %s: %w", t.String(), err)
		}
		if t.T == abi.ArrayTy && len(items) != t.Size {
			return nil, fmt.Errorf("%s needs %d elements, got %d", t.String(), t.Size, len(items))
		}

		var out reflect.Value
		if t.T == abi.SliceTy {
			out = reflect.MakeSlice(t.GetType(), len(items), len(items))
		} else {
			out = reflect.New(t.GetType()).Elem()
		}
		for i, raw := range items {
			literal := string(raw)
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				literal = s
			}
			elem, err := ConvertArgument(*t.Elem, literal)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(reflect.ValueOf(elem))
		}
		return out.Interface(), nil

	default:
		return nil, fmt.Errorf("unsupported argument type %s", t.String())
	}
}

// convertInteger parses decimal or 0x-prefixed hex into the sized Go integer
// type go-ethereum packs for t, or *big.Int above 64 bits.
func convertInteger(t abi.Type, value string) (interface{}, error) {
	n, ok := new(big.Int).SetString(value, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", value)
	}
	if t.T == abi.UintTy && n.Sign() < 0 {
		return nil, fmt.Errorf("negative value %q for unsigned type", value)
	}
	if t.T == abi.IntTy {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("value %q overflows %s", value, t.String())
		}
	} else if n.BitLen() > t.Size {
		return nil, fmt.Errorf("value %q overflows %s", value, t.String())
	}

	goType := t.GetType()
	switch goType.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := reflect.New(goType).Elem()
		v.SetUint(n.Uint64())
		return v.Interface(), nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !n.IsInt64() {
			return nil, fmt.Errorf("value %q overflows %s", value, t.String())
		}
		v := reflect.New(goType).Elem()
		v.SetInt(n.Int64())
		return v.Interface(), nil
	default:
		return n, nil
	}
}
