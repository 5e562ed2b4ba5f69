package contract

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Out converts the i-th unpacked return value to T. Tuples come back from
// the ABI decoder as anonymous structs; they are copied field by field into
// T, whose fields follow the ABI component order.
func Out[T any](vals []any, i int) (v T, err error) {
	if i >= len(vals) {
		return v, fmt.Errorf("missing return value %d (got %d)", i, len(vals))
	}
	if direct, ok := vals[i].(T); ok {
		return direct, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoding return value %d as %T: %v", i, v, r)
		}
	}()
	return *abi.ConvertType(vals[i], new(T)).(*T), nil
}
