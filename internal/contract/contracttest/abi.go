package contracttest

import "github.com/ethereum/go-ethereum/accounts/abi"

func abiString() (abi.Arguments, error) {
	t, err := abi.NewType("string", "", nil)
	if err != nil {
		return nil, err
	}
	return abi.Arguments{{Type: t}}, nil
}
