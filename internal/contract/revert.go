package contract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// RevertError is an on-chain rejection, from a read, a gas estimate or a
// mined transaction with status 0.
type RevertError struct {
	Reason string
	Hash   common.Hash // zero for calls
	Data   []byte
	Err    error
}

func (e *RevertError) Error() string {
	switch {
	case e.Reason != "":
		return "execution reverted: " + e.Reason
	case e.Hash != (common.Hash{}):
		return fmt.Sprintf("transaction reverted (hash: %s)", e.Hash.Hex())
	}
	return "execution reverted"
}

func (e *RevertError) Unwrap() error { return e.Err }

// RevertReason is consumed by apperr.Normalize.
func (e *RevertError) RevertReason() string { return e.Reason }

// asRevert turns node errors that carry revert data or an
// "execution reverted" message into a *RevertError. Anything else is
// returned unchanged.
func asRevert(err error) error {
	if err == nil {
		return nil
	}
	var re *RevertError
	if errors.As(err, &re) {
		return err
	}

	var data []byte
	var de rpc.DataError
	if errors.As(err, &de) {
		switch d := de.ErrorData().(type) {
		case string:
			data, _ = hexutil.Decode(d)
		case []byte:
			data = d
		}
	}
	if len(data) > 0 {
		reason, uerr := abi.UnpackRevert(data)
		if uerr != nil {
			reason = ""
		}
		return &RevertError{Reason: reason, Data: data, Err: err}
	}

	msg := err.Error()
	if idx := strings.Index(msg, "execution reverted"); idx != -1 {
		reason := strings.TrimSpace(msg[idx+len("execution reverted"):])
		reason = strings.Trim(strings.TrimSpace(strings.TrimPrefix(reason, ":")), `"'`)
		return &RevertError{Reason: reason, Err: err}
	}
	return err
}
