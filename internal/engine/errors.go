package engine

import (
	"errors"

	"github.com/ethereum/go-ethereum/rpc"
)

// msgAlreadyKnown is the broadcast error a node returns when the transaction
// is already in its pool. It means a peer accepted the transaction, so the
// submitter treats it as success.
const msgAlreadyKnown = "already known"

// ErrTimeExhausted reports that a transaction never became visible on-chain
// within the not-yet-visible budget.
var ErrTimeExhausted = errors.New("transaction not found on chain within timeout")

// ChainError wraps any failure talking to the chain: fee or nonce lookup, gas
// estimation, signing, broadcast, or an error escaping the polling loop. The
// message is normalized to the RPC payload's message field when one exists.
type ChainError struct {
	Op  string
	Msg string
	Err error
}

func (e *ChainError) Error() string {
	if e == nil {
		return "chain error"
	}
	if e.Op != "" {
		return e.Op + ": " + e.Msg
	}
	return e.Msg
}

func (e *ChainError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func chainErr(op string, err error) *ChainError {
	return &ChainError{Op: op, Msg: normalizeError(err), Err: err}
}

// normalizeError reduces an RPC failure to the message carried by the
// structured JSON-RPC error payload when present, falling back to the plain
// error string.
func normalizeError(err error) string {
	if err == nil {
		return ""
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Error()
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		return dataErr.Error()
	}
	return err.Error()
}
