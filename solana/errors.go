package makidex_amm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDerivationExhausted means no off-curve candidate exists for the
	// given seeds across the whole bump range. The seed material or program
	// id is corrupted; there is nothing to retry.
	ErrDerivationExhausted = errors.New("program address derivation exhausted bump range")

	// ErrConfirmationTimeout means the transaction was broadcast but its
	// terminal status was not observed within the wait budget. The
	// transaction may still land; the operator has to check manually.
	ErrConfirmationTimeout = errors.New("transaction submitted but not confirmed within wait budget")
)

// PreconditionError reports a structurally invalid or missing parameter,
// detected before any network call is made.
type PreconditionError struct {
	Param  string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed for %s: %s", e.Param, e.Reason)
}

// NetworkError wraps a transient transport failure (timeout, connection
// reset) from the RPC endpoint. Retryable up to the attempt budget.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("rpc %s failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RejectedTransactionError means the node or the on-chain program rejected
// the transaction. Retrying the identical transaction fails identically, so
// the message is surfaced verbatim and never retried.
type RejectedTransactionError struct {
	Err error
}

func (e *RejectedTransactionError) Error() string {
	return fmt.Sprintf("transaction rejected: %v", e.Err)
}

func (e *RejectedTransactionError) Unwrap() error { return e.Err }

// isStaleBlockhash reports whether a send failure was caused by the recent
// blockhash falling out of the validity window. The node only exposes this
// through the preflight error message.
func isStaleBlockhash(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Blockhash not found") ||
		strings.Contains(msg, "block height exceeded")
}
