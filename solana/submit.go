package makidex_amm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

const (
	// maxSignCycles bounds how many times a transaction is rebuilt and
	// re-signed after its blockhash went stale before giving up.
	maxSignCycles = 3

	// maxRPCAttempts bounds retries of a single RPC call on transient
	// transport failures.
	maxRPCAttempts = 3
)

// Tunable so tests do not wait on real-world intervals.
var (
	rpcRetryBaseDelay   = 500 * time.Millisecond
	confirmPollInterval = 2 * time.Second
	confirmWaitBudget   = 60 * time.Second
)

// Submit assembles a single-instruction transaction paid for by the client's
// fee payer, signs it with the payer plus any extra signers, broadcasts it,
// and, when requireConfirmation is set, polls until the network reports a
// terminal status or the wait budget runs out.
//
// A stale blockhash never causes the old signed payload to be resent; the
// transaction is rebuilt against a fresh blockhash and re-signed.
func (c *Client) Submit(
	ctx context.Context,
	instruction solana.Instruction,
	extraSigners []solana.PrivateKey,
	requireConfirmation bool,
) (solana.Signature, error) {
	if instruction == nil {
		return solana.Signature{}, &PreconditionError{Param: "instruction", Reason: "nil instruction"}
	}
	if c.Payer == nil {
		return solana.Signature{}, &PreconditionError{Param: "payer", Reason: "missing fee payer key"}
	}

	var lastErr error
	for cycle := 0; cycle < maxSignCycles; cycle++ {
		blockhash, err := c.fetchLatestBlockhash(ctx)
		if err != nil {
			return solana.Signature{}, err
		}

		tx, err := c.buildSignedTransaction(instruction, extraSigners, blockhash)
		if err != nil {
			return solana.Signature{}, err
		}

		sig, err := c.sendTransaction(ctx, tx)
		if err != nil {
			if isStaleBlockhash(err) {
				// Expired between fetch and submit; re-fetch and re-sign.
				lastErr = err
				continue
			}
			return solana.Signature{}, err
		}

		if !requireConfirmation {
			return sig, nil
		}
		return c.awaitConfirmation(ctx, sig)
	}

	return solana.Signature{}, fmt.Errorf("blockhash went stale %d times in a row: %w",
		maxSignCycles, lastErr)
}

// buildSignedTransaction assembles and signs the transaction. Every account
// flagged as a signer by the instruction must be covered by the payer or one
// of the extra signers; a missing key aborts before anything is broadcast.
func (c *Client) buildSignedTransaction(
	instruction solana.Instruction,
	extraSigners []solana.PrivateKey,
	blockhash solana.Hash,
) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		blockhash,
		solana.TransactionPayer(c.Payer.PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(
		func(key solana.PublicKey) *solana.PrivateKey {
			if c.Payer.PublicKey().Equals(key) {
				return &c.Payer
			}
			for i := range extraSigners {
				if extraSigners[i].PublicKey().Equals(key) {
					return &extraSigners[i]
				}
			}
			return nil
		},
	)
	if err != nil {
		return nil, &PreconditionError{
			Param:  "signers",
			Reason: fmt.Sprintf("missing key for a required signer: %v", err),
		}
	}

	return tx, nil
}

// fetchLatestBlockhash retrieves a fresh recent blockhash, retrying transient
// transport failures with backoff.
func (c *Client) fetchLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var out *rpc.GetLatestBlockhashResult
	err := withRetry(ctx, "getLatestBlockhash", func() error {
		var err error
		out, err = c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
		return err
	})
	if err != nil {
		var netErr *NetworkError
		if !errors.As(err, &netErr) {
			err = &NetworkError{Op: "getLatestBlockhash", Err: err}
		}
		return solana.Hash{}, err
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, &NetworkError{Op: "getLatestBlockhash", Err: errors.New("empty response")}
	}
	return out.Value.Blockhash, nil
}

// sendTransaction broadcasts the signed transaction. Node-side rejections are
// surfaced verbatim and never retried; transport failures retry with backoff;
// stale-blockhash errors pass through for the caller's re-sign cycle.
func (c *Client) sendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	var sig solana.Signature
	err := withRetry(ctx, "sendTransaction", func() error {
		var err error
		sig, err = c.rpc.SendTransaction(ctx, tx)
		return err
	})
	if err != nil && !isStaleBlockhash(err) {
		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) {
			return sig, &RejectedTransactionError{Err: err}
		}
	}
	return sig, err
}

// awaitConfirmation polls the signature status until it is confirmed,
// reported failed on-chain, or the wait budget elapses. A timeout is an
// ambiguous outcome: the transaction was broadcast and may still land.
func (c *Client) awaitConfirmation(ctx context.Context, sig solana.Signature) (solana.Signature, error) {
	deadline := time.After(confirmWaitBudget)
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return sig, fmt.Errorf("%w: %v", ErrConfirmationTimeout, ctx.Err())
		case <-deadline:
			return sig, fmt.Errorf("%w after %s: %s", ErrConfirmationTimeout, confirmWaitBudget, sig)
		case <-ticker.C:
			out, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
			if err != nil {
				// Transient; keep polling until the budget is spent.
				continue
			}
			if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
				continue
			}
			status := out.Value[0]
			if status.Err != nil {
				return sig, &RejectedTransactionError{
					Err: fmt.Errorf("transaction failed on-chain: %v", status.Err),
				}
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return sig, nil
			}
		}
	}
}

// withRetry runs one RPC call with a bounded attempt count and doubling
// backoff. Node-side JSON-RPC errors are terminal and returned untouched for
// the caller to classify; only transport failures retry. Stale-blockhash
// preflight errors pass through so the submit loop can re-sign.
func withRetry(ctx context.Context, op string, call func() error) error {
	delay := rpcRetryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= maxRPCAttempts; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		if isStaleBlockhash(err) {
			return err
		}
		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) {
			return err
		}
		lastErr = err
		if attempt == maxRPCAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return &NetworkError{Op: op, Err: ctx.Err()}
		case <-time.After(delay):
		}
		delay *= 2
	}
	return &NetworkError{Op: op, Err: lastErr}
}
