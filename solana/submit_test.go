package makidex_amm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRPC scripts the three RPC calls the submitter makes.
type fakeRPC struct {
	blockhashCalls int
	sendErrs       []error // consumed per SendTransaction call; nil entry = success
	sentTxs        []*solana.Transaction
	statuses       []*rpc.SignatureStatusesResult // consumed per poll; nil entry = not yet known
	statusCalls    int
	statusErr      error
}

func (f *fakeRPC) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	f.blockhashCalls++
	var hash solana.Hash
	hash[0] = byte(f.blockhashCalls) // distinct hash per fetch
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{
			Blockhash:            hash,
			LastValidBlockHeight: 1000,
		},
	}, nil
}

func (f *fakeRPC) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	call := len(f.sentTxs)
	f.sentTxs = append(f.sentTxs, tx)
	if call < len(f.sendErrs) && f.sendErrs[call] != nil {
		return solana.Signature{}, f.sendErrs[call]
	}
	return tx.Signatures[0], nil
}

func (f *fakeRPC) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	call := f.statusCalls
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	var status *rpc.SignatureStatusesResult
	if call < len(f.statuses) {
		status = f.statuses[call]
	} else if len(f.statuses) > 0 {
		status = f.statuses[len(f.statuses)-1]
	}
	return &rpc.GetSignatureStatusesResult{
		Value: []*rpc.SignatureStatusesResult{status},
	}, nil
}

func newTestClient(fake *fakeRPC) *Client {
	return &Client{
		rpc:   fake,
		Payer: solana.NewWallet().PrivateKey,
	}
}

func testInstruction(t *testing.T, payer solana.PublicKey) solana.Instruction {
	t.Helper()
	program := solana.NewWallet().PublicKey()
	ammConfig, _, err := FindAmmConfigAddress(program)
	require.NoError(t, err)
	ins, err := NewCreateConfigAccountInstruction(
		program,
		solana.NewWallet().PublicKey(),
		payer,
		ammConfig,
		solana.NewWallet().PublicKey(),
	)
	require.NoError(t, err)
	return ins
}

func shortenTimings(t *testing.T) {
	t.Helper()
	origBase, origPoll, origBudget := rpcRetryBaseDelay, confirmPollInterval, confirmWaitBudget
	rpcRetryBaseDelay = time.Millisecond
	confirmPollInterval = time.Millisecond
	confirmWaitBudget = 200 * time.Millisecond
	t.Cleanup(func() {
		rpcRetryBaseDelay, confirmPollInterval, confirmWaitBudget = origBase, origPoll, origBudget
	})
}

func confirmedStatus() *rpc.SignatureStatusesResult {
	return &rpc.SignatureStatusesResult{ConfirmationStatus: rpc.ConfirmationStatusConfirmed}
}

func TestSubmit_ConfirmedHappyPath(t *testing.T) {
	shortenTimings(t)
	fake := &fakeRPC{statuses: []*rpc.SignatureStatusesResult{confirmedStatus()}}
	client := newTestClient(fake)
	ins := testInstruction(t, client.Payer.PublicKey())

	sig, err := client.Submit(context.Background(), ins, nil, true)
	require.NoError(t, err)
	assert.NotEqual(t, solana.Signature{}, sig)
	assert.Len(t, fake.sentTxs, 1, "exactly one transaction broadcast")
	assert.Equal(t, 1, fake.blockhashCalls)
}

func TestSubmit_FireAndForgetSkipsPolling(t *testing.T) {
	shortenTimings(t)
	fake := &fakeRPC{}
	client := newTestClient(fake)
	ins := testInstruction(t, client.Payer.PublicKey())

	_, err := client.Submit(context.Background(), ins, nil, false)
	require.NoError(t, err)
	assert.Zero(t, fake.statusCalls)
}

func TestSubmit_SignatureCompleteness(t *testing.T) {
	shortenTimings(t)
	fake := &fakeRPC{statuses: []*rpc.SignatureStatusesResult{confirmedStatus()}}
	client := newTestClient(fake)

	// Instruction requires a second signer whose key is never supplied.
	otherSigner := solana.NewWallet().PublicKey()
	ins := testInstruction(t, client.Payer.PublicKey())
	ins.(*solana.GenericInstruction).AccountValues = append(
		ins.Accounts(), solana.Meta(otherSigner).SIGNER(),
	)

	_, err := client.Submit(context.Background(), ins, nil, true)
	var precond *PreconditionError
	require.ErrorAs(t, err, &precond)
	assert.Empty(t, fake.sentTxs, "nothing may be broadcast with a missing signature")
}

func TestSubmit_SignsEveryRequiredSigner(t *testing.T) {
	shortenTimings(t)
	fake := &fakeRPC{statuses: []*rpc.SignatureStatusesResult{confirmedStatus()}}
	client := newTestClient(fake)

	extra := solana.NewWallet().PrivateKey
	ins := testInstruction(t, client.Payer.PublicKey())
	ins.(*solana.GenericInstruction).AccountValues = append(
		ins.Accounts(), solana.Meta(extra.PublicKey()).SIGNER(),
	)

	_, err := client.Submit(context.Background(), ins, []solana.PrivateKey{extra}, true)
	require.NoError(t, err)
	require.Len(t, fake.sentTxs, 1)

	tx := fake.sentTxs[0]
	assert.Equal(t, int(tx.Message.Header.NumRequiredSignatures), len(tx.Signatures),
		"one signature per required signer")
	require.NoError(t, tx.VerifySignatures())
}

func TestSubmit_StaleBlockhashRefetchesAndResigns(t *testing.T) {
	shortenTimings(t)
	fake := &fakeRPC{
		sendErrs: []error{errors.New("Transaction simulation failed: Blockhash not found")},
		statuses: []*rpc.SignatureStatusesResult{confirmedStatus()},
	}
	client := newTestClient(fake)
	ins := testInstruction(t, client.Payer.PublicKey())

	_, err := client.Submit(context.Background(), ins, nil, true)
	require.NoError(t, err)

	require.Len(t, fake.sentTxs, 2)
	assert.Equal(t, 2, fake.blockhashCalls, "stale blockhash must trigger a re-fetch")
	assert.NotEqual(t,
		fake.sentTxs[0].Message.RecentBlockhash,
		fake.sentTxs[1].Message.RecentBlockhash,
		"retry must be signed over a fresh blockhash, not the stale payload")
	assert.NotEqual(t, fake.sentTxs[0].Signatures[0], fake.sentTxs[1].Signatures[0])
}

func TestSubmit_NetworkErrorExhaustsRetries(t *testing.T) {
	shortenTimings(t)
	fake := &fakeRPC{
		sendErrs: []error{
			errors.New("connection reset by peer"),
			errors.New("connection reset by peer"),
			errors.New("connection reset by peer"),
		},
	}
	client := newTestClient(fake)
	ins := testInstruction(t, client.Payer.PublicKey())

	_, err := client.Submit(context.Background(), ins, nil, true)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr, "exhausted retries must surface as a network failure, never success")
	assert.Len(t, fake.sentTxs, maxRPCAttempts)
}

func TestSubmit_RejectionIsNotRetried(t *testing.T) {
	shortenTimings(t)
	fake := &fakeRPC{
		sendErrs: []error{&jsonrpc.RPCError{Code: -32002, Message: "Transaction simulation failed: custom program error: 0x7"}},
	}
	client := newTestClient(fake)
	ins := testInstruction(t, client.Payer.PublicKey())

	_, err := client.Submit(context.Background(), ins, nil, true)
	var rejected *RejectedTransactionError
	require.ErrorAs(t, err, &rejected)
	assert.Contains(t, rejected.Error(), "0x7", "rejection reason surfaced verbatim")
	assert.Len(t, fake.sentTxs, 1, "an identical rejected transaction is never resent")
}

func TestSubmit_OnChainFailureDuringConfirmation(t *testing.T) {
	shortenTimings(t)
	fake := &fakeRPC{
		statuses: []*rpc.SignatureStatusesResult{
			{Err: map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}},
		},
	}
	client := newTestClient(fake)
	ins := testInstruction(t, client.Payer.PublicKey())

	_, err := client.Submit(context.Background(), ins, nil, true)
	var rejected *RejectedTransactionError
	require.ErrorAs(t, err, &rejected)
}

func TestSubmit_AmbiguousTimeout(t *testing.T) {
	shortenTimings(t)
	fake := &fakeRPC{statuses: []*rpc.SignatureStatusesResult{nil}}
	client := newTestClient(fake)
	ins := testInstruction(t, client.Payer.PublicKey())

	sig, err := client.Submit(context.Background(), ins, nil, true)
	require.ErrorIs(t, err, ErrConfirmationTimeout)
	assert.NotEqual(t, solana.Signature{}, sig,
		"the signature of an unconfirmed transaction is reported so the operator can check it")
	var rejected *RejectedTransactionError
	assert.False(t, errors.As(err, &rejected), "timeout is distinct from failure")
}

func TestSubmit_NilInstruction(t *testing.T) {
	client := newTestClient(&fakeRPC{})
	_, err := client.Submit(context.Background(), nil, nil, true)
	var precond *PreconditionError
	require.ErrorAs(t, err, &precond)
}

// End-to-end create-config path: derive, build, submit once, confirm.
func TestCreateConfigPipeline(t *testing.T) {
	shortenTimings(t)
	fake := &fakeRPC{statuses: []*rpc.SignatureStatusesResult{confirmedStatus()}}
	client := newTestClient(fake)

	program := solana.MustPublicKeyFromBase58("3Qvevpr9VQp7ECWjAU186oiSGjMhDucjU32oSX8BfxGK")
	admin := solana.NewWallet().PublicKey()
	pnlOwner := solana.NewWallet().PublicKey()

	ammConfig, _, err := FindAmmConfigAddress(program)
	require.NoError(t, err)

	ins, err := NewCreateConfigAccountInstruction(program, admin, client.Payer.PublicKey(), ammConfig, pnlOwner)
	require.NoError(t, err)

	sig, err := client.Submit(context.Background(), ins, nil, true)
	require.NoError(t, err)
	assert.NotEqual(t, solana.Signature{}, sig)
	require.Len(t, fake.sentTxs, 1)

	// The compiled message must reference the builder's accounts in order.
	tx := fake.sentTxs[0]
	compiled := tx.Message.Instructions[0]
	want := []solana.PublicKey{
		ammConfig, admin, client.Payer.PublicKey(), pnlOwner,
		solana.SystemProgramID, solana.SysVarRentPubkey,
	}
	require.Len(t, compiled.Accounts, len(want))
	for i, accIdx := range compiled.Accounts {
		assert.Equal(t, want[i], tx.Message.AccountKeys[accIdx], "compiled account %d", i)
	}
}
