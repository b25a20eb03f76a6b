package makidex_amm

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// rpcService is the slice of the RPC surface the client consumes. *rpc.Client
// satisfies it; tests substitute fakes.
type rpcService interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

// Client drives the makidex AMM program over a Solana RPC endpoint. The fee
// payer key is held only for the duration of signing and never mutated.
type Client struct {
	rpc   rpcService
	Payer solana.PrivateKey
}

// NewClient creates a new Client for the given RPC endpoint with a fee payer.
func NewClient(rpcEndpoint string, payer solana.PrivateKey) *Client {
	return &Client{
		rpc:   rpc.New(rpcEndpoint),
		Payer: payer,
	}
}
