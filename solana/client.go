package stake_protocol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Client stakes on behalf of a single owner key.
type Client struct {
	RpcClient *rpc.Client
	Signer    solana.PrivateKey
	// OnRentExempt receives the rent-exempt minimum as soon as it is fetched.
	OnRentExempt func(lamports uint64)
}

// NewClient creates a new Client for the given RPC endpoint and owner key.
// The key is expected to come from LoadOwnerKey.
func NewClient(rpcEndpoint string, signer solana.PrivateKey) (*Client, error) {
	rpcClient := rpc.New(rpcEndpoint)

	return &Client{
		RpcClient: rpcClient,
		Signer:    signer,
	}, nil
}

// StakeResult is what the caller must record after a successful submission.
// The stake account private keys are gone by then; only the public keys
// identify the new accounts.
type StakeResult struct {
	Signature            solana.Signature
	StakeAccountPubkeys  []solana.PublicKey
	RentExempt           uint64
	LastValidBlockHeight uint64
}

// StakeAndDelegate builds, signs and submits one transaction creating a
// stake account per request, delegated to the request's vote account.
func (c *Client) StakeAndDelegate(ctx context.Context, stakes []StakeRequest) (*StakeResult, error) {
	builder := NewBuilder(c.RpcClient)
	builder.OnRentExempt = c.OnRentExempt

	stakeTx, err := builder.CreateStakeTransaction(ctx, c.Signer, stakes)
	if err != nil {
		return nil, err
	}

	sig, err := SubmitTransaction(ctx, c.RpcClient, stakeTx.Transaction)
	if err != nil {
		return nil, err
	}

	return &StakeResult{
		Signature:            sig,
		StakeAccountPubkeys:  stakeTx.StakeAccountPubkeys,
		RentExempt:           stakeTx.RentExempt,
		LastValidBlockHeight: stakeTx.LastValidBlockHeight,
	}, nil
}

// GetBalance retrieves the SOL balance for a given public key.
func (c *Client) GetBalance(ctx context.Context, publicKey solana.PublicKey) (uint64, error) {
	balance, err := c.RpcClient.GetBalance(
		ctx,
		publicKey,
		rpc.CommitmentFinalized,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance.Value, nil
}
