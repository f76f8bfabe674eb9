package stake_protocol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// TransactionSender broadcasts a serialized transaction. *rpc.Client
// satisfies it.
type TransactionSender interface {
	SendRawTransaction(ctx context.Context, rawTx []byte) (solana.Signature, error)
}

// SubmitTransaction serializes tx and sends it once. It does not wait for
// confirmation.
func SubmitTransaction(ctx context.Context, sender TransactionSender, tx *solana.Transaction) (solana.Signature, error) {
	rawTx, err := tx.MarshalBinary()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to serialize transaction: %w", err)
	}

	sig, err := sender.SendRawTransaction(ctx, rawTx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}
