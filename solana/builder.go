package stake_protocol

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/text"
	"github.com/shopspring/decimal"
	"k8s.io/klog/v2"
)

var ErrNoStakeRequests = errors.New("no stake requests")

// StakeNetwork is the read-only part of the RPC surface the builder needs.
// *rpc.Client satisfies it.
type StakeNetwork interface {
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment rpc.CommitmentType) (uint64, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
}

// StakeRequest asks for a new stake account holding Amount SOL (plus rent)
// delegated to VotePubkey.
type StakeRequest struct {
	VotePubkey solana.PublicKey
	Amount     decimal.Decimal
}

type StepKind int

const (
	StepCreateAccount StepKind = iota
	StepDelegate
)

func (k StepKind) String() string {
	switch k {
	case StepCreateAccount:
		return "create-account"
	case StepDelegate:
		return "delegate"
	default:
		return fmt.Sprintf("StepKind(%d)", int(k))
	}
}

// StakeStep is one logical operation in the transaction. A create-account
// step compiles to CreateAccount + Initialize, a delegate step to
// DelegateStake.
type StakeStep struct {
	Kind         StepKind
	StakeAccount solana.PublicKey
	VotePubkey   solana.PublicKey
	Lamports     uint64
}

// StakeTransaction is a fully signed transaction ready for submission.
type StakeTransaction struct {
	Transaction          *solana.Transaction
	StakeAccountPubkeys  []solana.PublicKey
	Steps                []StakeStep
	RentExempt           uint64
	LastValidBlockHeight uint64
}

// Builder assembles stake-and-delegate transactions.
type Builder struct {
	Network StakeNetwork
	// NewStakeKey generates one stake account keypair per request.
	NewStakeKey func() solana.PrivateKey
	// OnRentExempt, if set, is called once the rent-exempt minimum is known
	// and before anything else is fetched.
	OnRentExempt func(lamports uint64)
}

func NewBuilder(network StakeNetwork) *Builder {
	return &Builder{
		Network: network,
		NewStakeKey: func() solana.PrivateKey {
			return solana.NewWallet().PrivateKey
		},
	}
}

// CreateStakeTransaction creates one stake account per request, each funded
// with the requested amount plus the rent-exempt minimum, initialized with
// owner as staker and withdrawer, and delegated to the request's vote
// account. The owner pays the fee. The generated stake account private keys
// are only used to sign and are not returned.
func (b *Builder) CreateStakeTransaction(
	ctx context.Context,
	owner solana.PrivateKey,
	stakes []StakeRequest,
) (*StakeTransaction, error) {
	if len(stakes) == 0 {
		return nil, ErrNoStakeRequests
	}
	for i, stake := range stakes {
		if _, err := SolToLamports(stake.Amount); err != nil {
			return nil, fmt.Errorf("stake request %d: %w", i, err)
		}
	}

	rentExempt, err := b.Network.GetMinimumBalanceForRentExemption(ctx, StakeStateSize, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get rent exemption: %w", err)
	}
	klog.Infof("Rent exempt: %d", rentExempt)
	if b.OnRentExempt != nil {
		b.OnRentExempt(rentExempt)
	}

	ownerPubkey := owner.PublicKey()

	signers := map[solana.PublicKey]solana.PrivateKey{ownerPubkey: owner}
	out := &StakeTransaction{
		StakeAccountPubkeys: make([]solana.PublicKey, 0, len(stakes)),
		Steps:               make([]StakeStep, 0, 2*len(stakes)),
		RentExempt:          rentExempt,
	}
	var instructions []solana.Instruction

	for _, stake := range stakes {
		lamports, err := fundedLamports(stake.Amount, rentExempt)
		if err != nil {
			return nil, err
		}

		stakeKey := b.NewStakeKey()
		stakePubkey := stakeKey.PublicKey()
		signers[stakePubkey] = stakeKey
		out.StakeAccountPubkeys = append(out.StakeAccountPubkeys, stakePubkey)

		createIxs, err := NewCreateStakeAccountInstructions(ownerPubkey, stakePubkey, ownerPubkey, ownerPubkey, lamports)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, createIxs...)
		out.Steps = append(out.Steps, StakeStep{
			Kind:         StepCreateAccount,
			StakeAccount: stakePubkey,
			Lamports:     lamports,
		})

		delegateIx, err := NewDelegateStakeInstruction(stakePubkey, stake.VotePubkey, ownerPubkey)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, delegateIx)
		out.Steps = append(out.Steps, StakeStep{
			Kind:         StepDelegate,
			StakeAccount: stakePubkey,
			VotePubkey:   stake.VotePubkey,
		})
	}

	latestBlockhash, err := b.Network.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	if latestBlockhash == nil || latestBlockhash.Value == nil {
		return nil, fmt.Errorf("failed to get latest blockhash: empty response")
	}
	out.LastValidBlockHeight = latestBlockhash.Value.LastValidBlockHeight

	// Blockhash and fee payer are fixed here; signing must come after.
	tx, err := solana.NewTransaction(
		instructions,
		latestBlockhash.Value.Blockhash,
		solana.TransactionPayer(ownerPubkey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(
		func(key solana.PublicKey) *solana.PrivateKey {
			if signer, ok := signers[key]; ok {
				return &signer
			}
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if klog.V(1).Enabled() {
		logTransaction(tx)
	}

	out.Transaction = tx
	return out, nil
}

// logTransaction dumps the decoded instructions of tx. The system and stake
// decoders are registered by importing their program packages.
func logTransaction(tx *solana.Transaction) {
	buf := new(bytes.Buffer)
	if _, err := tx.EncodeTree(text.NewTreeEncoder(buf, "Stake transaction")); err != nil {
		klog.Warningf("failed to decode transaction for logging: %v", err)
		return
	}
	klog.Info(buf.String())
}
