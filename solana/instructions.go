package stake_protocol

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/stake"
	"github.com/gagliardetto/solana-go/programs/system"
)

// StakeStateSize is the fixed data length of every stake account.
const StakeStateSize = 200

// NewCreateStakeAccountInstructions returns the system CreateAccount that
// allocates and funds the stake account, followed by the stake Initialize
// that sets its authorities. Both must run before a delegation.
func NewCreateStakeAccountInstructions(
	from solana.PublicKey,
	stakeAccount solana.PublicKey,
	staker solana.PublicKey,
	withdrawer solana.PublicKey,
	lamports uint64,
) ([]solana.Instruction, error) {
	createIx, err := system.NewCreateAccountInstruction(
		lamports,
		StakeStateSize,
		solana.StakeProgramID,
		from,
		stakeAccount,
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to create CreateAccount instruction: %w", err)
	}

	// Zero lockup: the custodian is the all-zero key.
	initialize := stake.NewInitializeInstruction(staker, withdrawer, stakeAccount)
	if err := initialize.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create Initialize instruction: %w", err)
	}

	return []solana.Instruction{createIx, initialize.Build()}, nil
}

// NewDelegateStakeInstruction builds a stake program DelegateStake. The stake
// account must already be initialized when it executes.
func NewDelegateStakeInstruction(stakeAccount, votePubkey, stakeAuthority solana.PublicKey) (solana.Instruction, error) {
	delegate := stake.NewDelegateStakeInstruction(votePubkey, stakeAuthority, stakeAccount)
	if err := delegate.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create DelegateStake instruction: %w", err)
	}
	return delegate.Build(), nil
}
