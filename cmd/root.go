package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	stake_protocol "helius-stake/solana"

	figure "github.com/common-nighthawk/go-figure"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var rootCmd = &cobra.Command{
	Use:   "helius-stake",
	Short: "Create and delegate Solana stake accounts through Helius.",
	Long: `Creates one stake account per configured validator, funds it with the
configured amount plus the rent-exempt minimum, delegates it, and submits
everything as a single transaction signed by OWNER_PRIVATE_KEY.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

// run loads configuration and the owner key before touching the network.
func run(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	owner, err := stake_protocol.LoadOwnerKey(os.LookupEnv)
	if err != nil {
		return err
	}

	client, err := stake_protocol.NewClient(cfg.RpcEndpoint, owner)
	if err != nil {
		return fmt.Errorf("failed to create Solana client: %w", err)
	}
	klog.Infof("Using Helius RPC endpoint (%s).", cfg.Cluster)

	out := cmd.OutOrStdout()
	client.OnRentExempt = printRentExempt(out)
	myFigure := figure.NewFigure("STAKE", "larry3d", true)
	fmt.Fprintln(out, titleStyle.Render(myFigure.String()))

	return stakeAll(cmd.Context(), out, client, stakeRequests, owner.PublicKey())
}

// stakeClient is implemented by *stake_protocol.Client.
type stakeClient interface {
	GetBalance(ctx context.Context, publicKey solana.PublicKey) (uint64, error)
	StakeAndDelegate(ctx context.Context, stakes []stake_protocol.StakeRequest) (*stake_protocol.StakeResult, error)
}

func stakeAll(ctx context.Context, out io.Writer, client stakeClient, stakes []stake_protocol.StakeRequest, owner solana.PublicKey) error {
	fmt.Fprintln(out, promptStyle.Render(fmt.Sprintf("Owner pubkey: %s", owner)))

	if balance, err := client.GetBalance(ctx, owner); err != nil {
		fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("Could not fetch owner balance: %v", err)))
	} else {
		fmt.Fprintln(out, promptStyle.Render(fmt.Sprintf("Owner balance: %s SOL", stake_protocol.LamportsToSol(balance))))
	}

	for _, stake := range stakes {
		fmt.Fprintln(out, promptStyle.Render(fmt.Sprintf("Delegating %s SOL to %s", stake.Amount, stake.VotePubkey)))
	}

	result, err := client.StakeAndDelegate(ctx, stakes)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, titleStyle.Render("✅ Stake transaction sent!"))
	fmt.Fprintf(out, "   Transaction signature: %s\n", result.Signature)
	fmt.Fprintf(out, "   Valid until block height: %d\n", result.LastValidBlockHeight)
	fmt.Fprintln(out, infoStyle.Render("   Stake account pubkeys:"))
	for _, pk := range result.StakeAccountPubkeys {
		fmt.Fprintf(out, "   - %s\n", pk)
	}
	return nil
}

// printRentExempt reports the rent-exempt minimum while the transaction is
// still being built.
func printRentExempt(out io.Writer) func(lamports uint64) {
	return func(lamports uint64) {
		fmt.Fprintln(out, promptStyle.Render(fmt.Sprintf("Rent exempt: %d", lamports)))
	}
}

// Execute runs the root command and exits non-zero on any error.
func Execute(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	klog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, warningStyle.Render(fmt.Sprintf("❌ %+v", err)))
		os.Exit(1)
	}
}
