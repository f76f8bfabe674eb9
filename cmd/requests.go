package cmd

import (
	stake_protocol "helius-stake/solana"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// stakeRequests is the fixed list of delegations made on every run.
var stakeRequests = []stake_protocol.StakeRequest{
	{
		VotePubkey: solana.MustPublicKeyFromBase58("6D2jqw9hyVCpppZexquxa74Fn33rJzzBx38T58VucHx9"),
		Amount:     decimal.RequireFromString("0.0001"),
	},
	{
		VotePubkey: solana.MustPublicKeyFromBase58("8hPk5CbKDoM7dN9LssTdVkFhDykeq7A8CZurA5AQSFJH"),
		Amount:     decimal.RequireFromString("0.0001"),
	},
}
