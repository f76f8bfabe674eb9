package stake_protocol

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// OwnerKeyEnv is the environment variable holding the owner's base58 secret key.
const OwnerKeyEnv = "OWNER_PRIVATE_KEY"

var (
	ErrOwnerKeyNotSet   = errors.New(OwnerKeyEnv + " not set in .env")
	ErrOwnerKeyEncoding = errors.New("failed to decode " + OwnerKeyEnv + " as base58")
	ErrOwnerKeyInvalid  = errors.New("invalid owner secret key")
)

// LoadOwnerKey reads the owner's secret key through lookup, which is
// normally os.LookupEnv.
func LoadOwnerKey(lookup func(string) (string, bool)) (solana.PrivateKey, error) {
	secret, ok := lookup(OwnerKeyEnv)
	if !ok || strings.TrimSpace(secret) == "" {
		return nil, ErrOwnerKeyNotSet
	}
	return OwnerKeyFromBase58(strings.TrimSpace(secret))
}

// OwnerKeyFromBase58 decodes a 64-byte ed25519 secret key (seed followed by
// public key). Only base58 is accepted.
func OwnerKeyFromBase58(secret string) (solana.PrivateKey, error) {
	raw, err := base58.Decode(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOwnerKeyEncoding, err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrOwnerKeyInvalid, ed25519.PrivateKeySize, len(raw))
	}

	key := solana.PrivateKey(raw)
	derived := solana.PrivateKey(ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize]))
	if !derived.PublicKey().Equals(key.PublicKey()) {
		return nil, fmt.Errorf("%w: public key does not match secret seed", ErrOwnerKeyInvalid)
	}
	return key, nil
}
