package chain

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// SimulatedSigner signs payouts with a local ed25519 key instead of a wallet.
type SimulatedSigner struct {
	key ed25519.PrivateKey
}

// NewSimulatedSigner derives the signing key from a 32-byte seed.
func NewSimulatedSigner(seed []byte) (*SimulatedSigner, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signer seed must be %d bytes", ed25519.SeedSize)
	}
	return &SimulatedSigner{key: ed25519.NewKeyFromSeed(seed)}, nil
}

func (s *SimulatedSigner) Sign(ctx context.Context, tx Tx) (SignedTx, error) {
	if err := ctx.Err(); err != nil {
		return SignedTx{}, err
	}
	if tx.To == "" || !tx.Amount.IsPositive() {
		return SignedTx{}, errors.New("malformed transaction")
	}

	payload := []byte(fmt.Sprintf("%s|%s|%s|%s|%s", tx.From, tx.To, tx.Mint, tx.Amount.String(), tx.Memo))
	sum := sha256.Sum256(payload)
	sig := ed25519.Sign(s.key, sum[:])

	return SignedTx{Hash: hex.EncodeToString(sum[:]), Signature: hex.EncodeToString(sig)}, nil
}
