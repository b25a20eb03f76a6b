package makidex_amm

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// LoadKeypairFile reads a signing keypair from a solana-keygen style file:
// a JSON array of the 64 raw key bytes.
func LoadKeypairFile(path string) (solana.PrivateKey, error) {
	if path == "" {
		return nil, &PreconditionError{Param: "keypair path", Reason: "empty path"}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("keypair file %s is not readable: %w", path, err)
	}

	privateKey, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair from %s: %w", path, err)
	}
	if len(privateKey) != solana.PrivateKeyLength {
		return nil, fmt.Errorf("invalid private key length in %s: expected %d, got %d",
			path, solana.PrivateKeyLength, len(privateKey))
	}
	return privateKey, nil
}
