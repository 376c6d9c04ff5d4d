package governance

import (
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
)

// GenerateHexPrivateKey generates a new private key and returns it hex encoded with its address
func GenerateHexPrivateKey() (string, Identity, error) {
	pk, err := crypto.GenerateKey()
	if err != nil {
		return "", "", err
	}

	// Convert the private key to bytes
	privateKeyBytes := crypto.FromECDSA(pk)

	return hex.EncodeToString(privateKeyBytes), NewIdentity(crypto.PubkeyToAddress(pk.PublicKey)), nil
}
