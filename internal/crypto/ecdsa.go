package crypto

import (
	"crypto/ecdsa"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"fusionswap/internal/domain"
)

// LoadSigningKey parses a hex secp256k1 private key (with or without 0x)
// and returns it with its account address.
func LoadSigningKey(hexKey string) (*ecdsa.PrivateKey, domain.Address, error) {
	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, domain.Address{}, errors.Wrap(err, "parse signing key")
	}
	return key, ethcrypto.PubkeyToAddress(key.PublicKey), nil
}

// Sign signs a 32-byte digest and returns the 65-byte [R || S || V] signature.
func Sign(key *ecdsa.PrivateKey, digest domain.Hash) ([]byte, error) {
	sig, err := ethcrypto.Sign(digest[:], key)
	if err != nil {
		return nil, errors.Wrap(err, "sign digest")
	}
	return sig, nil
}

// RecoverSigner returns the address that produced sig over digest.
func RecoverSigner(digest domain.Hash, sig []byte) (domain.Address, error) {
	pub, err := ethcrypto.SigToPub(digest[:], sig)
	if err != nil {
		return domain.Address{}, errors.Wrap(err, "recover signer")
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}
