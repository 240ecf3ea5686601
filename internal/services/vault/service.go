package vault

import (
	"io"
	"sync"

	"github.com/pkg/errors"

	"fusionswap/internal/crypto"
	"fusionswap/internal/domain"
)

// MaxSecrets bounds one vault; the hash-lock parts field is 16 bits wide.
const MaxSecrets = 1 << 16

// Vault generates and holds the secrets of one swap.
type Vault struct {
	mu    sync.Mutex
	rand  io.Reader
	fills domain.FillSet
	used  bool
	wiped bool
}

// New returns an empty vault reading randomness from r (crypto/rand when nil).
func New(r io.Reader) *Vault {
	return &Vault{rand: r}
}

// Generate creates count fresh secrets indexed 0..count-1 and returns a copy
// of the fill set. The caller should Wipe its copy once it has derived the
// hash-lock. A vault generates exactly once.
func (v *Vault) Generate(count int) (domain.FillSet, error) {
	if count < 1 || count > MaxSecrets {
		return nil, errors.Wrapf(domain.ErrInvalidCount, "count %d not in [1, %d]", count, MaxSecrets)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.used {
		return nil, errors.Wrap(domain.ErrInvalidCount, "vault already generated")
	}

	fills := make(domain.FillSet, count)
	for i := range fills {
		s, err := crypto.RandomSecret(v.rand)
		if err != nil {
			fills.Wipe()
			return nil, errors.Wrap(err, "read random secret")
		}
		fills[i] = domain.Fill{Index: uint64(i), Secret: s, Hash: crypto.HashSecret(s)}
		s.Wipe()
	}
	v.fills = fills
	v.used = true

	out := make(domain.FillSet, count)
	copy(out, fills)
	return out, nil
}

// Reveal returns the secret of fill index.
func (v *Vault) Reveal(index uint64) (domain.Secret, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.wiped {
		return domain.Secret{}, errors.Wrapf(domain.ErrUnknownIndex, "index %d: vault wiped", index)
	}
	if index >= uint64(len(v.fills)) {
		return domain.Secret{}, errors.Wrapf(domain.ErrUnknownIndex, "index %d of %d", index, len(v.fills))
	}
	return v.fills[index].Secret, nil
}

// Hashes returns the public secret hashes in index order.
func (v *Vault) Hashes() []domain.SecretHash {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fills.Hashes()
}

// Len returns the number of generated secrets.
func (v *Vault) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.fills)
}

// Wipe zeroes every secret. Hashes stay available. Safe to call repeatedly.
func (v *Vault) Wipe() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fills.Wipe()
	v.wiped = true
}

// Compile-time assertion that Vault implements domain.SecretVault.
var _ domain.SecretVault = (*Vault)(nil)
