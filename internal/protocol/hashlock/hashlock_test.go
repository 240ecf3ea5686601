package hashlock_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fusionswap/internal/crypto"
	"fusionswap/internal/domain"
	"fusionswap/internal/protocol/hashlock"
	"fusionswap/internal/protocol/merkle"
)

// fills returns n deterministic fills so commitments are comparable.
func fills(n int) domain.FillSet {
	out := make(domain.FillSet, n)
	for i := range out {
		var s domain.Secret
		for j := range s {
			s[j] = byte(i*31 + j)
		}
		out[i] = domain.Fill{Index: uint64(i), Secret: s, Hash: crypto.HashSecret(s)}
	}
	return out
}

func TestBuild_SingleFill(t *testing.T) {
	fs := fills(1)
	lock, err := hashlock.Build(fs)
	require.NoError(t, err)

	assert.Equal(t, domain.HashLockSingle, lock.Kind)
	assert.Equal(t, domain.Hash(fs[0].Hash), lock.Value)
	assert.Empty(t, lock.Leaves)
	assert.Equal(t, 1, hashlock.PartsCount(lock))
	assert.True(t, hashlock.Matches(lock, 0, fs[0].Secret))
	assert.False(t, hashlock.Matches(lock, 1, fs[0].Secret))
}

func TestBuild_MerkleFourFills(t *testing.T) {
	fs := fills(4)
	lock, err := hashlock.Build(fs)
	require.NoError(t, err)

	require.Equal(t, domain.HashLockMerkle, lock.Kind)
	require.Len(t, lock.Leaves, 4)
	assert.Equal(t, 4, hashlock.PartsCount(lock))

	for i, f := range fs {
		var idx [8]byte
		binary.BigEndian.PutUint64(idx[:], uint64(i))
		assert.Equal(t, crypto.Keccak256(idx[:], f.Hash[:]), lock.Leaves[i], "leaf %d", i)

		proof, err := hashlock.Proof(lock, uint64(i))
		require.NoError(t, err)
		assert.True(t, hashlock.VerifyLeaf(lock, uint64(i), f.Hash, proof), "leaf %d", i)
		assert.True(t, hashlock.Matches(lock, uint64(i), f.Secret))
	}

	// A secret only unlocks its own index.
	assert.False(t, hashlock.Matches(lock, 1, fs[0].Secret))
}

func TestBuild_MerkleRootPacksParts(t *testing.T) {
	fs := fills(3)
	lock, err := hashlock.Build(fs)
	require.NoError(t, err)

	tree, err := merkle.New(hashlock.Leaves(fs.Hashes()))
	require.NoError(t, err)
	root := tree.Root()

	assert.Equal(t, uint16(2), binary.BigEndian.Uint16(lock.Value[:2]))
	assert.Equal(t, root[2:], lock.Value[2:])

	got, err := hashlock.Root(lock)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

// Expected values follow HashLock.forSingleFill / forMultipleFills of the
// Fusion+ SDK for secrets 0x0101..01, 0x0202..02, 0x0303..03: leaves are
// keccak256(uint64 index ++ secret hash), the root is an unsorted
// SimpleMerkleTree and its top 16 bits carry secretsCount-1.
func TestBuild_KnownValues(t *testing.T) {
	fs := make(domain.FillSet, 3)
	for i := range fs {
		var s domain.Secret
		copy(s[:], bytes.Repeat([]byte{byte(i + 1)}, 32))
		fs[i] = domain.Fill{Index: uint64(i), Secret: s, Hash: crypto.HashSecret(s)}
	}

	cases := []struct {
		n     int
		kind  domain.HashLockKind
		value string
		root  string
	}{
		{
			n:     1,
			kind:  domain.HashLockSingle,
			value: "0xcebc8882fecbec7fb80d2cf4b312bec018884c2d66667c67a90508214bd8bafc",
		},
		{
			n:     2,
			kind:  domain.HashLockMerkle,
			value: "0x0001c7a7cc54f8f95aa93dc205daca53cba76cd9718f12bb58a84a03e401b386",
			root:  "0x23ecc7a7cc54f8f95aa93dc205daca53cba76cd9718f12bb58a84a03e401b386",
		},
		{
			n:     3,
			kind:  domain.HashLockMerkle,
			value: "0x000299d8555fec958aad8d2a63944bc46c44e420b84a6b52b3d757589dfff2a4",
			root:  "0xb59f99d8555fec958aad8d2a63944bc46c44e420b84a6b52b3d757589dfff2a4",
		},
	}
	for _, c := range cases {
		lock, err := hashlock.Build(fs[:c.n])
		require.NoError(t, err)
		assert.Equal(t, c.kind, lock.Kind, "%d secrets", c.n)
		assert.Equal(t, domain.Hash(common.HexToHash(c.value)), lock.Value, "%d secrets", c.n)
		if c.root == "" {
			continue
		}
		root, err := hashlock.Root(lock)
		require.NoError(t, err)
		assert.Equal(t, domain.Hash(common.HexToHash(c.root)), root, "%d secrets", c.n)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	for _, n := range []int{1, 2, 7} {
		a, err := hashlock.Build(fills(n))
		require.NoError(t, err)
		b, err := hashlock.Build(fills(n))
		require.NoError(t, err)
		assert.Equal(t, a.Bytes(), b.Bytes())
		assert.Equal(t, a, b)
	}
}

func TestBuild_OrderMatters(t *testing.T) {
	fs := fills(2)
	a, err := hashlock.Build(fs)
	require.NoError(t, err)

	swapped, err := hashlock.FromHashes([]domain.SecretHash{fs[1].Hash, fs[0].Hash})
	require.NoError(t, err)
	assert.NotEqual(t, a.Value, swapped.Value)
}

func TestBuild_Errors(t *testing.T) {
	_, err := hashlock.Build(nil)
	require.ErrorIs(t, err, domain.ErrEmptyFillSet)

	_, err = hashlock.FromHashes(nil)
	require.ErrorIs(t, err, domain.ErrEmptyFillSet)

	fs := fills(3)
	fs[2].Index = 5
	_, err = hashlock.Build(fs)
	require.ErrorIs(t, err, domain.ErrUnknownIndex)
}

func TestProof_OutOfRange(t *testing.T) {
	lock, err := hashlock.Build(fills(2))
	require.NoError(t, err)
	_, err = hashlock.Proof(lock, 2)
	require.ErrorIs(t, err, domain.ErrUnknownIndex)

	single, err := hashlock.Build(fills(1))
	require.NoError(t, err)
	_, err = hashlock.Proof(single, 1)
	require.ErrorIs(t, err, domain.ErrUnknownIndex)
}

func TestValidate(t *testing.T) {
	fs := fills(4)
	lock, err := hashlock.Build(fs)
	require.NoError(t, err)
	require.NoError(t, hashlock.Validate(lock, fs.Hashes()))

	other := fills(4)[1:]
	assert.Error(t, hashlock.Validate(lock, other.Hashes()))
}
