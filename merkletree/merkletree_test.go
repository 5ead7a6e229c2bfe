package merkletree

import (
	"crypto/sha256"
	"hash"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func blakeHash() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	return h
}

func randomLeaves(rng *rand.Rand, n, size int) [][]byte {
	leaves := make([][]byte, n)
	for i := range leaves {
		leaves[i] = make([]byte, size)
		rng.Read(leaves[i])
	}
	return leaves
}

func TestOpenVerify(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, n := range []int{1, 2, 4, 32, 128} {
		leaves := randomLeaves(rng, n, 64)
		tree, err := New(blakeHash, leaves)
		require.NoError(t, err)
		require.Equal(t, n, tree.LeafCount())

		verifier := NewVerifier(blakeHash, tree.Root(), n)

		// every single-leaf opening
		for i := 0; i < n; i++ {
			proof, err := tree.Open([]int{i})
			require.NoError(t, err)
			require.True(t, verifier.Verify(proof, []int{i}, [][]byte{leaves[i]}))
		}

		// random batched openings
		for trial := 0; trial < 10; trial++ {
			indices := randomIndexSet(rng, n)
			opened := make([][]byte, len(indices))
			for i, idx := range indices {
				opened[i] = leaves[idx]
			}
			proof, err := tree.Open(indices)
			require.NoError(t, err)
			require.True(t, verifier.Verify(proof, indices, opened))
		}
	}
}

func randomIndexSet(rng *rand.Rand, n int) []int {
	count := 1 + rng.Intn(n)
	picked := make(map[int]struct{})
	for len(picked) < count {
		picked[rng.Intn(n)] = struct{}{}
	}
	indices := make([]int, 0, len(picked))
	for i := 0; i < n; i++ {
		if _, ok := picked[i]; ok {
			indices = append(indices, i)
		}
	}
	return indices
}

func TestTamperedLeafIsRejected(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	leaves := randomLeaves(rng, 16, 32)
	tree, err := New(blakeHash, leaves)
	require.NoError(t, err)

	indices := []int{2, 3, 9}
	proof, err := tree.Open(indices)
	require.NoError(t, err)

	verifier := NewVerifier(blakeHash, tree.Root(), 16)
	opened := [][]byte{leaves[2], leaves[3], leaves[9]}
	require.True(t, verifier.Verify(proof, indices, opened))

	tampered := append([]byte(nil), leaves[3]...)
	tampered[0] ^= 1
	require.False(t, verifier.Verify(proof, indices, [][]byte{leaves[2], tampered, leaves[9]}))
}

func TestMalformedInput(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	leaves := randomLeaves(rng, 8, 32)
	tree, err := New(blakeHash, leaves)
	require.NoError(t, err)

	// construction
	_, err = New(blakeHash, nil)
	require.ErrorIs(t, err, ErrLeafCount)
	_, err = New(blakeHash, leaves[:3])
	require.ErrorIs(t, err, ErrLeafCount)
	_, err = New(sha256.New224, leaves)
	require.ErrorIs(t, err, ErrDigestSize)

	// openings
	_, err = tree.Open([]int{8})
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = tree.Open([]int{3, 3})
	require.ErrorIs(t, err, ErrIndicesNotSorted)
	_, err = tree.Open([]int{5, 2})
	require.ErrorIs(t, err, ErrIndicesNotSorted)
	_, err = tree.Open(nil)
	require.ErrorIs(t, err, ErrIndicesNotSorted)

	// verification must reject, not panic
	indices := []int{1, 4}
	proof, err := tree.Open(indices)
	require.NoError(t, err)
	opened := [][]byte{leaves[1], leaves[4]}
	verifier := NewVerifier(blakeHash, tree.Root(), 8)

	require.True(t, verifier.Verify(proof, indices, opened))
	require.False(t, verifier.Verify(proof[:len(proof)-1], indices, opened))
	require.False(t, verifier.Verify(append(proof, 0), indices, opened))
	require.False(t, verifier.Verify(proof, indices, opened[:1]))
	require.False(t, verifier.Verify(proof, []int{4, 1}, opened))
	require.False(t, verifier.Verify(proof, []int{1, 9}, opened))
	require.False(t, NewVerifier(blakeHash, tree.Root(), 12).Verify(proof, indices, opened))
}

func TestProofIsMinimal(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	leaves := randomLeaves(rng, 8, 16)
	tree, err := New(blakeHash, leaves)
	require.NoError(t, err)

	// opening every leaf needs no authentication data at all
	all := []int{0, 1, 2, 3, 4, 5, 6, 7}
	proof, err := tree.Open(all)
	require.NoError(t, err)
	require.Empty(t, proof)
	require.True(t, NewVerifier(blakeHash, tree.Root(), 8).Verify(proof, all, leaves))

	// a single leaf in a depth-3 tree needs exactly 3 siblings
	proof, err = tree.Open([]int{5})
	require.NoError(t, err)
	require.Len(t, proof, 3*DigestSize)
}
