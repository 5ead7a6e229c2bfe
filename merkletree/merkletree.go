// Package merkletree implements a binary Merkle tree over opaque leaves with
// batched multi-index openings.
//
// The tree is hash-agnostic: both the prover and the verifier side are
// parameterized by a hash constructor. Leaf and interior hashes are domain
// separated with a one byte prefix (cf gitlab.com/NebulousLabs/merkletree).
//
// A batched opening for a sorted set of leaf indices contains exactly the
// sibling digests that cannot be recomputed from the opened leaves
// themselves, emitted in the deterministic bottom-up, left-to-right order of
// the authentication walk. The verifier replays the same walk, so prover and
// verifier consume the proof stream in lockstep.
package merkletree

import (
	"bytes"
	"errors"
	"hash"
	"math/bits"

	"github.com/consensys/gnark-fri/internal/parallel"
)

// DigestSize is the size in bytes of the tree's digests and of the root.
const DigestSize = 32

const (
	leafHashPrefix = 0x00
	nodeHashPrefix = 0x01
)

var (
	ErrDigestSize       = errors.New("merkletree: hash function must produce 32 byte digests")
	ErrLeafCount        = errors.New("merkletree: leaf count must be a non zero power of two")
	ErrIndexOutOfRange  = errors.New("merkletree: leaf index out of range")
	ErrIndicesNotSorted = errors.New("merkletree: leaf indices must be sorted and distinct")
)

// Tree is the prover side of the commitment: it retains every interior node
// so that batched openings are assembled by lookup only.
type Tree struct {
	hashFn func() hash.Hash

	// levels[0] holds the leaf digests, levels[len(levels)-1] the root.
	levels [][][]byte
}

// New hashes the leaves and builds the full tree. The number of leaves must
// be a power of two.
func New(hashFn func() hash.Hash, leaves [][]byte) (*Tree, error) {
	n := len(leaves)
	if n == 0 || bits.OnesCount(uint(n)) != 1 {
		return nil, ErrLeafCount
	}
	if hashFn().Size() != DigestSize {
		return nil, ErrDigestSize
	}

	t := &Tree{
		hashFn: hashFn,
		levels: make([][][]byte, bits.TrailingZeros(uint(n))+1),
	}

	t.levels[0] = make([][]byte, n)
	parallel.Execute(n, func(start, end int) {
		h := hashFn()
		for i := start; i < end; i++ {
			t.levels[0][i] = leafSum(h, leaves[i])
		}
	})

	for lvl := 1; lvl < len(t.levels); lvl++ {
		prev := t.levels[lvl-1]
		cur := make([][]byte, len(prev)/2)
		parallel.Execute(len(cur), func(start, end int) {
			h := hashFn()
			for i := start; i < end; i++ {
				cur[i] = nodeSum(h, prev[2*i], prev[2*i+1])
			}
		})
		t.levels[lvl] = cur
	}

	return t, nil
}

// LeafCount returns the number of committed leaves.
func (t *Tree) LeafCount() int {
	return len(t.levels[0])
}

// Root returns the root digest.
func (t *Tree) Root() [DigestSize]byte {
	var root [DigestSize]byte
	copy(root[:], t.levels[len(t.levels)-1][0])
	return root
}

// Open returns the batched authentication data for the given leaf indices.
// The indices must be sorted in strictly increasing order.
func (t *Tree) Open(indices []int) ([]byte, error) {
	if err := checkIndices(indices, t.LeafCount()); err != nil {
		return nil, err
	}

	var proof bytes.Buffer
	idx := append([]int(nil), indices...)
	for lvl := 0; lvl < len(t.levels)-1; lvl++ {
		next := idx[:0]
		for i := 0; i < len(idx); {
			node := idx[i]
			if sibling := node ^ 1; i+1 < len(idx) && idx[i+1] == sibling {
				// sibling is opened too, nothing to transmit
				i += 2
			} else {
				proof.Write(t.levels[lvl][sibling])
				i++
			}
			next = append(next, node>>1)
		}
		idx = next
	}
	return proof.Bytes(), nil
}

// Verifier is the stateless verifier side of the commitment: it knows only
// the root and the leaf count.
type Verifier struct {
	hashFn    func() hash.Hash
	root      [DigestSize]byte
	leafCount int
}

// NewVerifier returns a verifier for the tree committed to by root over
// leafCount leaves.
func NewVerifier(hashFn func() hash.Hash, root [DigestSize]byte, leafCount int) *Verifier {
	return &Verifier{
		hashFn:    hashFn,
		root:      root,
		leafCount: leafCount,
	}
}

// LeafCount returns the number of committed leaves.
func (v *Verifier) LeafCount() int {
	return v.leafCount
}

// Verify replays the authentication walk for the claimed leaves and reports
// whether it reproduces the root. It never panics on malformed input.
func (v *Verifier) Verify(proof []byte, indices []int, claimedLeaves [][]byte) bool {
	if v.leafCount == 0 || bits.OnesCount(uint(v.leafCount)) != 1 {
		return false
	}
	if len(indices) != len(claimedLeaves) {
		return false
	}
	if err := checkIndices(indices, v.leafCount); err != nil {
		return false
	}
	h := v.hashFn()
	if h.Size() != DigestSize {
		return false
	}

	digests := make([][]byte, len(indices))
	for i := range indices {
		digests[i] = leafSum(h, claimedLeaves[i])
	}

	idx := append([]int(nil), indices...)
	for width := v.leafCount; width > 1; width >>= 1 {
		nextIdx := idx[:0]
		nextDigests := digests[:0]
		for i := 0; i < len(idx); {
			node := idx[i]
			var left, right []byte
			if sibling := node ^ 1; i+1 < len(idx) && idx[i+1] == sibling {
				left, right = digests[i], digests[i+1]
				i += 2
			} else {
				if len(proof) < DigestSize {
					return false
				}
				sib := proof[:DigestSize]
				proof = proof[DigestSize:]
				if node&1 == 0 {
					left, right = digests[i], sib
				} else {
					left, right = sib, digests[i]
				}
				i++
			}
			nextIdx = append(nextIdx, node>>1)
			nextDigests = append(nextDigests, nodeSum(h, left, right))
		}
		idx, digests = nextIdx, nextDigests
	}

	return len(proof) == 0 && bytes.Equal(digests[0], v.root[:])
}

func checkIndices(indices []int, leafCount int) error {
	if len(indices) == 0 {
		return ErrIndicesNotSorted
	}
	for i, idx := range indices {
		if idx < 0 || idx >= leafCount {
			return ErrIndexOutOfRange
		}
		if i > 0 && indices[i-1] >= idx {
			return ErrIndicesNotSorted
		}
	}
	return nil
}

func leafSum(h hash.Hash, leaf []byte) []byte {
	h.Reset()
	h.Write([]byte{leafHashPrefix})
	h.Write(leaf)
	return h.Sum(nil)
}

func nodeSum(h hash.Hash, left, right []byte) []byte {
	h.Reset()
	h.Write([]byte{nodeHashPrefix})
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}
