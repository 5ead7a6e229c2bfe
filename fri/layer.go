package fri

import (
	"fmt"

	"github.com/consensys/gnark-fri/internal/parallel"
)

// InterpolatedLayer is one round's full evaluation vector, grouped into
// leaves of laneWidth interleaved evaluation streams and committed.
//
// The vector has length leafCount*laneWidth; lane k occupies the flat range
// [k*leafCount, (k+1)*leafCount), and leaf i is the tuple
// {values[i + k*leafCount] : k in [0, laneWidth)}. For the base layer the
// lane width is twice the number of polynomials, so one leaf holds, for
// every polynomial, both values paired by the first fold round.
type InterpolatedLayer[E any] struct {
	field     Field[E]
	values    []E
	laneWidth int
	leafCount int

	commitment VectorCommitment
}

// NewInterpolatedLayer groups values into lane-strided leaves and commits to
// them. len(values) must be a non zero multiple of laneWidth.
func NewInterpolatedLayer[E any](f Field[E], scheme CommitmentScheme, values []E, laneWidth int) (*InterpolatedLayer[E], error) {
	if laneWidth <= 0 || len(values) == 0 || len(values)%laneWidth != 0 {
		return nil, fmt.Errorf("%w: %d values cannot be grouped into lanes of width %d", ErrDegreeMismatch, len(values), laneWidth)
	}
	leafCount := len(values) / laneWidth

	elemSize := f.Size()
	leaves := make([][]byte, leafCount)
	parallel.Execute(leafCount, func(start, end int) {
		for i := start; i < end; i++ {
			leaf := make([]byte, 0, laneWidth*elemSize)
			for k := 0; k < laneWidth; k++ {
				leaf = append(leaf, f.Bytes(values[i+k*leafCount])...)
			}
			leaves[i] = leaf
		}
	})

	commitment, err := scheme.Commit(leaves)
	if err != nil {
		return nil, err
	}

	return &InterpolatedLayer[E]{
		field:      f,
		values:     values,
		laneWidth:  laneWidth,
		leafCount:  leafCount,
		commitment: commitment,
	}, nil
}

// Commit returns the layer's commitment root.
func (l *InterpolatedLayer[E]) Commit() [32]byte {
	return l.commitment.Root()
}

// LeafCount returns the number of committed leaves.
func (l *InterpolatedLayer[E]) LeafCount() int {
	return l.leafCount
}

// Query opens, for every lane, the values at the given sorted leaf indices,
// together with a batched commitment proof.
func (l *InterpolatedLayer[E]) Query(indices []int) (*QueryOpening[E], error) {
	if len(indices) == 0 {
		// degenerate but valid: nothing is claimed, nothing is opened
		return &QueryOpening[E]{field: l.field, values: map[int]E{}}, nil
	}
	for _, idx := range indices {
		if idx < 0 || idx >= l.leafCount {
			return nil, fmt.Errorf("%w: index %d, domain size %d", ErrIndexOutOfRange, idx, l.leafCount)
		}
	}

	values := make(map[int]E, len(indices)*l.laneWidth)
	for k := 0; k < l.laneWidth; k++ {
		for _, idx := range indices {
			flat := idx + k*l.leafCount
			values[flat] = l.values[flat]
		}
	}

	proof, err := l.commitment.Open(indices)
	if err != nil {
		return nil, err
	}

	return &QueryOpening[E]{
		field:  l.field,
		values: values,
		proof:  proof,
	}, nil
}

// QueryOpening holds the values opened for one round's requested index set,
// keyed by flat position in the layer's evaluation vector, plus the batched
// commitment proof.
type QueryOpening[E any] struct {
	field  Field[E]
	values map[int]E
	proof  []byte
}

// ProofSize returns the opening's contribution to the proof size in bytes:
// the authentication path plus every opened value.
func (q *QueryOpening[E]) ProofSize() int {
	return len(q.proof) + len(q.values)*q.field.Size()
}

// At returns the opened value at flat position i.
func (q *QueryOpening[E]) At(i int) (E, bool) {
	v, ok := q.values[i]
	return v, ok
}

// VerifyMerkleTree reconstructs the serialized leaves from the opened values
// for the given indices and lane width, and checks them against the
// committed root. A failed check is reported as ErrMerkleProofInvalid.
func (q *QueryOpening[E]) VerifyMerkleTree(indices []int, laneWidth int, verifier CommitmentVerifier) error {
	if len(indices) == 0 {
		if len(q.proof) != 0 {
			return fmt.Errorf("%w: authentication data for an empty index set", ErrMerkleProofInvalid)
		}
		return nil
	}
	leafCount := verifier.LeafCount()
	elemSize := q.field.Size()

	leaves := make([][]byte, len(indices))
	for i, idx := range indices {
		leaf := make([]byte, 0, laneWidth*elemSize)
		for k := 0; k < laneWidth; k++ {
			v, ok := q.values[idx+k*leafCount]
			if !ok {
				return fmt.Errorf("%w: opening misses value at position %d", ErrMerkleProofInvalid, idx+k*leafCount)
			}
			leaf = append(leaf, q.field.Bytes(v)...)
		}
		leaves[i] = leaf
	}

	if !verifier.Verify(q.proof, indices, leaves) {
		return ErrMerkleProofInvalid
	}
	return nil
}
