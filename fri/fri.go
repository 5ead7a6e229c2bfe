// Package fri implements the prover and verifier of a FRI-style low degree
// test: an interactive oracle proof that a batch of committed evaluation
// vectors is close to evaluations of polynomials of bounded degree.
//
// The prover batches the input polynomials into one committed layer, then
// runs log(degree) rounds of random linear folding, halving the evaluation
// domain and committing to each intermediate layer. The verifier checks the
// fold relation at a set of sampled positions, reduced consistently across
// rounds, against the committed layers and the final fully folded scalar.
//
// The protocol is generic over the scalar field (Field) and over the vector
// commitment and its hash (CommitmentScheme), and takes challenges and
// sampled indices as inputs: drawing them, e.g. from a Fiat-Shamir
// transcript, is the caller's concern.
package fri

import "errors"

var (
	// ErrDegreeMismatch signals misuse: input polynomials of unequal or non
	// power-of-two length, or domains inconsistent with the fold schedule.
	ErrDegreeMismatch = errors.New("fri: degree mismatch")

	// ErrIndexOutOfRange signals a query index outside the current domain.
	ErrIndexOutOfRange = errors.New("fri: index out of range")

	// ErrMerkleProofInvalid signals an opening that does not verify against
	// the claimed commitment.
	ErrMerkleProofInvalid = errors.New("fri: merkle proof invalid")

	// ErrProofInvalid signals a failed fold consistency check.
	ErrProofInvalid = errors.New("fri: proof invalid")
)

// EvaluationDomain is a multiplicative subgroup of power-of-two size on
// which layers are evaluated.
type EvaluationDomain[E any] interface {
	// Size returns the number of elements in the domain.
	Size() int

	// ElementInverseAt returns the multiplicative inverse of the domain's
	// i-th element.
	ElementInverseAt(i int) E

	// FFT evaluates the polynomial given by coeffs on the whole domain, in
	// domain order. len(coeffs) may be smaller than Size(); higher
	// coefficients are zero.
	FFT(coeffs []E) []E
}

// VectorCommitment is the prover side of a commitment to an ordered list of
// opaque leaves.
type VectorCommitment interface {
	Root() [32]byte
	// Open returns a batched opening proof for the given sorted leaf indices.
	Open(indices []int) ([]byte, error)
	LeafCount() int
}

// CommitmentVerifier checks openings against a committed root.
type CommitmentVerifier interface {
	Verify(proof []byte, indices []int, claimedLeaves [][]byte) bool
	LeafCount() int
}

// CommitmentScheme builds the two sides of the vector commitment. It fixes
// the hash function; see merkletree for the provided implementation.
type CommitmentScheme interface {
	Commit(leaves [][]byte) (VectorCommitment, error)
	NewVerifier(root [32]byte, leafCount int) CommitmentVerifier
}

// Challenges carries the verifier randomness of one protocol run: one
// batching scalar and one scalar per fold round.
type Challenges[E any] struct {
	Batch E
	Fold  []E
}
