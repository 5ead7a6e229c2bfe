// Package bn254 instantiates the low degree test over the bn254 scalar
// field, with gnark-crypto's radix-2 FFT as the evaluation domain and
// blake2b-256 merkle trees as the vector commitment.
package bn254

import (
	"hash"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/blake2b"

	"github.com/consensys/gnark-fri/fri"
	"github.com/consensys/gnark-fri/merkletree"
)

func blakeHash() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err) // blake2b.New256 cannot fail without a key
	}
	return h
}

type commitmentScheme struct {
	hashFn func() hash.Hash
}

func (s commitmentScheme) Commit(leaves [][]byte) (fri.VectorCommitment, error) {
	return merkletree.New(s.hashFn, leaves)
}

func (s commitmentScheme) NewVerifier(root [32]byte, leafCount int) fri.CommitmentVerifier {
	return merkletree.NewVerifier(s.hashFn, root, leafCount)
}

// Option configures the bn254 instantiation.
type Option func(*config)

type config struct {
	hashFn func() hash.Hash
}

// WithHashFunction overrides the commitment hash, blake2b-256 by default.
// The hash must produce 32 byte digests. Prover and verifier must use the
// same hash.
func WithHashFunction(hashFn func() hash.Hash) Option {
	return func(c *config) {
		c.hashFn = hashFn
	}
}

func newConfig(opts ...Option) config {
	c := config{hashFn: blakeHash}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// NewCommitmentScheme returns a merkle tree commitment scheme.
func NewCommitmentScheme(opts ...Option) fri.CommitmentScheme {
	return commitmentScheme{hashFn: newConfig(opts...).hashFn}
}

// NewProver returns a prover for the given polynomials over baseDomain.
func NewProver(polynomials [][]fr.Element, baseDomain *Domain, opts ...Option) (*fri.Prover[fr.Element], error) {
	return fri.NewProver[fr.Element](Field{}, NewCommitmentScheme(opts...), polynomials, baseDomain)
}

// NewVerifier returns a verifier for polyCount polynomials committed to by
// root over leafCount base layer leaves.
func NewVerifier(root [32]byte, polyCount, leafCount int, opts ...Option) *fri.Verifier[fr.Element] {
	return fri.NewVerifier[fr.Element](Field{}, NewCommitmentScheme(opts...), root, polyCount, leafCount)
}

// NewDomains builds the fold round domains for polynomials of degree bound
// 2^logDegree evaluated at rate 2^logRate: one domain per round, of size
// 2^(logDegree+logRate-i).
func NewDomains(logDegree, logRate int) ([]fri.EvaluationDomain[fr.Element], error) {
	domains := make([]fri.EvaluationDomain[fr.Element], logDegree)
	for i := 0; i < logDegree; i++ {
		d, err := NewDomain(1 << (logDegree + logRate - i))
		if err != nil {
			return nil, err
		}
		domains[i] = d
	}
	return domains, nil
}
