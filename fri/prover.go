package fri

import (
	"fmt"
	"math/bits"
	"time"

	"github.com/consensys/gnark-fri/internal/parallel"
	"github.com/consensys/gnark-fri/logger"
)

// FoldCommitments is the commit-phase transcript: the ordered roots of the
// intermediate layers and the fully folded final scalar.
type FoldCommitments[E any] struct {
	roots      [][32]byte
	finalValue E
	elemSize   int
}

// Roots returns the per-round commitment roots, one per intermediate layer.
func (c *FoldCommitments[E]) Roots() [][32]byte {
	return c.roots
}

// FinalValue returns the fully folded scalar of the last round.
func (c *FoldCommitments[E]) FinalValue() E {
	return c.finalValue
}

// ProofSize returns the transcript's size in bytes: one 32 byte root per
// intermediate layer plus the serialized final value.
func (c *FoldCommitments[E]) ProofSize() int {
	return len(c.roots)*32 + c.elemSize
}

// ProverState retains one InterpolatedLayer per intermediate fold round so
// queries can be answered against any round after the commit phase.
type ProverState[E any] struct {
	layers []*InterpolatedLayer[E]
}

// Prover runs the prover side of the low degree test for a fixed batch of
// polynomials evaluated over a fixed base domain.
type Prover[E any] struct {
	field  Field[E]
	scheme CommitmentScheme

	base      *InterpolatedLayer[E]
	baseSize  int // size of the base evaluation domain
	polyCount int
	logDegree int
}

// NewProver evaluates every polynomial over baseDomain and commits to the
// batched base layer, with lane width 2*len(polynomials). All polynomials
// must share the same power-of-two length, at most the domain size.
func NewProver[E any](f Field[E], scheme CommitmentScheme, polynomials [][]E, baseDomain EvaluationDomain[E]) (*Prover[E], error) {
	if len(polynomials) == 0 {
		return nil, fmt.Errorf("%w: no polynomials", ErrDegreeMismatch)
	}
	degree := len(polynomials[0])
	if degree == 0 || bits.OnesCount(uint(degree)) != 1 {
		return nil, fmt.Errorf("%w: polynomial length %d is not a power of two", ErrDegreeMismatch, degree)
	}
	for _, p := range polynomials[1:] {
		if len(p) != degree {
			return nil, fmt.Errorf("%w: polynomial lengths %d and %d", ErrDegreeMismatch, degree, len(p))
		}
	}
	n := baseDomain.Size()
	if degree > n {
		return nil, fmt.Errorf("%w: degree %d exceeds base domain size %d", ErrDegreeMismatch, degree, n)
	}

	values := make([]E, 0, len(polynomials)*n)
	for _, p := range polynomials {
		values = append(values, baseDomain.FFT(p)...)
	}

	base, err := NewInterpolatedLayer(f, scheme, values, 2*len(polynomials))
	if err != nil {
		return nil, err
	}

	return &Prover[E]{
		field:     f,
		scheme:    scheme,
		base:      base,
		baseSize:  n,
		polyCount: len(polynomials),
		logDegree: bits.TrailingZeros(uint(degree)),
	}, nil
}

// Commit returns the base layer's commitment root, the only message
// published before any challenge is drawn.
func (p *Prover[E]) Commit() [32]byte {
	return p.base.Commit()
}

// LogDegree returns the number of fold rounds.
func (p *Prover[E]) LogDegree() int {
	return p.logDegree
}

// CommitPhase batches the polynomial lanes into one evaluation vector using
// Horner's rule over challenges.Batch, then runs the fold rounds: round i
// halves the vector with challenges.Fold[i] over domains[i], committing to
// every intermediate layer and ending on the fully folded scalar.
//
// domains[i] must have size baseDomain.Size()>>i and there must be exactly
// one domain and one fold challenge per round.
func (p *Prover[E]) CommitPhase(domains []EvaluationDomain[E], challenges Challenges[E]) (*ProverState[E], *FoldCommitments[E], error) {
	if len(domains) != p.logDegree || len(challenges.Fold) != p.logDegree {
		return nil, nil, fmt.Errorf("%w: %d fold rounds, got %d domains and %d challenges", ErrDegreeMismatch, p.logDegree, len(domains), len(challenges.Fold))
	}
	for i, d := range domains {
		if d.Size() != p.baseSize>>i {
			return nil, nil, fmt.Errorf("%w: domain %d has size %d, expected %d", ErrDegreeMismatch, i, d.Size(), p.baseSize>>i)
		}
	}

	log := logger.Logger().With().Str("protocol", "fri").Logger()
	start := time.Now()

	f := p.field
	cur := p.batchLanes(challenges.Batch)

	invTwo, _ := f.Inverse(f.Double(f.One()))

	state := &ProverState[E]{}
	commits := &FoldCommitments[E]{elemSize: f.Size()}
	for i := 0; i < p.logDegree; i++ {
		cur = foldEvaluations(f, cur, domains[i], challenges.Fold[i], invTwo)
		if i < p.logDegree-1 {
			layer, err := NewInterpolatedLayer(f, p.scheme, cur, 2)
			if err != nil {
				return nil, nil, err
			}
			state.layers = append(state.layers, layer)
			commits.roots = append(commits.roots, layer.Commit())
		} else {
			commits.finalValue = cur[0]
		}
	}

	log.Debug().
		Int("nbPolynomials", p.polyCount).
		Int("nbRounds", p.logDegree).
		Dur("took", time.Since(start)).
		Msg("commit phase done")

	return state, commits, nil
}

// batchLanes combines the polynomial lanes of the base layer into a single
// vector of domain size, accumulating across lanes with Horner's rule. Lane
// 0, the first polynomial, is the most significant.
func (p *Prover[E]) batchLanes(challenge E) []E {
	f := p.field
	n := p.baseSize
	batched := make([]E, n)
	parallel.Execute(n, func(start, end int) {
		for i := start; i < end; i++ {
			acc := f.Zero()
			for j := i; j < n*p.polyCount; j += n {
				acc = f.Add(f.Mul(acc, challenge), p.base.values[j])
			}
			batched[i] = acc
		}
	})
	return batched
}

// foldEvaluations computes one fold round: positions p and p+len/2 of the
// current vector are combined into position p of a half length vector. With
// x, nx the paired values and w the inverse of the domain's p-th element,
// the stored value is (sum + challenge*((x-nx)*w - sum)) / 2, sum = x+nx.
func foldEvaluations[E any](f Field[E], cur []E, domain EvaluationDomain[E], challenge E, invTwo E) []E {
	half := domain.Size() / 2
	next := make([]E, half)
	parallel.Execute(half, func(start, end int) {
		for i := start; i < end; i++ {
			x := cur[i]
			nx := cur[i+half]
			sum := f.Add(x, nx)
			folded := f.Add(sum, f.Mul(challenge, f.Sub(f.Mul(f.Sub(x, nx), domain.ElementInverseAt(i)), sum)))
			next[i] = f.Mul(folded, invTwo)
		}
	})
	return next
}

// Sample answers a query request: for every round it reduces the sampled
// indices to the round's half domain and opens the round's layer at the
// surviving positions. domainSize is the base domain size the indices were
// drawn over.
func (p *Prover[E]) Sample(state *ProverState[E], indices []int, domainSize int) ([]*QueryOpening[E], error) {
	if domainSize != p.baseSize {
		return nil, fmt.Errorf("%w: sampling over domain size %d, base layer has %d", ErrDegreeMismatch, domainSize, p.baseSize)
	}
	if p.logDegree > 1 && (state == nil || len(state.layers) != p.logDegree-1) {
		return nil, fmt.Errorf("%w: prover state does not match %d fold rounds", ErrDegreeMismatch, p.logDegree)
	}

	openings := make([]*QueryOpening[E], 0, p.logDegree)
	reduced := indices
	for i := 0; i < p.logDegree; i++ {
		domainSize >>= 1
		reduced = reduceIndices(reduced, domainSize)

		layer := p.base
		if i > 0 {
			layer = state.layers[i-1]
		}
		opening, err := layer.Query(reduced)
		if err != nil {
			return nil, err
		}
		openings = append(openings, opening)
	}
	return openings, nil
}
