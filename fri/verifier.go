package fri

import (
	"fmt"
	"time"

	"github.com/consensys/gnark-fri/logger"
)

// Verifier checks a low degree test transcript against the base layer's
// commitment root. It retains no evaluation data: per-round commitment
// verifiers are rebuilt from the transcript inside each Verify call.
type Verifier[E any] struct {
	field  Field[E]
	scheme CommitmentScheme

	root      [32]byte
	polyCount int
	leafCount int // leaf count of the base layer
}

// NewVerifier returns a verifier for a batch of polyCount polynomials
// committed to by root over leafCount base layer leaves (half the base
// domain size).
func NewVerifier[E any](f Field[E], scheme CommitmentScheme, root [32]byte, polyCount, leafCount int) *Verifier[E] {
	return &Verifier[E]{
		field:     f,
		scheme:    scheme,
		root:      root,
		polyCount: polyCount,
		leafCount: leafCount,
	}
}

// Verify checks the whole transcript: every opening against its round's
// commitment, and the fold relation at every sampled index across rounds,
// ending on the final value. The challenges, domains and indices must be the
// ones the prover was run with.
//
// A nil return means the proof is accepted. Rejections carry
// ErrMerkleProofInvalid or ErrProofInvalid with the failing round and index;
// adversarial transcripts never panic.
func (v *Verifier[E]) Verify(domains []EvaluationDomain[E], challenges Challenges[E], indices []int, commitments *FoldCommitments[E], openings []*QueryOpening[E]) error {
	logDegree := len(challenges.Fold)
	if len(domains) != logDegree {
		return fmt.Errorf("%w: %d domains for %d rounds", ErrDegreeMismatch, len(domains), logDegree)
	}
	if commitments == nil || len(openings) != logDegree || len(commitments.roots) != logDegree-1 {
		return fmt.Errorf("%w: malformed transcript shape", ErrProofInvalid)
	}
	for _, o := range openings {
		if o == nil {
			return fmt.Errorf("%w: malformed transcript shape", ErrProofInvalid)
		}
	}

	log := logger.Logger().With().Str("protocol", "fri").Logger()
	start := time.Now()

	// rebuild one ephemeral commitment verifier per intermediate layer
	roundVerifiers := make([]CommitmentVerifier, logDegree)
	roundVerifiers[0] = v.scheme.NewVerifier(v.root, v.leafCount)
	leafCount := v.leafCount
	for i, root := range commitments.roots {
		leafCount /= 2
		roundVerifiers[i+1] = v.scheme.NewVerifier(root, leafCount)
	}

	// first pass: every opening against its round's commitment. The fold
	// pass below reads opened values across neighboring rounds, so all of
	// them must be authenticated before any is used: a corrupted opening is
	// always reported as a merkle failure, never as a fold mismatch.
	reducedPerRound := make([][]int, logDegree)
	reduced := indices
	for i := 0; i < logDegree; i++ {
		reduced = reduceIndices(reduced, domains[i].Size()/2)
		reducedPerRound[i] = reduced

		laneWidth := 2
		if i == 0 {
			laneWidth = 2 * v.polyCount
		}
		if err := openings[i].VerifyMerkleTree(reduced, laneWidth, roundVerifiers[i]); err != nil {
			return fmt.Errorf("round %d: %w", i, err)
		}
	}

	// second pass: the fold relation at every surviving index
	f := v.field
	for i := 0; i < logDegree; i++ {
		for _, j := range reducedPerRound[i] {
			folded, err := v.foldAt(openings[i], domains[i], challenges, i, j)
			if err != nil {
				return err
			}

			// the prover stores the halved fold value, so the recomputed
			// value is compared at double scale
			var expected E
			if i < logDegree-1 {
				next, ok := openings[i+1].At(j)
				if !ok {
					return fmt.Errorf("round %d: opening misses value at position %d: %w", i+1, j, ErrProofInvalid)
				}
				expected = f.Double(next)
			} else {
				expected = f.Double(commitments.finalValue)
			}
			if !f.Equal(folded, expected) {
				return fmt.Errorf("round %d: fold mismatch at index %d: %w", i, j, ErrProofInvalid)
			}
		}
	}

	log.Debug().
		Int("nbRounds", logDegree).
		Int("nbIndices", len(indices)).
		Dur("took", time.Since(start)).
		Msg("proof accepted")

	return nil
}

// foldAt recomputes the fold value committed for index j of round i from the
// round's opened values. Round 0 replays the Horner batching across the
// polynomial lanes, with lane 0 most significant, folding each lane as it is
// accumulated; later rounds are a single fold expression.
func (v *Verifier[E]) foldAt(opening *QueryOpening[E], domain EvaluationDomain[E], challenges Challenges[E], i, j int) (E, error) {
	f := v.field
	n := domain.Size()
	w := domain.ElementInverseAt(j)

	lanePairs := 1
	if i == 0 {
		lanePairs = v.polyCount
	}

	res := f.Zero()
	for k, flat := 0, j; k < lanePairs; k, flat = k+1, flat+n {
		x, okx := opening.At(flat)
		nx, oknx := opening.At(flat + n/2)
		if !okx || !oknx {
			return res, fmt.Errorf("round %d: opening misses pair at position %d: %w", i, flat, ErrProofInvalid)
		}
		sum := f.Add(x, nx)
		folded := f.Add(sum, f.Mul(challenges.Fold[i], f.Sub(f.Mul(f.Sub(x, nx), w), sum)))
		res = f.Add(f.Mul(res, challenges.Batch), folded)
	}
	return res, nil
}
