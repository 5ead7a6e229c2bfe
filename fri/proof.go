package fri

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Proof bundles the artifacts the verifier needs besides the challenges and
// the sampled indices: the base layer root, the fold commitments and one
// opening per round.
type Proof[E any] struct {
	root        [32]byte
	commitments *FoldCommitments[E]
	openings    []*QueryOpening[E]
}

// NewProof assembles a transcript from the prover's outputs.
func NewProof[E any](root [32]byte, commitments *FoldCommitments[E], openings []*QueryOpening[E]) *Proof[E] {
	return &Proof[E]{
		root:        root,
		commitments: commitments,
		openings:    openings,
	}
}

// Root returns the base layer's commitment root.
func (p *Proof[E]) Root() [32]byte {
	return p.root
}

// Commitments returns the fold commitments.
func (p *Proof[E]) Commitments() *FoldCommitments[E] {
	return p.commitments
}

// Openings returns the per-round query openings.
func (p *Proof[E]) Openings() []*QueryOpening[E] {
	return p.openings
}

// Size returns the total proof size in bytes: fold commitments plus every
// opening's values and authentication path. The base root is published
// before the protocol runs and is not counted.
func (p *Proof[E]) Size() int {
	size := p.commitments.ProofSize()
	for _, o := range p.openings {
		size += o.ProofSize()
	}
	return size
}

type openingWire struct {
	Values map[int][]byte `cbor:"1,keyasint"`
	Proof  []byte         `cbor:"2,keyasint"`
}

type proofWire struct {
	Root     []byte        `cbor:"1,keyasint"`
	Roots    [][]byte      `cbor:"2,keyasint"`
	Final    []byte        `cbor:"3,keyasint"`
	Openings []openingWire `cbor:"4,keyasint"`
}

// MarshalProof serializes a transcript with deterministic CBOR encoding.
func MarshalProof[E any](f Field[E], p *Proof[E]) ([]byte, error) {
	wire := proofWire{
		Root:     append([]byte(nil), p.root[:]...),
		Roots:    make([][]byte, len(p.commitments.roots)),
		Final:    f.Bytes(p.commitments.finalValue),
		Openings: make([]openingWire, len(p.openings)),
	}
	for i := range p.commitments.roots {
		wire.Roots[i] = append([]byte(nil), p.commitments.roots[i][:]...)
	}
	for i, o := range p.openings {
		values := make(map[int][]byte, len(o.values))
		for flat, v := range o.values {
			values[flat] = f.Bytes(v)
		}
		wire.Openings[i] = openingWire{Values: values, Proof: o.proof}
	}

	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	return enc.Marshal(wire)
}

// UnmarshalProof is the inverse of MarshalProof.
func UnmarshalProof[E any](f Field[E], data []byte) (*Proof[E], error) {
	var wire proofWire
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("fri: decode proof: %w", err)
	}
	if len(wire.Root) != 32 {
		return nil, fmt.Errorf("fri: decode proof: root has %d bytes", len(wire.Root))
	}

	p := &Proof[E]{
		commitments: &FoldCommitments[E]{
			roots:    make([][32]byte, len(wire.Roots)),
			elemSize: f.Size(),
		},
		openings: make([]*QueryOpening[E], len(wire.Openings)),
	}
	copy(p.root[:], wire.Root)

	for i, root := range wire.Roots {
		if len(root) != 32 {
			return nil, fmt.Errorf("fri: decode proof: round %d root has %d bytes", i, len(root))
		}
		copy(p.commitments.roots[i][:], root)
	}

	finalValue, err := f.SetBytes(wire.Final)
	if err != nil {
		return nil, fmt.Errorf("fri: decode proof: %w", err)
	}
	p.commitments.finalValue = finalValue

	for i, o := range wire.Openings {
		values := make(map[int]E, len(o.Values))
		for flat, b := range o.Values {
			v, err := f.SetBytes(b)
			if err != nil {
				return nil, fmt.Errorf("fri: decode proof: round %d position %d: %w", i, flat, err)
			}
			values[flat] = v
		}
		p.openings[i] = &QueryOpening[E]{field: f, values: values, proof: o.Proof}
	}

	return p, nil
}
