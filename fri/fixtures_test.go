package fri

import (
	"errors"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"

	"github.com/consensys/gnark-fri/merkletree"
)

// The protocol tests run over F_257: its multiplicative group has order
// 256 = 2^8, so every domain size up to 256 is available, and failures are
// easy to inspect by hand. 3 generates the full group.

const testModulus = 257

type smallField struct{}

func (smallField) Add(a, b uint16) uint16 {
	return (a + b) % testModulus
}

func (smallField) Sub(a, b uint16) uint16 {
	return (a + testModulus - b) % testModulus
}

func (smallField) Mul(a, b uint16) uint16 {
	return uint16(uint32(a) * uint32(b) % testModulus)
}

func (smallField) Neg(a uint16) uint16 {
	return (testModulus - a) % testModulus
}

func (f smallField) Double(a uint16) uint16 {
	return f.Add(a, a)
}

func (f smallField) Inverse(a uint16) (uint16, bool) {
	if a == 0 {
		return 0, false
	}
	return smallPow(a, testModulus-2), true
}

func (smallField) Zero() uint16 { return 0 }
func (smallField) One() uint16  { return 1 }

func (smallField) IsZero(a uint16) bool   { return a == 0 }
func (smallField) Equal(a, b uint16) bool { return a == b }

func (smallField) Bytes(a uint16) []byte {
	return []byte{byte(a >> 8), byte(a)}
}

func (smallField) SetBytes(b []byte) (uint16, error) {
	if len(b) != 2 {
		return 0, fmt.Errorf("expected 2 bytes, got %d", len(b))
	}
	v := uint16(b[0])<<8 | uint16(b[1])
	if v >= testModulus {
		return 0, errors.New("value out of range")
	}
	return v, nil
}

func (smallField) Size() int { return 2 }

func smallPow(a uint16, e int) uint16 {
	var f smallField
	res := uint16(1)
	base := a
	for ; e > 0; e >>= 1 {
		if e&1 == 1 {
			res = f.Mul(res, base)
		}
		base = f.Mul(base, base)
	}
	return res
}

// smallDomain is the order-size subgroup of F_257*, with a naive quadratic
// FFT. Plenty for test sizes.
type smallDomain struct {
	size     int
	elements []uint16
	inverses []uint16
}

func newSmallDomain(size int) *smallDomain {
	omega := smallPow(3, 256/size)
	d := &smallDomain{
		size:     size,
		elements: make([]uint16, size),
		inverses: make([]uint16, size),
	}
	var f smallField
	d.elements[0] = 1
	for i := 1; i < size; i++ {
		d.elements[i] = f.Mul(d.elements[i-1], omega)
	}
	for i := range d.inverses {
		inv, _ := f.Inverse(d.elements[i])
		d.inverses[i] = inv
	}
	return d
}

func (d *smallDomain) Size() int { return d.size }

func (d *smallDomain) ElementInverseAt(i int) uint16 { return d.inverses[i] }

func (d *smallDomain) FFT(coeffs []uint16) []uint16 {
	var f smallField
	evaluations := make([]uint16, d.size)
	for i := 0; i < d.size; i++ {
		acc := uint16(0)
		for j := len(coeffs) - 1; j >= 0; j-- {
			acc = f.Add(f.Mul(acc, d.elements[i]), coeffs[j])
		}
		evaluations[i] = acc
	}
	return evaluations
}

func smallDomains(logDegree, logRate int) []EvaluationDomain[uint16] {
	domains := make([]EvaluationDomain[uint16], logDegree)
	for i := 0; i < logDegree; i++ {
		domains[i] = newSmallDomain(1 << (logDegree + logRate - i))
	}
	return domains
}

func blakeHash() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	return h
}

type testScheme struct{}

func (testScheme) Commit(leaves [][]byte) (VectorCommitment, error) {
	return merkletree.New(blakeHash, leaves)
}

func (testScheme) NewVerifier(root [32]byte, leafCount int) CommitmentVerifier {
	return merkletree.NewVerifier(blakeHash, root, leafCount)
}
