package bn254

import (
	"fmt"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
)

// Domain is a multiplicative subgroup of the bn254 scalar field, in natural
// (generator power) order. It implements fri.EvaluationDomain.
type Domain struct {
	inner *fft.Domain

	// elementInv[i] is the inverse of the domain's i-th element
	elementInv []fr.Element
}

// NewDomain builds the subgroup of the given power-of-two size and
// precomputes the element inverses.
func NewDomain(size int) (*Domain, error) {
	if size <= 0 || bits.OnesCount(uint(size)) != 1 {
		return nil, fmt.Errorf("bn254: domain size %d is not a power of two", size)
	}

	inner := fft.NewDomain(uint64(size))
	elementInv := make([]fr.Element, size)
	elementInv[0].SetOne()
	for i := 1; i < size; i++ {
		elementInv[i].Mul(&elementInv[i-1], &inner.GeneratorInv)
	}

	return &Domain{
		inner:      inner,
		elementInv: elementInv,
	}, nil
}

// Size returns the number of elements in the domain.
func (d *Domain) Size() int {
	return int(d.inner.Cardinality)
}

// ElementInverseAt returns the inverse of the domain's i-th element.
func (d *Domain) ElementInverseAt(i int) fr.Element {
	return d.elementInv[i]
}

// FFT evaluates the polynomial given by coeffs on the whole domain, in
// natural order. Coefficients beyond len(coeffs) are zero.
func (d *Domain) FFT(coeffs []fr.Element) []fr.Element {
	evaluations := make([]fr.Element, d.Size())
	copy(evaluations, coeffs)
	d.inner.FFT(evaluations, fft.DIF)
	fft.BitReverse(evaluations)
	return evaluations
}
