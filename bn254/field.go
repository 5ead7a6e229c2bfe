package bn254

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Field implements fri.Field for the bn254 scalar field.
type Field struct{}

func (Field) Add(a, b fr.Element) fr.Element {
	var c fr.Element
	c.Add(&a, &b)
	return c
}

func (Field) Sub(a, b fr.Element) fr.Element {
	var c fr.Element
	c.Sub(&a, &b)
	return c
}

func (Field) Mul(a, b fr.Element) fr.Element {
	var c fr.Element
	c.Mul(&a, &b)
	return c
}

func (Field) Neg(a fr.Element) fr.Element {
	var c fr.Element
	c.Neg(&a)
	return c
}

func (Field) Double(a fr.Element) fr.Element {
	var c fr.Element
	c.Double(&a)
	return c
}

func (Field) Inverse(a fr.Element) (fr.Element, bool) {
	if a.IsZero() {
		return fr.Element{}, false
	}
	var c fr.Element
	c.Inverse(&a)
	return c, true
}

func (Field) Zero() fr.Element {
	return fr.Element{}
}

func (Field) One() fr.Element {
	var c fr.Element
	c.SetOne()
	return c
}

func (Field) IsZero(a fr.Element) bool {
	return a.IsZero()
}

func (Field) Equal(a, b fr.Element) bool {
	return a.Equal(&b)
}

func (Field) Bytes(a fr.Element) []byte {
	b := a.Bytes()
	return b[:]
}

func (Field) SetBytes(b []byte) (fr.Element, error) {
	var c fr.Element
	if len(b) != fr.Bytes {
		return c, fmt.Errorf("bn254: expected %d bytes, got %d", fr.Bytes, len(b))
	}
	if err := c.SetBytesCanonical(b); err != nil {
		return fr.Element{}, err
	}
	return c, nil
}

func (Field) Size() int {
	return fr.Bytes
}
