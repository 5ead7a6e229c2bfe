package fri

// Field is the capability set the protocol needs from a prime scalar field.
// It is implemented once per field (see the bn254 package) and passed to the
// prover and verifier, which hold no other knowledge of the element type E.
//
// Elements are immutable values; every operation returns a fresh element.
type Field[E any] interface {
	Add(a, b E) E
	Sub(a, b E) E
	Mul(a, b E) E
	Neg(a E) E
	Double(a E) E
	// Inverse returns the multiplicative inverse of a, or false if a == 0.
	Inverse(a E) (E, bool)
	Zero() E
	One() E
	IsZero(a E) bool
	Equal(a, b E) bool
	// Bytes returns the big-endian serialization of a. The length of the
	// byte slice is Size() for every element.
	Bytes(a E) []byte
	// SetBytes is the inverse of Bytes.
	SetBytes(b []byte) (E, error)
	// Size is the serialized width of an element in bytes.
	Size() int
}
