package decimal

import "math/big"

// Bigint is the named arbitrary-precision integer type of spec §3/§4.E,
// backing ShortestDecimal's Dragon4 arithmetic (r, s, m+, m- and the
// digit-at-a-time divmod loop all operate through this type, not
// math/big directly — see dragon4.go). It is a thin wrapper over
// math/big.Int rather than a hand-rolled fixed-capacity limb vector,
// so its precision is bounded only by memory.
type Bigint struct {
	v big.Int
}

// NewBigint returns a zero-valued Bigint.
func NewBigint() *Bigint { return &Bigint{} }

// Clone returns an independent copy of b.
func (b *Bigint) Clone() *Bigint {
	return &Bigint{v: *new(big.Int).Set(&b.v)}
}

// SetU32 sets the value from a uint32.
func (b *Bigint) SetU32(x uint32) *Bigint { b.v.SetUint64(uint64(x)); return b }

// SetU64 sets the value from a uint64.
func (b *Bigint) SetU64(x uint64) *Bigint { b.v.SetUint64(x); return b }

// SetDecimalString parses a base-10 string.
func (b *Bigint) SetDecimalString(s string) (*Bigint, bool) {
	_, ok := b.v.SetString(s, 10)
	return b, ok
}

// SetHexString parses a base-16 string.
func (b *Bigint) SetHexString(s string) (*Bigint, bool) {
	_, ok := b.v.SetString(s, 16)
	return b, ok
}

// SetPow10 sets the value to 10^e.
func (b *Bigint) SetPow10(e uint) *Bigint {
	b.v.Exp(big.NewInt(10), new(big.Int).SetUint64(uint64(e)), nil)
	return b
}

// Clamp is a no-op: math/big.Int never carries trailing-zero limbs.
func (b *Bigint) Clamp() *Bigint { return b }

// ShiftLeft shifts the value left by n bits.
func (b *Bigint) ShiftLeft(n uint) *Bigint {
	b.v.Lsh(&b.v, n)
	return b
}

// Add adds other into b.
func (b *Bigint) Add(other *Bigint) *Bigint {
	b.v.Add(&b.v, &other.v)
	return b
}

// AddU32 adds a uint32 into b.
func (b *Bigint) AddU32(x uint32) *Bigint {
	b.v.Add(&b.v, big.NewInt(int64(x)))
	return b
}

// Sub subtracts other from b.
func (b *Bigint) Sub(other *Bigint) *Bigint {
	b.v.Sub(&b.v, &other.v)
	return b
}

// SubShifted computes b - (other << k).
func (b *Bigint) SubShifted(other *Bigint, k uint) *Bigint {
	shifted := new(big.Int).Lsh(&other.v, k)
	b.v.Sub(&b.v, shifted)
	return b
}

// Mul multiplies b by other.
func (b *Bigint) Mul(other *Bigint) *Bigint {
	b.v.Mul(&b.v, &other.v)
	return b
}

// Cmp compares b to other: -1, 0, +1.
func (b *Bigint) Cmp(other *Bigint) int { return b.v.Cmp(&other.v) }

// PlusCompare compares (b + other) to target without mutating b.
func (b *Bigint) PlusCompare(other, target *Bigint) int {
	sum := new(big.Int).Add(&b.v, &other.v)
	return sum.Cmp(&target.v)
}

// MulU32 multiplies b by a uint32.
func (b *Bigint) MulU32(x uint32) *Bigint {
	b.v.Mul(&b.v, big.NewInt(int64(x)))
	return b
}

// MulU64 multiplies b by a uint64.
func (b *Bigint) MulU64(x uint64) *Bigint {
	b.v.Mul(&b.v, new(big.Int).SetUint64(x))
	return b
}

// MulPow10 multiplies b by 10^e.
func (b *Bigint) MulPow10(e uint) *Bigint {
	scale := new(big.Int).Exp(big.NewInt(10), new(big.Int).SetUint64(uint64(e)), nil)
	b.v.Mul(&b.v, scale)
	return b
}

// DivMod divides b by other, returning a uint32 quotient (the spec's
// digit-at-a-time divmod never needs a wider quotient) and leaving the
// remainder in b.
func (b *Bigint) DivMod(other *Bigint) uint32 {
	q := new(big.Int)
	r := new(big.Int)
	q.QuoRem(&b.v, &other.v, r)
	b.v.Set(r)
	return uint32(q.Uint64())
}

// String renders the value in base 10.
func (b *Bigint) String() string { return b.v.String() }

// Big exposes the underlying math/big.Int for callers that need the full
// stdlib surface (tests comparing against the reference implementation).
func (b *Bigint) Big() *big.Int { return &b.v }
