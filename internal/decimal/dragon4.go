package decimal

import "math"

// ShortestDecimal implements the Dragon4/Burger-Dybvig free-format
// algorithm of spec §4.E: given a finite, non-zero float64 d, it returns
// the shortest decimal digit string and decimal exponent expt such that
// 0.d[0]d[1]...d[n-1] * 10^expt rounds to the nearest representable
// double equal to d. neg reports the sign of d; digits never contains a
// sign or decimal point.
//
// All the scaled-fraction arithmetic (r, s, m+, m- and the digit-at-a-
// time divmod loop) runs through Bigint, not math/big directly; Bigint
// itself is a thin math/big wrapper (see its doc comment).
func ShortestDecimal(d float64) (digits string, expt int, neg bool) {
	if d == 0 {
		return "0", 1, math.Signbit(d)
	}
	neg = d < 0
	if neg {
		d = -d
	}

	sf, lowerBoundaryCloser := Decompose(d)
	f := NewBigint().SetU64(sf.F)
	isEven := sf.F&1 == 0

	var r, s, mPlus, mMinus *Bigint

	if sf.E >= 0 {
		be := NewBigint().SetU32(1).ShiftLeft(uint(sf.E))
		if !lowerBoundaryCloser {
			r = f.Clone().Mul(be).MulU32(2)
			s = NewBigint().SetU32(2)
			mPlus = be.Clone()
			mMinus = be.Clone()
		} else {
			r = f.Clone().Mul(be).MulU32(4)
			s = NewBigint().SetU32(4)
			mPlus = be.Clone().MulU32(2)
			mMinus = be.Clone()
		}
	} else {
		if !lowerBoundaryCloser {
			r = f.Clone().MulU32(2)
			s = NewBigint().SetU32(1).ShiftLeft(uint(1 - sf.E))
			mPlus = NewBigint().SetU32(1)
			mMinus = NewBigint().SetU32(1)
		} else {
			r = f.Clone().MulU32(4)
			s = NewBigint().SetU32(1).ShiftLeft(uint(2 - sf.E))
			mPlus = NewBigint().SetU32(2)
			mMinus = NewBigint().SetU32(1)
		}
	}

	power := int(math.Ceil(math.Log10(d) - 1e-10))

	if power >= 0 {
		scale := NewBigint().SetPow10(uint(power))
		s.Mul(scale)
	} else {
		scale := NewBigint().SetPow10(uint(-power))
		r.Mul(scale)
		mPlus.Mul(scale)
		mMinus.Mul(scale)
	}

	// Fixup: ensure r/s (plus boundary) lands in (0.1, 1].
	if r.PlusCompare(mPlus, s) > 0 {
		s.MulU32(10)
		power++
	} else {
		sum := r.Clone().Add(mPlus)
		sum.MulU32(10)
		if sum.Cmp(s) <= 0 {
			r.MulU32(10)
			mPlus.MulU32(10)
			mMinus.MulU32(10)
			power--
		}
	}
	expt = power

	var out []byte
	for i := 0; i < 768; i++ { // 1074 bits of subnormal range bounds the digit count well below this
		r.MulU32(10)
		mPlus.MulU32(10)
		mMinus.MulU32(10)

		digit := r.DivMod(s) // r becomes the remainder

		var low, high bool
		if isEven {
			low = r.Cmp(mMinus) <= 0
		} else {
			low = r.Cmp(mMinus) < 0
		}
		sum := r.Clone().Add(mPlus)
		if isEven {
			high = sum.Cmp(s) >= 0
		} else {
			high = sum.Cmp(s) > 0
		}

		switch {
		case !low && !high:
			out = append(out, byte('0'+digit))
			continue
		case low && !high:
			out = append(out, byte('0'+digit))
		case high && !low:
			out = append(out, byte('0'+digit+1))
		default: // low && high
			doubled := r.Clone().MulU32(2)
			if doubled.Cmp(s) >= 0 {
				out = append(out, byte('0'+digit+1))
			} else {
				out = append(out, byte('0'+digit))
			}
		}
		goto done
	}
done:
	out, expt = propagateCarry(out, expt)
	return string(out), expt, neg
}

// propagateCarry resolves any digit that overflowed to '9'+1 during
// rounding, carrying into preceding digits (and, if the carry reaches
// the front, prepending a '1' and bumping expt).
func propagateCarry(digits []byte, expt int) ([]byte, int) {
	for i := len(digits) - 1; i >= 0; i-- {
		if digits[i] <= '9' {
			return trimTrailingZeros(digits), expt
		}
		digits[i] = '0'
		if i == 0 {
			out := append([]byte{'1'}, digits...)
			return trimTrailingZeros(out), expt + 1
		}
		digits[i-1]++
	}
	return trimTrailingZeros(digits), expt
}

func trimTrailingZeros(digits []byte) []byte {
	end := len(digits)
	for end > 1 && digits[end-1] == '0' {
		end--
	}
	return digits[:end]
}
