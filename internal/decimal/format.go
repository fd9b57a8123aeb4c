package decimal

import (
	"strconv"
	"strings"
)

// FormatXSDDouble renders d as a canonical xsd:double lexical form: the
// shortest round-tripping digit sequence, always with an 'E' exponent
// (e.g. "1.0E10", "1.5E-3"), per spec §4.E.
func FormatXSDDouble(d float64) string {
	digits, expt, neg := ShortestDecimal(d)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte(digits[0])
	b.WriteByte('.')
	if len(digits) > 1 {
		b.WriteString(digits[1:])
	} else {
		b.WriteByte('0')
	}
	b.WriteByte('E')
	// expt is the power such that 0.d0d1...*10^expt == value; the first
	// digit is shifted out front, so the exponent written is expt-1.
	b.WriteString(strconv.Itoa(expt - 1))
	return b.String()
}

// FormatXSDDecimal renders d as a canonical xsd:decimal lexical form: no
// exponent, a mandatory decimal point, at least one digit on each side.
func FormatXSDDecimal(d float64) string {
	digits, expt, neg := ShortestDecimal(d)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	switch {
	case expt <= 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -expt))
		b.WriteString(digits)
	case expt >= len(digits):
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", expt-len(digits)))
		b.WriteString(".0")
	default:
		b.WriteString(digits[:expt])
		b.WriteByte('.')
		b.WriteString(digits[expt:])
	}
	return b.String()
}

// FormatXSDInteger renders i via ordinary base-10 conversion.
func FormatXSDInteger(i int64) string {
	return strconv.FormatInt(i, 10)
}

// CanonicalizeDecimalLexical re-renders an already-valid xsd:decimal
// lexical form (e.g. "1.10") into its canonical form ("1.1"), per the
// §8 example, without going through a float64 round trip (which could
// lose precision for long decimals): strips trailing fractional zeros,
// keeping at least one fractional digit, and a leading "-" sign if
// present and non-zero.
func CanonicalizeDecimalLexical(lexical string) string {
	neg := strings.HasPrefix(lexical, "-")
	s := strings.TrimPrefix(strings.TrimPrefix(lexical, "-"), "+")
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	if hasDot {
		fracPart = strings.TrimRight(fracPart, "0")
	}
	if fracPart == "" {
		fracPart = "0"
	}
	if neg && intPart != "0" || (neg && fracPart != "0") {
		return "-" + intPart + "." + fracPart
	}
	return intPart + "." + fracPart
}
