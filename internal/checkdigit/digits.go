package checkdigit

import (
	"math/big"
	"strconv"
)

// BaseValue is a non-empty string of ASCII decimal digits. Positions are
// counted from the right: position 0 is the least significant digit.
type BaseValue struct {
	digits string
}

// ParseBaseValue validates raw and returns it as a BaseValue.
// Only '0'-'9' are accepted; signs, whitespace and separators are rejected.
func ParseBaseValue(raw string) (BaseValue, error) {
	if raw == "" {
		return BaseValue{}, newError(ErrInvalidFormat, raw, "empty base value")
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return BaseValue{}, newError(ErrInvalidFormat, raw, "non-digit character %q at offset %d", raw[i], i)
		}
	}
	return BaseValue{digits: raw}, nil
}

// Len returns the number of digits.
func (b BaseValue) Len() int { return len(b.digits) }

// String returns the digits exactly as assigned, leading zeros included.
func (b BaseValue) String() string { return b.digits }

// DigitAt returns the digit at pos, counted from the right.
func (b BaseValue) DigitAt(pos int) (int, error) {
	if pos < 0 || pos >= len(b.digits) {
		return 0, newError(ErrOutOfRange, strconv.Itoa(pos), "valid positions are 0-%d", len(b.digits)-1)
	}
	return b.digit(pos), nil
}

// digit is DigitAt without bounds checking.
func (b BaseValue) digit(pos int) int {
	return int(b.digits[len(b.digits)-1-pos] - '0')
}

// Append returns a new BaseValue with d as the new least significant digit.
func (b BaseValue) Append(d int) BaseValue {
	return BaseValue{digits: b.digits + string(rune('0'+d))}
}

// Int returns the numeric value of the digits.
func (b BaseValue) Int() *big.Int {
	n, ok := new(big.Int).SetString(b.digits, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}
