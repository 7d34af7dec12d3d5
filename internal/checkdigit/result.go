package checkdigit

import (
	"math/big"
	"strconv"
)

// Result is a read-only copy of an Engine's derived values.
type Result struct {
	Base        string  `json:"base"`
	CheckDigit  int     `json:"check_digit"`
	CheckDigits int     `json:"check_digits"`
	WeightedSum int     `json:"weighted_sum"`
	Variant     Variant `json:"-"`
	Passes      []Pass  `json:"passes"`
}

// Formatted returns the base followed by the zero-padded check digits, or
// ErrNotIssuable when the digits do not fit.
func (r Result) Formatted() (string, error) {
	return formatDigits(r.Base, r.CheckDigit, r.CheckDigits)
}

// Digits returns only the zero-padded check digits.
func (r Result) Digits() (string, error) {
	if !r.Issuable() {
		return "", notIssuable(r.Base, r.CheckDigit, r.CheckDigits)
	}
	return formatDigits("", r.CheckDigit, r.CheckDigits)
}

// NumericValue mirrors Engine.NumericValue.
func (r Result) NumericValue(includeCheckDigit bool) (*big.Int, error) {
	b, err := ParseBaseValue(r.Base)
	if err != nil {
		return nil, err
	}
	return numericValue(b, r.CheckDigit, r.CheckDigits, includeCheckDigit)
}

// Issuable reports whether the check digits fit their width. An unadjusted
// modulo-11 raw 10 does not, and no identifier with that base exists.
func (r Result) Issuable() bool {
	return fits(r.CheckDigit, r.CheckDigits)
}

// Compute runs a fresh engine configured with cfg over raw.
func Compute(cfg Config, raw string) (Result, error) {
	e, err := NewEngine(cfg)
	if err != nil {
		return Result{}, err
	}
	if err := e.SetBaseValue(raw); err != nil {
		return Result{}, err
	}
	return e.Snapshot()
}

// Validate splits full into base value and trailing check digits and reports
// whether the digits match.
func Validate(cfg Config, full string) (bool, error) {
	if _, err := ParseBaseValue(full); err != nil {
		return false, err
	}
	n := cfg.CheckDigits
	if n < 1 {
		return false, newError(ErrInvalidConfiguration, strconv.Itoa(n), "check digit count must be at least 1")
	}
	if len(full) <= n {
		return false, newError(ErrInvalidFormat, full, "need more than %d digits", n)
	}
	supplied, err := strconv.Atoi(full[len(full)-n:])
	if err != nil {
		return false, newError(ErrInvalidFormat, full, "unreadable check digits")
	}
	r, err := Compute(cfg, full[:len(full)-n])
	if err != nil {
		return false, err
	}
	return r.Issuable() && r.CheckDigit == supplied, nil
}
