package checkdigit

import (
	"fmt"
	"math/big"
	"strconv"
)

// Engine computes and validates the check digits of one base value.
//
// An Engine starts without a base value; every derived read fails with
// ErrNotInitialized until SetBaseValue succeeds. Derived values are computed
// once per assignment or configuration change and served from memory after
// that. An Engine is not safe for concurrent mutation; use Snapshot to hand
// results to other goroutines.
type Engine struct {
	settings settings
	base     BaseValue
	passes   []Pass
	digit    int
	ready    bool

	computations int // number of times derived values were recomputed
}

// NewEngine returns an Engine configured with cfg and no base value.
func NewEngine(cfg Config) (*Engine, error) {
	s, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	return &Engine{settings: s}, nil
}

// Configure replaces the configuration. When a base value is already
// assigned the derived values are recomputed for it; on failure the engine
// keeps its previous configuration and values.
func (e *Engine) Configure(cfg Config) error {
	s, err := cfg.resolve()
	if err != nil {
		return err
	}
	if !e.ready {
		e.settings = s
		return nil
	}
	return e.apply(s, e.base)
}

// SetVariant switches the variant and recomputes the check digit in place.
func (e *Engine) SetVariant(v Variant) error {
	s := e.settings
	s.variant = v
	if err := s.checkVariant(); err != nil {
		return err
	}
	if !e.ready {
		e.settings = s
		return nil
	}
	return e.apply(s, e.base)
}

// Config returns the active configuration.
func (e *Engine) Config() Config { return e.settings.config() }

// Variant returns the active variant.
func (e *Engine) Variant() Variant { return e.settings.variant }

// CheckDigits returns the configured number of check digits.
func (e *Engine) CheckDigits() int { return e.settings.checkDigits }

// Ready reports whether a base value has been assigned.
func (e *Engine) Ready() bool { return e.ready }

// SetBaseValue validates raw and recomputes the weighted sum and check
// digits. On error the previous state is left untouched.
func (e *Engine) SetBaseValue(raw string) error {
	b, err := ParseBaseValue(raw)
	if err != nil {
		return err
	}
	return e.assign(b)
}

// SetBaseInt assigns the decimal representation of v.
func (e *Engine) SetBaseInt(v uint64) error {
	return e.SetBaseValue(strconv.FormatUint(v, 10))
}

// SetBaseBig assigns the decimal representation of v, which must not be negative.
func (e *Engine) SetBaseBig(v *big.Int) error {
	if v == nil {
		return newError(ErrInvalidFormat, "", "nil base value")
	}
	if v.Sign() < 0 {
		return newError(ErrInvalidFormat, v.String(), "negative base value")
	}
	return e.SetBaseValue(v.String())
}

func (e *Engine) assign(b BaseValue) error {
	return e.apply(e.settings, b)
}

// apply computes everything for (s, b) and commits only when all of it succeeded.
func (e *Engine) apply(s settings, b BaseValue) error {
	if !s.pipeline.complete() {
		return newError(ErrInvalidConfiguration, "", "engine is not configured")
	}
	if s.maxLength > 0 && b.Len() > s.maxLength {
		return newError(ErrLengthExceeded, b.String(), "at most %d digits allowed, got %d", s.maxLength, b.Len())
	}
	passes, digit, err := derive(s, b)
	if err != nil {
		return err
	}
	e.settings = s
	e.base = b
	e.passes = passes
	e.digit = digit
	e.ready = true
	e.computations++
	return nil
}

func (e *Engine) notReady() error {
	return newError(ErrNotInitialized, "", "assign a base value first")
}

// CheckDigit returns the check digit, or for multi-digit schemes the digits
// combined with the first digit in the most significant place.
func (e *Engine) CheckDigit() (int, error) {
	if !e.ready {
		return 0, e.notReady()
	}
	return e.digit, nil
}

// IsValid reports whether candidate equals the computed check digit. No
// candidate is valid for a base that is never issued.
func (e *Engine) IsValid(candidate int) (bool, error) {
	if !e.ready {
		return false, e.notReady()
	}
	return fits(e.digit, e.settings.checkDigits) && candidate == e.digit, nil
}

// WeightedSum returns the weighted sum of the base value's first pass.
func (e *Engine) WeightedSum() (int, error) {
	if !e.ready {
		return 0, e.notReady()
	}
	return e.passes[0].WeightedSum, nil
}

// DigitAt returns the base digit at pos, 0 being the rightmost.
func (e *Engine) DigitAt(pos int) (int, error) {
	if !e.ready {
		return 0, e.notReady()
	}
	return e.base.DigitAt(pos)
}

// BaseValue returns the assigned base value.
func (e *Engine) BaseValue() (BaseValue, error) {
	if !e.ready {
		return BaseValue{}, e.notReady()
	}
	return e.base, nil
}

// Passes returns a copy of the per-pass details.
func (e *Engine) Passes() ([]Pass, error) {
	if !e.ready {
		return nil, e.notReady()
	}
	return append([]Pass(nil), e.passes...), nil
}

// Formatted returns the base digits, followed by the check digits padded
// with zeros to the configured width when includeCheckDigit is set. A check
// digit wider than that, an unadjusted raw 10, yields ErrNotIssuable.
func (e *Engine) Formatted(includeCheckDigit bool) (string, error) {
	if !e.ready {
		return "", e.notReady()
	}
	if !includeCheckDigit {
		return e.base.String(), nil
	}
	return formatDigits(e.base.String(), e.digit, e.settings.checkDigits)
}

// NumericValue is Formatted as an integer: the base shifted left by the
// check digit count plus the check digits.
func (e *Engine) NumericValue(includeCheckDigit bool) (*big.Int, error) {
	if !e.ready {
		return nil, e.notReady()
	}
	return numericValue(e.base, e.digit, e.settings.checkDigits, includeCheckDigit)
}

// Snapshot returns an immutable copy of the derived values.
func (e *Engine) Snapshot() (Result, error) {
	if !e.ready {
		return Result{}, e.notReady()
	}
	return Result{
		Base:        e.base.String(),
		CheckDigit:  e.digit,
		CheckDigits: e.settings.checkDigits,
		WeightedSum: e.passes[0].WeightedSum,
		Variant:     e.settings.variant,
		Passes:      append([]Pass(nil), e.passes...),
	}, nil
}

// fits reports whether digit can be written in width decimal digits.
func fits(digit, width int) bool {
	limit := 1
	for i := 0; i < width; i++ {
		limit *= 10
	}
	return digit >= 0 && digit < limit
}

func notIssuable(base string, digit, width int) *Error {
	return newError(ErrNotIssuable, base, "check digit %d does not fit in %d digit(s)", digit, width)
}

func formatDigits(base string, digit, width int) (string, error) {
	if !fits(digit, width) {
		return "", notIssuable(base, digit, width)
	}
	return fmt.Sprintf("%s%0*d", base, width, digit), nil
}

func numericValue(b BaseValue, digit, width int, include bool) (*big.Int, error) {
	v := b.Int()
	if !include {
		return v, nil
	}
	if !fits(digit, width) {
		return nil, notIssuable(b.String(), digit, width)
	}
	shift := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(width)), nil)
	v.Mul(v, shift)
	return v.Add(v, big.NewInt(int64(digit))), nil
}
