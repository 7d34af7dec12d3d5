// Package identifier turns user-typed identifiers into check digit engine
// inputs and back: it strips separators, splits off the check digits,
// validates them and renders the display form of each scheme.
package identifier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/olgasafonova/checkdigit-mcp-server/internal/checkdigit"
	apperrors "github.com/olgasafonova/checkdigit-mcp-server/internal/errors"
)

// Reasons reported by Validate when an identifier is rejected.
const (
	ReasonInvalidFormat  = "invalid_format"
	ReasonLengthExceeded = "length_exceeded"
	ReasonMismatch       = "check_digit_mismatch"
	ReasonNotIssuable    = "not_issuable"
)

// Result is the outcome of validating one identifier.
type Result struct {
	Input           string `json:"input"`
	Scheme          string `json:"scheme"`
	Canonical       string `json:"canonical,omitempty"`
	Formatted       string `json:"formatted,omitempty"`
	Valid           bool   `json:"valid"`
	CheckDigitValid bool   `json:"check_digit_valid"`
	Expected        string `json:"expected_check_digits,omitempty"`
	Supplied        string `json:"supplied_check_digits,omitempty"`
	Reason          string `json:"reason,omitempty"`
	Message         string `json:"message"`
}

var separators = strings.NewReplacer(" ", "", "-", "", ".", "", "/", "", "\t", "")

// Clean removes spaces, hyphens, dots and slashes from an identifier.
func Clean(raw string) string {
	return separators.Replace(strings.TrimSpace(raw))
}

// PadBase left-pads base with zeros to the scheme length when the scheme
// allows identifiers that lost their leading zeros.
func PadBase(s checkdigit.Scheme, base string) string {
	if s.ZeroPad && s.Length > 0 && len(base) < s.Length {
		return strings.Repeat("0", s.Length-len(base)) + base
	}
	return base
}

// Split separates a cleaned identifier into base value and supplied check
// digits, restoring leading zeros where the scheme allows it.
func Split(s checkdigit.Scheme, cleaned string) (base, digits string, err error) {
	n := s.Config.CheckDigits
	if len(cleaned) <= n {
		return "", "", &checkdigit.Error{
			Kind:   checkdigit.ErrInvalidFormat,
			Value:  cleaned,
			Detail: fmt.Sprintf("need more than %d digits", n),
		}
	}
	base = PadBase(s, cleaned[:len(cleaned)-n])
	digits = cleaned[len(cleaned)-n:]
	if s.Length > 0 && len(base) < s.Length {
		return "", "", &checkdigit.Error{
			Kind:   checkdigit.ErrInvalidFormat,
			Value:  cleaned,
			Detail: fmt.Sprintf("%s needs %d base digits, got %d", s.Name, s.Length, len(base)),
		}
	}
	return base, digits, nil
}

// ComputeFunc computes the check digits of base under s. It lets callers
// put a cache in front of the engine.
type ComputeFunc func(s checkdigit.Scheme, base string) (checkdigit.Result, error)

func computeDirect(s checkdigit.Scheme, base string) (checkdigit.Result, error) {
	return s.Compute(base)
}

// Validate checks raw against the scheme. Problems with the input are
// reported in the result rather than returned.
func Validate(s checkdigit.Scheme, raw string) Result {
	return ValidateUsing(s, raw, nil)
}

// ValidateUsing is Validate with the check digits computed by compute,
// or by a fresh engine when compute is nil.
func ValidateUsing(s checkdigit.Scheme, raw string, compute ComputeFunc) Result {
	if compute == nil {
		compute = computeDirect
	}
	result := Result{Input: raw, Scheme: s.Name}

	cleaned := Clean(raw)
	if _, err := checkdigit.ParseBaseValue(cleaned); err != nil {
		return reject(result, err)
	}
	base, supplied, err := Split(s, cleaned)
	if err != nil {
		return reject(result, err)
	}
	result.Supplied = supplied

	computed, err := compute(s, base)
	if err != nil {
		return reject(result, err)
	}

	if !computed.Issuable() {
		result.Reason = ReasonNotIssuable
		result.Message = fmt.Sprintf("No %s is issued for base %s", s.Title, base)
		return result
	}

	expected, err := computed.Digits()
	if err != nil {
		return reject(result, err)
	}
	result.Expected = expected
	result.CheckDigitValid = result.Expected == supplied
	result.Valid = result.CheckDigitValid
	result.Canonical = base + supplied
	result.Formatted = Format(s, result.Canonical)

	if result.Valid {
		result.Message = "Valid " + s.Title
	} else {
		result.Reason = ReasonMismatch
		result.Message = fmt.Sprintf("Invalid check digit: expected %s, got %s", result.Expected, supplied)
	}
	return result
}

func reject(result Result, err error) Result {
	result.Reason = reason(err)
	result.Message = err.Error()
	return result
}

func reason(err error) string {
	if errors.Is(err, checkdigit.ErrLengthExceeded) {
		return ReasonLengthExceeded
	}
	return ReasonInvalidFormat
}

// CheckLength rejects a cleaned base whose length differs from the fixed
// base length of s. raw is the value as the caller supplied it.
func CheckLength(s checkdigit.Scheme, raw, cleaned string) error {
	if s.Length > 0 && len(cleaned) != s.Length {
		return apperrors.NewValidationError("base", raw, fmt.Sprintf("%s needs %d base digits", s.Name, s.Length))
	}
	return nil
}

// Complete appends the check digits to base and returns the canonical
// identifier.
func Complete(s checkdigit.Scheme, base string) (string, error) {
	cleaned := PadBase(s, Clean(base))

	e, err := s.NewEngine()
	if err != nil {
		return "", err
	}
	if err := e.SetBaseValue(cleaned); err != nil {
		return "", apperrors.WrapValidation("base", base, err)
	}
	if err := CheckLength(s, base, cleaned); err != nil {
		return "", err
	}

	r, err := e.Snapshot()
	if err != nil {
		return "", err
	}
	if !r.Issuable() {
		return "", apperrors.NewValidationError("base", base, fmt.Sprintf("no %s is issued for this base", s.Title))
	}
	return e.Formatted(true)
}

// Format renders a canonical identifier the way it is usually printed.
// Identifiers of unexpected length are returned unchanged.
func Format(s checkdigit.Scheme, canonical string) string {
	switch s.Name {
	case "cpf":
		// 529.982.247-25
		if len(canonical) == 11 {
			return canonical[:3] + "." + canonical[3:6] + "." + canonical[6:9] + "-" + canonical[9:]
		}
	case "cnpj":
		// 11.222.333/0001-81
		if len(canonical) == 14 {
			return canonical[:2] + "." + canonical[2:5] + "." + canonical[5:8] + "/" + canonical[8:12] + "-" + canonical[12:]
		}
	case "no-orgnr":
		// 923 609 016
		if len(canonical) == 9 {
			return canonical[:3] + " " + canonical[3:6] + " " + canonical[6:]
		}
	case "dk-cvr":
		// 10 15 08 17
		if len(canonical) == 8 {
			return canonical[:2] + " " + canonical[2:4] + " " + canonical[4:6] + " " + canonical[6:]
		}
	case "fi-ytunnus":
		// 0112038-9
		if len(canonical) == 8 {
			return canonical[:7] + "-" + canonical[7:]
		}
	case "se-orgnr":
		// 556036-0793
		if len(canonical) == 10 {
			return canonical[:6] + "-" + canonical[6:]
		}
	}
	return canonical
}
