package checkdigit

import "strings"

// Variant selects how a modulo-11 raw digit is remapped into the final digit.
type Variant int

const (
	// Normal replaces a raw 10 with 0.
	Normal Variant = iota
	// Barcode replaces raw 0 and raw 10 with 1, as used on bank payment slips.
	Barcode
	// Unadjusted keeps the raw value. A raw 10 then matches no single digit,
	// which is how registries that never issue such numbers behave.
	Unadjusted
)

// Adjust remaps raw according to the variant.
func (v Variant) Adjust(raw int) int {
	switch v {
	case Normal:
		if raw > 9 {
			return 0
		}
	case Barcode:
		if raw == 0 || raw == 10 {
			return 1
		}
	}
	return raw
}

func (v Variant) String() string {
	switch v {
	case Normal:
		return "normal"
	case Barcode:
		return "barcode"
	case Unadjusted:
		return "unadjusted"
	default:
		return "unknown"
	}
}

// ParseVariant accepts the names returned by String. Empty means Normal.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return Normal, nil
	case "barcode":
		return Barcode, nil
	case "unadjusted", "raw":
		return Unadjusted, nil
	}
	return 0, newError(ErrInvalidConfiguration, s, "unknown variant")
}
