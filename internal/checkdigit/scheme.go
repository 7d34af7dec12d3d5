package checkdigit

import (
	"sort"
	"strings"
)

// Scheme is a named configuration for a real-world identifier.
type Scheme struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// Length is the canonical base length, 0 when any length is accepted.
	Length int `json:"base_length,omitempty"`
	// ZeroPad allows shorter inputs that lost their leading zeros, for
	// identifiers commonly stored as integers.
	ZeroPad bool   `json:"zero_pad,omitempty"`
	Config  Config `json:"-"`
}

// NewEngine returns an Engine configured for the scheme.
func (s Scheme) NewEngine() (*Engine, error) {
	return NewEngine(s.Config)
}

// Compute runs the scheme over base.
func (s Scheme) Compute(base string) (Result, error) {
	return Compute(s.Config, base)
}

// nordicMod11 covers organisation numbers whose weights cycle 2..7.
var nordicMod11 = Pipeline{
	Weighting:  Cyclic{Min: 2, Max: 7},
	Folding:    Identity{},
	Reducer:    Mod11{},
	Adjustable: true,
}

// finnishMod11 lists the Y-tunnus weights 7,9,10,5,8,4,2 right to left.
var finnishMod11 = Pipeline{
	Weighting:  Table{2, 4, 8, 5, 10, 9, 7},
	Folding:    Identity{},
	Reducer:    Mod11{},
	Adjustable: true,
}

var schemes = map[string]Scheme{
	"mod10": {
		Name:        "mod10",
		Title:       "Modulo 10",
		Description: "Weights 2,1 alternating from the right, two-digit products folded; digit = (10 - sum mod 10) mod 10.",
		Config:      Config{Family: Modulo10, CheckDigits: 1},
	},
	"mod11": {
		Name:        "mod11",
		Title:       "Modulo 11",
		Description: "Weights cycle 2..9 from the right; digit = sum*10 mod 11 with 10 mapped to 0.",
		Config:      Config{Family: Modulo11, Variant: Normal, CheckDigits: 1},
	},
	"mod11-barcode": {
		Name:        "mod11-barcode",
		Title:       "Modulo 11 (barcode)",
		Description: "Modulo 11 with 0 and 10 mapped to 1, as on bank payment slip barcodes.",
		Config:      Config{Family: Modulo11, Variant: Barcode, CheckDigits: 1},
	},
	"cpf": {
		Name:        "cpf",
		Title:       "Brazilian CPF",
		Description: "Personal taxpayer number: 9 base digits, two modulo 11 digits with weights growing from 2, the second computed over base plus first digit.",
		Length:      9,
		ZeroPad:     true,
		Config:      Config{Family: Modulo11Registry, Variant: Normal, CheckDigits: 2, MaxLength: 9},
	},
	"cnpj": {
		Name:        "cnpj",
		Title:       "Brazilian CNPJ",
		Description: "Company registry number: 12 base digits, two modulo 11 digits with weights cycling 2..9, the second computed over base plus first digit.",
		Length:      12,
		ZeroPad:     true,
		Config:      Config{Family: Modulo11, Variant: Normal, CheckDigits: 2, MaxLength: 12},
	},
	"no-orgnr": {
		Name:        "no-orgnr",
		Title:       "Norwegian organisation number",
		Description: "8 base digits, modulo 11 with weights 3,2,7,6,5,4,3,2; bases whose digit would be 10 are never issued.",
		Length:      8,
		Config:      Config{Variant: Unadjusted, CheckDigits: 1, MaxLength: 8, Pipeline: &nordicMod11},
	},
	"dk-cvr": {
		Name:        "dk-cvr",
		Title:       "Danish CVR number",
		Description: "7 base digits, modulo 11 with weights 2,7,6,5,4,3,2; bases whose digit would be 10 are never issued.",
		Length:      7,
		Config:      Config{Variant: Unadjusted, CheckDigits: 1, MaxLength: 7, Pipeline: &nordicMod11},
	},
	"fi-ytunnus": {
		Name:        "fi-ytunnus",
		Title:       "Finnish business ID (Y-tunnus)",
		Description: "7 base digits, modulo 11 with weights 7,9,10,5,8,4,2; bases whose digit would be 10 are never issued.",
		Length:      7,
		ZeroPad:     true,
		Config:      Config{Variant: Unadjusted, CheckDigits: 1, MaxLength: 7, Pipeline: &finnishMod11},
	},
	"se-orgnr": {
		Name:        "se-orgnr",
		Title:       "Swedish organisation number",
		Description: "9 base digits, modulo 10 (Luhn).",
		Length:      9,
		Config:      Config{Family: Modulo10, CheckDigits: 1, MaxLength: 9},
	},
}

// LookupScheme returns the scheme registered under name.
func LookupScheme(name string) (Scheme, error) {
	s, ok := schemes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Scheme{}, newError(ErrUnknownScheme, name, "see Schemes for the supported names")
	}
	return s, nil
}

// Schemes returns every registered scheme sorted by name.
func Schemes() []Scheme {
	out := make([]Scheme, 0, len(schemes))
	for _, s := range schemes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
