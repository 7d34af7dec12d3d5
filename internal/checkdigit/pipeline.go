package checkdigit

import "strings"

// Pipeline is the set of stateless policies that turn a base value into a
// raw check digit.
type Pipeline struct {
	Weighting Weighting
	Folding   Folding
	Reducer   Reducer
	// Adjustable reports whether the reducer can leave the 0-9 range, in which
	// case the configured Variant is applied to its output.
	Adjustable bool
}

// Parcel is one position's contribution to the weighted sum.
type Parcel struct {
	Pos     int `json:"pos"`
	Digit   int `json:"digit"`
	Weight  int `json:"weight"`
	Product int `json:"product"`
	Value   int `json:"parcel"`
}

func (p Pipeline) parcel(b BaseValue, pos int) (digit, weight, product, value int) {
	digit = b.digit(pos)
	weight = p.Weighting.Weight(pos)
	product = digit * weight
	return digit, weight, product, p.Folding.Parcel(product)
}

// Sum returns the weighted sum of b.
func (p Pipeline) Sum(b BaseValue) int {
	sum := 0
	for pos := 0; pos < b.Len(); pos++ {
		_, _, _, v := p.parcel(b, pos)
		sum += v
	}
	return sum
}

// Parcels returns the per-position breakdown of Sum, rightmost digit first.
func (p Pipeline) Parcels(b BaseValue) []Parcel {
	out := make([]Parcel, 0, b.Len())
	for pos := 0; pos < b.Len(); pos++ {
		d, w, prod, v := p.parcel(b, pos)
		out = append(out, Parcel{Pos: pos, Digit: d, Weight: w, Product: prod, Value: v})
	}
	return out
}

func (p Pipeline) complete() bool {
	return p.Weighting != nil && p.Folding != nil && p.Reducer != nil
}

// Family names one of the built-in pipelines.
type Family int

const (
	// Custom means Config.Pipeline supplies the policies.
	Custom Family = iota
	Modulo10
	Modulo11
	// Modulo11Registry uses weights that grow from 2 without cycling.
	Modulo11Registry
)

// Pipeline returns the policies of the family.
func (f Family) Pipeline() (Pipeline, error) {
	switch f {
	case Modulo10:
		return Pipeline{Weighting: Mod10Weights, Folding: DigitSum{}, Reducer: Mod10{}}, nil
	case Modulo11:
		return Pipeline{Weighting: Mod11Weights, Folding: Identity{}, Reducer: Mod11{}, Adjustable: true}, nil
	case Modulo11Registry:
		return Pipeline{Weighting: RegistryWeights, Folding: Identity{}, Reducer: Mod11{}, Adjustable: true}, nil
	}
	return Pipeline{}, newError(ErrInvalidConfiguration, f.String(), "family has no built-in pipeline")
}

func (f Family) String() string {
	switch f {
	case Custom:
		return "custom"
	case Modulo10:
		return "mod10"
	case Modulo11:
		return "mod11"
	case Modulo11Registry:
		return "mod11-registry"
	default:
		return "unknown"
	}
}

// ParseFamily accepts the names returned by String.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mod10", "modulo10", "modulo-10":
		return Modulo10, nil
	case "mod11", "modulo11", "modulo-11":
		return Modulo11, nil
	case "mod11-registry", "modulo11-registry", "registry":
		return Modulo11Registry, nil
	}
	return 0, newError(ErrInvalidConfiguration, s, "unknown family")
}
