package checkdigit

// Weighting maps a digit position (0 = rightmost) to its multiplier.
// Implementations are stateless and safe for concurrent use.
type Weighting interface {
	Weight(pos int) int
}

// Alternating weighs even positions with 2 and odd positions with 1.
type Alternating struct{}

// Weight returns 2 for even positions and 1 for odd ones.
func (Alternating) Weight(pos int) int {
	if pos%2 == 0 {
		return 2
	}
	return 1
}

// Cyclic walks Min..Max from the right and starts over at Min.
type Cyclic struct {
	Min, Max int
}

// Weight returns the cycle value at pos.
func (c Cyclic) Weight(pos int) int {
	span := c.Max - c.Min + 1
	if span < 1 {
		return c.Min
	}
	return pos%span + c.Min
}

// Linear grows by one per position starting at Start and never wraps.
type Linear struct {
	Start int
}

// Weight returns Start plus pos.
func (l Linear) Weight(pos int) int { return pos + l.Start }

// Table lists weights right to left. Values longer than the table reuse it
// from the beginning.
type Table []int

// Weight returns the table entry at pos, wrapping past the end.
func (t Table) Weight(pos int) int {
	if len(t) == 0 {
		return 1
	}
	return t[pos%len(t)]
}

// Weight rows of the built-in families.
var (
	Mod10Weights    Weighting = Alternating{}
	Mod11Weights    Weighting = Cyclic{Min: 2, Max: 9}
	RegistryWeights Weighting = Linear{Start: 2}
)
