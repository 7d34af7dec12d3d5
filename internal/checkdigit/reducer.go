package checkdigit

// Reducer turns a weighted sum into the raw, unadjusted check digit.
type Reducer interface {
	Reduce(sum int) int
}

// Mod10 yields the amount needed to reach the next multiple of ten.
type Mod10 struct{}

// Reduce returns the modulo-10 complement of sum.
func (Mod10) Reduce(sum int) int { return (10 - sum%10) % 10 }

// Mod11 yields (sum × 10) mod 11, which ranges 0-10.
type Mod11 struct{}

// Reduce returns sum × 10 mod 11.
func (Mod11) Reduce(sum int) int { return sum * 10 % 11 }
