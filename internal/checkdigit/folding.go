package checkdigit

// Folding turns a digit×weight product into the parcel added to the sum.
type Folding interface {
	Parcel(product int) int
}

// Identity adds the product unchanged.
type Identity struct{}

// Parcel returns product.
func (Identity) Parcel(product int) int { return product }

// DigitSum collapses two-digit products into the sum of their digits.
// Products never exceed 18 under modulo-10 weights, so subtracting 9 suffices.
type DigitSum struct{}

// Parcel returns the digit sum of product.
func (DigitSum) Parcel(product int) int {
	if product > 9 {
		return product - 9
	}
	return product
}
