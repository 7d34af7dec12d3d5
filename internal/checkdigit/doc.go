// Package checkdigit computes and validates weighted check digits.
//
// An Engine combines four stateless policies: a Weighting that assigns a
// multiplier to each digit position (counted from the right), a Folding that
// turns each digit×weight product into a parcel, a Reducer that maps the sum
// of parcels to a raw digit, and a Variant that remaps out-of-range modulo-11
// results. Schemes with more than one check digit run the pipeline again over
// the base value extended with the digits derived so far.
package checkdigit
