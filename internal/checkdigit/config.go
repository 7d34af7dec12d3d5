package checkdigit

import "strconv"

// Config selects the policies an Engine runs with.
type Config struct {
	Family  Family
	Variant Variant
	// CheckDigits is the number of check digits; values above one derive
	// each further digit over the base extended with the previous ones.
	CheckDigits int
	// MaxLength rejects longer base values when positive.
	MaxLength int
	// Pipeline overrides Family when set.
	Pipeline *Pipeline
}

// settings is a validated Config.
type settings struct {
	family      Family
	pipeline    Pipeline
	variant     Variant
	checkDigits int
	maxLength   int
}

func (c Config) resolve() (settings, error) {
	if c.CheckDigits < 1 {
		return settings{}, newError(ErrInvalidConfiguration, strconv.Itoa(c.CheckDigits), "check digit count must be at least 1")
	}
	if c.MaxLength < 0 {
		return settings{}, newError(ErrInvalidConfiguration, strconv.Itoa(c.MaxLength), "max length cannot be negative")
	}

	var p Pipeline
	if c.Pipeline != nil {
		p = *c.Pipeline
	} else {
		var err error
		if p, err = c.Family.Pipeline(); err != nil {
			return settings{}, err
		}
	}
	if !p.complete() {
		return settings{}, newError(ErrInvalidConfiguration, "", "pipeline needs weighting, folding and reducer")
	}

	s := settings{
		family:      c.Family,
		pipeline:    p,
		variant:     c.Variant,
		checkDigits: c.CheckDigits,
		maxLength:   c.MaxLength,
	}
	return s, s.checkVariant()
}

func (s settings) checkVariant() error {
	switch s.variant {
	case Normal, Barcode, Unadjusted:
	default:
		return newError(ErrInvalidConfiguration, strconv.Itoa(int(s.variant)), "unknown variant")
	}
	if !s.pipeline.Adjustable && s.variant != Normal {
		return newError(ErrInvalidConfiguration, s.variant.String(), "variant only applies to modulo-11 pipelines")
	}
	if s.variant == Unadjusted && s.checkDigits > 1 {
		return newError(ErrInvalidConfiguration, s.variant.String(), "unadjusted digits cannot be chained")
	}
	return nil
}

func (s settings) config() Config {
	p := s.pipeline
	return Config{
		Family:      s.family,
		Variant:     s.variant,
		CheckDigits: s.checkDigits,
		MaxLength:   s.maxLength,
		Pipeline:    &p,
	}
}
