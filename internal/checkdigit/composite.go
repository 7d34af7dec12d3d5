package checkdigit

// Pass records one run of the pipeline.
type Pass struct {
	Input       string `json:"input"`
	WeightedSum int    `json:"weighted_sum"`
	Raw         int    `json:"raw"`
	Digit       int    `json:"digit"`
}

func runPass(s settings, b BaseValue) Pass {
	sum := s.pipeline.Sum(b)
	raw := s.pipeline.Reducer.Reduce(sum)
	digit := raw
	if s.pipeline.Adjustable {
		digit = s.variant.Adjust(raw)
	}
	return Pass{Input: b.String(), WeightedSum: sum, Raw: raw, Digit: digit}
}

// derive computes every pass for b and the combined check digit.
//
// The first pass runs over b itself. Each further pass is a separate
// single-digit engine fed with the previous pass input plus its digit, so
// the second digit of a two-digit scheme covers the first one.
func derive(s settings, b BaseValue) ([]Pass, int, error) {
	first := runPass(s, b)
	passes := make([]Pass, 1, s.checkDigits)
	passes[0] = first
	combined := first.Digit
	if s.checkDigits == 1 {
		return passes, combined, nil
	}

	cfg := s.passConfig()
	extended := b
	for len(passes) < s.checkDigits {
		extended = extended.Append(passes[len(passes)-1].Digit)

		next, err := NewEngine(cfg)
		if err != nil {
			return nil, 0, err
		}
		if err := next.assign(extended); err != nil {
			return nil, 0, err
		}
		p := next.passes[0]
		passes = append(passes, p)
		combined = combined*10 + p.Digit
	}
	return passes, combined, nil
}

// passConfig is the single-digit, unbounded configuration each extra pass of
// a composite derivation runs with.
func (s settings) passConfig() Config {
	c := s.config()
	c.CheckDigits = 1
	c.MaxLength = 0
	return c
}
