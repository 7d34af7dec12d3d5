package identifier

import (
	"regexp"
	"sort"
	"strings"

	"github.com/olgasafonova/checkdigit-mcp-server/internal/checkdigit"
)

// Pre-compiled patterns for separator-bearing formats.
var (
	cpfPattern     = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$`)
	cnpjPattern    = regexp.MustCompile(`^\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}$`)
	finlandPattern = regexp.MustCompile(`^\d{7}-\d$`)
	swedenPattern  = regexp.MustCompile(`^\d{6}-\d{4}$`)
)

// shapes maps a cleaned identifier length to the schemes of that length.
var shapes = map[int][]string{
	8:  {"dk-cvr", "fi-ytunnus"},
	9:  {"no-orgnr"},
	10: {"se-orgnr"},
	11: {"cpf"},
	14: {"cnpj"},
}

// Candidate is a scheme an identifier could belong to.
type Candidate struct {
	Scheme string `json:"scheme"`
	Title  string `json:"title"`
	Valid  bool   `json:"valid"`
	// Exact is set when the separators match the scheme's printed format.
	Exact  bool   `json:"exact_format"`
	Result Result `json:"result"`
}

// Detect lists the schemes whose shape fits raw, validating it against
// each. Candidates with a valid check digit come first.
func Detect(raw string) []Candidate {
	trimmed := strings.TrimSpace(raw)
	cleaned := Clean(trimmed)
	if _, err := checkdigit.ParseBaseValue(cleaned); err != nil {
		return nil
	}

	exact := exactFormat(trimmed)
	names := append([]string(nil), shapes[len(cleaned)]...)
	if exact != "" && !contains(names, exact) {
		names = append(names, exact)
	}

	var out []Candidate
	for _, name := range names {
		s, err := checkdigit.LookupScheme(name)
		if err != nil {
			continue
		}
		r := Validate(s, trimmed)
		out = append(out, Candidate{
			Scheme: s.Name,
			Title:  s.Title,
			Valid:  r.Valid,
			Exact:  name == exact,
			Result: r,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Valid != out[j].Valid {
			return out[i].Valid
		}
		return out[i].Exact && !out[j].Exact
	})
	return out
}

func exactFormat(s string) string {
	switch {
	case cpfPattern.MatchString(s):
		return "cpf"
	case cnpjPattern.MatchString(s):
		return "cnpj"
	case finlandPattern.MatchString(s):
		return "fi-ytunnus"
	case swedenPattern.MatchString(s):
		return "se-orgnr"
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
