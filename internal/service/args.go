package service

import (
	"github.com/olgasafonova/checkdigit-mcp-server/internal/checkdigit"
	"github.com/olgasafonova/checkdigit-mcp-server/internal/identifier"
)

// ComputeArgs contains parameters for computing check digits
type ComputeArgs struct {
	Scheme  string `json:"scheme" jsonschema:"Scheme name, e.g. cpf, cnpj, mod11, no-orgnr (see checkdigit_list_schemes)"`
	Base    string `json:"base" jsonschema:"Base digits without check digits; spaces, dots, hyphens and slashes are ignored"`
	Variant string `json:"variant,omitempty" jsonschema:"Override the modulo 11 variant: normal, barcode or unadjusted"`
}

// ComputeResult is the result of a check digit computation
type ComputeResult struct {
	Scheme      string            `json:"scheme"`
	Base        string            `json:"base"`
	CheckDigits string            `json:"check_digits,omitempty"` // zero-padded to the scheme width
	CheckDigit  int               `json:"check_digit"`
	Canonical   string            `json:"canonical,omitempty"`
	Formatted   string            `json:"formatted,omitempty"`
	WeightedSum int               `json:"weighted_sum"`
	Variant     string            `json:"variant"`
	Issuable    bool              `json:"issuable"`
	Passes      []checkdigit.Pass `json:"passes,omitempty"`
}

// ValidateArgs contains parameters for validating an identifier
type ValidateArgs struct {
	Scheme     string `json:"scheme" jsonschema:"Scheme name, e.g. cpf, cnpj, no-orgnr"`
	Identifier string `json:"identifier" jsonschema:"Full identifier including check digits, formatted or not"`
}

// CompleteArgs contains parameters for completing a base value
type CompleteArgs struct {
	Scheme string `json:"scheme" jsonschema:"Scheme name"`
	Base   string `json:"base" jsonschema:"Base digits to append check digits to"`
}

// CompleteResult is a base value with its check digits appended
type CompleteResult struct {
	Scheme    string `json:"scheme"`
	Base      string `json:"base"`
	Canonical string `json:"canonical"`
	Formatted string `json:"formatted"`
}

// ValidateBatchArgs contains parameters for validating many identifiers
type ValidateBatchArgs struct {
	Scheme      string   `json:"scheme" jsonschema:"Scheme name shared by all identifiers"`
	Identifiers []string `json:"identifiers" jsonschema:"Identifiers to validate"`
}

// ValidateBatchResult summarises a batch validation
type ValidateBatchResult struct {
	Scheme       string              `json:"scheme"`
	Total        int                 `json:"total"`
	ValidCount   int                 `json:"valid_count"`
	InvalidCount int                 `json:"invalid_count"`
	Results      []identifier.Result `json:"results"`
}

// DetectArgs contains parameters for scheme detection
type DetectArgs struct {
	Identifier string `json:"identifier" jsonschema:"Identifier of unknown scheme"`
}

// DetectResult lists the schemes an identifier could belong to
type DetectResult struct {
	Input      string                 `json:"input"`
	Candidates []identifier.Candidate `json:"candidates"`
	Best       string                 `json:"best,omitempty"` // first candidate with a valid check digit
}

// ListSchemesArgs takes no parameters
type ListSchemesArgs struct{}

// SchemeInfo describes one supported scheme
type SchemeInfo struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Family      string `json:"family"`
	Variant     string `json:"variant"`
	CheckDigits int    `json:"check_digits"`
	BaseLength  int    `json:"base_length,omitempty"`
	ZeroPad     bool   `json:"zero_pad,omitempty"`
}

// ListSchemesResult is the list of supported schemes
type ListSchemesResult struct {
	Schemes []SchemeInfo `json:"schemes"`
}

// ExplainArgs contains parameters for a computation breakdown
type ExplainArgs struct {
	Scheme string `json:"scheme" jsonschema:"Scheme name"`
	Base   string `json:"base" jsonschema:"Base digits to explain"`
}

// PassExplanation shows how one check digit was derived
type PassExplanation struct {
	Input       string              `json:"input"`
	Parcels     []checkdigit.Parcel `json:"parcels"`
	WeightedSum int                 `json:"weighted_sum"`
	Raw         int                 `json:"raw"`
	Digit       int                 `json:"digit"`
}

// ExplainResult is a per-position breakdown of a computation
type ExplainResult struct {
	Scheme    string            `json:"scheme"`
	Base      string            `json:"base"`
	Family    string            `json:"family"`
	Variant   string            `json:"variant"`
	Passes    []PassExplanation `json:"passes"`
	Canonical string            `json:"canonical,omitempty"`
	Issuable  bool              `json:"issuable"`
}
