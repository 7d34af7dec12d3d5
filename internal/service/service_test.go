package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/olgasafonova/checkdigit-mcp-server/internal/checkdigit"
	apperrors "github.com/olgasafonova/checkdigit-mcp-server/internal/errors"
	"github.com/olgasafonova/checkdigit-mcp-server/internal/identifier"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s := New(Options{CacheMaxEntries: 100, BatchConcurrency: 4, MaxBatchSize: 10},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(s.Close)
	return s
}

func TestComputeMCP(t *testing.T) {
	s := newTestService(t)

	tests := []struct {
		name          string
		args          ComputeArgs
		wantDigits    string
		wantFormatted string
		wantIssuable  bool
	}{
		{"cpf", ComputeArgs{Scheme: "cpf", Base: "529.982.247"}, "25", "529.982.247-25", true},
		{"cnpj leading zeros", ComputeArgs{Scheme: "cnpj", Base: "1"}, "91", "00.000.000/0001-91", true},
		{"modulo 10", ComputeArgs{Scheme: "mod10", Base: "20381709"}, "3", "203817093", true},
		{"modulo 11 barcode override", ComputeArgs{Scheme: "mod11", Base: "6", Variant: "barcode"}, "1", "61", true},
		{"modulo 11 normal", ComputeArgs{Scheme: "mod11", Base: "6"}, "0", "60", true},
		{"finnish unissued", ComputeArgs{Scheme: "fi-ytunnus", Base: "1111111"}, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ComputeMCP(context.Background(), tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.CheckDigits != tt.wantDigits {
				t.Errorf("CheckDigits = %q, want %q", got.CheckDigits, tt.wantDigits)
			}
			if got.Formatted != tt.wantFormatted {
				t.Errorf("Formatted = %q, want %q", got.Formatted, tt.wantFormatted)
			}
			if got.Issuable != tt.wantIssuable {
				t.Errorf("Issuable = %v, want %v", got.Issuable, tt.wantIssuable)
			}
		})
	}
}

func TestComputeMCP_Errors(t *testing.T) {
	s := newTestService(t)

	tests := []struct {
		name      string
		args      ComputeArgs
		wantField string
		notFound  bool
		kind      error
	}{
		{"missing scheme", ComputeArgs{Base: "123"}, "scheme", false, nil},
		{"missing base", ComputeArgs{Scheme: "cpf"}, "base", false, nil},
		{"unknown scheme", ComputeArgs{Scheme: "iban", Base: "123"}, "", true, nil},
		{"bad variant name", ComputeArgs{Scheme: "mod11", Base: "1", Variant: "fancy"}, "variant", false, nil},
		{"variant on modulo 10", ComputeArgs{Scheme: "mod10", Base: "1", Variant: "barcode"}, "variant", false, checkdigit.ErrInvalidConfiguration},
		{"too long", ComputeArgs{Scheme: "cnpj", Base: "1122233300011"}, "base", false, checkdigit.ErrLengthExceeded},
		{"letters", ComputeArgs{Scheme: "mod10", Base: "12ab"}, "base", false, checkdigit.ErrInvalidFormat},
		{"oversized input", ComputeArgs{Scheme: "mod10", Base: strings.Repeat("1", 65)}, "base", false, nil},
		{"short fixed length", ComputeArgs{Scheme: "no-orgnr", Base: "123"}, "base", false, nil},
		{"long fixed length", ComputeArgs{Scheme: "dk-cvr", Base: "12345678"}, "base", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ComputeMCP(context.Background(), tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.notFound {
				if !apperrors.IsNotFound(err) {
					t.Errorf("error = %v, want NotFoundError", err)
				}
				return
			}
			var verr *apperrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
			if tt.kind != nil && !errors.Is(err, tt.kind) {
				t.Errorf("error = %v, want it to wrap %v", err, tt.kind)
			}
		})
	}
}

func TestComputeMCP_Cached(t *testing.T) {
	s := newTestService(t)
	args := ComputeArgs{Scheme: "cpf", Base: "529982247"}

	first, err := s.ComputeMCP(context.Background(), args)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.ComputeMCP(context.Background(), ComputeArgs{Scheme: "CPF", Base: "529.982.247"})
	if err != nil {
		t.Fatal(err)
	}
	if first.Canonical != second.Canonical {
		t.Errorf("cached result differs: %q vs %q", first.Canonical, second.Canonical)
	}

	st := s.CacheStats()
	if st.Hits != 1 || st.Misses != 1 {
		t.Errorf("cache stats = %+v, want 1 hit and 1 miss", st)
	}

	// A variant override is a different computation.
	if _, err := s.ComputeMCP(context.Background(), ComputeArgs{Scheme: "cpf", Base: "529982247", Variant: "barcode"}); err != nil {
		t.Fatal(err)
	}
	if got := s.CacheStats().Misses; got != 2 {
		t.Errorf("misses = %d after variant override, want 2", got)
	}
}

func TestValidateMCP(t *testing.T) {
	s := newTestService(t)

	tests := []struct {
		name       string
		args       ValidateArgs
		wantValid  bool
		wantReason string
	}{
		{"valid cpf", ValidateArgs{Scheme: "cpf", Identifier: "529.982.247-25"}, true, ""},
		{"invalid cpf", ValidateArgs{Scheme: "cpf", Identifier: "529.982.247-26"}, false, identifier.ReasonMismatch},
		{"valid norway", ValidateArgs{Scheme: "no-orgnr", Identifier: "923 609 016"}, true, ""},
		{"bad format", ValidateArgs{Scheme: "dk-cvr", Identifier: "10-15-08"}, false, identifier.ReasonInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ValidateMCP(context.Background(), tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (%s)", got.Valid, tt.wantValid, got.Message)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}

	if _, err := s.ValidateMCP(context.Background(), ValidateArgs{Scheme: "iban", Identifier: "1"}); !apperrors.IsNotFound(err) {
		t.Errorf("unknown scheme error = %v, want NotFoundError", err)
	}
	if _, err := s.ValidateMCP(context.Background(), ValidateArgs{Scheme: "cpf"}); !apperrors.IsValidation(err) {
		t.Errorf("missing identifier error = %v, want ValidationError", err)
	}
}

func TestValidateMCP_SharesCacheWithCompute(t *testing.T) {
	s := newTestService(t)

	if _, err := s.ComputeMCP(context.Background(), ComputeArgs{Scheme: "cpf", Base: "529982247"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ValidateMCP(context.Background(), ValidateArgs{Scheme: "cpf", Identifier: "52998224725"}); err != nil {
		t.Fatal(err)
	}
	if got := s.CacheStats().Hits; got != 1 {
		t.Errorf("hits = %d, want 1", got)
	}
}

func TestCompleteMCP(t *testing.T) {
	s := newTestService(t)

	got, err := s.CompleteMCP(context.Background(), CompleteArgs{Scheme: "cnpj", Base: "11.222.333/0001"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Canonical != "11222333000181" {
		t.Errorf("Canonical = %q, want 11222333000181", got.Canonical)
	}
	if got.Base != "112223330001" {
		t.Errorf("Base = %q, want 112223330001", got.Base)
	}
	if got.Formatted != "11.222.333/0001-81" {
		t.Errorf("Formatted = %q, want 11.222.333/0001-81", got.Formatted)
	}

	if _, err := s.CompleteMCP(context.Background(), CompleteArgs{Scheme: "fi-ytunnus", Base: "1111111"}); !apperrors.IsValidation(err) {
		t.Errorf("unissuable base error = %v, want ValidationError", err)
	}
}

func TestValidateBatchMCP(t *testing.T) {
	s := newTestService(t)

	got, err := s.ValidateBatchMCP(context.Background(), ValidateBatchArgs{
		Scheme:      "se-orgnr",
		Identifiers: []string{"556036-0793", "5560360794", "556036-0793", ""},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Total != 4 || got.ValidCount != 2 || got.InvalidCount != 2 {
		t.Errorf("counts = %d/%d/%d, want 4/2/2", got.Total, got.ValidCount, got.InvalidCount)
	}
	if got.Results[1].Input != "5560360794" {
		t.Errorf("results out of order: %+v", got.Results)
	}
}

func TestValidateBatchMCP_Limits(t *testing.T) {
	s := newTestService(t)

	tests := []struct {
		name string
		args ValidateBatchArgs
	}{
		{"empty", ValidateBatchArgs{Scheme: "cpf"}},
		{"too many", ValidateBatchArgs{Scheme: "cpf", Identifiers: make([]string, 11)}},
		{"oversized item", ValidateBatchArgs{Scheme: "cpf", Identifiers: []string{strings.Repeat("9", 65)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ValidateBatchMCP(context.Background(), tt.args)
			var verr *apperrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if verr.Field != "identifiers" {
				t.Errorf("Field = %q, want identifiers", verr.Field)
			}
		})
	}
}

func TestDetectMCP(t *testing.T) {
	s := newTestService(t)

	got, err := s.DetectMCP(context.Background(), DetectArgs{Identifier: "0112038-9"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Best != "fi-ytunnus" {
		t.Errorf("Best = %q, want fi-ytunnus", got.Best)
	}

	got, err = s.DetectMCP(context.Background(), DetectArgs{Identifier: "12345"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Best != "" || got.Candidates == nil || len(got.Candidates) != 0 {
		t.Errorf("unexpected detection for 12345: %+v", got)
	}
}

func TestListSchemesMCP(t *testing.T) {
	s := newTestService(t)

	got, err := s.ListSchemesMCP(context.Background(), ListSchemesArgs{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Schemes) != len(checkdigit.Schemes()) {
		t.Fatalf("got %d schemes, want %d", len(got.Schemes), len(checkdigit.Schemes()))
	}

	byName := map[string]SchemeInfo{}
	for _, info := range got.Schemes {
		byName[info.Name] = info
	}
	cpf := byName["cpf"]
	if cpf.CheckDigits != 2 || cpf.BaseLength != 9 || cpf.Family != "mod11-registry" || !cpf.ZeroPad {
		t.Errorf("cpf info = %+v", cpf)
	}
	if byName["mod11-barcode"].Variant != "barcode" {
		t.Errorf("mod11-barcode variant = %q", byName["mod11-barcode"].Variant)
	}
}

func TestExplainMCP(t *testing.T) {
	s := newTestService(t)

	got, err := s.ExplainMCP(context.Background(), ExplainArgs{Scheme: "cpf", Base: "529982247"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Canonical != "52998224725" {
		t.Errorf("Canonical = %q, want 52998224725", got.Canonical)
	}
	if len(got.Passes) != 2 {
		t.Fatalf("got %d passes, want 2", len(got.Passes))
	}

	first := got.Passes[0]
	if len(first.Parcels) != 9 {
		t.Fatalf("first pass has %d parcels, want 9", len(first.Parcels))
	}
	sum := 0
	for _, p := range first.Parcels {
		sum += p.Value
	}
	if sum != first.WeightedSum {
		t.Errorf("parcels add up to %d, weighted sum is %d", sum, first.WeightedSum)
	}
	if got.Passes[1].Input != "5299822472" || len(got.Passes[1].Parcels) != 10 {
		t.Errorf("second pass = %+v", got.Passes[1])
	}

	if _, err := s.ExplainMCP(context.Background(), ExplainArgs{Scheme: "cpf", Base: "5299822471"}); !errors.Is(err, checkdigit.ErrLengthExceeded) {
		t.Errorf("error = %v, want ErrLengthExceeded", err)
	}
	if _, err := s.ExplainMCP(context.Background(), ExplainArgs{Scheme: "no-orgnr", Base: "123"}); !apperrors.IsValidation(err) {
		t.Errorf("error = %v, want a ValidationError for a short base", err)
	}
}

func TestExplainMCP_Unissuable(t *testing.T) {
	s := newTestService(t)

	got, err := s.ExplainMCP(context.Background(), ExplainArgs{Scheme: "no-orgnr", Base: "10000013"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Issuable || got.Canonical != "" {
		t.Errorf("Issuable/Canonical = %v/%q, want false/empty", got.Issuable, got.Canonical)
	}
	if len(got.Passes) != 1 || got.Passes[0].Digit != 10 {
		t.Errorf("passes = %+v, want one pass with raw 10", got.Passes)
	}
}
