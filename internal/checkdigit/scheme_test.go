package checkdigit

import (
	"errors"
	"testing"
)

func TestSchemes_WorkedExamples(t *testing.T) {
	tests := []struct {
		scheme    string
		base      string
		want      int
		formatted string
		issuable  bool
	}{
		{"mod10", "20381709", 3, "203817093", true},
		{"mod11", "2620381709", 9, "26203817099", true},
		{"mod11", "0", 0, "00", true},
		{"mod11", "6", 0, "60", true},
		{"mod11", "1", 9, "19", true},
		{"mod11-barcode", "0", 1, "01", true},
		{"mod11-barcode", "6", 1, "61", true},
		{"mod11-barcode", "1", 9, "19", true},
		{"cpf", "529982247", 25, "52998224725", true},
		{"cpf", "111444777", 35, "11144477735", true},
		{"cnpj", "112223330001", 81, "11222333000181", true},
		{"cnpj", "000000000001", 91, "00000000000191", true},
		{"no-orgnr", "92360901", 6, "923609016", true},
		{"dk-cvr", "1015081", 7, "10150817", true},
		{"fi-ytunnus", "0112038", 9, "01120389", true},
		{"fi-ytunnus", "1927400", 1, "19274001", true},
		{"fi-ytunnus", "1111111", 10, "", false},
		{"se-orgnr", "556036079", 3, "5560360793", true},
	}

	for _, tt := range tests {
		t.Run(tt.scheme+"/"+tt.base, func(t *testing.T) {
			s, err := LookupScheme(tt.scheme)
			if err != nil {
				t.Fatal(err)
			}
			r, err := s.Compute(tt.base)
			if err != nil {
				t.Fatalf("Compute(%q) error: %v", tt.base, err)
			}
			if r.CheckDigit != tt.want {
				t.Errorf("CheckDigit = %d, want %d", r.CheckDigit, tt.want)
			}
			got, err := r.Formatted()
			if got != tt.formatted {
				t.Errorf("Formatted() = %q, want %q", got, tt.formatted)
			}
			if !tt.issuable && !errors.Is(err, ErrNotIssuable) {
				t.Errorf("Formatted() error = %v, want ErrNotIssuable", err)
			}
			if got := r.Issuable(); got != tt.issuable {
				t.Errorf("Issuable() = %v, want %v", got, tt.issuable)
			}
		})
	}
}

func TestLookupScheme(t *testing.T) {
	for _, name := range []string{"cpf", " CPF ", "Mod11-Barcode"} {
		if _, err := LookupScheme(name); err != nil {
			t.Errorf("LookupScheme(%q) error: %v", name, err)
		}
	}

	_, err := LookupScheme("iban")
	if !errors.Is(err, ErrUnknownScheme) {
		t.Fatalf("LookupScheme(iban) error = %v, want ErrUnknownScheme", err)
	}
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Value != "iban" {
		t.Errorf("error value = %+v, want iban", cerr)
	}
}

func TestSchemes_SortedAndConsistent(t *testing.T) {
	all := Schemes()
	if len(all) != len(schemes) {
		t.Fatalf("Schemes() returned %d entries, want %d", len(all), len(schemes))
	}
	for i, s := range all {
		if i > 0 && all[i-1].Name >= s.Name {
			t.Errorf("schemes not sorted: %q before %q", all[i-1].Name, s.Name)
		}
		if _, err := s.NewEngine(); err != nil {
			t.Errorf("scheme %s has invalid config: %v", s.Name, err)
		}
		if s.Length > 0 && s.Config.MaxLength != s.Length {
			t.Errorf("scheme %s: MaxLength %d differs from Length %d", s.Name, s.Config.MaxLength, s.Length)
		}
	}
}

func TestValidate(t *testing.T) {
	cpf, _ := LookupScheme("cpf")
	fi, _ := LookupScheme("fi-ytunnus")

	tests := []struct {
		name    string
		cfg     Config
		full    string
		want    bool
		wantErr error
	}{
		{"valid cpf", cpf.Config, "52998224725", true, nil},
		{"wrong second digit", cpf.Config, "52998224724", false, nil},
		{"wrong first digit", cpf.Config, "52998224715", false, nil},
		{"valid modulo 10", Config{Family: Modulo10, CheckDigits: 1}, "203817093", true, nil},
		{"unissuable base never validates", fi.Config, "11111110", false, nil},
		{"too short", cpf.Config, "25", false, ErrInvalidFormat},
		{"not digits", cpf.Config, "529.982.247-25", false, ErrInvalidFormat},
		{"base too long", cpf.Config, "529982247125", false, ErrLengthExceeded},
		{"bad config", Config{Family: Modulo11}, "123", false, ErrInvalidConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.cfg, tt.full)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Validate(%q) = %v, want %v", tt.full, got, tt.want)
			}
		})
	}
}

func TestResult_Digits(t *testing.T) {
	r := Result{Base: "123", CheckDigit: 5, CheckDigits: 2}
	if got, _ := r.Digits(); got != "05" {
		t.Errorf("Digits() = %q, want 05", got)
	}
	if got, _ := r.Formatted(); got != "12305" {
		t.Errorf("Formatted() = %q, want 12305", got)
	}

	wide := Result{Base: "10000013", CheckDigit: 10, CheckDigits: 1}
	if got, err := wide.Digits(); got != "" || !errors.Is(err, ErrNotIssuable) {
		t.Errorf("Digits() = %q, %v, want ErrNotIssuable", got, err)
	}
}

func TestError_Message(t *testing.T) {
	err := newError(ErrLengthExceeded, "1234", "at most %d digits", 3)
	want := `checkdigit: length exceeded "1234": at most 3 digits`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrLengthExceeded) {
		t.Error("errors.Is should match the kind")
	}
}
