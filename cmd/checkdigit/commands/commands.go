package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/olgasafonova/checkdigit-mcp-server/internal/service"
)

// RunCompute prints the check digits of base under scheme.
func RunCompute(ctx context.Context, svc *service.Service, w io.Writer, scheme, base, variant, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	res, err := svc.ComputeMCP(ctx, service.ComputeArgs{Scheme: scheme, Base: base, Variant: variant})
	if err != nil {
		return fmt.Errorf("failed to compute check digits: %w", err)
	}
	if format == "json" {
		return writeJSON(w, res)
	}

	if res.Issuable {
		fmt.Fprintf(w, "Check digits: %s\n", res.CheckDigits)
		fmt.Fprintf(w, "Identifier:   %s\n", res.Formatted)
	} else {
		fmt.Fprintf(w, "Raw digit:    %d\n", res.CheckDigit)
	}
	fmt.Fprintf(w, "Weighted sum: %d (%s)\n", res.WeightedSum, res.Variant)
	if !res.Issuable {
		fmt.Fprintln(w, "Warning: this base is never issued under the scheme")
	}
	return nil
}

// RunValidate checks a full identifier and returns an error when it is invalid.
func RunValidate(ctx context.Context, svc *service.Service, w io.Writer, scheme, id, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	res, err := svc.ValidateMCP(ctx, service.ValidateArgs{Scheme: scheme, Identifier: id})
	if err != nil {
		return fmt.Errorf("failed to validate identifier: %w", err)
	}
	if format == "json" {
		if err := writeJSON(w, res); err != nil {
			return err
		}
	} else if res.Valid {
		fmt.Fprintf(w, "%s is a valid %s\n", res.Formatted, res.Scheme)
	} else {
		fmt.Fprintf(w, "%s is not a valid %s: %s\n", res.Input, res.Scheme, res.Message)
	}

	if !res.Valid {
		return fmt.Errorf("invalid identifier: %s", res.Reason)
	}
	return nil
}

// RunValidateBatch validates one identifier per line read from r.
func RunValidateBatch(ctx context.Context, svc *service.Service, streams IOTuple, scheme, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	ids, err := readLines(streams.Reader)
	if err != nil {
		return err
	}
	res, err := svc.ValidateBatchMCP(ctx, service.ValidateBatchArgs{Scheme: scheme, Identifiers: ids})
	if err != nil {
		return fmt.Errorf("failed to validate identifiers: %w", err)
	}
	if format == "json" {
		return writeJSON(streams.Writer, res)
	}

	for _, r := range res.Results {
		status := "valid"
		if !r.Valid {
			status = "invalid (" + r.Reason + ")"
		}
		fmt.Fprintf(streams.Writer, "%-24s %s\n", r.Input, status)
	}
	fmt.Fprintf(streams.Writer, "\n%d valid, %d invalid, %d total\n", res.ValidCount, res.InvalidCount, res.Total)
	return nil
}

// RunComplete prints base with its check digits appended.
func RunComplete(ctx context.Context, svc *service.Service, w io.Writer, scheme, base, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	res, err := svc.CompleteMCP(ctx, service.CompleteArgs{Scheme: scheme, Base: base})
	if err != nil {
		return fmt.Errorf("failed to complete identifier: %w", err)
	}
	if format == "json" {
		return writeJSON(w, res)
	}
	fmt.Fprintln(w, res.Formatted)
	return nil
}

// RunDetect lists the schemes id could belong to.
func RunDetect(ctx context.Context, svc *service.Service, w io.Writer, id, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	res, err := svc.DetectMCP(ctx, service.DetectArgs{Identifier: id})
	if err != nil {
		return fmt.Errorf("failed to detect scheme: %w", err)
	}
	if format == "json" {
		return writeJSON(w, res)
	}

	if len(res.Candidates) == 0 {
		fmt.Fprintln(w, "No matching scheme")
		return nil
	}
	for _, c := range res.Candidates {
		var notes []string
		if c.Valid {
			notes = append(notes, "valid")
		} else {
			notes = append(notes, "check digit mismatch")
		}
		if c.Exact {
			notes = append(notes, "exact format")
		}
		fmt.Fprintf(w, "%-14s %-34s %s\n", c.Scheme, c.Title, strings.Join(notes, ", "))
	}
	return nil
}

// RunSchemes lists the supported schemes.
func RunSchemes(ctx context.Context, svc *service.Service, w io.Writer, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	res, err := svc.ListSchemesMCP(ctx, service.ListSchemesArgs{})
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(w, res)
	}
	for _, s := range res.Schemes {
		fmt.Fprintf(w, "%-14s %-34s %s, %d digit(s)\n", s.Name, s.Title, s.Family, s.CheckDigits)
	}
	return nil
}

// RunExplain prints the per-position breakdown of a computation.
func RunExplain(ctx context.Context, svc *service.Service, w io.Writer, scheme, base, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	res, err := svc.ExplainMCP(ctx, service.ExplainArgs{Scheme: scheme, Base: base})
	if err != nil {
		return fmt.Errorf("failed to explain computation: %w", err)
	}
	if format == "json" {
		return writeJSON(w, res)
	}

	fmt.Fprintf(w, "%s (%s, %s)\n", res.Scheme, res.Family, res.Variant)
	for i, p := range res.Passes {
		fmt.Fprintf(w, "\nPass %d over %s\n", i+1, p.Input)
		fmt.Fprintln(w, "  pos digit weight product parcel")
		for _, pc := range p.Parcels {
			fmt.Fprintf(w, "  %3d %5d %6d %7d %6d\n", pc.Pos, pc.Digit, pc.Weight, pc.Product, pc.Value)
		}
		fmt.Fprintf(w, "  sum %d, raw %d, digit %d\n", p.WeightedSum, p.Raw, p.Digit)
	}
	fmt.Fprintf(w, "\nResult: %s\n", res.Canonical)
	return nil
}
