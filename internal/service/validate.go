package service

import (
	"errors"
	"sort"

	validation "github.com/jellydator/validation"

	apperrors "github.com/olgasafonova/checkdigit-mcp-server/internal/errors"
)

// maxInputLength bounds every identifier and base value argument.
const maxInputLength = 64

var inputRules = []validation.Rule{
	validation.Required,
	validation.Length(1, maxInputLength),
}

var schemeRules = []validation.Rule{
	validation.Required.Error("scheme is required"),
	validation.Length(1, 32),
}

// Validate checks the compute arguments
func (a *ComputeArgs) Validate() error {
	return wrapValidationError(validation.ValidateStruct(a,
		validation.Field(&a.Scheme, schemeRules...),
		validation.Field(&a.Base, inputRules...),
		validation.Field(&a.Variant, validation.In("normal", "barcode", "unadjusted", "raw")),
	))
}

// Validate checks the validate arguments
func (a *ValidateArgs) Validate() error {
	return wrapValidationError(validation.ValidateStruct(a,
		validation.Field(&a.Scheme, schemeRules...),
		validation.Field(&a.Identifier, inputRules...),
	))
}

// Validate checks the complete arguments
func (a *CompleteArgs) Validate() error {
	return wrapValidationError(validation.ValidateStruct(a,
		validation.Field(&a.Scheme, schemeRules...),
		validation.Field(&a.Base, inputRules...),
	))
}

// Validate checks the batch arguments against the configured batch limit
func (a *ValidateBatchArgs) Validate(maxBatch int) error {
	return wrapValidationError(validation.ValidateStruct(a,
		validation.Field(&a.Scheme, schemeRules...),
		validation.Field(&a.Identifiers,
			validation.Required.Error("at least one identifier is required"),
			validation.Length(1, maxBatch),
			validation.Each(validation.Length(0, maxInputLength)),
		),
	))
}

// Validate checks the detect arguments
func (a *DetectArgs) Validate() error {
	return wrapValidationError(validation.ValidateStruct(a,
		validation.Field(&a.Identifier, inputRules...),
	))
}

// Validate checks the explain arguments
func (a *ExplainArgs) Validate() error {
	return wrapValidationError(validation.ValidateStruct(a,
		validation.Field(&a.Scheme, schemeRules...),
		validation.Field(&a.Base, inputRules...),
	))
}

// wrapValidationError converts validation errors into a ValidationError
// naming the first offending field.
func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return &apperrors.ValidationError{Message: err.Error(), Err: err}
	}

	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	first := fields[0]
	return &apperrors.ValidationError{
		Field:   first,
		Message: errs[first].Error(),
		Err:     err,
	}
}
