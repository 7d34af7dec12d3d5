package tools

// AllTools contains all tool specifications for the check digit MCP server.
// Tool descriptions follow a structured format for optimal LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// COMPUTE TOOLS
	// ==========================================================================
	{
		Name:     "checkdigit_compute",
		Method:   "Compute",
		Title:    "Compute Check Digits",
		Category: "compute",
		Description: `Compute the check digit(s) for a base number under a named scheme.

USE WHEN: User asks "what is the check digit of X", "calculate the CPF digits for 529982247", "which verifier belongs to this base".

NOT FOR: Checking whether a full identifier is correct (use checkdigit_validate). Producing the full formatted identifier only (use checkdigit_complete).

PARAMETERS:
- scheme: Scheme name, e.g. mod10, mod11, cpf, cnpj, no-orgnr (required)
- base: Digits without check digits (required)
- variant: Override modulo 11 digit mapping: normal, barcode, unadjusted (optional)

RETURNS: Check digits, weighted sum, canonical and formatted identifier, per-pass details for two-digit schemes.`,
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:     "checkdigit_complete",
		Method:   "Complete",
		Title:    "Complete Identifier",
		Category: "compute",
		Description: `Append check digits to a base and return the full identifier.

USE WHEN: User asks "give me the full CNPJ for 112223330001", "complete this organisation number", "generate a valid test identifier from this base".

NOT FOR: Inspecting how the digits were derived (use checkdigit_explain).

PARAMETERS:
- scheme: Scheme name (required)
- base: Base digits; schemes stored as integers accept dropped leading zeros (required)

RETURNS: Canonical digits and the display form (e.g. 11.222.333/0001-81). Fails when the base can never be issued under the scheme.`,
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:     "checkdigit_explain",
		Method:   "Explain",
		Title:    "Explain Computation",
		Category: "compute",
		Description: `Show the per-digit weights and products behind a check digit.

USE WHEN: User asks "why is the check digit 5", "show me the calculation", "which weights does Y-tunnus use".

NOT FOR: Bulk work (use checkdigit_validate_batch).

PARAMETERS:
- scheme: Scheme name (required)
- base: Base digits (required)

RETURNS: For every pass, each digit with its weight and folded product, the weighted sum, the raw value before variant mapping and the final digit.`,
		ReadOnly:   true,
		Idempotent: true,
	},

	// ==========================================================================
	// VALIDATION TOOLS
	// ==========================================================================
	{
		Name:     "checkdigit_validate",
		Method:   "Validate",
		Title:    "Validate Identifier",
		Category: "validation",
		Description: `Check whether a full identifier carries the correct check digit(s).

USE WHEN: User asks "is 529.982.247-25 a valid CPF", "verify this org number", "does this CVR pass the checksum".

NOT FOR: Unknown schemes (use checkdigit_detect). Many identifiers at once (use checkdigit_validate_batch).

PARAMETERS:
- scheme: Scheme name (required)
- identifier: Full identifier, separators allowed (required)

RETURNS: valid flag, expected and supplied digits, canonical and formatted forms, and a reason when invalid (invalid_format, length_exceeded, check_digit_mismatch, not_issuable).`,
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:     "checkdigit_validate_batch",
		Method:   "ValidateBatch",
		Title:    "Validate Identifiers in Bulk",
		Category: "validation",
		Description: `Validate many identifiers of the same scheme in one call.

USE WHEN: User pastes a list of numbers and asks "which of these are valid", "clean up this column of CNPJs".

NOT FOR: A single identifier (use checkdigit_validate).

PARAMETERS:
- scheme: Scheme name shared by all identifiers (required)
- identifiers: List of identifiers (required, max 500 by default)

RETURNS: Per-identifier results in input order plus valid and invalid counts.`,
		ReadOnly:   true,
		Idempotent: true,
	},

	// ==========================================================================
	// DISCOVERY TOOLS
	// ==========================================================================
	{
		Name:     "checkdigit_detect",
		Method:   "Detect",
		Title:    "Detect Scheme",
		Category: "discovery",
		Description: `Guess which scheme an identifier belongs to from its shape and check digits.

USE WHEN: User asks "what kind of number is this", "is this a CPF or a CNPJ", "which country issued 0112038-9".

NOT FOR: Validating against a known scheme (use checkdigit_validate).

PARAMETERS:
- identifier: Identifier of unknown scheme (required)

RETURNS: Candidate schemes, valid and exactly formatted candidates first, and the best match when one validates.`,
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:     "checkdigit_list_schemes",
		Method:   "ListSchemes",
		Title:    "List Schemes",
		Category: "discovery",
		Description: `List every supported check digit scheme.

USE WHEN: User asks "which identifiers can you check", "what schemes are supported", or a scheme name was rejected.

PARAMETERS: None.

RETURNS: Scheme names, titles, algorithm family, variant, number of check digits and base length.`,
		ReadOnly:   true,
		Idempotent: true,
	},
}
