// Package service exposes the check digit engine as MCP tool operations.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/olgasafonova/checkdigit-mcp-server/internal/checkdigit"
	"github.com/olgasafonova/checkdigit-mcp-server/internal/config"
	apperrors "github.com/olgasafonova/checkdigit-mcp-server/internal/errors"
	"github.com/olgasafonova/checkdigit-mcp-server/internal/identifier"
	"github.com/olgasafonova/checkdigit-mcp-server/internal/infra"
	"github.com/olgasafonova/checkdigit-mcp-server/metrics"
	"github.com/olgasafonova/checkdigit-mcp-server/tracing"
)

// Options tunes a Service.
type Options struct {
	CacheMaxEntries  int
	CacheTTL         time.Duration
	BatchConcurrency int
	MaxBatchSize     int
}

// OptionsFromConfig picks the service settings out of the server configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		CacheMaxEntries:  cfg.CacheMaxEntries,
		CacheTTL:         cfg.CacheTTL,
		BatchConcurrency: cfg.BatchConcurrency,
		MaxBatchSize:     cfg.MaxBatchSize,
	}
}

// Service runs check digit operations. Every call builds its own engine, so
// a Service is safe for concurrent use; only the result cache is shared.
type Service struct {
	opts          Options
	cache         *infra.Cache[checkdigit.Result]
	logger        *slog.Logger
	lastEvictions atomic.Int64
}

// New creates a Service. Call Close to release the cache.
func New(opts Options, logger *slog.Logger) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = infra.DefaultCacheTTL
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = 500
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		opts:   opts,
		cache:  infra.NewCache[checkdigit.Result](opts.CacheMaxEntries),
		logger: logger,
	}
}

// Close stops the cache cleanup loop.
func (s *Service) Close() {
	s.cache.Close()
}

// CacheStats exposes the result cache counters.
func (s *Service) CacheStats() infra.Stats {
	return s.cache.Stats()
}

func lookupScheme(name string) (checkdigit.Scheme, error) {
	sch, err := checkdigit.LookupScheme(name)
	if err != nil {
		return checkdigit.Scheme{}, apperrors.NewNotFoundError(name)
	}
	return sch, nil
}

// compute returns the engine result for base under sch, served from the
// cache when the same computation ran recently.
func (s *Service) compute(sch checkdigit.Scheme, base string, variant *checkdigit.Variant) (checkdigit.Result, error) {
	key := sch.Name + ":" + base
	if variant != nil {
		key = sch.Name + "/" + variant.String() + ":" + base
	}

	r, hit, err := s.cache.GetOrCompute(key, s.opts.CacheTTL, func() (checkdigit.Result, error) {
		e, err := sch.NewEngine()
		if err != nil {
			return checkdigit.Result{}, err
		}
		if variant != nil {
			if err := e.SetVariant(*variant); err != nil {
				return checkdigit.Result{}, err
			}
		}
		if err := e.SetBaseValue(base); err != nil {
			return checkdigit.Result{}, err
		}
		return e.Snapshot()
	})

	metrics.RecordCacheAccess(hit)
	s.reportCache()
	if err != nil {
		return r, err
	}
	metrics.RecordComputation(sch.Name, metrics.OutcomeComputed)
	return r, nil
}

// computeFor adapts compute to identifier.ComputeFunc.
func (s *Service) computeFor(sch checkdigit.Scheme, base string) (checkdigit.Result, error) {
	return s.compute(sch, base, nil)
}

func (s *Service) reportCache() {
	st := s.cache.Stats()
	metrics.SetCacheSize(st.Size)
	s.cacheEvictionsDelta(st.Evictions)
}

func (s *Service) cacheEvictionsDelta(total int64) {
	for {
		prev := s.lastEvictions.Load()
		if total <= prev {
			return
		}
		if s.lastEvictions.CompareAndSwap(prev, total) {
			metrics.AddCacheEvictions(total - prev)
			return
		}
	}
}

func annotate(ctx context.Context, scheme, outcome string) {
	tracing.AddSchemeAttributes(trace.SpanFromContext(ctx), scheme, outcome)
}

// ComputeMCP computes the check digits of a base value.
func (s *Service) ComputeMCP(ctx context.Context, args ComputeArgs) (ComputeResult, error) {
	if err := args.Validate(); err != nil {
		return ComputeResult{}, err
	}
	sch, err := lookupScheme(args.Scheme)
	if err != nil {
		return ComputeResult{}, err
	}

	var variant *checkdigit.Variant
	if args.Variant != "" {
		v, err := checkdigit.ParseVariant(args.Variant)
		if err != nil {
			return ComputeResult{}, apperrors.WrapValidation("variant", args.Variant, err)
		}
		variant = &v
	}

	base := identifier.PadBase(sch, identifier.Clean(args.Base))
	r, err := s.compute(sch, base, variant)
	if err != nil {
		err = apperrors.WrapValidation(fieldFor(err), args.Base, err)
	} else {
		err = identifier.CheckLength(sch, args.Base, base)
	}
	if err != nil {
		metrics.RecordComputation(sch.Name, metrics.OutcomeRejected)
		annotate(ctx, sch.Name, metrics.OutcomeRejected)
		return ComputeResult{}, err
	}
	annotate(ctx, sch.Name, metrics.OutcomeComputed)

	out := ComputeResult{
		Scheme:      sch.Name,
		Base:        r.Base,
		CheckDigit:  r.CheckDigit,
		WeightedSum: r.WeightedSum,
		Variant:     r.Variant.String(),
		Issuable:    r.Issuable(),
		Passes:      r.Passes,
	}
	// An unissuable base has no check digits and no canonical identifier.
	if canonical, err := r.Formatted(); err == nil {
		out.Canonical = canonical
		out.CheckDigits = canonical[len(r.Base):]
		out.Formatted = identifier.Format(sch, canonical)
	}
	return out, nil
}

// fieldFor names the argument an engine error is about.
func fieldFor(err error) string {
	var cerr *checkdigit.Error
	if errors.As(err, &cerr) && cerr.Kind == checkdigit.ErrInvalidConfiguration {
		return "variant"
	}
	return "base"
}

// ValidateMCP checks the check digits of a full identifier.
func (s *Service) ValidateMCP(ctx context.Context, args ValidateArgs) (identifier.Result, error) {
	if err := args.Validate(); err != nil {
		return identifier.Result{}, err
	}
	sch, err := lookupScheme(args.Scheme)
	if err != nil {
		return identifier.Result{}, err
	}

	r := identifier.ValidateUsing(sch, args.Identifier, s.computeFor)
	outcome := outcomeOf(r)
	metrics.RecordComputation(sch.Name, outcome)
	annotate(ctx, sch.Name, outcome)
	return r, nil
}

func outcomeOf(r identifier.Result) string {
	switch {
	case r.Valid:
		return metrics.OutcomeValid
	case r.Reason == identifier.ReasonMismatch || r.Reason == identifier.ReasonNotIssuable:
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeRejected
	}
}

// CompleteMCP appends check digits to a base value.
func (s *Service) CompleteMCP(ctx context.Context, args CompleteArgs) (CompleteResult, error) {
	if err := args.Validate(); err != nil {
		return CompleteResult{}, err
	}
	sch, err := lookupScheme(args.Scheme)
	if err != nil {
		return CompleteResult{}, err
	}

	canonical, err := identifier.Complete(sch, args.Base)
	if err != nil {
		metrics.RecordComputation(sch.Name, metrics.OutcomeRejected)
		annotate(ctx, sch.Name, metrics.OutcomeRejected)
		return CompleteResult{}, err
	}
	metrics.RecordComputation(sch.Name, metrics.OutcomeComputed)
	annotate(ctx, sch.Name, metrics.OutcomeComputed)

	return CompleteResult{
		Scheme:    sch.Name,
		Base:      canonical[:len(canonical)-sch.Config.CheckDigits],
		Canonical: canonical,
		Formatted: identifier.Format(sch, canonical),
	}, nil
}

// ValidateBatchMCP validates many identifiers of one scheme concurrently.
func (s *Service) ValidateBatchMCP(ctx context.Context, args ValidateBatchArgs) (ValidateBatchResult, error) {
	if err := args.Validate(s.opts.MaxBatchSize); err != nil {
		return ValidateBatchResult{}, err
	}
	sch, err := lookupScheme(args.Scheme)
	if err != nil {
		return ValidateBatchResult{}, err
	}
	metrics.BatchSize.Observe(float64(len(args.Identifiers)))

	results, err := identifier.ValidateBatch(ctx, sch, args.Identifiers, s.opts.BatchConcurrency, s.computeFor)
	if err != nil {
		return ValidateBatchResult{}, err
	}

	out := ValidateBatchResult{
		Scheme:  sch.Name,
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		metrics.RecordComputation(sch.Name, outcomeOf(r))
		if r.Valid {
			out.ValidCount++
		} else {
			out.InvalidCount++
		}
	}
	annotate(ctx, sch.Name, "")
	s.logger.Debug("Batch validated",
		"scheme", sch.Name,
		"total", out.Total,
		"valid", out.ValidCount,
	)
	return out, nil
}

// DetectMCP lists the schemes an identifier could belong to.
func (s *Service) DetectMCP(ctx context.Context, args DetectArgs) (DetectResult, error) {
	if err := args.Validate(); err != nil {
		return DetectResult{}, err
	}

	candidates := identifier.Detect(args.Identifier)
	out := DetectResult{Input: args.Identifier, Candidates: candidates}
	if out.Candidates == nil {
		out.Candidates = []identifier.Candidate{}
	}
	if len(candidates) > 0 && candidates[0].Valid {
		out.Best = candidates[0].Scheme
		annotate(ctx, out.Best, metrics.OutcomeValid)
	}
	return out, nil
}

// ListSchemesMCP describes every supported scheme.
func (s *Service) ListSchemesMCP(_ context.Context, _ ListSchemesArgs) (ListSchemesResult, error) {
	all := checkdigit.Schemes()
	out := make([]SchemeInfo, 0, len(all))
	for _, sch := range all {
		out = append(out, SchemeInfo{
			Name:        sch.Name,
			Title:       sch.Title,
			Description: sch.Description,
			Family:      sch.Config.Family.String(),
			Variant:     sch.Config.Variant.String(),
			CheckDigits: sch.Config.CheckDigits,
			BaseLength:  sch.Length,
			ZeroPad:     sch.ZeroPad,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return ListSchemesResult{Schemes: out}, nil
}

// ExplainMCP shows the digit, weight and parcel of every position for each
// pass of a computation.
func (s *Service) ExplainMCP(ctx context.Context, args ExplainArgs) (ExplainResult, error) {
	if err := args.Validate(); err != nil {
		return ExplainResult{}, err
	}
	sch, err := lookupScheme(args.Scheme)
	if err != nil {
		return ExplainResult{}, err
	}

	base := identifier.PadBase(sch, identifier.Clean(args.Base))
	e, err := sch.NewEngine()
	if err != nil {
		return ExplainResult{}, err
	}
	err = e.SetBaseValue(base)
	if err != nil {
		err = apperrors.WrapValidation("base", args.Base, err)
	} else {
		err = identifier.CheckLength(sch, args.Base, base)
	}
	if err != nil {
		annotate(ctx, sch.Name, metrics.OutcomeRejected)
		return ExplainResult{}, err
	}
	passes, err := e.Passes()
	if err != nil {
		return ExplainResult{}, err
	}
	canonical, err := e.Formatted(true)
	if err != nil && !errors.Is(err, checkdigit.ErrNotIssuable) {
		return ExplainResult{}, err
	}

	cfg := e.Config()
	out := ExplainResult{
		Scheme:    sch.Name,
		Base:      base,
		Family:    cfg.Family.String(),
		Variant:   cfg.Variant.String(),
		Canonical: canonical,
		Issuable:  err == nil,
		Passes:    make([]PassExplanation, 0, len(passes)),
	}
	for _, p := range passes {
		b, err := checkdigit.ParseBaseValue(p.Input)
		if err != nil {
			return ExplainResult{}, err
		}
		out.Passes = append(out.Passes, PassExplanation{
			Input:       p.Input,
			Parcels:     cfg.Pipeline.Parcels(b),
			WeightedSum: p.WeightedSum,
			Raw:         p.Raw,
			Digit:       p.Digit,
		})
	}
	annotate(ctx, sch.Name, metrics.OutcomeComputed)
	return out, nil
}
