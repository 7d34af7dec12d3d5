package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/olgasafonova/checkdigit-mcp-server/internal/identifier"
	"github.com/olgasafonova/checkdigit-mcp-server/internal/service"
	"github.com/olgasafonova/checkdigit-mcp-server/metrics"
	"github.com/olgasafonova/checkdigit-mcp-server/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	svc    *service.Service
	logger *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(svc *service.Service, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		svc:    svc,
		logger: logger,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	for _, spec := range AllTools {
		h.registerByName(server, spec)
	}
	h.logger.Info("Registered all tools", "count", len(AllTools))
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) {
	tool := h.buildTool(spec)

	switch spec.Method {
	case "Compute":
		h.register(server, tool, spec, h.svc.ComputeMCP)
	case "Complete":
		h.register(server, tool, spec, h.svc.CompleteMCP)
	case "Explain":
		h.register(server, tool, spec, h.svc.ExplainMCP)
	case "Validate":
		h.register(server, tool, spec, h.svc.ValidateMCP)
	case "ValidateBatch":
		h.register(server, tool, spec, h.svc.ValidateBatchMCP)
	case "Detect":
		h.register(server, tool, spec, h.svc.DetectMCP)
	case "ListSchemes":
		h.register(server, tool, spec, h.svc.ListSchemesMCP)
	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
	}
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	}
	// The hint defaults to true when unset, so closed-world tools say so.
	annotations.OpenWorldHint = ptr(spec.OpenWorld)

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the service method with panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, wrap(h, spec, method))
}

// wrap builds the instrumented handler for a service method.
func wrap[Args, Result any](
	h *HandlerRegistry,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) mcp.ToolHandlerFor[Args, Result] {
	return func(ctx context.Context, req *mcp.CallToolRequest, args Args) (res *mcp.CallToolResult, result Result, err error) {
		defer h.recoverPanic(spec.Name, &err)

		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		span.SetAttributes(attribute.Bool("mcp.tool.readonly", spec.ReadOnly))

		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		result, err = method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			tracing.RecordError(span, err)
			metrics.RecordRequest(spec.Name, duration, false)
			h.logger.Debug("Tool failed", "tool", spec.Name, "error", err)
			var zero Result
			return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, args, result)
		return nil, result, nil
	}
}

// recoverPanic recovers from panics in tool handlers and turns them into
// tool errors so the session stays up.
func (h *HandlerRegistry) recoverPanic(toolName string, errp *error) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
		if errp != nil {
			*errp = fmt.Errorf("%s failed: internal error", toolName)
		}
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name, "category", spec.Category}

	switch a := args.(type) {
	case service.ComputeArgs:
		attrs = append(attrs, "scheme", a.Scheme, "base", a.Base)
		if a.Variant != "" {
			attrs = append(attrs, "variant", a.Variant)
		}
	case service.CompleteArgs:
		attrs = append(attrs, "scheme", a.Scheme, "base", a.Base)
	case service.ExplainArgs:
		attrs = append(attrs, "scheme", a.Scheme, "base", a.Base)
	case service.ValidateArgs:
		attrs = append(attrs, "scheme", a.Scheme)
	case service.ValidateBatchArgs:
		attrs = append(attrs, "scheme", a.Scheme, "identifiers", len(a.Identifiers))
	case service.DetectArgs:
		// Identifiers may be personal numbers; not logged
	case service.ListSchemesArgs:
		// No args to log
	}

	switch r := result.(type) {
	case service.ComputeResult:
		attrs = append(attrs, "check_digits", r.CheckDigits, "issuable", r.Issuable)
	case service.CompleteResult:
		attrs = append(attrs, "canonical", r.Canonical)
	case service.ExplainResult:
		attrs = append(attrs, "passes", len(r.Passes))
	case identifier.Result:
		attrs = append(attrs, "valid", r.Valid)
		if r.Reason != "" {
			attrs = append(attrs, "reason", r.Reason)
		}
	case service.ValidateBatchResult:
		attrs = append(attrs, "valid_count", r.ValidCount, "invalid_count", r.InvalidCount)
	case service.DetectResult:
		attrs = append(attrs, "candidates", len(r.Candidates), "best", r.Best)
	case service.ListSchemesResult:
		attrs = append(attrs, "schemes", len(r.Schemes))
	}

	h.logger.Info("Tool executed", attrs...)
}

// Convenience function to call the generic register with method receiver
func (h *HandlerRegistry) register(server *mcp.Server, tool *mcp.Tool, spec ToolSpec, method any) {
	switch m := method.(type) {
	case func(context.Context, service.ComputeArgs) (service.ComputeResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, service.CompleteArgs) (service.CompleteResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, service.ExplainArgs) (service.ExplainResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, service.ValidateArgs) (identifier.Result, error):
		register(h, server, tool, spec, m)
	case func(context.Context, service.ValidateBatchArgs) (service.ValidateBatchResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, service.DetectArgs) (service.DetectResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, service.ListSchemesArgs) (service.ListSchemesResult, error):
		register(h, server, tool, spec, m)
	default:
		h.logger.Error("Unknown method type, tool not registered", "tool", spec.Name)
	}
}
