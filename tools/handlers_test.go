package tools

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/olgasafonova/checkdigit-mcp-server/internal/identifier"
	"github.com/olgasafonova/checkdigit-mcp-server/internal/service"
)

func newTestRegistry(t *testing.T) *HandlerRegistry {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := service.New(service.Options{CacheMaxEntries: 100, BatchConcurrency: 2, MaxBatchSize: 10}, logger)
	t.Cleanup(svc.Close)
	return NewHandlerRegistry(svc, logger)
}

func TestNewHandlerRegistry(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(service.Options{}, logger)
	defer svc.Close()

	registry := NewHandlerRegistry(svc, logger)

	if registry == nil {
		t.Fatal("Expected non-nil registry")
	}
	if registry.svc != svc {
		t.Error("Registry should hold the service reference")
	}
	if registry.logger != logger {
		t.Error("Registry should hold the logger reference")
	}
}

func TestBuildTool(t *testing.T) {
	registry := newTestRegistry(t)

	tests := []struct {
		name      string
		spec      ToolSpec
		wantRO    bool
		wantIdem  bool
		wantDestr bool
		wantOpen  bool
	}{
		{
			name: "read-only tool",
			spec: ToolSpec{
				Name:        "checkdigit_validate",
				Title:       "Validate Identifier",
				Description: "Check an identifier",
				Method:      "Validate",
				ReadOnly:    true,
				Idempotent:  true,
			},
			wantRO:   true,
			wantIdem: true,
		},
		{
			name: "open world tool",
			spec: ToolSpec{
				Name:        "lookup",
				Description: "Reaches out",
				Method:      "Lookup",
				OpenWorld:   true,
				Destructive: true,
			},
			wantDestr: true,
			wantOpen:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := registry.buildTool(tt.spec)

			if tool.Name != tt.spec.Name {
				t.Errorf("Name = %q, want %q", tool.Name, tt.spec.Name)
			}
			if tool.Description != tt.spec.Description {
				t.Errorf("Description = %q, want %q", tool.Description, tt.spec.Description)
			}
			if tool.Annotations == nil {
				t.Fatal("Expected annotations")
			}
			if tool.Annotations.ReadOnlyHint != tt.wantRO {
				t.Errorf("ReadOnlyHint = %v, want %v", tool.Annotations.ReadOnlyHint, tt.wantRO)
			}
			if tool.Annotations.IdempotentHint != tt.wantIdem {
				t.Errorf("IdempotentHint = %v, want %v", tool.Annotations.IdempotentHint, tt.wantIdem)
			}
			gotDestr := tool.Annotations.DestructiveHint != nil && *tool.Annotations.DestructiveHint
			if gotDestr != tt.wantDestr {
				t.Errorf("DestructiveHint = %v, want %v", gotDestr, tt.wantDestr)
			}
			if tool.Annotations.OpenWorldHint == nil {
				t.Fatal("OpenWorldHint should always be set")
			}
			if *tool.Annotations.OpenWorldHint != tt.wantOpen {
				t.Errorf("OpenWorldHint = %v, want %v", *tool.Annotations.OpenWorldHint, tt.wantOpen)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	registry := newTestRegistry(t)
	spec := ToolSpec{Name: "checkdigit_validate", Category: "validation"}
	handler := wrap(registry, spec, registry.svc.ValidateMCP)

	_, got, err := handler(context.Background(), nil, service.ValidateArgs{Scheme: "cpf", Identifier: "529.982.247-25"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !got.Valid {
		t.Errorf("Valid = false, want true (reason %q)", got.Reason)
	}

	_, _, err = handler(context.Background(), nil, service.ValidateArgs{Scheme: "iban", Identifier: "1"})
	if err == nil {
		t.Fatal("expected error for unknown scheme")
	}
	if !strings.HasPrefix(err.Error(), "checkdigit_validate failed: ") {
		t.Errorf("error = %q, want tool name prefix", err)
	}
}

func TestWrap_RecoversPanic(t *testing.T) {
	registry := newTestRegistry(t)
	spec := ToolSpec{Name: "boom"}
	handler := wrap(registry, spec, func(context.Context, service.DetectArgs) (service.DetectResult, error) {
		panic("test panic")
	})

	_, _, err := handler(context.Background(), nil, service.DetectArgs{Identifier: "1"})
	if err == nil {
		t.Fatal("expected panic to surface as an error")
	}
	if err.Error() != "boom failed: internal error" {
		t.Errorf("error = %q, want %q", err, "boom failed: internal error")
	}
}

func TestRecoverPanic(t *testing.T) {
	registry := newTestRegistry(t)

	var err error
	func() {
		defer registry.recoverPanic("test_tool", &err)
		panic("test panic")
	}()
	if err == nil {
		t.Error("recoverPanic should set the error")
	}

	// A nil destination is allowed.
	func() {
		defer registry.recoverPanic("test_tool", nil)
		panic(errors.New("test panic"))
	}()
}

func TestLogExecution(t *testing.T) {
	registry := newTestRegistry(t)
	spec := ToolSpec{Name: "test_tool", Category: "compute"}

	registry.logExecution(spec,
		service.ComputeArgs{Scheme: "cpf", Base: "529982247", Variant: "normal"},
		service.ComputeResult{CheckDigits: "25", Issuable: true})
	registry.logExecution(spec,
		service.ValidateArgs{Scheme: "cpf", Identifier: "52998224725"},
		identifier.Result{Valid: false, Reason: identifier.ReasonMismatch})
	registry.logExecution(spec,
		service.ValidateBatchArgs{Scheme: "cpf", Identifiers: []string{"1", "2"}},
		service.ValidateBatchResult{ValidCount: 1, InvalidCount: 1})
	registry.logExecution(spec, service.DetectArgs{Identifier: "1"}, service.DetectResult{})
	registry.logExecution(spec, service.ListSchemesArgs{}, service.ListSchemesResult{})
	registry.logExecution(spec, "unknown", 42)
}

func TestRegisterAll(t *testing.T) {
	registry := newTestRegistry(t)
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	registry.RegisterAll(server)

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	list, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(list.Tools) != len(AllTools) {
		t.Errorf("registered %d tools, want %d", len(list.Tools), len(AllTools))
	}

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "checkdigit_compute",
		Arguments: map[string]any{"scheme": "cnpj", "base": "11.222.333/0001"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("checkdigit_compute returned a tool error: %+v", res.Content)
	}

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "checkdigit_compute",
		Arguments: map[string]any{"scheme": "cpf", "base": "12a"},
	})
	if err == nil && !res.IsError {
		t.Error("expected a tool error for non-digit input")
	}
}

func TestAllToolsNotEmpty(t *testing.T) {
	if len(AllTools) == 0 {
		t.Error("AllTools should not be empty")
	}

	seen := map[string]bool{}
	for i, spec := range AllTools {
		if spec.Name == "" {
			t.Errorf("Tool %d has empty Name", i)
		}
		if seen[spec.Name] {
			t.Errorf("Tool %s is defined twice", spec.Name)
		}
		seen[spec.Name] = true
		if spec.Method == "" {
			t.Errorf("Tool %s has empty Method", spec.Name)
		}
		if spec.Description == "" {
			t.Errorf("Tool %s has empty Description", spec.Name)
		}
		if spec.Category == "" {
			t.Errorf("Tool %s has empty Category", spec.Name)
		}
		if !spec.ReadOnly || spec.OpenWorld {
			t.Errorf("Tool %s should be read-only and closed-world", spec.Name)
		}
	}
}

func TestToolSpecMethods(t *testing.T) {
	knownMethods := map[string]bool{
		"Compute":       true,
		"Complete":      true,
		"Explain":       true,
		"Validate":      true,
		"ValidateBatch": true,
		"Detect":        true,
		"ListSchemes":   true,
	}

	for _, spec := range AllTools {
		if !knownMethods[spec.Method] {
			t.Errorf("Tool %s has unknown method: %s", spec.Name, spec.Method)
		}
	}
}

func TestToolsByCategory(t *testing.T) {
	tests := []struct {
		category string
		want     int
	}{
		{"compute", 3},
		{"validation", 2},
		{"discovery", 2},
		{"unknown", 0},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got := ToolsByCategory(tt.category)
			if len(got) != tt.want {
				t.Errorf("ToolsByCategory(%q) = %d tools, want %d", tt.category, len(got), tt.want)
			}
			for _, tool := range got {
				if tool.Category != tt.category {
					t.Errorf("Tool %s has category %s, expected %s", tool.Name, tool.Category, tt.category)
				}
			}
		})
	}
}
