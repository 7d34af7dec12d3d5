// Command benchmark compares raw engine throughput with the cached service
// and measures batch validation at several concurrency limits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/olgasafonova/checkdigit-mcp-server/internal/checkdigit"
	"github.com/olgasafonova/checkdigit-mcp-server/internal/identifier"
	"github.com/olgasafonova/checkdigit-mcp-server/internal/service"
)

// bases returns n distinct bases of the scheme's canonical length.
func bases(s checkdigit.Scheme, n int) []string {
	width := s.Length
	if width == 0 {
		width = 9
	}
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%0*d", width, (i*7919+1)%1_000_000_000)
		if len(out[i]) > width {
			out[i] = out[i][len(out[i])-width:]
		}
	}
	return out
}

// measureEngine runs a fresh engine per base, no caching.
func measureEngine(s checkdigit.Scheme, input []string) time.Duration {
	start := time.Now()
	for _, b := range input {
		if _, err := s.Compute(b); err != nil {
			fmt.Printf("   Error: %v\n", err)
			break
		}
	}
	return time.Since(start)
}

// measureService computes every base through the service twice.
func measureService(ctx context.Context, svc *service.Service, s checkdigit.Scheme, input []string) (cold, warm time.Duration) {
	run := func() time.Duration {
		start := time.Now()
		for _, b := range input {
			if _, err := svc.ComputeMCP(ctx, service.ComputeArgs{Scheme: s.Name, Base: b}); err != nil {
				fmt.Printf("   Error: %v\n", err)
				break
			}
		}
		return time.Since(start)
	}
	return run(), run()
}

func measureBatch(ctx context.Context, s checkdigit.Scheme, ids []string, limit int) (time.Duration, int) {
	start := time.Now()
	results, err := identifier.ValidateBatch(ctx, s, ids, limit, nil)
	if err != nil {
		fmt.Printf("   Error: %v\n", err)
		return 0, 0
	}
	valid := 0
	for _, r := range results {
		if r.Valid {
			valid++
		}
	}
	return time.Since(start), valid
}

func perOp(d time.Duration, n int) time.Duration {
	if n == 0 {
		return 0
	}
	return d / time.Duration(n)
}

func main() {
	schemeName := flag.String("scheme", "cnpj", "Scheme to benchmark")
	n := flag.Int("n", 20000, "Number of distinct bases")
	flag.Parse()

	s, err := checkdigit.LookupScheme(*schemeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Check Digit MCP Server - Performance Measurements")
	fmt.Println("=================================================")
	fmt.Printf("Scheme: %s, bases: %d\n\n", s.Name, *n)

	ctx := context.Background()
	input := bases(s, *n)

	fmt.Println("1. Engine (no cache):")
	engine := measureEngine(s, input)
	fmt.Printf("   Total: %v, per op: %v\n\n", engine, perOp(engine, len(input)))

	fmt.Println("2. Service (result cache):")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := service.New(service.Options{CacheMaxEntries: *n, BatchConcurrency: 8}, logger)
	defer svc.Close()
	cold, warm := measureService(ctx, svc, s, input)
	fmt.Printf("   Cold: %v, per op: %v\n", cold, perOp(cold, len(input)))
	fmt.Printf("   Warm: %v, per op: %v\n", warm, perOp(warm, len(input)))
	if warm > 0 {
		fmt.Printf("   Speedup: %.1fx\n", float64(cold)/float64(warm))
	}
	stats := svc.CacheStats()
	fmt.Printf("   Cache: %d entries, %d hits, %d misses, %d evictions\n\n",
		stats.Size, stats.Hits, stats.Misses, stats.Evictions)

	fmt.Println("3. Batch validation:")
	ids := make([]string, 0, len(input))
	for _, b := range input {
		r, err := s.Compute(b)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if id, err := r.Formatted(); err == nil {
			ids = append(ids, id)
		}
	}
	for _, limit := range []int{1, 4, 16, 0} {
		label := strconv.Itoa(limit)
		if limit == 0 {
			label = "unbounded"
		}
		d, valid := measureBatch(ctx, s, ids, limit)
		fmt.Printf("   concurrency %-9s %v (%d valid)\n", label+":", d, valid)
	}
}
