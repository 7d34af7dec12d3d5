package identifier

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/olgasafonova/checkdigit-mcp-server/internal/checkdigit"
)

// ValidateBatch validates inputs concurrently, running at most limit
// validations at a time. Results keep the order of inputs. It returns early
// with the context error when ctx is cancelled. A nil compute runs a fresh
// engine per input.
func ValidateBatch(ctx context.Context, s checkdigit.Scheme, inputs []string, limit int, compute ComputeFunc) ([]Result, error) {
	results := make([]Result, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, raw := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = ValidateUsing(s, raw, compute)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
