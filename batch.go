package symdiff

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DeriveAll evaluates the derivative of n at every point. The derivative is
// computed once and shared read-only by the workers. The first failure
// cancels the remaining points.
func (e *Engine) DeriveAll(ctx context.Context, n *Node, variable string, points []Bindings) ([]float64, error) {
	if variable == "" {
		variable = DefaultVariable
	}
	d, err := e.DiffContext(ctx, n, variable)
	if err != nil {
		return nil, err
	}
	results := make([]float64, len(points))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, p := range points {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := deriveAt(n, d, p)
			if err != nil {
				return fmt.Errorf("point %d: %w", i, err)
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	e.logger.Debug("derived batch",
		zap.String("variable", variable),
		zap.Int("points", len(points)),
		zap.Int("workers", e.workers),
	)
	return results, nil
}
