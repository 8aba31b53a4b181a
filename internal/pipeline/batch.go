package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ProcessBatch runs each input through Process with bounded concurrency and
// returns the envelopes in input order. A store failure on any document
// cancels the remaining work and returns the first error.
func (p *Pipeline) ProcessBatch(ctx context.Context, inputs []Input) ([]*Envelope, error) {
	results := make([]*Envelope, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, in := range inputs {
		g.Go(func() error {
			env, err := p.Process(gctx, in)
			if err != nil {
				return err
			}
			results[i] = env
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
