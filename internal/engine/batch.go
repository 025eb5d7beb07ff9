package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/confql/internal/ir"
	"github.com/roach88/confql/internal/shape"
)

// Request is one field to resolve.
type Request struct {
	Address []string
	Shape   shape.Shape
}

// Result is the outcome of one Request.
type Result struct {
	Address []string
	QueryID string
	Value   ir.Value
	Err     error
}

// ResolveFields resolves independent requests in parallel, at most the
// configured parallelism at a time. Results are in request order.
//
// A failing request never cancels the others; only ctx does.
func (e *Engine) ResolveFields(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, len(reqs))

	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i, req := range reqs {
		g.Go(func() error {
			v, queryID, err := e.resolve(ctx, req.Address, req.Shape)
			results[i] = Result{
				Address: req.Address,
				QueryID: queryID,
				Value:   v,
				Err:     err,
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// RequestFor builds a Request for address using the field shape the
// schema declares there.
func RequestFor(schema *shape.Schema, address []string) (Request, error) {
	s, err := schema.Lookup(address)
	if err != nil {
		return Request{}, err
	}
	return Request{Address: address, Shape: s}, nil
}
