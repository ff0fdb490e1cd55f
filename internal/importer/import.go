package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/blackwell-systems/stockrank/internal/store"
)

// ProductWriter persists imported products. *store.Store implements it.
type ProductWriter interface {
	InsertProduct(ctx context.Context, p *store.Product) error
}

// Import parses a price list and inserts every valid product. The progress
// callback, when set, is called after each insert.
func Import(ctx context.Context, w ProductWriter, r io.Reader, opts Options, progress func(done, total int)) (*Result, error) {
	result, err := Parse(r, opts)
	if err != nil {
		return nil, err
	}

	for i, p := range result.Products {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := w.InsertProduct(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to import %s: %w", p.Name, err)
		}
		if progress != nil {
			progress(i+1, len(result.Products))
		}
	}

	return result, nil
}
