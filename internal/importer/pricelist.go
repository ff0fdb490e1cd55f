// Package importer reads product price lists into catalogue records.
package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/blackwell-systems/stockrank/internal/store"
)

// Separator splits the fields of a price-list row.
const Separator = ";"

// minFields is the number of required fields: name, price, unit, category.
const minFields = 4

// ErrMalformedHeader is returned by Strict parsing when the first line does
// not look like a header.
var ErrMalformedHeader = errors.New("malformed price list header")

// Result holds the outcome of a price-list parse.
type Result struct {
	Products []*store.Product
	Skipped  int // rows dropped for an unparseable price or too few fields
}

// Options controls parsing.
type Options struct {
	// Strict requires the header line to have at least four fields.
	Strict bool
	Logger *slog.Logger
}

// Parse reads a semicolon-separated price list. The first line is a header
// and is skipped. Each row is name;price;unit;category[;sku]. Prices may use
// a comma or a dot as decimal separator.
//
// Rows with fewer than four fields are skipped silently. Rows with a price
// that cannot be parsed are skipped with a warning.
func Parse(r io.Reader, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	result := &Result{Products: []*store.Product{}}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")

		if lineNo == 1 {
			if opts.Strict && len(strings.Split(line, Separator)) < minFields {
				return nil, fmt.Errorf("line 1: %w", ErrMalformedHeader)
			}
			continue
		}

		parts := strings.Split(line, Separator)
		if len(parts) < minFields {
			if strings.TrimSpace(line) != "" {
				result.Skipped++
			}
			continue
		}

		price, err := ParsePrice(parts[1])
		if err != nil {
			logger.Warn("skipping row with invalid price",
				"line", lineNo,
				"row", line,
				"error", err)
			result.Skipped++
			continue
		}

		p := &store.Product{
			Name:      strings.TrimSpace(parts[0]),
			UnitPrice: price.InexactFloat64(),
			Unit:      strings.TrimSpace(parts[2]),
			Category:  strings.TrimSpace(parts[3]),
		}
		if len(parts) > minFields {
			p.SKU = strings.TrimSpace(parts[4])
		}
		result.Products = append(result.Products, p)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read price list: %w", err)
	}

	logger.Debug("parsed price list", "products", len(result.Products), "skipped", result.Skipped)
	return result, nil
}

// ParsePrice parses a decimal price written with either ',' or '.' as the
// decimal separator.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Decimal{}, errors.New("empty price")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return d, nil
}
