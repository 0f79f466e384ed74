package invoice

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
)

// Each salesman's terminal numbers its invoices inside a disjoint range
// derived from the first letter of the salesman identifier: 'A' gets
// 10001-19999, 'B' gets 20001-29999, and so on. The ranges keep terminals
// that have never synced from colliding with each other.
const rangeWidth = 10000

// MaxLookup reports the highest invoice number locally known for a
// salesman, across both locally recorded and imported sales.
type MaxLookup interface {
	MaxInvoiceNumber(ctx context.Context, salesmanID string) (int64, error)
}

// Authority assigns the next invoice number for a terminal.
type Authority struct {
	sales MaxLookup
}

// NewAuthority constructs an invoice numbering authority.
func NewAuthority(sales MaxLookup) (*Authority, error) {
	if sales == nil {
		return nil, fmt.Errorf("sales lookup required")
	}
	return &Authority{sales: sales}, nil
}

// Base returns the start of the invoice range for the salesman identifier.
// Identifiers are validated at the login boundary; anything without a
// leading ASCII letter is rejected here rather than mapped to a guess.
func Base(salesmanID string) (int64, error) {
	id := strings.TrimSpace(salesmanID)
	if id == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "salesman id is required")
	}
	first := id[0]
	switch {
	case first >= 'a' && first <= 'z':
		first -= 'a' - 'A'
	case first >= 'A' && first <= 'Z':
	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("salesman id %q must start with a letter", salesmanID))
	}
	return int64(first-'A'+1) * rangeWidth, nil
}

// Next returns the invoice number to assign to the salesman's next sale.
// It takes the maximum over every locally known sale for the salesman, not
// just the latest insert, so numbers stay monotonic even after an import
// injects higher-numbered sales or after a local reset.
func (a *Authority) Next(ctx context.Context, salesmanID string) (int64, error) {
	base, err := Base(salesmanID)
	if err != nil {
		return 0, err
	}

	max, err := a.sales.MaxInvoiceNumber(ctx, salesmanID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: max invoice number")
	}
	if max < base {
		max = base
	}
	return max + 1, nil
}
