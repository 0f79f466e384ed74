package invoice

import (
	"context"
	"testing"

	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
)

type fakeMaxLookup struct {
	max int64
	err error
}

func (f fakeMaxLookup) MaxInvoiceNumber(ctx context.Context, salesmanID string) (int64, error) {
	return f.max, f.err
}

func TestBase(t *testing.T) {
	cases := []struct {
		id   string
		want int64
	}{
		{"A", 10000},
		{"a", 10000},
		{"B", 20000},
		{"Z", 260000},
		{"AV", 10000},
	}
	for _, tc := range cases {
		got, err := Base(tc.id)
		if err != nil {
			t.Fatalf("Base(%q) returned error: %v", tc.id, err)
		}
		if got != tc.want {
			t.Fatalf("Base(%q) = %d, want %d", tc.id, got, tc.want)
		}
	}
}

func TestBaseRejectsInvalidIdentifiers(t *testing.T) {
	for _, id := range []string{"", "  ", "9A", "_x"} {
		_, err := Base(id)
		if err == nil {
			t.Fatalf("expected Base(%q) to fail", id)
		}
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %q, got %v", id, err)
		}
	}
}

func TestNextFallsBackToBase(t *testing.T) {
	authority, err := NewAuthority(fakeMaxLookup{max: 0})
	if err != nil {
		t.Fatalf("new authority: %v", err)
	}

	next, err := authority.Next(context.Background(), "A")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next != 10001 {
		t.Fatalf("expected first invoice 10001, got %d", next)
	}
}

func TestNextTakesMaxOverKnownSales(t *testing.T) {
	authority, err := NewAuthority(fakeMaxLookup{max: 10042})
	if err != nil {
		t.Fatalf("new authority: %v", err)
	}

	next, err := authority.Next(context.Background(), "a")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next != 10043 {
		t.Fatalf("expected 10043, got %d", next)
	}
}

func TestRangeDisjointness(t *testing.T) {
	seen := map[int64]string{}
	for letter := byte('A'); letter <= 'Z'; letter++ {
		base, err := Base(string(letter))
		if err != nil {
			t.Fatalf("Base(%c): %v", letter, err)
		}
		if prev, ok := seen[base]; ok {
			t.Fatalf("base %d shared by %s and %c", base, prev, letter)
		}
		seen[base] = string(letter)

		// The full assignable range must stay inside the next base.
		if top := base + rangeWidth - 1; letter < 'Z' {
			nextBase, _ := Base(string(letter + 1))
			if top >= nextBase {
				t.Fatalf("range for %c overlaps %c", letter, letter+1)
			}
		}
	}
}
