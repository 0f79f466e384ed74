package enums

import "fmt"

// Table names one of the fixed device-local collections that the maintenance
// surface may inspect or purge. Keeping this a closed set avoids free-form
// string-keyed table dispatch.
type Table string

const (
	TableProducts  Table = "products"
	TableCustomers Table = "customers"
	TableSales     Table = "sales"
	TableStockLogs Table = "stockLogs"
)

var validTables = []Table{
	TableProducts,
	TableCustomers,
	TableSales,
	TableStockLogs,
}

// String implements fmt.Stringer.
func (t Table) String() string {
	return string(t)
}

// IsValid reports whether the value is a known Table.
func (t Table) IsValid() bool {
	for _, candidate := range validTables {
		if candidate == t {
			return true
		}
	}
	return false
}

// Tables returns every inspectable collection, in display order.
func Tables() []Table {
	out := make([]Table, len(validTables))
	copy(out, validTables)
	return out
}

// ParseTable converts raw input into a Table.
func ParseTable(value string) (Table, error) {
	for _, candidate := range validTables {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid table %q", value)
}
