package enums

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PackType identifies the retail pack size a sale line was sold in.
type PackType string

const (
	PackType1Kg  PackType = "1kg"
	PackTypeHalf PackType = "0.5kg"
)

var validPackTypes = []PackType{
	PackType1Kg,
	PackTypeHalf,
}

// String implements fmt.Stringer.
func (p PackType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PackType.
func (p PackType) IsValid() bool {
	for _, candidate := range validPackTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// UnitWeight returns the stock weight one unit of this pack removes from a
// product's stock level, in kilograms.
func (p PackType) UnitWeight() decimal.Decimal {
	if p == PackTypeHalf {
		return decimal.NewFromFloat(0.5)
	}
	return decimal.NewFromInt(1)
}

// ParsePackType converts raw input into a PackType.
func ParsePackType(value string) (PackType, error) {
	for _, candidate := range validPackTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pack type %q", value)
}
