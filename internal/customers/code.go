package customers

import "strings"

// DeriveCode builds the cross-device identity key for a customer. Two
// records on different devices describe the same customer iff their codes
// match, so the derivation must be stable: lowercase, whitespace stripped,
// parts joined with underscores, empty parts dropped.
func DeriveCode(name, address, mobile string) string {
	parts := make([]string, 0, 3)
	for _, raw := range []string{name, address, mobile} {
		if part := normalizePart(raw); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "_")
}

// MobileFromCode recovers a phone number from a derived code when the
// trailing segment is numeric. Used when a sale arrives for a customer the
// receiving device has never registered.
func MobileFromCode(code string) string {
	idx := strings.LastIndex(code, "_")
	if idx < 0 || idx == len(code)-1 {
		return ""
	}
	tail := code[idx+1:]
	for _, r := range tail {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return tail
}

func normalizePart(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
