package check

import "regexp"

// addressPattern accepts the common case and rejects obviously broken input.
// It is not RFC 5322 complete: quoted local parts, IP literals and
// non-ASCII addresses are rejected.
var addressPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// FormatChecker performs the purely syntactic address check.
type FormatChecker struct{}

func NewFormatChecker() *FormatChecker {
	return &FormatChecker{}
}

// Check reports whether address matches the accepted address shape.
func (c *FormatChecker) Check(address string) bool {
	return addressPattern.MatchString(address)
}
