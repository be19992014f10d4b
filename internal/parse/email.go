package parse

import "strings"

// Email is the internal representation of an address split for lookup.
// The check/ packages receive parts of it as parameters.
type Email struct {
	Raw    string // the original input, untouched
	Local  string // the part before the first @
	Domain string // the part after the first @, as given
	HasAt  bool   // false if Raw contains no @ at all
}

// NewEmail splits raw at its first @. Case and whitespace are preserved:
// callers treat the address as an opaque key.
func NewEmail(raw string) Email {
	local, domain, ok := strings.Cut(raw, "@")
	if !ok {
		return Email{Raw: raw}
	}
	return Email{Raw: raw, Local: local, Domain: domain, HasAt: true}
}

// Lines splits line-delimited input into trimmed, non-empty addresses.
func Lines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
