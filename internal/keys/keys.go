package keys

import "strings"

const (
	// Separator joins key segments.
	Separator = ":"
	// Wildcard is the final segment of a prefix pattern.
	Wildcard = "*"
)

// Valid reports whether key conforms to the grammar: non-empty, printable
// ASCII, colon-delimited with no empty segments and no wildcard segments.
func Valid(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c < 0x21 || c > 0x7e {
			return false
		}
	}
	for _, seg := range strings.Split(key, Separator) {
		if seg == "" || seg == Wildcard {
			return false
		}
	}
	return true
}

// IsPattern reports whether p is a prefix pattern rather than an exact key.
func IsPattern(p string) bool {
	return p == Wildcard || strings.HasSuffix(p, Separator+Wildcard)
}

// Prefix returns the literal prefix of a pattern, without the wildcard
// segment. Prefix("meter:42:*") == "meter:42". Prefix of the bare wildcard
// is the empty string, which matches every key.
func Prefix(p string) string {
	if p == Wildcard {
		return ""
	}
	return strings.TrimSuffix(p, Separator+Wildcard)
}

// MatchesPrefix reports whether key falls under prefix segment-wise:
// the key is the prefix itself or extends it by whole segments.
func MatchesPrefix(key, prefix string) bool {
	if prefix == "" {
		return true
	}
	if key == prefix {
		return true
	}
	return strings.HasPrefix(key, prefix+Separator)
}

// ValidPattern reports whether p is a well-formed exact key or prefix pattern.
func ValidPattern(p string) bool {
	if p == Wildcard {
		return true
	}
	if IsPattern(p) {
		return Valid(Prefix(p))
	}
	return Valid(p)
}
