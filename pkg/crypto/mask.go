package crypto

import (
	"strings"
	"unicode/utf8"
)

const maskRune = '*'

// MaskEmail hides most of an address for logging, keeping the first two
// characters of the local part and of the domain name plus the TLD.
//
//	MaskEmail("john.doe@example.com") == "jo******@ex*****.com"
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return maskKeep(email, 0)
	}

	name, tld, hasTLD := strings.Cut(domain, ".")
	masked := maskKeep(local, 2) + "@" + maskKeep(name, 2)
	if hasTLD {
		masked += "." + tld
	}
	return masked
}

// maskKeep replaces every rune after the first keep runes.
func maskKeep(s string, keep int) string {
	n := utf8.RuneCountInString(s)
	if n <= keep {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for _, r := range s {
		if i < keep {
			b.WriteRune(r)
		} else {
			b.WriteRune(maskRune)
		}
		i++
	}
	return b.String()
}
