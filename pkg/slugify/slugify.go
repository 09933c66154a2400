// Package slugify builds and validates invitation slugs.
package slugify

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	MinLength = 3
	MaxLength = 60
)

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9]+`)
	validSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// reserved collides with top-level routes or reads as official.
var reserved = map[string]bool{
	"admin": true, "api": true, "auth": true, "dashboard": true, "panel": true, "static": true,
	"uploads": true, "pricing": true, "templates": true, "login": true, "register": true,
	"logout": true, "home": true, "nika": true, "www": true, "favicon.ico": true, "robots.txt": true, "health": true,
}

// Make lowercases s, strips diacritics and joins words with single dashes.
func Make(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	out := nonSlug.ReplaceAllString(strings.ToLower(folded), "-")
	out = strings.Trim(out, "-")
	if len(out) > MaxLength {
		out = strings.TrimRight(out[:MaxLength], "-")
	}
	return out
}

func IsReserved(s string) bool {
	return reserved[strings.ToLower(s)]
}

// Valid reports whether s can be used as a public invitation path.
func Valid(s string) bool {
	return len(s) >= MinLength && len(s) <= MaxLength && validSlug.MatchString(s) && !IsReserved(s)
}
