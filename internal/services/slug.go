package services

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"
)

// slugify turns a title into a URL-safe slug: lowercase, runs of
// non-alphanumeric characters collapsed to single hyphens.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		slug = "article"
	}
	return slug
}

// slugSuffix returns a short random hex string used to disambiguate slug
// collisions.
func slugSuffix() string {
	buf := make([]byte, 3)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
