// Package slug derives URL-safe identifiers from titles and resolves
// collisions with a bounded numeric suffix.
package slug

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/chyrplite/core/internal/pkg/apierror"
)

// maxAttempts bounds collision retries so a pathological slug space cannot
// loop forever.
const maxAttempts = 50

// Make lowercases the input and collapses every run of non-alphanumeric
// characters into a single hyphen.
func Make(text string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// Unique returns base, or the first suffixed variant (base-2, base-3, ...)
// for which exists reports false. Exhausting the attempt budget is a
// conflict, never an infinite loop.
func Unique(base string, exists func(candidate string) (bool, error)) (string, error) {
	if base == "" {
		base = "untitled"
	}
	candidate := base
	for i := 0; i < maxAttempts; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i+2)
	}
	return "", apierror.Newf(apierror.KindConflict, "could not find a free slug for %q", base)
}
