package team

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

// maxSlugBase leaves room for a numeric suffix inside a 63 character label.
const maxSlugBase = 55

// fallbackSlug is used when a name has no usable characters.
const fallbackSlug = "team"

// Slugify normalizes a team name into a DNS-1123 label: lowercase ASCII
// letters and digits separated by single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}

	slug := b.String()
	if len(slug) > maxSlugBase {
		slug = strings.TrimRight(slug[:maxSlugBase], "-")
	}
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// slugCandidate returns the n-th candidate for base: base itself, then
// base-2, base-3, and so on.
func slugCandidate(base string, n int) string {
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

// sameBase reports whether slug is base or one of its numbered candidates.
func sameBase(slug, base string) bool {
	if slug == base {
		return true
	}
	rest, ok := strings.CutPrefix(slug, base+"-")
	if !ok || rest == "" || rest[0] == '0' {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validateSlug(slug string) error {
	if errs := validation.IsDNS1123Label(slug); len(errs) > 0 {
		return fmt.Errorf("invalid slug %q: %s", slug, strings.Join(errs, "; "))
	}
	return nil
}
