// Package domain holds the core site model: website normalization,
// collection-name derivation, and request validation.
package domain

import (
	"net/url"
	"strings"
)

// CollectionPrefix marks every per-site collection this service owns.
// The administrative sweep only touches collections carrying it.
const CollectionPrefix = "Website_"

// maxCollectionName bounds derived collection names.
const maxCollectionName = 50

// NormalizeWebsite trims the input and defaults the scheme to https://
// when none is present. Returns a validation error on empty input.
func NormalizeWebsite(website string) (string, error) {
	w := strings.TrimSpace(website)
	if w == "" {
		return "", NewValidationError("website", website, ErrEmptyWebsite)
	}
	if !strings.HasPrefix(w, "http://") && !strings.HasPrefix(w, "https://") {
		w = "https://" + w
	}
	return w, nil
}

// ValidateQuery rejects empty or whitespace-only query text.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return NewValidationError("query", query, ErrEmptyQuery)
	}
	return nil
}

// CollectionName derives the per-site collection name from a normalized
// website URL. Pure function: the same origin always yields the same name.
// The result keeps only [A-Za-z0-9_] from the host, starts with an
// alphabetic character, and is at most 50 characters.
func CollectionName(normalized string) string {
	host := ""
	if u, err := url.Parse(normalized); err == nil {
		host = u.Host
	}

	var b strings.Builder
	for _, r := range host {
		switch {
		case r == '.' || r == '-':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || !isAlpha(name[0]) {
		name = "website_" + name
	}
	name = CollectionPrefix + name
	if len(name) > maxCollectionName {
		name = name[:maxCollectionName]
	}
	return name
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
