// Package filter classifies content into categories and derives the
// visible subset of a collection from a category filter and a free-text
// title query. All functions are pure; the engine recomputes from the full
// list on every call.
package filter

import (
	"strings"

	"synapse/pkg/domain"
)

// IsYouTube reports whether the item belongs to the youtube category,
// either by explicit type tag or by link substring.
func IsYouTube(c domain.Content) bool {
	return c.Type == domain.TypeYouTube ||
		strings.Contains(c.Link, "youtube.com") ||
		strings.Contains(c.Link, "youtu.be")
}

// IsTwitter reports whether the item belongs to the twitter category.
func IsTwitter(c domain.Content) bool {
	return c.Type == domain.TypeTwitter ||
		strings.Contains(c.Link, "twitter.com") ||
		strings.Contains(c.Link, "x.com")
}

// IsURL reports whether the item belongs to the url category. Besides the
// explicit "url"/"link" tags, this is the negative catch-all: anything
// whose link matches none of the youtube/twitter substrings.
func IsURL(c domain.Content) bool {
	if c.Type == domain.TypeURL || c.Type == domain.TypeLink {
		return true
	}
	return !strings.Contains(c.Link, "youtube.com") &&
		!strings.Contains(c.Link, "youtu.be") &&
		!strings.Contains(c.Link, "twitter.com") &&
		!strings.Contains(c.Link, "x.com")
}

// Matches reports category membership for a single item.
func Matches(c domain.Content, category domain.FilterCategory) bool {
	switch category {
	case domain.FilterYouTube:
		return IsYouTube(c)
	case domain.FilterTwitter:
		return IsTwitter(c)
	case domain.FilterURL:
		return IsURL(c)
	default:
		return true
	}
}

// Apply returns the visible subset for the given category filter and
// title query. The category filter runs first; the query is a trimmed,
// case-insensitive substring match against titles only.
func Apply(items []domain.Content, category domain.FilterCategory, query string) []domain.Content {
	filtered := items
	if category != "" && category != domain.FilterAll {
		filtered = make([]domain.Content, 0, len(items))
		for _, c := range items {
			if Matches(c, category) {
				filtered = append(filtered, c)
			}
		}
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return filtered
	}
	needle := strings.ToLower(query)
	out := make([]domain.Content, 0, len(filtered))
	for _, c := range filtered {
		if strings.Contains(strings.ToLower(c.Title), needle) {
			out = append(out, c)
		}
	}
	return out
}

// Counts computes per-category totals from the unfiltered list using the
// same membership predicates as Apply. Categories can overlap, so the
// three category counts need not sum to All.
func Counts(items []domain.Content) domain.ContentCounts {
	counts := domain.ContentCounts{All: len(items)}
	for _, c := range items {
		if IsYouTube(c) {
			counts.YouTube++
		}
		if IsTwitter(c) {
			counts.Twitter++
		}
		if IsURL(c) {
			counts.URL++
		}
	}
	return counts
}

// ParseCategory maps a query-string value onto a known category.
// Empty input means "all"; unknown values are rejected.
func ParseCategory(raw string) (domain.FilterCategory, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(domain.FilterAll):
		return domain.FilterAll, true
	case string(domain.FilterYouTube):
		return domain.FilterYouTube, true
	case string(domain.FilterTwitter):
		return domain.FilterTwitter, true
	case string(domain.FilterURL):
		return domain.FilterURL, true
	default:
		return "", false
	}
}
