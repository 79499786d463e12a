package geo

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rendis/quakemap/internal/model"
)

// Resolve finds the country for a selection key.
//
// The stable ID is tried first; sentinel IDs never match. Otherwise the first
// country in collection order whose display name equals key is returned.
// The ANY sentinel is a reset signal and must be intercepted by the caller.
func Resolve(countries []model.Country, key string) (model.Country, bool) {
	key = strings.TrimSpace(key)
	if key == "" || key == model.AnyCountry {
		return model.Country{}, false
	}
	if key != model.SentinelID {
		for _, c := range countries {
			if c.ID == key {
				return c, true
			}
		}
	}
	for _, c := range countries {
		if c.Name == key {
			return c, true
		}
	}
	return model.Country{}, false
}

// Selectable returns the countries a user may pick from, sorted by name.
// Sentinel entries stay in the backing collection but are left out here.
func Selectable(countries []model.Country) []model.Country {
	out := make([]model.Country, 0, len(countries))
	for _, c := range countries {
		if c.Selectable() {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Suggest returns up to limit selectable countries whose name contains query
// (ignoring case and accents) or whose ID equals it.
func Suggest(countries []model.Country, query string, limit int) []model.Country {
	raw := strings.TrimSpace(query)
	if raw == "" {
		return nil
	}
	q := Normalize(raw)

	var matches []model.Country
	for _, c := range countries {
		if !c.Selectable() {
			continue
		}
		if strings.EqualFold(c.ID, raw) || strings.Contains(Normalize(c.Name), q) {
			matches = append(matches, c)
			if limit > 0 && len(matches) >= limit {
				break
			}
		}
	}
	return matches
}

// Normalize removes accents/diacritics and lowercases text for fuzzy matching.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	result, _, _ := transform.String(t, strings.ToLower(s))
	return result
}
