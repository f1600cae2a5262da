package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	minSearchQueryLen = 2
	maxSearchResults  = 10
)

// Location is a reference record offered by the location autocomplete.
type Location struct {
	Name     string `json:"name" yaml:"name"`
	District string `json:"district" yaml:"district"`
	State    string `json:"state" yaml:"state"`
	Pincode  string `json:"pincode" yaml:"pincode"`
	Type     string `json:"type" yaml:"type"` // "village" or "city"
}

// SearchLocations returns up to 10 locations whose name, district, or state
// contains query, case-insensitively, in table order. Queries shorter than two
// characters match nothing. The result is never nil.
func SearchLocations(locations []Location, query string) []Location {
	matches := make([]Location, 0)
	if utf8.RuneCountInString(query) < minSearchQueryLen {
		return matches
	}

	q := strings.ToLower(query)
	for _, loc := range locations {
		if containsFold(loc.Name, q) || containsFold(loc.District, q) || containsFold(loc.State, q) {
			matches = append(matches, loc)
			if len(matches) == maxSearchResults {
				break
			}
		}
	}
	return matches
}

func containsFold(field, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(field), lowerQuery)
}
