// Package resolve maps names a farmer used in chat to catalog entries,
// using edit similarity with per-entity rules.
package resolve

import (
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

const (
	nameScoreCutoff       = 80
	ingredientScoreCutoff = 90
)

type scoredName struct {
	Name  string
	Score int
}

// matchNames scores query against every choice and returns the choices
// at or above cutoff, best first. Choices are compared case-folded.
func matchNames(query string, choices []string, cutoff int) []scoredName {
	var out []scoredName
	for _, choice := range choices {
		score := fuzzy.WRatio(strings.ToLower(query), strings.ToLower(choice))
		if score >= cutoff {
			out = append(out, scoredName{Name: choice, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
