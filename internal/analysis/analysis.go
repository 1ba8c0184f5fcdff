// Package analysis routes complaints to departments by comparing the free-text
// complaint category with the categories each department handles.
package analysis

import (
	"civicdesk/backend/internal/models"
	"strings"
	"unicode"
)

const exactMatchScore = 100

// MatchDepartment returns the department whose categories best match category,
// or nil when nothing matches. An exact (case-insensitive) match wins; otherwise
// the department sharing the most words with the category is chosen, first one
// on ties.
func MatchDepartment(category string, departments []models.Department) *models.Department {
	wanted := normalize(category)
	if wanted == "" {
		return nil
	}
	wantedWords := words(wanted)

	var best *models.Department
	bestScore := 0
	for i := range departments {
		score := 0
		for _, c := range departments[i].Categories {
			if s := matchScore(wanted, wantedWords, c); s > score {
				score = s
			}
		}
		if score > bestScore {
			best, bestScore = &departments[i], score
		}
	}
	return best
}

func matchScore(wanted string, wantedWords map[string]struct{}, candidate string) int {
	c := normalize(candidate)
	if c == "" {
		return 0
	}
	if c == wanted {
		return exactMatchScore
	}
	score := 0
	for w := range words(c) {
		if _, ok := wantedWords[w]; ok {
			score++
		}
	}
	return score
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// words splits on non-letters, drops short words and a plural "s".
func words(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) }) {
		if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
			w = strings.TrimSuffix(w, "s")
		}
		if len(w) < 3 || w == "and" || w == "the" {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}
