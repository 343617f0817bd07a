package retrieval

import (
	"strings"

	"github.com/remodela/remodela-backend/internal/catalog"
)

// categoryOrder is the classification policy: synonym sets are checked in
// order and the first match wins, so a query naming both categories
// classifies as kitchen.
var categoryOrder = []struct {
	category catalog.Category
	synonyms []string
}{
	{catalog.CategoryKitchen, []string{"kitchen", "cooking", "pantry", "hob", "cabinet", "dining", "sink"}},
	{catalog.CategoryBedroom, []string{"bedroom", "bed", "sleep", "wardrobe", "queen", "king", "mattress", "dresser"}},
}

// relevanceTerms short-circuits the guardrail LLM call for obviously
// in-scope queries: every category synonym plus generic remodeling terms.
var relevanceTerms = buildRelevanceTerms()

func buildRelevanceTerms() []string {
	terms := []string{"design", "remodel", "interior", "catalog"}
	for _, group := range categoryOrder {
		terms = append(terms, group.synonyms...)
	}
	return terms
}

var stopWords = map[string]bool{
	"show": true, "me": true, "find": true, "some": true, "the": true,
	"a": true, "an": true, "with": true, "for": true, "modern": true,
	"design": true, "designs": true, "ideas": true, "of": true, "in": true,
	"is": true, "where": true, "can": true, "i": true, "get": true,
}

// Classify maps a free-text query to a catalog category. No match means no
// categorical filter is applied downstream.
func Classify(query string) catalog.Category {
	q := strings.ToLower(query)
	for _, group := range categoryOrder {
		if containsAny(q, group.synonyms) {
			return group.category
		}
	}
	return catalog.CategoryNone
}

// ExtractKeywords pulls the query tokens worth matching in the keyword
// fallback: lower-cased, punctuation-stripped, stop words and short tokens
// removed, category synonyms removed. If synonym removal empties the set the
// pre-removal set is kept, so a fallback never runs on zero keywords when
// the query had usable tokens.
func ExtractKeywords(query string) []string {
	q := strings.ToLower(query)
	q = strings.ReplaceAll(q, "?", "")
	q = strings.ReplaceAll(q, ".", "")

	var keywords []string
	for _, w := range strings.Fields(q) {
		if stopWords[w] || len(w) <= 2 {
			continue
		}
		keywords = append(keywords, w)
	}

	var specific []string
	for _, w := range keywords {
		if !isCategorySynonym(w) {
			specific = append(specific, w)
		}
	}
	if len(specific) == 0 {
		return keywords
	}
	return specific
}

func isCategorySynonym(word string) bool {
	for _, group := range categoryOrder {
		for _, s := range group.synonyms {
			if word == s {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
