package retrieval

import (
	"fmt"
	"math"
	"strings"
)

// visualHints mark a query as already descriptive enough for CLIP; anything
// else gets the photo template prepended, since CLIP text/image alignment
// degrades on terse queries.
var visualHints = []string{"photo", "image", "design", "interior", "look"}

const clipQueryTemplate = "An interior design photo of "

func refineQueryForClip(query string) string {
	q := strings.ToLower(query)
	for _, hint := range visualHints {
		if strings.Contains(q, hint) {
			return query
		}
	}
	return clipQueryTemplate + query
}

// cosineSimilarity recomputes similarity from raw vectors; stored scores are
// never trusted. The epsilon keeps a zero vector from dividing by zero.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + 1e-8)
}

// displayImagePath normalizes a stored path to the store-relative form the
// frontend mounts, stripping any prefix before the images/ segment.
func displayImagePath(path string) string {
	clean := strings.ReplaceAll(path, "\\", "/")
	if idx := strings.LastIndex(clean, "images/"); idx >= 0 {
		return "images/" + clean[idx+len("images/"):]
	}
	return clean
}

// pdfLink builds a deep link to the source document at the cited page, or
// returns empty when the provenance is incomplete.
func pdfLink(baseURL, pdfPath string, page int) string {
	if pdfPath == "" || page <= 0 {
		return ""
	}
	clean := strings.ReplaceAll(pdfPath, "\\", "/")
	clean = strings.ReplaceAll(clean, "Data/", "")
	return fmt.Sprintf("%s/data/%s#page=%d", baseURL, clean, page)
}
