package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefineQueryForClip(t *testing.T) {
	// Terse queries get the photo template; already-visual queries pass
	// through unchanged.
	assert.Equal(t, "An interior design photo of oak cabinets", refineQueryForClip("oak cabinets"))
	assert.Equal(t, "a photo of a modern kitchen", refineQueryForClip("a photo of a modern kitchen"))
	assert.Equal(t, "Interior with walnut shelving", refineQueryForClip("Interior with walnut shelving"))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0, 0}, []float32{1, 0, 0}), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0, 0}, []float32{0, 1, 0}), 1e-6)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	// The epsilon in the denominator keeps this finite.
	score := cosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3})
	assert.Equal(t, 0.0, score)
}

func TestCosineSimilarityMismatchedLengths(t *testing.T) {
	// Only the overlapping prefix is compared.
	score := cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0, 0})
	assert.InDelta(t, 1.0, score, 1e-6)
}

func TestDisplayImagePath(t *testing.T) {
	assert.Equal(t, "images/kitchen_p3_i0.jpg",
		displayImagePath(`Data\processed\images/kitchen_p3_i0.jpg`))
	assert.Equal(t, "images/bedroom_p1_i0.jpg",
		displayImagePath("Data/processed/images/bedroom_p1_i0.jpg"))
	assert.Equal(t, "no_prefix.jpg", displayImagePath("no_prefix.jpg"))
}

func TestPDFLink(t *testing.T) {
	link := pdfLink("http://localhost:8000", `Data\kitchen_data\book.pdf`, 7)
	assert.Equal(t, "http://localhost:8000/data/kitchen_data/book.pdf#page=7", link)
}

func TestPDFLinkIncompleteProvenance(t *testing.T) {
	assert.Empty(t, pdfLink("http://localhost:8000", "", 3))
	assert.Empty(t, pdfLink("http://localhost:8000", "Data/book.pdf", 0))
}
