package store

import (
	"context"

	"github.com/remodela/remodela-backend/internal/catalog"
)

// Store is the document-store contract the retrieval engine depends on:
// vector similarity search over two independent vector spaces, keyword
// fallback search, and filtered sampling. All searches accept an optional
// category filter (catalog.CategoryNone means unfiltered).
type Store interface {
	// TextSearch runs similarity search over node text embeddings.
	TextSearch(ctx context.Context, vector []float32, category catalog.Category, limit int) ([]catalog.Node, error)

	// VisualSearch runs similarity search over per-image CLIP embeddings.
	// Returned refs carry the raw stored vector so callers can recompute
	// similarity instead of trusting a server-side score.
	VisualSearch(ctx context.Context, vector []float32, category catalog.Category, limit int) ([]catalog.ImageRef, error)

	// KeywordSearch matches any of the keywords against combined_text,
	// case-insensitively, ANDed with the category filter.
	KeywordSearch(ctx context.Context, keywords []string, category catalog.Category, limit int) ([]catalog.Node, error)

	// Sample fetches up to limit arbitrary nodes matching the filter.
	Sample(ctx context.Context, category catalog.Category, limit int) ([]catalog.Node, error)
}

// Writer is the ingestion-side contract. The serving path never writes.
type Writer interface {
	EnsureCollections(ctx context.Context, textDim, clipDim int) error
	UpsertNodes(ctx context.Context, nodes []catalog.Node) error
}
