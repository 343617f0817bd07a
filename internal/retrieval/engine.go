package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/remodela/remodela-backend/internal/catalog"
	"github.com/remodela/remodela-backend/internal/config"
	"github.com/remodela/remodela-backend/internal/llm"
)

// RefusalMessage is returned verbatim for off-topic queries; no retrieval
// runs in that case.
const RefusalMessage = "We provide only the remodel designs of kitchen and bedroom. " +
	"Please share your vision for your kitchen or bedroom!"

// noContextPlaceholder is the grounding context when nothing was retrieved.
// The answer composer's prompt relies on this exact string.
const noContextPlaceholder = "No specific catalog items found."

// DocumentStore is the slice of the document store the engine reads from.
type DocumentStore interface {
	TextSearch(ctx context.Context, vector []float32, category catalog.Category, limit int) ([]catalog.Node, error)
	VisualSearch(ctx context.Context, vector []float32, category catalog.Category, limit int) ([]catalog.ImageRef, error)
	KeywordSearch(ctx context.Context, keywords []string, category catalog.Category, limit int) ([]catalog.Node, error)
	Sample(ctx context.Context, category catalog.Category, limit int) ([]catalog.Node, error)
}

// Embedder produces the query-side embeddings.
type Embedder interface {
	TextEmbedding(ctx context.Context, text string) ([]float32, error)
	ClipTextEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Composer turns grounding context and a question into an answer. It never
// fails; generation problems surface as a fixed user-safe message.
type Composer interface {
	Compose(ctx context.Context, contextText, question string, history []llm.Message) string
}

// AskRequest is one retrieval request. SearchQuery, when set, is the
// standalone rewrite of a follow-up question: retrieval runs on it while
// answer generation stays conditioned on Question and History.
type AskRequest struct {
	Question    string
	SearchQuery string
	History     []llm.Message
}

// Engine orchestrates the multi-modal retrieval pipeline: guardrail, dual
// vector search, keyword and sample fallbacks, image scoring, dedup and
// ranking. It holds no per-request state and is safe for concurrent use.
type Engine struct {
	store     DocumentStore
	embedder  Embedder
	guardrail *Guardrail
	composer  Composer
	cfg       config.RetrievalConfig
	data      config.DataConfig
	log       *logrus.Logger
}

func NewEngine(
	store DocumentStore,
	embedder Embedder,
	guardrail *Guardrail,
	composer Composer,
	cfg config.RetrievalConfig,
	data config.DataConfig,
	log *logrus.Logger,
) *Engine {
	return &Engine{
		store:     store,
		embedder:  embedder,
		guardrail: guardrail,
		composer:  composer,
		cfg:       cfg,
		data:      data,
		log:       log,
	}
}

// Ask answers a catalog question. It only fails on embedding-provider
// errors; search failures degrade to zero results and "no results" is a
// valid outcome, not an error.
func (e *Engine) Ask(ctx context.Context, req AskRequest) (*catalog.AskResult, error) {
	question := strings.TrimSpace(req.Question)

	if !e.guardrail.IsOnTopic(ctx, question) {
		return &catalog.AskResult{Answer: RefusalMessage, Images: []catalog.RankedImage{}}, nil
	}

	searchQuery := strings.TrimSpace(req.SearchQuery)
	if searchQuery == "" {
		searchQuery = question
	}

	category := Classify(searchQuery)
	keywords := ExtractKeywords(searchQuery)

	textVec, err := e.embedder.TextEmbedding(ctx, searchQuery)
	if err != nil {
		return nil, fmt.Errorf("text embedding failed: %w", err)
	}
	clipVec, err := e.embedder.ClipTextEmbedding(ctx, refineQueryForClip(searchQuery))
	if err != nil {
		return nil, fmt.Errorf("clip embedding failed: %w", err)
	}

	seen := make(map[string]bool)
	candidates := make([]catalog.RankedImage, 0, e.cfg.VisualTopK)

	// Text-grounding search, best-effort.
	nodes, err := e.store.TextSearch(ctx, textVec, category, e.cfg.TextTopK)
	if err != nil {
		e.log.WithError(err).Warn("Text vector search failed, continuing without")
		nodes = nil
	} else {
		e.log.WithFields(logrus.Fields{"results": len(nodes), "category": category}).
			Debug("Text vector search")
	}

	// Strict visual search. Category is re-verified client-side against the
	// image's own provenance even though the filter already ran server-side,
	// and similarity is recomputed from the raw vectors.
	hits, err := e.store.VisualSearch(ctx, clipVec, category, e.cfg.VisualTopK)
	if err != nil {
		e.log.WithError(err).Warn("Visual search failed, continuing without")
	} else {
		for _, img := range hits {
			if categoryMismatch(category, img.CategorySource) {
				continue
			}
			if !img.HasEmbedding() || img.Path == "" || seen[img.Path] {
				continue
			}
			score := cosineSimilarity(clipVec, img.ClipEmbedding)
			if score > e.cfg.VisualThreshold {
				candidates = append(candidates, e.rankedImage(img, score, string(img.CategorySource)))
				seen[img.Path] = true
			}
		}
	}

	// Keyword fallback: embedding search can miss exact terms (product
	// names, SKUs) that substring matching catches.
	if len(nodes) == 0 && len(keywords) > 0 {
		e.log.WithField("keywords", keywords).Debug("Falling back to keyword search")
		nodes, err = e.store.KeywordSearch(ctx, keywords, category, e.cfg.KeywordTopK)
		if err != nil {
			e.log.WithError(err).Warn("Keyword search failed, continuing without")
			nodes = nil
		}
	}

	// Last resort: a few arbitrary catalog entries beat an empty answer.
	if len(nodes) == 0 {
		nodes, err = e.store.Sample(ctx, category, e.cfg.SampleLimit)
		if err != nil {
			e.log.WithError(err).Warn("Sample fallback failed, continuing without")
			nodes = nil
		}
	}

	// Context assembly plus secondary image harvesting from text-matched
	// nodes. These images are already textually relevant, so the score gate
	// is lower than the primary visual one, and images without an embedding
	// are kept at the default score.
	contextParts := make([]string, 0, len(nodes))
	for _, node := range nodes {
		contextParts = append(contextParts, node.CombinedText)

		for _, img := range node.RelatedImages {
			if categoryMismatch(category, img.CategorySource) {
				continue
			}
			if img.Path == "" || seen[img.Path] {
				continue
			}

			label := string(img.CategorySource)
			if label == "" {
				label = string(node.Category)
			}

			score := e.cfg.LinkedDefaultScore
			if img.HasEmbedding() {
				score = cosineSimilarity(clipVec, img.ClipEmbedding)
				if score <= e.cfg.LinkedThreshold {
					continue
				}
			}

			candidates = append(candidates, e.rankedImage(img, score, label))
			seen[img.Path] = true
		}
	}

	contextText := strings.Join(contextParts, "\n\n")
	if len(contextParts) == 0 {
		contextText = noContextPlaceholder
	}

	// First-seen-wins dedup already happened; the stable sort keeps
	// discovery order across equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > e.cfg.MaxImages {
		candidates = candidates[:e.cfg.MaxImages]
	}

	answer := e.composer.Compose(ctx, contextText, question, req.History)

	return &catalog.AskResult{Answer: answer, Images: candidates}, nil
}

// categoryMismatch implements hard category enforcement: a candidate with a
// recorded source category disagreeing with the detected one is dropped.
// Unknown provenance is kept.
func categoryMismatch(want, got catalog.Category) bool {
	return want != catalog.CategoryNone && got != catalog.CategoryNone && got != want
}

func (e *Engine) rankedImage(img catalog.ImageRef, score float64, pdfLabel string) catalog.RankedImage {
	return catalog.RankedImage{
		ImagePath: displayImagePath(img.Path),
		OCRText:   img.OCRText,
		Score:     score,
		Page:      img.PageSource,
		PDF:       pdfLabel,
		PDFURL:    pdfLink(e.data.PublicBaseURL, img.PDFSource, img.PageSource),
	}
}
