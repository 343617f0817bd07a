package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remodela/remodela-backend/internal/catalog"
	"github.com/remodela/remodela-backend/internal/config"
	"github.com/remodela/remodela-backend/internal/llm"
)

type fakeStore struct {
	textNodes    []catalog.Node
	visualHits   []catalog.ImageRef
	keywordNodes []catalog.Node
	sampleNodes  []catalog.Node

	textErr    error
	visualErr  error
	keywordErr error
	sampleErr  error

	textCalled    bool
	visualCalled  bool
	keywordCalled bool
	sampleCalled  bool
}

func (f *fakeStore) TextSearch(ctx context.Context, vector []float32, category catalog.Category, limit int) ([]catalog.Node, error) {
	f.textCalled = true
	return f.textNodes, f.textErr
}

func (f *fakeStore) VisualSearch(ctx context.Context, vector []float32, category catalog.Category, limit int) ([]catalog.ImageRef, error) {
	f.visualCalled = true
	return f.visualHits, f.visualErr
}

func (f *fakeStore) KeywordSearch(ctx context.Context, keywords []string, category catalog.Category, limit int) ([]catalog.Node, error) {
	f.keywordCalled = true
	return f.keywordNodes, f.keywordErr
}

func (f *fakeStore) Sample(ctx context.Context, category catalog.Category, limit int) ([]catalog.Node, error) {
	f.sampleCalled = true
	return f.sampleNodes, f.sampleErr
}

type fakeEmbedder struct {
	textVec []float32
	clipVec []float32
	err     error
}

func (f *fakeEmbedder) TextEmbedding(ctx context.Context, text string) ([]float32, error) {
	return f.textVec, f.err
}

func (f *fakeEmbedder) ClipTextEmbedding(ctx context.Context, text string) ([]float32, error) {
	return f.clipVec, f.err
}

type fakeComposer struct {
	answer      string
	contextText string
	question    string
}

func (f *fakeComposer) Compose(ctx context.Context, contextText, question string, history []llm.Message) string {
	f.contextText = contextText
	f.question = question
	return f.answer
}

type fakeCompleter struct {
	reply string
	err   error
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt string, messages []llm.Message) (string, error) {
	return f.reply, f.err
}

func testConfig() config.RetrievalConfig {
	return config.RetrievalConfig{
		TextTopK:           10,
		VisualTopK:         16,
		KeywordTopK:        10,
		SampleLimit:        4,
		MaxImages:          12,
		NumCandidates:      100,
		VisualThreshold:    0.25,
		LinkedThreshold:    0.22,
		LinkedDefaultScore: 0.22,
	}
}

func newTestEngine(store *fakeStore, completer *fakeCompleter, composer *fakeComposer) *Engine {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	embedder := &fakeEmbedder{textVec: []float32{1, 0}, clipVec: []float32{1, 0}}
	guardrail := NewGuardrail(completer, log)
	data := config.DataConfig{Dir: "Data", PublicBaseURL: "http://localhost:8000"}

	return NewEngine(store, embedder, guardrail, composer, testConfig(), data, log)
}

func TestAskRefusesOffTopicWithoutSearching(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, &fakeCompleter{reply: "NO"}, &fakeComposer{})

	result, err := engine.Ask(context.Background(), AskRequest{Question: "what is the capital of France"})
	require.NoError(t, err)

	assert.Equal(t, RefusalMessage, result.Answer)
	assert.NotNil(t, result.Images)
	assert.Empty(t, result.Images)
	assert.False(t, store.textCalled)
	assert.False(t, store.visualCalled)
}

func TestAskGuardrailFailureAssumesOnTopic(t *testing.T) {
	store := &fakeStore{}
	composer := &fakeComposer{answer: "ok"}
	engine := newTestEngine(store, &fakeCompleter{err: errors.New("model down")}, composer)

	result, err := engine.Ask(context.Background(), AskRequest{Question: "tell me about rugs"})
	require.NoError(t, err)

	assert.Equal(t, "ok", result.Answer)
	assert.True(t, store.textCalled)
}

func TestAskPrimaryVisualFiltering(t *testing.T) {
	store := &fakeStore{
		visualHits: []catalog.ImageRef{
			// Cosine 1.0 against the query vector, passes.
			{Path: "images/a.jpg", ClipEmbedding: []float32{1, 0}, CategorySource: catalog.CategoryKitchen},
			// Orthogonal, below the 0.25 gate.
			{Path: "images/b.jpg", ClipEmbedding: []float32{0, 1}, CategorySource: catalog.CategoryKitchen},
			// Wrong category despite a perfect score.
			{Path: "images/c.jpg", ClipEmbedding: []float32{1, 0}, CategorySource: catalog.CategoryBedroom},
			// No stored vector, unusable in visual ranking.
			{Path: "images/d.jpg", CategorySource: catalog.CategoryKitchen},
			// Duplicate path, first seen wins.
			{Path: "images/a.jpg", ClipEmbedding: []float32{1, 0}, CategorySource: catalog.CategoryKitchen},
		},
	}
	composer := &fakeComposer{answer: "ok"}
	engine := newTestEngine(store, &fakeCompleter{reply: "YES"}, composer)

	result, err := engine.Ask(context.Background(), AskRequest{Question: "kitchen photo"})
	require.NoError(t, err)

	require.Len(t, result.Images, 1)
	assert.Equal(t, "images/a.jpg", result.Images[0].ImagePath)
	assert.InDelta(t, 1.0, result.Images[0].Score, 1e-6)
}

func TestAskHarvestsLinkedImages(t *testing.T) {
	store := &fakeStore{
		textNodes: []catalog.Node{{
			ID:           "kitchen_1_layout",
			Category:     catalog.CategoryKitchen,
			CombinedText: "Product: Layout",
			RelatedImages: []catalog.ImageRef{
				// Above the linked gate.
				{Path: "images/strong.jpg", ClipEmbedding: []float32{1, 0}, CategorySource: catalog.CategoryKitchen, PageSource: 1},
				// Orthogonal, under the linked gate.
				{Path: "images/weak.jpg", ClipEmbedding: []float32{0, 1}, CategorySource: catalog.CategoryKitchen, PageSource: 1},
				// No vector: included unconditionally at the default score.
				{Path: "images/plain.jpg", CategorySource: catalog.CategoryKitchen, PageSource: 1},
			},
		}},
	}
	composer := &fakeComposer{answer: "ok"}
	engine := newTestEngine(store, &fakeCompleter{reply: "YES"}, composer)

	result, err := engine.Ask(context.Background(), AskRequest{Question: "kitchen photo"})
	require.NoError(t, err)

	require.Len(t, result.Images, 2)
	assert.Equal(t, "images/strong.jpg", result.Images[0].ImagePath)
	assert.Equal(t, "images/plain.jpg", result.Images[1].ImagePath)
	assert.Equal(t, 0.22, result.Images[1].Score)
}

func TestAskKeywordFallback(t *testing.T) {
	store := &fakeStore{
		keywordNodes: []catalog.Node{{
			ID:           "kitchen_2_oak",
			Category:     catalog.CategoryKitchen,
			CombinedText: "Product: Oak Cabinet",
		}},
	}
	composer := &fakeComposer{answer: "ok"}
	engine := newTestEngine(store, &fakeCompleter{reply: "YES"}, composer)

	_, err := engine.Ask(context.Background(), AskRequest{Question: "oak kitchen"})
	require.NoError(t, err)

	assert.True(t, store.keywordCalled)
	assert.False(t, store.sampleCalled)
	assert.Equal(t, "Product: Oak Cabinet", composer.contextText)
}

func TestAskKeywordFallbackSkippedWhenTextSearchHit(t *testing.T) {
	store := &fakeStore{
		textNodes: []catalog.Node{{ID: "kitchen_1_x", CombinedText: "Product: X"}},
	}
	engine := newTestEngine(store, &fakeCompleter{reply: "YES"}, &fakeComposer{answer: "ok"})

	_, err := engine.Ask(context.Background(), AskRequest{Question: "oak kitchen"})
	require.NoError(t, err)

	assert.False(t, store.keywordCalled)
	assert.False(t, store.sampleCalled)
}

func TestAskSampleFallbackAndPlaceholder(t *testing.T) {
	store := &fakeStore{}
	composer := &fakeComposer{answer: "ok"}
	engine := newTestEngine(store, &fakeCompleter{reply: "YES"}, composer)

	result, err := engine.Ask(context.Background(), AskRequest{Question: "oak kitchen"})
	require.NoError(t, err)

	assert.True(t, store.keywordCalled)
	assert.True(t, store.sampleCalled)
	assert.Equal(t, "No specific catalog items found.", composer.contextText)
	assert.Empty(t, result.Images)
}

func TestAskSearchErrorsDegradeToEmpty(t *testing.T) {
	store := &fakeStore{
		textErr:    errors.New("text down"),
		visualErr:  errors.New("visual down"),
		keywordErr: errors.New("keyword down"),
		sampleErr:  errors.New("sample down"),
	}
	composer := &fakeComposer{answer: "ok"}
	engine := newTestEngine(store, &fakeCompleter{reply: "YES"}, composer)

	result, err := engine.Ask(context.Background(), AskRequest{Question: "oak kitchen"})
	require.NoError(t, err)

	assert.Equal(t, "ok", result.Answer)
	assert.Equal(t, "No specific catalog items found.", composer.contextText)
}

func TestAskEmbeddingErrorIsFatal(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	guardrail := NewGuardrail(&fakeCompleter{reply: "YES"}, log)
	embedder := &fakeEmbedder{err: errors.New("sidecar down")}
	engine := NewEngine(&fakeStore{}, embedder, guardrail, &fakeComposer{}, testConfig(),
		config.DataConfig{PublicBaseURL: "http://localhost:8000"}, log)

	_, err := engine.Ask(context.Background(), AskRequest{Question: "oak kitchen"})
	assert.Error(t, err)
}

func TestAskRankingAndTruncation(t *testing.T) {
	hits := make([]catalog.ImageRef, 0, 16)
	for i := 0; i < 16; i++ {
		// Descending scores between 1.0 and 0.4, all above the gate.
		emb := []float32{1, float32(i) * 0.1}
		hits = append(hits, catalog.ImageRef{
			Path:           string(rune('a'+i)) + ".jpg",
			ClipEmbedding:  emb,
			CategorySource: catalog.CategoryKitchen,
		})
	}
	store := &fakeStore{visualHits: hits}
	engine := newTestEngine(store, &fakeCompleter{reply: "YES"}, &fakeComposer{answer: "ok"})

	result, err := engine.Ask(context.Background(), AskRequest{Question: "kitchen photo"})
	require.NoError(t, err)

	assert.Len(t, result.Images, 12)
	for i := 1; i < len(result.Images); i++ {
		assert.GreaterOrEqual(t, result.Images[i-1].Score, result.Images[i].Score)
	}
}

func TestAskUsesSearchQueryForRetrievalAndQuestionForAnswer(t *testing.T) {
	store := &fakeStore{}
	composer := &fakeComposer{answer: "ok"}
	engine := newTestEngine(store, &fakeCompleter{reply: "YES"}, composer)

	_, err := engine.Ask(context.Background(), AskRequest{
		Question:    "what about that one?",
		SearchQuery: "walnut kitchen cabinet price",
	})
	require.NoError(t, err)

	assert.Equal(t, "what about that one?", composer.question)
}
