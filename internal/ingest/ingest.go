package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/remodela/remodela-backend/internal/catalog"
	"github.com/remodela/remodela-backend/internal/config"
	"github.com/remodela/remodela-backend/internal/store"
)

// Job is one catalog to ingest: a page-aligned text catalog plus the PDF it
// was exported from.
type Job struct {
	Category catalog.Category
	PDF      string
	TXT      string
}

// DefaultJobs returns the standard catalog layout under the data directory.
func DefaultJobs(dataDir string) []Job {
	return []Job{
		{
			Category: catalog.CategoryKitchen,
			PDF:      filepath.Join(dataDir, "kitchen_data", "Kitchen_Design_Collection_Book_Vol_V.pdf"),
			TXT:      filepath.Join(dataDir, "kitchen_data", "kitchen_catalog_full.txt"),
		},
		{
			Category: catalog.CategoryBedroom,
			PDF:      filepath.Join(dataDir, "bedrooms_data", "DesignBlenZ.pdf"),
			TXT:      filepath.Join(dataDir, "bedrooms_data", "bedroom_catalog_full.txt"),
		},
	}
}

// Embedder covers the sidecar operations ingestion needs.
type Embedder interface {
	TextEmbedding(ctx context.Context, text string) ([]float32, error)
	ClipImageEmbedding(ctx context.Context, imagePath string) ([]float32, error)
	ExtractText(ctx context.Context, imagePath string) (string, error)
}

// Ingestor builds the document store from catalog files. Each run replaces
// the processed image and OCR output, then upserts nodes by their stable IDs.
type Ingestor struct {
	store    store.Writer
	embedder Embedder
	cfg      config.EmbeddingConfig
	data     config.DataConfig
	log      *logrus.Logger
}

func NewIngestor(
	writer store.Writer,
	embedder Embedder,
	cfg config.EmbeddingConfig,
	data config.DataConfig,
	log *logrus.Logger,
) *Ingestor {
	return &Ingestor{
		store:    writer,
		embedder: embedder,
		cfg:      cfg,
		data:     data,
		log:      log,
	}
}

func (in *Ingestor) imageDir() string { return filepath.Join(in.data.Dir, "processed", "images") }
func (in *Ingestor) ocrDir() string   { return filepath.Join(in.data.Dir, "processed", "ocr") }

// Run ingests all jobs. Processed output directories are cleared first so a
// rerun never leaves stale page renders behind.
func (in *Ingestor) Run(ctx context.Context, jobs []Job) error {
	if err := in.store.EnsureCollections(ctx, in.cfg.TextDim, in.cfg.ClipDim); err != nil {
		return fmt.Errorf("failed to prepare collections: %w", err)
	}

	for _, dir := range []string{in.imageDir(), in.ocrDir()} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to clear %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	for _, job := range jobs {
		if err := in.processJob(ctx, job); err != nil {
			return fmt.Errorf("failed to ingest %s: %w", job.Category, err)
		}
	}

	return nil
}

func (in *Ingestor) processJob(ctx context.Context, job Job) error {
	log := in.log.WithField("category", job.Category)
	log.Info("Processing catalog")

	pageImages, err := in.extractImages(ctx, job)
	if err != nil {
		return err
	}

	entries, err := ParseCatalogFile(job.TXT)
	if err != nil {
		return err
	}
	log.WithField("entries", len(entries)).Info("Parsed catalog entries")

	nodes := make([]catalog.Node, 0, len(entries))
	for _, entry := range entries {
		node, err := in.buildNode(ctx, job, entry, pageImages[entry.Page])
		if err != nil {
			return err
		}
		nodes = append(nodes, node)
	}

	if err := in.store.UpsertNodes(ctx, nodes); err != nil {
		return fmt.Errorf("failed to upsert nodes: %w", err)
	}

	log.WithField("nodes", len(nodes)).Info("Catalog stored")
	return nil
}

// extractImages renders the job's PDF and attaches OCR text and a CLIP
// embedding to every valid page image, keyed by page number. OCR and
// embedding failures drop that signal for the image, not the image itself.
func (in *Ingestor) extractImages(ctx context.Context, job Job) (map[int][]catalog.ImageRef, error) {
	pages, err := RenderPDF(ctx, job.PDF, string(job.Category), in.imageDir())
	if err != nil {
		return nil, err
	}

	byPage := make(map[int][]catalog.ImageRef, len(pages))
	for _, page := range pages {
		ref := catalog.ImageRef{
			Path:           filepath.ToSlash(page.Path),
			CategorySource: job.Category,
			PageSource:     page.Page,
			PDFSource:      filepath.ToSlash(job.PDF),
		}

		ocrText, err := in.embedder.ExtractText(ctx, page.Path)
		if err != nil {
			in.log.WithError(err).WithField("image", page.Path).Warn("OCR failed, skipping text")
		} else {
			ref.OCRText = strings.TrimSpace(ocrText)
			if ref.OCRText != "" {
				if err := in.saveOCR(page.Path, ref.OCRText); err != nil {
					return nil, err
				}
			}
		}

		emb, err := in.embedder.ClipImageEmbedding(ctx, page.Path)
		if err != nil {
			in.log.WithError(err).WithField("image", page.Path).Warn("Image embedding failed, skipping vector")
		} else {
			ref.ClipEmbedding = emb
		}

		byPage[page.Page] = append(byPage[page.Page], ref)
	}

	return byPage, nil
}

func (in *Ingestor) saveOCR(imagePath, text string) error {
	name := filepath.Base(imagePath) + ".txt"
	if err := os.WriteFile(filepath.Join(in.ocrDir(), name), []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to save OCR text: %w", err)
	}
	return nil
}

func (in *Ingestor) buildNode(ctx context.Context, job Job, entry Entry, images []catalog.ImageRef) (catalog.Node, error) {
	imagePaths := make([]string, 0, len(images))
	for _, img := range images {
		imagePaths = append(imagePaths, img.Path)
	}

	combined := combinedText(job.Category, entry, images)
	embedding, err := in.embedder.TextEmbedding(ctx, combined)
	if err != nil {
		return catalog.Node{}, fmt.Errorf("failed to embed %q: %w", entry.Product, err)
	}

	return catalog.Node{
		ID:            catalog.NodeID(job.Category, entry.Page, entry.Product),
		Category:      job.Category,
		Page:          entry.Page,
		Product:       entry.Product,
		Style:         entry.Style,
		Material:      entry.Material,
		Color:         entry.Color,
		Size:          entry.Size,
		Price:         entry.Price,
		Warranty:      entry.Warranty,
		Delivery:      entry.Delivery,
		Installation:  entry.Installation,
		Description:   entry.Description,
		ImagePaths:    imagePaths,
		RelatedImages: images,
		CombinedText:  combined,
		Embedding:     embedding,
	}, nil
}

// combinedText is the single searchable rendition of a node. OCR text from
// page images rides along so visual-only details (dimensions in a diagram,
// printed price tags) are text-searchable too.
func combinedText(category catalog.Category, entry Entry, images []catalog.ImageRef) string {
	parts := []string{
		"Product: " + entry.Product,
		"Category: " + string(category),
		"Style: " + entry.Style,
		"Material: " + entry.Material,
		"Color: " + entry.Color,
		"Size: " + entry.Size,
		"Description: " + entry.Description,
		"Price: " + entry.Price,
	}
	for _, img := range images {
		if img.OCRText != "" {
			parts = append(parts, "Image Content: "+img.OCRText)
		}
	}
	return strings.Join(parts, " | ")
}
