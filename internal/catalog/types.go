package catalog

// Category is the coarse partition of the catalog used as a hard search filter.
type Category string

const (
	// CategoryNone means no categorical filter is applied downstream.
	CategoryNone    Category = ""
	CategoryKitchen Category = "kitchen"
	CategoryBedroom Category = "bedroom"
)

// ImageRef is one extracted catalog image. An image belongs to exactly one
// node; Path is globally unique within the image store.
type ImageRef struct {
	Path           string    `json:"path"`
	OCRText        string    `json:"ocr_text"`
	ClipEmbedding  []float32 `json:"clip_embedding,omitempty"`
	CategorySource Category  `json:"category_source"`
	PageSource     int       `json:"page_source"`
	PDFSource      string    `json:"pdf_path"`
}

// HasEmbedding reports whether the image carries a usable CLIP vector.
// Images without one are excluded from visual ranking and only reachable
// through text-match harvesting with a default score.
func (r ImageRef) HasEmbedding() bool {
	return len(r.ClipEmbedding) > 0
}

// Node is one product entry in the catalog. Nodes are upserted by ID;
// Category is never empty for a stored node.
type Node struct {
	ID            string     `json:"id"`
	Category      Category   `json:"category"`
	Page          int        `json:"page"`
	Product       string     `json:"product"`
	Style         string     `json:"style"`
	Material      string     `json:"material"`
	Color         string     `json:"color"`
	Size          string     `json:"size"`
	Price         string     `json:"price"`
	Warranty      string     `json:"warranty"`
	Delivery      string     `json:"delivery"`
	Installation  string     `json:"installation"`
	Description   string     `json:"description"`
	ImagePaths    []string   `json:"image_paths"`
	RelatedImages []ImageRef `json:"related_images"`
	CombinedText  string     `json:"combined_text"`
	Embedding     []float32  `json:"embedding,omitempty"`
}

// RankedImage is one scored image in an answer, as returned to the caller.
type RankedImage struct {
	ImagePath string  `json:"image_path"`
	OCRText   string  `json:"ocr_text"`
	Score     float64 `json:"score"`
	Page      int     `json:"page"`
	PDF       string  `json:"pdf"`
	PDFURL    string  `json:"pdf_url,omitempty"`
}

// AskResult is the structured response for a single question. Images are
// unique by path, sorted by score descending, and bounded in length.
type AskResult struct {
	Answer string        `json:"answer"`
	Images []RankedImage `json:"images"`
}
