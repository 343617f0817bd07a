package qdrant

import (
	qdrantclient "github.com/qdrant/go-client/qdrant"

	"github.com/remodela/remodela-backend/internal/catalog"
)

// Payload mapping between catalog records and Qdrant payload values. Missing
// fields decode to zero values, so index documents written by older ingestion
// runs stay readable.

func nodePayload(node catalog.Node) map[string]any {
	imagePaths := make([]any, 0, len(node.ImagePaths))
	for _, p := range node.ImagePaths {
		imagePaths = append(imagePaths, p)
	}

	relatedImages := make([]any, 0, len(node.RelatedImages))
	for _, img := range node.RelatedImages {
		relatedImages = append(relatedImages, imageValue(img))
	}

	return map[string]any{
		"id":             node.ID,
		"category":       string(node.Category),
		"page":           node.Page,
		"product":        node.Product,
		"style":          node.Style,
		"material":       node.Material,
		"color":          node.Color,
		"size":           node.Size,
		"price":          node.Price,
		"warranty":       node.Warranty,
		"delivery":       node.Delivery,
		"installation":   node.Installation,
		"description":    node.Description,
		"image_paths":    imagePaths,
		"related_images": relatedImages,
		"combined_text":  node.CombinedText,
	}
}

func imageValue(img catalog.ImageRef) map[string]any {
	embedding := make([]any, 0, len(img.ClipEmbedding))
	for _, v := range img.ClipEmbedding {
		embedding = append(embedding, float64(v))
	}

	return map[string]any{
		"path":            img.Path,
		"ocr_text":        img.OCRText,
		"clip_embedding":  embedding,
		"category_source": string(img.CategorySource),
		"page_source":     img.PageSource,
		"pdf_path":        img.PDFSource,
	}
}

// imagePayload is the flat payload stored with an image point; category is
// duplicated at the top level so the server-side filter can use the keyword
// index.
func imagePayload(node catalog.Node, img catalog.ImageRef) map[string]any {
	return map[string]any{
		"node_id":         node.ID,
		"category":        string(img.CategorySource),
		"path":            img.Path,
		"ocr_text":        img.OCRText,
		"category_source": string(img.CategorySource),
		"page_source":     img.PageSource,
		"pdf_path":        img.PDFSource,
	}
}

func nodeFromPayload(payload map[string]*qdrantclient.Value) catalog.Node {
	node := catalog.Node{
		ID:           payloadString(payload, "id"),
		Category:     catalog.Category(payloadString(payload, "category")),
		Page:         payloadInt(payload, "page"),
		Product:      payloadString(payload, "product"),
		Style:        payloadString(payload, "style"),
		Material:     payloadString(payload, "material"),
		Color:        payloadString(payload, "color"),
		Size:         payloadString(payload, "size"),
		Price:        payloadString(payload, "price"),
		Warranty:     payloadString(payload, "warranty"),
		Delivery:     payloadString(payload, "delivery"),
		Installation: payloadString(payload, "installation"),
		Description:  payloadString(payload, "description"),
		CombinedText: payloadString(payload, "combined_text"),
	}

	for _, v := range payloadList(payload, "image_paths") {
		node.ImagePaths = append(node.ImagePaths, v.GetStringValue())
	}

	for _, v := range payloadList(payload, "related_images") {
		fields := v.GetStructValue().GetFields()
		if fields == nil {
			continue
		}
		node.RelatedImages = append(node.RelatedImages, imageFromPayload(fields))
	}

	return node
}

func imageFromPayload(payload map[string]*qdrantclient.Value) catalog.ImageRef {
	img := catalog.ImageRef{
		Path:           payloadString(payload, "path"),
		OCRText:        payloadString(payload, "ocr_text"),
		CategorySource: catalog.Category(payloadString(payload, "category_source")),
		PageSource:     payloadInt(payload, "page_source"),
		PDFSource:      payloadString(payload, "pdf_path"),
	}

	for _, v := range payloadList(payload, "clip_embedding") {
		img.ClipEmbedding = append(img.ClipEmbedding, float32(payloadNumber(v)))
	}

	return img
}

func payloadString(payload map[string]*qdrantclient.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func payloadInt(payload map[string]*qdrantclient.Value, key string) int {
	if v, ok := payload[key]; ok {
		return int(payloadNumber(v))
	}
	return 0
}

func payloadList(payload map[string]*qdrantclient.Value, key string) []*qdrantclient.Value {
	if v, ok := payload[key]; ok {
		return v.GetListValue().GetValues()
	}
	return nil
}

// payloadNumber reads a numeric value whether it was stored as an integer or
// a double.
func payloadNumber(v *qdrantclient.Value) float64 {
	if _, ok := v.GetKind().(*qdrantclient.Value_IntegerValue); ok {
		return float64(v.GetIntegerValue())
	}
	return v.GetDoubleValue()
}
