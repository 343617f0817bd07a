package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/remodela/remodela-backend/internal/config"
)

// Client talks to the embedding sidecar, which hosts the MiniLM text model
// (384 dimensions), the CLIP model and the OCR engine. The underlying models
// are loaded once by the sidecar and shared across all requests; this client
// is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type embedRequest struct {
	Text string `json:"text,omitempty"`
	Path string `json:"path,omitempty"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

type ocrResponse struct {
	Text string `json:"text"`
}

// NewClient creates a sidecar client from config.
func NewClient(cfg config.EmbeddingConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// TextEmbedding returns the 384-dimension text embedding for a query or
// combined-text string.
func (c *Client) TextEmbedding(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, "/embed/text", embedRequest{Text: text})
}

// ClipTextEmbedding returns the CLIP text embedding, in the space shared
// with CLIP image embeddings.
func (c *Client) ClipTextEmbedding(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, "/embed/clip-text", embedRequest{Text: text})
}

// ClipImageEmbedding returns the CLIP embedding for an image file. Used by
// ingestion only.
func (c *Client) ClipImageEmbedding(ctx context.Context, imagePath string) ([]float32, error) {
	return c.embed(ctx, "/embed/clip-image", embedRequest{Path: imagePath})
}

// ExtractText runs OCR over an image file. Used by ingestion only; an empty
// result is not an error.
func (c *Client) ExtractText(ctx context.Context, imagePath string) (string, error) {
	body, err := c.postJSON(ctx, "/ocr", embedRequest{Path: imagePath})
	if err != nil {
		return "", err
	}

	var resp ocrResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse OCR response: %w", err)
	}
	return resp.Text, nil
}

func (c *Client) embed(ctx context.Context, endpoint string, req embedRequest) ([]float32, error) {
	body, err := c.postJSON(ctx, endpoint, req)
	if err != nil {
		return nil, err
	}

	var resp embedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("embedding service returned an empty vector for %s", endpoint)
	}
	return resp.Embedding, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, req interface{}) ([]byte, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach embedding service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding service error (status %d): %s", resp.StatusCode, body)
	}

	return io.ReadAll(resp.Body)
}
