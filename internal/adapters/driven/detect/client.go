package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/haulbridge/docpipe/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.BarcodeDetector = (*Client)(nil)

// Client implements BarcodeDetector against an external barcode
// decoding service. The service accepts raw PDF bytes and returns the
// barcodes it found, in detection order (top-left to bottom-right,
// first page first).
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a new barcode detection client.
func NewClient(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("detection service URL is required")
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// detectResponse is the response body from the detection service.
type detectResponse struct {
	Barcodes []string `json:"barcodes"`
	Error    *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Detect returns every barcode found on the PDF, in detection order.
// A PDF with no barcodes returns an empty slice and no error.
func (c *Client) Detect(ctx context.Context, data []byte, filename string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/detect", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("X-Filename", filename)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detection request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var detResp detectResponse
	if err := json.Unmarshal(respBody, &detResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if detResp.Error != nil {
		return nil, fmt.Errorf("detection service error: %s (code: %s)",
			detResp.Error.Message, detResp.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detection service returned status %d", resp.StatusCode)
	}

	if detResp.Barcodes == nil {
		return []string{}, nil
	}
	return detResp.Barcodes, nil
}

// HealthCheck verifies the detection service is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detection service returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
