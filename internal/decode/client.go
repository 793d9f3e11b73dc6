// Package decode calls a third-party HTTP service that reads QR codes
// out of uploaded images. It covers the gallery path only; camera scans
// are decoded on the device.
package decode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrNoCodeFound means the service processed the image but found no QR
// code in it. It is a user-facing notice, not a transport failure.
var ErrNoCodeFound = errors.New("no QR code found in image")

// Client talks to the remote QR decoding endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a decode client for the given endpoint.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Response shape of the decode service: an array of results, each with a
// list of decoded symbols.
type decodeSymbol struct {
	Data  *string `json:"data"`
	Error *string `json:"error"`
}

type decodeResult struct {
	Type   string         `json:"type"`
	Symbol []decodeSymbol `json:"symbol"`
}

// DecodeImage posts the image as a multipart upload and returns the
// decoded string. A response without a decoded symbol yields
// ErrNoCodeFound.
func (c *Client) DecodeImage(ctx context.Context, filename string, image io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("decode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("decode service returned status %d", resp.StatusCode)
	}

	var results []decodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", fmt.Errorf("failed to parse decode response: %w", err)
	}

	if len(results) == 0 || len(results[0].Symbol) == 0 || results[0].Symbol[0].Data == nil {
		return "", ErrNoCodeFound
	}
	return *results[0].Symbol[0].Data, nil
}
