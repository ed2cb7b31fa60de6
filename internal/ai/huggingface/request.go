package huggingface

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spigell/career-recommender/internal/ai"

	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
)

// APIError is a non-2xx answer from the inference api.
type APIError struct {
	StatusCode    int
	Message       string
	EstimatedTime float64
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("bad status: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("bad status: %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets callers match memory exhaustion with errors.Is(err, ai.ErrOutOfMemory).
func (e *APIError) Unwrap() error {
	if strings.Contains(strings.ToLower(e.Message), "out of memory") {
		return ai.ErrOutOfMemory
	}
	return nil
}

type errorBody struct {
	Error         any     `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

func (c *Client) postJSON(ctx context.Context, url string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	return c.do(req, target)
}

func (c *Client) getJSON(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	req = c.setHeaders(req)

	return c.do(req, target)
}

func (c *Client) do(req *http.Request, target any) error {
	resp, err := c.request(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return parseError(resp.StatusCode, data)
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("Accept", contentType)

	return req
}

func parseError(status int, data []byte) error {
	apiErr := &APIError{StatusCode: status}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
		return apiErr
	}

	apiErr.EstimatedTime = body.EstimatedTime

	switch v := body.Error.(type) {
	case string:
		apiErr.Message = v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		apiErr.Message = strings.Join(parts, "; ")
	}

	return apiErr
}
