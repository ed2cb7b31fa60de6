package huggingface

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spigell/career-recommender/internal/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New("hf_token", "google/flan-t5-base", server.URL+"/", time.Second, zap.NewNop())
	require.NoError(t, err)

	return client
}

func TestGenerateSendsRequest(t *testing.T) {
	var got generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/google/flan-t5-base", r.URL.Path)
		assert.Equal(t, "Bearer hf_token", r.Header.Get("Authorization"))
		assert.Equal(t, contentType, r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(`[{"generated_text": "  [{\"career\": \"Analyst\"}]  "}]`))
	})

	text, err := client.Generate(context.Background(), "recommend", ai.PrimaryParams())
	require.NoError(t, err)

	assert.Equal(t, `[{"career": "Analyst"}]`, text)
	assert.Equal(t, "recommend", got.Inputs)
	assert.Equal(t, ai.PrimaryParams(), got.Parameters)
	assert.True(t, got.Options.WaitForModel)
	assert.Equal(t, "google/flan-t5-base", client.Model())
}

func TestGenerateDecodesGzip(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(`[{"generated_text": "compressed"}]`))
		_ = gz.Close()
	})

	text, err := client.Generate(context.Background(), "recommend", ai.ReducedParams())
	require.NoError(t, err)
	assert.Equal(t, "compressed", text)
}

func TestGenerateMapsOutOfMemory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "CUDA out of memory. Tried to allocate 20.00 MiB"}`))
	})

	_, err := client.Generate(context.Background(), "recommend", ai.PrimaryParams())
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrOutOfMemory)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestGenerateReportsOtherErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{
			name:    "loading model",
			status:  http.StatusServiceUnavailable,
			body:    `{"error": "Model google/flan-t5-base is currently loading", "estimated_time": 20.5}`,
			message: "Model google/flan-t5-base is currently loading",
		},
		{
			name:    "error list",
			status:  http.StatusBadRequest,
			body:    `{"error": ["bad input", "too long"]}`,
			message: "bad input; too long",
		},
		{
			name:    "plain text",
			status:  http.StatusBadGateway,
			body:    "upstream unavailable",
			message: "upstream unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Generate(context.Background(), "recommend", ai.PrimaryParams())

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "unexpected error: %v", err)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.False(t, ai.IsOutOfMemory(err))
		})
	}
}

func TestGenerateRejectsEmptyOutput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"generated_text": "   "}]`))
	})

	_, err := client.Generate(context.Background(), "recommend", ai.PrimaryParams())
	assert.Error(t, err)

	_, err = client.Generate(context.Background(), "  ", ai.PrimaryParams())
	assert.Error(t, err)
}

func TestGenerateHonoursContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"generated_text": "late"}]`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, "recommend", ai.PrimaryParams())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "loaded", status: http.StatusOK, body: `{"loaded": true, "state": "Loaded", "framework": "transformers"}`},
		{name: "loadable", status: http.StatusOK, body: `{"loaded": false, "state": "Loadable"}`},
		{name: "too big", status: http.StatusOK, body: `{"loaded": false, "state": "TooBig"}`, wantErr: true},
		{name: "unknown model", status: http.StatusNotFound, body: `{"error": "Model not found"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/status/google/flan-t5-base", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := client.Check(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewValidatesModel(t *testing.T) {
	_, err := New("", "  ", "", 0, nil)
	assert.Error(t, err)

	client, err := New("", "/google/flan-t5-base/", "", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, client.APIURL)
	assert.Equal(t, "google/flan-t5-base", client.Model())
	assert.Equal(t, DefaultTimeout, client.HTTPClient.Timeout)
}
