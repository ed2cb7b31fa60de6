package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/spigell/career-recommender/internal/ai"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeModels struct {
	mu      sync.Mutex
	queue   []fakeResponse
	configs []*genai.GenerateContentConfig
	prompts []string
	getErr  error
	gets    []string
}

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (f *fakeModels) enqueue(resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeResponse{resp: resp, err: err})
}

func (f *fakeModels) GenerateContent(_ context.Context, _ string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := f.queue[0]
	f.queue = f.queue[1:]
	f.configs = append(f.configs, config)
	for _, content := range contents {
		for _, part := range content.Parts {
			f.prompts = append(f.prompts, part.Text)
		}
	}
	return res.resp, res.err
}

func (f *fakeModels) Get(_ context.Context, model string, _ *genai.GetModelConfig) (*genai.Model, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, model)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &genai.Model{Name: "models/" + model}, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	original := sleep
	sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	t.Cleanup(func() { sleep = original })
	return &delays
}

func TestGeneratorRetriesOnTemporaryError(t *testing.T) {
	delays := noSleep(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"})
	models.enqueue(textResponse("retry ok"), nil)

	g := newGenerator(models, "gemini-pro", 2, zap.NewNop())

	output, err := g.Generate(context.Background(), "prompt", ai.PrimaryParams())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != "retry ok" {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(models.configs) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.configs))
	}

	if len(*delays) != 1 || (*delays)[0] != retryBaseDelay {
		t.Fatalf("unexpected delays: %v", *delays)
	}

	for _, p := range models.prompts {
		if p != "prompt" {
			t.Fatalf("unexpected prompt: %q", p)
		}
	}
}

func TestGeneratorStopsAfterRetriesExhausted(t *testing.T) {
	noSleep(t)

	models := &fakeModels{}
	tempErr := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	models.enqueue(nil, tempErr)
	models.enqueue(nil, tempErr)

	g := newGenerator(models, "gemini-pro", 2, zap.NewNop())

	_, err := g.Generate(context.Background(), "prompt", ai.PrimaryParams())
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}

	if ai.IsOutOfMemory(err) {
		t.Fatalf("unavailable must not be reported as out of memory: %v", err)
	}

	if len(models.configs) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.configs))
	}
}

func TestGeneratorDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	})

	g := newGenerator(models, "gemini-pro", 3, zap.NewNop())

	_, err := g.Generate(context.Background(), "prompt", ai.PrimaryParams())
	if err == nil {
		t.Fatal("expected error when quota delay too long")
	}

	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected resource exhaustion to map to ErrQuotaExceeded, got %v", err)
	}

	if ai.IsOutOfMemory(err) {
		t.Fatalf("quota errors must not be reported as out of memory: %v", err)
	}

	if len(models.configs) != 1 {
		t.Fatalf("expected single call, got %d", len(models.configs))
	}
}

func TestGeneratorHonoursShortQuotaHint(t *testing.T) {
	delays := noSleep(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{
		Code:    http.StatusTooManyRequests,
		Message: "slow down, retry in 1.5s",
	})
	models.enqueue(textResponse("ok"), nil)

	g := newGenerator(models, "", 3, nil)

	if _, err := g.Generate(context.Background(), "prompt", ai.ReducedParams()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(*delays) != 1 || (*delays)[0] != 1500*time.Millisecond {
		t.Fatalf("unexpected delays: %v", *delays)
	}

	if g.Model() != defaultModel {
		t.Fatalf("expected default model, got %q", g.Model())
	}
}

func TestGeneratorDoesNotRetryClientErrors(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"})

	g := newGenerator(models, "gemini-pro", 3, zap.NewNop())

	if _, err := g.Generate(context.Background(), "prompt", ai.PrimaryParams()); err == nil {
		t.Fatal("expected error")
	}

	if len(models.configs) != 1 {
		t.Fatalf("expected single call, got %d", len(models.configs))
	}
}

func TestGeneratorMapsSamplingParams(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(textResponse("ok"), nil)

	g := newGenerator(models, "gemini-pro", 1, zap.NewNop())

	if _, err := g.Generate(context.Background(), "prompt", ai.PrimaryParams()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := models.configs[0]
	if cfg.MaxOutputTokens != 1000 {
		t.Fatalf("unexpected max output tokens: %d", cfg.MaxOutputTokens)
	}
	if cfg.Temperature == nil || *cfg.Temperature != float32(0.85) {
		t.Fatalf("unexpected temperature: %v", cfg.Temperature)
	}
	if cfg.TopP == nil || *cfg.TopP != float32(0.92) {
		t.Fatalf("unexpected top-p: %v", cfg.TopP)
	}
	if cfg.TopK == nil || *cfg.TopK != 60 {
		t.Fatalf("unexpected top-k: %v", cfg.TopK)
	}
	if cfg.CandidateCount != 1 {
		t.Fatalf("unexpected candidate count: %d", cfg.CandidateCount)
	}
}

func TestGeneratorRejectsEmptyResponse(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(&genai.GenerateContentResponse{}, nil)

	g := newGenerator(models, "gemini-pro", 1, zap.NewNop())

	if _, err := g.Generate(context.Background(), "prompt", ai.PrimaryParams()); err == nil {
		t.Fatal("expected error on empty response")
	}

	if _, err := g.Generate(context.Background(), "   ", ai.PrimaryParams()); err == nil {
		t.Fatal("expected error on empty prompt")
	}
}

func TestGeneratorCheck(t *testing.T) {
	models := &fakeModels{}
	g := newGenerator(models, "gemini-pro", 1, zap.NewNop())

	if err := g.Check(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	models.getErr = genai.APIError{Code: http.StatusNotFound, Status: "NOT_FOUND"}
	if err := g.Check(context.Background()); err == nil {
		t.Fatal("expected error for missing model")
	}

	if len(models.gets) != 2 || models.gets[0] != "gemini-pro" {
		t.Fatalf("unexpected get calls: %v", models.gets)
	}
}
