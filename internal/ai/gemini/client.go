package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/career-recommender/internal/ai"
	"github.com/spigell/career-recommender/internal/utils"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	// Provider is the name used in configuration and logs.
	Provider = "gemini"

	defaultModel      = "gemini-2.5-flash"
	defaultMaxRetries = 3
	retryBaseDelay    = 2 * time.Second
	maxRetryHint      = 10 * time.Second
)

// ErrQuotaExceeded is returned when the API keeps rejecting requests for
// rate or quota reasons. It is not a memory condition.
var ErrQuotaExceeded = errors.New("gemini quota exceeded")

var (
	sleep = utils.WaitFor

	retryHintPattern = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)
)

type modelService interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// Generator talks to the Gemini API and implements ai.Generator.
type Generator struct {
	models     modelService
	model      string
	maxRetries int
	logger     *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, model, maxRetries, logger), nil
}

func newGenerator(models modelService, model string, maxRetries int, logger *zap.Logger) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		models:     models,
		model:      model,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Check verifies that the configured model exists and is visible with the key.
func (g *Generator) Check(ctx context.Context) error {
	if g == nil || g.models == nil {
		return errors.New("gemini generator is not initialized")
	}

	if _, err := g.models.Get(ctx, g.model, nil); err != nil {
		return fmt.Errorf("get model %s: %w", g.model, err)
	}

	return nil
}

// Generate sends the prompt and returns the joined text of the first candidate.
func (g *Generator) Generate(ctx context.Context, prompt string, params ai.SamplingParams) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	config := generateConfig(params)

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
		if err == nil {
			return responseText(resp)
		}

		lastErr = err

		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == g.maxRetries {
			break
		}

		g.logger.Warn("temporary gemini error, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	if IsResourceExhausted(lastErr) {
		return "", fmt.Errorf("generate content: %w: %w", ErrQuotaExceeded, lastErr)
	}

	return "", fmt.Errorf("generate content: %w", lastErr)
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func generateConfig(params ai.SamplingParams) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	if params.MaxLength > 0 {
		config.MaxOutputTokens = int32(params.MaxLength)
	}
	if params.NumReturnSequences > 0 {
		config.CandidateCount = int32(params.NumReturnSequences)
	}
	if !params.DoSample {
		config.Temperature = genai.Ptr[float32](0)
		return config
	}
	if params.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(params.Temperature))
	}
	if params.TopP > 0 {
		config.TopP = genai.Ptr(float32(params.TopP))
	}
	if params.TopK > 0 {
		config.TopK = genai.Ptr(float32(params.TopK))
	}

	return config
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini api returned no response")
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}

		var builder strings.Builder
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}

		if output := strings.TrimSpace(builder.String()); output != "" {
			return output, nil
		}
	}

	return "", errors.New("gemini api returned empty response")
}

// retryDelay reports whether err is temporary and how long to wait before the
// next attempt. Quota errors are only retried when the server hint is short.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		hint, ok := parseRetryHint(apiErr.Message)
		if !ok {
			return retryBaseDelay * time.Duration(attempt), true
		}
		if hint > maxRetryHint {
			return 0, false
		}
		return hint, true
	case apiErr.Code >= http.StatusInternalServerError:
		return retryBaseDelay * time.Duration(attempt), true
	default:
		return 0, false
	}
}

func parseRetryHint(message string) (time.Duration, bool) {
	match := retryHintPattern.FindStringSubmatch(message)
	if match == nil {
		return 0, false
	}

	seconds, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}

	return time.Duration(seconds * float64(time.Second)), true
}

// IsResourceExhausted reports whether err is a Gemini RESOURCE_EXHAUSTED error.
func IsResourceExhausted(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusTooManyRequests || strings.EqualFold(apiErr.Status, "RESOURCE_EXHAUSTED")
}
