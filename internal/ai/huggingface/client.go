package huggingface

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spigell/career-recommender/internal/ai"

	"go.uber.org/zap"
)

const (
	// Provider is the name used in configuration and logs.
	Provider = "huggingface"

	DefaultAPIURL  = "https://api-inference.huggingface.co"
	DefaultTimeout = 60 * time.Second

	userAgent = "spigell/career-recommender"
)

// DefaultModels are tried in order when no models are configured.
var DefaultModels = []string{"google/flan-t5-base", "google/t5-v1_1-base"}

// Client calls the hosted inference endpoint of a single model.
type Client struct {
	token        string
	model        string
	logger       *zap.Logger
	HTTPClient   *http.Client
	APIURL       string
	UserAgent    string
	WaitForModel bool
}

type generateRequest struct {
	Inputs     string            `json:"inputs"`
	Parameters ai.SamplingParams `json:"parameters"`
	Options    requestOptions    `json:"options"`
}

type requestOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

type generation struct {
	GeneratedText string `json:"generated_text"`
}

type modelStatus struct {
	Loaded      bool   `json:"loaded"`
	State       string `json:"state"`
	ComputeType any    `json:"compute_type"`
	Framework   string `json:"framework"`
}

// New returns a client for model. An empty apiURL falls back to DefaultAPIURL.
func New(token, model, apiURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	model = strings.Trim(strings.TrimSpace(model), "/")
	if model == "" {
		return nil, errors.New("huggingface model is required")
	}

	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if _, err := url.Parse(apiURL); err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:        strings.TrimSpace(token),
		model:        model,
		logger:       logger,
		HTTPClient:   &http.Client{Timeout: timeout},
		APIURL:       apiURL,
		UserAgent:    userAgent,
		WaitForModel: true,
	}, nil
}

// Check asks the status endpoint whether the model can be served.
func (c *Client) Check(ctx context.Context) error {
	var status modelStatus
	if err := c.getJSON(ctx, c.endpoint("status"), &status); err != nil {
		return fmt.Errorf("model status: %w", err)
	}

	c.logger.Debug("model status",
		zap.Bool("loaded", status.Loaded),
		zap.String("state", status.State),
		zap.String("framework", status.Framework),
	)

	if strings.EqualFold(status.State, "TooBig") {
		return fmt.Errorf("model %s is too big for the inference api", c.model)
	}

	return nil
}

// Generate runs a single text generation request.
func (c *Client) Generate(ctx context.Context, prompt string, params ai.SamplingParams) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	payload := generateRequest{
		Inputs:     prompt,
		Parameters: params,
		Options: requestOptions{
			WaitForModel: c.WaitForModel,
		},
	}

	var generations []generation
	if err := c.postJSON(ctx, c.endpoint("models"), payload, &generations); err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	for _, g := range generations {
		if text := strings.TrimSpace(g.GeneratedText); text != "" {
			return text, nil
		}
	}

	return "", errors.New("huggingface api returned empty response")
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

func (c *Client) endpoint(kind string) string {
	return c.APIURL + "/" + kind + "/" + c.model
}
