package cmd

import (
	"context"
	"fmt"

	"github.com/spigell/career-recommender/internal/ai"
	"github.com/spigell/career-recommender/internal/ai/gemini"
	"github.com/spigell/career-recommender/internal/ai/huggingface"
	"github.com/spigell/career-recommender/internal/logger"
	"github.com/spigell/career-recommender/internal/secrets"

	"go.uber.org/zap"
)

// providerAuto tries every Hugging Face model first, then Gemini.
const providerAuto = "auto"

// candidates lists the models to try in order for the configured provider.
func candidates(config *Config, log *zap.Logger) []ai.Candidate {
	switch config.Provider {
	case huggingface.Provider:
		return huggingFaceCandidates(config.HuggingFace, log)
	case gemini.Provider:
		return geminiCandidates(config.Gemini, log)
	default:
		return append(huggingFaceCandidates(config.HuggingFace, log), geminiCandidates(config.Gemini, log)...)
	}
}

func huggingFaceCandidates(cfg HuggingFaceConfig, log *zap.Logger) []ai.Candidate {
	models := cfg.Models
	if len(models) == 0 {
		models = huggingface.DefaultModels
	}

	result := make([]ai.Candidate, 0, len(models))
	for _, model := range models {
		result = append(result, ai.Candidate{
			Provider: huggingface.Provider,
			Model:    model,
			Open: func(context.Context) (ai.Generator, error) {
				token, err := secrets.LoadOptional(secrets.Source{
					Name:  "huggingface token",
					Value: cfg.Token,
					File:  cfg.TokenFile,
					Env:   []string{"HF_TOKEN", "HUGGINGFACE_TOKEN"},
				})
				if err != nil {
					return nil, err
				}

				client, err := huggingface.New(token, model, cfg.APIURL, cfg.Timeout,
					logger.WithCommonFields(log, huggingface.Provider, model))
				if err != nil {
					return nil, err
				}
				client.WaitForModel = cfg.WaitForModel

				return client, nil
			},
		})
	}

	return result
}

func geminiCandidates(cfg GeminiConfig, log *zap.Logger) []ai.Candidate {
	models := cfg.Models
	if len(models) == 0 {
		models = []string{""}
	}

	result := make([]ai.Candidate, 0, len(models))
	for _, model := range models {
		result = append(result, ai.Candidate{
			Provider: gemini.Provider,
			Model:    model,
			Open: func(ctx context.Context) (ai.Generator, error) {
				apiKey, err := secrets.Load(secrets.Source{
					Name:  "gemini api key",
					Value: cfg.APIKey,
					File:  cfg.APIKeyFile,
					Env:   []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
				})
				if err != nil {
					return nil, fmt.Errorf("%w (set gemini.api-key-file or GEMINI_API_KEY)", err)
				}

				return gemini.NewGenerator(ctx, apiKey, model, cfg.MaxRetries,
					logger.WithCommonFields(log, gemini.Provider, model))
			},
		})
	}

	return result
}

// providerOf names the backend behind a loaded generator for log fields.
func providerOf(g ai.Generator) string {
	switch g.(type) {
	case *huggingface.Client:
		return huggingface.Provider
	case *gemini.Generator:
		return gemini.Provider
	default:
		return ""
	}
}
