package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spigell/career-recommender/internal/ai"
	"github.com/spigell/career-recommender/internal/ai/gemini"
	"github.com/spigell/career-recommender/internal/ai/huggingface"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	return v
}

func TestGetConfigDefaults(t *testing.T) {
	config, err := getConfig(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, huggingface.Provider, config.Provider)
	assert.Equal(t, defaultRequestTimeout, config.RequestTimeout)
	assert.Less(t, config.RequestTimeout, 30*time.Second, "must leave room before the host kills the process")
	assert.Equal(t, huggingface.DefaultModels, config.HuggingFace.Models)
	assert.Equal(t, huggingface.DefaultTimeout, config.HuggingFace.Timeout)
	assert.True(t, config.HuggingFace.WaitForModel)
	assert.Equal(t, ai.PrimaryParams(), config.Generation.Primary)
	assert.Equal(t, ai.ReducedParams(), config.Generation.Reduced)
	assert.Equal(t, 3, config.Gemini.MaxRetries)
}

func TestGetConfigFromFileAndEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
provider: gemini
request-timeout: 45s
generation:
  primary:
    temperature: 0.5
    max-length: 300
filtering:
  domain-terms: [sommelier]
  disabled: [relevance]
gemini:
  models: [gemini-2.5-pro, gemini-2.5-flash]
`), 0o600))

	t.Setenv("CAREER_MAX_LOG_LENGTH", "120")
	t.Setenv("CAREER_GEMINI_API_KEY_FILE", "/run/secrets/gemini")

	v := newViper(t)
	require.NoError(t, readConfig(v, file))

	config, err := getConfig(v)
	require.NoError(t, err)

	assert.Equal(t, gemini.Provider, config.Provider)
	assert.Equal(t, 45*time.Second, config.RequestTimeout)
	assert.Equal(t, 120, config.MaxLogLength)
	assert.Equal(t, "/run/secrets/gemini", config.Gemini.APIKeyFile)
	assert.Equal(t, []string{"gemini-2.5-pro", "gemini-2.5-flash"}, config.Gemini.Models)
	assert.Equal(t, []string{"sommelier"}, config.Filtering.DomainTerms)
	assert.Equal(t, []string{"relevance"}, config.Filtering.Disabled)

	primary := ai.PrimaryParams()
	primary.Temperature = 0.5
	primary.MaxLength = 300
	assert.Equal(t, primary, config.Generation.Primary)
}

func TestGetConfigRejectsUnknownProvider(t *testing.T) {
	v := newViper(t)
	v.Set("provider", "openai")

	_, err := getConfig(v)
	assert.Error(t, err)
}

func TestGetConfigRejectsUnknownFilterStep(t *testing.T) {
	v := newViper(t)
	v.Set("filtering.disabled", []string{"relevence"})

	_, err := getConfig(v)
	assert.ErrorContains(t, err, `unknown filter step "relevence"`)
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	assert.NoError(t, readConfig(viper.New(), ""), "missing default config is fine")
	assert.Error(t, readConfig(viper.New(), filepath.Join(dir, "missing.yaml")), "explicit config must exist")

	require.NoError(t, os.WriteFile(filepath.Join(dir, app+".yaml"), []byte("provider: [broken"), 0o600))
	assert.Error(t, readConfig(viper.New(), ""))
}

func TestCandidates(t *testing.T) {
	config, err := getConfig(newViper(t))
	require.NoError(t, err)

	names := func(cs []ai.Candidate) []string {
		out := make([]string, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.Provider+"/"+c.Model)
		}
		return out
	}

	assert.Equal(t, []string{"huggingface/google/flan-t5-base", "huggingface/google/t5-v1_1-base"}, names(candidates(config, zap.NewNop())))

	config.Provider = providerAuto
	config.Gemini.Models = []string{"gemini-2.5-flash"}
	assert.Equal(t, []string{
		"huggingface/google/flan-t5-base",
		"huggingface/google/t5-v1_1-base",
		"gemini/gemini-2.5-flash",
	}, names(candidates(config, zap.NewNop())))
}

func TestCandidatesOpen(t *testing.T) {
	t.Setenv("HF_TOKEN", "")
	t.Setenv("HUGGINGFACE_TOKEN", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	config, err := getConfig(newViper(t))
	require.NoError(t, err)
	config.HuggingFace.WaitForModel = false

	hf := huggingFaceCandidates(config.HuggingFace, zap.NewNop())
	g, err := hf[0].Open(context.Background())
	require.NoError(t, err, "huggingface works without a token")

	client, ok := g.(*huggingface.Client)
	require.True(t, ok)
	assert.False(t, client.WaitForModel)
	assert.Equal(t, huggingface.Provider, providerOf(g))

	gm := geminiCandidates(config.Gemini, zap.NewNop())
	_, err = gm[0].Open(context.Background())
	assert.Error(t, err, "gemini requires an api key")
}

func TestProfileInput(t *testing.T) {
	data, err := profileInput("Go, SQL", "Cloud", " 300 ", " ", "2")
	require.NoError(t, err)

	assert.JSONEq(t, `{"skills": "Go, SQL", "interests": "Cloud", "budget": "300", "experience": "2"}`, string(data))
}

func TestPromptValidators(t *testing.T) {
	assert.Error(t, notBlank(" , "))
	assert.NoError(t, notBlank("Go"))
	assert.Error(t, nonNegative("-1"))
	assert.Error(t, nonNegative("abc"))
	assert.NoError(t, nonNegative("10.5"))
	assert.NoError(t, optionalNonNegative(""))
	assert.Error(t, optionalNonNegative("-2"))
}
