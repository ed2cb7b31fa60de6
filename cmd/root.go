package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/career-recommender/internal/ai"
	"github.com/spigell/career-recommender/internal/ai/gemini"
	"github.com/spigell/career-recommender/internal/ai/huggingface"
	"github.com/spigell/career-recommender/internal/bridge"
	"github.com/spigell/career-recommender/internal/filtering"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app       = "career-recommender"
	envPrefix = "CAREER"

	// The host kills the subprocess after 30s; stop early enough to answer.
	defaultRequestTimeout = 25 * time.Second
	defaultMaxLogLength   = 2000
)

type Config struct {
	Provider       string            `mapstructure:"provider"`
	RequestTimeout time.Duration     `mapstructure:"request-timeout"`
	MaxInputBytes  int64             `mapstructure:"max-input-bytes"`
	MaxLogLength   int               `mapstructure:"max-log-length"`
	Generation     GenerationConfig  `mapstructure:"generation"`
	Filtering      filtering.Config  `mapstructure:"filtering"`
	HuggingFace    HuggingFaceConfig `mapstructure:"huggingface"`
	Gemini         GeminiConfig      `mapstructure:"gemini"`
}

type GenerationConfig struct {
	Primary ai.SamplingParams `mapstructure:"primary"`
	Reduced ai.SamplingParams `mapstructure:"reduced"`
}

type HuggingFaceConfig struct {
	APIURL       string        `mapstructure:"api-url"`
	Models       []string      `mapstructure:"models"`
	Token        string        `mapstructure:"token"`
	TokenFile    string        `mapstructure:"token-file"`
	Timeout      time.Duration `mapstructure:"timeout"`
	WaitForModel bool          `mapstructure:"wait-for-model"`
}

type GeminiConfig struct {
	APIKey     string   `mapstructure:"api-key"`
	APIKeyFile string   `mapstructure:"api-key-file"`
	Models     []string `mapstructure:"models"`
	MaxRetries int      `mapstructure:"max-retries"`
}

var (
	// Used for flags.
	cfgFile string
	// configErr keeps a broken config file from aborting before the command can answer the host.
	configErr error

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "career-recommender suggests careers for a skills, interests and budget profile using a hosted language model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is career-recommender.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("provider", huggingface.Provider)
	v.SetDefault("request-timeout", defaultRequestTimeout)
	v.SetDefault("max-input-bytes", bridge.DefaultMaxInputBytes)
	v.SetDefault("max-log-length", defaultMaxLogLength)

	v.SetDefault("filtering.domain-terms", []string{})
	v.SetDefault("filtering.disabled", []string{})

	v.SetDefault("huggingface.api-url", huggingface.DefaultAPIURL)
	v.SetDefault("huggingface.models", huggingface.DefaultModels)
	v.SetDefault("huggingface.token", "")
	v.SetDefault("huggingface.token-file", "")
	v.SetDefault("huggingface.timeout", huggingface.DefaultTimeout)
	v.SetDefault("huggingface.wait-for-model", true)

	v.SetDefault("gemini.api-key", "")
	v.SetDefault("gemini.api-key-file", "")
	v.SetDefault("gemini.models", []string{})
	v.SetDefault("gemini.max-retries", 3)
}

func initConfig() {
	configErr = readConfig(viper.GetViper(), cfgFile)
}

// readConfig loads the optional config file. A missing default file is fine;
// an explicitly requested one must exist.
func readConfig(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
		v.SetConfigType("yaml")
	}

	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if file == "" && errors.As(err, &notFound) {
		return nil
	}

	return fmt.Errorf("reading config: %w", err)
}

func getConfig(v *viper.Viper) (*Config, error) {
	if configErr != nil {
		return nil, configErr
	}

	config := &Config{
		Generation: GenerationConfig{
			Primary: ai.PrimaryParams(),
			Reduced: ai.ReducedParams(),
		},
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	config.Provider = strings.ToLower(strings.TrimSpace(config.Provider))
	switch config.Provider {
	case huggingface.Provider, gemini.Provider, providerAuto:
	default:
		return nil, fmt.Errorf("unsupported provider: %q", config.Provider)
	}

	if err := config.Filtering.Validate(); err != nil {
		return nil, fmt.Errorf("filtering config: %w", err)
	}

	return config, nil
}
