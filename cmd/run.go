package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spigell/career-recommender/internal/ai"
	"github.com/spigell/career-recommender/internal/bridge"
	"github.com/spigell/career-recommender/internal/career"
	"github.com/spigell/career-recommender/internal/logger"
	"github.com/spigell/career-recommender/internal/recommend"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Read one profile from stdin and write recommendations to stdout",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("provider", "", "model provider: huggingface, gemini or auto")
	runCmd.Flags().Duration("timeout", 0, "deadline for the whole request")

	viper.BindPFlag("provider", runCmd.Flags().Lookup("provider"))
	viper.BindPFlag("request-timeout", runCmd.Flags().Lookup("timeout"))
}

// run serves a single request for the host process.
func run(in io.Reader, out io.Writer) error {
	log, err := newRequestLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		log.Error("getting a config", zap.Error(err))
		if werr := bridge.WriteRecords(out, []career.Recommendation{career.ErrorRecord(bridge.MsgModelLoad)}); werr != nil {
			return werr
		}
		return err
	}

	log.Info("starting the career-recommender",
		zap.String("version", version),
		zap.String("provider", config.Provider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := withTimeout(ctx, config.RequestTimeout)
	defer cancel()

	return newSession(config, log).Serve(ctx, in, out)
}

func newRequestLogger() (*zap.Logger, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	return logger.WithRequestID(log, uuid.NewString()), nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeoutCause(ctx, timeout, fmt.Errorf("request timed out after %s", timeout))
}

func newSession(config *Config, log *zap.Logger) *bridge.Session {
	return &bridge.Session{
		Load: func(ctx context.Context) (bridge.Recommender, error) {
			generator, err := ai.LoadWithRetry(ctx, candidates(config, log), log)
			if err != nil {
				return nil, err
			}

			genLog := logger.WithCommonFields(log, providerOf(generator), generator.Model())

			return recommend.New(generator, recommend.Config{
				Primary:      config.Generation.Primary,
				Reduced:      config.Generation.Reduced,
				MaxLogLength: config.MaxLogLength,
				Filtering:    &config.Filtering,
			}, genLog), nil
		},
		MaxInputBytes: config.MaxInputBytes,
		MaxLogLength:  config.MaxLogLength,
		Logger:        log,
	}
}
