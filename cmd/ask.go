package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spigell/career-recommender/internal/bridge"
	"github.com/spigell/career-recommender/internal/career"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask for a profile interactively and print recommendations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return ask(cmd)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

// ask collects a profile with prompts and runs it through the same session as run.
func ask(cmd *cobra.Command) error {
	log, err := newRequestLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		return err
	}

	input, err := promptProfile()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := withTimeout(ctx, config.RequestTimeout)
	defer cancel()

	var out bytes.Buffer
	serveErr := newSession(config, log).Serve(ctx, bytes.NewReader(input), &out)

	var records []career.Recommendation
	if err := json.Unmarshal(out.Bytes(), &records); err != nil {
		if serveErr != nil {
			return serveErr
		}
		return fmt.Errorf("decoding answer: %w", err)
	}

	if err := bridge.WriteIndented(cmd.OutOrStdout(), records); err != nil {
		return err
	}

	if serveErr != nil {
		log.Error("request failed", zap.Error(serveErr))
	}

	return serveErr
}

func promptProfile() ([]byte, error) {
	skills, err := (&promptui.Prompt{Label: "Skills (comma separated)", Validate: notBlank}).Run()
	if err != nil {
		return nil, err
	}

	interests, err := (&promptui.Prompt{Label: "Interests (comma separated)", Validate: notBlank}).Run()
	if err != nil {
		return nil, err
	}

	budget, err := (&promptui.Prompt{Label: "Budget for education/training", Default: "0", Validate: nonNegative}).Run()
	if err != nil {
		return nil, err
	}

	education, err := (&promptui.Prompt{Label: "Education level (optional)"}).Run()
	if err != nil {
		return nil, err
	}

	experience, err := (&promptui.Prompt{Label: "Years of experience (optional)", Validate: optionalNonNegative}).Run()
	if err != nil {
		return nil, err
	}

	return profileInput(skills, interests, budget, education, experience)
}

// profileInput builds the JSON request the host would send from prompt answers.
func profileInput(skills, interests, budget, education, experience string) ([]byte, error) {
	input := map[string]any{
		"skills":    skills,
		"interests": interests,
		"budget":    strings.TrimSpace(budget),
	}
	if education = strings.TrimSpace(education); education != "" {
		input["educationLevel"] = education
	}
	if experience = strings.TrimSpace(experience); experience != "" {
		input["experience"] = experience
	}

	return json.Marshal(input)
}

func notBlank(s string) error {
	if strings.TrimSpace(strings.ReplaceAll(s, ",", "")) == "" {
		return errors.New("at least one value is required")
	}
	return nil
}

func nonNegative(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("enter a number")
	}
	if v < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func optionalNonNegative(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return nonNegative(s)
}
