package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spigell/career-recommender/internal/career"
	"github.com/spigell/career-recommender/internal/schemas"
	"github.com/spigell/career-recommender/internal/utils"

	"go.uber.org/zap"
)

// Messages sent back to the host inside error records.
const (
	MsgMissingSkillsOrInterests = "Skills and interests must be provided"
	MsgNegativeBudget           = "Budget must be a non-negative number"
	MsgNegativeExperience       = "Experience must be a non-negative number"
	MsgModelLoad                = "Failed to initialize the language model. Please check installation."

	msgInvalidInput = "Invalid JSON input: %s"
	msgGeneration   = "Failed to generate recommendations: %s"
	msgInterrupted  = "Request interrupted: %s"
)

var (
	// ErrModelLoad is returned by Serve when no model could be loaded.
	ErrModelLoad = errors.New("model could not be loaded")
	// ErrInterrupted is returned by Serve when the context ended before an answer was ready.
	ErrInterrupted = errors.New("request interrupted")
)

// Recommender produces the answer for a validated profile.
type Recommender interface {
	Recommend(ctx context.Context, profile *career.Profile) ([]career.Recommendation, error)
}

// Session serves a single request.
type Session struct {
	// Load returns the recommender; it is called before stdin is read.
	Load          func(ctx context.Context) (Recommender, error)
	MaxInputBytes int64
	MaxLogLength  int
	Logger        *zap.Logger
}

// Serve loads the model, reads one profile from in and writes exactly one JSON
// array to out. Failures that the host should see are written as an error
// record; Serve then returns nil unless the model could not be loaded or the
// request was interrupted.
func (s *Session) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if s.Load == nil {
		return errors.New("session has no model loader")
	}

	recommender, err := s.Load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return s.interrupted(ctx, out, log)
		}
		log.Error("could not initialize the language model", zap.Error(err))
		if werr := s.write(out, log, []career.Recommendation{career.ErrorRecord(MsgModelLoad)}); werr != nil {
			return werr
		}
		return fmt.Errorf("%w: %w", ErrModelLoad, err)
	}

	log.Info("waiting for input data")

	profile, err := readProfile(ctx, in, s.MaxInputBytes)
	if err != nil {
		if ctx.Err() != nil {
			return s.interrupted(ctx, out, log)
		}
		log.Warn("rejecting input", zap.Error(err))
		return s.write(out, log, []career.Recommendation{career.ErrorRecord(inputMessage(err))})
	}

	log.Info("received profile",
		zap.Int("skills", len(profile.Skills)),
		zap.Int("interests", len(profile.Interests)),
		zap.Float64("budget", profile.Budget),
	)

	records, err := recommender.Recommend(ctx, profile)
	if err != nil {
		if ctx.Err() != nil {
			return s.interrupted(ctx, out, log)
		}
		log.Error("generating recommendations", zap.Error(err))
		return s.write(out, log, []career.Recommendation{career.ErrorRecord(fmt.Sprintf(msgGeneration, err))})
	}

	if err := schemas.Validate(schemas.Recommendations, records); err != nil {
		log.Warn("answer does not match the schema, using canned recommendations", zap.Error(err))
		records = career.Fallback(profile.Budget)
	}

	return s.write(out, log, records)
}

func (s *Session) interrupted(ctx context.Context, out io.Writer, log *zap.Logger) error {
	cause := context.Cause(ctx)
	log.Warn("request interrupted", zap.Error(cause))

	if err := s.write(out, log, []career.Recommendation{career.ErrorRecord(fmt.Sprintf(msgInterrupted, cause))}); err != nil {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInterrupted, cause)
}

func (s *Session) write(out io.Writer, log *zap.Logger, records []career.Recommendation) error {
	if len(records) == 1 && records[0].Career == career.ErrorCareer {
		if err := schemas.Validate(schemas.Error, records); err != nil {
			log.Error("error record does not match the schema", zap.Error(err))
		}
	}

	var buf bytes.Buffer
	if err := WriteRecords(&buf, records); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	log.Info("sending output", zap.Strings("careers", career.NewRecommendations(records).Titles()))
	log.Debug("output", zap.String("json", utils.TruncateForLog(buf.String(), s.maxLogLength())))

	if _, err := buf.WriteTo(out); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}

func (s *Session) maxLogLength() int {
	if s.MaxLogLength <= 0 {
		return 2000
	}
	return s.MaxLogLength
}

// readProfile stops waiting on in when ctx ends. The reading goroutine is left
// behind in that case; the process is about to exit.
func readProfile(ctx context.Context, in io.Reader, limit int64) (*career.Profile, error) {
	type result struct {
		profile *career.Profile
		err     error
	}

	done := make(chan result, 1)
	go func() {
		profile, err := ReadProfile(in, limit)
		done <- result{profile: profile, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.profile, res.err
	}
}

func inputMessage(err error) string {
	switch {
	case errors.Is(err, career.ErrMissingSkillsOrInterests):
		return MsgMissingSkillsOrInterests
	case errors.Is(err, career.ErrNegativeBudget):
		return MsgNegativeBudget
	case errors.Is(err, career.ErrNegativeExperience):
		return MsgNegativeExperience
	}

	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return fmt.Sprintf(msgInvalidInput, inputErr.Detail)
	}

	return fmt.Sprintf(msgInvalidInput, err)
}
