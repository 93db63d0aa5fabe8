package ailink

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Attempt records one candidate tried by Fallback.
type Attempt struct {
	Candidate string
	Kind      ErrorKind
	Err       error
	Duration  time.Duration
}

// Succeeded reports whether the attempt produced a completion.
func (a Attempt) Succeeded() bool {
	return a.Err == nil
}

// ExhaustedError is returned when every candidate failed. It unwraps to the
// last failure, so Classify(err) reports the last attempt's kind.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	if e == nil || len(e.Attempts) == 0 {
		return "no candidates attempted"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Candidate, a.Err))
	}
	return fmt.Sprintf("all %d candidates failed: %s", len(e.Attempts), strings.Join(parts, "; "))
}

func (e *ExhaustedError) Unwrap() error {
	if e == nil || len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}

// Last returns the final attempt.
func (e *ExhaustedError) Last() Attempt {
	if e == nil || len(e.Attempts) == 0 {
		return Attempt{}
	}
	return e.Attempts[len(e.Attempts)-1]
}

// Fallback tries candidates in order and returns the first non-empty result.
// An empty (whitespace-only) result counts as a failure. Each candidate is
// tried at most once; a cancelled context stops the loop.
func Fallback(ctx context.Context, candidates []string, try func(ctx context.Context, candidate string) (string, error)) (string, []Attempt, error) {
	if len(candidates) == 0 {
		return "", nil, fmt.Errorf("no candidates configured")
	}

	attempts := make([]Attempt, 0, len(candidates))
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			if len(attempts) == 0 {
				return "", attempts, err
			}
			break
		}

		started := time.Now()
		text, err := try(ctx, candidate)
		if err == nil && strings.TrimSpace(text) == "" {
			err = ErrEmptyCompletion
		}

		attempt := Attempt{Candidate: candidate, Err: err, Duration: time.Since(started)}
		if err != nil {
			attempt.Kind = Classify(err)
		}
		attempts = append(attempts, attempt)

		if err == nil {
			return text, attempts, nil
		}
	}

	return "", attempts, &ExhaustedError{Attempts: attempts}
}
