// Package llmretry runs bounded invoke/repair/parse/validate cycles against
// an LLM and classifies the terminal outcome.
package llmretry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cvprofile-backend/internal/repair"
	"cvprofile-backend/internal/shared/telemetry"
)

var (
	// ErrRetryExhausted is returned when every attempt failed and the last
	// attempt produced no usable items.
	ErrRetryExhausted = errors.New("retry exhausted")
	// ErrEmptyModelResponse marks a zero-length model response. Counted as an
	// attempt failure, never a crash.
	ErrEmptyModelResponse = errors.New("empty model response")
)

// Config bounds a retry run.
type Config struct {
	MaxAttempts int
	// Delay returns the wait before the given attempt (2-based; never called
	// before the first attempt). Nil means a fixed 1000 ms.
	Delay func(attempt int) time.Duration
	// Flow tags telemetry lines, e.g. "extraction" or "suggestions".
	Flow string
}

// FixedDelay returns a delay policy that waits d between attempts.
func FixedDelay(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration { return d }
}

// Verdict is the quality validator's judgment of one parsed value.
type Verdict[T any] struct {
	Valid    bool
	Filtered T
	Count    int
	Errors   []string
	Warnings []string
}

// Steps supplies the per-attempt callbacks.
type Steps[T any] struct {
	// Invoke calls the model and returns its raw text.
	Invoke func(ctx context.Context, attempt int) (string, error)
	// Parse deserializes a repaired candidate.
	Parse func(candidate string) (T, error)
	// Validate judges quality. Attempt success is Valid && Count > 0.
	Validate func(value T) Verdict[T]
}

// Outcome carries the terminal result of a run.
type Outcome[T any] struct {
	Value    T
	Attempt  int
	Degraded bool
	Errors   []string
	Warnings []string
}

// Run executes up to cfg.MaxAttempts cycles. It returns as soon as one
// attempt validates. When the final attempt fails validation but still
// yielded quality items, the run degrades to those items instead of failing.
// Otherwise the run ends with ErrRetryExhausted wrapping the last error.
func Run[T any](ctx context.Context, cfg Config, steps Steps[T]) (Outcome[T], error) {
	var zero Outcome[T]
	if cfg.MaxAttempts < 1 {
		return zero, fmt.Errorf("max attempts must be positive, got %d", cfg.MaxAttempts)
	}
	delay := cfg.Delay
	if delay == nil {
		delay = FixedDelay(time.Second)
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(delay(attempt)):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		start := time.Now()
		verdict, vErr := runAttempt(ctx, attempt, steps)
		duration := time.Since(start)

		if vErr == nil && verdict.Valid && verdict.Count > 0 {
			logAttempt(cfg.Flow, attempt, duration, "success", verdict.Count, nil)
			return Outcome[T]{
				Value:    verdict.Filtered,
				Attempt:  attempt,
				Warnings: verdict.Warnings,
			}, nil
		}

		if vErr == nil {
			vErr = fmt.Errorf("validation failed: %s", strings.Join(verdict.Errors, ", "))
		}
		lastErr = vErr
		logAttempt(cfg.Flow, attempt, duration, "failure", verdict.Count, vErr)

		// Last attempt with partial quality items degrades instead of failing.
		if attempt == cfg.MaxAttempts && verdict.Count > 0 {
			return Outcome[T]{
				Value:    verdict.Filtered,
				Attempt:  attempt,
				Degraded: true,
				Errors:   verdict.Errors,
				Warnings: verdict.Warnings,
			}, nil
		}
	}

	return zero, fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, cfg.MaxAttempts, lastErr)
}

// runAttempt executes one invoke/repair/parse/validate cycle. Panics from
// the callbacks are contained and reported as attempt errors.
func runAttempt[T any](ctx context.Context, attempt int, steps Steps[T]) (verdict Verdict[T], err error) {
	defer func() {
		if rec := recover(); rec != nil {
			verdict = Verdict[T]{}
			err = fmt.Errorf("attempt panicked: %v", rec)
		}
	}()

	raw, err := steps.Invoke(ctx, attempt)
	if err != nil {
		return Verdict[T]{}, fmt.Errorf("model invocation: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return Verdict[T]{}, ErrEmptyModelResponse
	}

	candidate := repair.Repair(raw)
	value, err := steps.Parse(candidate)
	if err != nil {
		return Verdict[T]{}, fmt.Errorf("parse: %w (candidate head %q tail %q)",
			err, head(candidate, 160), tail(candidate, 160))
	}

	return steps.Validate(value), nil
}

func logAttempt(flow string, attempt int, duration time.Duration, result string, count int, err error) {
	fields := map[string]any{
		"flow":        flow,
		"attempt":     attempt,
		"result":      result,
		"count":       count,
		"duration_ms": float64(duration.Microseconds()) / 1000.0,
	}
	if err != nil {
		fields["error"] = sanitize(err.Error())
		telemetry.Warn("llm.attempt", fields)
		return
	}
	telemetry.Info("llm.attempt", fields)
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func sanitize(msg string) string {
	msg = strings.ReplaceAll(msg, "\n", " ")
	if len(msg) > 500 {
		msg = msg[:500]
	}
	return msg
}
