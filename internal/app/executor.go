package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// Operations that touch remote data and durable state run as five ordered steps:
//
//	VALIDATE  check inputs and preconditions, no side effects
//	PERFORM   do the remote work (fetch, push)
//	VERIFY    inspect what came back and decide what to change
//	ARCHIVE   persist the verified change
//	RESPOND   shape the result for the caller
//
// A failing step stops the operation; nothing after it runs, so a failed
// fetch or a rejected plan never reaches storage.

// ExecutionStep names a step of an Operation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError records which step failed.
type ExecutionError struct {
	Step  ExecutionStep
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Cause)
}

// Unwrap exposes the cause so domain.Is* helpers see through the step wrapper.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Operation holds the step functions. Any step may be nil.
type Operation[I, P, V, O any] struct {
	Name     string
	Validate func(ctx context.Context, input I) error
	Perform  func(ctx context.Context, input I) (P, error)
	Verify   func(ctx context.Context, input I, performed P) (V, error)
	Archive  func(ctx context.Context, input I, verified V) error
	Respond  func(ctx context.Context, input I, verified V) (O, error)
}

// Executor carries the fallback logger for operations run outside a request.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an executor; a nil logger means slog.Default().
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Execute runs op against input step by step.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var (
		zero      O
		performed P
		verified  V
	)

	logger := logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := time.Now()

	fail := func(step ExecutionStep, err error) (O, error) {
		level := slog.LevelError
		if step == StepValidate {
			level = slog.LevelWarn
		}

		logger.Log(ctx, level, "operation step failed",
			slog.String("step", string(step)),
			slog.Any("error", err),
		)

		return zero, &ExecutionError{Step: step, Cause: err}
	}

	if op.Validate != nil {
		if err := op.Validate(ctx, input); err != nil {
			return fail(StepValidate, err)
		}
	}

	if op.Perform != nil {
		var err error
		if performed, err = op.Perform(ctx, input); err != nil {
			return fail(StepPerform, err)
		}
	}

	if op.Verify != nil {
		var err error
		if verified, err = op.Verify(ctx, input, performed); err != nil {
			return fail(StepVerify, err)
		}
	}

	if op.Archive != nil {
		if err := op.Archive(ctx, input, verified); err != nil {
			return fail(StepArchive, err)
		}
	}

	result := zero

	if op.Respond != nil {
		var err error
		if result, err = op.Respond(ctx, input, verified); err != nil {
			return fail(StepRespond, err)
		}
	}

	logger.DebugContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}

// FailedStep reports the step an Execute error came from.
func FailedStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
