package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

func TestExecute_RunsStepsInOrder(t *testing.T) {
	var steps []ExecutionStep

	op := Operation[int, int, int, string]{
		Name: "double",
		Validate: func(context.Context, int) error {
			steps = append(steps, StepValidate)
			return nil
		},
		Perform: func(_ context.Context, in int) (int, error) {
			steps = append(steps, StepPerform)
			return in * 2, nil
		},
		Verify: func(_ context.Context, _ int, p int) (int, error) {
			steps = append(steps, StepVerify)
			return p + 1, nil
		},
		Archive: func(context.Context, int, int) error {
			steps = append(steps, StepArchive)
			return nil
		},
		Respond: func(_ context.Context, _ int, v int) (string, error) {
			steps = append(steps, StepRespond)
			if v == 7 {
				return "seven", nil
			}

			return "other", nil
		},
	}

	out, err := Execute(context.Background(), NewExecutor(discardLogger()), op, 3)

	require.NoError(t, err)
	assert.Equal(t, "seven", out)
	assert.Equal(t, []ExecutionStep{StepValidate, StepPerform, StepVerify, StepArchive, StepRespond}, steps)
}

func TestExecute_StopsAtFailingStep(t *testing.T) {
	archived := false

	op := Operation[struct{}, int, int, int]{
		Name: "failing",
		Perform: func(context.Context, struct{}) (int, error) {
			return 0, domain.NewUnavailableError("remote", "timeout")
		},
		Archive: func(context.Context, struct{}, int) error {
			archived = true
			return nil
		},
	}

	_, err := Execute(context.Background(), NewExecutor(nil), op, struct{}{})

	require.Error(t, err)
	assert.False(t, archived)
	assert.True(t, domain.IsUnavailable(err))

	step, ok := FailedStep(err)
	require.True(t, ok)
	assert.Equal(t, StepPerform, step)

	_, ok = FailedStep(errors.New("plain"))
	assert.False(t, ok)
}
