package task_test

import (
	"context"
	"testing"
	"time"

	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status      task.Status
		duration    time.Duration
		expected    time.Duration
		expectedErr bool
	}{
		{task.StatusSucceeded, time.Second, time.Second, false},
		{task.StatusFailed, time.Second, time.Second, false},
		{task.StatusSkipped, time.Second, 0, false},
		{task.StatusNotRun, time.Second, 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.status.String(), func(t *testing.T) {
			t.Parallel()

			tsk := task.NewRegistry().Register("build").Task()

			err := tsk.Transition(tc.status, tc.duration)
			if tc.expectedErr {
				require.ErrorIs(t, err, task.ErrInvalidTransition)
				assert.Equal(t, task.StatusNotRun, tsk.Status())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.status, tsk.Status())
			assert.Equal(t, tc.expected, tsk.Duration())

			// terminal statuses are final
			require.ErrorIs(t, tsk.Transition(task.StatusSucceeded, time.Minute), task.ErrInvalidTransition)
			assert.Equal(t, tc.status, tsk.Status())
		})
	}
}

func TestRegistryCaseInsensitiveNames(t *testing.T) {
	t.Parallel()

	registry := task.NewRegistry()
	registry.Register("Build")

	tsk, ok := registry.Lookup("build")
	require.True(t, ok)
	assert.Equal(t, "Build", tsk.Name())

	_, ok = registry.Lookup("test")
	assert.False(t, ok)
}

func TestRegistryDuplicates(t *testing.T) {
	t.Parallel()

	registry := task.NewRegistry()
	first := registry.Register("build").Description("first")
	registry.Register("BUILD").Description("second")
	registry.Register("")

	err := registry.Err()
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))

	var dupErr task.DuplicateTaskError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "BUILD", dupErr.Name)

	var emptyErr task.EmptyTaskNameError
	require.ErrorAs(t, err, &emptyErr)

	tasks := registry.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, first.Task(), tasks[0])
	assert.Equal(t, "first", tasks[0].Description())
}

func TestBuilder(t *testing.T) {
	t.Parallel()

	var calls []string

	registry := task.NewRegistry()
	tsk := registry.Register("package").
		DependsOn("build", "test").
		DependsOn("docs").
		WithCriteria(func(context.Context, *task.Context) bool { return true }).
		WithCriteria(nil).
		ContinueOnError().
		Does(func(context.Context, *task.Context) error {
			calls = append(calls, "first")
			return nil
		}).
		Does(func(context.Context, *task.Context) error {
			calls = append(calls, "second")
			return nil
		}).
		OnError(func(context.Context, *task.Context, error) error { return nil }).
		Finally(func(context.Context, *task.Context) error { return nil }).
		Description("Creates the archive").
		Task()

	assert.Equal(t, []string{"build", "test", "docs"}, tsk.Dependencies())
	assert.Len(t, tsk.Criteria(), 1)
	assert.True(t, tsk.ContinueOnError())
	assert.NotNil(t, tsk.ErrorHandler())
	assert.NotNil(t, tsk.FinallyHandler())
	assert.Equal(t, "Creates the archive", tsk.Description())

	for _, action := range tsk.Actions() {
		require.NoError(t, action(context.Background(), &task.Context{Task: tsk}))
	}

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestFrozenRegistryPanics(t *testing.T) {
	t.Parallel()

	registry := task.NewRegistry()
	builder := registry.Register("build")
	registry.Freeze()

	assert.True(t, registry.IsFrozen())
	assert.PanicsWithValue(t, task.ErrRegistryFrozen, func() { builder.DependsOn("clean") })
	assert.PanicsWithValue(t, task.ErrRegistryFrozen, func() { registry.Register("test") })
	assert.Empty(t, builder.Task().Dependencies())
}

func TestContextName(t *testing.T) {
	t.Parallel()

	assert.Empty(t, (&task.Context{}).Name())

	tsk := task.NewRegistry().Register("lint").Task()
	assert.Equal(t, "lint", (&task.Context{Task: tsk}).Name())
}
