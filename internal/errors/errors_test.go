package errors_test

import (
	"fmt"
	"testing"

	"github.com/kilnworks/kiln/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfigError struct{}

func (testConfigError) Error() string       { return "bad config" }
func (testConfigError) ConfigurationError() {}

func TestNewKeepsExistingStackTrace(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")
	require.Error(t, err)
	assert.True(t, errors.ContainsStackTrace(err))

	assert.Same(t, err, errors.New(err))
	assert.NoError(t, errors.New(nil))
}

func TestErrorfWrapsCause(t *testing.T) {
	t.Parallel()

	cause := testConfigError{}
	err := errors.Errorf("resolving: %w", cause)

	assert.EqualError(t, err, "resolving: bad config")
	assert.True(t, errors.Is(err, cause))
	assert.NotEmpty(t, errors.ErrorStack(err))
}

func TestIsConfigurationError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		err      error
		expected bool
	}{
		{nil, false},
		{fmt.Errorf("plain"), false},
		{testConfigError{}, true},
		{errors.New(testConfigError{}), true},
		{fmt.Errorf("wrapped: %w", testConfigError{}), true},
		{new(errors.MultiError).Append(fmt.Errorf("x"), testConfigError{}), true},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, errors.IsConfigurationError(tc.err))
		})
	}
}

func TestMultiError(t *testing.T) {
	t.Parallel()

	var errs *errors.MultiError
	require.NoError(t, errs.ErrorOrNil())

	errs = errs.Append(nil)
	require.NoError(t, errs.ErrorOrNil())

	errs = errs.Append(fmt.Errorf("first"), fmt.Errorf("second"))
	require.Error(t, errs.ErrorOrNil())
	assert.Equal(t, 2, errs.Len())
	assert.Contains(t, errs.Error(), "2 errors occurred")
	assert.Contains(t, errs.Error(), "* first")
	assert.Len(t, errors.UnwrapMultiErrors(errs), 2)
}

func TestRecover(t *testing.T) {
	t.Parallel()

	var recovered error

	func() {
		defer errors.Recover(func(cause error) {
			recovered = cause
		})

		panic("kaboom")
	}()

	require.Error(t, recovered)
	assert.Contains(t, recovered.Error(), "kaboom")
}
