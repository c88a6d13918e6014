package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClass_String(t *testing.T) {
	assert.Equal(t, "configuration", ErrorConfiguration.String())
	assert.Equal(t, "resolution", ErrorResolution.String())
	assert.Equal(t, "structural", ErrorStructural.String())
	assert.Equal(t, "lifecycle", ErrorLifecycle.String())
	assert.Equal(t, "unknown", ErrorClass(42).String())
}

func TestWrapHelpers(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "c", "k", "a"))
		assert.NoError(t, WrapStructural(nil, "c", "k", "a"))
	})

	t.Run("message carries context", func(t *testing.T) {
		err := WrapResolution(ErrUnknownType, "container", "services.db", "instantiate")
		require.Error(t, err)
		assert.Equal(t, "container: services.db: instantiate failed: unknown type", err.Error())
		assert.True(t, errors.Is(err, ErrUnknownType))
		assert.Equal(t, "services.db", KeyPathOf(err))
	})

	t.Run("empty key path is omitted", func(t *testing.T) {
		err := Wrap(ErrNotFound, "uri", "", "dereference")
		assert.Equal(t, "uri: dereference failed: not found", err.Error())
	})
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"classified structural", WrapStructural(errors.New("boom"), "c", "", "build"), ErrorStructural},
		{"classified lifecycle", WrapLifecycle(errors.New("boom"), "c", "", "start"), ErrorLifecycle},
		{"sentinel circular", fmt.Errorf("x: %w", ErrCircularReference), ErrorStructural},
		{"sentinel service start", fmt.Errorf("x: %w", ErrServiceStart), ErrorLifecycle},
		{"sentinel scheme", fmt.Errorf("x: %w", ErrUnknownScheme), ErrorResolution},
		{"plain error", errors.New("odd"), ErrorConfiguration},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.err))
		})
	}
}

func TestPredicates(t *testing.T) {
	assert.False(t, IsStructural(nil))
	assert.True(t, IsStructural(WrapStructural(errors.New("x"), "c", "", "a")))
	assert.True(t, IsLifecycle(fmt.Errorf("%w", ErrServiceStop)))
	assert.True(t, IsResolution(WrapResolution(errors.New("x"), "c", "", "a")))
	assert.False(t, IsResolution(WrapConfiguration(errors.New("x"), "c", "", "a")))
}
