package reporter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerStopsAtFirstError(t *testing.T) {
	var reported []ErrorWithPath
	h := NewHandler(NewReporter(func(err ErrorWithPath) error {
		reported = append(reported, err)
		return err
	}, Discard))

	err := h.HandleErrorf("en_US", "%.menu", "bad %s", "value")
	require.Error(t, err)
	assert.Equal(t, `locale "en_US" at "%.menu": bad value`, err.Error())

	again := h.HandleErrorf("en_US", "%.other", "ignored")
	assert.Equal(t, err, again)
	assert.Len(t, reported, 1)
	assert.Equal(t, err, h.Error())
}

func TestHandlerLenient(t *testing.T) {
	var count int
	h := NewHandler(NewReporter(func(ErrorWithPath) error {
		count++
		return nil
	}, Discard))

	assert.NoError(t, h.HandleErrorf("de_DE", "%.a", "one"))
	assert.NoError(t, h.HandleError(Error("de_DE", "%.b", errors.New("two"))))
	assert.Equal(t, 2, count)
	assert.ErrorIs(t, h.Error(), ErrInvalidSource)
	assert.NoError(t, h.ReporterError())
}

func TestHandlerPlainError(t *testing.T) {
	h := NewHandler(nil)
	plain := errors.New("disk on fire")
	assert.Equal(t, plain, h.HandleError(plain))
	assert.Equal(t, plain, h.Error())
}

func TestHandlerWarnings(t *testing.T) {
	var warnings []ErrorWithPath
	h := NewHandler(NewReporter(nil, func(err ErrorWithPath) {
		warnings = append(warnings, err)
	}))
	cause := errors.New("duplicate key")
	h.HandleWarning("en_US", "%.a", cause)

	require.Len(t, warnings, 1)
	assert.Equal(t, "en_US", warnings[0].GetLocale())
	assert.Equal(t, "%.a", warnings[0].GetPath())
	assert.ErrorIs(t, warnings[0], cause)

	located := Error("fr_FR", "%.b", cause)
	h.HandleWarningWithPath(located)
	require.Len(t, warnings, 2)
	assert.Equal(t, located, warnings[1])
	assert.NoError(t, h.Error())
}
