package exception_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tigerroll/standlake/pkg/util/exception"

	"github.com/stretchr/testify/assert"
)

func TestNewStageError(t *testing.T) {
	originalErr := errors.New("connection refused")
	se := exception.NewStageError("storage", "failed to upload snapshot", originalErr, true)

	assert.Equal(t, "storage", se.Module)
	assert.Equal(t, "failed to upload snapshot", se.Message)
	assert.Equal(t, originalErr, se.Unwrap())
	assert.True(t, se.IsRetryable())
	assert.Contains(t, se.Error(), "[storage] failed to upload snapshot: connection refused")
	assert.NotEmpty(t, se.StackTrace)
}

func TestNewStageErrorf(t *testing.T) {
	se := exception.NewStageErrorf("transformer", "unknown outcome %q in form string", 'X')

	assert.False(t, se.IsRetryable())
	assert.Nil(t, se.Unwrap())
	assert.Contains(t, se.Error(), "[transformer] unknown outcome 'X' in form string")
}

func TestErrorWithoutOriginal(t *testing.T) {
	se := exception.NewStageError("converter", "no files found", nil, false)

	assert.Equal(t, "[converter] no files found", se.Error())
	assert.Nil(t, errors.Unwrap(se))
}

func TestIsStageError(t *testing.T) {
	assert.True(t, exception.IsStageError(exception.NewStageErrorf("fetcher", "boom")))
	assert.False(t, exception.IsStageError(errors.New("plain")))
	assert.False(t, exception.IsStageError(nil))
}

func TestExtractErrorMessage(t *testing.T) {
	se := exception.NewStageError("manifest", "insert failed", fmt.Errorf("duplicate key"), false)

	assert.Equal(t, "insert failed", exception.ExtractErrorMessage(se))
	assert.Equal(t, "plain", exception.ExtractErrorMessage(errors.New("plain")))
	assert.Equal(t, "", exception.ExtractErrorMessage(nil))
}
