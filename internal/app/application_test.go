package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/standlake/pkg/util/exception"
)

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, ExitOK, exitCodeFor(nil))

	retryable := exception.NewStageError("manifest", "insert failed", errors.New("connection reset"), true)
	assert.Equal(t, ExitRetryableFailure, exitCodeFor(retryable))

	permanent := exception.NewStageError("transform", "failed to derive form points", errors.New("unknown outcome"), false)
	assert.Equal(t, ExitPermanentFailure, exitCodeFor(permanent))

	// The classification survives wrapping.
	wrapped := fmt.Errorf("stage aborted: %w", permanent)
	assert.Equal(t, ExitPermanentFailure, exitCodeFor(wrapped))

	// Unclassified errors default to a re-trigger.
	assert.Equal(t, ExitRetryableFailure, exitCodeFor(errors.New("boom")))
}

func TestDBProviderOptionsSkipsUnknownAdapters(t *testing.T) {
	t.Setenv("DB_ADAPTERS", "sqlite, bogus ,")
	assert.Len(t, DBProviderOptions(), 1)

	t.Setenv("DB_ADAPTERS", "bogus")
	assert.Empty(t, DBProviderOptions())
}
