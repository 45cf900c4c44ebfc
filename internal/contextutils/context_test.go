package contextutils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRequestScopedValues(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	fallback := zap.NewNop()
	assert.Same(t, fallback, GetLogger(ctx, fallback))
	_, ok := GetRequestStart(ctx)
	assert.False(t, ok)

	logger := zap.NewExample()
	start := time.Now()
	ctx = WithRequestID(ctx, "req-123")
	ctx = WithLogger(ctx, logger)
	ctx = WithRequestStart(ctx, start)

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Same(t, logger, GetLogger(ctx, fallback))
	got, ok := GetRequestStart(ctx)
	assert.True(t, ok)
	assert.Equal(t, start, got)
}
