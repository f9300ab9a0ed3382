package context_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	context_ "github.com/mkrupp/imagepipe/internal/infra/context"
)

func TestWithNewTraceID(t *testing.T) {
	t.Parallel()

	_, ok := context_.TraceIDFromContext(context.Background())
	assert.False(t, ok)

	ctx, err := context_.WithNewTraceID(context.Background())
	require.NoError(t, err)

	traceID, ok := context_.TraceIDFromContext(ctx)
	require.True(t, ok)

	id, err := uuid.FromString(traceID)
	require.NoError(t, err)
	assert.Equal(t, byte(uuid.V7), id.Version())

	kept, err := context_.EnsureTraceID(ctx)
	require.NoError(t, err)

	keptID, _ := context_.TraceIDFromContext(kept)
	assert.Equal(t, traceID, keptID)

	fresh, err := context_.WithNewTraceID(ctx)
	require.NoError(t, err)

	freshID, _ := context_.TraceIDFromContext(fresh)
	assert.NotEqual(t, traceID, freshID)
}
