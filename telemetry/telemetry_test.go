package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetupReturnsShutdown(t *testing.T) {
	shutdown, err := Setup(context.Background(), "test", "localhost:4317")
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	// no collector is listening; just make sure shutdown returns
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}
