package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() Worker[int, string] {
	return func(_ context.Context, n int) (string, error) {
		return fmt.Sprint(n * n), nil
	}
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestRun_OrderIndependentOfWorkersAndChunks(t *testing.T) {
	units := seq(257)
	want, err := Run(context.Background(), Config{Workers: 1, ChunkSize: 1}, units, square)
	require.NoError(t, err)
	require.Len(t, want, len(units))
	assert.Equal(t, "65536", want[256])

	for _, cfg := range []Config{
		{Workers: 4, ChunkSize: 1},
		{Workers: 8, ChunkSize: 7},
		{Workers: 3, ChunkSize: 1000},
		{Workers: 0, ChunkSize: 0},
	} {
		got, err := Run(context.Background(), cfg, units, square)
		require.NoError(t, err)
		assert.Equal(t, want, got, "%+v", cfg)
	}
}

func TestRun_Empty(t *testing.T) {
	got, err := Run(context.Background(), Config{Workers: 4}, nil, square)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRun_OneWorkerPerGoroutine(t *testing.T) {
	var made atomic.Int32
	newWorker := func() Worker[int, int] {
		made.Add(1)
		return func(_ context.Context, n int) (int, error) {
			return n, nil
		}
	}
	got, err := Run(context.Background(), Config{Workers: 5, ChunkSize: 3}, seq(100), newWorker)
	require.NoError(t, err)
	assert.Equal(t, seq(100), got)
	assert.Equal(t, int32(5), made.Load())
}

func TestRun_FirstErrorAbortsWithoutPartialOutput(t *testing.T) {
	boom := errors.New("boom")
	var processed atomic.Int32
	newWorker := func() Worker[int, int] {
		return func(_ context.Context, n int) (int, error) {
			processed.Add(1)
			if n == 40 {
				return 0, boom
			}
			return n, nil
		}
	}
	got, err := Run(context.Background(), Config{Workers: 4, ChunkSize: 5}, seq(200), newWorker)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, got)
	assert.LessOrEqual(t, int(processed.Load()), 200)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := Run(ctx, Config{Workers: 2}, seq(10), square)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
}

func TestConfig_Normalize(t *testing.T) {
	c := Config{}.Normalize()
	assert.GreaterOrEqual(t, c.Workers, 1)
	assert.Equal(t, 1, c.ChunkSize)
	assert.Equal(t, Config{Workers: 3, ChunkSize: 9}, Config{Workers: 3, ChunkSize: 9}.Normalize())
}
