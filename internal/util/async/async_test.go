package async

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunParallel_Success(t *testing.T) {
	t.Parallel()
	var count atomic.Int32
	task := func(_ context.Context) error {
		count.Add(1)
		return nil
	}

	err := RunParallel(context.Background(), []Task{
		{Name: "clusters", Func: task},
		{Name: "buckets", Func: task},
		{Name: "databases", Func: task},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), count.Load())
}

func TestRunParallel_EmptyTasks(t *testing.T) {
	t.Parallel()
	assert.NoError(t, RunParallel(context.Background(), nil))
}

func TestRunParallel_WaitsForAllAndReturnsError(t *testing.T) {
	t.Parallel()
	var finished atomic.Int32

	err := RunParallel(context.Background(), []Task{
		{Name: "failing", Func: func(_ context.Context) error {
			finished.Add(1)
			return errors.New("boom")
		}},
		{Name: "slow", Func: func(_ context.Context) error {
			time.Sleep(20 * time.Millisecond)
			finished.Add(1)
			return nil
		}},
	})

	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failing: "))
	assert.Equal(t, int32(2), finished.Load())
}

func TestFuture_Await(t *testing.T) {
	t.Parallel()
	f := Go(context.Background(), "database", func(_ context.Context) (string, error) {
		return "postgres://db", nil
	})

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "postgres://db", v)

	// A second await returns the same result.
	v, err = f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "postgres://db", v)
}

func TestFuture_Error(t *testing.T) {
	t.Parallel()
	want := errors.New("quota exceeded")
	f := Go(context.Background(), "bucket", func(_ context.Context) (int, error) {
		return 0, want
	})

	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, want)
}

func TestFuture_Panic(t *testing.T) {
	t.Parallel()
	f := Go(context.Background(), "bucket", func(_ context.Context) (int, error) {
		panic("nil map")
	})

	_, err := f.Await(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket panicked")
}

func TestFuture_AwaitCancelled(t *testing.T) {
	t.Parallel()
	block := make(chan struct{})
	defer close(block)
	f := Go(context.Background(), "database", func(_ context.Context) (int, error) {
		<-block
		return 1, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "waiting for database")
}

func TestResolved(t *testing.T) {
	t.Parallel()
	want := errors.New("disabled")
	tests := []struct {
		name    string
		value   int
		err     error
		wantErr error
	}{
		{name: "value", value: 7},
		{name: "error", err: want, wantErr: want},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			v, err := Resolved("database", tt.value, tt.err).Await(ctx)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, v)
		})
	}
}
