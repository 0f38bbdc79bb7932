package runtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperdbg/internal/runtime"
)

type countingReader struct {
	reads int
	stop  int
}

func (r *countingReader) ReadMessage(ctx context.Context) (bool, error) {
	r.reads++
	if r.reads >= r.stop {
		return false, errStop
	}
	return true, nil
}

var errStop = assertError("stop")

type assertError string

func (e assertError) Error() string { return string(e) }

func TestRunMessagePollStopsOnReaderError(t *testing.T) {
	c := runtime.New(context.Background(), time.Millisecond)
	reader := &countingReader{stop: 3}
	c.RunMessagePoll(reader)

	err := c.Wait()
	assert.ErrorIs(t, err, errStop)
	assert.Equal(t, 3, reader.reads)
}

func TestShutdownCancelsInterpreterLoop(t *testing.T) {
	c := runtime.New(context.Background(), time.Millisecond)
	started := make(chan struct{})
	c.RunInterpreterLoop(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	<-started
	err := c.Shutdown()
	require.Error(t, err)
}

func TestSpawnSymbolJobRunsAndCompletes(t *testing.T) {
	c := runtime.New(context.Background(), time.Millisecond)
	ran := false
	c.SpawnSymbolJob(func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, c.Wait())
	assert.True(t, ran)
}
