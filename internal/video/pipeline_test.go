package video

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catPipeline builds a Pipeline whose "encoder" is the `cat` utility, which
// echoes stdin to stdout verbatim. This exercises the queue/recording/stats
// plumbing without depending on a real ffmpeg binary being installed.
func catPipeline(t *testing.T, width, height int) *Pipeline {
	t.Helper()
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	cfg := Config{
		Width: width, Height: height, FPS: 30,
		TempDir: t.TempDir(),
		Encoder: "cat",
		Args:    []string{},
	}
	return New(cfg)
}

func TestPipeline_StartStopRoundTrip(t *testing.T) {
	p := catPipeline(t, 2, 2) // frame = 12 bytes

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, p.Start(ctx))

	frame := make([]byte, 2*2*3)
	for i := range frame {
		frame[i] = byte(i)
	}

	require.NoError(t, p.AddFrame(frame))

	chunk, ok := p.GetNextChunk(ctx, 2*time.Second)
	require.True(t, ok)
	assert.Equal(t, frame, chunk.Data)
	assert.Equal(t, uint64(1), chunk.Sequence)

	require.NoError(t, p.Stop(context.Background(), ""))

	snap := p.Stats().Snapshot()
	assert.Equal(t, uint64(1), snap.FramesReceived)
	assert.Equal(t, uint64(1), snap.FramesEncoded)
	assert.Equal(t, uint64(1), snap.ChunksProduced)
}

func TestPipeline_RejectsWrongFrameSize(t *testing.T) {
	p := catPipeline(t, 4, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.Start(ctx))
	defer p.Stop(context.Background(), "")

	err := p.AddFrame([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestPipeline_AddFrameBeforeStart(t *testing.T) {
	p := catPipeline(t, 2, 2)
	err := p.AddFrame(make([]byte, 2*2*3))
	assert.ErrorIs(t, err, ErrNotStreaming)
}

func TestPipeline_DoubleStartRejected(t *testing.T) {
	p := catPipeline(t, 2, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, p.Start(ctx))
	defer p.Stop(context.Background(), "")

	err := p.Start(ctx)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestPipeline_TempFileRemovedWithoutRecordPath(t *testing.T) {
	p := catPipeline(t, 2, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, p.Start(ctx))

	frame := make([]byte, 2*2*3)
	require.NoError(t, p.AddFrame(frame))
	_, _ = p.GetNextChunk(ctx, 2*time.Second)

	tempPath := p.tempPath
	require.NoError(t, p.Stop(context.Background(), ""))

	_, err := os.Stat(tempPath)
	assert.True(t, os.IsNotExist(err), "temp file should be removed when no recording path was requested")
}

type fakeSurface struct {
	rgb           []byte
	width, height int
}

func (f *fakeSurface) Snapshot() ([]byte, int, int) {
	return f.rgb, f.width, f.height
}

func TestPipeline_RunCaptureLoopFeedsFrames(t *testing.T) {
	p := catPipeline(t, 2, 2)
	p.cfg.FPS = 100 // fast tick for the test

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.Start(ctx))
	defer p.Stop(context.Background(), "")

	surface := &fakeSurface{rgb: make([]byte, 2*2*3), width: 2, height: 2}

	loopCtx, loopCancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer loopCancel()

	_ = p.RunCaptureLoop(loopCtx, surface)

	snap := p.Stats().Snapshot()
	assert.Greater(t, snap.FramesReceived, uint64(0))
}

func TestPipeline_RestartAfterStop(t *testing.T) {
	p := catPipeline(t, 2, 2)

	ctx := context.Background()
	require.NoError(t, p.Start(ctx))
	require.NoError(t, p.Stop(ctx, ""))

	// A stopped pipeline can be started again with a fresh queue.
	require.NoError(t, p.Start(ctx))
	defer p.Stop(ctx, "")

	require.NoError(t, p.AddFrame(make([]byte, 2*2*3)))

	_, ok := p.GetNextChunk(ctx, 2*time.Second)
	assert.True(t, ok)
}

func TestPipeline_GetNextChunkAfterStopReturnsImmediately(t *testing.T) {
	p := catPipeline(t, 2, 2)

	ctx := context.Background()
	require.NoError(t, p.Start(ctx))
	require.NoError(t, p.Stop(ctx, ""))

	start := time.Now()
	_, ok := p.GetNextChunk(ctx, 5*time.Second)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}
