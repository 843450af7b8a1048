// Package video drives the always-on video encoder subprocess that turns
// the display surface's composited raster into fragmented MP4: a rolling
// recording file plus a bounded, drop-on-full chunk queue for live
// consumers.
package video

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rcarmo/go-rdp/internal/logging"
)

const (
	stdoutChunkSize = 64 * 1024
	defaultQueueCap = 100 // ≈ 20s of chunks at a nominal 5 chunks/s
	stopTimeout     = 5 * time.Second
)

// SurfaceSource supplies the raster the capture loop encodes. It is
// satisfied by *display.Surface.
type SurfaceSource interface {
	Snapshot() (rgb []byte, width, height int)
}

// Config configures one pipeline's encoder invocation and chunk queue.
type Config struct {
	Width, Height, FPS int

	// QueueCapacity bounds the consumer chunk queue. Zero uses
	// defaultQueueCap.
	QueueCapacity int

	// TempDir is where the rolling recording file is created. Empty uses
	// os.TempDir().
	TempDir string

	// Encoder overrides the subprocess binary, default "ffmpeg". Args
	// overrides the full argument list; nil builds the standard fragmented
	// MP4 argument list. Both exist to let tests substitute
	// a stand-in subprocess for real encoding.
	Encoder string
	Args    []string
}

func (c Config) frameSize() int {
	return c.Width * c.Height * 3
}

func (c Config) withDefaults() Config {
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = defaultQueueCap
	}
	if c.Encoder == "" {
		c.Encoder = "ffmpeg"
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	return c
}

// buildFfmpegArgs returns the standard argument list: ultrafast preset,
// zerolatency tune, YUV 4:2:0, keyframe every 15 frames, closed GOP, no
// B-frames, fragmented MP4 with an empty moov and one-frame fragments.
func buildFfmpegArgs(cfg Config) []string {
	fragDurationUs := 1_000_000 / cfg.FPS
	return []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-r", fmt.Sprintf("%d", cfg.FPS),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-tune", "zerolatency",
		"-pix_fmt", "yuv420p",
		"-g", "15",
		"-keyint_min", "15",
		"-bf", "0",
		"-flags", "+cgop",
		"-f", "mp4",
		"-movflags", "frag_keyframe+empty_moov+default_base_moof",
		"-frag_duration", fmt.Sprintf("%d", fragDurationUs),
		"-min_frag_duration", "0",
		"pipe:1",
	}
}

// Pipeline owns the encoder subprocess, the chunk queue, and the rolling
// recording file for one streaming session.
type Pipeline struct {
	cfg   Config
	stats *Stats
	queue *chunkQueue

	mu       sync.Mutex
	running  bool
	disabled bool // broken-pipe restart already attempted and failed
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stdout   io.ReadCloser
	stderr   io.ReadCloser
	tempFile *os.File
	tempPath string

	seq            atomic.Uint64
	lastStdinWrite atomic.Value // time.Time

	cancel context.CancelFunc
	group  *errgroup.Group
}

// New builds a Pipeline. Call Start to spawn the encoder.
func New(cfg Config) *Pipeline {
	cfg = cfg.withDefaults()
	stats := NewStats()
	return &Pipeline{
		cfg:   cfg,
		stats: stats,
		queue: newChunkQueue(cfg.QueueCapacity, stats.QueueDrops),
	}
}

// Stats returns the pipeline's statistics collector.
func (p *Pipeline) Stats() *Stats {
	return p.stats
}

// Start spawns the encoder subprocess and its stdout/stderr reader tasks.
// The readers and the pipeline's internal bookkeeping run until ctx is
// cancelled or Stop is called.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrAlreadyRunning
	}

	// A previous Stop closed the consumer queue; restarts get a fresh one.
	if p.queue.Closed() {
		p.queue = newChunkQueue(p.cfg.QueueCapacity, p.stats.QueueDrops)
	}

	if err := p.spawnLocked(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	group, runCtx := errgroup.WithContext(runCtx)
	p.group = group

	group.Go(func() error { return p.readStdout(runCtx) })
	group.Go(func() error { return p.readStderr(runCtx) })

	p.running = true

	return nil
}

// spawnLocked starts the encoder subprocess and opens the rolling
// recording temp file. Caller must hold p.mu.
func (p *Pipeline) spawnLocked() error {
	dir := p.cfg.TempDir
	if dir == "" {
		dir = os.TempDir()
	}

	tempPath := filepath.Join(dir, fmt.Sprintf("rdp-rec-%s.mp4", uuid.NewString()))
	tempFile, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("%w: create temp recording file: %v", ErrEncoderSpawn, err)
	}

	args := p.cfg.Args
	if args == nil {
		args = buildFfmpegArgs(p.cfg)
	}

	cmd := exec.Command(p.cfg.Encoder, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		tempFile.Close()
		return fmt.Errorf("%w: stdin pipe: %v", ErrEncoderSpawn, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		tempFile.Close()
		return fmt.Errorf("%w: stdout pipe: %v", ErrEncoderSpawn, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		tempFile.Close()
		return fmt.Errorf("%w: stderr pipe: %v", ErrEncoderSpawn, err)
	}

	if err := cmd.Start(); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("%w: %v", ErrEncoderSpawn, err)
	}

	p.cmd = cmd
	p.stdin = stdin
	p.stdout = stdout
	p.stderr = stderr
	p.tempFile = tempFile
	p.tempPath = tempPath

	return nil
}

// AddFrame writes one raw 24-bit RGB frame to the encoder's stdin. It must
// be exactly Width*Height*3 bytes. A broken pipe triggers one restart
// attempt; if the restart's own write also fails, streaming is disabled
// for the remainder of this pipeline's lifetime and AddFrame keeps
// returning ErrEncoderBroken.
func (p *Pipeline) AddFrame(rgb []byte) error {
	if len(rgb) != p.cfg.frameSize() {
		return fmt.Errorf("video: frame is %d bytes, want %d", len(rgb), p.cfg.frameSize())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disabled {
		return ErrEncoderBroken
	}
	if !p.running {
		return ErrNotStreaming
	}

	if err := p.writeFrameLocked(rgb); err != nil {
		if p.restartOnceLocked() {
			if err := p.writeFrameLocked(rgb); err == nil {
				return nil
			}
		}
		p.disabled = true
		return fmt.Errorf("%w: %v", ErrEncoderBroken, err)
	}

	return nil
}

func (p *Pipeline) writeFrameLocked(rgb []byte) error {
	start := time.Now()
	_, err := p.stdin.Write(rgb)
	p.stats.StdinWriteAvg.Observe(time.Since(start))
	p.lastStdinWrite.Store(time.Now())

	if err != nil {
		return err
	}

	p.stats.FramesReceived.Inc()
	p.stats.FramesEncoded.Inc()

	return nil
}

// restartOnceLocked tears down the dead subprocess and spawns a fresh one,
// returning false if the pipeline is disabled or the spawn fails. Earlier
// restarts are not counted: a pipe that breaks again after a successful
// restart and retried write gets another restart. Caller holds p.mu.
func (p *Pipeline) restartOnceLocked() bool {
	if p.disabled {
		return false
	}

	logging.Warn("video: encoder pipe broken, attempting one restart")

	p.killLocked()

	if err := p.spawnLocked(); err != nil {
		logging.Warn("video: encoder restart failed: %v", err)
		return false
	}

	runCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	group, runCtx := errgroup.WithContext(runCtx)
	p.group = group
	group.Go(func() error { return p.readStdout(runCtx) })
	group.Go(func() error { return p.readStderr(runCtx) })

	return true
}

func (p *Pipeline) killLocked() {
	if p.cancel != nil {
		p.cancel()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	if p.tempFile != nil {
		p.tempFile.Close()
	}
}

// readStdout chunks the encoder's stdout in ≤64KiB pieces, writes every
// chunk to the rolling recording file (always — this is the full
// recording), and offers the same chunk to the bounded consumer queue.
func (p *Pipeline) readStdout(ctx context.Context) error {
	buf := make([]byte, stdoutChunkSize)
	queue := p.chunkQ()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := p.stdout.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])

			if last, ok := p.lastStdinWrite.Load().(time.Time); ok && !last.IsZero() {
				p.stats.StdoutReadAvg.Observe(time.Since(last))
			}

			if _, werr := p.tempFile.Write(data); werr != nil {
				logging.Warn("video: write recording temp file: %v", werr)
			}

			seq := p.seq.Add(1)
			queue.TryPut(Chunk{Data: data, Sequence: seq, Timestamp: time.Now()})
			p.stats.ChunksProduced.Inc()
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// readStderr drains the encoder's stderr and logs it at debug level.
func (p *Pipeline) readStderr(ctx context.Context) error {
	scanner := bufio.NewScanner(p.stderr)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		logging.Debug("ffmpeg: %s", scanner.Text())
	}
	return nil
}

// chunkQ returns the current consumer queue; the pointer is replaced when
// a stopped pipeline is restarted.
func (p *Pipeline) chunkQ() *chunkQueue {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue
}

// GetNextChunk awaits the next chunk, returning (chunk, true), or
// (Chunk{}, false) if timeout elapses or ctx is cancelled first.
func (p *Pipeline) GetNextChunk(ctx context.Context, timeout time.Duration) (Chunk, bool) {
	return p.chunkQ().Get(ctx, timeout)
}

// RunCaptureLoop composites the pointer into the final surface (lazily, if
// dirty), converts it to raw RGB, and writes it to the encoder on every
// tick of the pipeline's configured FPS, until ctx is cancelled.
func (p *Pipeline) RunCaptureLoop(ctx context.Context, source SurfaceSource) error {
	interval := time.Second / time.Duration(p.cfg.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rgb, w, h := source.Snapshot()
			if w != p.cfg.Width || h != p.cfg.Height {
				continue
			}
			if err := p.AddFrame(rgb); err != nil {
				if errors.Is(err, ErrEncoderBroken) {
					return err
				}
				logging.Warn("video: capture loop: %v", err)
			}
		}
	}
}

// Stop closes stdin, waits for the encoder to exit (killing it after
// stopTimeout), drains the readers, and closes the temp file. If recordTo
// is non-empty, the temp file is remuxed (stream-copy, no re-encode) to
// that path; the temp file is removed only when no remux was requested or
// the remux succeeded, so a failed remux leaves the raw recording
// available for diagnosis.
func (p *Pipeline) Stop(ctx context.Context, recordTo string) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	stdin := p.stdin
	cmd := p.cmd
	tempFile := p.tempFile
	tempPath := p.tempPath
	group := p.group
	cancel := p.cancel
	p.mu.Unlock()

	if stdin != nil {
		_ = stdin.Close()
	}

	if cmd != nil {
		done := make(chan error, 1)
		go func() { done <- cmd.Wait() }()

		select {
		case <-done:
		case <-time.After(stopTimeout):
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
			<-done
		}
	}

	if cancel != nil {
		cancel()
	}
	if group != nil {
		_ = group.Wait()
	}

	// No producers remain past this point; closing the queue wakes any
	// consumer still blocked in GetNextChunk.
	p.queue.Close()

	if tempFile != nil {
		_ = tempFile.Close()
	}

	if recordTo == "" {
		if tempPath != "" {
			_ = os.Remove(tempPath)
		}
		return nil
	}

	if err := remux(ctx, tempPath, recordTo); err != nil {
		logging.Warn("video: remux failed, preserving temp file %s: %v", tempPath, err)
		return fmt.Errorf("%w: %v", ErrRemuxFailed, err)
	}

	_ = os.Remove(tempPath)

	return nil
}

// remux stream-copies src into dst without re-encoding.
func remux(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y", "-i", src, "-c", "copy", dst)
	return cmd.Run()
}
