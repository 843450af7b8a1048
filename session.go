// Package rdp is a headless RDP automation client: it establishes a
// connection to a Windows RDP host, exposes mouse/keyboard input and
// desktop screenshots, and continuously encodes the composited desktop
// into fragmented MP4 for a caller to consume or record, without ever
// rendering an interactive window itself.
package rdp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rcarmo/go-rdp/internal/input"
	"github.com/rcarmo/go-rdp/internal/logging"
	internalrdp "github.com/rcarmo/go-rdp/internal/rdp"
	"github.com/rcarmo/go-rdp/internal/video"
)

// Options configures a Session's connect call.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	Domain   string

	Width  int
	Height int

	// Fast requests the Client Info PDU's performance-flag set: wallpaper,
	// menu animations, theming, and cursor shadow are disabled on the
	// remote desktop to reduce the volume of bitmap updates the server has
	// to send. NLA is negotiated independently whenever the server
	// supports it; this flag does not affect it.
	Fast bool

	// ColorDepth defaults to 32 when zero.
	ColorDepth int

	// RecordTo, if non-empty, is the destination path streaming is remuxed
	// to when the session stops; see video.Pipeline.Stop.
	RecordTo string

	// SkipTLSValidation mirrors internal/rdp.Client.SetTLSConfig; defaults
	// to true (self-signed automation targets) unless explicitly disabled.
	SkipTLSValidation *bool
	TLSServerName     string

	// QueueCapacity bounds the live video chunk queue; zero uses the
	// pipeline's default.
	QueueCapacity int
}

func (o Options) hostPort() string {
	if o.Port == 0 {
		return o.Host
	}
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// PipelineStats is the façade's public view of video.Snapshot.
type PipelineStats = video.Snapshot

// Session ties the connection FSM, the display surface, the input encoder,
// and the video pipeline together behind the library's public API.
type Session struct {
	mu sync.Mutex

	client   *internalrdp.Client
	input    *input.Encoder
	pipeline *video.Pipeline

	captureCtx    context.Context
	captureCancel context.CancelFunc
	captureWG     sync.WaitGroup

	updateCtx    context.Context
	updateCancel context.CancelFunc

	recordTo string
}

// Connect establishes a session: TCP connect, negotiation, TLS/NLA,
// capability exchange, and Active state, then starts the background update
// reader and video encoder. Connecting begins streaming immediately.
func Connect(ctx context.Context, opts Options) (*Session, error) {
	width, height := opts.Width, opts.Height
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("rdp: width and height are required")
	}
	colorDepth := opts.ColorDepth
	if colorDepth == 0 {
		colorDepth = 32
	}

	client, err := internalrdp.NewClient(opts.hostPort(), opts.Username, opts.Password, width, height, colorDepth)
	if err != nil {
		return nil, fmt.Errorf("rdp: connect: %w", err)
	}

	if opts.Domain != "" {
		client.SetDomain(opts.Domain)
	}

	skipValidation := true
	if opts.SkipTLSValidation != nil {
		skipValidation = *opts.SkipTLSValidation
	}
	client.SetTLSConfig(skipValidation, opts.TLSServerName)
	client.SetFastMode(opts.Fast)

	connectDone := make(chan error, 1)
	go func() { connectDone <- client.Connect() }()

	select {
	case err := <-connectDone:
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("rdp: connection sequence: %w", err)
		}
	case <-ctx.Done():
		_ = client.Close()
		return nil, ctx.Err()
	}

	pipeline := video.New(video.Config{
		Width: width, Height: height,
		QueueCapacity: opts.QueueCapacity,
	})
	client.SetBitmapObserver(pipeline.Stats().ObserveBitmapApply)

	s := &Session{
		client:   client,
		input:    input.New(client),
		pipeline: pipeline,
		recordTo: opts.RecordTo,
	}

	if err := s.startStreamingLocked(); err != nil {
		_ = client.Close()
		return nil, err
	}

	s.updateCtx, s.updateCancel = context.WithCancel(context.Background())
	go func() {
		if err := client.RunUpdateLoop(s.updateCtx); err != nil {
			logging.Debug("rdp: update loop stopped: %v", err)
		}
	}()

	return s, nil
}

// Disconnect closes the session cleanly: stops streaming (flushing the
// configured recording, if any), stops the update loop, and closes the
// transport connection. Side effects already committed (applied bitmaps,
// written video) are not rolled back.
func (s *Session) Disconnect(ctx context.Context) error {
	_ = s.StopStreaming(ctx, s.recordTo)

	if s.updateCancel != nil {
		s.updateCancel()
	}

	return s.client.Close()
}

// Screenshot returns an RGB24 raster snapshot of the composited desktop.
func (s *Session) Screenshot() ([]byte, int, int) {
	return s.client.Surface.Snapshot()
}

// SuppressOutput asks the server to stop (true) or resume (false) sending
// graphics updates, e.g. while no consumer is watching. Resuming triggers
// a full repaint of the withheld desktop area.
func (s *Session) SuppressOutput(suppress bool) error {
	return s.client.SetOutputSuppressed(suppress)
}

// MouseMove moves the pointer to absolute coordinates (x, y).
func (s *Session) MouseMove(x, y int) error { return s.input.MouseMove(x, y) }

// MouseButtonDown presses button at (x, y).
func (s *Session) MouseButtonDown(x, y int, button input.MouseButton) error {
	return s.input.MouseButtonDown(x, y, button)
}

// MouseButtonUp releases button at (x, y).
func (s *Session) MouseButtonUp(x, y int, button input.MouseButton) error {
	return s.input.MouseButtonUp(x, y, button)
}

// MouseClick performs a click (move, down, up) at (x, y).
func (s *Session) MouseClick(x, y int, button input.MouseButton) error {
	return s.input.MouseClick(x, y, button)
}

// MouseDoubleClick performs two clicks within the server's double-click
// detection window.
func (s *Session) MouseDoubleClick(x, y int, button input.MouseButton) error {
	return s.input.MouseDoubleClick(x, y, button)
}

// MouseDrag presses at (fromX, fromY), moves to (toX, toY), then releases.
func (s *Session) MouseDrag(fromX, fromY, toX, toY int, button input.MouseButton) error {
	return s.input.MouseDrag(fromX, fromY, toX, toY, button)
}

// MouseWheel scrolls by delta at (x, y).
func (s *Session) MouseWheel(x, y int, delta int16, horizontal bool) error {
	return s.input.MouseWheel(x, y, delta, horizontal)
}

// SendKey presses, releases, or taps (both) the named key, identified by a
// web-style KeyboardEvent.code string (see Keycodes).
func (s *Session) SendKey(key string, press, release bool) error {
	switch {
	case press && release:
		return s.input.SendKeyTap(key)
	case press:
		return s.input.SendScancode(key, false)
	case release:
		return s.input.SendScancode(key, true)
	default:
		return fmt.Errorf("rdp: send_key requires press and/or release")
	}
}

// SendText types each code point of text as Unicode keyboard events.
func (s *Session) SendText(text string) error {
	return s.input.SendText(text)
}

// StartStreaming (re)starts the video pipeline if it was previously
// stopped. recordTo overrides the destination set at Connect for the next
// StopStreaming call, if non-empty.
func (s *Session) StartStreaming(recordTo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recordTo != "" {
		s.recordTo = recordTo
	}

	return s.startStreamingLocked()
}

func (s *Session) startStreamingLocked() error {
	if s.captureCancel != nil {
		return nil // already streaming
	}

	if err := s.pipeline.Start(context.Background()); err != nil {
		return fmt.Errorf("rdp: start streaming: %w", err)
	}

	s.captureCtx, s.captureCancel = context.WithCancel(context.Background())
	s.captureWG.Add(1)
	go func() {
		defer s.captureWG.Done()
		if err := s.pipeline.RunCaptureLoop(s.captureCtx, s.client.Surface); err != nil {
			logging.Warn("rdp: capture loop stopped: %v", err)
		}
	}()

	return nil
}

// StopStreaming stops the capture loop and encoder, remuxing to recordTo
// if non-empty.
func (s *Session) StopStreaming(ctx context.Context, recordTo string) error {
	s.mu.Lock()
	cancel := s.captureCancel
	s.captureCancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil // already stopped
	}

	cancel()
	s.captureWG.Wait()

	return s.pipeline.Stop(ctx, recordTo)
}

// GetNextVideoChunk awaits the next encoded chunk up to timeout.
func (s *Session) GetNextVideoChunk(ctx context.Context, timeout time.Duration) (video.Chunk, bool) {
	return s.pipeline.GetNextChunk(ctx, timeout)
}

// GetPipelineStats returns a snapshot of the video pipeline's counters and
// rolling latency averages.
func (s *Session) GetPipelineStats() PipelineStats {
	return s.pipeline.Stats().Snapshot()
}
