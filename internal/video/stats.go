package video

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// counter is a monotonic count, mirrored into a Prometheus counter so a
// consumer that exposes /metrics (outside this library's scope) reports
// the same numbers GetPipelineStats does.
type counter struct {
	v  atomic.Uint64
	pc prometheus.Counter
}

func newCounter(reg *prometheus.Registry, name, help string) *counter {
	c := &counter{}
	if reg != nil {
		c.pc = promauto.With(reg).NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	}
	return c
}

func (c *counter) Inc() {
	c.v.Add(1)
	if c.pc != nil {
		c.pc.Inc()
	}
}

func (c *counter) Value() uint64 {
	return c.v.Load()
}

// rollingAverage keeps a fixed-size window of recent duration samples and
// reports their mean.
type rollingAverage struct {
	mu      sync.Mutex
	samples []time.Duration
	next    int
	filled  bool
	hist    prometheus.Histogram
}

const rollingWindowSize = 32

func newRollingAverage(reg *prometheus.Registry, name, help string) *rollingAverage {
	r := &rollingAverage{samples: make([]time.Duration, rollingWindowSize)}
	if reg != nil {
		r.hist = promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1ms .. ~205ms
		})
	}
	return r
}

func (r *rollingAverage) Observe(d time.Duration) {
	r.mu.Lock()
	r.samples[r.next] = d
	r.next = (r.next + 1) % rollingWindowSize
	if r.next == 0 {
		r.filled = true
	}
	r.mu.Unlock()

	if r.hist != nil {
		r.hist.Observe(float64(d) / float64(time.Millisecond))
	}
}

func (r *rollingAverage) Average() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.next
	if r.filled {
		n = rollingWindowSize
	}
	if n == 0 {
		return 0
	}

	var total time.Duration
	for i := 0; i < n; i++ {
		total += r.samples[i]
	}

	return total / time.Duration(n)
}

// Stats collects the pipeline's frame and chunk counters plus the
// bitmap-apply/stdin-write/stdout-read rolling latency averages. It is safe for concurrent use by the capture loop, the
// stdout/stderr readers, and a consumer calling Snapshot.
type Stats struct {
	registry *prometheus.Registry

	FramesReceived *counter
	FramesEncoded  *counter
	ChunksProduced *counter
	QueueDrops     *counter
	BitmapsApplied *counter

	BitmapApplyAvg *rollingAverage
	StdinWriteAvg  *rollingAverage
	StdoutReadAvg  *rollingAverage
}

// NewStats builds a Stats instance backed by a private Prometheus registry
// (not the process default registerer, so multiple sessions in one process
// never collide on metric names).
func NewStats() *Stats {
	reg := prometheus.NewRegistry()
	return &Stats{
		registry:       reg,
		FramesReceived: newCounter(reg, "rdp_video_frames_received_total", "Raw frames handed to the encoder."),
		FramesEncoded:  newCounter(reg, "rdp_video_frames_encoded_total", "Frames written to the encoder's stdin without error."),
		ChunksProduced: newCounter(reg, "rdp_video_chunks_produced_total", "Encoded chunks read from the encoder's stdout."),
		QueueDrops:     newCounter(reg, "rdp_video_queue_drops_total", "Chunks dropped because the consumer queue was full."),
		BitmapsApplied: newCounter(reg, "rdp_video_bitmaps_applied_total", "Bitmap rectangles applied to the display surface."),
		BitmapApplyAvg: newRollingAverage(reg, "rdp_video_bitmap_apply_ms", "Rolling bitmap-apply latency."),
		StdinWriteAvg:  newRollingAverage(reg, "rdp_video_stdin_write_ms", "Rolling encoder stdin write latency."),
		StdoutReadAvg:  newRollingAverage(reg, "rdp_video_stdout_read_ms", "Rolling encoder stdout read latency."),
	}
}

// ObserveBitmapApply records one successfully applied bitmap rectangle and
// its apply latency. It satisfies the observer signature internal/rdp
// calls after each ApplyRect, with no import from internal/rdp back to
// this package.
func (s *Stats) ObserveBitmapApply(d time.Duration) {
	s.BitmapsApplied.Inc()
	s.BitmapApplyAvg.Observe(d)
}

// Registry exposes the private Prometheus registry backing these stats,
// for a caller that wants to mount its own /metrics endpoint (outside this
// library's scope; the façade does not do this itself).
func (s *Stats) Registry() *prometheus.Registry {
	return s.registry
}

// Snapshot is the point-in-time, plain-data view of Stats returned by the
// façade's GetPipelineStats.
type Snapshot struct {
	FramesReceived uint64
	FramesEncoded  uint64
	ChunksProduced uint64
	QueueDrops     uint64
	BitmapsApplied uint64

	BitmapApplyAvg time.Duration
	StdinWriteAvg  time.Duration
	StdoutReadAvg  time.Duration

	// EndToEndEstimate is the sum of the three latency averages.
	EndToEndEstimate time.Duration
}

// Snapshot returns a consistent point-in-time copy of the stats.
func (s *Stats) Snapshot() Snapshot {
	bitmapAvg := s.BitmapApplyAvg.Average()
	stdinAvg := s.StdinWriteAvg.Average()
	stdoutAvg := s.StdoutReadAvg.Average()

	return Snapshot{
		FramesReceived:   s.FramesReceived.Value(),
		FramesEncoded:    s.FramesEncoded.Value(),
		ChunksProduced:   s.ChunksProduced.Value(),
		QueueDrops:       s.QueueDrops.Value(),
		BitmapsApplied:   s.BitmapsApplied.Value(),
		BitmapApplyAvg:   bitmapAvg,
		StdinWriteAvg:    stdinAvg,
		StdoutReadAvg:    stdoutAvg,
		EndToEndEstimate: bitmapAvg + stdinAvg + stdoutAvg,
	}
}
