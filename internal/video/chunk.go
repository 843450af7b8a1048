package video

import "time"

// Chunk is an immutable slice of encoded fragmented-MP4 output, tagged
// with a monotonic sequence number and production timestamp.
type Chunk struct {
	Data      []byte
	Sequence  uint64
	Timestamp time.Time
}
