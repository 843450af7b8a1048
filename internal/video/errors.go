package video

import "errors"

// Error taxonomy for the video pipeline: encoder spawn failure is fatal
// to streaming only; a broken pipe triggers one restart
// attempt before streaming is disabled for the session; remux failures are
// logged and the temp file is preserved for diagnosis.
var (
	ErrEncoderSpawn   = errors.New("video: failed to start encoder subprocess")
	ErrEncoderBroken  = errors.New("video: encoder subprocess stdin closed unexpectedly")
	ErrRemuxFailed    = errors.New("video: failed to remux recording to destination path")
	ErrNotStreaming   = errors.New("video: pipeline is not streaming")
	ErrAlreadyRunning = errors.New("video: pipeline is already streaming")
)
