// Package recorder owns the microphone capture device and the recording
// duration ticker.
package recorder

import "time"

// Capture is a platform audio input that records to a file.
type Capture interface {
	// RequestPermission reports whether the device can be used at all.
	RequestPermission() error
	Start(path string) error
	// Stop finalizes the file passed to Start.
	Stop() error
}

// Asset is a finished recording on local storage.
type Asset struct {
	Path     string
	Size     int64 // -1 when the file could not be stat'ed
	Duration time.Duration
}
