// Package comm defines transport abstractions for delivering serialized
// transfer frames between the prototype and the ground segment.
package comm

// FrameReader reads one serialized frame at a time. The returned slice
// holds exactly one frame: its length is what bounds a truncated frame,
// so transports must preserve frame boundaries.
type FrameReader interface {
	ReadFrame() ([]byte, error)
}

// FrameWriter writes one serialized frame at a time.
type FrameWriter interface {
	WriteFrame([]byte) error
}

// FrameReadWriter reads/writes serialized frames.
type FrameReadWriter interface {
	FrameReader
	FrameWriter
}
