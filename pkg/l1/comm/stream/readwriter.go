// Package stream implements frame transport over byte streams.
package stream

import (
	"encoding/binary"
	"io"

	"github.com/satlink/sat.go/pkg/l1/frame"
)

// ReadWriter implements comm.FrameReadWriter over any io.ReadWriter.
// Each frame is prefixed by its 2-byte (big-endian) length. The prefix is
// what restores frame boundaries on a raw stream; for truncated frames it
// is the only record of the frame length at all.
type ReadWriter struct {
	io.ReadWriter
}

// New creates a ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{s}
}

// ReadFrame implements comm.FrameReader.
func (p *ReadWriter) ReadFrame() ([]byte, error) {
	var prefix [2]byte
	if _, err := io.ReadFull(p, prefix[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint16(prefix[:])
	if size > frame.MaxFrameSize {
		return nil, frame.ErrInvalidLength
	}
	buf := make([]byte, size)
	_, err := io.ReadFull(p, buf)
	return buf, err
}

// WriteFrame implements comm.FrameWriter.
func (p *ReadWriter) WriteFrame(buf []byte) error {
	if len(buf) > frame.MaxFrameSize {
		return frame.ErrInvalidLength
	}
	var prefix [2]byte
	binary.BigEndian.PutUint16(prefix[:], uint16(len(buf)))
	if _, err := p.Write(prefix[:]); err != nil {
		return err
	}
	_, err := p.Write(buf)
	return err
}
