package comm

import (
	"context"
	"io"
	"sync"

	"github.com/satlink/sat.go/pkg/l1/frame"
)

// FrameHandler processes a decoded transfer frame.
type FrameHandler interface {
	HandleFrame(ctx context.Context, ph *frame.PrimaryHeader, df *frame.DataField) error
}

// HandleFrameFunc is the func adapter of FrameHandler.
type HandleFrameFunc func(ctx context.Context, ph *frame.PrimaryHeader, df *frame.DataField) error

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, ph *frame.PrimaryHeader, df *frame.DataField) error {
	return f(ctx, ph, df)
}

// Pump moves transfer frames over a FrameReadWriter: Run decodes inbound
// frames and dispatches them to Handler, Send serializes and writes
// outbound frames.
type Pump struct {
	ReadWriter FrameReadWriter
	Handler    FrameHandler

	// OnDecodeErr receives frames which fail to decode. The pump keeps
	// running; a nil func drops them silently.
	OnDecodeErr func(err error)

	sendLock sync.Mutex
	sendBuf  [frame.MaxFrameSize]byte
}

// NewPump creates a Pump over the given FrameReadWriter.
func NewPump(rw FrameReadWriter) *Pump {
	return &Pump{ReadWriter: rw}
}

// Send serializes and writes one frame.
func (p *Pump) Send(ph *frame.PrimaryHeader, df *frame.DataField) error {
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	n, err := frame.Packetize(ph, df, p.sendBuf[:])
	if err != nil {
		return err
	}
	return p.ReadWriter.WriteFrame(p.sendBuf[:n])
}

// Run reads frames until the transport fails or the handler returns an
// error. Frames failing to decode are reported to OnDecodeErr and
// skipped.
func (p *Pump) Run(ctx context.Context) error {
	defer p.Close()
	for {
		buf, err := p.ReadWriter.ReadFrame()
		if err != nil {
			return err
		}
		var ph frame.PrimaryHeader
		var df frame.DataField
		if err = frame.Decode(buf, &ph, &df); err != nil {
			if f := p.OnDecodeErr; f != nil {
				f(err)
			}
			continue
		}
		if h := p.Handler; h != nil {
			if err = h.HandleFrame(ctx, &ph, &df); err != nil {
				return err
			}
		}
	}
}

// Close implements Closer.
func (p *Pump) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
