package bus

import (
	"context"
	"io"
)

// PacketHandler is called when a packet is received.
type PacketHandler interface {
	HandlePacket(context.Context, *Packet)
}

// HandlePacketFunc is func type of PacketHandler.
type HandlePacketFunc func(context.Context, *Packet)

// HandlePacket implements PacketHandler.
func (f HandlePacketFunc) HandlePacket(ctx context.Context, pkt *Packet) {
	f(ctx, pkt)
}

// SyncNotifier is called when the sync state of the stream changed.
type SyncNotifier interface {
	SyncChanged(context.Context, SyncState)
}

// SyncChangedFunc is func type of SyncNotifier.
type SyncChangedFunc func(context.Context, SyncState)

// SyncChanged implements SyncNotifier.
func (f SyncChangedFunc) SyncChanged(ctx context.Context, state SyncState) {
	f(ctx, state)
}

// Receiver locates and decodes bus packets from a raw byte stream: it runs
// every byte through a SyncDetector, accumulates one frame after the
// marker, decodes it and hands the result to Handler. On a decode failure
// it drops the frame, reports it through OnError if set, and goes back to
// seeking the marker; recovery beyond resynchronization is up to the
// layers above.
type Receiver struct {
	Reader   io.Reader
	Handler  PacketHandler
	Notifier SyncNotifier
	OnError  func(error)

	detector SyncDetector
	frame    [BusSize]byte
	pos      int
}

// Run processes the stream until ctx is canceled or Reader fails.
func (r *Receiver) Run(ctx context.Context) error {
	byteCh, errCh := make(chan byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go r.readLoop(subCtx, byteCh, errCh)
	for {
		select {
		case b := <-byteCh:
			r.feed(ctx, b)
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *Receiver) readLoop(ctx context.Context, byteCh chan byte, errCh chan error) {
	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			n, err := r.Reader.Read(buf)
			if err != nil {
				errCh <- err
				return
			}
			if n > 0 {
				select {
				case byteCh <- buf[0]:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (r *Receiver) feed(ctx context.Context, b byte) {
	if r.detector.State() != Synchronized {
		prev := r.detector.State()
		state := r.detector.Feed(b)
		if state != prev {
			r.notify(ctx, state)
		}
		r.pos = 0
		return
	}

	r.frame[r.pos] = b
	r.pos++
	if r.pos < HeaderSize {
		return
	}

	length, err := FrameLength(r.frame[:r.pos])
	if err == nil && length < HeaderSize {
		err = ErrInvalidLength
	}
	if err != nil {
		r.resync(ctx, err)
		return
	}
	if r.pos < length {
		return
	}

	pkt, err := Decode(r.frame[:r.pos])
	if err != nil {
		r.resync(ctx, err)
		return
	}
	r.detector.Reset()
	r.pos = 0
	r.notify(ctx, Seeking)
	if h := r.Handler; h != nil {
		h.HandlePacket(ctx, pkt)
	}
}

func (r *Receiver) resync(ctx context.Context, err error) {
	if f := r.OnError; f != nil {
		f(err)
	}
	r.detector.Reset()
	r.pos = 0
	r.notify(ctx, Seeking)
}

func (r *Receiver) notify(ctx context.Context, state SyncState) {
	if n := r.Notifier; n != nil {
		n.SyncChanged(ctx, state)
	}
}
