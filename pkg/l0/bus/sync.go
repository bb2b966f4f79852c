package bus

// FrameSync is the 4-byte attached sync marker transmitted before every
// frame on the bus.
var FrameSync = [4]byte{0x1A, 0xCF, 0xFC, 0x1D}

// SyncState is the progress of a SyncDetector toward the sync marker. The
// numeric value of a state is the number of marker bytes already matched.
type SyncState byte

const (
	// Seeking means no marker byte has been matched yet.
	Seeking SyncState = iota
	// Matched1 through Matched3 mean that many marker bytes matched.
	Matched1
	Matched2
	Matched3
	// Synchronized means the full marker was seen: the next byte on the
	// stream is the first byte of a frame. Terminal until Reset.
	Synchronized
)

func (s SyncState) String() string {
	switch s {
	case Seeking:
		return "seeking"
	case Matched1:
		return "matched-1"
	case Matched2:
		return "matched-2"
	case Matched3:
		return "matched-3"
	case Synchronized:
		return "synchronized"
	}
	return "invalid"
}

// SyncDetector locates frame boundaries in a continuous byte stream by
// recognizing FrameSync one byte at a time. The zero value is ready to use.
// A detector is owned by a single stream; it is not safe for concurrent
// use without external synchronization.
type SyncDetector struct {
	state SyncState
}

// State returns the current progress.
func (d *SyncDetector) State() SyncState {
	return d.state
}

// Reset returns the detector to Seeking. Synchronized is terminal from the
// detector's perspective: the caller resets once the frame that followed
// the marker has been consumed.
func (d *SyncDetector) Reset() {
	d.state = Seeking
}

// Feed consumes one byte from the stream and returns the resulting state.
func (d *SyncDetector) Feed(b byte) SyncState {
	if d.state == Synchronized {
		return d.state
	}
	if b == FrameSync[d.state] {
		d.state++
		return d.state
	}
	// A byte that breaks a partial match may itself open a new match, so
	// it is re-tested against the first marker byte, never discarded.
	if b == FrameSync[0] {
		d.state = Matched1
	} else {
		d.state = Seeking
	}
	return d.state
}
