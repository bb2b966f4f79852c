package bus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyncDetectorSequences(t *testing.T) {
	testCases := []struct {
		name   string
		stream []byte
		states []SyncState
	}{
		{
			name:   "clean marker",
			stream: []byte{0x1A, 0xCF, 0xFC, 0x1D},
			states: []SyncState{Matched1, Matched2, Matched3, Synchronized},
		},
		{
			name:   "broken match restarts and completes at byte 7",
			stream: []byte{0x1A, 0xCF, 0x00, 0x1A, 0xCF, 0xFC, 0x1D},
			states: []SyncState{Matched1, Matched2, Seeking, Matched1, Matched2, Matched3, Synchronized},
		},
		{
			name:   "breaking byte opens an overlapping match",
			stream: []byte{0x1A, 0xCF, 0x1A, 0xCF, 0xFC, 0x1D},
			states: []SyncState{Matched1, Matched2, Matched1, Matched2, Matched3, Synchronized},
		},
		{
			name:   "noise never advances",
			stream: []byte{0x00, 0xFF, 0xCF, 0xFC, 0x1D},
			states: []SyncState{Seeking, Seeking, Seeking, Seeking, Seeking},
		},
		{
			name:   "repeated first byte holds at one",
			stream: []byte{0x1A, 0x1A, 0x1A, 0xCF, 0xFC, 0x1D},
			states: []SyncState{Matched1, Matched1, Matched1, Matched2, Matched3, Synchronized},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var d SyncDetector
			require.Equal(t, Seeking, d.State())
			for i, b := range tc.stream {
				require.Equal(t, tc.states[i], d.Feed(b), "byte %d", i)
			}
		})
	}
}

func TestSyncDetectorTerminalUntilReset(t *testing.T) {
	var d SyncDetector
	for _, b := range FrameSync {
		d.Feed(b)
	}
	require.Equal(t, Synchronized, d.State())
	// Frame bytes must not disturb the state; the caller resets.
	require.Equal(t, Synchronized, d.Feed(0x42))
	d.Reset()
	require.Equal(t, Seeking, d.State())
	require.Equal(t, Matched1, d.Feed(0x1A))
}
