package frame

import "errors"

var (
	// ErrInvalidLength indicates a declared or requested size exceeds the
	// format capacity, or leaves no room for any payload.
	ErrInvalidLength = errors.New("invalid length")
	// ErrChecksumMismatch indicates the stored error control field
	// disagrees with the recomputed checksum.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)
