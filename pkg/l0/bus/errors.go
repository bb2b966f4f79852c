package bus

import "errors"

var (
	// ErrInvalidLength indicates a declared or requested size exceeds the
	// format capacity, or a declared length is smaller than the fixed
	// header/ECF overhead.
	ErrInvalidLength = errors.New("invalid length")
	// ErrChecksumMismatch indicates the stored error control field
	// disagrees with the recomputed checksum.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)
