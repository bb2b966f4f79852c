// Package frame implements the L1 ground-link transfer frame format.
package frame

// L1 transfer frames carry data between the prototype and the ground
// station. A frame is a primary header, an optional virtual-channel
// sub-frame, a 1-byte data-field header, the payload, and a trailing
// CRC-16 covering every byte before it.
//
// Two layouts exist, selected by the truncated bit of the primary header.
// Extended frames carry an explicit total length and the virtual-channel
// sub-frame; truncated frames drop both and rely on the transport to bound
// the frame (see pkg/l1/comm/stream for a transport that does).
//
// Producer: the flight computer (downlink), the ground station (uplink)
// Consumer: the opposite end of the link
