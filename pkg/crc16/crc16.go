// Package crc16 implements the CRC-16 used as the error control field of
// both the onboard bus packets and the ground-link transfer frames.
package crc16

// Algorithm parameters. Both the onboard CRC peripheral and this software
// implementation must be configured identically: 8-bit input, no input or
// output bit inversion, initial value supplied by the caller.
const (
	// Poly is the generator polynomial x^16 + x^12 + x^5 + 1.
	Poly = 0x1021
	// Seed is the canonical initial value.
	Seed = 0
)

// Provider computes the bus/link CRC-16 over p starting from seed.
// Implementations must agree bit-for-bit: same polynomial, MSB-first
// processing, no reflection. The codecs depend only on this interface,
// never on which backend is active.
type Provider interface {
	Checksum(seed uint16, p []byte) uint16
}

// ProviderFunc is the func form of Provider.
type ProviderFunc func(seed uint16, p []byte) uint16

// Checksum implements Provider.
func (f ProviderFunc) Checksum(seed uint16, p []byte) uint16 {
	return f(seed, p)
}

// Checksum computes the CRC-16 of p starting from seed, one
// polynomial-division step per bit, MSB first.
func Checksum(seed uint16, p []byte) uint16 {
	crc := seed
	for _, b := range p {
		ch := uint16(b) << 8
		for i := 0; i < 8; i++ {
			xor := (crc^ch)&0x8000 != 0
			crc <<= 1
			if xor {
				crc ^= Poly
			}
			ch <<= 1
		}
	}
	return crc
}

// Software is the pure bitwise Provider.
type Software struct{}

// Checksum implements Provider.
func (Software) Checksum(seed uint16, p []byte) uint16 {
	return Checksum(seed, p)
}
