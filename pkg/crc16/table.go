package crc16

// Table is a table-driven Provider computing the same CRC-16 one byte per
// step instead of one bit per step. It plays the role of the accelerated
// backend where no CRC peripheral is available: deployments pick Software
// or Table (or a real peripheral behind ProviderFunc), and the codecs
// cannot tell the difference.
type Table struct {
	entries [256]uint16
}

// NewTable precomputes the 256-entry division table for Poly.
func NewTable() *Table {
	t := &Table{}
	for n := 0; n < 256; n++ {
		crc := uint16(n) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ Poly
			} else {
				crc <<= 1
			}
		}
		t.entries[n] = crc
	}
	return t
}

// Checksum implements Provider.
func (t *Table) Checksum(seed uint16, p []byte) uint16 {
	crc := seed
	for _, b := range p {
		crc = (crc << 8) ^ t.entries[byte(crc>>8)^b]
	}
	return crc
}
