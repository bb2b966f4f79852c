package frame

import "encoding/binary"

// Source/destination identifier values for PrimaryHeader.SourceDest.
const (
	Source      = 0
	Destination = 1
)

// Deployment defaults carried over from the prototype configuration.
const (
	DefaultVersion byte   = 0b1100
	DefaultSCID    uint16 = 0x5553
	DefaultVCID    byte   = 0b111000
	DefaultMAPID   byte   = 0
)

// PrimaryHeader is the decoded transfer-frame primary header. The fields
// after Truncated only exist on the wire for extended frames.
type PrimaryHeader struct {
	Version    byte   // 4 bits
	SCID       uint16 // spacecraft id, 16 bits split across bytes 0-2
	SourceDest byte   // 1 bit, Source or Destination
	VCID       byte   // virtual channel id, 6 bits
	MAPID      byte   // multiplexer access point id, 4 bits
	Truncated  bool

	// Extended layout only.
	Length   uint16 // total frame length, ECF included
	Bypass   bool
	Command  bool
	OCF      bool
	VCLength byte // virtual-channel sub-frame length, 3-bit field
	VCFrame  [VCDataMax]byte
}

// VCData returns the meaningful prefix of the virtual-channel sub-frame.
func (h *PrimaryHeader) VCData() []byte {
	n := int(h.VCLength)
	if n > len(h.VCFrame) {
		n = len(h.VCFrame)
	}
	return h.VCFrame[:n]
}

// packBase writes the 4-byte header part shared by both layouts.
func (h *PrimaryHeader) packBase(buf []byte) {
	buf[0] = h.Version<<4 | byte(h.SCID>>12)
	buf[1] = byte(h.SCID >> 4)
	buf[2] = byte(h.SCID&0x0F)<<4 | h.SourceDest&1<<3 | h.VCID>>3&0x07
	buf[3] = h.VCID&0x07<<5 | h.MAPID&0x0F<<1
	if h.Truncated {
		buf[3] |= 1
	}
}

// packExtension writes the length and flags bytes of the extended layout.
func (h *PrimaryHeader) packExtension(buf []byte) {
	binary.BigEndian.PutUint16(buf[4:6], h.Length)
	var flags byte
	if h.Bypass {
		flags |= 0x80
	}
	if h.Command {
		flags |= 0x40
	}
	// bits 5-4 are spare and transmitted as zero
	if h.OCF {
		flags |= 0x08
	}
	buf[6] = flags | h.VCLength&0x07
}

// unpackBase reads the 4-byte header part shared by both layouts.
func (h *PrimaryHeader) unpackBase(buf []byte) {
	h.Version = buf[0] >> 4
	h.SCID = uint16(buf[0]&0x0F)<<12 | uint16(buf[1])<<4 | uint16(buf[2]>>4)
	h.SourceDest = buf[2] >> 3 & 1
	h.VCID = buf[2]&0x07<<3 | buf[3]>>5
	h.MAPID = buf[3] >> 1 & 0x0F
	h.Truncated = buf[3]&1 != 0
}

// unpackExtension reads the length and flags bytes of the extended layout.
func (h *PrimaryHeader) unpackExtension(buf []byte) {
	h.Length = binary.BigEndian.Uint16(buf[4:6])
	h.Bypass = buf[6]&0x80 != 0
	h.Command = buf[6]&0x40 != 0
	h.OCF = buf[6]&0x08 != 0
	h.VCLength = buf[6] & 0x07
}
