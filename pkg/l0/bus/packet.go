package bus

import (
	"encoding/binary"

	"github.com/satlink/sat.go/pkg/crc16"
)

// Bus packet sizes, in bytes.
const (
	// BusSize is the maximum total frame length the bus accepts.
	BusSize = 127
	// HeaderSize is the fixed packet header length.
	HeaderSize = 2
	// ECFSize is the length of the error control field, when present.
	ECFSize = 2
	// DataSize is the payload capacity of a single packet.
	DataSize = BusSize - HeaderSize - ECFSize
)

// PacketType distinguishes telemetry from telecommand packets.
type PacketType byte

const (
	// TypeTM marks a telemetry packet.
	TypeTM PacketType = 0
	// TypeTC marks a telecommand packet.
	TypeTC PacketType = 1
)

func (t PacketType) String() string {
	if t == TypeTC {
		return "TC"
	}
	return "TM"
}

// CRC is the checksum capability used by the codec. Deployments with an
// accelerated backend replace it before first use; all implementations
// must compute the identical function (see crc16.Provider).
var CRC crc16.Provider = crc16.Software{}

// Packet is a decoded bus packet. It is a plain value fully owned by the
// caller; encode and decode never retain it.
type Packet struct {
	Type   PacketType
	APID   byte // 7-bit application id
	HasECF bool
	Length byte // total frame length, header and ECF included
	ECF    uint16
	Data   [DataSize]byte
}

// PayloadLen returns the number of meaningful payload bytes in Data.
func (p *Packet) PayloadLen() int {
	n := int(p.Length) - HeaderSize
	if p.HasECF {
		n -= ECFSize
	}
	if n < 0 {
		return 0
	}
	return n
}

// Payload returns the meaningful prefix of Data.
func (p *Packet) Payload() []byte {
	return p.Data[:p.PayloadLen()]
}

func (p *Packet) headerBytes() (byte, byte) {
	b0 := byte(p.Type&1)<<7 | p.APID&0x7F
	b1 := p.Length & 0x7F
	if p.HasECF {
		b1 |= 0x80
	}
	return b0, b1
}

// Encode builds a Packet from payload data. The payload capacity not used
// by data is zero-padded. With withECF set, the error control field is
// computed over the two header bytes followed by the payload.
func Encode(typ PacketType, apid byte, withECF bool, data []byte) (*Packet, error) {
	need := HeaderSize + len(data)
	if withECF {
		need += ECFSize
	}
	if need > BusSize {
		return nil, ErrInvalidLength
	}

	p := &Packet{
		Type:   typ & 1,
		APID:   apid & 0x7F,
		HasECF: withECF,
		Length: byte(need),
	}
	copy(p.Data[:], data)

	if withECF {
		var hdr [HeaderSize]byte
		hdr[0], hdr[1] = p.headerBytes()
		// Seed chaining keeps this a two-step computation without
		// assembling header and payload in one buffer.
		p.ECF = CRC.Checksum(CRC.Checksum(crc16.Seed, hdr[:]), data)
	}
	return p, nil
}

// Packetize serializes p into buf, which must have capacity for the frame
// plus one trailing terminator byte. The terminator is not part of the
// wire frame; it only makes the buffer printable as a string when the
// payload is text. Returns the wire frame length.
func (p *Packet) Packetize(buf []byte) (int, error) {
	n := int(p.Length)
	if n < HeaderSize || len(buf) < n+1 {
		return 0, ErrInvalidLength
	}

	buf[0], buf[1] = p.headerBytes()
	copy(buf[HeaderSize:n], p.Data[:p.PayloadLen()])
	if p.HasECF {
		binary.BigEndian.PutUint16(buf[n-ECFSize:n], p.ECF)
	}
	buf[n] = 0
	return n, nil
}

// EncodePacketize encodes data and serializes the result into buf in one
// pass with a single capacity check. The checksum is computed directly
// over the serialized header and payload. Returns the wire frame length.
func EncodePacketize(typ PacketType, apid byte, withECF bool, data []byte, buf []byte) (int, error) {
	n := HeaderSize + len(data)
	if withECF {
		n += ECFSize
	}
	if n > BusSize || len(buf) < n+1 {
		return 0, ErrInvalidLength
	}

	b1 := byte(n) & 0x7F
	if withECF {
		b1 |= 0x80
	}
	buf[0] = byte(typ&1)<<7 | apid&0x7F
	buf[1] = b1
	copy(buf[HeaderSize:], data)
	if withECF {
		ecf := CRC.Checksum(crc16.Seed, buf[:n-ECFSize])
		binary.BigEndian.PutUint16(buf[n-ECFSize:n], ecf)
	}
	buf[n] = 0
	return n, nil
}

// FrameLength peeks the declared total frame length from a buffer holding
// at least the packet header. Receive loops use it to know how many bytes
// to accumulate before calling Decode.
func FrameLength(buf []byte) (int, error) {
	if len(buf) < HeaderSize {
		return 0, ErrInvalidLength
	}
	return int(buf[1] & 0x7F), nil
}

// Decode parses one bus packet from buf. The declared length is validated
// against the header/ECF overhead and the buffer before anything else; a
// packet with ECF is checksum-verified before any field is populated, so a
// failed decode never yields a partial result.
func Decode(buf []byte) (*Packet, error) {
	if len(buf) < HeaderSize {
		return nil, ErrInvalidLength
	}
	length := int(buf[1] & 0x7F)
	hasECF := buf[1]&0x80 != 0

	overhead := HeaderSize
	if hasECF {
		overhead += ECFSize
	}
	if length < overhead || length > len(buf) {
		return nil, ErrInvalidLength
	}

	var ecf uint16
	if hasECF {
		ecf = binary.BigEndian.Uint16(buf[length-ECFSize : length])
		if CRC.Checksum(crc16.Seed, buf[:length-ECFSize]) != ecf {
			return nil, ErrChecksumMismatch
		}
	}

	p := &Packet{
		Type:   PacketType(buf[0] >> 7),
		APID:   buf[0] & 0x7F,
		HasECF: hasECF,
		Length: byte(length),
		ECF:    ecf,
	}
	copy(p.Data[:], buf[HeaderSize:length-overhead+HeaderSize])
	return p, nil
}
