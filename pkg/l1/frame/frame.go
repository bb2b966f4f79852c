package frame

import (
	"encoding/binary"

	"github.com/satlink/sat.go/pkg/crc16"
)

// Transfer frame sizes, in bytes. MaxFrameSize is the single
// deployment-fixed maximum total frame size shared by both layouts; a
// deployment changes it here, not per call site.
const (
	MaxFrameSize        = 256
	ECFSize             = 2
	TruncatedHeaderSize = 4
	PrimaryHeaderSize   = 7
	DataHeaderSize      = 1
	// VCDataMax is the capacity of the virtual-channel sub-frame buffer.
	// The 3-bit length field bounds what a frame can actually carry.
	VCDataMax = 56
	// DataMax is the payload capacity of a truncated frame, which also
	// bounds the extended layout since its headers are larger.
	DataMax = MaxFrameSize - TruncatedHeaderSize - DataHeaderSize - ECFSize
)

// Data-field header defaults from the prototype configuration.
const (
	DefaultConstructionRule byte = 0b111
	DefaultProtocolID       byte = 0
)

// CRC is the checksum capability used by the codec. Deployments with an
// accelerated backend replace it before first use; all implementations
// must compute the identical function (see crc16.Provider).
var CRC crc16.Provider = crc16.Software{}

// DataField is the decoded transfer-frame data field. Length tracks how
// many bytes of Data are meaningful; SetData and Decode maintain it.
type DataField struct {
	ConstructionRule byte // 3 bits
	ProtocolID       byte // 5 bits
	Length           int
	Data             [DataMax]byte
}

// Payload returns the meaningful prefix of Data.
func (f *DataField) Payload() []byte {
	n := f.Length
	if n < 0 {
		n = 0
	}
	if n > len(f.Data) {
		n = len(f.Data)
	}
	return f.Data[:n]
}

// SetData loads payload and virtual-channel data into the frame
// structures. For extended frames it derives VCLength and the total frame
// length and validates the aggregate against MaxFrameSize before copying.
func SetData(data, vcData []byte, ph *PrimaryHeader, df *DataField) error {
	if len(data) > DataMax {
		return ErrInvalidLength
	}
	if len(vcData) > VCDataMax {
		return ErrInvalidLength
	}

	if !ph.Truncated {
		total := PrimaryHeaderSize + len(vcData) + DataHeaderSize + len(data) + ECFSize
		if total > MaxFrameSize {
			return ErrInvalidLength
		}
		ph.VCLength = byte(len(vcData))
		ph.Length = uint16(total)
		copy(ph.VCFrame[:], vcData)
	}

	copy(df.Data[:], data)
	df.Length = len(data)
	return nil
}

// Packetize serializes the frame into buf and returns the wire frame
// length. The checksum covers every byte preceding it and is stored
// big-endian for extended frames and little-endian for truncated frames,
// matching the wire format of the deployed link.
func Packetize(ph *PrimaryHeader, df *DataField, buf []byte) (int, error) {
	if ph.Truncated {
		return packetizeTruncated(ph, df, buf)
	}
	return packetizeExtended(ph, df, buf)
}

func packetizeExtended(ph *PrimaryHeader, df *DataField, buf []byte) (int, error) {
	// The wire field for VCLength is 3 bits; larger values cannot be
	// represented even though VCFrame has room for them.
	if ph.VCLength > 0x07 {
		return 0, ErrInvalidLength
	}
	n := int(ph.Length)
	overhead := PrimaryHeaderSize + int(ph.VCLength) + DataHeaderSize + ECFSize
	if n > MaxFrameSize || n < overhead || len(buf) < n {
		return 0, ErrInvalidLength
	}

	ph.packBase(buf)
	ph.packExtension(buf)
	copy(buf[PrimaryHeaderSize:], ph.VCFrame[:ph.VCLength])

	idx := PrimaryHeaderSize + int(ph.VCLength)
	buf[idx] = df.ConstructionRule<<5 | df.ProtocolID&0x1F
	copy(buf[idx+DataHeaderSize:n-ECFSize], df.Data[:n-overhead])

	ecf := CRC.Checksum(crc16.Seed, buf[:n-ECFSize])
	binary.BigEndian.PutUint16(buf[n-ECFSize:n], ecf)
	return n, nil
}

func packetizeTruncated(ph *PrimaryHeader, df *DataField, buf []byte) (int, error) {
	if df.Length < 0 || df.Length > DataMax {
		return 0, ErrInvalidLength
	}
	n := TruncatedHeaderSize + DataHeaderSize + df.Length + ECFSize
	if len(buf) < n {
		return 0, ErrInvalidLength
	}

	ph.packBase(buf)
	buf[TruncatedHeaderSize] = df.ConstructionRule<<5 | df.ProtocolID&0x1F
	copy(buf[TruncatedHeaderSize+DataHeaderSize:], df.Data[:df.Length])

	ecf := CRC.Checksum(crc16.Seed, buf[:n-ECFSize])
	binary.LittleEndian.PutUint16(buf[n-ECFSize:n], ecf)
	return n, nil
}

// Decode parses one transfer frame from buf into ph and df. The layout is
// selected by the truncated bit in the header. Extended frames locate the
// checksum through the embedded length field, validated against the header
// sizes and the buffer first; truncated frames carry no length field, so
// len(buf) is authoritative and the transport must deliver exactly one
// frame. The checksum is verified before either output is populated, so a
// failed decode never yields partial results.
func Decode(buf []byte, ph *PrimaryHeader, df *DataField) error {
	if len(buf) < TruncatedHeaderSize+DataHeaderSize+ECFSize {
		return ErrInvalidLength
	}

	var h PrimaryHeader
	var f DataField
	h.unpackBase(buf)

	if !h.Truncated {
		h.unpackExtension(buf)
		overhead := PrimaryHeaderSize + int(h.VCLength) + DataHeaderSize + ECFSize
		length := int(h.Length)
		if length > MaxFrameSize || length > len(buf) || length <= overhead {
			return ErrInvalidLength
		}

		ecf := binary.BigEndian.Uint16(buf[length-ECFSize : length])
		if CRC.Checksum(crc16.Seed, buf[:length-ECFSize]) != ecf {
			return ErrChecksumMismatch
		}

		copy(h.VCFrame[:], buf[PrimaryHeaderSize:PrimaryHeaderSize+int(h.VCLength)])
		idx := PrimaryHeaderSize + int(h.VCLength)
		f.ConstructionRule = buf[idx] >> 5
		f.ProtocolID = buf[idx] & 0x1F
		f.Length = length - overhead
		copy(f.Data[:], buf[idx+DataHeaderSize:length-ECFSize])
	} else {
		length := len(buf)
		overhead := TruncatedHeaderSize + DataHeaderSize + ECFSize
		if length > MaxFrameSize || length <= overhead {
			return ErrInvalidLength
		}

		ecf := binary.LittleEndian.Uint16(buf[length-ECFSize : length])
		if CRC.Checksum(crc16.Seed, buf[:length-ECFSize]) != ecf {
			return ErrChecksumMismatch
		}

		f.ConstructionRule = buf[TruncatedHeaderSize] >> 5
		f.ProtocolID = buf[TruncatedHeaderSize] & 0x1F
		f.Length = length - overhead
		copy(f.Data[:], buf[TruncatedHeaderSize+DataHeaderSize:length-ECFSize])
	}

	*ph = h
	*df = f
	return nil
}
