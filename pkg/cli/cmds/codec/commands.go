// Package codec provides the satcli commands for the bus and ground-link
// codecs.
package codec

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/satlink/sat.go/pkg/cli/sh"
	"github.com/satlink/sat.go/pkg/crc16"
	"github.com/satlink/sat.go/pkg/l0/bus"
	"github.com/satlink/sat.go/pkg/l1/frame"
)

func init() {
	sh.AddCmds(
		&CRCCmd,
		&BusEncodeCmd,
		&BusDecodeCmd,
		&TFEncodeCmd,
		&TFDecodeCmd,
		&SyncCmd,
	)
}

type busPacketView struct {
	Type    string `json:"type"`
	APID    byte   `json:"apid"`
	HasECF  bool   `json:"has_ecf"`
	Length  byte   `json:"length"`
	ECF     string `json:"ecf,omitempty"`
	Payload string `json:"payload"`
}

type transferFrameView struct {
	Version          byte   `json:"version"`
	SCID             uint16 `json:"scid"`
	SourceDest       byte   `json:"source_dest"`
	VCID             byte   `json:"vcid"`
	MAPID            byte   `json:"mapid"`
	Truncated        bool   `json:"truncated"`
	Length           uint16 `json:"length,omitempty"`
	Bypass           bool   `json:"bypass,omitempty"`
	Command          bool   `json:"command,omitempty"`
	OCF              bool   `json:"ocf,omitempty"`
	VCData           string `json:"vc_data,omitempty"`
	ConstructionRule byte   `json:"construction_rule"`
	ProtocolID       byte   `json:"protocol_id"`
	Payload          string `json:"payload"`
}

var (
	// CRCCmd computes the link CRC-16 of hex input.
	CRCCmd = ishell.Cmd{
		Name:    "crc16",
		Aliases: []string{"crc"},
		Help:    "HEX [SEED]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("hex input expected"))
				return
			}
			data, err := sh.ParseHex(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			seed := uint64(crc16.Seed)
			if len(c.Args) > 1 {
				if seed, err = strconv.ParseUint(c.Args[1], 0, 16); err != nil {
					c.Err(err)
					return
				}
			}
			c.Printf("%04X\n", crc16.Checksum(uint16(seed), data))
		},
	}

	// BusEncodeCmd encodes and packetizes a bus packet.
	BusEncodeCmd = ishell.Cmd{
		Name: "bus-encode",
		Help: "tm|tc APID HEX",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 3 {
				c.Err(fmt.Errorf("usage: bus-encode tm|tc APID HEX"))
				return
			}
			typ := bus.TypeTM
			if c.Args[0] == "tc" {
				typ = bus.TypeTC
			}
			apid, err := strconv.ParseUint(c.Args[1], 0, 7)
			if err != nil {
				c.Err(err)
				return
			}
			data, err := sh.ParseHex(c.Args[2])
			if err != nil {
				c.Err(err)
				return
			}
			buf := make([]byte, bus.BusSize+1)
			n, err := bus.EncodePacketize(typ, byte(apid), true, data, buf)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(hex.EncodeToString(buf[:n]))
		},
	}

	// BusDecodeCmd decodes a bus packet frame.
	BusDecodeCmd = ishell.Cmd{
		Name: "bus-decode",
		Help: "HEX",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("hex frame expected"))
				return
			}
			buf, err := sh.ParseHex(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			pkt, err := bus.Decode(buf)
			if err != nil {
				c.Err(err)
				return
			}
			view := busPacketView{
				Type:    pkt.Type.String(),
				APID:    pkt.APID,
				HasECF:  pkt.HasECF,
				Length:  pkt.Length,
				Payload: hex.EncodeToString(pkt.Payload()),
			}
			if pkt.HasECF {
				view.ECF = fmt.Sprintf("%04X", pkt.ECF)
			}
			sh.PrintResult(c, view)
		},
	}

	// TFEncodeCmd builds a transfer frame with deployment defaults.
	TFEncodeCmd = ishell.Cmd{
		Name: "tf-encode",
		Help: "ext|trunc HEX [VCHEX]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("usage: tf-encode ext|trunc HEX [VCHEX]"))
				return
			}
			ph := frame.PrimaryHeader{
				Version:    frame.DefaultVersion,
				SCID:       frame.DefaultSCID,
				SourceDest: frame.Source,
				VCID:       frame.DefaultVCID,
				MAPID:      frame.DefaultMAPID,
				Truncated:  c.Args[0] == "trunc",
			}
			df := frame.DataField{
				ConstructionRule: frame.DefaultConstructionRule,
				ProtocolID:       frame.DefaultProtocolID,
			}
			data, err := sh.ParseHex(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			var vcData []byte
			if len(c.Args) > 2 {
				if vcData, err = sh.ParseHex(c.Args[2]); err != nil {
					c.Err(err)
					return
				}
			}
			if err = frame.SetData(data, vcData, &ph, &df); err != nil {
				c.Err(err)
				return
			}
			buf := make([]byte, frame.MaxFrameSize)
			n, err := frame.Packetize(&ph, &df, buf)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(hex.EncodeToString(buf[:n]))
		},
	}

	// TFDecodeCmd decodes a transfer frame.
	TFDecodeCmd = ishell.Cmd{
		Name: "tf-decode",
		Help: "HEX",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("hex frame expected"))
				return
			}
			buf, err := sh.ParseHex(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			var ph frame.PrimaryHeader
			var df frame.DataField
			if err = frame.Decode(buf, &ph, &df); err != nil {
				c.Err(err)
				return
			}
			sh.PrintResult(c, transferFrameView{
				Version:          ph.Version,
				SCID:             ph.SCID,
				SourceDest:       ph.SourceDest,
				VCID:             ph.VCID,
				MAPID:            ph.MAPID,
				Truncated:        ph.Truncated,
				Length:           ph.Length,
				Bypass:           ph.Bypass,
				Command:          ph.Command,
				OCF:              ph.OCF,
				VCData:           hex.EncodeToString(ph.VCData()),
				ConstructionRule: df.ConstructionRule,
				ProtocolID:       df.ProtocolID,
				Payload:          hex.EncodeToString(df.Payload()),
			})
		},
	}

	// SyncCmd traces the sync detector over hex input.
	SyncCmd = ishell.Cmd{
		Name: "sync",
		Help: "HEX",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("hex stream expected"))
				return
			}
			data, err := sh.ParseHex(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			var d bus.SyncDetector
			for i, b := range data {
				state := d.Feed(b)
				c.Printf("%3d  %02X  %s\n", i, b, state)
				if state == bus.Synchronized {
					c.Printf("frame starts at offset %d\n", i+1)
					return
				}
			}
			c.Println("no sync marker found")
		},
	}
)
