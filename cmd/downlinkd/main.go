// downlinkd bridges the onboard bus to the ground-link downlink: it reads
// bus packets from the serial bus, wraps each payload in a transfer frame
// and publishes the frames to an MQTT broker, one frame per message.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"go.bug.st/serial"

	fx "github.com/satlink/sat.go/pkg/framework"
	"github.com/satlink/sat.go/pkg/l0/bus"
	"github.com/satlink/sat.go/pkg/l1/comm/mqtt"
	"github.com/satlink/sat.go/pkg/l1/env"
	"github.com/satlink/sat.go/pkg/l1/frame"
)

var (
	serialDev = "/dev/ttyUSB0"
	baudRate  = 115200
	mqttURL   = "mqtt://localhost:1883/sat/"
	truncated = false
)

func init() {
	if val := os.Getenv("SAT_SERIAL"); val != "" {
		serialDev = val
	}
	if val := os.Getenv("SAT_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&serialDev, "serial", serialDev, "Serial device of the onboard bus.")
	flag.IntVar(&baudRate, "baud", baudRate, "Serial baud rate.")
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.BoolVar(&truncated, "truncated", truncated, "Downlink truncated frames instead of extended.")
}

type downlink struct {
	queue *mqtt.Queue
	buf   [frame.MaxFrameSize]byte
}

func (d *downlink) HandlePacket(_ context.Context, pkt *bus.Packet) {
	ph := frame.PrimaryHeader{
		Version:    frame.DefaultVersion,
		SCID:       frame.DefaultSCID,
		SourceDest: frame.Source,
		VCID:       frame.DefaultVCID,
		MAPID:      frame.DefaultMAPID,
		Truncated:  truncated,
	}
	df := frame.DataField{
		ConstructionRule: frame.DefaultConstructionRule,
		ProtocolID:       frame.DefaultProtocolID,
	}
	if err := frame.SetData(pkt.Payload(), nil, &ph, &df); err != nil {
		glog.Errorf("frame %s apid=%d: %v", pkt.Type, pkt.APID, err)
		return
	}
	n, err := frame.Packetize(&ph, &df, d.buf[:])
	if err != nil {
		glog.Errorf("frame %s apid=%d: %v", pkt.Type, pkt.APID, err)
		return
	}
	topic := fmt.Sprintf("dl/%d", pkt.APID)
	if err := d.queue.Pub(topic, d.buf[:n]); err != nil {
		glog.Errorf("publish %s: %v", topic, err)
		return
	}
	glog.V(2).Infof("downlinked %s apid=%d %d bytes", pkt.Type, pkt.APID, n)
}

func main() {
	flag.Parse()

	opts, topicPrefix, err := mqtt.ClientOptionsFromURL(mqttURL)
	if err != nil {
		glog.Exit(err)
	}
	opts.SetClientID(env.ClientID("downlinkd"))
	queue := mqtt.NewQueue(opts, topicPrefix)
	if err = queue.Connect(); err != nil {
		glog.Exit(err)
	}
	defer queue.Close()

	port, err := serial.Open(serialDev, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		glog.Exitf("open %s: %v", serialDev, err)
	}

	receiver := &bus.Receiver{
		Reader:  port,
		Handler: &downlink{queue: queue},
		Notifier: bus.SyncChangedFunc(func(_ context.Context, s bus.SyncState) {
			glog.V(3).Infof("bus sync: %s", s)
		}),
		OnError: func(err error) {
			glog.Warningf("bus frame dropped: %v", err)
		},
	}

	glog.Infof("downlinkd reading %s, publishing to %s", serialDev, mqttURL)
	err = fx.NewRunner().
		HandleSignals().
		Go(fx.NamedRun("receiver", fx.RunFunc(func(ctx context.Context) error {
			// Closing the port is what unblocks the pending serial read
			// when the context is canceled.
			return fx.RunWithContextCloser(ctx, port, func() error {
				return receiver.Run(ctx)
			})
		}))).
		Wait()
	if err != nil {
		glog.Exit(err)
	}
}
