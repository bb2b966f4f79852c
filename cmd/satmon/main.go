package main

import (
	"encoding/hex"
	"flag"
	"log"
	"os"

	"github.com/satlink/sat.go/pkg/l1/comm/mqtt"
	"github.com/satlink/sat.go/pkg/l1/frame"
)

var (
	mqttURL = "mqtt://localhost:1883/sat/"
)

func init() {
	if val := os.Getenv("SAT_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err = q.Connect(); err != nil {
		log.Fatalln(err)
	}

	err = q.Sub("dl/#", func(topic string, payload []byte) {
		var ph frame.PrimaryHeader
		var df frame.DataField
		if err := frame.Decode(payload, &ph, &df); err != nil {
			log.Printf("%s: bad frame: %v", topic, err)
			return
		}
		log.Printf("%s: scid=%04X vc=%d map=%d truncated=%v proto=%d payload=%s",
			topic, ph.SCID, ph.VCID, ph.MAPID, ph.Truncated,
			df.ProtocolID, hex.EncodeToString(df.Payload()))
	})
	if err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
