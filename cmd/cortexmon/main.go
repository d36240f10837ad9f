package main

import (
	"encoding/hex"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/telecortex.go/pkg/status"
	"github.com/robotalks/telecortex.go/pkg/transport/mqtt"
)

var (
	mqttURL    = "mqtt://localhost:1883/cortex/"
	showFrames bool
)

func init() {
	if val := os.Getenv("CORTEX_REGISTRY_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.BoolVar(&showFrames, "frames", showFrames, "Dump panel frames.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	b, err := mqtt.NewBrokerFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	b.Sub("#", func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/"+mqtt.MetaTopic):
			log.Printf("%s: %s", topic, string(payload))
		case strings.HasSuffix(topic, "/"+mqtt.StatusTopic):
			st, err := status.Decode(payload)
			if err != nil {
				log.Printf("%s: bad status: %v", topic, err)
				return
			}
			log.Printf("%s: %s", topic, st.String())
		case strings.Contains(topic, "/"+mqtt.FrameTopic+"/"):
			if showFrames {
				log.Printf("%s: %d pixels %s", topic, len(payload)/3, hex.EncodeToString(payload))
			}
		default:
			log.Printf("%s: %q", topic, payload)
		}
	})
	token := b.Connect()
	if token.Wait(); token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
