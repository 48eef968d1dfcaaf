package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"smartwaste-backend/internal/models"
)

const binStatusTopic = "smartwaste/bins/+/status"

// MQTTListener subscribes to bin telemetry and feeds level reports into
// the status service. Malformed payloads and unknown bins are logged and
// dropped so one bad sensor cannot stall the stream.
type MQTTListener struct {
	client mqtt.Client
	status *BinStatusService
}

// NewMQTTListener connects to the broker and subscribes. Returns an error
// if the broker is unreachable at startup.
func NewMQTTListener(brokerURL, clientID string, status *BinStatusService) (*MQTTListener, error) {
	l := &MQTTListener{status: status}

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			log.Printf("📡 MQTT connected to %s", brokerURL)
			if token := c.Subscribe(binStatusTopic, 1, l.handleBinStatus); token.Wait() && token.Error() != nil {
				log.Printf("❌ MQTT subscribe failed: %v", token.Error())
			}
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("⚠️ MQTT connection lost: %v", err)
		})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", brokerURL, token.Error())
	}

	l.client = client
	return l, nil
}

// handleBinStatus processes one telemetry message. The bin ID comes from
// the topic; a bin_id in the payload must agree with it if present.
func (l *MQTTListener) handleBinStatus(_ mqtt.Client, msg mqtt.Message) {
	binID := binIDFromTopic(msg.Topic())
	if binID == "" {
		log.Printf("⚠️ MQTT message on unexpected topic: %s", msg.Topic())
		return
	}

	var report models.BinLevelReport
	if err := json.Unmarshal(msg.Payload(), &report); err != nil {
		log.Printf("⚠️ MQTT payload for %s unparseable: %v", binID, err)
		return
	}
	if report.BinID != "" && report.BinID != binID {
		log.Printf("⚠️ MQTT payload bin %s does not match topic bin %s, dropped", report.BinID, binID)
		return
	}
	report.BinID = binID

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := l.status.IngestLevels(ctx, report); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			log.Printf("⚠️ MQTT report for unknown bin %s dropped", binID)
		case errors.Is(err, ErrUnprocessable):
			log.Printf("⚠️ MQTT report for bin %s rejected: %v", binID, err)
		default:
			log.Printf("❌ MQTT ingest for bin %s failed: %v", binID, err)
		}
	}
}

// Close disconnects from the broker, allowing in-flight work to finish.
func (l *MQTTListener) Close() {
	if l.client != nil && l.client.IsConnected() {
		l.client.Disconnect(250)
		log.Println("📡 MQTT disconnected")
	}
}

// binIDFromTopic extracts the bin segment of smartwaste/bins/{id}/status.
func binIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "smartwaste" || parts[1] != "bins" || parts[3] != "status" {
		return ""
	}
	return parts[2]
}
