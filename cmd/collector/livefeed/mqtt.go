// Copyright 2024 NextCare Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package livefeed

import (
	"fmt"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// onConnect logs once the connection is established. Required to see broker
// reconnects in the logs.
func onConnect(c MQTT.Client) {
	optionsReader := c.OptionsReader()
	zap.S().Infof("Connected to MQTT broker as %s", optionsReader.ClientID())
}

// onConnectionLost outputs a warn message; the paho auto-reconnect takes over.
func onConnectionLost(c MQTT.Client, err error) {
	zap.S().Warnf("Connection to MQTT broker lost: %s", err)
}

// MQTTForwarder republishes feed events to an MQTT broker so non-websocket
// consumers (historians, other services) can tap the live stream.
type MQTTForwarder struct {
	client      MQTT.Client
	topicPrefix string
}

// NewMQTTForwarder connects to the broker. Events go to
// <topicPrefix>/reading and <topicPrefix>/alert with QoS 1.
func NewMQTTForwarder(brokerURL string, clientID string, password string, topicPrefix string) (*MQTTForwarder, error) {
	opts := MQTT.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	if password != "" {
		opts.SetUsername("COLLECTOR")
		opts.SetPassword(password)
	}
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(onConnect)
	opts.SetConnectionLostHandler(onConnectionLost)
	opts.SetOrderMatters(false)

	client := MQTT.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", brokerURL, token.Error())
	}

	return &MQTTForwarder{client: client, topicPrefix: topicPrefix}, nil
}

// Forward publishes fire-and-forget; a slow broker must not stall the
// acquisition cycle, so the token is deliberately not awaited.
func (m *MQTTForwarder) Forward(eventType string, payload []byte) {
	topic := fmt.Sprintf("%s/%s", m.topicPrefix, eventType)
	m.client.Publish(topic, 1, false, payload)
}

// Disconnect flushes outstanding work and drops the broker connection.
func (m *MQTTForwarder) Disconnect() {
	m.client.Disconnect(250)
}
