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

// Package livefeed fans reading and alert events out to live subscribers.
// Delivery is best-effort and at-most-once: a full subscriber buffer means the
// event is dropped for that subscriber, publishing never blocks the
// acquisition cycle. There is no replay for late subscribers.
package livefeed

import (
	"sync"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/stackTD/nextCare/pkg/datamodel"
)

const subscriberBuffer = 64

const (
	EventTypeReading = "reading"
	EventTypeAlert   = "alert"
)

var droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
	Name: "nextcare_livefeed_dropped_events_total",
	Help: "Events dropped because a subscriber buffer was full",
})

// Envelope wraps every fan-out message with its event type so a single
// subscriber stream can carry both shapes.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Forwarder pushes events to an external transport (MQTT). Implementations
// must not block.
type Forwarder interface {
	Forward(eventType string, payload []byte)
}

// Feed maintains the set of live subscribers and broadcasts serialized
// envelopes to them.
type Feed struct {
	subscribers map[chan []byte]struct{}
	forwarders  []Forwarder
	mu          sync.RWMutex
}

func NewFeed() *Feed {
	return &Feed{
		subscribers: make(map[chan []byte]struct{}),
	}
}

// AttachForwarder registers an external transport. Not safe to call once
// publishing has started, wiring happens at startup.
func (f *Feed) AttachForwarder(fw Forwarder) {
	f.forwarders = append(f.forwarders, fw)
}

// Subscribe registers a new subscriber and returns its event channel.
func (f *Feed) Subscribe() chan []byte {
	ch := make(chan []byte, subscriberBuffer)
	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call more
// than once for the same channel.
func (f *Feed) Unsubscribe(ch chan []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subscribers[ch]; ok {
		delete(f.subscribers, ch)
		close(ch)
	}
}

// SubscriberCount returns the number of live subscribers.
func (f *Feed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

// PublishReading pushes a reading update to all subscribers.
func (f *Feed) PublishReading(update datamodel.ReadingUpdate) {
	f.publish(EventTypeReading, update)
}

// PublishAlert pushes an alert-created notification to all subscribers.
func (f *Feed) PublishAlert(alert datamodel.AlertCreated) {
	f.publish(EventTypeAlert, alert)
}

func (f *Feed) publish(eventType string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		zap.S().Errorf("Failed to marshal %s event: %s", eventType, err)
		return
	}
	message, err := json.Marshal(Envelope{Type: eventType, Payload: body})
	if err != nil {
		zap.S().Errorf("Failed to marshal %s envelope: %s", eventType, err)
		return
	}

	for _, fw := range f.forwarders {
		fw.Forward(eventType, body)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for ch := range f.subscribers {
		select {
		case ch <- message:
		default:
			droppedEvents.Inc()
			zap.S().Debugf("Subscriber buffer full, dropping %s event", eventType)
		}
	}
}
