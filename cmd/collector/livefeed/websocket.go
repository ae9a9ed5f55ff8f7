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
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are served from a different origin than the collector.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and streams feed envelopes to the client until
// it disconnects or stops draining its buffer.
func ServeWS(feed *Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			zap.S().Warnf("Failed to upgrade websocket connection: %s", err)
			return
		}

		ch := feed.Subscribe()
		zap.S().Infof("Live feed client connected: %s", conn.RemoteAddr())

		go writePump(conn, ch, feed)

		// Drain the client side until it goes away. Inbound payloads carry no
		// meaning, the feed is one-way.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		feed.Unsubscribe(ch)
		_ = conn.Close()
		zap.S().Infof("Live feed client disconnected: %s", conn.RemoteAddr())
	}
}

func writePump(conn *websocket.Conn, ch chan []byte, feed *Feed) {
	for message := range ch {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			zap.S().Debugf("Dropping live feed client %s: %s", conn.RemoteAddr(), err)
			feed.Unsubscribe(ch)
			_ = conn.Close()
			return
		}
	}
	_ = conn.Close()
}
