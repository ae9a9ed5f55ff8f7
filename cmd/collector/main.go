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

// The collector polls a PLC (or the mock-plc simulator) over Modbus TCP on a
// fixed interval, persists readings with quality classification, raises
// threshold alerts and fans both out to live subscribers. The web dashboard
// reading the same database is a separate deployment.
package main

import (
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/united-manufacturing-hub/umh-utils/env"
	"github.com/united-manufacturing-hub/umh-utils/logger"
	"go.uber.org/zap"

	"github.com/stackTD/nextCare/cmd/collector/livefeed"
	"github.com/stackTD/nextCare/cmd/collector/plc"
	"github.com/stackTD/nextCare/cmd/collector/postgresql"
	"github.com/stackTD/nextCare/cmd/collector/worker"
	"github.com/stackTD/nextCare/internal"
)

var buildtime string

func main() {
	// Initialize zap logging
	log := logger.New("LOGGING_LEVEL")
	defer func(logger *zap.SugaredLogger) {
		err := logger.Sync()
		if err != nil {
			panic(err)
		}
	}(log)

	zap.S().Infof("This is collector build date: %s", buildtime)

	internal.Initfgtrace()

	// PLC connection parameters
	plcHost, err := env.GetAsString("PLC_HOST", false, "127.0.0.1")
	if err != nil {
		zap.S().Fatalf("Failed to get PLC_HOST from env: %s", err)
	}
	plcPort, err := env.GetAsInt("PLC_PORT", false, 5020)
	if err != nil {
		zap.S().Fatalf("Failed to get PLC_PORT from env: %s", err)
	}
	intervalSeconds, err := env.GetAsInt("DATA_COLLECTION_INTERVAL", false, 5)
	if err != nil {
		zap.S().Fatalf("Failed to get DATA_COLLECTION_INTERVAL from env: %s", err)
	}
	if intervalSeconds <= 0 {
		zap.S().Fatalf("DATA_COLLECTION_INTERVAL must be positive, got %d", intervalSeconds)
	}

	// Postgres
	pqHost, err := env.GetAsString("POSTGRES_HOST", false, "db")
	if err != nil {
		zap.S().Fatalf("Failed to get POSTGRES_HOST from env: %s", err)
	}
	pqPort, err := env.GetAsInt("POSTGRES_PORT", false, 5432)
	if err != nil {
		zap.S().Fatalf("Failed to get POSTGRES_PORT from env: %s", err)
	}
	pqUser, err := env.GetAsString("POSTGRES_USER", true, "")
	if err != nil {
		zap.S().Fatalf("Failed to get POSTGRES_USER from env: %s", err)
	}
	pqPassword, err := env.GetAsString("POSTGRES_PASSWORD", true, "")
	if err != nil {
		zap.S().Fatalf("Failed to get POSTGRES_PASSWORD from env: %s", err)
	}
	pqDBName, err := env.GetAsString("POSTGRES_DATABASE", true, "")
	if err != nil {
		zap.S().Fatalf("Failed to get POSTGRES_DATABASE from env: %s", err)
	}
	pqSSLMode, err := env.GetAsString("POSTGRES_SSL_MODE", false, "require")
	if err != nil {
		zap.S().Fatalf("Failed to get POSTGRES_SSL_MODE from env: %s", err)
	}

	store, err := postgresql.Connect(pqHost, pqPort, pqUser, pqPassword, pqDBName, pqSSLMode)
	if err != nil {
		zap.S().Fatalf("Failed to connect to postgres: %s", err)
	}

	client := plc.NewClient(plcHost, plcPort)
	feed := livefeed.NewFeed()

	// Optional MQTT fan-out; off when no broker is configured.
	var mqttForwarder *livefeed.MQTTForwarder
	mqttBrokerURL, err := env.GetAsString("MQTT_BROKER_URL", false, "")
	if err != nil {
		zap.S().Fatalf("Failed to get MQTT_BROKER_URL from env: %s", err)
	}
	if mqttBrokerURL != "" {
		mqttClientID, err := env.GetAsString("MQTT_CLIENT_ID", false, "nextcare-collector")
		if err != nil {
			zap.S().Fatalf("Failed to get MQTT_CLIENT_ID from env: %s", err)
		}
		mqttPassword, err := env.GetAsString("MQTT_PASSWORD", false, "")
		if err != nil {
			zap.S().Fatalf("Failed to get MQTT_PASSWORD from env: %s", err)
		}
		mqttTopicPrefix, err := env.GetAsString("MQTT_TOPIC_PREFIX", false, "nextcare/collector")
		if err != nil {
			zap.S().Fatalf("Failed to get MQTT_TOPIC_PREFIX from env: %s", err)
		}
		mqttForwarder, err = livefeed.NewMQTTForwarder(mqttBrokerURL, mqttClientID, mqttPassword, mqttTopicPrefix)
		if err != nil {
			zap.S().Fatalf("Failed to set up MQTT fan-out: %s", err)
		}
		feed.AttachForwarder(mqttForwarder)
	}

	cycle := worker.NewCycle(client, store, feed)
	supervisor := worker.NewSupervisor(
		cycle,
		client,
		plcHost,
		plcPort,
		time.Duration(intervalSeconds)*time.Second)

	// Health and metrics
	zap.S().Debugf("Setting up healthcheck")
	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(10000))
	health.AddReadinessCheck("database", func() error {
		if !store.IsAvailable() {
			return errDatabaseUnavailable
		}
		return nil
	})
	healthAddress, err := env.GetAsString("HEALTH_ADDRESS", false, "0.0.0.0:8086")
	if err != nil {
		zap.S().Fatalf("Failed to get HEALTH_ADDRESS from env: %s", err)
	}
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/live", health.LiveEndpoint)
		mux.HandleFunc("/ready", health.ReadyEndpoint)
		mux.Handle("/metrics", promhttp.Handler())
		/* #nosec G114 */
		if err := http.ListenAndServe(healthAddress, mux); err != nil {
			zap.S().Errorf("Error starting healthcheck server: %s", err)
		}
	}()

	// Live feed for connected dashboards
	liveFeedAddress, err := env.GetAsString("LIVE_FEED_ADDRESS", false, "0.0.0.0:8080")
	if err != nil {
		zap.S().Fatalf("Failed to get LIVE_FEED_ADDRESS from env: %s", err)
	}
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", livefeed.ServeWS(feed))
		mux.HandleFunc("/status", statusHandler(supervisor))
		/* #nosec G114 */
		if err := http.ListenAndServe(liveFeedAddress, mux); err != nil {
			zap.S().Errorf("Error starting live feed server: %s", err)
		}
	}()

	supervisor.Start()

	gs := internal.NewGracefulShutdown(func() error {
		supervisor.Stop()
		if mqttForwarder != nil {
			mqttForwarder.Disconnect()
		}
		store.Close()
		return nil
	})
	gs.Wait()
}
