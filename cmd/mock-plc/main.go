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

// mock-plc is the paired field-device simulator for the collector: a Modbus
// TCP server whose holding registers 20-24 carry waveform-generated sensor
// values in the fixed-point wire format the collector expects.
package main

import (
	"fmt"
	"time"

	"github.com/tbrandon/mbserver"
	"github.com/united-manufacturing-hub/umh-utils/env"
	"github.com/united-manufacturing-hub/umh-utils/logger"
	"go.uber.org/zap"

	"github.com/stackTD/nextCare/internal"
)

const registerUpdateInterval = 2 * time.Second

var buildtime string

func main() {
	log := logger.New("LOGGING_LEVEL")
	defer func(logger *zap.SugaredLogger) {
		err := logger.Sync()
		if err != nil {
			panic(err)
		}
	}(log)

	zap.S().Infof("This is mock-plc build date: %s", buildtime)

	bindHost, err := env.GetAsString("PLC_BIND_HOST", false, "0.0.0.0")
	if err != nil {
		zap.S().Fatalf("Failed to get PLC_BIND_HOST from env: %s", err)
	}
	port, err := env.GetAsInt("PLC_PORT", false, 5020)
	if err != nil {
		zap.S().Fatalf("Failed to get PLC_PORT from env: %s", err)
	}

	server := mbserver.NewServer()
	listenAddress := fmt.Sprintf("%s:%d", bindHost, port)
	if err := server.ListenTCP(listenAddress); err != nil {
		zap.S().Fatalf("Failed to listen on %s: %s", listenAddress, err)
	}
	zap.S().Infof("Mock PLC serving Modbus TCP on %s", listenAddress)

	simulator := NewSimulator(time.Now().UnixNano())
	stop := make(chan struct{})
	go updateRegisters(server, simulator, stop)

	gs := internal.NewGracefulShutdown(func() error {
		close(stop)
		server.Close()
		return nil
	})
	gs.Wait()
}

// updateRegisters refreshes the holding registers on a fixed tick so
// connected collectors see moving values.
func updateRegisters(server *mbserver.Server, simulator *Simulator, stop <-chan struct{}) {
	ticker := time.NewTicker(registerUpdateInterval)
	defer ticker.Stop()

	refresh := func() {
		for _, register := range SimulatedRegisters() {
			raw, ok := simulator.RawValue(register)
			if !ok {
				continue
			}
			server.HoldingRegisters[register] = raw
		}
	}

	refresh()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			refresh()
		}
	}
}
