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

package main

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/stackTD/nextCare/cmd/collector/worker"
)

var errDatabaseUnavailable = errors.New("database is not available")

type statusResponse struct {
	Host            string `json:"host"`
	Running         bool   `json:"running"`
	Connected       bool   `json:"connected"`
	Port            int    `json:"port"`
	IntervalSeconds int    `json:"update_interval"`
}

// statusHandler exposes the supervisor state as a read-only JSON endpoint for
// the dashboard.
func statusHandler(supervisor *worker.Supervisor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		status := supervisor.Status()
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(statusResponse{
			Running:         status.Running,
			Connected:       status.Connected,
			Host:            status.Host,
			Port:            status.Port,
			IntervalSeconds: int(status.Interval.Seconds()),
		})
		if err != nil {
			zap.S().Errorf("Failed to write status response: %s", err)
		}
	}
}
