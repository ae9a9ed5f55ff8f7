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

package datamodel

import "time"

// Message shapes pushed to live subscribers (connected dashboards, MQTT).
// Delivery is fire-and-forget, at-most-once, no replay.

type ReadingUpdate struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	PointID   int       `json:"point_id"`
}

type AlertCreated struct {
	CreatedAt time.Time `json:"created_at"`
	PointName string    `json:"point_name"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	AlertID   int       `json:"alert_id"`
	PointID   int       `json:"point_id"`
}
