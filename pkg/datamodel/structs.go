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

// MonitoredPoint binds one holding register on a field device to a name, an
// engineering unit and an optional safe range. Points are created and edited by
// the dashboard; the collector only ever reads them.
type MonitoredPoint struct {
	LowerBound      *float64
	UpperBound      *float64
	Name            string
	RegisterAddress string
	Unit            string
	PointID         int
	MachineID       int
	IsActive        bool
}

// Reading is one observation of a MonitoredPoint. Readings are append-only:
// the collector creates exactly one per point per acquisition cycle (also on
// read failure, with the value defaulted and quality bad) and never touches
// them again.
type Reading struct {
	Timestamp time.Time
	Value     float64
	PointID   int
	Quality   Quality
}

// AlertEvent is one detected threshold violation. The collector creates alerts
// unacknowledged; acknowledgement is written by the dashboard, never here.
type AlertEvent struct {
	CreatedAt      time.Time
	Message        string
	Severity       string
	ThresholdValue float64
	ActualValue    float64
	AlertID        int
	PointID        int
}

const (
	// SeverityHigh is the severity assigned to every threshold violation
	SeverityHigh = "high"

	// SeverityMedium and SeverityLow exist in the alerts table for
	// dashboard-created entries, the collector never emits them
	SeverityMedium = "medium"
	SeverityLow    = "low"
)
