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

// Package threshold turns a reading into zero or more alert events by checking
// it against the configured bounds of its monitored point.
//
// There is no deduplication or suppression window: every cycle where a value
// stays out of bounds produces a fresh event. The dashboard side decides how
// to present repeats.
package threshold

import (
	"fmt"
	"time"

	"github.com/stackTD/nextCare/pkg/datamodel"
)

// Evaluate checks value against the point's bounds and returns one high
// severity event per violated bound. Boundary values are in range.
//
// Bounds are not validated here. A misconfigured point with lower > upper can
// legitimately fire both events for the same reading; rejecting such
// configuration is the dashboard's job before the point is activated.
func Evaluate(point datamodel.MonitoredPoint, value float64, at time.Time) []datamodel.AlertEvent {
	var events []datamodel.AlertEvent

	if point.LowerBound != nil && value < *point.LowerBound {
		events = append(events, datamodel.AlertEvent{
			PointID:        point.PointID,
			Message:        fmt.Sprintf("%s value (%v %s) is below minimum threshold", point.Name, value, point.Unit),
			Severity:       datamodel.SeverityHigh,
			ThresholdValue: *point.LowerBound,
			ActualValue:    value,
			CreatedAt:      at,
		})
	}

	if point.UpperBound != nil && value > *point.UpperBound {
		events = append(events, datamodel.AlertEvent{
			PointID:        point.PointID,
			Message:        fmt.Sprintf("%s value (%v %s) exceeds maximum threshold", point.Name, value, point.Unit),
			Severity:       datamodel.SeverityHigh,
			ThresholdValue: *point.UpperBound,
			ActualValue:    value,
			CreatedAt:      at,
		})
	}

	return events
}
