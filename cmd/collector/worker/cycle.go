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

// Package worker runs the acquisition side of the collector: one Cycle walks
// all active monitored points and the Supervisor keeps Cycles running on a
// fixed cadence.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/stackTD/nextCare/cmd/collector/threshold"
	"github.com/stackTD/nextCare/pkg/datamodel"
)

// RegisterReader reads one register from the field device. Implemented by
// plc.Client.
type RegisterReader interface {
	Read(address string) (float64, error)
	Disconnect()
	IsConnected() bool
}

// Store is the slice of the persistence layer the acquisition cycle needs.
type Store interface {
	LoadActivePoints(ctx context.Context) ([]datamodel.MonitoredPoint, error)
	CommitCycle(ctx context.Context, readings []datamodel.Reading, alerts []datamodel.AlertEvent) ([]datamodel.AlertEvent, error)
}

// Publisher pushes committed readings and alerts to live subscribers.
type Publisher interface {
	PublishReading(update datamodel.ReadingUpdate)
	PublishAlert(alert datamodel.AlertCreated)
}

// CycleReport summarizes one acquisition cycle.
type CycleReport struct {
	Attempted int
	Succeeded int
}

// Cycle orchestrates one full pass: load active points, read each register,
// classify quality, evaluate thresholds, commit everything as one unit and
// publish the outcome.
type Cycle struct {
	reader    RegisterReader
	store     Store
	publisher Publisher
}

func NewCycle(reader RegisterReader, store Store, publisher Publisher) *Cycle {
	return &Cycle{
		reader:    reader,
		store:     store,
		publisher: publisher,
	}
}

// RunOnce executes a single acquisition cycle.
//
// Failures are isolated per point: a failed read produces a bad-quality
// reading with value 0 and the cycle moves on. Only a failure to load the
// point snapshot or to commit fails the cycle as a whole; in the commit case
// the cycle's pending writes are discarded and nothing is published, the next
// cycle re-samples.
func (c *Cycle) RunOnce(ctx context.Context) (CycleReport, error) {
	var report CycleReport

	points, err := c.store.LoadActivePoints(ctx)
	if err != nil {
		cycleFailures.Inc()
		return report, err
	}
	if len(points) == 0 {
		zap.S().Infof("No active monitored points found for data collection")
		return report, nil
	}

	readings := make([]datamodel.Reading, 0, len(points))
	var alerts []datamodel.AlertEvent
	pointNames := make(map[int]string, len(points))

	for _, point := range points {
		report.Attempted++
		pointNames[point.PointID] = point.Name

		value, err := c.reader.Read(point.RegisterAddress)
		timestamp := time.Now().UTC()
		if err != nil {
			zap.S().Warnf("Failed to read point %s (%s): %s", point.Name, point.RegisterAddress, err)
			readings = append(readings, datamodel.Reading{
				PointID:   point.PointID,
				Value:     0,
				Timestamp: timestamp,
				Quality:   datamodel.QualityBad,
			})
			readingsTotal.WithLabelValues(datamodel.QualityBad.String()).Inc()
			continue
		}

		report.Succeeded++
		readings = append(readings, datamodel.Reading{
			PointID:   point.PointID,
			Value:     value,
			Timestamp: timestamp,
			Quality:   datamodel.QualityGood,
		})
		readingsTotal.WithLabelValues(datamodel.QualityGood.String()).Inc()

		events := threshold.Evaluate(point, value, timestamp)
		if len(events) > 0 {
			zap.S().Warnf("%d alert(s) raised for %s (value %v %s)", len(events), point.Name, value, point.Unit)
			alerts = append(alerts, events...)
		}
	}

	storedAlerts, err := c.store.CommitCycle(ctx, readings, alerts)
	if err != nil {
		cycleFailures.Inc()
		zap.S().Errorf("Discarding cycle, failed to commit %d readings and %d alerts: %s", len(readings), len(alerts), err)
		return report, err
	}
	alertsRaised.Add(float64(len(storedAlerts)))

	for _, reading := range readings {
		c.publisher.PublishReading(datamodel.ReadingUpdate{
			PointID:   reading.PointID,
			Value:     reading.Value,
			Timestamp: reading.Timestamp,
		})
	}
	for _, alert := range storedAlerts {
		c.publisher.PublishAlert(datamodel.AlertCreated{
			AlertID:   alert.AlertID,
			PointID:   alert.PointID,
			PointName: pointNames[alert.PointID],
			Message:   alert.Message,
			Severity:  alert.Severity,
			CreatedAt: alert.CreatedAt,
		})
	}

	zap.S().Infof("Data collection cycle completed: %d/%d points successful", report.Succeeded, report.Attempted)
	return report, nil
}
