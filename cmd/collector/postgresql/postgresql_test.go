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

package postgresql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackTD/nextCare/pkg/datamodel"
)

func createMockConnection(t *testing.T) (*Connection, pgxmock.PgxPoolIface) {
	mocked, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("Failed to create mock connection: %v", err)
	}
	return &Connection{db: mocked}, mocked
}

func floatPtr(f float64) *float64 {
	return &f
}

func TestLoadActivePoints(t *testing.T) {
	c, mock := createMockConnection(t)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{
		"parameter_id", "machine_id", "name", "register_address", "unit", "min_value", "max_value", "is_active",
	}).
		AddRow(1, 1, "Temperature", "D20", "°C", floatPtr(20), floatPtr(80), true).
		AddRow(2, 1, "Vibration", "D21", "Hz", nil, floatPtr(100), true)
	mock.ExpectQuery("SELECT parameter_id, machine_id, name").WillReturnRows(rows)

	points, err := c.LoadActivePoints(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "Temperature", points[0].Name)
	assert.Equal(t, "D20", points[0].RegisterAddress)
	require.NotNil(t, points[0].LowerBound)
	assert.Equal(t, 20.0, *points[0].LowerBound)
	require.NotNil(t, points[0].UpperBound)
	assert.Equal(t, 80.0, *points[0].UpperBound)

	assert.Nil(t, points[1].LowerBound)
	require.NotNil(t, points[1].UpperBound)
	assert.Equal(t, 100.0, *points[1].UpperBound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadActivePointsQueryFailure(t *testing.T) {
	c, mock := createMockConnection(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT parameter_id, machine_id, name").WillReturnError(errors.New("connection refused"))

	_, err := c.LoadActivePoints(context.Background())
	assert.Error(t, err)
}

func TestCommitCycle(t *testing.T) {
	c, mock := createMockConnection(t)
	defer mock.Close()

	now := time.Now().UTC()
	readings := []datamodel.Reading{
		{PointID: 1, Value: 90, Timestamp: now, Quality: datamodel.QualityGood},
		{PointID: 2, Value: 0, Timestamp: now, Quality: datamodel.QualityBad},
	}
	alerts := []datamodel.AlertEvent{
		{
			PointID:        1,
			Message:        "Temperature value (90 °C) exceeds maximum threshold",
			Severity:       datamodel.SeverityHigh,
			ThresholdValue: 80,
			ActualValue:    90,
			CreatedAt:      now,
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sensor_data").
		WithArgs(1, 90.0, now, 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO sensor_data").
		WithArgs(2, 0.0, now, 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("INSERT INTO alerts").
		WithArgs(1, alerts[0].Message, datamodel.SeverityHigh, 80.0, 90.0, now).
		WillReturnRows(pgxmock.NewRows([]string{"alert_id"}).AddRow(42))
	mock.ExpectCommit()

	stored, err := c.CommitCycle(context.Background(), readings, alerts)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 42, stored[0].AlertID)
	// The caller's slice stays untouched.
	assert.Equal(t, 0, alerts[0].AlertID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitCycleRollsBackOnInsertFailure(t *testing.T) {
	c, mock := createMockConnection(t)
	defer mock.Close()

	now := time.Now().UTC()
	readings := []datamodel.Reading{
		{PointID: 1, Value: 25.5, Timestamp: now, Quality: datamodel.QualityGood},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sensor_data").
		WithArgs(1, 25.5, now, 0).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := c.CommitCycle(context.Background(), readings, nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitCycleRollsBackOnCommitFailure(t *testing.T) {
	c, mock := createMockConnection(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("server closed the connection"))
	mock.ExpectRollback()

	_, err := c.CommitCycle(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestIsAvailable(t *testing.T) {
	c, mock := createMockConnection(t)
	defer mock.Close()

	mock.ExpectPing()
	assert.True(t, c.IsAvailable())

	var empty Connection
	assert.False(t, empty.IsAvailable())
}
