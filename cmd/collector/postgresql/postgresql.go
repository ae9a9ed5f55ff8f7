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

// Package postgresql persists the collector's output. The collector only ever
// appends: readings and alerts are inserted, never updated or deleted here.
// Alert acknowledgement is a dashboard write.
package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/stackTD/nextCare/pkg/datamodel"
)

// PgxIface is the slice of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type PgxIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// Connection wraps the database pool.
type Connection struct {
	db PgxIface
}

func get5SecondContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// Connect opens a pgx pool and verifies that the tables the collector writes
// to actually exist. It does not create them, schema management belongs to the
// dashboard deployment (see deployment/sql/schema.sql).
func Connect(host string, port int, user string, password string, dbName string, sslMode string) (*Connection, error) {
	zap.S().Infof("Connecting to %s@%s:%d/%s [%s]", user, host, port, dbName, sslMode)

	conString := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbName, sslMode)

	establishContext, establishContextCncl := get5SecondContext()
	defer establishContextCncl()
	db, err := pgxpool.New(establishContext, conString)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection to postgres database: %w", err)
	}

	c := &Connection{db: db}
	if !c.IsAvailable() {
		db.Close()
		return nil, errors.New("database is not available")
	}

	checkContext, checkContextCncl := get5SecondContext()
	defer checkContextCncl()
	for _, table := range []string{"parameters", "sensor_data", "alerts"} {
		var tableName string
		err := db.QueryRow(checkContext, selectTableExists, table).Scan(&tableName)
		if err != nil {
			db.Close()
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("table %s does not exist in the database", table)
			}
			return nil, fmt.Errorf("failed to check for table %s: %w", table, err)
		}
	}

	return c, nil
}

// IsAvailable pings the database.
func (c *Connection) IsAvailable() bool {
	if c.db == nil {
		return false
	}
	ctx, cncl := get5SecondContext()
	defer cncl()
	if err := c.db.Ping(ctx); err != nil {
		zap.S().Debugf("Failed to ping database: %s", err)
		return false
	}
	return true
}

// Close shuts the pool down.
func (c *Connection) Close() {
	if c.db != nil {
		c.db.Close()
	}
}

// LoadActivePoints returns the current active monitored points, ordered by
// point id. The acquisition cycle calls this once per cycle so points
// activated mid-cycle only show up in the next one.
func (c *Connection) LoadActivePoints(ctx context.Context) ([]datamodel.MonitoredPoint, error) {
	rows, err := c.db.Query(ctx, selectActivePoints)
	if err != nil {
		return nil, fmt.Errorf("failed to query active points: %w", err)
	}
	defer rows.Close()

	var points []datamodel.MonitoredPoint
	for rows.Next() {
		var point datamodel.MonitoredPoint
		err := rows.Scan(
			&point.PointID,
			&point.MachineID,
			&point.Name,
			&point.RegisterAddress,
			&point.Unit,
			&point.LowerBound,
			&point.UpperBound,
			&point.IsActive)
		if err != nil {
			return nil, fmt.Errorf("failed to scan point row: %w", err)
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read point rows: %w", err)
	}
	return points, nil
}

// CommitCycle writes all readings and alerts of one acquisition cycle as a
// single transaction. On any failure the transaction rolls back and nothing of
// the cycle is kept, the next cycle re-samples anyway.
//
// The returned alerts carry the database-assigned ids, ready for fan-out.
func (c *Connection) CommitCycle(ctx context.Context, readings []datamodel.Reading, alerts []datamodel.AlertEvent) ([]datamodel.AlertEvent, error) {
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin cycle transaction: %w", err)
	}

	rollback := func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			zap.S().Errorf("Failed to rollback cycle transaction: %s", rollbackErr)
		}
	}

	for _, reading := range readings {
		_, err := tx.Exec(ctx, insertReading,
			reading.PointID,
			reading.Value,
			reading.Timestamp,
			reading.Quality.Code())
		if err != nil {
			rollback()
			return nil, fmt.Errorf("failed to insert reading for point %d: %w", reading.PointID, err)
		}
	}

	stored := make([]datamodel.AlertEvent, len(alerts))
	copy(stored, alerts)
	for i := range stored {
		err := tx.QueryRow(ctx, insertAlert,
			stored[i].PointID,
			stored[i].Message,
			stored[i].Severity,
			stored[i].ThresholdValue,
			stored[i].ActualValue,
			stored[i].CreatedAt).Scan(&stored[i].AlertID)
		if err != nil {
			rollback()
			return nil, fmt.Errorf("failed to insert alert for point %d: %w", stored[i].PointID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		rollback()
		return nil, fmt.Errorf("failed to commit cycle transaction: %w", err)
	}
	return stored, nil
}
