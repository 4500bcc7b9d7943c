// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/log"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/options"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type (
	// Archive appends every classified reading to a Postgres table.
	Archive struct {
		db  *sqlx.DB
		log log.Logger
	}

	// Row is one archived reading.
	Row struct {
		DeviceID    string    `db:"device_id"`
		RecordedAt  time.Time `db:"recorded_at"`
		Temperature float64   `db:"temperature"`
		Humidity    float64   `db:"humidity"`
		Pressure    float64   `db:"pressure"`
		Lux         float64   `db:"lux"`
		GasPPM      float64   `db:"gas_ppm"`
		Prediction  string    `db:"prediction"`
		ClassIndex  int       `db:"class_index"`
		InferenceUS int64     `db:"inference_us"`
		Signal      *int      `db:"signal"`
	}

	// ArchiveOption represents a single archive option.
	ArchiveOption interface{ archive(*Archive) }

	withLogger struct{ *slog.Logger }
)

// Name is the sink name used in logs and telemetry.
const Name = "archive"

// Schema creates the readings table.
const Schema = `
	CREATE TABLE IF NOT EXISTS weather_readings (
		id           BIGSERIAL PRIMARY KEY,
		device_id    TEXT NOT NULL,
		recorded_at  TIMESTAMPTZ NOT NULL,
		temperature  DOUBLE PRECISION NOT NULL,
		humidity     DOUBLE PRECISION NOT NULL,
		pressure     DOUBLE PRECISION NOT NULL,
		lux          DOUBLE PRECISION NOT NULL,
		gas_ppm      DOUBLE PRECISION NOT NULL,
		prediction   TEXT NOT NULL,
		class_index  SMALLINT NOT NULL,
		inference_us BIGINT NOT NULL,
		signal       INTEGER
	)`

const insertReading = `
	INSERT INTO weather_readings (
		device_id, recorded_at,
		temperature, humidity, pressure, lux, gas_ppm,
		prediction, class_index, inference_us, signal
	) VALUES (
		:device_id, :recorded_at,
		:temperature, :humidity, :pressure, :lux, :gas_ppm,
		:prediction, :class_index, :inference_us, :signal
	)`

// Open connects to Postgres with a lib/pq connection string.
func Open(ctx context.Context, dsn string, opt ...ArchiveOption) (*Archive, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: connect: %w", err)
	}
	return New(db, opt...), nil
}

// New wraps an existing connection pool.
func New(db *sqlx.DB, opt ...ArchiveOption) *Archive {
	a := &Archive{db: db}
	for o := range options.Apply[ArchiveOption](opt) {
		o.archive(a)
	}
	return a
}

// WithLogger enables logging with the provided slog logger.
func WithLogger(logger *slog.Logger) ArchiveOption {
	return withLogger{logger}
}

// Name implements sink.Sink.
func (*Archive) Name() string {
	return Name
}

// EnsureSchema creates the table if it does not exist.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("archive: create schema: %w", err)
	}
	return nil
}

// Probe pings the database.
func (a *Archive) Probe(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return sink.NewConnectivityError(Name, "database unreachable", err)
	}
	return nil
}

// Write inserts one row. There is no protocol status, so it is always zero.
func (a *Archive) Write(ctx context.Context, r *sink.Reading) (int, error) {
	row := NewRow(r)
	res, err := a.db.NamedExecContext(ctx, insertReading, row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return 0, &sink.RejectionError{
				Body: string(pqErr.Code) + ": " + pqErr.Message,
			}
		}
		return 0, sink.NewTransportError("insert reading", err)
	}

	n, _ := res.RowsAffected()
	a.log.Log(ctx, slog.LevelDebug, "reading archived",
		slog.String("device_id", row.DeviceID),
		slog.Int64("rows", n),
	)
	return 0, nil
}

// NewRow flattens a reading into an archive row.
func NewRow(r *sink.Reading) Row {
	return Row{
		DeviceID:    r.Device.String(),
		RecordedAt:  r.Timestamp.UTC(),
		Temperature: r.Sample.Temperature,
		Humidity:    r.Sample.Humidity,
		Pressure:    r.Sample.Pressure,
		Lux:         r.Sample.Illuminance,
		GasPPM:      r.Sample.GasPPM,
		Prediction:  r.Prediction.Class.String(),
		ClassIndex:  int(r.Prediction.Class),
		InferenceUS: r.Prediction.Inference.Microseconds(),
		Signal:      r.Signal,
	}
}

func (o withLogger) archive(a *Archive) {
	a.log = log.Wrap(o.Logger)
}
