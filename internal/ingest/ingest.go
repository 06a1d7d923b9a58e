// Package ingest turns phyphox-style sensor exports into labeled datasets.
//
// A session folder holds one semicolon-separated CSV per sensor plus
// meta/time.csv. CombineSession merges one folder into a single table;
// AggregateClass merges every session folder below a class folder.
package ingest

import (
	"errors"
	"math/rand/v2"
	"path/filepath"

	"go.opentelemetry.io/otel"

	"github.com/balkashynov/sensorset/internal/logging"
)

// SensorFiles are the per-sensor exports looked up in every session
// folder, in merge order.
var SensorFiles = []string{
	"Accelerometer.csv",
	"Gyroscope.csv",
	"Light.csv",
	"Linear Acceleration.csv",
	"Location.csv",
	"Magnetometer.csv",
	"Pressure.csv",
	"Proximity.csv",
	"Temperature.csv",
}

// MetadataFile is the session metadata path relative to a session folder
var MetadataFile = filepath.Join("meta", "time.csv")

// Column names.
const (
	TimeColumn         = "Time (s)"
	TimestampColumn    = "timestamp"
	LabelColumn        = "transportation_mode"
	StartDateColumn    = "start_date"
	ExperimentIDColumn = "expirement_id"

	// StartDateKey is the metadata column holding the session start
	StartDateKey = "START_DATE"
)

// DefaultStartDate is used when the metadata has no START_DATE
const DefaultStartDate = "1970-01-01 00:00:00"

// MaxExperimentID bounds experiment ids to [0, MaxExperimentID)
const MaxExperimentID = 1_000_000

const delimiter = ';'

var (
	// ErrMetadataMissing means a session folder has no meta/time.csv
	ErrMetadataMissing = errors.New("required file missing")
	// ErrNoSensorData means none of the sensor files exist in a session folder
	ErrNoSensorData = errors.New("no sensor data")
)

var tracer = otel.Tracer("github.com/balkashynov/sensorset/internal/ingest")

// IDSource draws experiment ids. *rand.Rand from math/rand/v2 satisfies it.
type IDSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// fixedID hands out a pre-drawn id
type fixedID int

func (f fixedID) IntN(int) int { return int(f) }

// Options tune CombineSession and AggregateClass.
type Options struct {
	// OutputDir, when set, receives the resulting CSV.
	OutputDir string
	// IDs draws experiment ids. Defaults to the process-wide generator.
	IDs IDSource
	// Logger receives progress notices. Nil discards them.
	Logger *logging.Logger
	// Workers bounds how many sessions AggregateClass combines at once.
	Workers int
}

func (o Options) ids() IDSource {
	if o.IDs == nil {
		return globalSource{}
	}
	return o.IDs
}

func (o Options) workers() int {
	if o.Workers < 1 {
		return 1
	}
	return o.Workers
}
