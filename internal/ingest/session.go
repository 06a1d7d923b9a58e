package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/balkashynov/sensorset/internal/dataset"
	"github.com/balkashynov/sensorset/internal/parser"
)

// SessionResult is one combined session
type SessionResult struct {
	Label  string
	Folder string
	Table  *dataset.Table
	// SensorFiles lists the sensor exports that were found, in merge order.
	SensorFiles  []string
	StartDate    string
	ExperimentID int
	OutputPath   string
}

// CombineSession merges the sensor exports of one session folder into a
// single table.
//
// Each present sensor file contributes its rows unchanged except for the
// "Time (s)" column, which is normalized to plain decimal seconds. Rows of
// different sensors are stacked, not joined: columns a sensor lacks are
// null in its rows. The table gains timestamp, transportation_mode,
// start_date and expirement_id columns.
//
// Missing sensor files are skipped with a warning. A folder without any
// sensor file fails with ErrNoSensorData; a folder without meta/time.csv
// fails with ErrMetadataMissing.
func CombineSession(ctx context.Context, label, folder string, opts Options) (*SessionResult, error) {
	ctx, span := tracer.Start(ctx, "ingest.CombineSession", trace.WithAttributes(
		attribute.String("sensorset.label", label),
		attribute.String("sensorset.folder", folder),
	))
	defer span.End()

	res, err := combineSession(ctx, label, folder, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("sensorset.rows", res.Table.Len()),
		attribute.Int("sensorset.sensor_files", len(res.SensorFiles)),
	)
	return res, nil
}

func combineSession(ctx context.Context, label, folder string, opts Options) (*SessionResult, error) {
	log := opts.Logger

	var (
		tables []*dataset.Table
		loaded []string
	)
	for _, name := range SensorFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := dataset.ReadFile(filepath.Join(folder, name), delimiter)
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("file %s not found in %s, skipping", name, folder)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if err := normalizeTime(t); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Join(folder, name), err)
		}
		log.Debug("loaded %s (%d rows)", name, t.Len())
		tables = append(tables, t)
		loaded = append(loaded, name)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("%s: %w", folder, ErrNoSensorData)
	}

	combined := dataset.Concat(tables...)
	if err := normalizeTime(combined); err != nil {
		return nil, fmt.Errorf("%s: %w", folder, err)
	}

	startDate, err := readStartDate(folder)
	if err != nil {
		return nil, err
	}
	start, err := parser.ParseStartDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Join(folder, MetadataFile), err)
	}
	if err := appendTimestamps(combined, start); err != nil {
		return nil, fmt.Errorf("%s: %w", folder, err)
	}

	id := opts.ids().IntN(MaxExperimentID)
	combined.AppendConstant(LabelColumn, dataset.String(label))
	combined.AppendConstant(StartDateColumn, dataset.String(startDate))
	combined.AppendConstant(ExperimentIDColumn, dataset.String(strconv.Itoa(id)))

	res := &SessionResult{
		Label:        label,
		Folder:       folder,
		Table:        combined,
		SensorFiles:  loaded,
		StartDate:    startDate,
		ExperimentID: id,
	}

	if opts.OutputDir != "" {
		path := SessionOutputPath(opts.OutputDir, label, startDate)
		if err := dataset.WriteFile(path, combined); err != nil {
			return nil, err
		}
		res.OutputPath = path
		log.Info("wrote %s (%d rows)", path, combined.Len())
	}
	return res, nil
}

// SessionOutputPath is where a single session table is saved:
// "<dir>/<label> <start date>.csv". Sessions sharing a label and start
// date overwrite each other.
func SessionOutputPath(dir, label, startDate string) string {
	return filepath.Join(dir, label+" "+startDate+".csv")
}

// normalizeTime rewrites the time column as plain decimal seconds. It is
// idempotent, so it is applied to each sensor table and again to the
// merged table.
func normalizeTime(t *dataset.Table) error {
	if !t.HasColumn(TimeColumn) {
		return fmt.Errorf("missing %q column", TimeColumn)
	}
	return t.UpdateColumn(TimeColumn, func(row int, c dataset.Cell) (dataset.Cell, error) {
		if !c.Valid || strings.TrimSpace(c.Value) == "" {
			return dataset.Null(), nil
		}
		v, err := parser.ParseSeconds(c.Value)
		if err != nil {
			return c, fmt.Errorf("row %d: %w", row+1, err)
		}
		return dataset.String(parser.FormatSeconds(v)), nil
	})
}

func appendTimestamps(t *dataset.Table, start time.Time) error {
	times, _ := t.Column(TimeColumn)
	t.AddColumn(TimestampColumn)
	return t.UpdateColumn(TimestampColumn, func(row int, _ dataset.Cell) (dataset.Cell, error) {
		c := times[row]
		if !c.Valid {
			return dataset.Null(), nil
		}
		seconds, err := parser.ParseSeconds(c.Value)
		if err != nil {
			return dataset.Null(), fmt.Errorf("row %d: %w", row+1, err)
		}
		d, err := parser.SecondsToDuration(seconds)
		if err != nil {
			return dataset.Null(), fmt.Errorf("row %d: %w", row+1, err)
		}
		return dataset.String(parser.FormatTimestamp(start.Add(d))), nil
	})
}

// readStartDate resolves START_DATE from the session metadata. The first
// data row of the START_DATE column wins; without that column (or value)
// the epoch default is used.
func readStartDate(folder string) (string, error) {
	path := filepath.Join(folder, MetadataFile)
	meta, err := dataset.ReadFile(path, delimiter)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %w", ErrMetadataMissing, err)
	}
	if err != nil {
		return "", fmt.Errorf("read metadata: %w", err)
	}

	c, ok := meta.Cell(0, StartDateKey)
	if !ok || !c.Valid || strings.TrimSpace(c.Value) == "" {
		return DefaultStartDate, nil
	}
	return strings.TrimSpace(c.Value), nil
}
