package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/balkashynov/sensorset/internal/dataset"
)

// ClassResult is the aggregate of every session of one class
type ClassResult struct {
	Label      string
	Folder     string
	Table      *dataset.Table
	Sessions   []*SessionResult
	OutputPath string
}

// AggregateClass combines every immediate subfolder of classFolder as a
// session of label and stacks the results in folder-name order.
//
// A class folder without subfolders yields a nil result and no error. Any
// session failure aborts the whole class and nothing is written.
// opts.OutputDir receives "<label>.csv"; per-session files are never
// written here.
func AggregateClass(ctx context.Context, label, classFolder string, opts Options) (*ClassResult, error) {
	ctx, span := tracer.Start(ctx, "ingest.AggregateClass", trace.WithAttributes(
		attribute.String("sensorset.label", label),
		attribute.String("sensorset.folder", classFolder),
		attribute.Int("sensorset.workers", opts.workers()),
	))
	defer span.End()

	res, err := aggregateClass(ctx, label, classFolder, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if res != nil {
		span.SetAttributes(
			attribute.Int("sensorset.sessions", len(res.Sessions)),
			attribute.Int("sensorset.rows", res.Table.Len()),
		)
	}
	return res, nil
}

func aggregateClass(ctx context.Context, label, classFolder string, opts Options) (*ClassResult, error) {
	log := opts.Logger

	sessions, err := ListSessionDirs(classFolder)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		log.Info("no session folders in %s, nothing to aggregate for %s", classFolder, label)
		return nil, nil
	}

	// Ids are drawn up front in folder order so a seeded source gives the
	// same ids whatever the worker count.
	ids := make([]fixedID, len(sessions))
	for i := range ids {
		ids[i] = fixedID(opts.ids().IntN(MaxExperimentID))
	}

	results := make([]*SessionResult, len(sessions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i, name := range sessions {
		g.Go(func() error {
			sessionOpts := opts
			sessionOpts.OutputDir = ""
			sessionOpts.IDs = ids[i]

			log.Info("combining %s session %s", label, name)
			res, err := CombineSession(gctx, label, filepath.Join(classFolder, name), sessionOpts)
			if err != nil {
				return fmt.Errorf("session %s: %w", name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tables := make([]*dataset.Table, len(results))
	for i, r := range results {
		tables[i] = r.Table
	}

	out := &ClassResult{
		Label:    label,
		Folder:   classFolder,
		Table:    dataset.Concat(tables...),
		Sessions: results,
	}

	if opts.OutputDir != "" {
		path := ClassOutputPath(opts.OutputDir, label)
		if err := dataset.WriteFile(path, out.Table); err != nil {
			return nil, err
		}
		out.OutputPath = path
		log.Info("wrote %s (%d rows from %d sessions)", path, out.Table.Len(), len(results))
	}
	return out, nil
}

// ClassOutputPath is where a class table is saved: "<dir>/<label>.csv"
func ClassOutputPath(dir, label string) string {
	return filepath.Join(dir, label+".csv")
}

// ListSessionDirs returns the names of the immediate subdirectories of
// root, sorted. Symlinks to directories count as subdirectories.
func ListSessionDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, entry := range entries {
		if entry.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(filepath.Join(root, entry.Name()))
			if err == nil && info.IsDir() {
				dirs = append(dirs, entry.Name())
			}
			continue
		}
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
