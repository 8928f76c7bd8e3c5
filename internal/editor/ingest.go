package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"icut-go/internal/cache"
	"icut-go/internal/timeline"
)

// PathError is the failure of one path in an ingestion batch.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e *PathError) Unwrap() error { return e.Err }

// BatchResult is the outcome of one ingestion batch. Assets holds the
// successfully created assets and Failures the failed paths, both in input
// order with folders expanded in place.
type BatchResult struct {
	ID         string
	Assets     []timeline.Asset
	Failures   []PathError
	StartedAt  time.Time
	FinishedAt time.Time
}

// Errors maps each failed path to its error.
func (r *BatchResult) Errors() map[string]error {
	errs := make(map[string]error, len(r.Failures))
	for _, f := range r.Failures {
		errs[f.Path] = f.Err
	}
	return errs
}

// Err joins all per-path failures, or returns nil if every path succeeded.
func (r *BatchResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i := range r.Failures {
		errs[i] = &r.Failures[i]
	}
	return errors.Join(errs...)
}

// IngestPaths imports dropped paths into the project. Directories expand to
// their files before the batch starts. Files are then probed and added one at
// a time in input order; a failing path is recorded and the batch moves on.
// The project's asset list is invalidated once every path has been attempted.
func (e *Editor) IngestPaths(ctx context.Context, paths []string) *BatchResult {
	e.mu.Lock()
	e.batches++
	e.mu.Unlock()

	result := &BatchResult{ID: e.idgen.New(), StartedAt: e.clock.Now()}
	e.logger.Debug("ingestion batch started", "batch", result.ID, "project", e.projectID, "paths", len(paths))

	for _, item := range e.expand(paths, result.ID) {
		if item.err != nil {
			result.Failures = append(result.Failures, PathError{Path: item.path, Err: item.err})
			continue
		}
		path := item.path
		asset, err := e.ingestOne(ctx, path)
		if err != nil {
			result.Failures = append(result.Failures, PathError{Path: path, Err: err})
			e.logger.Warn("asset import failed", "batch", result.ID, "path", path, "error", err)
			continue
		}
		result.Assets = append(result.Assets, *asset)
		e.logger.Info("asset imported", "batch", result.ID, "asset", asset.ID, "path", asset.FilePath, "kind", string(asset.Kind))
	}

	e.cache.Invalidate(cache.ResourceAssets, e.scope())
	result.FinishedAt = e.clock.Now()

	e.mu.Lock()
	e.batches--
	if err := result.Err(); err != nil {
		e.lastErr = err
	}
	e.mu.Unlock()

	e.logger.Info("ingestion batch finished",
		"batch", result.ID, "project", e.projectID,
		"imported", len(result.Assets), "failed", len(result.Failures),
		"elapsed", result.FinishedAt.Sub(result.StartedAt))
	return result
}

// batchItem is one file of a batch, or the failure that stands in for a
// dropped path that could not be resolved or expanded.
type batchItem struct {
	path string
	err  error
}

// expand resolves raw paths and replaces directories with their files,
// keeping the input order. Paths that cannot be resolved keep their place
// as failed items.
func (e *Editor) expand(paths []string, batchID string) []batchItem {
	var items []batchItem
	for _, raw := range paths {
		p, err := e.fsmgr.Resolve(raw)
		if err != nil {
			items = append(items, batchItem{path: raw, err: timeline.Wrap(timeline.ErrIO, "resolve", err)})
			e.logger.Warn("dropped path unreadable", "batch", batchID, "path", raw, "error", err)
			continue
		}
		if !p.IsDir() {
			items = append(items, batchItem{path: p.String()})
			continue
		}

		found, err := e.fsmgr.FindFiles(p, true)
		if err != nil {
			items = append(items, batchItem{path: raw, err: timeline.Wrap(timeline.ErrIO, "expand folder", err)})
			e.logger.Warn("dropped folder unreadable", "batch", batchID, "path", raw, "error", err)
			continue
		}
		e.logger.Debug("folder expanded", "batch", batchID, "path", p.String(), "files", len(found))
		for _, f := range found {
			items = append(items, batchItem{path: f.String()})
		}
	}
	return items
}

func (e *Editor) ingestOne(ctx context.Context, path string) (*timeline.Asset, error) {
	info, err := e.prober.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("probing: %w", err)
	}

	asset, err := e.gateway.AddAsset(ctx, timeline.NewAsset{
		ProjectID:     e.projectID,
		FilePath:      path,
		Kind:          info.Kind,
		DurationMs:    info.DurationMs,
		Width:         info.Width,
		Height:        info.Height,
		FileSizeBytes: info.SizeBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("adding asset: %w", err)
	}
	return asset, nil
}
