// Package index keeps the sections index in shape: it creates the schema,
// uploads sections in fixed-size batches and removes sections by source file.
package index

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/mfenderov/oneweb-prep/pkg/models"
)

const (
	// DefaultBatchSize is the number of sections per upload request.
	DefaultBatchSize = 1000
	// DefaultDeleteDelay is the pause between delete rounds while the index
	// catches up with the previous deletes.
	DefaultDeleteDelay = 2 * time.Second

	removePageSize = 1000
)

// Backend is the search service holding the sections index.
type Backend interface {
	ListIndexNames(ctx context.Context) ([]string, error)
	CreateIndex(ctx context.Context, schema models.IndexSchema) error
	UploadDocuments(ctx context.Context, docs []models.SectionDocument) ([]models.IndexingResult, error)
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResults, error)
	DeleteDocuments(ctx context.Context, ids []string) ([]models.IndexingResult, error)
}

// Config holds index manager configuration.
type Config struct {
	Index       string
	BatchSize   int
	DeleteDelay time.Duration
}

// Stats summarizes one IndexBatch call.
type Stats struct {
	Batches   int
	Sections  int
	Succeeded int
}

// Manager owns the sections index.
type Manager struct {
	backend     Backend
	index       string
	batchSize   int
	deleteDelay time.Duration
	wait        func(ctx context.Context, d time.Duration) error
}

// New creates a new index manager.
func New(backend Backend, config Config) *Manager {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if config.DeleteDelay < 0 {
		config.DeleteDelay = 0
	}
	return &Manager{
		backend:     backend,
		index:       config.Index,
		batchSize:   config.BatchSize,
		deleteDelay: config.DeleteDelay,
		wait:        sleep,
	}
}

// EnsureIndex creates the index with the section schema unless it already exists.
// An existing index is never altered.
func (m *Manager) EnsureIndex(ctx context.Context) error {
	slog.Debug("ensuring search index exists", "index", m.index)

	names, err := m.backend.ListIndexNames(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(names, m.index) {
		slog.Debug("search index already exists", "index", m.index)
		return nil
	}

	slog.Info("creating search index", "index", m.index)
	if err := m.backend.CreateIndex(ctx, models.DefaultSchema(m.index)); err != nil {
		return err
	}
	return nil
}

// IndexBatch uploads sections in batches of the configured size plus one final
// partial batch. Rejected sections are logged and not retried.
func (m *Manager) IndexBatch(ctx context.Context, sections iter.Seq[models.SectionDocument]) (Stats, error) {
	slog.Debug("indexing sections", "index", m.index)

	var stats Stats
	batch := make([]models.SectionDocument, 0, m.batchSize)

	flush := func() error {
		results, err := m.backend.UploadDocuments(ctx, batch)
		if err != nil {
			return fmt.Errorf("failed to upload batch %d: %w", stats.Batches+1, err)
		}
		succeeded := 0
		for _, r := range results {
			if r.Succeeded {
				succeeded++
				continue
			}
			slog.Warn("section rejected", "id", r.Key, "status", r.StatusCode, "error", r.ErrorMessage)
		}
		stats.Batches++
		stats.Sections += len(results)
		stats.Succeeded += succeeded
		slog.Info("indexed sections", "sections", len(results), "succeeded", succeeded)
		batch = make([]models.SectionDocument, 0, m.batchSize)
		return nil
	}

	for section := range sections {
		slog.Debug("queued section", "id", section.ID, "name", section.Name)
		batch = append(batch, section)
		if len(batch) == m.batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}

	if len(batch) > 0 {
		if err := flush(); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// RemoveByFilter deletes the sections whose sourcefile equals the base name of
// filename, or every section when filename is empty. Deleted sections may keep
// showing up in searches for a while, so it pauses between rounds and stops
// only once a search finds nothing. It returns the number of sections removed.
func (m *Manager) RemoveByFilter(ctx context.Context, filename string) (int, error) {
	req := models.SearchRequest{Top: removePageSize, IncludeTotalCount: true}
	target := "<all>"
	if filename != "" {
		target = filename
		req.Filter = &models.TermFilter{Field: "sourcefile", Value: filepath.Base(filename)}
	}
	slog.Debug("removing sections", "file", target, "index", m.index)

	removed := 0
	for {
		sr, err := m.backend.Search(ctx, req)
		if err != nil {
			return removed, err
		}
		if sr.Count == 0 || len(sr.Documents) == 0 {
			return removed, nil
		}

		ids := make([]string, len(sr.Documents))
		for i, doc := range sr.Documents {
			ids[i] = doc.ID
		}

		results, err := m.backend.DeleteDocuments(ctx, ids)
		if err != nil {
			return removed, err
		}
		removed += len(results)
		slog.Info("removed sections from index", "sections", len(results))

		if err := m.wait(ctx, m.deleteDelay); err != nil {
			return removed, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
