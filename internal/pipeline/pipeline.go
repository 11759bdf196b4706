package pipeline

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mfenderov/oneweb-prep/internal/index"
	"github.com/mfenderov/oneweb-prep/internal/sections"
	"github.com/mfenderov/oneweb-prep/pkg/models"
)

// Mode selects what a run does with the matched files.
type Mode int

const (
	// ModeIngest uploads, extracts and indexes every matched file.
	ModeIngest Mode = iota
	// ModeRemove deletes the blobs and sections of every matched file.
	ModeRemove
	// ModeRemoveAll deletes every blob and every section.
	ModeRemoveAll
)

func (m Mode) String() string {
	switch m {
	case ModeRemove:
		return "remove"
	case ModeRemoveAll:
		return "remove-all"
	default:
		return "ingest"
	}
}

// ModeFor maps the command line switches to a mode. removeAll wins over remove.
func ModeFor(remove, removeAll bool) Mode {
	switch {
	case removeAll:
		return ModeRemoveAll
	case remove:
		return ModeRemove
	default:
		return ModeIngest
	}
}

// BlobUploader stores a source file in the blob container.
type BlobUploader interface {
	Upload(ctx context.Context, path string) ([]string, error)
}

// BlobRemover deletes the blobs of a source file, or all blobs for "".
type BlobRemover interface {
	Remove(ctx context.Context, filename string) ([]string, error)
}

// Indexer maintains the sections index.
type Indexer interface {
	EnsureIndex(ctx context.Context) error
	IndexBatch(ctx context.Context, sections iter.Seq[models.SectionDocument]) (index.Stats, error)
	RemoveByFilter(ctx context.Context, filename string) (int, error)
}

// ExtractFunc reads the result records of one export file.
type ExtractFunc func(path string) ([]models.ResultRecord, error)

// Config holds pipeline configuration.
type Config struct {
	Mode      Mode
	Category  string
	SkipBlobs bool
}

// Result holds pipeline execution results.
type Result struct {
	Mode      Mode
	Files     int
	Blobs     int
	Sections  int
	Succeeded int
	Removed   int
	Duration  time.Duration
}

// Pipeline runs one mode over the files matched by a glob pattern.
type Pipeline struct {
	config   Config
	indexer  Indexer
	uploader BlobUploader
	remover  BlobRemover
	extract  ExtractFunc
}

// New creates a new Pipeline. uploader and remover may be nil when blobs are skipped.
func New(config Config, indexer Indexer, uploader BlobUploader, remover BlobRemover, extract ExtractFunc) *Pipeline {
	return &Pipeline{
		config:   config,
		indexer:  indexer,
		uploader: uploader,
		remover:  remover,
		extract:  extract,
	}
}

// Enumerate expands a glob pattern into the matching file paths.
func Enumerate(pattern string) ([]string, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}
	return files, nil
}

// Run executes the configured mode. Files are processed one at a time and
// the first failure stops the run.
func (p *Pipeline) Run(ctx context.Context, pattern string) (*Result, error) {
	start := time.Now()
	result := &Result{Mode: p.config.Mode}

	var err error
	switch p.config.Mode {
	case ModeRemoveAll:
		err = p.removeAll(ctx, result)
	case ModeRemove:
		err = p.forEachFile(ctx, pattern, result, p.removeFile)
	default:
		if err = p.indexer.EnsureIndex(ctx); err == nil {
			err = p.forEachFile(ctx, pattern, result, p.ingestFile)
		}
	}

	result.Duration = time.Since(start)
	slog.Info("run complete",
		"mode", result.Mode,
		"files", result.Files,
		"sections", result.Sections,
		"removed", result.Removed,
		"duration", result.Duration)
	return result, err
}

func (p *Pipeline) forEachFile(ctx context.Context, pattern string, result *Result, fn func(context.Context, string, *Result) error) error {
	files, err := Enumerate(pattern)
	if err != nil {
		return err
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		slog.Debug("processing file", "file", path)
		if err := fn(ctx, path, result); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		result.Files++
	}
	return nil
}

func (p *Pipeline) removeAll(ctx context.Context, result *Result) error {
	if err := p.removeBlobs(ctx, "", result); err != nil {
		return err
	}
	removed, err := p.indexer.RemoveByFilter(ctx, "")
	result.Removed += removed
	return err
}

func (p *Pipeline) removeFile(ctx context.Context, path string, result *Result) error {
	if err := p.removeBlobs(ctx, path, result); err != nil {
		return err
	}
	removed, err := p.indexer.RemoveByFilter(ctx, path)
	result.Removed += removed
	return err
}

func (p *Pipeline) removeBlobs(ctx context.Context, filename string, result *Result) error {
	if p.config.SkipBlobs || p.remover == nil {
		return nil
	}
	names, err := p.remover.Remove(ctx, filename)
	result.Blobs += len(names)
	return err
}

func (p *Pipeline) ingestFile(ctx context.Context, path string, result *Result) error {
	if !p.config.SkipBlobs && p.uploader != nil {
		names, err := p.uploader.Upload(ctx, path)
		result.Blobs += len(names)
		if err != nil {
			return err
		}
	}

	records, err := p.extract(path)
	if err != nil {
		return err
	}

	stats, err := p.indexer.IndexBatch(ctx, sections.Build(records, p.config.Category))
	result.Sections += stats.Sections
	result.Succeeded += stats.Succeeded
	return err
}
