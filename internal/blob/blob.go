// Package blob uploads source files to the blob container and removes them again.
// PDFs are stored one blob per page; every other file is stored whole.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Store is the blob container the uploader and remover work against.
type Store interface {
	ContainerExists(ctx context.Context) (bool, error)
	EnsureContainer(ctx context.Context) error
	UploadBlob(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	ListBlobNames(ctx context.Context, prefix string) ([]string, error)
	DeleteBlob(ctx context.Context, name string) error
}

// PageSplitter splits a PDF into single-page PDF documents, in page order.
type PageSplitter func(rs io.ReadSeeker) ([][]byte, error)

// IsPDF reports whether path has a .pdf extension, ignoring case.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// BlobName returns the blob name for a page of path. Non-PDF files ignore page.
func BlobName(path string, page int) string {
	base := filepath.Base(path)
	if !IsPDF(path) {
		return base
	}
	return fmt.Sprintf("%s-%d.pdf", strings.TrimSuffix(base, filepath.Ext(base)), page)
}

// Uploader writes source files to the blob container.
type Uploader struct {
	store Store
	split PageSplitter
}

// NewUploader creates an uploader that splits PDFs with SplitPDF.
func NewUploader(store Store) *Uploader {
	return &Uploader{store: store, split: SplitPDF}
}

// Upload stores path in the container and returns the blob names written.
func (u *Uploader) Upload(ctx context.Context, path string) ([]string, error) {
	if err := u.store.EnsureContainer(ctx); err != nil {
		return nil, err
	}

	if IsPDF(path) {
		return u.uploadPages(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	name := BlobName(path, 0)
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	slog.Debug("uploading blob", "file", path, "blob", name)
	if err := u.store.UploadBlob(ctx, name, f, info.Size(), contentType); err != nil {
		return nil, err
	}
	return []string{name}, nil
}

func (u *Uploader) uploadPages(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	pages, err := u.split(f)
	if err != nil {
		return nil, fmt.Errorf("failed to split %s: %w", path, err)
	}

	names := make([]string, 0, len(pages))
	for i, page := range pages {
		name := BlobName(path, i)
		slog.Debug("uploading blob for page", "page", i, "blob", name)
		if err := u.store.UploadBlob(ctx, name, bytes.NewReader(page), int64(len(page)), "application/pdf"); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Remover deletes blobs from the container.
type Remover struct {
	store Store
}

// NewRemover creates a blob remover.
func NewRemover(store Store) *Remover {
	return &Remover{store: store}
}

// Remove deletes the page blobs of filename, or every blob when filename is
// empty. It returns the names deleted. A missing container is not an error.
func (r *Remover) Remove(ctx context.Context, filename string) ([]string, error) {
	target := filename
	if target == "" {
		target = "<all>"
	}
	slog.Debug("removing blobs", "file", target)

	exists, err := r.store.ContainerExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	var (
		prefix  string
		pattern *regexp.Regexp
	)
	if filename != "" {
		base := filepath.Base(filename)
		prefix = strings.TrimSuffix(base, filepath.Ext(base))
		pattern = regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-\d+\.pdf$`)
	}

	names, err := r.store.ListBlobNames(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, name := range names {
		if pattern != nil && !pattern.MatchString(name) {
			continue
		}
		slog.Debug("removing blob", "blob", name)
		if err := r.store.DeleteBlob(ctx, name); err != nil {
			return removed, err
		}
		removed = append(removed, name)
	}
	return removed, nil
}
