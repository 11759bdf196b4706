package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory blob container.
type memoryStore struct {
	exists    bool
	ensured   int
	blobs     map[string][]byte
	uploadErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{blobs: map[string][]byte{}}
}

func (m *memoryStore) ContainerExists(_ context.Context) (bool, error) {
	return m.exists, nil
}

func (m *memoryStore) EnsureContainer(_ context.Context) error {
	m.ensured++
	m.exists = true
	return nil
}

func (m *memoryStore) UploadBlob(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.blobs[name] = data
	return nil
}

func (m *memoryStore) ListBlobNames(_ context.Context, prefix string) ([]string, error) {
	var names []string
	for name := range m.blobs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *memoryStore) DeleteBlob(_ context.Context, name string) error {
	delete(m.blobs, name)
	return nil
}

func fakeSplitter(n int) PageSplitter {
	return func(_ io.ReadSeeker) ([][]byte, error) {
		pages := make([][]byte, n)
		for i := range pages {
			pages[i] = []byte(fmt.Sprintf("page %d", i))
		}
		return pages, nil
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBlobName(t *testing.T) {
	tests := []struct {
		path string
		page int
		want string
	}{
		{"data/report.pdf", 0, "report-0.pdf"},
		{"data/report.PDF", 3, "report-3.pdf"},
		{"/abs/path/results.json", 0, "results.json"},
		{"results.json", 7, "results.json"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, BlobName(tc.path, tc.page))
		})
	}
}

func TestUploader_PDFOneBlobPerPage(t *testing.T) {
	store := newMemoryStore()
	u := &Uploader{store: store, split: fakeSplitter(3)}
	path := writeFile(t, "manual.pdf", "%PDF")

	names, err := u.Upload(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"manual-0.pdf", "manual-1.pdf", "manual-2.pdf"}, names)
	assert.Len(t, store.blobs, 3)
	assert.Equal(t, "page 1", string(store.blobs["manual-1.pdf"]))
	assert.Equal(t, 1, store.ensured)
}

func TestUploader_NonPDFSingleBlob(t *testing.T) {
	store := newMemoryStore()
	u := &Uploader{store: store, split: fakeSplitter(99)}
	path := writeFile(t, "results.json", `{"Results":[]}`)

	names, err := u.Upload(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"results.json"}, names)
	assert.Equal(t, `{"Results":[]}`, string(store.blobs["results.json"]))
}

func TestUploader_Overwrites(t *testing.T) {
	store := newMemoryStore()
	store.blobs["results.json"] = []byte("old")
	u := NewUploader(store)
	path := writeFile(t, "results.json", "new")

	_, err := u.Upload(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(store.blobs["results.json"]))
}

func TestUploader_PropagatesErrors(t *testing.T) {
	t.Run("upload failure", func(t *testing.T) {
		store := newMemoryStore()
		store.uploadErr = errors.New("boom")
		u := &Uploader{store: store, split: fakeSplitter(2)}

		_, err := u.Upload(context.Background(), writeFile(t, "a.pdf", "%PDF"))
		assert.ErrorContains(t, err, "boom")
	})

	t.Run("split failure", func(t *testing.T) {
		u := &Uploader{store: newMemoryStore(), split: func(io.ReadSeeker) ([][]byte, error) {
			return nil, errors.New("corrupt")
		}}

		_, err := u.Upload(context.Background(), writeFile(t, "a.pdf", "%PDF"))
		assert.ErrorContains(t, err, "corrupt")
	})

	t.Run("missing file", func(t *testing.T) {
		u := NewUploader(newMemoryStore())
		_, err := u.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})
}

func TestSplitPDF_InvalidInput(t *testing.T) {
	_, err := SplitPDF(strings.NewReader("this is not a pdf"))
	assert.Error(t, err)
}

func TestRemover_ByFilename(t *testing.T) {
	store := newMemoryStore()
	store.exists = true
	for _, name := range []string{"manual-0.pdf", "manual-1.pdf", "manual-12.pdf", "manual-extra.pdf", "manual.json", "other-0.pdf"} {
		store.blobs[name] = nil
	}

	removed, err := NewRemover(store).Remove(context.Background(), "data/manual.pdf")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"manual-0.pdf", "manual-1.pdf", "manual-12.pdf"}, removed)
	assert.Contains(t, store.blobs, "manual-extra.pdf")
	assert.Contains(t, store.blobs, "manual.json")
	assert.Contains(t, store.blobs, "other-0.pdf")
}

func TestRemover_All(t *testing.T) {
	store := newMemoryStore()
	store.exists = true
	store.blobs["a-0.pdf"] = nil
	store.blobs["results.json"] = nil

	removed, err := NewRemover(store).Remove(context.Background(), "")
	require.NoError(t, err)

	assert.Len(t, removed, 2)
	assert.Empty(t, store.blobs)
}

func TestRemover_MissingContainer(t *testing.T) {
	store := newMemoryStore()
	store.blobs["a-0.pdf"] = nil

	removed, err := NewRemover(store).Remove(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Len(t, store.blobs, 1)
}
