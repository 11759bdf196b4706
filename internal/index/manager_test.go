package index

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfenderov/oneweb-prep/pkg/models"
)

// fakeBackend is an in-memory index whose deletes become visible to searches
// only after the configured number of polls.
type fakeBackend struct {
	names   []string
	created []models.IndexSchema

	uploads   [][]models.SectionDocument
	rejectIDs map[string]bool
	uploadErr error

	docs     []models.SectionDocument
	searches []models.SearchRequest
	deletes  [][]string
}

func (f *fakeBackend) ListIndexNames(_ context.Context) ([]string, error) {
	return f.names, nil
}

func (f *fakeBackend) CreateIndex(_ context.Context, schema models.IndexSchema) error {
	f.created = append(f.created, schema)
	f.names = append(f.names, schema.Name)
	return nil
}

func (f *fakeBackend) UploadDocuments(_ context.Context, docs []models.SectionDocument) ([]models.IndexingResult, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads = append(f.uploads, slices.Clone(docs))
	results := make([]models.IndexingResult, len(docs))
	for i, d := range docs {
		results[i] = models.IndexingResult{Key: d.ID, Succeeded: !f.rejectIDs[d.ID], StatusCode: 201}
	}
	return results, nil
}

func (f *fakeBackend) Search(_ context.Context, req models.SearchRequest) (*models.SearchResults, error) {
	f.searches = append(f.searches, req)
	var matches []models.SectionDocument
	for _, d := range f.docs {
		if req.Filter == nil || (req.Filter.Field == "sourcefile" && d.SourceFile == req.Filter.Value) {
			matches = append(matches, d)
		}
	}
	page := matches
	if req.Top > 0 && len(page) > req.Top {
		page = page[:req.Top]
	}
	return &models.SearchResults{Documents: page, Count: int64(len(matches))}, nil
}

func (f *fakeBackend) DeleteDocuments(_ context.Context, ids []string) ([]models.IndexingResult, error) {
	f.deletes = append(f.deletes, ids)
	results := make([]models.IndexingResult, len(ids))
	for i, id := range ids {
		f.docs = slices.DeleteFunc(f.docs, func(d models.SectionDocument) bool { return d.ID == id })
		results[i] = models.IndexingResult{Key: id, Succeeded: true, StatusCode: 200}
	}
	return results, nil
}

func sections(n int) []models.SectionDocument {
	docs := make([]models.SectionDocument, n)
	for i := range docs {
		docs[i] = models.SectionDocument{ID: fmt.Sprintf("=%d", i), SourceFile: "export.json"}
	}
	return docs
}

func newTestManager(backend Backend) (*Manager, *[]time.Duration) {
	m := New(backend, Config{Index: "sections", BatchSize: DefaultBatchSize, DeleteDelay: DefaultDeleteDelay})
	var waits []time.Duration
	m.wait = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return m, &waits
}

func TestNew_Defaults(t *testing.T) {
	m := New(&fakeBackend{}, Config{Index: "sections"})
	assert.Equal(t, DefaultBatchSize, m.batchSize)
}

func TestEnsureIndex(t *testing.T) {
	t.Run("creates missing index", func(t *testing.T) {
		backend := &fakeBackend{names: []string{"other"}}
		m, _ := newTestManager(backend)

		require.NoError(t, m.EnsureIndex(context.Background()))
		require.Len(t, backend.created, 1)
		assert.Equal(t, models.DefaultSchema("sections"), backend.created[0])
	})

	t.Run("idempotent", func(t *testing.T) {
		backend := &fakeBackend{}
		m, _ := newTestManager(backend)

		require.NoError(t, m.EnsureIndex(context.Background()))
		require.NoError(t, m.EnsureIndex(context.Background()))
		assert.Len(t, backend.created, 1)
	})

	t.Run("existing index untouched", func(t *testing.T) {
		backend := &fakeBackend{names: []string{"sections"}}
		m, _ := newTestManager(backend)

		require.NoError(t, m.EnsureIndex(context.Background()))
		assert.Empty(t, backend.created)
	})
}

func TestIndexBatch_BatchSizes(t *testing.T) {
	tests := []struct {
		total     int
		wantSizes []int
	}{
		{0, nil},
		{1, []int{1}},
		{999, []int{999}},
		{1000, []int{1000}},
		{1001, []int{1000, 1}},
		{2500, []int{1000, 1000, 500}},
		{3000, []int{1000, 1000, 1000}},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d sections", tc.total), func(t *testing.T) {
			backend := &fakeBackend{}
			m, _ := newTestManager(backend)

			stats, err := m.IndexBatch(context.Background(), slices.Values(sections(tc.total)))
			require.NoError(t, err)

			var sizes []int
			for _, u := range backend.uploads {
				sizes = append(sizes, len(u))
			}
			assert.Equal(t, tc.wantSizes, sizes)
			assert.Equal(t, len(tc.wantSizes), stats.Batches)
			assert.Equal(t, tc.total, stats.Sections)
			assert.Equal(t, tc.total, stats.Succeeded)
		})
	}
}

func TestIndexBatch_KeepsOrderAcrossBatches(t *testing.T) {
	backend := &fakeBackend{}
	m, _ := newTestManager(backend)

	_, err := m.IndexBatch(context.Background(), slices.Values(sections(1500)))
	require.NoError(t, err)

	require.Len(t, backend.uploads, 2)
	assert.Equal(t, "=0", backend.uploads[0][0].ID)
	assert.Equal(t, "=999", backend.uploads[0][999].ID)
	assert.Equal(t, "=1000", backend.uploads[1][0].ID)
}

func TestIndexBatch_PartialFailureContinues(t *testing.T) {
	backend := &fakeBackend{rejectIDs: map[string]bool{"=3": true, "=1500": true}}
	m, _ := newTestManager(backend)

	stats, err := m.IndexBatch(context.Background(), slices.Values(sections(2000)))
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Batches)
	assert.Equal(t, 2000, stats.Sections)
	assert.Equal(t, 1998, stats.Succeeded)
}

func TestIndexBatch_UploadErrorAborts(t *testing.T) {
	backend := &fakeBackend{uploadErr: errors.New("connection refused")}
	m, _ := newTestManager(backend)

	_, err := m.IndexBatch(context.Background(), slices.Values(sections(10)))
	assert.ErrorContains(t, err, "connection refused")
}

func TestRemoveByFilter_Rounds(t *testing.T) {
	tests := []struct {
		total      int
		wantRounds int
	}{
		{0, 0},
		{1, 1},
		{1000, 1},
		{1001, 2},
		{2500, 3},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d matches", tc.total), func(t *testing.T) {
			backend := &fakeBackend{docs: sections(tc.total)}
			m, waits := newTestManager(backend)

			removed, err := m.RemoveByFilter(context.Background(), "")
			require.NoError(t, err)

			assert.Equal(t, tc.total, removed)
			assert.Len(t, backend.deletes, tc.wantRounds)
			assert.Len(t, backend.searches, tc.wantRounds+1)
			assert.Len(t, *waits, tc.wantRounds)
			for _, d := range *waits {
				assert.Equal(t, 2*time.Second, d)
			}
			assert.Empty(t, backend.docs)
		})
	}
}

func TestRemoveByFilter_FiltersByBaseName(t *testing.T) {
	docs := sections(3)
	docs = append(docs, models.SectionDocument{ID: "=keep", SourceFile: "other.json"})
	backend := &fakeBackend{docs: docs}
	m, _ := newTestManager(backend)

	removed, err := m.RemoveByFilter(context.Background(), "data/exports/export.json")
	require.NoError(t, err)

	assert.Equal(t, 3, removed)
	require.NotEmpty(t, backend.searches)
	req := backend.searches[0]
	require.NotNil(t, req.Filter)
	assert.Equal(t, "sourcefile", req.Filter.Field)
	assert.Equal(t, "export.json", req.Filter.Value)
	assert.Equal(t, 1000, req.Top)
	assert.True(t, req.IncludeTotalCount)
	require.Len(t, backend.docs, 1)
	assert.Equal(t, "=keep", backend.docs[0].ID)
}

func TestRemoveByFilter_WaitCancelled(t *testing.T) {
	backend := &fakeBackend{docs: sections(5)}
	m := New(backend, Config{Index: "sections", DeleteDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.RemoveByFilter(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}
