package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mfenderov/oneweb-prep/pkg/models"
)

// bulkResponse represents the ES bulk response structure.
type bulkResponse struct {
	Errors bool                  `json:"errors"`
	Items  []map[string]bulkItem `json:"items"`
}

type bulkItem struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Result string `json:"result"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

// UploadDocuments indexes docs in one bulk request, replacing documents with
// the same ID. It returns one result per document in request order.
func (c *Client) UploadDocuments(ctx context.Context, docs []models.SectionDocument) ([]models.IndexingResult, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, doc := range docs {
		if err := enc.Encode(map[string]any{"index": map[string]string{"_id": doc.ID}}); err != nil {
			return nil, fmt.Errorf("failed to encode action: %w", err)
		}
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to marshal document: %w", err)
		}
	}

	return c.bulk(ctx, &body)
}

// DeleteDocuments removes the documents with the given IDs in one bulk request.
// Deleting an ID that no longer exists counts as success.
func (c *Client) DeleteDocuments(ctx context.Context, ids []string) ([]models.IndexingResult, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, id := range ids {
		if err := enc.Encode(map[string]any{"delete": map[string]string{"_id": id}}); err != nil {
			return nil, fmt.Errorf("failed to encode action: %w", err)
		}
	}

	return c.bulk(ctx, &body)
}

func (c *Client) bulk(ctx context.Context, body *bytes.Buffer) ([]models.IndexingResult, error) {
	res, err := c.es.Bulk(
		body,
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithIndex(c.index),
	)
	if err != nil {
		return nil, fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("bulk error: %s", res.String())
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]models.IndexingResult, 0, len(br.Items))
	for _, entry := range br.Items {
		for action, item := range entry {
			results = append(results, toIndexingResult(action, item))
		}
	}
	return results, nil
}

func toIndexingResult(action string, item bulkItem) models.IndexingResult {
	r := models.IndexingResult{
		Key:        item.ID,
		StatusCode: item.Status,
	}
	switch {
	case item.Error != nil:
		r.ErrorMessage = fmt.Sprintf("%s: %s", item.Error.Type, item.Error.Reason)
	case item.Status >= 200 && item.Status < 300:
		r.Succeeded = true
	case action == "delete" && item.Status == http.StatusNotFound:
		r.Succeeded = true
	default:
		r.ErrorMessage = fmt.Sprintf("unexpected status %d", item.Status)
	}
	return r
}
