package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mfenderov/oneweb-prep/pkg/models"
)

// searchResponse represents ES search response structure.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string                 `json:"_id"`
			Source models.SectionDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs req against the index. An empty query matches every document;
// otherwise the query is matched against the semantic prioritized fields,
// boosted in priority order.
func (c *Client) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResults, error) {
	data, err := json.Marshal(c.searchBody(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	docs := make([]models.SectionDocument, len(sr.Hits.Hits))
	for i, hit := range sr.Hits.Hits {
		docs[i] = hit.Source
		if docs[i].ID == "" {
			docs[i].ID = hit.ID
		}
	}

	return &models.SearchResults{
		Documents: docs,
		Count:     sr.Hits.Total.Value,
	}, nil
}

func (c *Client) searchBody(req models.SearchRequest) map[string]any {
	var must any = map[string]any{"match_all": map[string]any{}}
	if req.Query != "" {
		must = map[string]any{
			"multi_match": map[string]any{
				"query":  req.Query,
				"fields": boostedFields(c.semantic),
			},
		}
	}

	boolQuery := map[string]any{"must": must}
	if req.Filter != nil {
		boolQuery["filter"] = []any{
			map[string]any{"term": map[string]any{req.Filter.Field: req.Filter.Value}},
		}
	}

	body := map[string]any{
		"query":            map[string]any{"bool": boolQuery},
		"track_total_hits": req.IncludeTotalCount,
	}
	if req.Top > 0 {
		body["size"] = req.Top
	}
	return body
}
