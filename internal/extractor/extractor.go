// Package extractor reads exported search result files into result records.
package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mfenderov/oneweb-prep/internal/render"
	"github.com/mfenderov/oneweb-prep/pkg/models"
)

// ErrMissingURL is returned when a result entry carries no url_s.
var ErrMissingURL = errors.New("result entry has no url_s")

// facet is a categorical field that is exported either as a string or a list.
type facet []string

func (f *facet) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*f = facet{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("facet must be a string or a list of strings: %w", err)
	}
	*f = list
	return nil
}

func (f *facet) joined() *string {
	if f == nil {
		return nil
	}
	s := strings.Join(*f, ", ")
	return &s
}

// entry is one element of the export's Results array.
type entry struct {
	URL       *string `json:"url_s"`
	Title     *string `json:"title_txt"`
	Abstract  *string `json:"abstract_txt"`
	Topic     *facet  `json:"topic_facet"`
	Segment   *facet  `json:"segment_facet"`
	Audience  *facet  `json:"audience_facet"`
	Geography *facet  `json:"targetgeoavailability_facet"`
}

type export struct {
	Results *[]entry `json:"Results"`
}

// ExtractFile reads one export file.
func ExtractFile(path string) ([]models.ResultRecord, error) {
	slog.Debug("extracting text", "file", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	records, err := Extract(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Extract decodes an export and returns one record per result, in order.
// Any malformed entry fails the whole export.
func Extract(r io.Reader) ([]models.ResultRecord, error) {
	var exp export
	dec := json.NewDecoder(r)
	if err := dec.Decode(&exp); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	// The export must be a single JSON document.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("failed to decode export: trailing data")
	}
	if exp.Results == nil {
		return nil, fmt.Errorf("export has no Results array")
	}

	records := make([]models.ResultRecord, 0, len(*exp.Results))
	for i, e := range *exp.Results {
		record, err := toRecord(e)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func toRecord(e entry) (models.ResultRecord, error) {
	if e.URL == nil {
		return models.ResultRecord{}, ErrMissingURL
	}
	url := *e.URL

	abstract, err := render.Abstract(render.Fields{
		URL:         url,
		Title:       e.Title,
		Description: e.Abstract,
		Topics:      e.Topic.joined(),
		Segments:    e.Segment.joined(),
		Audiences:   e.Audience.joined(),
		Geography:   e.Geography.joined(),
	})
	if err != nil {
		return models.ResultRecord{}, err
	}
	slog.Debug("rendered abstract", "url", url, "abstract", abstract)

	name := url
	if e.Title != nil {
		name = *e.Title
	}

	var geography []string
	if e.Geography != nil {
		geography = []string(*e.Geography)
	}

	return models.ResultRecord{
		URL:          url,
		Name:         name,
		Geography:    geography,
		AbstractHTML: abstract,
	}, nil
}
