// Package sections maps result records to index documents.
package sections

import (
	"iter"
	"strings"

	"github.com/mfenderov/oneweb-prep/pkg/models"
)

// FromRecord maps one result record to its section document.
func FromRecord(r models.ResultRecord, category string) models.SectionDocument {
	source := models.SourceURL(r.URL)
	return models.SectionDocument{
		ID:         models.DocumentID(r.URL),
		Content:    r.AbstractHTML,
		Name:       r.Name,
		Geography:  strings.Join(r.Geography, ", "),
		Category:   category,
		SourcePage: source,
		SourceFile: source,
	}
}

// Build returns a lazy sequence of one section per record, in record order.
func Build(records []models.ResultRecord, category string) iter.Seq[models.SectionDocument] {
	return func(yield func(models.SectionDocument) bool) {
		for _, r := range records {
			if !yield(FromRecord(r, category)) {
				return
			}
		}
	}
}
