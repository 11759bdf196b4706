package models

// FieldType is the storage type of an index field.
type FieldType string

const (
	FieldString FieldType = "string"
)

// Field describes one field of the index schema.
type Field struct {
	Name       string
	Type       FieldType
	Key        bool
	Searchable bool
	Filterable bool
	Facetable  bool
	Analyzer   string // only meaningful for searchable fields
}

// SemanticConfig names the fields that rank highest for relevance, in priority order.
type SemanticConfig struct {
	Name                     string
	PrioritizedContentFields []string
}

// IndexSchema is the fixed layout of the sections index.
type IndexSchema struct {
	Name     string
	Fields   []Field
	Semantic SemanticConfig
}

// KeyField returns the name of the key field, or "" if none is marked.
func (s IndexSchema) KeyField() string {
	for _, f := range s.Fields {
		if f.Key {
			return f.Name
		}
	}
	return ""
}

// DefaultSchema returns the section schema for the named index.
func DefaultSchema(name string) IndexSchema {
	return IndexSchema{
		Name: name,
		Fields: []Field{
			{Name: "id", Type: FieldString, Key: true},
			{Name: "content", Type: FieldString, Searchable: true, Analyzer: "english"},
			{Name: "name", Type: FieldString, Searchable: true, Analyzer: "english"},
			{Name: "geography", Type: FieldString, Searchable: true, Analyzer: "english"},
			{Name: "category", Type: FieldString, Filterable: true, Facetable: true},
			{Name: "sourcepage", Type: FieldString, Filterable: true, Facetable: true},
			{Name: "sourcefile", Type: FieldString, Filterable: true, Facetable: true},
		},
		Semantic: SemanticConfig{
			Name:                     "default",
			PrioritizedContentFields: []string{"content", "name", "geography"},
		},
	}
}

// IndexingResult reports the outcome for a single document of a bulk request.
type IndexingResult struct {
	Key          string
	Succeeded    bool
	StatusCode   int
	ErrorMessage string
}

// TermFilter restricts a search to documents whose field equals Value exactly.
type TermFilter struct {
	Field string
	Value string
}

// SearchRequest is a query against the sections index.
type SearchRequest struct {
	Query             string // empty matches everything
	Filter            *TermFilter
	Top               int
	IncludeTotalCount bool
}

// SearchResults holds the returned page and, when requested, the total match count.
type SearchResults struct {
	Documents []SectionDocument
	Count     int64
}
