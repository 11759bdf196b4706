package elasticsearch

import (
	"strconv"

	"github.com/mfenderov/oneweb-prep/pkg/models"
)

// indexMapping renders a schema as an ES create-index body. Searchable fields
// become analyzed text, everything else keyword. The semantic configuration
// has no ES counterpart and is kept in the mapping _meta.
func indexMapping(schema models.IndexSchema) map[string]any {
	properties := make(map[string]any, len(schema.Fields))
	for _, f := range schema.Fields {
		switch {
		case f.Searchable:
			prop := map[string]any{"type": "text"}
			if f.Analyzer != "" {
				prop["analyzer"] = f.Analyzer
			}
			properties[f.Name] = prop
		default:
			properties[f.Name] = map[string]any{"type": "keyword"}
		}
	}

	return map[string]any{
		"mappings": map[string]any{
			"_meta": map[string]any{
				"key": schema.KeyField(),
				"semantic": map[string]any{
					"name":                       schema.Semantic.Name,
					"prioritized_content_fields": schema.Semantic.PrioritizedContentFields,
				},
			},
			"properties": properties,
		},
	}
}

// boostedFields weights the prioritized fields by position: the first field
// gets the highest boost, the last a boost of one.
func boostedFields(semantic models.SemanticConfig) []string {
	n := len(semantic.PrioritizedContentFields)
	fields := make([]string, n)
	for i, name := range semantic.PrioritizedContentFields {
		if boost := n - i; boost > 1 {
			fields[i] = name + "^" + strconv.Itoa(boost)
		} else {
			fields[i] = name
		}
	}
	return fields
}
