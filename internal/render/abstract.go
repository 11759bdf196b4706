package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/mfenderov/oneweb-prep/pkg/models"
)

const (
	descriptionMissing template.HTML = "<i>Description missing</i>"
	notSpecified       template.HTML = "<i>not specified</i>"
)

var abstractTemplate = template.Must(template.New("abstract").Parse(`
    <html>
    <h1>{{.Title}}</h1>
    <p>{{.Description}}</p>
    <h2>Meta information</h2>
    <table>
    <tr><td>Related topics</td><td>{{.Topics}}</td></tr>
    <tr><td>Relevant segments</td><td>{{.Segments}}</td></tr>
    <tr><td>Relevant audience</td><td>{{.Audiences}}</td></tr>
    <tr><td>Available in</td><td>{{.Geography}}</td></tr>
    </table>

    More information at: {{.Link}}
    </html>
    `))

// Fields are the values of one abstract. Nil fields render a placeholder;
// a nil Title renders the URL.
type Fields struct {
	URL         string
	Title       *string
	Description *string
	Topics      *string
	Segments    *string
	Audiences   *string
	Geography   *string
}

type abstractData struct {
	Title       any
	Description any
	Topics      any
	Segments    any
	Audiences   any
	Geography   any
	Link        string
}

// Abstract renders the HTML abstract of a search result.
// Field values are HTML escaped; placeholders are emitted as markup.
func Abstract(f Fields) (string, error) {
	title := f.URL
	if f.Title != nil {
		title = *f.Title
	}

	data := abstractData{
		Title:       title,
		Description: orPlaceholder(f.Description, descriptionMissing),
		Topics:      orPlaceholder(f.Topics, notSpecified),
		Segments:    orPlaceholder(f.Segments, notSpecified),
		Audiences:   orPlaceholder(f.Audiences, notSpecified),
		Geography:   orPlaceholder(f.Geography, notSpecified),
		Link:        models.SourceURL(f.URL),
	}

	var sb strings.Builder
	if err := abstractTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render abstract for %s: %w", f.URL, err)
	}
	return sb.String(), nil
}

func orPlaceholder(v *string, placeholder template.HTML) any {
	if v == nil {
		return placeholder
	}
	return *v
}
