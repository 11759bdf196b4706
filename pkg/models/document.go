package models

import "strings"

// SourceBaseURL is prefixed to every result url to build the source pointers.
const SourceBaseURL = "https://www.wolterskluwer.com"

// ResultRecord is one normalized entry of an exported search result file.
type ResultRecord struct {
	URL          string
	Name         string
	Geography    []string
	AbstractHTML string
}

// SectionDocument is the unit uploaded to the search index.
type SectionDocument struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	Name       string `json:"name"`
	Geography  string `json:"geography"`
	Category   string `json:"category"`
	SourcePage string `json:"sourcepage"`
	SourceFile string `json:"sourcefile"`
}

// keyReplacer maps the characters the index rejects in key values.
var keyReplacer = strings.NewReplacer("/", "=", ":", "=", ".", "=")

// DocumentID derives the index key from a result url.
// Every '/', ':' and '.' is replaced by '='.
func DocumentID(url string) string {
	return keyReplacer.Replace(url)
}

// SourceURL returns the absolute url of a result path.
func SourceURL(url string) string {
	return SourceBaseURL + url
}
