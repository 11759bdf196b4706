package config

import (
	"errors"
	"strings"
)

// ErrFormRecognizerMissing is returned when neither the local PDF parser nor a
// form recognizer service was selected.
var ErrFormRecognizerMissing = errors.New("form recognizer service is not provided; " +
	"pass --formrecognizerservice or use --localpdfparser for the local PDF parser")

// Options are the per-run command line settings.
type Options struct {
	Files                 string
	Category              string
	SkipBlobs             bool
	StorageAccount        string
	Container             string
	StorageKey            string
	TenantID              string
	SearchService         string
	Index                 string
	SearchKey             string
	Remove                bool
	RemoveAll             bool
	LocalPDFParser        bool
	FormRecognizerService string
	FormRecognizerKey     string
	Verbose               bool
}

// Validate checks the options before any backend is contacted.
func (o Options) Validate() error {
	if !o.LocalPDFParser && o.FormRecognizerService == "" {
		return ErrFormRecognizerMissing
	}
	return nil
}

// Apply overlays the command line options on top of the loaded configuration.
func (o Options) Apply(cfg Config) Config {
	if o.SearchService != "" {
		cfg.Elasticsearch.Addresses = splitList(o.SearchService)
	}
	if o.Index != "" {
		cfg.Elasticsearch.Index = o.Index
	}
	if o.SearchKey != "" {
		cfg.Elasticsearch.APIKey = o.SearchKey
	}
	if o.StorageAccount != "" {
		cfg.Storage.AccessKeyID = o.StorageAccount
	}
	if o.StorageKey != "" {
		cfg.Storage.SecretKey = o.StorageKey
	}
	if o.Container != "" {
		cfg.Storage.Bucket = o.Container
	}
	if o.FormRecognizerService != "" {
		cfg.FormRecognizer.Endpoint = o.FormRecognizerService
	}
	if o.FormRecognizerKey != "" {
		cfg.FormRecognizer.Key = o.FormRecognizerKey
	}
	if o.TenantID != "" {
		cfg.Identity.Profile = o.TenantID
	}
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
