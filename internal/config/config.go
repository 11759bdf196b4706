package config

import "time"

// Config holds all application configuration.
type Config struct {
	Elasticsearch  Elasticsearch  `mapstructure:"elasticsearch"`
	Storage        Storage        `mapstructure:"storage"`
	FormRecognizer FormRecognizer `mapstructure:"formrecognizer"`
	Identity       Identity       `mapstructure:"identity"`
	Indexing       Indexing       `mapstructure:"indexing"`
	MCP            MCP            `mapstructure:"mcp"`
}

// Elasticsearch holds ES connection configuration.
type Elasticsearch struct {
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
	APIKey    string   `mapstructure:"api_key"`
}

// Storage holds S3/MinIO storage configuration.
type Storage struct {
	Endpoint    string `mapstructure:"endpoint"`
	Bucket      string `mapstructure:"bucket"`
	AccessKeyID string `mapstructure:"access_key_id"`
	SecretKey   string `mapstructure:"secret_key"`
	UseSSL      bool   `mapstructure:"use_ssl"`
}

// FormRecognizer holds the document intelligence service configuration.
type FormRecognizer struct {
	Endpoint string `mapstructure:"endpoint"`
	Key      string `mapstructure:"key"`
}

// Identity is the ambient identity used by every backend without an explicit key.
type Identity struct {
	Profile  string `mapstructure:"profile"` // shared credentials file profile
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Indexing holds batching and removal tuning.
type Indexing struct {
	BatchSize   int           `mapstructure:"batch_size"`
	DeleteDelay time.Duration `mapstructure:"delete_delay"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Elasticsearch: Elasticsearch{
			Addresses: []string{"http://localhost:9200"},
			Index:     "oneweb-sections",
		},
		Storage: Storage{
			Endpoint: "localhost:9000",
			Bucket:   "content",
			UseSSL:   false,
		},
		Indexing: Indexing{
			BatchSize:   1000,
			DeleteDelay: 2 * time.Second,
		},
		MCP: MCP{
			Name:    "oneweb-prep",
			Version: "1.0.0",
		},
	}
}
