// Package auth resolves the credentials of each backend. A backend given an
// explicit key uses it; every other backend falls back to the ambient identity
// loaded once from configuration.
package auth

import (
	"errors"
	"net/http"

	"github.com/mfenderov/oneweb-prep/internal/config"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Credential is either an explicit key or the ambient identity.
type Credential struct {
	Key      string
	Identity config.Identity
}

// Resolve returns a key credential when key is set, else the ambient identity.
func Resolve(key string, identity config.Identity) Credential {
	if key != "" {
		return Credential{Key: key}
	}
	return Credential{Identity: identity}
}

// UsesKey reports whether an explicit key was supplied.
func (c Credential) UsesKey() bool {
	return c.Key != ""
}

// Method names the authentication method for logging.
func (c Credential) Method() string {
	if c.UsesKey() {
		return "key"
	}
	return "identity"
}

// BasicAuth returns the ambient username and password, empty for key credentials.
func (c Credential) BasicAuth() (username, password string) {
	if c.UsesKey() {
		return "", ""
	}
	return c.Identity.Username, c.Identity.Password
}

// Set holds the resolved credentials for one run. Storage is nil when blobs
// are skipped and OCR is nil when the local PDF parser is used.
type Set struct {
	Storage *Credential
	Search  Credential
	OCR     *Credential
}

// ResolveAll builds the credential set for a run.
func ResolveAll(cfg config.Config, opts config.Options) Set {
	set := Set{
		Search: Resolve(cfg.Elasticsearch.APIKey, cfg.Identity),
	}
	if !opts.SkipBlobs {
		storage := Resolve(cfg.Storage.SecretKey, cfg.Identity)
		set.Storage = &storage
	}
	if !opts.LocalPDFParser {
		ocr := Resolve(cfg.FormRecognizer.Key, cfg.Identity)
		set.OCR = &ocr
	}
	return set
}

// ErrStorageAccountMissing is returned when a storage key is given without the
// access key id it belongs to.
var ErrStorageAccountMissing = errors.New("storage key given without a storage account; " +
	"pass --storageaccount or set storage.access_key_id")

// StorageCredentials converts a credential to a MinIO credentials provider.
// A key pairs with accessKeyID; the ambient identity uses its username and
// password when present, else the standard provider chain with the identity
// profile selecting the shared credentials file section.
func StorageCredentials(c Credential, accessKeyID string) (*credentials.Credentials, error) {
	if c.UsesKey() {
		if accessKeyID == "" {
			return nil, ErrStorageAccountMissing
		}
		return credentials.NewStaticV4(accessKeyID, c.Key, ""), nil
	}
	if c.Identity.Username != "" {
		return credentials.NewStaticV4(c.Identity.Username, c.Identity.Password, ""), nil
	}
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.EnvMinio{},
		&credentials.FileAWSCredentials{Profile: c.Identity.Profile},
		&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
	}), nil
}
