package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint    string // "localhost:9000" for MinIO
	Bucket      string // the blob container
	Credentials *credentials.Credentials
	UseSSL      bool
}

// Client wraps the MinIO/S3 client for blob operations on one bucket.
type Client struct {
	minioClient *minio.Client
	bucket      string
}

// New creates a new S3/MinIO client.
func New(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	if config.Credentials == nil {
		return nil, fmt.Errorf("credentials are required")
	}

	minioClient, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  config.Credentials,
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		minioClient: minioClient,
		bucket:      config.Bucket,
	}, nil
}

// ContainerExists reports whether the bucket exists.
func (c *Client) ContainerExists(ctx context.Context) (bool, error) {
	exists, err := c.minioClient.BucketExists(ctx, c.bucket)
	if err != nil {
		return false, fmt.Errorf("failed to check bucket: %w", err)
	}
	return exists, nil
}

// EnsureContainer creates the bucket if it doesn't exist.
func (c *Client) EnsureContainer(ctx context.Context) error {
	exists, err := c.ContainerExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = c.minioClient.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// UploadBlob writes a blob, replacing any existing blob with the same name.
func (c *Client) UploadBlob(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	_, err := c.minioClient.PutObject(ctx, c.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put blob %s: %w", name, err)
	}
	return nil
}

// ListBlobNames returns the names of all blobs starting with prefix.
func (c *Client) ListBlobNames(ctx context.Context, prefix string) ([]string, error) {
	var names []string

	objectCh := c.minioClient.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		names = append(names, object.Key)
	}

	return names, nil
}

// DeleteBlob removes a blob.
func (c *Client) DeleteBlob(ctx context.Context, name string) error {
	if err := c.minioClient.RemoveObject(ctx, c.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", name, err)
	}
	return nil
}

// GetBlob reads a whole blob (for testing/verification).
func (c *Client) GetBlob(ctx context.Context, name string) ([]byte, error) {
	object, err := c.minioClient.GetObject(ctx, c.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get blob: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}
