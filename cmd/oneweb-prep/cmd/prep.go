package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfenderov/oneweb-prep/internal/auth"
	"github.com/mfenderov/oneweb-prep/internal/blob"
	"github.com/mfenderov/oneweb-prep/internal/config"
	"github.com/mfenderov/oneweb-prep/internal/elasticsearch"
	"github.com/mfenderov/oneweb-prep/internal/extractor"
	"github.com/mfenderov/oneweb-prep/internal/index"
	"github.com/mfenderov/oneweb-prep/internal/pipeline"
	"github.com/mfenderov/oneweb-prep/internal/storage"
	"github.com/spf13/cobra"
)

func runPrep(cmd *cobra.Command, args []string) error {
	opts.Files = args[0]
	opts.Verbose = verbose

	// Reject a missing document parser before any backend is contacted.
	if err := opts.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runCfg := opts.Apply(GetConfig())
	creds := auth.ResolveAll(runCfg, opts)
	logCredentials(creds)

	p, err := newPipeline(runCfg, opts, creds)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if mode := pipeline.ModeFor(opts.Remove, opts.RemoveAll); mode != pipeline.ModeRemoveAll {
		fmt.Fprintf(out, "Processing files... '%s'\n", opts.Files)
	} else {
		fmt.Fprintln(out, "Removing all sections and blobs...")
	}

	result, err := p.Run(ctx, opts.Files)
	if err != nil {
		return err
	}

	printSummary(out, result)
	return nil
}

func logCredentials(creds auth.Set) {
	slog.Debug("search credential", "method", creds.Search.Method())
	if creds.Storage != nil {
		slog.Debug("storage credential", "method", creds.Storage.Method())
	}
	if creds.OCR != nil {
		slog.Debug("form recognizer credential", "method", creds.OCR.Method())
	}
}

// newPipeline wires the backends for one run. No storage client is created
// when blobs are skipped.
func newPipeline(runCfg config.Config, opts config.Options, creds auth.Set) (*pipeline.Pipeline, error) {
	esClient, err := newSearchClient(runCfg, creds.Search)
	if err != nil {
		return nil, err
	}

	manager := index.New(esClient, index.Config{
		Index:       runCfg.Elasticsearch.Index,
		BatchSize:   runCfg.Indexing.BatchSize,
		DeleteDelay: runCfg.Indexing.DeleteDelay,
	})

	var uploader pipeline.BlobUploader
	var remover pipeline.BlobRemover
	if !opts.SkipBlobs && creds.Storage != nil {
		storageCreds, err := auth.StorageCredentials(*creds.Storage, runCfg.Storage.AccessKeyID)
		if err != nil {
			return nil, err
		}
		storageClient, err := storage.New(storage.Config{
			Endpoint:    runCfg.Storage.Endpoint,
			Bucket:      runCfg.Storage.Bucket,
			Credentials: storageCreds,
			UseSSL:      runCfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		slog.Debug("blob container", "bucket", storageClient.Bucket(), "endpoint", runCfg.Storage.Endpoint)
		uploader = blob.NewUploader(storageClient)
		remover = blob.NewRemover(storageClient)
	}

	return pipeline.New(pipeline.Config{
		Mode:      pipeline.ModeFor(opts.Remove, opts.RemoveAll),
		Category:  opts.Category,
		SkipBlobs: opts.SkipBlobs,
	}, manager, uploader, remover, extractor.ExtractFile), nil
}

func newSearchClient(runCfg config.Config, cred auth.Credential) (*elasticsearch.Client, error) {
	esConfig := elasticsearch.Config{
		Addresses: runCfg.Elasticsearch.Addresses,
		Index:     runCfg.Elasticsearch.Index,
	}
	if cred.UsesKey() {
		esConfig.APIKey = cred.Key
	} else {
		esConfig.Username, esConfig.Password = cred.BasicAuth()
	}

	client, err := elasticsearch.New(esConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}
	return client, nil
}

func printSummary(w io.Writer, result *pipeline.Result) {
	switch result.Mode {
	case pipeline.ModeIngest:
		fmt.Fprintf(w, "\nIndexed %d sections (%d succeeded) from %d files, %d blobs uploaded in %s\n",
			result.Sections, result.Succeeded, result.Files, result.Blobs, result.Duration.Round(time.Millisecond))
	default:
		fmt.Fprintf(w, "\nRemoved %d sections and %d blobs in %s\n",
			result.Removed, result.Blobs, result.Duration.Round(time.Millisecond))
	}
}
