// Package gcs provides the Google Cloud Storage adapter for gs:// locations.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	storageAdapter "github.com/tigerroll/daioe-scb/pkg/batch/adapter/storage"
	storageConfig "github.com/tigerroll/daioe-scb/pkg/batch/adapter/storage/config"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

// ProviderType is the type identifier of this adapter.
const ProviderType = "gcs"

// gcsAdapter creates its client on first use so configurations that never
// touch gs:// locations do not need credentials.
type gcsAdapter struct {
	cfg  storageConfig.StorageConfig
	name string

	once      sync.Once
	client    *storage.Client
	clientErr error
}

var _ storageAdapter.StorageConnection = (*gcsAdapter)(nil)

// NewGCSAdapter creates the adapter.
func NewGCSAdapter(cfg storageConfig.StorageConfig, name string) storageAdapter.StorageConnection {
	return &gcsAdapter{cfg: cfg, name: name}
}

func (a *gcsAdapter) Type() string      { return ProviderType }
func (a *gcsAdapter) Name() string      { return a.name }
func (a *gcsAdapter) Schemes() []string { return []string{"gs"} }

// clientOptions builds the client options from the configuration.
func (a *gcsAdapter) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if a.cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(a.cfg.CredentialsFile))
	}
	return opts
}

func (a *gcsAdapter) getClient(ctx context.Context) (*storage.Client, error) {
	a.once.Do(func() {
		a.client, a.clientErr = storage.NewClient(ctx, a.clientOptions()...)
		if a.clientErr == nil {
			logger.Infof("GCS client initialized (adapter '%s').", a.name)
		}
	})
	return a.client, a.clientErr
}

func (a *gcsAdapter) bucket(bucket string) (string, error) {
	if bucket != "" {
		return bucket, nil
	}
	if a.cfg.BucketName != "" {
		return a.cfg.BucketName, nil
	}
	return "", errors.New("no bucket in location and no bucket_name configured")
}

// Upload streams data into the object. GCS makes the object visible only when the writer closes successfully.
func (a *gcsAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	b, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	client, err := a.getClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create GCS client: %w", err)
	}

	// Cancelling wctx aborts the upload instead of committing a partial object.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w := client.Bucket(b).Object(objectName).NewWriter(wctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, data); err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("failed to upload gs://%s/%s: %w", b, objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs://%s/%s: %w", b, objectName, err)
	}
	logger.Debugf("Uploaded gs://%s/%s.", b, objectName)
	return nil
}

// Download opens a reader on the object. The caller must close it.
func (a *gcsAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	b, err := a.bucket(bucket)
	if err != nil {
		return nil, err
	}
	client, err := a.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	r, err := client.Bucket(b).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", b, objectName, err)
	}
	return r, nil
}

// DeleteObject removes the object. A missing object is not an error.
func (a *gcsAdapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	b, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	client, err := a.getClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create GCS client: %w", err)
	}
	if err := client.Bucket(b).Object(objectName).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete gs://%s/%s: %w", b, objectName, err)
	}
	return nil
}

// Close closes the client if it was created.
func (a *gcsAdapter) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}
