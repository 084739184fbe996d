// Package http provides a read-only storage adapter for http:// and https:// locations.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	storageAdapter "github.com/tigerroll/daioe-scb/pkg/batch/adapter/storage"
	storageConfig "github.com/tigerroll/daioe-scb/pkg/batch/adapter/storage/config"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

// ProviderType is the type identifier of this adapter.
const ProviderType = "http"

const defaultTimeout = 60 * time.Second

type httpAdapter struct {
	client *http.Client
	name   string
}

var _ storageAdapter.StorageConnection = (*httpAdapter)(nil)

// NewHTTPAdapter creates the adapter. TimeoutSeconds bounds each request.
func NewHTTPAdapter(cfg storageConfig.StorageConfig, name string) storageAdapter.StorageConnection {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &httpAdapter{client: &http.Client{Timeout: timeout}, name: name}
}

func (a *httpAdapter) Close() error      { a.client.CloseIdleConnections(); return nil }
func (a *httpAdapter) Type() string      { return ProviderType }
func (a *httpAdapter) Name() string      { return a.name }
func (a *httpAdapter) Schemes() []string { return []string{"http", "https"} }

// Download issues a GET for objectName, which holds the full URL.
func (a *httpAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, objectName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for '%s': %w", objectName, err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch '%s': %w", objectName, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch '%s': unexpected status %s", objectName, resp.Status)
	}
	logger.Debugf("Fetched '%s' (%s).", objectName, resp.Status)
	return resp.Body, nil
}

// Upload is not supported; HTTP locations are inputs only.
func (a *httpAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	return fmt.Errorf("http storage adapter '%s' is read-only: cannot write '%s'", a.name, objectName)
}

// DeleteObject is not supported.
func (a *httpAdapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	return fmt.Errorf("http storage adapter '%s' is read-only: cannot delete '%s'", a.name, objectName)
}
