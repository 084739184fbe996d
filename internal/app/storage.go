package app

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/fx"

	"github.com/tigerroll/daioe-scb/pkg/batch/adapter/storage"
	storageConfig "github.com/tigerroll/daioe-scb/pkg/batch/adapter/storage/config"
	gcsAdapter "github.com/tigerroll/daioe-scb/pkg/batch/adapter/storage/gcs"
	httpAdapter "github.com/tigerroll/daioe-scb/pkg/batch/adapter/storage/http"
	localAdapter "github.com/tigerroll/daioe-scb/pkg/batch/adapter/storage/local"
	config "github.com/tigerroll/daioe-scb/pkg/batch/core/config"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

// newStorageConnection builds the connection for one adapter section.
func newStorageConnection(name string, cfg storageConfig.StorageConfig) (storage.StorageConnection, error) {
	switch cfg.Type {
	case localAdapter.ProviderType:
		return localAdapter.NewLocalAdapter(cfg, name)
	case httpAdapter.ProviderType:
		return httpAdapter.NewHTTPAdapter(cfg, name), nil
	case gcsAdapter.ProviderType:
		return gcsAdapter.NewGCSAdapter(cfg, name), nil
	default:
		return nil, fmt.Errorf("unknown storage adapter type '%s'", cfg.Type)
	}
}

// BuildStorageResolver registers a local and an HTTP connection, then the
// adapters configured under "adapter" in name order. A configured adapter
// replaces a default one serving the same scheme.
func BuildStorageResolver(cfg *config.Config) (*storage.Resolver, error) {
	local, err := localAdapter.NewLocalAdapter(storageConfig.StorageConfig{}, "local")
	if err != nil {
		return nil, err
	}
	resolver := storage.NewResolver(local, httpAdapter.NewHTTPAdapter(storageConfig.StorageConfig{}, "http"))

	names := make([]string, 0, len(cfg.Surfin.AdapterConfigs))
	for name := range cfg.Surfin.AdapterConfigs {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs exception.Collector
	for _, name := range names {
		sc, err := storageConfig.Decode(cfg.Surfin.AdapterConfigs[name])
		if err != nil {
			errs.Addf("adapter '%s': %v", name, err)
			continue
		}
		conn, err := newStorageConnection(name, sc)
		if err != nil {
			errs.Addf("adapter '%s': %v", name, err)
			continue
		}
		resolver.Register(conn)
		logger.Debugf("Storage adapter '%s' (%s) registered.", name, sc.Type)
	}
	if err := errs.ErrorOrNil(); err != nil {
		_ = resolver.Close()
		return nil, exception.NewConfigError(moduleName, "invalid storage adapter configuration", err)
	}
	return resolver, nil
}

// NewStorageResolver provides the resolver and closes its connections when the application stops.
func NewStorageResolver(lc fx.Lifecycle, cfg *config.Config) (*storage.Resolver, error) {
	resolver, err := BuildStorageResolver(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error {
		return resolver.Close()
	}})
	return resolver, nil
}
