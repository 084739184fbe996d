package app

import (
	"context"

	"go.uber.org/fx"

	// Dialects register themselves with the GORM adapter.
	_ "github.com/tigerroll/daioe-scb/pkg/batch/adapter/database/gorm/mysql"
	_ "github.com/tigerroll/daioe-scb/pkg/batch/adapter/database/gorm/postgres"
	_ "github.com/tigerroll/daioe-scb/pkg/batch/adapter/database/gorm/sqlite"

	config "github.com/tigerroll/daioe-scb/pkg/batch/core/config"
	"github.com/tigerroll/daioe-scb/pkg/batch/core/domain/repository"
	"github.com/tigerroll/daioe-scb/pkg/batch/infrastructure/repository/inmemory"
	sqlrepo "github.com/tigerroll/daioe-scb/pkg/batch/infrastructure/repository/sql"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

// BuildJobRepository returns the in-memory repository for type "inmemory" (or empty)
// and a GORM repository otherwise.
func BuildJobRepository(cfg *config.Config) (repository.JobRepository, error) {
	dbCfg := cfg.Surfin.Infrastructure.JobRepository
	if dbCfg.Type == "" || dbCfg.Type == "inmemory" {
		logger.Debugf("Using in-memory job repository.")
		return inmemory.NewInMemoryJobRepository(), nil
	}
	return sqlrepo.NewSQLJobRepository(dbCfg)
}

// NewJobRepository provides the JobRepository and closes it when the application stops.
func NewJobRepository(lc fx.Lifecycle, cfg *config.Config) (repository.JobRepository, error) {
	repo, err := BuildJobRepository(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error {
		return repo.Close()
	}})
	return repo, nil
}
