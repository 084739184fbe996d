package app

import (
	"go.uber.org/fx"
)

// Module provides the storage resolver, the job repository and the aggregation job.
var Module = fx.Options(
	fx.Provide(NewStorageResolver),
	fx.Provide(NewJobRepository),
	fx.Provide(NewAggregationJob),
)
