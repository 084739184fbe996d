package runner

import (
	"go.uber.org/fx"
)

// Module provides the port.JobRunner.
var Module = fx.Options(
	fx.Provide(NewSimpleJobRunner),
)
