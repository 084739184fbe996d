package tasklet

import (
	"github.com/tigerroll/daioe-scb/internal/domain/model"
	batchModel "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
)

// Job parameter keys. A non-empty parameter overrides the configured location.
const (
	ParamDaioeSource = "daioe_source"
	ParamScbSource   = "scb_source"
	ParamOutputPath  = "output_path"
	ParamMinYear     = "min_year"
)

// ExecutionContext keys used to hand tables from one step to the next.
const (
	KeyIndicators = "daioe.indicators"
	KeyEmployment = "scb.employment"
	KeyFinalTable = "final.table"
)

// RunParameters are the per-run settings carried by the JobParameters.
type RunParameters struct {
	DaioeSource string `mapstructure:"daioe_source"`
	ScbSource   string `mapstructure:"scb_source"`
	OutputPath  string `mapstructure:"output_path"`
	// MinYear overrides the configured first year when non-zero.
	MinYear int `mapstructure:"min_year"`
}

func decodeParameters(module string, params batchModel.JobParameters) (RunParameters, error) {
	var rp RunParameters
	if err := configbinder.BindProperties(params, &rp); err != nil {
		return RunParameters{}, exception.NewConfigError(module, "failed to decode job parameters", err)
	}
	return rp, nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func indicatorTable(module string, ec batchModel.ExecutionContext) (model.IndicatorTable, error) {
	v, ok := ec.Get(KeyIndicators)
	t, typed := v.(model.IndicatorTable)
	if !ok || !typed {
		return model.IndicatorTable{}, exception.NewBatchErrorf(module, "execution context has no '%s'", KeyIndicators)
	}
	return t, nil
}

func employmentTable(module string, ec batchModel.ExecutionContext) (model.EmploymentTable, error) {
	v, ok := ec.Get(KeyEmployment)
	t, typed := v.(model.EmploymentTable)
	if !ok || !typed {
		return model.EmploymentTable{}, exception.NewBatchErrorf(module, "execution context has no '%s'", KeyEmployment)
	}
	return t, nil
}

func finalTable(module string, ec batchModel.ExecutionContext) (model.FinalTable, error) {
	v, ok := ec.Get(KeyFinalTable)
	t, typed := v.(model.FinalTable)
	if !ok || !typed {
		return model.FinalTable{}, exception.NewBatchErrorf(module, "execution context has no '%s'", KeyFinalTable)
	}
	return t, nil
}
