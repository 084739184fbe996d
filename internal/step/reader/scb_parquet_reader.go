package reader

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tigerroll/daioe-scb/internal/domain/model"
	"github.com/tigerroll/daioe-scb/pkg/batch/adapter/storage"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

const ModuleSCBReader = "SCBParquetReader"

// SCBReaderConfig names the source and the columns of the SCB employment file.
type SCBReaderConfig struct {
	Source      string
	CodeColumn  string
	YearColumn  string
	CountColumn string
}

// SCBParquetReader loads the SCB employment counts from a Parquet location.
// Breakdown columns such as age or sex are ignored; the pipeline sums over them.
type SCBParquetReader struct {
	resolver *storage.Resolver
	config   SCBReaderConfig
}

// NewSCBParquetReader creates a reader that fetches cfg.Source through resolver.
func NewSCBParquetReader(resolver *storage.Resolver, cfg SCBReaderConfig) *SCBParquetReader {
	return &SCBParquetReader{resolver: resolver, config: cfg}
}

// Read fetches the file and decodes the code, year and count columns.
// Remote sources are spooled to a temporary file since Parquet needs random access.
func (r *SCBParquetReader) Read(ctx context.Context) (model.EmploymentTable, error) {
	rc, _, err := r.resolver.Open(ctx, r.config.Source)
	if err != nil {
		return model.EmploymentTable{}, exception.NewSourceError(ModuleSCBReader,
			fmt.Sprintf("failed to open SCB source '%s'", r.config.Source), err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "scb-*.parquet")
	if err != nil {
		return model.EmploymentTable{}, exception.NewSourceError(ModuleSCBReader, "failed to create spool file", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, rc)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return model.EmploymentTable{}, exception.NewSourceError(ModuleSCBReader,
			fmt.Sprintf("failed to fetch SCB source '%s'", r.config.Source), err)
	}
	logger.Debugf("Spooled %d bytes of '%s' to %s.", n, r.config.Source, tmp.Name())

	table, err := ReadSCBFile(tmp.Name(), r.config)
	if err != nil {
		return model.EmploymentTable{}, err
	}
	logger.Infof("Read %d SCB rows from '%s'.", len(table.Rows), r.config.Source)
	return table, nil
}

// ReadSCBFile decodes a local SCB Parquet file. Rows with a null count are
// skipped; a null code or year and a negative count are schema errors.
func ReadSCBFile(path string, cfg SCBReaderConfig) (model.EmploymentTable, error) {
	cols, numRows, err := ReadParquetColumns(path, cfg.CodeColumn, cfg.YearColumn, cfg.CountColumn)
	if err != nil {
		return model.EmploymentTable{}, exception.NewSchemaError(ModuleSCBReader, "SCB file does not match", err)
	}

	codes, years, counts := cols[cfg.CodeColumn], cols[cfg.YearColumn], cols[cfg.CountColumn]
	table := model.EmploymentTable{Rows: make([]model.EmploymentRow, 0, numRows)}
	var problems exception.Collector
	reported := 0
	report := func(format string, a ...interface{}) {
		reported++
		if reported <= maxReportedErrors {
			problems.Addf(format, a...)
		}
	}

	for i := int64(0); i < numRows; i++ {
		if counts[i] == nil {
			continue
		}
		code, err := codeValue(codes[i])
		if err != nil {
			report("row %d: %v", i, err)
			continue
		}
		year, err := intValue(years[i])
		if err != nil {
			report("row %d: year: %v", i, err)
			continue
		}
		count, err := floatValue(counts[i])
		if err != nil {
			report("row %d: count: %v", i, err)
			continue
		}
		if count < 0 {
			report("row %d: negative count %v for code %s year %d", i, count, code, year)
			continue
		}
		table.Rows = append(table.Rows, model.EmploymentRow{Code: code, Year: year, Count: count})
	}

	if reported > maxReportedErrors {
		problems.Addf("%d more problems not shown", reported-maxReportedErrors)
	}
	if err := problems.ErrorOrNil(); err != nil {
		return model.EmploymentTable{}, exception.NewSchemaError(ModuleSCBReader, "SCB data has invalid values", err)
	}
	return table, nil
}

func codeValue(v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		return parseCode(x)
	case []byte:
		return parseCode(string(x))
	case int32, int64:
		n, _ := intValue(x)
		return parseCode(strconv.Itoa(n))
	case nil:
		return "", fmt.Errorf("null SSYK code")
	default:
		return "", fmt.Errorf("unsupported SSYK code type %T", v)
	}
}

func intValue(v interface{}) (int, error) {
	switch x := v.(type) {
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("non-integral value %v", x)
		}
		return int(x), nil
	case string:
		return parseYear(x)
	case nil:
		return 0, fmt.Errorf("null value")
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func floatValue(v interface{}) (float64, error) {
	var f float64
	switch x := v.(type) {
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case float32:
		f = float64(x)
	case float64:
		f = x
	case string:
		var err error
		f, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", x)
		}
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %v", v)
	}
	return f, nil
}
