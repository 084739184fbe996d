package reader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/tigerroll/daioe-scb/internal/domain/model"
	"github.com/tigerroll/daioe-scb/pkg/batch/adapter/storage"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

const ModuleDAIOEReader = "DAIOECSVReader"

// maxReportedErrors caps the problems listed in a single schema error.
const maxReportedErrors = 20

// DAIOEReaderConfig names the source and the columns of the DAIOE indicator file.
type DAIOEReaderConfig struct {
	Source     string
	CodeColumn string
	YearColumn string
	// Prefix selects the indicator columns. It is stripped from the indicator names.
	Prefix string
}

// DAIOECSVReader loads the DAIOE indicator table from a CSV location.
type DAIOECSVReader struct {
	resolver *storage.Resolver
	config   DAIOEReaderConfig
}

// NewDAIOECSVReader creates a reader that fetches cfg.Source through resolver.
func NewDAIOECSVReader(resolver *storage.Resolver, cfg DAIOEReaderConfig) *DAIOECSVReader {
	return &DAIOECSVReader{resolver: resolver, config: cfg}
}

// Read fetches and parses the whole file.
func (r *DAIOECSVReader) Read(ctx context.Context) (model.IndicatorTable, error) {
	rc, _, err := r.resolver.Open(ctx, r.config.Source)
	if err != nil {
		return model.IndicatorTable{}, exception.NewSourceError(ModuleDAIOEReader,
			fmt.Sprintf("failed to open DAIOE source '%s'", r.config.Source), err)
	}
	defer rc.Close()

	table, err := ParseDAIOE(rc, r.config)
	if err != nil {
		return model.IndicatorTable{}, err
	}
	logger.Infof("Read %d DAIOE rows with %d indicators from '%s'.", len(table.Rows), len(table.Names), r.config.Source)
	return table, nil
}

// ParseDAIOE parses DAIOE CSV data. Empty cells and NA, NaN or null values are
// missing indicators. Every malformed cell is reported in the returned schema error.
func ParseDAIOE(in io.Reader, cfg DAIOEReaderConfig) (model.IndicatorTable, error) {
	cr := csv.NewReader(in)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.IndicatorTable{}, exception.NewSchemaError(ModuleDAIOEReader, "DAIOE data is empty", nil)
		}
		return model.IndicatorTable{}, exception.NewSchemaError(ModuleDAIOEReader, "failed to read DAIOE header", err)
	}

	codeIdx, yearIdx := -1, -1
	var names []string
	var valueIdx []int
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch {
		case h == cfg.CodeColumn:
			codeIdx = i
		case h == cfg.YearColumn:
			yearIdx = i
		default:
			if name, ok := model.IndicatorName(h, cfg.Prefix); ok {
				names = append(names, name)
				valueIdx = append(valueIdx, i)
			}
		}
	}

	var problems exception.Collector
	if codeIdx < 0 {
		problems.Addf("missing code column %q", cfg.CodeColumn)
	}
	if yearIdx < 0 {
		problems.Addf("missing year column %q", cfg.YearColumn)
	}
	if len(names) == 0 {
		problems.Addf("no indicator columns with prefix %q", cfg.Prefix)
	}
	if err := problems.ErrorOrNil(); err != nil {
		return model.IndicatorTable{}, exception.NewSchemaError(ModuleDAIOEReader, "DAIOE header does not match", err)
	}

	table := model.IndicatorTable{Names: names}
	reported := 0
	report := func(format string, a ...interface{}) {
		reported++
		if reported <= maxReportedErrors {
			problems.Addf(format, a...)
		}
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.IndicatorTable{}, exception.NewSchemaError(ModuleDAIOEReader, "malformed DAIOE record", err)
		}

		code, err := parseCode(rec[codeIdx])
		if err != nil {
			report("line %d: %v", line, err)
			continue
		}
		year, err := parseYear(rec[yearIdx])
		if err != nil {
			report("line %d: %v", line, err)
			continue
		}
		row := model.IndicatorRow{Code: code, Year: year, Values: make([]model.NullFloat, len(valueIdx))}
		for j, idx := range valueIdx {
			v, err := parseIndicator(rec[idx])
			if err != nil {
				report("line %d column %q: %v", line, header[idx], err)
				continue
			}
			row.Values[j] = v
		}
		table.Rows = append(table.Rows, row)
	}

	if reported > maxReportedErrors {
		problems.Addf("%d more problems not shown", reported-maxReportedErrors)
	}
	if err := problems.ErrorOrNil(); err != nil {
		return model.IndicatorTable{}, exception.NewSchemaError(ModuleDAIOEReader, "DAIOE data has invalid values", err)
	}
	return table, nil
}

// parseCode accepts 1 to 4 digit SSYK codes.
func parseCode(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > model.MaxDigits {
		return "", fmt.Errorf("invalid SSYK code %q", s)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("invalid SSYK code %q", s)
		}
	}
	return s, nil
}

// parseYear accepts integers, including integral floats such as "2020.0".
func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return int(f), nil
}

func parseIndicator(s string) (model.NullFloat, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return model.Null, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.Null, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return model.Null, nil
	}
	return model.Float(v), nil
}
