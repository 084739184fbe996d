package writer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/tigerroll/daioe-scb/internal/domain/model"
	"github.com/tigerroll/daioe-scb/pkg/batch/adapter/storage"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

const ModuleFinalRowWriter = "FinalRowParquetWriter"

const parquetWriteParallelism = 4

// FinalRowWriterConfig configures FinalRowParquetWriter.
type FinalRowWriterConfig struct {
	// OutputPath is the location the file is published to.
	OutputPath string
	// Compression is SNAPPY, GZIP, ZSTD or NONE.
	Compression string
}

// FinalRowParquetWriter encodes the final table as one Parquet file and publishes it.
// The file is fully encoded in memory first, so a failed run never leaves a partial file behind.
type FinalRowParquetWriter struct {
	resolver *storage.Resolver
	config   FinalRowWriterConfig
}

// NewFinalRowParquetWriter creates the writer.
func NewFinalRowParquetWriter(resolver *storage.Resolver, cfg FinalRowWriterConfig) *FinalRowParquetWriter {
	return &FinalRowParquetWriter{resolver: resolver, config: cfg}
}

// Write encodes table and publishes it to the output location. It returns the size of the file.
func (w *FinalRowParquetWriter) Write(ctx context.Context, table model.FinalTable) (int, error) {
	buf, err := Encode(table, w.config.Compression)
	if err != nil {
		return 0, err
	}
	size := buf.Len()
	logger.Infof("Writing %d rows x %d columns (%d bytes) to '%s'.", len(table.Rows), len(table.Columns()), size, w.config.OutputPath)

	if err := w.resolver.Publish(ctx, w.config.OutputPath, buf, "application/vnd.apache.parquet"); err != nil {
		return 0, exception.NewSinkError(ModuleFinalRowWriter,
			fmt.Sprintf("failed to publish '%s'", w.config.OutputPath), err)
	}
	return size, nil
}

type schemaNode struct {
	Tag    string        `json:"Tag"`
	Fields []*schemaNode `json:"Fields,omitempty"`
}

// Schema returns the parquet-go JSON schema of the table.
func Schema(table model.FinalTable) (string, error) {
	root := &schemaNode{Tag: "name=parquet_go_root, repetitiontype=REQUIRED"}
	root.Fields = []*schemaNode{
		{Tag: "name=" + model.ColumnLevel + ", type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"},
		{Tag: "name=" + model.ColumnSSYKCode + ", type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"},
		{Tag: "name=" + model.ColumnYear + ", type=INT64, repetitiontype=REQUIRED"},
		{Tag: "name=" + model.ColumnWeightSum + ", type=DOUBLE, repetitiontype=REQUIRED"},
	}
	for _, col := range table.Columns()[len(root.Fields):] {
		root.Fields = append(root.Fields, &schemaNode{Tag: "name=" + col + ", type=DOUBLE, repetitiontype=OPTIONAL"})
	}
	b, err := json.Marshal(root)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Encode renders table as a Parquet file.
func Encode(table model.FinalTable, compression string) (buf *bytes.Buffer, err error) {
	codec, err := compressionCodec(compression)
	if err != nil {
		return nil, exception.NewConfigError(ModuleFinalRowWriter, "invalid compression", err)
	}
	schema, err := Schema(table)
	if err != nil {
		return nil, exception.NewSinkError(ModuleFinalRowWriter, "failed to build parquet schema", err)
	}

	buf = new(bytes.Buffer)
	jw, err := writer.NewJSONWriterFromWriter(schema, buf, parquetWriteParallelism)
	if err != nil {
		return nil, exception.NewSinkError(ModuleFinalRowWriter, "failed to create parquet writer", err)
	}
	jw.CompressionType = codec

	// The encoder panics on some malformed input instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Recovered from parquet encoder panic: %v", r)
			buf = nil
			err = exception.NewSinkError(ModuleFinalRowWriter, "parquet encoder panicked", fmt.Errorf("%v", r))
		}
	}()

	cols := table.Columns()
	for i, row := range table.Rows {
		rec, err := json.Marshal(record(cols, table.Percentiles, row))
		if err != nil {
			return nil, exception.NewSinkError(ModuleFinalRowWriter, fmt.Sprintf("failed to encode row %d", i), err)
		}
		if err := jw.Write(string(rec)); err != nil {
			return nil, exception.NewSinkError(ModuleFinalRowWriter, fmt.Sprintf("failed to write row %d", i), err)
		}
	}
	if err := jw.WriteStop(); err != nil {
		return nil, exception.NewSinkError(ModuleFinalRowWriter, "failed to finalize parquet file", err)
	}
	return buf, nil
}

// record maps a row onto the column names. Missing values become JSON null.
func record(cols []string, percentiles bool, row model.FinalRow) map[string]interface{} {
	rec := make(map[string]interface{}, len(cols))
	rec[model.ColumnLevel] = string(row.Level)
	rec[model.ColumnSSYKCode] = row.SSYKCode
	rec[model.ColumnYear] = row.Year
	rec[model.ColumnWeightSum] = row.WeightSum

	i := 4
	for j := range row.Avg {
		rec[cols[i]] = row.Avg[j].Ptr()
		rec[cols[i+1]] = row.WAvg[j].Ptr()
		i += 2
		if percentiles {
			rec[cols[i]] = row.PctlAvg[j].Ptr()
			rec[cols[i+1]] = row.PctlWAvg[j].Ptr()
			i += 2
		}
	}
	return rec
}

func compressionCodec(compression string) (parquet.CompressionCodec, error) {
	switch strings.ToUpper(compression) {
	case "SNAPPY", "":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP":
		return parquet.CompressionCodec_GZIP, nil
	case "ZSTD":
		return parquet.CompressionCodec_ZSTD, nil
	case "NONE":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unsupported compression type: %s", compression)
	}
}
