package reader

import (
	"fmt"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

const parquetReadParallelism = 4

// ReadParquetColumns reads the named top-level columns of a Parquet file.
// Column names match case-insensitively. A null cell is returned as nil.
func ReadParquetColumns(path string, columns ...string) (map[string][]interface{}, int64, error) {
	pf, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open parquet file '%s': %w", path, err)
	}
	defer pf.Close()

	pr, err := reader.NewParquetColumnReader(pf, parquetReadParallelism)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read parquet footer of '%s': %w", path, err)
	}
	defer pr.ReadStop()

	// Leaf columns are numbered in schema order, skipping the root and group nodes.
	leaves := make(map[string]int64)
	var leafIdx int64
	for i, el := range pr.SchemaHandler.SchemaElements {
		if i == 0 {
			continue
		}
		if el.NumChildren != nil && *el.NumChildren > 0 {
			continue
		}
		leaves[strings.ToLower(el.GetName())] = leafIdx
		leafIdx++
	}

	var missing []string
	for _, c := range columns {
		if _, ok := leaves[strings.ToLower(c)]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("parquet file '%s' has no column(s) %s", path, strings.Join(missing, ", "))
	}

	numRows := pr.GetNumRows()
	out := make(map[string][]interface{}, len(columns))
	for _, c := range columns {
		if numRows == 0 {
			out[c] = nil
			continue
		}
		values, _, _, err := pr.ReadColumnByIndex(leaves[strings.ToLower(c)], numRows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read column '%s' of '%s': %w", c, path, err)
		}
		if int64(len(values)) != numRows {
			return nil, 0, fmt.Errorf("column '%s' of '%s' has %d values for %d rows", c, path, len(values), numRows)
		}
		out[c] = values
	}
	return out, numRows, nil
}
