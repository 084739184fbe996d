package exception

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBatchError_Error verifies the "[module] message: cause" format.
func TestBatchError_Error(t *testing.T) {
	err := NewBatchError("reader", "failed to open source", io.ErrUnexpectedEOF)
	assert.Equal(t, "[reader] failed to open source: unexpected EOF", err.Error())

	err = NewBatchError("writer", "nothing to write", nil)
	assert.Equal(t, "[writer] nothing to write", err.Error())
}

// TestBatchError_Classification verifies errors.Is works for both the sentinel and the cause.
func TestBatchError_Classification(t *testing.T) {
	cause := errors.New("column 'year' missing")
	err := fmt.Errorf("extract step: %w", NewSchemaError("reader", "bad DAIOE header", cause))

	assert.True(t, errors.Is(err, ErrSchema))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrSink))
	assert.True(t, IsBatchError(err))
	assert.Equal(t, "bad DAIOE header", ExtractErrorMessage(err))

	plain := NewBatchError("app", "unclassified", nil)
	assert.False(t, errors.Is(plain, ErrSchema))
}

// TestNewBatchErrorf verifies a trailing error argument becomes the cause.
func TestNewBatchErrorf(t *testing.T) {
	err := NewBatchErrorf("writer", "upload %s failed", "out.parquet", io.ErrClosedPipe)
	assert.Equal(t, "upload out.parquet failed", err.Message)
	assert.Same(t, io.ErrClosedPipe, err.OriginalErr)
}

// TestCollector verifies independent problems are reported together.
func TestCollector(t *testing.T) {
	var c Collector
	require.NoError(t, c.ErrorOrNil())

	c.Add(nil)
	c.Addf("missing column %q", "year")
	c.Addf("missing column %q", "ssyk2012_4")

	assert.Equal(t, 2, c.Len())
	err := c.ErrorOrNil()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "year")
	assert.Contains(t, err.Error(), "ssyk2012_4")
}
