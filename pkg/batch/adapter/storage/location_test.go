package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseLocation verifies each supported form.
func TestParseLocation(t *testing.T) {
	cases := []struct {
		raw  string
		want Location
		ext  string
	}{
		{"data/scb.parquet", Location{Scheme: "file", Object: "data/scb.parquet"}, ".parquet"},
		{"file:///tmp/daioe.CSV", Location{Scheme: "file", Object: "/tmp/daioe.CSV"}, ".csv"},
		{"gs://bucket/processed/scb.parquet", Location{Scheme: "gs", Bucket: "bucket", Object: "processed/scb.parquet"}, ".parquet"},
		{"https://raw.example.org/files/daioe.csv?raw=1", Location{Scheme: "https", Bucket: "raw.example.org", Object: "https://raw.example.org/files/daioe.csv?raw=1"}, ".csv"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseLocation(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.ext, got.Ext())
		})
	}

	_, err := ParseLocation("")
	assert.Error(t, err)
	_, err = ParseLocation("s3://bucket/key")
	assert.Error(t, err)
	_, err = ParseLocation("gs://bucket")
	assert.Error(t, err)
}

type memConn struct {
	name    string
	schemes []string
	objects map[string]string
	closed  int
}

func (m *memConn) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.objects[bucket+"/"+objectName] = string(b)
	return nil
}

func (m *memConn) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(m.objects[bucket+"/"+objectName])), nil
}

func (m *memConn) DeleteObject(ctx context.Context, bucket, objectName string) error { return nil }
func (m *memConn) Type() string                                                      { return "mem" }
func (m *memConn) Name() string                                                      { return m.name }
func (m *memConn) Close() error                                                      { m.closed++; return nil }
func (m *memConn) Schemes() []string                                                 { return m.schemes }

// TestResolver verifies scheme dispatch for Publish and Open.
func TestResolver(t *testing.T) {
	ctx := context.Background()
	gs := &memConn{name: "gcs", schemes: []string{"gs"}, objects: map[string]string{}}
	r := NewResolver(gs)

	require.NoError(t, r.Publish(ctx, "gs://b/out.parquet", bytes.NewBufferString("PAR1"), ""))
	assert.Equal(t, "PAR1", gs.objects["b/out.parquet"])

	rc, loc, err := r.Open(ctx, "gs://b/out.parquet")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "PAR1", string(data))
	assert.Equal(t, "gs", loc.Scheme)

	_, _, err = r.Open(ctx, "local.csv")
	assert.ErrorContains(t, err, "no storage adapter configured for scheme 'file'")

	require.NoError(t, r.Close())
	assert.Equal(t, 1, gs.closed)
}
