package gcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageConfig "github.com/tigerroll/daioe-scb/pkg/batch/adapter/storage/config"
)

// TestGCSAdapter_Bucket verifies the location bucket wins over the configured default.
func TestGCSAdapter_Bucket(t *testing.T) {
	a := &gcsAdapter{cfg: storageConfig.StorageConfig{BucketName: "default-bucket"}, name: "gcs"}

	b, err := a.bucket("from-location")
	require.NoError(t, err)
	assert.Equal(t, "from-location", b)

	b, err = a.bucket("")
	require.NoError(t, err)
	assert.Equal(t, "default-bucket", b)

	a = &gcsAdapter{name: "gcs"}
	_, err = a.bucket("")
	assert.Error(t, err)
}

// TestGCSAdapter_ClientOptions verifies credentials are passed only when configured.
func TestGCSAdapter_ClientOptions(t *testing.T) {
	a := &gcsAdapter{name: "gcs"}
	assert.Empty(t, a.clientOptions())

	a = &gcsAdapter{cfg: storageConfig.StorageConfig{CredentialsFile: "/secrets/key.json"}, name: "gcs"}
	assert.Len(t, a.clientOptions(), 1)

	// No client is created until the adapter is used.
	assert.NoError(t, a.Close())
	assert.Equal(t, []string{"gs"}, a.Schemes())
}
