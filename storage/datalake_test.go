package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigured(t *testing.T) {
	require.False(t, NewUploader("", "").Configured())
	require.False(t, NewUploader("DefaultEndpointsProtocol=https;AccountName=x;AccountKey=eA==;EndpointSuffix=core.windows.net", "").Configured())
	require.False(t, NewUploader("", "uploads").Configured())
	require.True(t, NewUploader("DefaultEndpointsProtocol=https;AccountName=x;AccountKey=eA==;EndpointSuffix=core.windows.net", "uploads").Configured())
}

func TestUploadXLSUnconfigured(t *testing.T) {
	u := NewUploader("", "")

	_, err := u.UploadXLS(context.Background(), []byte("data"))
	require.ErrorContains(t, err, "missing storage configuration")
}

func TestUploaderUsesSeoulTime(t *testing.T) {
	u := NewUploader("conn", "uploads")
	require.NotNil(t, u.location)

	_, offset := time.Now().In(u.location).Zone()
	require.Equal(t, 9*60*60, offset)
}
