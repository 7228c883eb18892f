//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/syllabus/internal/testutil"
)

func TestS3Client_Integration(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRustFSContainer(ctx, t)
	defer rc.Terminate(ctx)

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          testutil.RustFSRegion,
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          "syllabus-test",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))

	uploads := client.WithPrefix("uploads")
	require.NoError(t, uploads.Put(ctx, "d1__syllabus.txt", "text/plain", []byte("Week 1")))

	data, err := uploads.Get(ctx, "d1__syllabus.txt")
	require.NoError(t, err)
	assert.Equal(t, "Week 1", string(data))

	info, err := client.Stat(ctx, "uploads/d1__syllabus.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(6), info.Size)
	assert.Equal(t, "text/plain", info.ContentType)

	// creating an existing bucket is a no-op
	require.NoError(t, client.EnsureBucket(ctx))

	require.NoError(t, uploads.Delete(ctx, "d1__syllabus.txt"))
	_, err = uploads.Get(ctx, "d1__syllabus.txt")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	_, err = uploads.Stat(ctx, "d1__syllabus.txt")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
