package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_RoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "d1__syllabus.txt", "text/plain", []byte("Week 1")))

	data, err := store.Get(ctx, "d1__syllabus.txt")
	require.NoError(t, err)
	assert.Equal(t, "Week 1", string(data))

	require.NoError(t, store.Delete(ctx, "d1__syllabus.txt"))
	_, err = store.Get(ctx, "d1__syllabus.txt")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	assert.NoError(t, store.Delete(ctx, "d1__syllabus.txt"))
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "../x", "/etc/passwd", "a/../../x"} {
		assert.ErrorIs(t, store.Put(ctx, key, "", []byte("x")), ErrInvalidKey, key)
	}
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "a_b_c.txt", SafeName("a/b\\c.txt"))
	assert.Equal(t, "plain.pdf", SafeName("plain.pdf"))
}

func TestS3Client_WithPrefix(t *testing.T) {
	c := &S3Client{bucket: "b"}
	uploads := c.WithPrefix("uploads")

	assert.Equal(t, "k", c.key("k"))
	assert.Equal(t, "uploads/k", uploads.key("k"))
	assert.Equal(t, "uploads/raw/k", uploads.WithPrefix("raw").key("k"))
}
