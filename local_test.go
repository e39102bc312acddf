package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct {
	data string
	err  error
	read bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		return copy(p, r.data), nil
	}
	return 0, r.err
}

func TestLocalClientRoundTrip(t *testing.T) {
	root := filepath.Join(t.TempDir(), "store")
	bucketClient, err := NewLocalBucketClient(AppConfig{LocalPath: root})
	require.NoError(t, err)
	ctx := context.Background()

	exists, err := bucketClient.ObjectExists(ctx, "bucket", "nas/d/sub.tar.gz")
	assert.Nil(t, err)
	assert.False(t, exists)

	_, err = bucketClient.GetObject(ctx, "bucket", "nas/d/sub.tar.gz.md5")
	assert.True(t, isObjectNotFound(err))

	require.NoError(t, bucketClient.PutObject(ctx, "bucket", "nas/d/sub.tar.gz", strings.NewReader("payload"), PutOptions{}))
	require.NoError(t, bucketClient.PutObject(ctx, "bucket", "nas/d/sub.tar.gz.md5", strings.NewReader("abc\n"), PutOptions{}))

	exists, err = bucketClient.ObjectExists(ctx, "bucket", "nas/d/sub.tar.gz")
	assert.Nil(t, err)
	assert.True(t, exists)

	data, err := bucketClient.GetObject(ctx, "bucket", "nas/d/sub.tar.gz.md5")
	assert.Nil(t, err)
	assert.Equal(t, "abc\n", string(data))

	// overwrite replaces the whole object
	require.NoError(t, bucketClient.PutObject(ctx, "bucket", "nas/d/sub.tar.gz.md5", strings.NewReader("d"), PutOptions{}))
	data, err = bucketClient.GetObject(ctx, "bucket", "nas/d/sub.tar.gz.md5")
	assert.Nil(t, err)
	assert.Equal(t, "d", string(data))

	assert.FileExists(t, filepath.Join(root, "bucket", "nas", "d", "sub.tar.gz"))
}

func TestLocalClientPrefixIsNotAnObject(t *testing.T) {
	bucketClient, err := NewLocalBucketClient(AppConfig{LocalPath: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, bucketClient.PutObject(ctx, "bucket", "nas/d/sub.tar.gz", strings.NewReader("x"), PutOptions{}))

	exists, err := bucketClient.ObjectExists(ctx, "bucket", "nas/d")
	assert.Nil(t, err)
	assert.False(t, exists)

	exists, err = bucketClient.ObjectExists(ctx, "bucket", "nas/d/sub.tar")
	assert.Nil(t, err)
	assert.False(t, exists)
}

func TestLocalClientFailedWriteLeavesNothing(t *testing.T) {
	root := t.TempDir()
	bucketClient, err := NewLocalBucketClient(AppConfig{LocalPath: root})
	require.NoError(t, err)
	broken := errors.New("disk read failed")

	err = bucketClient.PutObject(context.Background(), "bucket", "nas/d.tar.gz", &failingReader{data: "partial", err: broken}, PutOptions{})
	assert.ErrorIs(t, err, broken)

	exists, err := bucketClient.ObjectExists(context.Background(), "bucket", "nas/d.tar.gz")
	assert.Nil(t, err)
	assert.False(t, exists)

	entries, err := os.ReadDir(filepath.Join(root, "bucket", "nas"))
	require.NoError(t, err)
	assert.Len(t, entries, 0)
}

func TestLocalClientCancelledWriteLeavesNothing(t *testing.T) {
	bucketClient, err := NewLocalBucketClient(AppConfig{LocalPath: t.TempDir()})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = bucketClient.PutObject(ctx, "bucket", "nas/d.tar.gz", io.LimitReader(strings.NewReader("payload"), 7), PutOptions{})
	assert.ErrorIs(t, err, context.Canceled)

	exists, _ := bucketClient.ObjectExists(context.Background(), "bucket", "nas/d.tar.gz")
	assert.False(t, exists)
}
