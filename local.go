package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"github.com/juju/errors"
)

// LocalClient stores objects as files under Root/<bucket>/<key>. Each object
// is written to a temp file and renamed into place, so a failed write never
// leaves a partial object behind.
type LocalClient struct {
	Root string
}

func NewLocalBucketClient(appConfig AppConfig) (BucketClient, error) {
	var bucketClient BucketClient

	if err := os.MkdirAll(appConfig.LocalPath, 0755); err != nil {
		return bucketClient, errors.Annotatef(err, "creating local store %s", appConfig.LocalPath)
	}
	bucketClient = &LocalClient{Root: appConfig.LocalPath}

	return bucketClient, nil
}

func (l *LocalClient) objectPath(bucketName, key string) string {
	return filepath.Join(l.Root, bucketName, filepath.FromSlash(key))
}

func (l *LocalClient) PutObject(ctx context.Context, bucketName, key string, body io.Reader, opts PutOptions) error {
	dest := l.objectPath(bucketName, key)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Trace(err)
	}

	pending, err := renameio.TempFile("", dest)
	if err != nil {
		return errors.Trace(err)
	}
	defer pending.Cleanup()

	if _, err := io.Copy(pending, body); err != nil {
		return errors.Annotatef(err, "writing %s", dest)
	}
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}

	return errors.Trace(pending.CloseAtomicallyReplace())
}

func (l *LocalClient) GetObject(ctx context.Context, bucketName, key string) ([]byte, error) {
	fd, err := os.Open(l.objectPath(bucketName, key))
	if os.IsNotExist(err) {
		return nil, objectNotFound(bucketName, key)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer fd.Close()

	return readSidecar(fd)
}

func (l *LocalClient) ObjectExists(ctx context.Context, bucketName, key string) (bool, error) {
	info, err := os.Stat(l.objectPath(bucketName, key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Trace(err)
	}

	return info.Mode().IsRegular(), nil
}
