package main

import (
	"context"
	"io"

	"github.com/juju/errors"
)

// maxSidecarSize bounds how much of a sidecar object is read back.
const maxSidecarSize = 64 << 20

// BucketClient is the object storage transport. Every method may block on
// network I/O and must be safe to call again with the same arguments.
type BucketClient interface {
	PutObject(ctx context.Context, bucketName string, key string, body io.Reader, opts PutOptions) error
	// GetObject returns an error satisfying errors.Is(err, errors.NotFound)
	// when key does not exist.
	GetObject(ctx context.Context, bucketName string, key string) ([]byte, error)
	// ObjectExists reports whether an object named exactly key exists.
	ObjectExists(ctx context.Context, bucketName string, key string) (bool, error)
}

type PutOptions struct {
	StorageClass string
	ContentType  string
	// PartSize is the multipart chunk size hint, zero leaves the client default.
	PartSize int64
}

func objectNotFound(bucketName, key string) error {
	return errors.NotFoundf("object %s/%s", bucketName, key)
}

func isObjectNotFound(err error) bool {
	return errors.Is(err, errors.NotFound)
}

func readSidecar(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSidecarSize))
	return data, errors.Trace(err)
}
