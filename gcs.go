package main

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/juju/errors"
	"google.golang.org/api/option"
)

type GCSClient struct {
	Client *storage.Client
}

func NewGCSBucketClient(ctx context.Context, appConfig AppConfig) (BucketClient, error) {
	var bucketClient BucketClient

	client, err := storage.NewClient(ctx, gcsClientOptions(appConfig)...)
	if err != nil {
		return bucketClient, errors.Annotate(err, "creating gcs client")
	}
	bucketClient = &GCSClient{Client: client}

	return bucketClient, nil
}

// gcsClientOptions falls back to application default credentials and the
// public endpoint when Endpoint or GCSCredentialsFile are unset.
func gcsClientOptions(appConfig AppConfig) []option.ClientOption {
	opts := make([]option.ClientOption, 0)
	if appConfig.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(appConfig.Endpoint))
	}
	if appConfig.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(appConfig.GCSCredentialsFile))
	}

	return opts
}

func (s *GCSClient) PutObject(ctx context.Context, bucketName, key string, body io.Reader, opts PutOptions) error {
	// cancelling the writer's context is the only way to abandon an upload
	// without committing what was written so far
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	object := s.Client.Bucket(bucketName).Object(key)
	objWriter := object.NewWriter(ctx)
	if opts.PartSize > 0 {
		objWriter.ChunkSize = int(opts.PartSize)
	}
	objWriter.StorageClass = opts.StorageClass
	objWriter.ContentType = opts.ContentType

	if _, uploadErr := io.Copy(objWriter, body); uploadErr != nil {
		return errors.Trace(uploadErr)
	}
	if closeErr := objWriter.Close(); closeErr != nil {
		return errors.Trace(closeErr)
	}

	return nil
}

func (s *GCSClient) GetObject(ctx context.Context, bucketName, key string) ([]byte, error) {
	reader, err := s.Client.Bucket(bucketName).Object(key).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return nil, objectNotFound(bucketName, key)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer reader.Close()

	return readSidecar(reader)
}

func (s *GCSClient) ObjectExists(ctx context.Context, bucketName, key string) (bool, error) {
	_, err := s.Client.Bucket(bucketName).Object(key).Attrs(ctx)
	if err == storage.ErrObjectNotExist {
		return false, nil
	}
	if err != nil {
		return false, errors.Trace(err)
	}

	return true, nil
}
