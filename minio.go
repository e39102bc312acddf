package main

import (
	"context"
	"io"

	"github.com/juju/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient talks to S3-compatible endpoints (MinIO, Ceph RGW, NAS
// appliances) that the AWS default config chain cannot reach.
type MinioClient struct {
	Client *minio.Client
}

func NewMinioBucketClient(appConfig AppConfig) (BucketClient, error) {
	var bucketClient BucketClient

	client, err := minio.New(appConfig.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(appConfig.AccessKey, appConfig.SecretKey, ""),
		Secure: !appConfig.Insecure,
		Region: appConfig.AWSRegion,
	})
	if err != nil {
		return bucketClient, errors.Annotatef(err, "creating minio client for %s", appConfig.Endpoint)
	}
	bucketClient = &MinioClient{Client: client}

	return bucketClient, nil
}

func (m *MinioClient) PutObject(ctx context.Context, bucketName, key string, body io.Reader, opts PutOptions) error {
	putOpts := minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		StorageClass: opts.StorageClass,
	}
	if opts.PartSize > 0 {
		putOpts.PartSize = uint64(opts.PartSize)
	}
	// size -1 makes the client stream multipart until EOF
	_, err := m.Client.PutObject(ctx, bucketName, key, body, -1, putOpts)

	return errors.Trace(err)
}

func (m *MinioClient) GetObject(ctx context.Context, bucketName, key string) ([]byte, error) {
	obj, err := m.Client.GetObject(ctx, bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer obj.Close()

	data, err := readSidecar(obj)
	if err != nil {
		if isMinioNotFound(errors.Cause(err)) {
			return nil, objectNotFound(bucketName, key)
		}
		return nil, errors.Trace(err)
	}

	return data, nil
}

func (m *MinioClient) ObjectExists(ctx context.Context, bucketName, key string) (bool, error) {
	_, err := m.Client.StatObject(ctx, bucketName, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isMinioNotFound(err) {
		return false, nil
	}

	return false, errors.Trace(err)
}

func isMinioNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}
