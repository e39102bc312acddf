package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jinzhu/configor"
	log "github.com/sirupsen/logrus"
)

const (
	envPrefix = "NASS3ARCHIVE"

	mib         = 1 << 20
	minPartSize = 5 * mib
	// S3 multipart uploads are limited to 10000 parts.
	maxUploadParts = 10000
)

type AppConfig struct {
	Provider   string `default:"aws"`
	AWSRegion  string
	IAMProfile string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Insecure   bool
	LocalPath  string

	GCSCredentialsFile string

	Bucket              string `required:"true"`
	BackupName          string `required:"true"`
	SourcePath          string `required:"true"`
	StorageClass        string
	SplitDepth          int    `default:"0"`
	MaxArchiveSize      string `default:"1TiB"`
	Exclude             []string
	DryRun              bool
	Concurrency         int `default:"1"`
	HashWorkers         int
	FingerprintMetadata bool

	RetryAttempts  int    `default:"5"`
	RetryDelay     string `default:"1s"`
	RetryMaxDelay  string `default:"1m"`
	RequestTimeout string `default:"2m"`

	Schedule  string
	SNSTopic  string
	SNSRegion string
	LogLevel  string `default:"info"`
	LogFile   string
}

func loadConfig(configFilePath string) (AppConfig, error) {
	var appConfig AppConfig
	loader := configor.New(&configor.Config{ENVPrefix: envPrefix, Silent: true})
	if err := loader.Load(&appConfig, configFilePath); err != nil {
		return appConfig, &ConfigurationError{Field: configFilePath, Reason: err.Error()}
	}

	return appConfig, nil
}

// Validate rejects the configuration before anything is traversed.
func (c AppConfig) Validate() error {
	if strings.Trim(c.BackupName, "/ ") == "" {
		return &ConfigurationError{Field: "BackupName", Reason: "must not be empty"}
	}
	if c.Bucket == "" {
		return &ConfigurationError{Field: "Bucket", Reason: "must not be empty"}
	}
	if c.SplitDepth < 0 {
		return &ConfigurationError{Field: "SplitDepth", Reason: fmt.Sprintf("must be a non-negative integer, got %d", c.SplitDepth)}
	}
	if c.Concurrency < 1 {
		return &ConfigurationError{Field: "Concurrency", Reason: "must be at least 1"}
	}
	if c.HashWorkers < 0 {
		return &ConfigurationError{Field: "HashWorkers", Reason: "must not be negative"}
	}
	if c.RetryAttempts < 1 {
		return &ConfigurationError{Field: "RetryAttempts", Reason: "must be at least 1"}
	}

	switch c.Provider {
	case "aws", "gcs":
	case "minio":
		if c.Endpoint == "" {
			return &ConfigurationError{Field: "Endpoint", Reason: "required for the minio provider"}
		}
	case "local":
		if c.LocalPath == "" {
			return &ConfigurationError{Field: "LocalPath", Reason: "required for the local provider"}
		}
	default:
		return &ConfigurationError{Field: "Provider", Reason: fmt.Sprintf("unknown cloud provider: %s", c.Provider)}
	}

	if _, err := c.maxArchiveSize(); err != nil {
		return &ConfigurationError{Field: "MaxArchiveSize", Reason: err.Error()}
	}
	durations := map[string]string{
		"RetryDelay":     c.RetryDelay,
		"RetryMaxDelay":  c.RetryMaxDelay,
		"RequestTimeout": c.RequestTimeout,
	}
	for field, value := range durations {
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return &ConfigurationError{Field: field, Reason: fmt.Sprintf("invalid duration %q", value)}
		}
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return &ConfigurationError{Field: "LogLevel", Reason: err.Error()}
	}
	if _, err := os.Stat(c.SourcePath); err != nil {
		return &ConfigurationError{Field: "SourcePath", Reason: err.Error()}
	}

	return nil
}

func (c AppConfig) ClientFromConfig(ctx context.Context) (BucketClient, error) {
	switch c.Provider {
	case "aws":
		return NewS3BucketClient(ctx, c)
	case "minio":
		return NewMinioBucketClient(c)
	case "gcs":
		return NewGCSBucketClient(ctx, c)
	case "local":
		return NewLocalBucketClient(c)
	}

	return nil, fmt.Errorf("Unknown cloud provider: %s", c.Provider)
}

func (c AppConfig) maxArchiveSize() (uint64, error) {
	size, err := humanize.ParseBytes(c.MaxArchiveSize)
	if err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, fmt.Errorf("must be greater than zero")
	}
	return size, nil
}

// partSize is the multipart chunk size that lets an archive of
// MaxArchiveSize fit in the part limit.
func (c AppConfig) partSize() int64 {
	size, err := c.maxArchiveSize()
	if err != nil {
		return minPartSize
	}
	return chunkSize(size)
}

func chunkSize(maxArchiveSize uint64) int64 {
	part := (maxArchiveSize + maxUploadParts - 1) / maxUploadParts
	part = (part + mib - 1) / mib * mib
	if part < minPartSize {
		part = minPartSize
	}
	return int64(part)
}

func (c AppConfig) splitPolicy() SplitPolicy {
	return NewSplitPolicy(c.SplitDepth, c.Exclude)
}

func (c AppConfig) fingerprintOptions() FingerprintOptions {
	return FingerprintOptions{Workers: c.HashWorkers, IncludeMetadata: c.FingerprintMetadata}
}

// retryPolicy must only be called on a validated config.
func (c AppConfig) retryPolicy() RetryPolicy {
	delay, _ := time.ParseDuration(c.RetryDelay)
	maxDelay, _ := time.ParseDuration(c.RetryMaxDelay)
	timeout, _ := time.ParseDuration(c.RequestTimeout)

	return RetryPolicy{
		Attempts:       c.RetryAttempts,
		Delay:          delay,
		MaxDelay:       maxDelay,
		RequestTimeout: timeout,
	}
}

func (c AppConfig) ConfigStringArray() []string {
	configStrArr := make([]string, 0)
	configStrArr = append(configStrArr, fmt.Sprintf("  - Provider: %s", c.Provider))
	switch c.Provider {
	case "aws":
		configStrArr = append(configStrArr, fmt.Sprintf("  - AWSRegion: %s", c.AWSRegion))
		configStrArr = append(configStrArr, fmt.Sprintf("  - IAMProfile: %s", c.IAMProfile))
	case "minio":
		configStrArr = append(configStrArr, fmt.Sprintf("  - Endpoint: %s", c.Endpoint))
		configStrArr = append(configStrArr, fmt.Sprintf("  - AccessKey: %s", c.AccessKey))
		configStrArr = append(configStrArr, "  - SecretKey: <redacted>")
	case "gcs":
		if c.Endpoint != "" {
			configStrArr = append(configStrArr, fmt.Sprintf("  - Endpoint: %s", c.Endpoint))
		}
		if c.GCSCredentialsFile != "" {
			configStrArr = append(configStrArr, fmt.Sprintf("  - GCSCredentialsFile: %s", c.GCSCredentialsFile))
		}
	case "local":
		configStrArr = append(configStrArr, fmt.Sprintf("  - LocalPath: %s", c.LocalPath))
	}
	configStrArr = append(configStrArr, fmt.Sprintf("  - Bucket: %s", c.Bucket))
	configStrArr = append(configStrArr, fmt.Sprintf("  - BackupName: %s", c.BackupName))
	configStrArr = append(configStrArr, fmt.Sprintf("  - SourcePath: %s", c.SourcePath))
	configStrArr = append(configStrArr, fmt.Sprintf("  - StorageClass: %s", c.StorageClass))
	configStrArr = append(configStrArr, fmt.Sprintf("  - SplitDepth: %d", c.SplitDepth))
	configStrArr = append(configStrArr, fmt.Sprintf("  - MaxArchiveSize: %s (part size %s)", c.MaxArchiveSize, humanize.IBytes(uint64(c.partSize()))))
	configStrArr = append(configStrArr, fmt.Sprintf("  - Concurrent Uploads: %d", c.Concurrency))
	configStrArr = append(configStrArr, fmt.Sprintf("  - DryRun: %t", c.DryRun))

	if len(c.Exclude) != 0 {
		configStrArr = append(configStrArr, fmt.Sprintf("  - Exclude: %s", strings.Join(c.Exclude, ", ")))
	}
	if c.Schedule != "" {
		configStrArr = append(configStrArr, fmt.Sprintf("  - Schedule: %s", c.Schedule))
	}
	if c.SNSTopic != "" {
		configStrArr = append(configStrArr, fmt.Sprintf("  - SNSTopic: %s", c.SNSTopic))
	}

	return configStrArr
}
