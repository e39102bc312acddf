package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var errMockTransient = errors.New("mock: connection reset")

func TestMain(m *testing.M) {
	// keep test output readable, failures are asserted on, not logged
	log.SetOutput(io.Discard)
	exitVal := m.Run()
	os.Exit(exitVal)
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	return full
}

func mkdir(t *testing.T, root, rel string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(full, 0755))
	return full
}

// testConfig returns a validated config that backs up source into a local
// store with fast retries.
func testConfig(t *testing.T, source string) AppConfig {
	t.Helper()
	appConfig := AppConfig{
		Provider:       "local",
		LocalPath:      t.TempDir(),
		Bucket:         "not-real-bucket",
		BackupName:     "nas",
		SourcePath:     source,
		MaxArchiveSize: "1TiB",
		Concurrency:    2,
		HashWorkers:    2,
		RetryAttempts:  3,
		RetryDelay:     "1ms",
		RetryMaxDelay:  "5ms",
		RequestTimeout: "10s",
		LogLevel:       "info",
	}
	require.NoError(t, appConfig.Validate())
	return appConfig
}
