package main

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Fingerprint is the lower-case hex digest summarising one unit's files.
type Fingerprint string

type FingerprintOptions struct {
	// Workers bounds concurrent per-file hashing, zero means one per CPU.
	Workers int
	// IncludeMetadata folds permission bits and mtime into each file's
	// record, so a touch or chmod also counts as a change.
	IncludeMetadata bool
}

func (o FingerprintOptions) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// fingerprint hashes every file of files (relative to sourceDir) and then
// hashes the concatenation of the per-file records in FileSet order. A
// record is "<hex digest>  <path>" followed by a NUL byte; paths cannot
// contain NUL, so the concatenation is never ambiguous.
func fingerprint(ctx context.Context, files FileSet, sourceDir string, opts FingerprintOptions) (Fingerprint, error) {
	records := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i, rel := range files {
		i, rel := i, rel
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			digest, err := hashFile(filepath.Join(sourceDir, filepath.FromSlash(rel)), opts.IncludeMetadata)
			if err != nil {
				return err
			}
			records[i] = digest
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	unitHash := md5.New()
	for i, rel := range files {
		fmt.Fprintf(unitHash, "%s  %s\x00", records[i], rel)
	}

	return Fingerprint(hex.EncodeToString(unitHash.Sum(nil))), nil
}

func hashFile(filePath string, includeMetadata bool) (string, error) {
	// a file swapped for a symlink or fifo since listing is not followed
	info, err := os.Lstat(filePath)
	if err != nil {
		return "", &UnreadableFileError{Path: filePath, Err: err}
	}
	if !info.Mode().IsRegular() {
		return "", &UnreadableFileError{Path: filePath, Err: fmt.Errorf("no longer a regular file")}
	}

	fd, err := os.Open(filePath)
	if err != nil {
		return "", &UnreadableFileError{Path: filePath, Err: err}
	}
	defer fd.Close()

	fileHash := md5.New()
	if _, err := io.Copy(fileHash, fd); err != nil {
		return "", &UnreadableFileError{Path: filePath, Err: err}
	}
	digest := hex.EncodeToString(fileHash.Sum(nil))

	if includeMetadata {
		digest = fmt.Sprintf("%s %o %d", digest, info.Mode().Perm(), info.ModTime().UnixNano())
	}

	return digest, nil
}
