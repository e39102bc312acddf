package main

import (
	"context"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
)

// archiveUploader writes one unit as a transaction: payload first, then the
// manifest, then the fingerprint. The fingerprint sidecar is what lets a
// later run skip the unit, so it is only written once everything before it
// has landed.
type archiveUploader struct {
	store        *remoteStore
	storageClass string
	partSize     int64
}

func (u *archiveUploader) upload(ctx context.Context, unit BackupUnit, files FileSet, fp Fingerprint, state RemoteUnitState) error {
	// An old fingerprint next to a new payload would let a later run skip the
	// unit once the files are reverted. An empty sidecar reads as absent.
	if state.FingerprintMayExist {
		if err := u.store.putSidecar(ctx, unit.fingerprintKey(), nil); err != nil {
			return err
		}
	}

	if err := u.putPayload(ctx, unit, files); err != nil {
		return err
	}

	// The payload is committed. Finish the sidecars even if the run is being
	// interrupted, each attempt is still bounded by the request timeout.
	sidecarCtx := context.WithoutCancel(ctx)
	if err := u.store.putSidecar(sidecarCtx, unit.manifestKey(), manifestBody(files)); err != nil {
		return err
	}

	return u.store.putSidecar(sidecarCtx, unit.fingerprintKey(), []byte(string(fp)+"\n"))
}

// putPayload rebuilds the archive stream from disk on every attempt, a
// consumed pipe cannot be replayed.
func (u *archiveUploader) putPayload(ctx context.Context, unit BackupUnit, files FileSet) error {
	opts := PutOptions{
		StorageClass: u.storageClass,
		PartSize:     u.partSize,
		ContentType:  "application/gzip",
	}
	if unit.SingleFile {
		opts.ContentType = "application/octet-stream"
	}

	var written int64
	err := u.store.call(ctx, "put", unit.ArchiveKey, false, isUnreadableFile, func(ctx context.Context) error {
		stream := newArchiveStream(unit, files)
		counter := &countingReader{r: stream}
		putErr := u.store.client.PutObject(ctx, u.store.bucket, unit.ArchiveKey, counter, opts)
		if srcErr := stream.Wait(); isUnreadableFile(srcErr) {
			return srcErr
		}
		written = counter.n
		return putErr
	})
	if err != nil {
		if isUnreadableFile(err) || ctx.Err() != nil {
			return err
		}
		return &RemoteWriteError{Key: unit.ArchiveKey, Err: err}
	}

	log.WithField("key", unit.ArchiveKey).Debug("payload written: ", humanize.IBytes(uint64(written)))
	return nil
}

// manifestBody lists the unit's files newline separated, in fingerprint order.
func manifestBody(files FileSet) []byte {
	return []byte(strings.Join(files, "\n") + "\n")
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
