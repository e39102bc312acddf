package main

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/pgzip"
)

// archiveStream produces a unit's payload into a pipe from a goroutine, so
// the payload goes straight to the bucket without a temp file.
type archiveStream struct {
	*io.PipeReader
	done chan struct{}
	err  error
}

func newArchiveStream(unit BackupUnit, files FileSet) *archiveStream {
	pr, pw := io.Pipe()
	stream := &archiveStream{PipeReader: pr, done: make(chan struct{})}

	go func() {
		defer close(stream.done)
		var err error
		if unit.SingleFile {
			err = copyFile(pw, unit.UnitPath)
		} else {
			err = createArchive(unit.sourceDir(), files, pw)
		}
		stream.err = err
		// a nil error closes with io.EOF
		pw.CloseWithError(err)
	}()

	return stream
}

// Wait releases a producer blocked on a consumer that gave up early and
// returns the producer's error.
func (s *archiveStream) Wait() error {
	s.PipeReader.Close()
	<-s.done
	return s.err
}

// createArchive writes files, in order, as a tar.gz stream to buf. Entry
// names are the FileSet paths.
func createArchive(sourceDir string, files FileSet, buf io.Writer) error {
	gw := pgzip.NewWriter(buf)
	tw := tar.NewWriter(gw)

	for _, rel := range files {
		if err := addToArchive(tw, sourceDir, rel); err != nil {
			gw.Close()
			return err
		}
	}

	if err := tw.Close(); err != nil {
		gw.Close()
		return err
	}
	return gw.Close()
}

func addToArchive(tw *tar.Writer, sourceDir, rel string) error {
	filename := filepath.Join(sourceDir, filepath.FromSlash(rel))
	file, info, err := openRegular(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = rel

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	return copyExactly(tw, file, filename, info.Size())
}

func copyFile(w io.Writer, filename string) error {
	file, info, err := openRegular(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return copyExactly(w, file, filename, info.Size())
}

func openRegular(filename string) (*os.File, os.FileInfo, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, &UnreadableFileError{Path: filename, Err: err}
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, &UnreadableFileError{Path: filename, Err: err}
	}
	if !info.Mode().IsRegular() {
		file.Close()
		return nil, nil, &UnreadableFileError{Path: filename, Err: fmt.Errorf("no longer a regular file")}
	}

	return file, info, nil
}

// copyExactly copies size bytes. A file that shrank underneath us is a read
// failure, one that grew is cut at the size recorded in the header.
func copyExactly(w io.Writer, file *os.File, filename string, size int64) error {
	n, err := io.CopyN(w, sourceReader{file: file, path: filename}, size)
	if err == io.EOF && n < size {
		return &UnreadableFileError{Path: filename, Err: fmt.Errorf("file shrank from %d to %d bytes while archiving", size, n)}
	}
	return err
}

// sourceReader tags read failures so they are told apart from a consumer
// closing the pipe.
type sourceReader struct {
	file *os.File
	path string
}

func (r sourceReader) Read(p []byte) (int, error) {
	n, err := r.file.Read(p)
	if err != nil && err != io.EOF {
		err = &UnreadableFileError{Path: r.path, Err: err}
	}
	return n, err
}
