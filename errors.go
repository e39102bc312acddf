package main

import (
	"fmt"
)

// UnreadablePathError is returned when a directory cannot be entered. The
// subtree rooted at Path is not backed up.
type UnreadablePathError struct {
	Path string
	Err  error
}

func (e *UnreadablePathError) Error() string {
	return fmt.Sprintf("unreadable path %s: %s", e.Path, e.Err)
}

func (e *UnreadablePathError) Unwrap() error { return e.Err }

// UnreadableFileError is returned when a listed file vanished or could not
// be read while it was being hashed or archived.
type UnreadableFileError struct {
	Path string
	Err  error
}

func (e *UnreadableFileError) Error() string {
	return fmt.Sprintf("unreadable file %s: %s", e.Path, e.Err)
}

func (e *UnreadableFileError) Unwrap() error { return e.Err }

// RemoteReadError is never fatal, the caller treats the key as absent.
type RemoteReadError struct {
	Key string
	Err error
}

func (e *RemoteReadError) Error() string {
	return fmt.Sprintf("remote read %s: %s", e.Key, e.Err)
}

func (e *RemoteReadError) Unwrap() error { return e.Err }

type RemoteWriteError struct {
	Key string
	Err error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("remote write %s: %s", e.Key, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }

// ConfigurationError rejects the run before any traversal begins.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}
