// Package core defines the contracts shared by device backends and their
// callers: frame views, transfer counters and the error taxonomy.
package core

import (
	"errors"
	"fmt"
)

// ErrDisconnected reports that the device was torn down underneath us or
// its stream reached end-of-file. Terminal for a listen loop.
var ErrDisconnected = errors.New("device disconnected")

// ErrUnimplemented is returned by backends and platforms that do not
// support an operation.
var ErrUnimplemented = errors.New("operation not implemented")

// ErrTransient reports a read attempt that failed for an unclassified
// reason. It is a retry signal rather than a true error: a listen loop
// keeps running when it sees one.
var ErrTransient = errors.New("transient device fault")

// UnknownError is an undiagnosed failure. It carries the operation and
// device it hit plus the underlying diagnostic text so the condition can
// be understood from the log line alone.
type UnknownError struct {
	Op      string
	Device  string
	Message string
	Err     error
}

func (e *UnknownError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Device != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Device, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *UnknownError) Unwrap() error { return e.Err }
