// Package bindings provides the foreign-function boundary around a
// Serializer: a defer/recover shell so a panic inside core code becomes a
// returned error instead of crashing a caller that called in across a
// language boundary, plus routing of otherwise-unrecoverable failures
// through the process-wide fatal-error callback before returning.
package bindings

import (
	"fmt"

	"github.com/joshuapare/serialbox/archive"
	"github.com/joshuapare/serialbox/field"
	"github.com/joshuapare/serialbox/logging"
	"github.com/joshuapare/serialbox/savepoint"
	"github.com/joshuapare/serialbox/serializer"
	"github.com/joshuapare/serialbox/storageview"
)

// Session wraps a *serializer.Serializer for foreign-function callers who
// cannot propagate a Go panic across the boundary.
type Session struct {
	s *serializer.Serializer
}

// Open constructs a Session, recovering from any panic raised during
// construction and converting it to an error.
func Open(mode archive.Mode, directory, prefix, archiveName string) (session *Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("serialbox: open panicked: %v", r)
		}
	}()

	s, oerr := serializer.New(mode, directory, prefix, archiveName)
	if oerr != nil {
		return nil, oerr
	}
	return &Session{s: s}, nil
}

// Close releases the underlying Serializer. A failure here is routed
// through the fatal-error callback, since a caller across an FFI boundary
// has no way to retry a half-closed archive.
func (sess *Session) Close() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("serialbox: close panicked: %v", r)
			logging.Fatal(err)
		}
	}()
	if sess == nil || sess.s == nil {
		return nil
	}
	if err = sess.s.Close(); err != nil {
		logging.Fatal(err)
	}
	return err
}

// RegisterField mirrors Serializer.RegisterField across the recover shell.
func (sess *Session) RegisterField(fieldName string, info *field.MetaInfo) (created bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("serialbox: registerField panicked: %v", r)
		}
	}()
	return sess.s.RegisterField(fieldName, info)
}

// RegisterSavepoint mirrors Serializer.RegisterSavepoint across the
// recover shell.
func (sess *Session) RegisterSavepoint(sp *savepoint.Savepoint) (created bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("serialbox: registerSavepoint panicked: %v", r)
		}
	}()
	return sess.s.RegisterSavepoint(sp)
}

// Write mirrors Serializer.Write across the recover shell. A write
// failure is not itself fatal — the caller may legitimately retry with a
// different savepoint or field — so it is returned normally rather than
// escalated to the fatal-error callback.
func (sess *Session) Write(fieldName string, sp *savepoint.Savepoint, view storageview.View) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("serialbox: write panicked: %v", r)
		}
	}()
	return sess.s.Write(fieldName, sp, view)
}

// Read mirrors Serializer.Read across the recover shell.
func (sess *Session) Read(fieldName string, sp *savepoint.Savepoint, view storageview.View) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("serialbox: read panicked: %v", r)
		}
	}()
	return sess.s.Read(fieldName, sp, view)
}

// Fields lists every registered field name.
func (sess *Session) Fields() []string {
	return sess.s.Fields()
}

// Savepoints lists every registered savepoint.
func (sess *Session) Savepoints() []*savepoint.Savepoint {
	return sess.s.Savepoints()
}
