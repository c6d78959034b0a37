// Package archive defines the pluggable append-only typed blob store the
// Serializer delegates byte transfer to. Concrete backends (e.g.
// archive/binary) register themselves under a short name at process init
// and are resolved by that name at Serializer construction.
package archive

import (
	"github.com/joshuapare/serialbox/errs"
	"github.com/joshuapare/serialbox/savepoint"
	"github.com/joshuapare/serialbox/storageview"
)

// Mode is one of the three modes an Archive (and its owning Serializer)
// can be opened in.
type Mode int

const (
	Read Mode = iota
	Write
	Append
)

func (m Mode) String() string {
	switch m {
	case Read:
		return "Read"
	case Write:
		return "Write"
	case Append:
		return "Append"
	default:
		return "Unknown"
	}
}

// Archive is the capability set a backend must implement: a small
// interface, not an inheritance hierarchy.
type Archive interface {
	// Write persists view's bytes under fieldID and returns the
	// possibly-updated FieldID; the archive is authoritative for the
	// occurrence counter.
	Write(view storageview.View, fieldID savepoint.FieldID) (savepoint.FieldID, error)

	// Read fills view with the bytes previously written under a
	// matching fieldID.
	Read(view storageview.View, fieldID savepoint.FieldID) error

	// UpdateMetaData forces a durable flush of the archive-local
	// catalog.
	UpdateMetaData() error

	// SupportsSlicing reports whether WriteSliced/ReadSliced (via the
	// Slicer interface) are implemented.
	SupportsSlicing() bool

	// Close releases any resources (open files, mappings) held by the
	// archive.
	Close() error
}

// Box is a sub-bounding box of a field, used by the optional sliced
// read/write surface.
type Box struct {
	Offset []int64
	Shape  []int64
}

// Slicer is implemented by archives that advertise SupportsSlicing() ==
// true. The Binary archive shipped here does not implement it.
type Slicer interface {
	WriteSliced(view storageview.View, fieldID savepoint.FieldID, box Box) (savepoint.FieldID, error)
	ReadSliced(view storageview.View, fieldID savepoint.FieldID, box Box) error
}

// Factory constructs an Archive rooted at directory, using prefix as the
// shared basename for its on-disk files, opened in mode.
type Factory func(mode Mode, directory, prefix string) (Archive, error)

var registry = map[string]Factory{}

// Register installs a backend under name, to be resolved later by
// Serializer construction. Intended to be called
// from an archive backend's package init().
func Register(name string, f Factory) {
	registry[name] = f
}

// New resolves name to a registered Factory and constructs it. Fails with
// UnknownArchive if name was never registered.
func New(name string, mode Mode, directory, prefix string) (Archive, error) {
	f, ok := registry[name]
	if !ok {
		return nil, errs.Newf(errs.UnknownArchive, "no archive backend registered under name %q", name)
	}
	return f(mode, directory, prefix)
}

// Registered reports whether name has a registered backend; used by
// diagnostics and tests.
func Registered(name string) bool {
	_, ok := registry[name]
	return ok
}
