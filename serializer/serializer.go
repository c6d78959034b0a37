// Package serializer implements the Serializer coordination layer: the
// registry of known fields and savepoints, the write/read protocol
// against a pluggable Archive, and persistence of the Serializer's own
// catalog metadata so a session can be resumed.
package serializer

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joshuapare/serialbox/archive"
	"github.com/joshuapare/serialbox/catalog"
	"github.com/joshuapare/serialbox/durability"
	"github.com/joshuapare/serialbox/errs"
	"github.com/joshuapare/serialbox/field"
	"github.com/joshuapare/serialbox/logging"
	"github.com/joshuapare/serialbox/metainfo"
	"github.com/joshuapare/serialbox/savepoint"
)

// Mode re-exports archive.Mode so callers of this package don't need a
// second import for the common case.
type Mode = archive.Mode

const (
	Read   = archive.Read
	Write  = archive.Write
	Append = archive.Append
)

// State is the Serializer's position in its open/closed lifecycle.
type State int

const (
	OpenRead State = iota
	OpenWrite
	OpenAppend
	Closed
)

func (s State) String() string {
	switch s {
	case OpenRead:
		return "OpenRead"
	case OpenWrite:
		return "OpenWrite"
	case OpenAppend:
		return "OpenAppend"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// serializationEnabled is the process-wide kill switch, implemented as an
// atomic.Bool. Go's sync/atomic operations are sequentially consistent,
// which is stronger ordering than a diagnostic kill switch needs.
var serializationEnabled atomic.Bool

func init() {
	serializationEnabled.Store(true)
	if v := os.Getenv("SERIALBOX_SERIALIZATION_DISABLED"); v == "1" || v == "true" {
		serializationEnabled.Store(false)
	}
}

// SetEnabled flips the process-wide SerializationEnabled toggle. Not
// safe to call concurrently with in-flight writes.
func SetEnabled(enabled bool) {
	serializationEnabled.Store(enabled)
}

// Enabled reports the current value of SerializationEnabled.
func Enabled() bool {
	return serializationEnabled.Load()
}

// Serializer is the top-level aggregate coordinating fields, savepoints,
// and an Archive.
type Serializer struct {
	mu sync.Mutex

	directory   string
	prefix      string
	archiveName string

	state State

	fields     *field.Map
	savepoints *savepoint.Vector
	globalMeta *metainfo.Map

	arc  archive.Archive
	lock *durability.DirLock
}

const createdAtKey = metainfo.ReservedPrefix + "created_at"

func metaDataPath(directory, prefix string) string {
	return filepath.Join(directory, fmt.Sprintf("MetaData-%s.json", prefix))
}

// New constructs a Serializer rooted at directory, using prefix as the
// shared basename for its metadata files, resolving archiveName against
// the archive registry, and behaving per mode as described below.
func New(mode Mode, directory, prefix, archiveName string) (*Serializer, error) {
	switch mode {
	case Read:
		return openRead(directory, prefix, archiveName)
	case Write:
		return openWrite(directory, prefix, archiveName)
	case Append:
		return openAppend(directory, prefix, archiveName)
	default:
		return nil, errs.Newf(errs.TypeIDInvalid, "unknown open mode %v", mode)
	}
}

func openRead(directory, prefix, archiveName string) (*Serializer, error) {
	path := metaDataPath(directory, prefix)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Newf(errs.MetaDataNotFound, "metadata file %s not found", path)
		}
		return nil, errs.Wrap(errs.ArchiveIOError, "reading metadata file "+path, err)
	}
	cat, err := catalog.Decode(data)
	if err != nil {
		return nil, err
	}
	if archiveName != "" && archiveName != cat.ArchiveName {
		return nil, errs.Newf(errs.MetaDataCorrupt, "archive name mismatch: catalog has %q, caller requested %q", cat.ArchiveName, archiveName)
	}
	resolvedName := cat.ArchiveName
	if resolvedName == "" {
		resolvedName = archiveName
	}
	arc, err := archive.New(resolvedName, archive.Read, directory, prefix)
	if err != nil {
		return nil, err
	}
	return &Serializer{
		directory:   directory,
		prefix:      prefix,
		archiveName: resolvedName,
		state:       OpenRead,
		fields:      cat.Fields,
		savepoints:  cat.Savepoints,
		globalMeta:  cat.GlobalMeta,
		arc:         arc,
	}, nil
}

func openWrite(directory, prefix, archiveName string) (*Serializer, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, errs.Wrap(errs.ArchiveIOError, "creating directory "+directory, err)
	}
	if err := removeManagedFiles(directory, prefix); err != nil {
		return nil, err
	}
	lock, err := durability.AcquireDirLock(directory, prefix)
	if err != nil {
		return nil, err
	}
	arc, err := archive.New(archiveName, archive.Write, directory, prefix)
	if err != nil {
		lock.Release()
		return nil, err
	}
	globalMeta := metainfo.NewMap()
	metainfo.SetReserved(globalMeta, createdAtKey, metainfo.NewString(time.Now().UTC().Format(time.RFC3339)))
	s := &Serializer{
		directory:   directory,
		prefix:      prefix,
		archiveName: archiveName,
		state:       OpenWrite,
		fields:      field.NewMap(),
		savepoints:  savepoint.NewVector(),
		globalMeta:  globalMeta,
		arc:         arc,
		lock:        lock,
	}
	if err := s.UpdateMetaData(); err != nil {
		lock.Release()
		return nil, err
	}
	return s, nil
}

func openAppend(directory, prefix, archiveName string) (*Serializer, error) {
	path := metaDataPath(directory, prefix)
	if _, err := os.Stat(path); err == nil {
		s, err := openRead(directory, prefix, archiveName)
		if err != nil {
			return nil, err
		}
		lock, err := durability.AcquireDirLock(directory, prefix)
		if err != nil {
			s.arc.Close()
			return nil, err
		}
		s.lock = lock
		s.state = OpenAppend
		// Reopen the archive itself in Append mode; a Read-mode archive
		// is opened for reading only (the Binary backend, for one,
		// requires its catalog to already exist), which Append must not
		// inherit.
		s.arc.Close()
		arc, err := archive.New(s.archiveName, archive.Append, directory, prefix)
		if err != nil {
			lock.Release()
			return nil, err
		}
		s.arc = arc
		return s, nil
	} else if !os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ArchiveIOError, "stat metadata file "+path, err)
	}

	s, err := openWrite(directory, prefix, archiveName)
	if err != nil {
		return nil, err
	}
	s.state = OpenAppend
	return s, nil
}

// removeManagedFiles implements the directory-cleanup policy: only
// files matching the Serializer's own managed patterns are removed when
// (re)creating a Write-mode directory; anything else is left untouched.
func removeManagedFiles(directory, prefix string) error {
	entries, err := os.ReadDir(directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errs.Wrap(errs.ArchiveIOError, "listing directory "+directory, err)
	}
	metaName := fmt.Sprintf("MetaData-%s.json", prefix)
	archMetaName := fmt.Sprintf("ArchiveMetaData-%s.json", prefix)
	lockName := prefix + ".lock"
	dataPrefix := prefix + "_"
	for _, e := range entries {
		name := e.Name()
		managed := name == metaName || name == archMetaName || name == lockName ||
			(len(name) > len(dataPrefix) && name[:len(dataPrefix)] == dataPrefix && filepath.Ext(name) == ".dat")
		if !managed {
			continue
		}
		if err := os.Remove(filepath.Join(directory, name)); err != nil {
			return errs.Wrap(errs.ArchiveIOError, "removing stale managed file "+name, err)
		}
	}
	return nil
}

// State reports the Serializer's current lifecycle state.
func (s *Serializer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// GlobalMetaInfo returns the mutable catalog-level MetaInfoMap; changes
// take effect after the next UpdateMetaData call.
func (s *Serializer) GlobalMetaInfo() *metainfo.Map {
	return s.globalMeta
}

// UpdateMetaData atomically re-serializes both the Serializer's own
// catalog and the archive-local catalog. A failure transitions the
// Serializer to Closed.
func (s *Serializer) UpdateMetaData() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateMetaDataLocked()
}

func (s *Serializer) updateMetaDataLocked() error {
	if s.state == Closed {
		return errs.New(errs.SerializerClosed, "serializer is closed")
	}
	if err := s.arc.UpdateMetaData(); err != nil {
		s.state = Closed
		return errs.Wrap(errs.MetaDataWriteFailed, "flushing archive catalog", err)
	}
	cat := &catalog.Catalog{
		GlobalMeta:  s.globalMeta,
		Fields:      s.fields,
		Savepoints:  s.savepoints,
		ArchiveName: s.archiveName,
	}
	data, err := catalog.Encode(cat)
	if err != nil {
		s.state = Closed
		return errs.Wrap(errs.MetaDataWriteFailed, "encoding catalog", err)
	}
	if err := durability.AtomicWriteFile(metaDataPath(s.directory, s.prefix), data, 0o644); err != nil {
		s.state = Closed
		return err
	}
	return nil
}

// Close releases the Serializer's resources. In Write/Append mode it first
// issues a best-effort final UpdateMetaData, the defer-based cleanup
// convention Go code uses in lieu of destructors. Close is idempotent.
func (s *Serializer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed {
		return nil
	}
	var flushErr error
	if s.state == OpenWrite || s.state == OpenAppend {
		flushErr = s.updateMetaDataLocked()
	}
	if s.arc != nil {
		if err := s.arc.Close(); err != nil && flushErr == nil {
			flushErr = err
		}
	}
	if s.lock != nil {
		s.lock.Release()
	}
	s.state = Closed
	logging.Logger().Debug("serializer: closed", "directory", s.directory, "prefix", s.prefix)
	return flushErr
}
