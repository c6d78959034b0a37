// Package binary registers the "Binary" Archive backend: one flat blob
// file per field occurrence, with a small JSON catalog of lengths and
// xxh64 content checksums used to validate reads. A blob file with no
// catalog entry is never read.
package binary

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
	jsoniter "github.com/json-iterator/go"

	"github.com/joshuapare/serialbox/archive"
	"github.com/joshuapare/serialbox/durability"
	"github.com/joshuapare/serialbox/errs"
	"github.com/joshuapare/serialbox/logging"
	"github.com/joshuapare/serialbox/savepoint"
	"github.com/joshuapare/serialbox/storageview"
)

func init() {
	archive.Register("Binary", New)
}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

type entryMeta struct {
	Length   int64  `json:"length"`
	Checksum uint64 `json:"checksum"`
}

// Backend is the "Binary" Archive implementation.
type Backend struct {
	mu      sync.Mutex
	mode    archive.Mode
	dir     string
	prefix  string
	entries map[string]entryMeta
	dirty   bool
}

// New constructs a Backend rooted at directory. In Read mode the
// archive-local catalog must already exist; in Append mode it is loaded
// if present; in Write mode it starts empty.
func New(mode archive.Mode, directory, prefix string) (archive.Archive, error) {
	b := &Backend{
		mode:    mode,
		dir:     directory,
		prefix:  prefix,
		entries: make(map[string]entryMeta),
	}
	if mode == archive.Write {
		return b, nil
	}
	path := b.catalogPath()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if uerr := jsonAPI.Unmarshal(data, &b.entries); uerr != nil {
			return nil, errs.Wrap(errs.MetaDataCorrupt, "decoding archive catalog "+path, uerr)
		}
	case os.IsNotExist(err):
		if mode == archive.Read {
			return nil, errs.Newf(errs.MetaDataNotFound, "archive catalog %s not found", path)
		}
	default:
		return nil, errs.Wrap(errs.ArchiveIOError, "reading archive catalog "+path, err)
	}
	return b, nil
}

func (b *Backend) catalogPath() string {
	return filepath.Join(b.dir, fmt.Sprintf("ArchiveMetaData-%s.json", b.prefix))
}

func key(id savepoint.FieldID) string {
	return fmt.Sprintf("%s#%d", id.FieldName, id.Occurrence)
}

func (b *Backend) blobPath(id savepoint.FieldID) string {
	return filepath.Join(b.dir, fmt.Sprintf("%s_%s_%d.dat", b.prefix, id.FieldName, id.Occurrence))
}

// Write implements archive.Archive.
func (b *Backend) Write(view storageview.View, fieldID savepoint.FieldID) (savepoint.FieldID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := b.blobPath(fieldID)
	f, err := os.Create(path)
	if err != nil {
		return fieldID, errs.Wrap(errs.ArchiveIOError, "creating blob "+path, err).WithField(fieldID.FieldName)
	}
	hasher := xxhash.New()
	n, werr := view.WriteTo(io.MultiWriter(f, hasher))
	cerr := f.Close()
	if werr != nil {
		os.Remove(path)
		return fieldID, errs.Wrap(errs.ArchiveIOError, "writing blob "+path, werr).WithField(fieldID.FieldName)
	}
	if cerr != nil {
		os.Remove(path)
		return fieldID, errs.Wrap(errs.ArchiveIOError, "closing blob "+path, cerr).WithField(fieldID.FieldName)
	}

	b.entries[key(fieldID)] = entryMeta{Length: n, Checksum: hasher.Sum64()}
	b.dirty = true
	logging.Logger().Debug("archive: wrote field occurrence", "field", fieldID.FieldName, "occurrence", fieldID.Occurrence, "bytes", n)
	return fieldID, nil
}

// Read implements archive.Archive.
func (b *Backend) Read(view storageview.View, fieldID savepoint.FieldID) error {
	b.mu.Lock()
	meta, ok := b.entries[key(fieldID)]
	b.mu.Unlock()
	if !ok {
		return errs.Newf(errs.ArchiveFieldNotFound, "no archived bytes for %s#%d", fieldID.FieldName, fieldID.Occurrence).WithField(fieldID.FieldName)
	}

	path := b.blobPath(fieldID)
	f, err := os.Open(path)
	if err != nil {
		return errs.Wrap(errs.ArchiveIOError, "opening blob "+path, err).WithField(fieldID.FieldName)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errs.Wrap(errs.ArchiveIOError, "stat blob "+path, err).WithField(fieldID.FieldName)
	}
	if info.Size() != meta.Length {
		return errs.Newf(errs.ArchiveIOError, "blob %s has length %d, catalog expects %d", path, info.Size(), meta.Length).WithField(fieldID.FieldName)
	}

	if info.Size() == 0 {
		_, err := view.ReadFrom(bytes.NewReader(nil))
		return err
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return errs.Wrap(errs.ArchiveIOError, "mapping blob "+path, err).WithField(fieldID.FieldName)
	}
	defer m.Unmap()

	if xxhash.Sum64(m) != meta.Checksum {
		return errs.Newf(errs.ArchiveIOError, "blob %s failed checksum verification", path).WithField(fieldID.FieldName)
	}

	if _, err := view.ReadFrom(bytes.NewReader(m)); err != nil {
		return err
	}
	return nil
}

// UpdateMetaData implements archive.Archive.
func (b *Backend) UpdateMetaData() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.dirty {
		return nil
	}
	data, err := jsonAPI.MarshalIndent(b.entries, "", "  ")
	if err != nil {
		return errs.Wrap(errs.MetaDataWriteFailed, "encoding archive catalog", err)
	}
	if err := durability.AtomicWriteFile(b.catalogPath(), data, 0o644); err != nil {
		return err
	}
	b.dirty = false
	return nil
}

// SupportsSlicing implements archive.Archive.
func (b *Backend) SupportsSlicing() bool { return false }

// Close implements archive.Archive.
func (b *Backend) Close() error {
	return b.UpdateMetaData()
}
