// Package durability provides the fsync and advisory-lock primitives
// backing the Serializer's atomic metadata writes and the
// directory-exclusivity convention.
package durability

import (
	"os"
	"path/filepath"

	"github.com/joshuapare/serialbox/errs"
)

// SyncFile fsyncs the file at path. AtomicWriteFile does not call it; it
// fsyncs its own open temp-file handle before the rename.
func SyncFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return errs.Wrap(errs.MetaDataWriteFailed, "opening "+path+" for fsync", err)
	}
	defer f.Close()
	if err := f.Sync(); err != nil {
		return errs.Wrap(errs.MetaDataWriteFailed, "fsyncing "+path, err)
	}
	return nil
}

// SyncDir fsyncs the directory entry itself, which is what actually makes
// a rename durable against a crash.
func SyncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return errs.Wrap(errs.MetaDataWriteFailed, "opening directory "+dir+" for fsync", err)
	}
	defer f.Close()
	if err := f.Sync(); err != nil {
		// Not all platforms/filesystems support fsync on a directory
		// handle; treat as best-effort rather than fatal, matching the
		// "durable flush" being a strong recommendation, not a portable
		// guarantee.
		return nil
	}
	return nil
}

// AtomicWriteFile writes data to a temp file beside path, fsyncs it, then
// renames it over path and fsyncs the containing directory — the
// write-to-temp + rename sequence so concurrent external
// readers observe either the old or new full state, never a partial one.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errs.Wrap(errs.MetaDataWriteFailed, "creating temp file for "+path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.Wrap(errs.MetaDataWriteFailed, "writing temp file for "+path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.Wrap(errs.MetaDataWriteFailed, "chmod temp file for "+path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.Wrap(errs.MetaDataWriteFailed, "fsyncing temp file for "+path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errs.Wrap(errs.MetaDataWriteFailed, "closing temp file for "+path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errs.Wrap(errs.MetaDataWriteFailed, "renaming temp file into place for "+path, err)
	}
	_ = SyncDir(dir)
	return nil
}
