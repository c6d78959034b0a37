//go:build unix

package durability

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/serialbox/errs"
)

// DirLock is an advisory exclusive lock over a directory, acquired via
// flock(2) on a sentinel file. It turns the undefined behavior of
// "external concurrent writers are undefined behavior" into a fast,
// explicit error instead of silent corruption.
type DirLock struct {
	f *os.File
}

// AcquireDirLock takes an exclusive, non-blocking flock on
// "<dir>/<prefix>.lock", creating the sentinel file if needed. Fails with
// ArchiveIOError if another process already holds it.
func AcquireDirLock(dir, prefix string) (*DirLock, error) {
	path := dir + "/" + prefix + ".lock"
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, errs.Wrap(errs.ArchiveIOError, "opening lock file "+path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, errs.Wrap(errs.ArchiveIOError, "directory "+dir+" is locked by another writer", err)
	}
	return &DirLock{f: f}, nil
}

// Release drops the lock and closes the sentinel file handle. Idempotent.
func (l *DirLock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	_ = unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	err := l.f.Close()
	l.f = nil
	return err
}
