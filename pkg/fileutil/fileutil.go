// Package fileutil holds small filesystem helpers shared by the CSV and
// artifact writers.
package fileutil

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/ezoic/carprice/pkg/errors"
)

// WriteAtomic writes the output of fn to path so that readers of path see
// either the previous content or the complete new content, never a prefix.
//
// The data goes to a temp file in the destination directory, which is synced
// and renamed over path. Parent directories are created as needed. On any
// failure the temp file is removed and path is left untouched.
func WriteAtomic(path string, fn func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = fn(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrapf(err, "flush %s", tmpName)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "sync %s", tmpName)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmpName)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return errors.Wrapf(err, "chmod %s", tmpName)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "rename %s to %s", tmpName, path)
	}
	return nil
}

// Exists reports whether path names an existing regular file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// RunLock is an exclusive advisory lock guarding one output path.
type RunLock struct {
	fl *flock.Flock
}

// LockPath returns the lock file used for target.
func LockPath(target string) string {
	return target + ".lock"
}

// TryLock takes the lock for target without blocking. It returns
// errors.ErrLocked if another process or goroutine holds it.
func TryLock(target string) (*RunLock, error) {
	lockFile := LockPath(target)
	if err := os.MkdirAll(filepath.Dir(lockFile), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create directory for %s", lockFile)
	}

	fl := flock.New(lockFile)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "lock %s", lockFile)
	}
	if !ok {
		return nil, errors.Wrapf(errors.ErrLocked, "lock %s", lockFile)
	}
	return &RunLock{fl: fl}, nil
}

// Unlock releases the lock. The lock file itself is left in place so that
// concurrent lockers always agree on the inode.
func (l *RunLock) Unlock() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
