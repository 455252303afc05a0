//go:build unix

package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// fileLock is an advisory flock(2) lock held on a sidecar file.
type fileLock struct {
	f *os.File
}

// acquireLock takes an flock on path. An exclusive lock creates the lock
// file. A shared lock only opens an existing one read-only and returns a nil
// lock, with no error, when the file is missing or cannot be opened; every
// write replaces the vault by rename, so an unlocked reader still sees a
// whole document.
func acquireLock(path string, exclusive bool) (*fileLock, error) {
	var (
		f   *os.File
		err error
	)
	if exclusive {
		f, err = os.OpenFile(path, os.O_CREATE|os.O_RDWR, fileMode)
	} else {
		f, err = os.Open(path)
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) || errors.Is(err, unix.EROFS) {
			return nil, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}
	for {
		err = unix.Flock(int(f.Fd()), how)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) release() error {
	if l == nil {
		return nil
	}
	unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	return l.f.Close()
}
