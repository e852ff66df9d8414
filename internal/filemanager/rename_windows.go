//go:build windows

package filemanager

import (
	"errors"
	"os"
	"syscall"
	"time"
)

const (
	errorAccessDenied  syscall.Errno = 5
	errorAlreadyExists syscall.Errno = 183
)

// atomicRename replaces dst with src. MoveFileEx fails while the peer still
// holds dst open, so the rename is retried a few times before giving up.
func atomicRename(src, dst string) error {
	var err error
	for attempt := 0; attempt < 5; attempt++ {
		err = os.Rename(src, dst)
		if err == nil {
			return nil
		}

		var errno syscall.Errno
		if !errors.As(err, &errno) || (errno != errorAccessDenied && errno != errorAlreadyExists) {
			return err
		}
		time.Sleep(time.Duration(10*(attempt+1)) * time.Millisecond)
	}
	return err
}
