//go:build windows

package filemanager

import (
	"math/rand"
	"os"
	"strings"
	"time"
)

// readFileWithRetry retries reads that fail because the emulator still has
// the file open.
func readFileWithRetry(path string) ([]byte, error) {
	var data []byte
	var err error

	for attempt := 0; attempt < 5; attempt++ {
		data, err = os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if os.IsNotExist(err) || !(os.IsPermission(err) || isSharingViolation(err)) {
			return nil, err
		}

		backoff := time.Duration(10*(1<<uint(attempt))) * time.Millisecond
		jitter := time.Duration(rand.Intn(10)) * time.Millisecond
		time.Sleep(backoff + jitter)
	}

	return nil, err
}

func isSharingViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "being used by another process") ||
		strings.Contains(msg, "The process cannot access")
}
