//go:build !windows

package filemanager

import "os"

// atomicRename replaces dst with src. rename(2) swaps the directory entry in
// one step, so dst never names a partial file.
func atomicRename(src, dst string) error {
	return os.Rename(src, dst)
}
