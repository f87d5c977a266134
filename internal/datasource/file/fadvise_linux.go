//go:build linux

package file

import (
	"os"

	"golang.org/x/sys/unix"
)

func adviseSequential(f *os.File) error {
	return unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
