//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris
// +build aix darwin dragonfly freebsd linux netbsd openbsd solaris

package disk

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const (
	blkrrpart = 0x125f
)

// ReReadDevice forces the kernel to re-read a block device's layout after
// writing a new filesystem onto it, via an ioctl call with request BLKRRPART.
// It is a no-op for image files.
func (d *Disk) ReReadDevice() error {
	// only an actual block device needs the kernel notified
	devInfo, err := d.Backend.Stat()
	if err != nil {
		return err
	}

	if devInfo.Mode()&os.ModeDevice != 0 {
		osFile, err := d.Backend.Sys()
		if err != nil {
			return err
		}
		fd := osFile.Fd()
		_, err = unix.IoctlGetInt(int(fd), blkrrpart)
		if err != nil {
			return fmt.Errorf("unable to re-read device layout, kernel still uses stale geometry: %v", err)
		}
	}

	return nil
}
