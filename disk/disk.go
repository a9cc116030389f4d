// Package disk provides utilities for opening, creating, and formatting raw
// disk images or block devices that hold a single EXT2 filesystem.
package disk

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/diskfs/go-diskfs/backend"
	backendfile "github.com/diskfs/go-diskfs/backend/file"
	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/diskfs/go-diskfs/filesystem/ext2"
)

// when working with a raw disk image we cannot probe the kernel for its
// sector size, so we fall back to the conventional 512-byte default.
const (
	defaultBlocksize int  = 512
	blksszGet        uint = 0x1268
	blkbszGet        uint = 0x80081270
)

// Type represents the kind of backing storage a Disk wraps.
type Type int

const (
	// File is a regular file holding a disk image
	File Type = iota
	// Device is an OS-managed block device
	Device
)

// Disk is a reference to a single block device or disk image, opened for
// EXT2 use via Open(), or created via Create() and then formatted via Format().
type Disk struct {
	Backend           backend.Storage
	Path              string
	Info              os.FileInfo
	Type              Type
	Size              int64
	LogicalBlocksize  int64
	PhysicalBlocksize int64
}

// Open opens an existing disk image or block device at path for EXT2 use.
// The file must already exist; see Create to format a new one.
func Open(devicePath string) (*Disk, error) {
	if devicePath == "" {
		return nil, errors.New("must pass device or file name")
	}
	b, err := backendfile.OpenFromPath(devicePath, false)
	if err != nil {
		return nil, err
	}
	return initDisk(b, devicePath)
}

// Create truncates a new file at path to size bytes and prepares it as a
// Disk ready for Format.
func Create(devicePath string, size int64) (*Disk, error) {
	if devicePath == "" {
		return nil, errors.New("must pass device or file name")
	}
	if size <= 0 {
		return nil, errors.New("must pass valid device size to create")
	}
	b, err := backendfile.CreateFromPath(devicePath, size)
	if err != nil {
		return nil, err
	}
	return initDisk(b, devicePath)
}

func initDisk(b backend.Storage, name string) (*Disk, error) {
	devInfo, err := b.Stat()
	if err != nil {
		return nil, fmt.Errorf("could not get info for %s: %w", name, err)
	}
	if devInfo.Size() <= 0 {
		return nil, fmt.Errorf("could not get file size for %s", name)
	}

	var (
		diskType          Type
		size              = devInfo.Size()
		logicalBlocksize  = int64(defaultBlocksize)
		physicalBlocksize = int64(defaultBlocksize)
	)

	switch mode := devInfo.Mode(); {
	case mode.IsRegular():
		diskType = File
	case mode&os.ModeDevice != 0:
		diskType = Device
		devSizePath := fmt.Sprintf("/sys/class/block/%s/size", path.Base(name))
		sizeBytes, err := ioutil.ReadFile(devSizePath)
		if err == nil {
			sizeString := strings.TrimSuffix(string(sizeBytes), "\n")
			if sectors, err := strconv.ParseInt(sizeString, 10, 64); err == nil {
				size = sectors * 512
			}
		}
		if osFile, err := b.Sys(); err == nil {
			if l, p, err := getSectorSizes(osFile); err == nil {
				logicalBlocksize, physicalBlocksize = l, p
			}
		}
	default:
		return nil, fmt.Errorf("%s is neither a block device nor a regular file", name)
	}

	return &Disk{
		Backend:           b,
		Path:              name,
		Info:              devInfo,
		Type:              diskType,
		Size:              size,
		LogicalBlocksize:  logicalBlocksize,
		PhysicalBlocksize: physicalBlocksize,
	}, nil
}

// getSectorSizes asks the kernel for a block device's logical and physical
// sector sizes via BLKSSZGET/BLKBSZGET.
func getSectorSizes(f *os.File) (logical, physical int64, err error) {
	fd := f.Fd()
	l, err := unix.IoctlGetInt(int(fd), blksszGet)
	if err != nil {
		return 0, 0, fmt.Errorf("unable to get logical sector size: %w", err)
	}
	p, err := unix.IoctlGetInt(int(fd), blkbszGet)
	if err != nil {
		return 0, 0, fmt.Errorf("unable to get physical sector size: %w", err)
	}
	return int64(l), int64(p), nil
}

// Format creates a fresh EXT2 filesystem across the entire disk, the
// equivalent of mke2fs against a whole-disk image.
func (d *Disk) Format(params *ext2.Params) (filesystem.FileSystem, error) {
	return ext2.Create(d.Backend, d.Size, 0, uint32(d.LogicalBlocksize)*2, params)
}

// GetFilesystem mounts the EXT2 filesystem already present on the disk.
func (d *Disk) GetFilesystem() (filesystem.FileSystem, error) {
	fs, err := ext2.Read(d.Backend, d.Size, 0)
	if err != nil {
		return nil, NewUnknownFilesystemError(d.Path)
	}
	return fs, nil
}
